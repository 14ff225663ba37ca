package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/sharath018/jharkhand-tourism-backend/config"
)

var ErrPushDisabled = errors.New("push notifications are not configured")

// Pusher delivers a push notification to device tokens.
type Pusher interface {
	Push(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// FCM allows max 500 tokens per multicast
const fcmBatchSize = 500

// FCMPusher sends through Firebase Cloud Messaging. A pusher built without
// credentials reports ErrPushDisabled.
type FCMPusher struct {
	client *messaging.Client
}

// NewFCMPusher initializes FCM with service account credentials
func NewFCMPusher(ctx context.Context, cfg *config.Config) *FCMPusher {
	if cfg.FCMCredentialsPath == "" {
		log.Println("⚠️  FCM not configured (FCM_CREDENTIALS_PATH missing)")
		return &FCMPusher{}
	}

	var fbConfig *firebase.Config
	if cfg.FCMProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FCMProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(cfg.FCMCredentialsPath))
	if err != nil {
		log.Printf("❌ Error initializing Firebase app: %v\n", err)
		return &FCMPusher{}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("❌ Error getting FCM client: %v\n", err)
		return &FCMPusher{}
	}

	log.Println("✅ FCM initialized successfully")
	return &FCMPusher{client: client}
}

func (f *FCMPusher) Push(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if f.client == nil {
		return ErrPushDisabled
	}
	if len(tokens) == 0 {
		return nil
	}

	failed := 0
	for start := 0; start < len(tokens); start += fcmBatchSize {
		end := start + fcmBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		response, err := f.client.SendEachForMulticast(ctx, multicast(batch, title, body, data))
		if err != nil {
			log.Printf("❌ Error sending FCM batch: %v\n", err)
			failed += len(batch)
			continue
		}
		failed += response.FailureCount
		log.Printf("✅ FCM: %d/%d messages sent\n", response.SuccessCount, len(batch))
	}

	if failed > 0 {
		return fmt.Errorf("failed to send to %d/%d tokens", failed, len(tokens))
	}
	return nil
}

func multicast(tokens []string, title, body string, data map[string]string) *messaging.MulticastMessage {
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Data:   data,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "vendor_registration",
				Priority:     messaging.PriorityHigh,
				DefaultSound: true,
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
				Icon:  "/icon-192x192.png",
			},
		},
	}
}
