package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
)

type Service interface {
	// Notify publishes the event and tells the vendor through their inbox
	// and devices. Every channel is attempted; failures are joined.
	Notify(ctx context.Context, evt ApplicationEvent) error

	ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id uint, userID uint) error
	RegisterDeviceToken(ctx context.Context, userID uint, deviceToken, deviceType, deviceName string) error
	RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error
}

type service struct {
	repo      Repository
	publisher Publisher
	pusher    Pusher
}

func NewService(repo Repository, publisher Publisher, pusher Pusher) Service {
	return &service{repo: repo, publisher: publisher, pusher: pusher}
}

func (s *service) Notify(ctx context.Context, evt ApplicationEvent) error {
	var errs []error

	if err := s.publisher.Publish(ctx, evt); err != nil {
		log.Printf("⚠️ Kafka publish %s for application %s failed: %v", evt.Type, evt.ApplicationID, err)
		errs = append(errs, fmt.Errorf("publish: %w", err))
	}

	title, body, category := describe(evt)
	if title == "" {
		return errors.Join(errs...)
	}

	ref := evt.ApplicationRef
	if err := s.repo.CreateInApp(ctx, &InAppNotification{
		UserID:         evt.UserID,
		ApplicationRef: &ref,
		Title:          title,
		Message:        body,
		Category:       category,
	}); err != nil {
		errs = append(errs, fmt.Errorf("in-app: %w", err))
	}

	tokens, err := s.repo.GetUserDeviceTokens(ctx, evt.UserID)
	if err != nil {
		errs = append(errs, fmt.Errorf("device tokens: %w", err))
	} else if len(tokens) > 0 {
		data := map[string]string{
			"type":            evt.Type,
			"application_id":  evt.ApplicationID,
			"application_ref": strconv.FormatUint(uint64(evt.ApplicationRef), 10),
		}
		if err := s.pusher.Push(ctx, tokens, title, body, data); err != nil && !errors.Is(err, ErrPushDisabled) {
			errs = append(errs, fmt.Errorf("push: %w", err))
		}
	}

	return errors.Join(errs...)
}

func describe(evt ApplicationEvent) (title, body, category string) {
	switch evt.Type {
	case EventApplicationSubmitted:
		return "Application submitted",
			fmt.Sprintf("Your %s registration (application %s) is under review.", evt.VendorType, evt.ApplicationID),
			"application"
	case EventApplicationApproved:
		return "Application approved",
			fmt.Sprintf("Your %s registration (application %s) has been approved.", evt.VendorType, evt.ApplicationID),
			"application"
	case EventApplicationRejected:
		body := fmt.Sprintf("Your %s registration (application %s) was not approved.", evt.VendorType, evt.ApplicationID)
		if evt.Message != "" {
			body += " Reason: " + evt.Message
		}
		return "Application rejected", body, "application"
	case EventCertificateIssued:
		return "Certificate ready",
			fmt.Sprintf("Your verification certificate for application %s is available.", evt.ApplicationID),
			"certificate"
	}
	return "", "", ""
}

func (s *service) ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error) {
	return s.repo.ListInAppByUser(ctx, userID, limit)
}

func (s *service) MarkInAppAsRead(ctx context.Context, id uint, userID uint) error {
	return s.repo.MarkInAppAsRead(ctx, id, userID)
}

func (s *service) RegisterDeviceToken(ctx context.Context, userID uint, deviceToken, deviceType, deviceName string) error {
	return s.repo.SaveDeviceToken(ctx, &FCMDeviceToken{
		UserID:      userID,
		DeviceToken: deviceToken,
		DeviceType:  deviceType,
		DeviceName:  deviceName,
	})
}

func (s *service) RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return s.repo.RemoveDeviceToken(ctx, userID, deviceToken)
}
