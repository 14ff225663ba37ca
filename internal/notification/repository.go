package notification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateInApp(ctx context.Context, n *InAppNotification) error
	ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id uint, userID uint) error

	SaveDeviceToken(ctx context.Context, token *FCMDeviceToken) error
	GetUserDeviceTokens(ctx context.Context, userID uint) ([]string, error)
	RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ------------------------------
// In-App Notifications
// ------------------------------

func (r *repository) CreateInApp(ctx context.Context, n *InAppNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListInAppByUser(ctx context.Context, userID uint, limit int) ([]InAppNotification, error) {
	var items []InAppNotification
	if limit <= 0 {
		limit = 20
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *repository) MarkInAppAsRead(ctx context.Context, id uint, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&InAppNotification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

// ------------------------------
// FCM Device Tokens
// ------------------------------

// SaveDeviceToken creates or reactivates a device token
func (r *repository) SaveDeviceToken(ctx context.Context, token *FCMDeviceToken) error {
	var existing FCMDeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND device_token = ?", token.UserID, token.DeviceToken).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		token.IsActive = true
		token.LastUsedAt = time.Now()
		return r.db.WithContext(ctx).Create(token).Error
	}
	if err != nil {
		return err
	}

	existing.IsActive = true
	existing.LastUsedAt = time.Now()
	existing.DeviceType = token.DeviceType
	existing.DeviceName = token.DeviceName
	return r.db.WithContext(ctx).Save(&existing).Error
}

// GetUserDeviceTokens retrieves all active device tokens for a user
func (r *repository) GetUserDeviceTokens(ctx context.Context, userID uint) ([]string, error) {
	var tokens []string
	err := r.db.WithContext(ctx).
		Model(&FCMDeviceToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("device_token", &tokens).Error
	return tokens, err
}

// RemoveDeviceToken deactivates a specific device token
func (r *repository) RemoveDeviceToken(ctx context.Context, userID uint, deviceToken string) error {
	return r.db.WithContext(ctx).
		Model(&FCMDeviceToken{}).
		Where("user_id = ? AND device_token = ?", userID, deviceToken).
		Update("is_active", false).Error
}
