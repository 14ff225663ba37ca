package vendorprofile

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("vendor profile not found")
	ErrCategoryLocked  = errors.New("category cannot change after an application was submitted")
	ErrInvalidCategory = errors.New("invalid vendor category")
	ErrProfileInactive = errors.New("vendor profile is deactivated")
)

type Repository interface {
	GetUser(ctx context.Context, userID uint) (*User, error)
	GetProfileByUserID(ctx context.Context, userID uint) (*VendorProfile, error)
	SelectRole(ctx context.Context, userID uint, category Category) (*VendorProfile, error)
	MarkPending(ctx context.Context, update PendingUpdate) error
	MarkApproved(ctx context.Context, userID uint, providerID *uint64) error
	MarkRejected(ctx context.Context, userID uint) error
	Deactivate(ctx context.Context, userID uint) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository works on a plain handle or on a transaction.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetUser(ctx context.Context, userID uint) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetProfileByUserID(ctx context.Context, userID uint) (*VendorProfile, error) {
	var profile VendorProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// SelectRole creates the profile, or changes its category while the vendor
// has no pending or approved application.
func (r *repository) SelectRole(ctx context.Context, userID uint, category Category) (*VendorProfile, error) {
	var profile VendorProfile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = VendorProfile{
				UserID:             userID,
				Category:           category,
				RegistrationStatus: StatusNone,
				IsActive:           true,
			}
			return tx.Create(&profile).Error
		}
		if err != nil {
			return err
		}
		if profile.RegistrationStatus == StatusPending || profile.RegistrationStatus == StatusApproved {
			return ErrCategoryLocked
		}
		profile.Category = category
		profile.IsActive = true
		return tx.Model(&profile).Updates(map[string]interface{}{"category": category, "is_active": true}).Error
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// MarkPending upserts the profile into pending with the submission's ids.
// An existing profile loses its verification and keeps its active flag.
func (r *repository) MarkPending(ctx context.Context, u PendingUpdate) error {
	now := time.Now()
	profile := VendorProfile{
		UserID:              u.UserID,
		Category:            u.Category,
		RegistrationStatus:  StatusPending,
		ApplicationID:       &u.ApplicationID,
		VendorLedgerID:      u.VendorLedgerID,
		LegacyApplicationID: u.LegacyApplicationID,
		IsActive:            true,
		SubmittedAt:         &now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"category", "registration_status", "application_id", "vendor_ledger_id",
			"legacy_application_id", "is_verified", "verified_at", "submitted_at", "updated_at",
		}),
	}).Create(&profile).Error
}

func (r *repository) MarkApproved(ctx context.Context, userID uint, providerID *uint64) error {
	fields := map[string]interface{}{
		"registration_status": StatusApproved,
		"is_verified":         true,
		"verified_at":         time.Now(),
	}
	if providerID != nil {
		fields["provider_id"] = *providerID
	}
	return r.update(ctx, userID, fields)
}

func (r *repository) MarkRejected(ctx context.Context, userID uint) error {
	return r.update(ctx, userID, map[string]interface{}{
		"registration_status": StatusRejected,
		"is_verified":         false,
	})
}

func (r *repository) Deactivate(ctx context.Context, userID uint) error {
	return r.update(ctx, userID, map[string]interface{}{"is_active": false})
}

func (r *repository) update(ctx context.Context, userID uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&VendorProfile{}).Where("user_id = ?", userID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
