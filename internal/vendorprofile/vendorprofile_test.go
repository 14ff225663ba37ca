package vendorprofile

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sharath018/jharkhand-tourism-backend/internal/auditlog"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&User{}, &VendorProfile{}, &auditlog.AuditLog{}))
	require.NoError(t, db.Create(&User{ID: 1, FullName: "Asha Oraon", Email: "asha@example.com", Role: RoleVendor}).Error)
	return db
}

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"guide":           CategoryGuide,
		" Accommodation ": CategoryAccommodation,
		"food-restaurant": CategoryFoodRestaurant,
		"TRANSPORT":       CategoryTransportation,
		"transportation":  CategoryTransportation,
		"activity":        CategoryActivity,
	}
	for raw, want := range tests {
		got, ok := ParseCategory(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseCategory("spa")
	assert.False(t, ok)
}

func TestSelectRoleLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, auditlog.NewService(auditlog.NewRepository(db)))
	ctx := context.Background()

	profile, err := svc.SelectRole(ctx, 1, "guide", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, CategoryGuide, profile.Category)
	assert.Equal(t, StatusNone, profile.RegistrationStatus)

	profile, err = svc.SelectRole(ctx, 1, "activity", "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, CategoryActivity, profile.Category)

	_, err = svc.SelectRole(ctx, 1, "spa", "")
	assert.ErrorIs(t, err, ErrInvalidCategory)
	_, err = svc.SelectRole(ctx, 99, "guide", "")
	assert.ErrorIs(t, err, ErrUserNotFound)

	legacyID, vendorID := uint64(14), uint64(4)
	require.NoError(t, repo.MarkPending(ctx, PendingUpdate{
		UserID:              1,
		Category:            CategoryActivity,
		ApplicationID:       "14",
		VendorLedgerID:      &vendorID,
		LegacyApplicationID: &legacyID,
	}))

	_, err = svc.SelectRole(ctx, 1, "guide", "")
	assert.ErrorIs(t, err, ErrCategoryLocked)

	providerID := uint64(9)
	require.NoError(t, repo.MarkApproved(ctx, 1, &providerID))
	stored, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.RegistrationStatus)
	assert.True(t, stored.IsVerified)
	require.NotNil(t, stored.ProviderID)
	assert.Equal(t, uint64(9), *stored.ProviderID)
	assert.Equal(t, "14", *stored.ApplicationID)

	require.NoError(t, svc.Deactivate(ctx, 1, ""))
	stored, err = svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	var logs int64
	db.Model(&auditlog.AuditLog{}).Count(&logs)
	assert.Equal(t, int64(4), logs)
}

func TestMarkPendingCreatesProfile(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.MarkPending(ctx, PendingUpdate{UserID: 1, Category: CategoryGuide, ApplicationID: "local-1"}))
	profile, err := repo.GetProfileByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, profile.RegistrationStatus)
	assert.Nil(t, profile.LegacyApplicationID)
	assert.NotNil(t, profile.SubmittedAt)

	require.NoError(t, repo.MarkRejected(ctx, 1))
	_, err = repo.GetProfileByUserID(ctx, 2)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.ErrorIs(t, repo.MarkRejected(ctx, 2), ErrProfileNotFound)
}

func TestMarkPendingResetsVerification(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.MarkPending(ctx, PendingUpdate{UserID: 1, Category: CategoryGuide, ApplicationID: "7"}))
	require.NoError(t, repo.MarkApproved(ctx, 1, nil))
	require.NoError(t, repo.Deactivate(ctx, 1))

	require.NoError(t, repo.MarkPending(ctx, PendingUpdate{UserID: 1, Category: CategoryGuide, ApplicationID: "8"}))
	profile, err := repo.GetProfileByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, profile.RegistrationStatus)
	assert.Equal(t, "8", *profile.ApplicationID)
	assert.False(t, profile.IsVerified)
	assert.Nil(t, profile.VerifiedAt)
	assert.False(t, profile.IsActive)
}
