package vendorprofile

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// Registration status of a vendor profile.
const (
	StatusNone     = "none"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User is the account row owned by the auth service; this backend only reads it.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"column:full_name;size:100;not null" json:"name"`
	Email     string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"size:20" json:"phone"`
	Role      string         `gorm:"size:20;default:vendor" json:"role"`
	Status    string         `gorm:"size:20;default:active" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// VendorProfile is created when a user selects a vendor category and tracks
// their registration. Profiles are deactivated, never deleted.
type VendorProfile struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Category            Category   `gorm:"size:30;not null" json:"category"`
	RegistrationStatus  string     `gorm:"size:20;not null;default:none" json:"registration_status"`
	IsVerified          bool       `gorm:"default:false" json:"is_verified"`
	ApplicationID       *string    `gorm:"size:64" json:"application_id,omitempty"`
	VendorLedgerID      *uint64    `json:"vendor_ledger_id,omitempty"`
	LegacyApplicationID *uint64    `json:"legacy_application_id,omitempty"`
	ProviderID          *uint64    `json:"provider_id,omitempty"`
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	SubmittedAt         *time.Time `json:"submitted_at,omitempty"`
	VerifiedAt          *time.Time `json:"verified_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PendingUpdate carries the identifiers a submission produced.
type PendingUpdate struct {
	UserID              uint
	Category            Category
	ApplicationID       string
	VendorLedgerID      *uint64
	LegacyApplicationID *uint64
}
