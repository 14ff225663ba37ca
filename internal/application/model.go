package application

import (
	"time"

	"gorm.io/datatypes"
)

// Application lifecycle: pending -> approved | rejected. Both outcomes are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Application is the durable record of one vendor submission. Ledger
// identifiers are optional because either registry may have failed; the
// content hashes never are.
type Application struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	ApplicationID       string         `gorm:"size:64;not null;index" json:"application_id"` // not unique: ledger ids can coincide
	IDSource            string         `gorm:"size:20" json:"id_source"`
	UserID              uint           `gorm:"not null;index" json:"user_id"`
	VendorType          string         `gorm:"size:30;not null;index" json:"vendor_type"`
	ApplicationDataHash string         `gorm:"size:128;not null" json:"application_data_hash"`
	DocumentsHash       string         `gorm:"size:128;not null" json:"documents_hash"`
	Manifest            datatypes.JSON `json:"manifest,omitempty"`
	RazorpayPaymentID   string         `gorm:"size:64;not null;index" json:"razorpay_payment_id"`
	RazorpayOrderID     string         `gorm:"size:64" json:"razorpay_order_id,omitempty"`
	RazorpayAmount      int64          `gorm:"not null" json:"razorpay_amount"`
	Status              string         `gorm:"size:20;not null;default:pending;index" json:"status"`

	// Ledger B
	BlockchainTxHash *string `gorm:"size:100" json:"blockchain_tx_hash,omitempty"`
	VendorID         *string `gorm:"size:40" json:"vendor_id,omitempty"`
	// Ledger A
	PANHash             *string `gorm:"size:100" json:"pan_hash,omitempty"`
	LegacyApplicationID *uint64 `json:"legacy_application_id,omitempty"`
	LegacyTxHash        *string `gorm:"size:100" json:"legacy_tx_hash,omitempty"`
	ProviderID          *uint64 `json:"provider_id,omitempty"`

	// Category-specific evidence
	Photo         *string `gorm:"size:128" json:"photo,omitempty"`
	LicenseNumber *string `gorm:"size:64" json:"license_number,omitempty"`
	GSTNumber     *string `gorm:"size:32" json:"gst_number,omitempty"`

	CorrelationID   string     `gorm:"size:36" json:"correlation_id,omitempty"`
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`
	ReviewNotes     string     `gorm:"type:text" json:"review_notes,omitempty"`
	Score           *int       `json:"score,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`

	Documents   []Document   `gorm:"foreignKey:ApplicationRef" json:"documents,omitempty"`
	Certificate *Certificate `gorm:"foreignKey:ApplicationRef" json:"certificate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is one uploaded file. Rows are written with their application
// and never changed.
type Document struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ApplicationRef uint      `gorm:"not null;index" json:"application_ref"`
	Category       string    `gorm:"size:60;not null" json:"category"`
	FileName       string    `gorm:"size:255;not null" json:"file_name"`
	IPFSHash       string    `gorm:"column:ipfs_hash;size:128;not null" json:"ipfs_hash"`
	Size           int64     `json:"size"`
	ContentType    string    `gorm:"size:100" json:"content_type"`
	CreatedAt      time.Time `json:"created_at"`
}

// Certificate exists only for approved applications. Renewal replaces the
// hashes and expiry in place.
type Certificate struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ApplicationRef  uint       `gorm:"not null;uniqueIndex" json:"application_ref"`
	ProviderID      *uint64    `json:"provider_id,omitempty"`
	CertificateHash string     `gorm:"size:128" json:"certificate_hash,omitempty"` // issued by the legacy registry
	ContentHash     string     `gorm:"size:128;not null" json:"content_hash"`      // rendered PDF
	TxHash          string     `gorm:"size:100" json:"tx_hash,omitempty"`
	IssuedAt        time.Time  `json:"issued_at"`
	ExpiresAt       time.Time  `json:"expires_at"`
	RenewedAt       *time.Time `json:"renewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Filter struct {
	Status     string
	VendorType string
	UserID     uint
	Search     string
	FromDate   *time.Time
	ToDate     *time.Time
	Page       int
	Limit      int
}

type ListResult struct {
	Data       []Application `json:"data"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
}

// Review carries an admin decision.
type Review struct {
	ReviewerID uint
	Notes      string
	Score      int
	Reason     string
	IP         string
}
