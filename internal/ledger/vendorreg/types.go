package vendorreg

import "time"

// Ledger is the name used in ledger.Error for this registry.
const Ledger = "vendor"

// Transaction types as stored by the registry.
const (
	TxVendorToPlatform  = "VENDOR_TO_PLATFORM"
	TxTouristToPlatform = "TOURIST_TO_PLATFORM"
	TxTouristToVendor   = "TOURIST_TO_VENDOR"
)

type VendorRegistration struct {
	Name            string
	Email           string
	Contact         string
	VendorType      string
	BusinessAddress string
	PaymentID       string
}

type Registration struct {
	VendorID    uint64 `json:"vendorId"`
	TxHash      string `json:"transactionHash"`
	GasUsed     uint64 `json:"gasUsed"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

type TransactionInput struct {
	PaymentID string
	Payer     string
	Payee     string
	Amount    int64 // paise
	Type      string
	VendorID  uint64
}

type Stored struct {
	TransactionID uint64 `json:"transactionId"`
	TxHash        string `json:"transactionHash"`
	ExplorerURL   string `json:"explorerUrl,omitempty"`
}

// Vendor mirrors the registry's vendor tuple:
// [id, name, email, contact, vendorType, businessAddress, paymentId, registeredAt, isActive]
type Vendor struct {
	VendorID        uint64    `json:"vendorId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Contact         string    `json:"contact"`
	VendorType      string    `json:"vendorType"`
	BusinessAddress string    `json:"businessAddress"`
	PaymentID       string    `json:"paymentId"`
	RegisteredAt    time.Time `json:"registeredAt"`
	IsActive        bool      `json:"isActive"`
}

// Transaction mirrors the registry's transaction tuple:
// [id, paymentId, payer, payee, amount, platformFee, transactionType, vendorId, timestamp]
type Transaction struct {
	TransactionID   uint64    `json:"transactionId"`
	PaymentID       string    `json:"paymentId"`
	Payer           string    `json:"payer"`
	Payee           string    `json:"payee"`
	Amount          uint64    `json:"amount"`
	PlatformFee     uint64    `json:"platformFee"`
	TransactionType string    `json:"transactionType"`
	VendorID        uint64    `json:"vendorId"`
	Timestamp       time.Time `json:"timestamp"`
}
