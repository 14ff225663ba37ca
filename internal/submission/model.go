package submission

import (
	"time"

	"github.com/sharath018/jharkhand-tourism-backend/internal/contentstore"
)

// FormData holds the vendor's raw answers as decoded from JSON.
type FormData map[string]interface{}

// Files groups uploads by form category, e.g. "photo" or "businessLicense".
type Files map[string][]contentstore.FileUpload

// Manifest is pinned as-is; every uploaded file appears once under its
// original category.
type Manifest struct {
	UploadedAt time.Time                              `json:"uploadedAt"`
	Documents  map[string][]contentstore.UploadedFile `json:"documents"`
}

func (m Manifest) Count() int {
	n := 0
	for _, files := range m.Documents {
		n += len(files)
	}
	return n
}

// Highlight is the category-specific document shown first on the dashboard.
type Highlight struct {
	Category string
	File     contentstore.UploadedFile
}

const (
	LedgerVendor = "vendor"
	LedgerLegacy = "legacy"
)

// LedgerOutcome records one registry attempt.
type LedgerOutcome struct {
	Ledger      string `json:"ledger"`
	Success     bool   `json:"success"`
	ID          string `json:"id,omitempty"`
	IDSource    string `json:"idSource,omitempty"`
	TxHash      string `json:"transactionHash,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

type Result struct {
	Success               bool            `json:"success"`
	ApplicationID         string          `json:"applicationId"`
	VendorID              string          `json:"vendorId,omitempty"`
	BlockchainTxHash      string          `json:"blockchainTxHash,omitempty"`
	LegacyApplicationID   string          `json:"legacyApplicationId,omitempty"`
	LegacyContractSuccess bool            `json:"legacyContractSuccess"`
	DocumentHash          string          `json:"documentHash"`
	ApplicationDataHash   string          `json:"applicationDataHash"`
	Photo                 string          `json:"photo,omitempty"`
	ExplorerURL           string          `json:"explorerUrl,omitempty"`
	CorrelationID         string          `json:"correlationId"`
	Message               string          `json:"message"`
	Ledgers               []LedgerOutcome `json:"ledgers"`
}
