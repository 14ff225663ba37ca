package legacy

import (
	"time"

	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
)

// Ledger is the name used in ledger.Error for this registry.
const Ledger = "legacy"

// serviceTypes is the registry's on-chain enum order.
var serviceTypes = map[string]uint8{
	"GUIDE":           0,
	"ACCOMMODATION":   1,
	"FOOD_RESTAURANT": 2,
	"TRANSPORTATION":  3,
	"ACTIVITY":        4,
}

var providerStatuses = []string{"ACTIVE", "SUSPENDED", "REVOKED"}

type SubmitRequest struct {
	ServiceType         string
	PANHash             string
	ApplicationDataHash string
	DocumentsHash       string
	PaymentID           string
	PaymentAmount       int64 // smallest currency unit
}

type Submission struct {
	ApplicationID uint64
	TxHash        string
	IDSource      ledger.IDSource
}

type Approval struct {
	ProviderID uint64
	TxHash     string
}

type Certificate struct {
	ProviderID      uint64
	CertificateHash string
	TxHash          string
}

type Verification struct {
	IsValid     bool      `json:"isValid"`
	ProviderID  uint64    `json:"providerId"`
	ServiceType string    `json:"serviceType"`
	Status      string    `json:"status"`
	ExpiryDate  time.Time `json:"expiryDate"`
	FullName    string    `json:"fullName"`
	City        string    `json:"city"`
}

// Statistics holds registry counters; balances are in whole native units.
type Statistics struct {
	TotalApplications uint64 `json:"totalApplications"`
	TotalApprovals    uint64 `json:"totalApprovals"`
	TotalRejections   uint64 `json:"totalRejections"`
	TotalProviders    uint64 `json:"totalProviders"`
	ContractBalance   string `json:"contractBalance"`
	TotalFunding      string `json:"totalFunding"`
}
