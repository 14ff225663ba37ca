package payment

import (
	"fmt"
	"strings"

	"github.com/sharath018/jharkhand-tourism-backend/internal/vendorprofile"
)

// Receipt is what the client reports after checkout. Amount is in paise.
type Receipt struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId,omitempty"`
	Signature string `json:"signature,omitempty"`
	Amount    int64  `json:"amount"`
}

// Validate checks the receipt locally against the category fee. It does not
// contact the gateway.
func (r Receipt) Validate(category vendorprofile.Category) error {
	if strings.TrimSpace(r.PaymentID) == "" {
		return ErrMissingPaymentID
	}
	fee, err := MinimumFee(category)
	if err != nil {
		return err
	}
	if r.Amount < fee {
		return fmt.Errorf("%w: got %d, need %d", ErrAmountBelowFee, r.Amount, fee)
	}
	return nil
}
