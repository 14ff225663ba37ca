package vendorreg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
)

var ErrMissingField = errors.New("required field missing")

var (
	vendorID = ledger.IDRecovery{
		Event:    "VendorRegistered",
		ArgIndex: 0,
		Accessor: "getTotalVendors",
		Offset:   0,
	}
	transactionID = ledger.IDRecovery{
		Event:    "TransactionStored",
		ArgIndex: 0,
		Accessor: "getTotalTransactions",
		Offset:   0,
	}
)

// PaymentClaimer marks a payment id as consumed. Claim returns false when
// the id was already claimed. Release drops a claim whose registration
// never reached the registry.
type PaymentClaimer interface {
	Claim(ctx context.Context, paymentID string) (bool, error)
	Release(ctx context.Context, paymentID string) error
}

type Option func(*Client)

// WithLedgerReplayCheck makes RegisterVendor look the payment id up on the
// registry before registering.
func WithLedgerReplayCheck() Option {
	return func(c *Client) { c.lookupPayment = true }
}

// WithPaymentClaimer makes RegisterVendor claim the payment id first.
func WithPaymentClaimer(claimer PaymentClaimer) Option {
	return func(c *Client) { c.claimer = claimer }
}

// Client wraps the vendor/transaction registry. The registry does not
// enforce payment id uniqueness itself.
type Client struct {
	contract      ledger.Contract
	explorerBase  string
	lookupPayment bool
	claimer       PaymentClaimer
}

func NewClient(contract ledger.Contract, explorerBase string, opts ...Option) *Client {
	c := &Client{contract: contract, explorerBase: explorerBase}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) RegisterVendor(ctx context.Context, in VendorRegistration) (*Registration, error) {
	const op = "registerVendor"

	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.VendorType == "" || in.PaymentID == "" {
		return nil, ledger.Wrap(Ledger, op, ErrMissingField)
	}
	if err := c.checkReplay(ctx, in.PaymentID); err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}

	receipt, err := c.contract.Send(ctx, op,
		in.Name,
		in.Email,
		in.Contact,
		strings.ToUpper(in.VendorType),
		in.BusinessAddress,
		in.PaymentID,
	)
	if err != nil {
		c.releaseClaim(in.PaymentID)
		return nil, ledger.Wrap(Ledger, op, err)
	}

	// The transaction is mined from here on, so the claim stays even if the
	// id cannot be recovered.
	id, err := ledger.RecoverID(ctx, receipt, vendorID, c.contract)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	if id.Source == ledger.IDFromFallback {
		log.Printf("⚠️ vendor id %d for %s read from getTotalVendors; may race with concurrent registrations", id.Value, receipt.TxHash)
	}

	return &Registration{
		VendorID:    id.Value,
		TxHash:      receipt.TxHash,
		GasUsed:     receipt.GasUsed,
		ExplorerURL: ledger.ExplorerURL(c.explorerBase, receipt.TxHash),
	}, nil
}

func (c *Client) checkReplay(ctx context.Context, paymentID string) error {
	if c.lookupPayment {
		_, err := c.GetTransactionByPaymentID(ctx, paymentID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", ledger.ErrDuplicatePayment, paymentID)
		case !ledger.IsNotFound(err):
			return err
		}
	}
	if c.claimer != nil {
		ok, err := c.claimer.Claim(ctx, paymentID)
		if err != nil {
			return fmt.Errorf("%w: payment claim: %v", ledger.ErrUnavailable, err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ledger.ErrDuplicatePayment, paymentID)
		}
	}
	return nil
}

func (c *Client) releaseClaim(paymentID string) {
	if c.claimer == nil {
		return
	}
	// The caller's context may already be done after a send timeout.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.claimer.Release(ctx, paymentID); err != nil {
		log.Printf("⚠️ failed to release payment claim %s: %v", paymentID, err)
	}
}

func (c *Client) StoreTransaction(ctx context.Context, in TransactionInput) (*Stored, error) {
	const op = "storeTransaction"
	if in.PaymentID == "" || in.Type == "" || in.Amount <= 0 {
		return nil, ledger.Wrap(Ledger, op, ErrMissingField)
	}
	return c.store(ctx, op, in.PaymentID, in.Payer, in.Payee, in.Amount, strings.ToUpper(in.Type), in.VendorID)
}

func (c *Client) StoreVendorToPlatformTransaction(ctx context.Context, vendorID uint64, paymentID string, amount int64) (*Stored, error) {
	const op = "storeVendorToPlatformTransaction"
	if vendorID == 0 || paymentID == "" || amount <= 0 {
		return nil, ledger.Wrap(Ledger, op, ErrMissingField)
	}
	return c.store(ctx, op, vendorID, paymentID, amount)
}

func (c *Client) StoreTouristToPlatformTransaction(ctx context.Context, touristID, paymentID string, amount int64) (*Stored, error) {
	const op = "storeTouristToPlatformTransaction"
	if touristID == "" || paymentID == "" || amount <= 0 {
		return nil, ledger.Wrap(Ledger, op, ErrMissingField)
	}
	return c.store(ctx, op, touristID, paymentID, amount)
}

func (c *Client) store(ctx context.Context, op string, args ...any) (*Stored, error) {
	receipt, err := c.contract.Send(ctx, op, args...)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	id, err := ledger.RecoverID(ctx, receipt, transactionID, c.contract)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	return &Stored{
		TransactionID: id.Value,
		TxHash:        receipt.TxHash,
		ExplorerURL:   ledger.ExplorerURL(c.explorerBase, receipt.TxHash),
	}, nil
}

// CalculatePlatformFee returns the registry's fee for amount, same unit.
func (c *Client) CalculatePlatformFee(ctx context.Context, amount uint64) (uint64, error) {
	return c.readUint(ctx, "calculatePlatformFee", amount)
}

func (c *Client) GetRegistrationFee(ctx context.Context, vendorType string) (uint64, error) {
	return c.readUint(ctx, "getRegistrationFee", strings.ToUpper(vendorType))
}

func (c *Client) readUint(ctx context.Context, op string, args ...any) (uint64, error) {
	raw, err := c.contract.Call(ctx, op, args...)
	if err != nil {
		return 0, ledger.Wrap(Ledger, op, err)
	}
	v, err := ledger.DecodeUint(raw)
	if err != nil {
		return 0, ledger.Wrap(Ledger, op, err)
	}
	return v, nil
}

func (c *Client) GetTransactionByPaymentID(ctx context.Context, paymentID string) (*Transaction, error) {
	const op = "getTransactionByPaymentId"
	raw, err := c.contract.Call(ctx, op, paymentID)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	tx, err := decodeTransaction(raw)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	return tx, nil
}

func (c *Client) GetVendor(ctx context.Context, id uint64) (*Vendor, error) {
	return c.vendor(ctx, "getVendor", id)
}

func (c *Client) GetVendorByEmail(ctx context.Context, email string) (*Vendor, error) {
	return c.vendor(ctx, "getVendorByEmail", strings.ToLower(strings.TrimSpace(email)))
}

func (c *Client) vendor(ctx context.Context, op string, key any) (*Vendor, error) {
	raw, err := c.contract.Call(ctx, op, key)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	v, err := decodeVendor(raw)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	return v, nil
}

func (c *Client) GetVendorsByType(ctx context.Context, vendorType string) ([]Vendor, error) {
	const op = "getVendorsByType"
	items, err := c.list(ctx, op, strings.ToUpper(vendorType))
	if err != nil {
		return nil, err
	}
	vendors := make([]Vendor, 0, len(items))
	for _, item := range items {
		v, err := decodeVendor(item)
		if err != nil {
			if ledger.IsNotFound(err) {
				continue
			}
			return nil, ledger.Wrap(Ledger, op, err)
		}
		vendors = append(vendors, *v)
	}
	return vendors, nil
}

func (c *Client) GetTransactionsByType(ctx context.Context, txType string) ([]Transaction, error) {
	const op = "getTransactionsByType"
	items, err := c.list(ctx, op, strings.ToUpper(txType))
	if err != nil {
		return nil, err
	}
	txs := make([]Transaction, 0, len(items))
	for _, item := range items {
		tx, err := decodeTransaction(item)
		if err != nil {
			if ledger.IsNotFound(err) {
				continue
			}
			return nil, ledger.Wrap(Ledger, op, err)
		}
		txs = append(txs, *tx)
	}
	return txs, nil
}

// list treats a null result as an empty list.
func (c *Client) list(ctx context.Context, op string, key string) ([]json.RawMessage, error) {
	raw, err := c.contract.Call(ctx, op, key)
	if ledger.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ledger.Wrap(Ledger, op, fmt.Errorf("%w: expected list: %v", ledger.ErrMalformed, err))
	}
	return items, nil
}

// Unknown keys come back as a zero tuple, which is reported as not found.
func decodeVendor(raw json.RawMessage) (*Vendor, error) {
	f, err := ledger.Tuple(raw, 9)
	if err != nil {
		return nil, err
	}
	var v Vendor
	if v.VendorID, err = ledger.DecodeUint(f[0]); err != nil {
		return nil, err
	}
	if v.VendorID == 0 {
		return nil, ledger.ErrNotFound
	}
	strs := []*string{&v.Name, &v.Email, &v.Contact, &v.VendorType, &v.BusinessAddress, &v.PaymentID}
	for i, dst := range strs {
		if *dst, err = ledger.DecodeString(f[i+1]); err != nil {
			return nil, err
		}
	}
	registered, err := ledger.DecodeUint(f[7])
	if err != nil {
		return nil, err
	}
	v.RegisteredAt = time.Unix(int64(registered), 0).UTC()
	if v.IsActive, err = ledger.DecodeBool(f[8]); err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeTransaction(raw json.RawMessage) (*Transaction, error) {
	f, err := ledger.Tuple(raw, 9)
	if err != nil {
		return nil, err
	}
	var tx Transaction
	if tx.TransactionID, err = ledger.DecodeUint(f[0]); err != nil {
		return nil, err
	}
	if tx.TransactionID == 0 {
		return nil, ledger.ErrNotFound
	}
	if tx.PaymentID, err = ledger.DecodeString(f[1]); err != nil {
		return nil, err
	}
	if tx.Payer, err = ledger.DecodeString(f[2]); err != nil {
		return nil, err
	}
	if tx.Payee, err = ledger.DecodeString(f[3]); err != nil {
		return nil, err
	}
	if tx.Amount, err = ledger.DecodeUint(f[4]); err != nil {
		return nil, err
	}
	if tx.PlatformFee, err = ledger.DecodeUint(f[5]); err != nil {
		return nil, err
	}
	if tx.TransactionType, err = ledger.DecodeString(f[6]); err != nil {
		return nil, err
	}
	if tx.VendorID, err = ledger.DecodeUint(f[7]); err != nil {
		return nil, err
	}
	ts, err := ledger.DecodeUint(f[8])
	if err != nil {
		return nil, err
	}
	tx.Timestamp = time.Unix(int64(ts), 0).UTC()
	return &tx, nil
}
