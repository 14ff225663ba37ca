package legacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sharath018/jharkhand-tourism-backend/internal/ledger"
)

var (
	ErrUnknownServiceType = errors.New("unknown service type")
	ErrInvalidScore       = errors.New("score must be between 0 and 100")
	ErrMissingField       = errors.New("required field missing")
)

var (
	submittedID = ledger.IDRecovery{
		Event:    "ApplicationSubmitted",
		ArgIndex: 0,
		Accessor: "nextApplicationId",
		Offset:   -1,
	}
	approvedProviderID = ledger.IDRecovery{
		Event:    "ProviderApproved",
		ArgIndex: 1,
		Accessor: "nextProviderId",
		Offset:   -1,
	}
)

// Client wraps the legacy PAN-keyed application/provider registry.
type Client struct {
	contract ledger.Contract
}

func NewClient(contract ledger.Contract) *Client {
	return &Client{contract: contract}
}

// SubmitApplication registers a pending application. The registry itself
// rejects a payment id it has already seen.
func (c *Client) SubmitApplication(ctx context.Context, req SubmitRequest) (*Submission, error) {
	const op = "submitApplication"

	serviceType, ok := serviceTypes[strings.ToUpper(req.ServiceType)]
	if !ok {
		return nil, ledger.Wrap(Ledger, op, fmt.Errorf("%w: %q", ErrUnknownServiceType, req.ServiceType))
	}
	if req.PANHash == "" || req.ApplicationDataHash == "" || req.DocumentsHash == "" || req.PaymentID == "" {
		return nil, ledger.Wrap(Ledger, op, ErrMissingField)
	}

	receipt, err := c.contract.Send(ctx, op,
		serviceType,
		req.PANHash,
		req.ApplicationDataHash,
		req.DocumentsHash,
		req.PaymentID,
		req.PaymentAmount,
	)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, classifyRevert(err))
	}

	id, err := ledger.RecoverID(ctx, receipt, submittedID, c.contract)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}

	return &Submission{ApplicationID: id.Value, TxHash: receipt.TxHash, IDSource: id.Source}, nil
}

// ApproveApplication moves a pending application to approved and assigns a
// provider id.
func (c *Client) ApproveApplication(ctx context.Context, applicationID uint64, notes string, score int) (*Approval, error) {
	const op = "approveApplication"
	if score < 0 || score > 100 {
		return nil, ledger.Wrap(Ledger, op, ErrInvalidScore)
	}

	receipt, err := c.contract.Send(ctx, op, applicationID, notes, score)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}

	id, err := ledger.RecoverID(ctx, receipt, approvedProviderID, c.contract)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	return &Approval{ProviderID: id.Value, TxHash: receipt.TxHash}, nil
}

// RejectApplication is terminal for the application id.
func (c *Client) RejectApplication(ctx context.Context, applicationID uint64, reason string) (string, error) {
	const op = "rejectApplication"
	if strings.TrimSpace(reason) == "" {
		return "", ledger.Wrap(Ledger, op, ErrMissingField)
	}
	receipt, err := c.contract.Send(ctx, op, applicationID, reason)
	if err != nil {
		return "", ledger.Wrap(Ledger, op, err)
	}
	return receipt.TxHash, nil
}

func (c *Client) GenerateCertificate(ctx context.Context, providerID uint64) (*Certificate, error) {
	return c.certificate(ctx, "generateCertificate", providerID)
}

// RenewCertificate extends the provider's certificate and issues a new hash.
func (c *Client) RenewCertificate(ctx context.Context, providerID uint64) (*Certificate, error) {
	return c.certificate(ctx, "renewCertificate", providerID)
}

func (c *Client) certificate(ctx context.Context, op string, providerID uint64) (*Certificate, error) {
	receipt, err := c.contract.Send(ctx, op, providerID)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}

	ev, ok := receipt.Event("CertificateGenerated")
	if !ok {
		return nil, ledger.Wrap(Ledger, op, fmt.Errorf("%w: CertificateGenerated event missing", ledger.ErrMalformed))
	}
	certHash, err := ev.String(1)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	return &Certificate{ProviderID: providerID, CertificateHash: certHash, TxHash: receipt.TxHash}, nil
}

// VerifyCertificateByPAN is the public verification read. An unknown PAN is
// reported as ledger.ErrNotFound.
func (c *Client) VerifyCertificateByPAN(ctx context.Context, panHash string) (*Verification, error) {
	const op = "verifyCertificateByPAN"

	raw, err := c.contract.Call(ctx, op, panHash)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	fields, err := ledger.Tuple(raw, 7)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}

	var v Verification
	if v.IsValid, err = ledger.DecodeBool(fields[0]); err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	if v.ProviderID, err = ledger.DecodeUint(fields[1]); err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	if v.ProviderID == 0 {
		return nil, ledger.Wrap(Ledger, op, ledger.ErrNotFound)
	}
	serviceType, err := ledger.DecodeUint(fields[2])
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	v.ServiceType = serviceTypeName(serviceType)
	status, err := ledger.DecodeUint(fields[3])
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	v.Status = "UNKNOWN"
	if int(status) < len(providerStatuses) {
		v.Status = providerStatuses[status]
	}
	expiry, err := ledger.DecodeUint(fields[4])
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	v.ExpiryDate = time.Unix(int64(expiry), 0).UTC()
	if v.FullName, err = ledger.DecodeString(fields[5]); err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	if v.City, err = ledger.DecodeString(fields[6]); err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	return &v, nil
}

func (c *Client) GetStatistics(ctx context.Context) (*Statistics, error) {
	const op = "getStatistics"

	raw, err := c.contract.Call(ctx, op)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	fields, err := ledger.Tuple(raw, 6)
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}

	var counters [4]uint64
	for i := range counters {
		if counters[i], err = ledger.DecodeUint(fields[i]); err != nil {
			return nil, ledger.Wrap(Ledger, op, err)
		}
	}
	balance, err := ledger.DecodeBig(fields[4])
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}
	funding, err := ledger.DecodeBig(fields[5])
	if err != nil {
		return nil, ledger.Wrap(Ledger, op, err)
	}

	return &Statistics{
		TotalApplications: counters[0],
		TotalApprovals:    counters[1],
		TotalRejections:   counters[2],
		TotalProviders:    counters[3],
		ContractBalance:   ledger.FormatNative(balance),
		TotalFunding:      ledger.FormatNative(funding),
	}, nil
}

// classifyRevert maps the registry's duplicate-payment revert onto the
// shared sentinel so callers can tell a replay apart from other rejections.
func classifyRevert(err error) error {
	if !errors.Is(err, ledger.ErrRejected) {
		return err
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "payment") && (strings.Contains(msg, "used") || strings.Contains(msg, "duplicate")) {
		return fmt.Errorf("%w: %w", ledger.ErrDuplicatePayment, err)
	}
	return err
}

func serviceTypeName(idx uint64) string {
	for name, v := range serviceTypes {
		if uint64(v) == idx {
			return name
		}
	}
	return "UNKNOWN"
}
