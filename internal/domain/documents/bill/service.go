package bill

import (
	"context"
	"fmt"
	"time"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/tx"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
	"coldstore/pkg/logger"
	"coldstore/pkg/words"
)

// numberRetries bounds the re-derive loop when the advisory document number
// collides under concurrent creation. The unique constraint is the arbiter;
// we re-scan and recompute on each collision.
const numberRetries = 3

// AuditLogger records document mutations. Implemented by the postgres audit
// store; nil disables auditing.
type AuditLogger interface {
	LogCreate(ctx context.Context, entityType string, entityID id.ID, payload any) error
}

// Config holds bill service configuration.
type Config struct {
	// NumberPrefix for bill numbers, e.g. "KB" -> KB/2024-25/0008
	NumberPrefix string

	// OrgGSTIN is the cold store's own GSTIN, used to derive jurisdiction
	// when the caller does not set one explicitly.
	OrgGSTIN string

	// Now supplies the as-of instant for rent accrual and numbering.
	// Defaults to time.Now; tests inject a fixed clock.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(orgGSTIN string) Config {
	return Config{
		NumberPrefix: "KB",
		OrgGSTIN:     orgGSTIN,
		Now:          time.Now,
	}
}

// Service provides business operations for rent bills.
type Service struct {
	repo      Repository
	txManager tx.Manager
	audit     AuditLogger
	cfg       Config
}

// NewService creates a new bill service.
func NewService(repo Repository, txManager tx.Manager, audit AuditLogger, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "KB"
	}
	return &Service{
		repo:      repo,
		txManager: txManager,
		audit:     audit,
		cfg:       cfg,
	}
}

// Price computes the full amount snapshot for a bill draft and its stored
// lots without persisting anything. Used both by Create and by the preview
// endpoint.
func (s *Service) Price(ctx context.Context, doc *Bill, lots []billing.StorageLot) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	asOf := s.cfg.Now()

	// Derive rent lines from the stored lots.
	rentTotal := types.Zero()
	for _, lot := range lots {
		rent := billing.CalculateAmadRent(lot, asOf)
		rentTotal = rentTotal.Add(rent.Amount)

		quantity, rate := lot.RateInputs()
		doc.Lines = append(doc.Lines, Line{
			LineID:    id.New(),
			LineNo:    len(doc.Lines) + 1,
			Component: billing.ComponentRent,
			Rate:      rate,
			Quantity:  quantity,
			Amount:    rent.Amount,
		})
	}

	if doc.Jurisdiction == "" {
		doc.Jurisdiction = billing.DetermineGSTType(doc.PartyGSTIN, s.cfg.OrgGSTIN)
	}

	amounts := billing.CalculateBillAmounts(billing.BillInput{
		RentAmount:   rentTotal,
		Charges:      doc.ChargeLines(),
		Discount:     doc.Discount,
		Jurisdiction: doc.Jurisdiction,
		GSTRate:      doc.GSTRate,
		TDSRate:      doc.TDSRate,
		ApplyTDS:     doc.ApplyTDS,
	})
	rounded := billing.RoundBillAmount(amounts.TotalAmount)

	doc.ApplyAmounts(amounts, rounded)
	doc.AmountInWords = words.AmountInWords(rounded.Rounded)

	return nil
}

// Create prices the bill, assigns the next document number within the
// current financial year, and persists header plus lines in a transaction.
//
// Numbering is advisory (scan existing, compute max+1); the database unique
// constraint on the number column resolves concurrent creation, and this
// method retries the scan on collision.
func (s *Service) Create(ctx context.Context, doc *Bill, lots []billing.StorageLot) error {
	if err := s.Price(ctx, doc, lots); err != nil {
		return err
	}

	if id.IsNil(doc.ID) {
		doc.ID = id.New()
	}
	now := s.cfg.Now()
	doc.CreatedAt = now.UTC()
	doc.UpdatedAt = doc.CreatedAt

	var lastErr error
	for attempt := 0; attempt < numberRetries; attempt++ {
		if doc.Number == "" || attempt > 0 {
			number, err := s.nextNumber(ctx, now)
			if err != nil {
				return err
			}
			doc.Number = number
		}

		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
			if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
				return fmt.Errorf("save lines: %w", err)
			}
			return nil
		})
		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		if !apperror.IsDuplicate(err) {
			return err
		}
		logger.Warn(ctx, "bill number collision, retrying",
			"number", doc.Number,
			"attempt", attempt+1)
	}
	if lastErr != nil {
		return apperror.NewBusinessRule(
			apperror.CodeNumberCollision,
			"Could not assign a unique bill number",
		).WithCause(lastErr)
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, "bill", doc.ID, doc); err != nil {
			logger.Warn(ctx, "bill audit entry failed", "error", err)
		}
	}

	logger.Info(ctx, "bill created",
		"id", doc.ID,
		"number", doc.Number,
		"net_payable", doc.NetPayable.String())

	return nil
}

// GetByID retrieves a bill with its charge lines.
func (s *Service) GetByID(ctx context.Context, billID id.ID) (*Bill, error) {
	doc, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// OpenBills returns the party's unsettled bills, oldest first.
func (s *Service) OpenBills(ctx context.Context, partyID id.ID) ([]billing.OpenBill, error) {
	return s.repo.ListOpenByParty(ctx, partyID)
}

// nextNumber scans existing numbers for the current financial year and
// derives the next one.
func (s *Service) nextNumber(ctx context.Context, asOf time.Time) (string, error) {
	existing, err := s.repo.ListNumbers(ctx, billing.FinancialYear(asOf))
	if err != nil {
		return "", fmt.Errorf("list bill numbers: %w", err)
	}
	return billing.NextDocumentNumber(existing, s.cfg.NumberPrefix, asOf), nil
}
