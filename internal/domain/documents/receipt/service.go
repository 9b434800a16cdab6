package receipt

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

const numberRetries = 3

// AuditLogger records document mutations. Nil disables auditing.
type AuditLogger interface {
	LogCreate(ctx context.Context, entityType string, entityID id.ID, payload any) error
}

// Config holds receipt service configuration.
type Config struct {
	// NumberPrefix for receipt numbers, e.g. "KBR" -> KBR/2024-25/0001
	NumberPrefix string

	// Now supplies the as-of instant for numbering. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		NumberPrefix: "KBR",
		Now:          time.Now,
	}
}

// Service provides business operations for payment receipts.
type Service struct {
	repo      Repository
	bills     BillLedger
	txManager tx.Manager
	audit     AuditLogger
	cfg       Config
}

// NewService creates a new receipt service.
func NewService(repo Repository, bills BillLedger, txManager tx.Manager, audit AuditLogger, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "KBR"
	}
	return &Service{
		repo:      repo,
		bills:     bills,
		txManager: txManager,
		audit:     audit,
		cfg:       cfg,
	}
}

// Create records a payment, allocates it against the party's open bills
// oldest-first (or validates the caller's manual allocations), assigns the
// next receipt number and persists everything in one transaction: receipt
// header, allocation rows, and the balance decrements on each settled bill.
//
// When manual is non-nil the oldest-first policy is not enforced, but every
// allocation must still fit within its bill's balance.
func (s *Service) Create(ctx context.Context, doc *Receipt, manual []billing.Allocation) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	openBills, err := s.bills.ListOpenByParty(ctx, doc.PartyID)
	if err != nil {
		return fmt.Errorf("list open bills: %w", err)
	}

	plan, err := s.buildPlan(doc, openBills, manual)
	if err != nil {
		return err
	}

	if id.IsNil(doc.ID) {
		doc.ID = id.New()
	}
	now := s.cfg.Now()
	doc.CreatedAt = now.UTC()
	doc.UnallocatedAmount = plan.Remaining
	doc.AmountInWords = words.AmountInWords(doc.Amount)

	doc.Allocations = make([]Allocation, len(plan.Allocations))
	for i, alloc := range plan.Allocations {
		doc.Allocations[i] = Allocation{
			ID:            id.New(),
			ReceiptID:     doc.ID,
			BillID:        alloc.BillID,
			Amount:        alloc.Amount,
			BalanceBefore: alloc.BalanceBefore,
			BalanceAfter:  alloc.BalanceAfter,
		}
	}

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
			if err := s.repo.SaveAllocations(ctx, doc.ID, doc.Allocations); err != nil {
				return fmt.Errorf("save allocations: %w", err)
			}
			for _, alloc := range doc.Allocations {
				if err := s.bills.ApplyAllocation(ctx, alloc.BillID, alloc.Amount); err != nil {
					return fmt.Errorf("apply allocation to bill %s: %w", alloc.BillID, err)
				}
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
		logger.Warn(ctx, "receipt number collision, retrying",
			"number", doc.Number,
			"attempt", attempt+1)
	}
	if lastErr != nil {
		return apperror.NewBusinessRule(
			apperror.CodeNumberCollision,
			"Could not assign a unique receipt number",
		).WithCause(lastErr)
	}

	if s.audit != nil {
		if err := s.audit.LogCreate(ctx, "receipt", doc.ID, doc); err != nil {
			logger.Warn(ctx, "receipt audit entry failed", "error", err)
		}
	}

	logger.Info(ctx, "receipt created",
		"id", doc.ID,
		"number", doc.Number,
		"allocated", plan.TotalAllocated.String(),
		"unallocated", plan.Remaining.String())

	return nil
}

// GetByID retrieves a receipt with its allocations.
func (s *Service) GetByID(ctx context.Context, receiptID id.ID) (*Receipt, error) {
	doc, err := s.repo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	allocations, err := s.repo.GetAllocations(ctx, receiptID)
	if err != nil {
		return nil, fmt.Errorf("get allocations: %w", err)
	}
	doc.Allocations = allocations

	return doc, nil
}

// buildPlan produces the allocation plan: automatic oldest-first, or the
// caller's manual plan validated against open balances.
func (s *Service) buildPlan(doc *Receipt, openBills []billing.OpenBill, manual []billing.Allocation) (billing.AllocationResult, error) {
	if manual == nil {
		return billing.AutoAllocate(doc.Amount, openBills), nil
	}

	if err := billing.ValidateAllocations(manual, openBills); err != nil {
		return billing.AllocationResult{}, err
	}

	// Running balances: repeated allocations to the same bill must chain
	// their before/after snapshots, not restate the opening balance.
	balances := make(map[id.ID]types.Money, len(openBills))
	for _, b := range openBills {
		balances[b.ID] = b.Balance
	}

	result := billing.AllocationResult{
		TotalAllocated: types.Zero(),
		Remaining:      doc.Amount,
	}
	for _, alloc := range manual {
		before := balances[alloc.BillID]
		after := before.Sub(alloc.Amount)
		balances[alloc.BillID] = after
		result.Allocations = append(result.Allocations, billing.Allocation{
			BillID:        alloc.BillID,
			Amount:        alloc.Amount,
			BalanceBefore: before,
			BalanceAfter:  after,
		})
		result.TotalAllocated = result.TotalAllocated.Add(alloc.Amount)
		result.Remaining = result.Remaining.Sub(alloc.Amount)
	}

	if result.Remaining.IsNegative() {
		return billing.AllocationResult{}, apperror.NewValidation(
			"allocations exceed the payment amount",
		).WithDetail("payment", doc.Amount.String()).
			WithDetail("allocated", result.TotalAllocated.String())
	}

	return result, nil
}

func (s *Service) nextNumber(ctx context.Context, asOf time.Time) (string, error) {
	existing, err := s.repo.ListNumbers(ctx, billing.FinancialYear(asOf))
	if err != nil {
		return "", fmt.Errorf("list receipt numbers: %w", err)
	}
	return billing.NextDocumentNumber(existing, s.cfg.NumberPrefix, asOf), nil
}
