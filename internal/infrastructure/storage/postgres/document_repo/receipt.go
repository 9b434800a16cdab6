package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/domain/documents/receipt"
	"coldstore/internal/infrastructure/storage/postgres"
)

const (
	receiptsTable           = "doc_receipts"
	receiptAllocationsTable = "doc_receipt_allocations"
)

var receiptColumns = []string{
	"id", "number", "receipt_date",
	"party_id", "amount", "mode", "reference",
	"unallocated_amount", "amount_in_words",
	"created_at",
}

// ReceiptRepo implements receipt.Repository.
type ReceiptRepo struct {
	txManager *postgres.TxManager
}

// NewReceiptRepo creates a new receipt repository.
func NewReceiptRepo(txManager *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{txManager: txManager}
}

func (r *ReceiptRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the receipt header.
func (r *ReceiptRepo) Create(ctx context.Context, doc *receipt.Receipt) error {
	q := r.builder().
		Insert(receiptsTable).
		Columns(receiptColumns...).
		Values(
			doc.ID, doc.Number, doc.ReceiptDate,
			doc.PartyID, doc.Amount, doc.Mode, doc.Reference,
			doc.UnallocatedAmount, doc.AmountInWords,
			doc.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("receipt", "number", doc.Number)
		}
		return fmt.Errorf("insert %s: %w", receiptsTable, err)
	}

	return nil
}

// SaveAllocations inserts the receipt's bill allocations.
func (r *ReceiptRepo) SaveAllocations(ctx context.Context, receiptID id.ID, allocations []receipt.Allocation) error {
	if len(allocations) == 0 {
		return nil
	}

	q := r.builder().
		Insert(receiptAllocationsTable).
		Columns("id", "receipt_id", "bill_id", "amount", "balance_before", "balance_after")

	for _, alloc := range allocations {
		q = q.Values(
			alloc.ID, receiptID, alloc.BillID,
			alloc.Amount, alloc.BalanceBefore, alloc.BalanceAfter,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert allocations: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert allocations: %w", err)
	}

	return nil
}

// GetByID retrieves a receipt header by ID.
func (r *ReceiptRepo) GetByID(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	q := r.builder().
		Select(receiptColumns...).
		From(receiptsTable).
		Where(squirrel.Eq{"id": receiptID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc receipt.Receipt
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("receipt", receiptID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &doc, nil
}

// GetAllocations retrieves the allocations of a receipt.
func (r *ReceiptRepo) GetAllocations(ctx context.Context, receiptID id.ID) ([]receipt.Allocation, error) {
	q := r.builder().
		Select("id", "receipt_id", "bill_id", "amount", "balance_before", "balance_after").
		From(receiptAllocationsTable).
		Where(squirrel.Eq{"receipt_id": receiptID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var allocations []receipt.Allocation
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &allocations, sql, args...); err != nil {
		return nil, fmt.Errorf("get allocations: %w", err)
	}

	return allocations, nil
}

// ListNumbers returns receipt numbers in the given financial year.
func (r *ReceiptRepo) ListNumbers(ctx context.Context, financialYear string) ([]string, error) {
	q := r.builder().
		Select("number").
		From(receiptsTable).
		Where(squirrel.Like{"number": "%/" + financialYear + "/%"})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var numbers []string
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &numbers, sql, args...); err != nil {
		return nil, fmt.Errorf("list numbers: %w", err)
	}

	return numbers, nil
}
