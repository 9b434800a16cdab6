// Package document_repo provides PostgreSQL implementations for document repositories.
package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
	"coldstore/internal/domain/documents/bill"
	"coldstore/internal/infrastructure/storage/postgres"
)

const (
	billsTable     = "doc_bills"
	billLinesTable = "doc_bill_lines"
)

var billColumns = []string{
	"id", "number", "bill_date",
	"party_id", "party_gstin", "jurisdiction",
	"gst_rate", "tds_rate", "apply_tds", "discount",
	"gross_amount", "taxable_amount",
	"cgst_amount", "sgst_amount", "igst_amount", "total_gst",
	"tds_amount", "total_amount", "net_payable",
	"rounded_total", "round_off", "amount_in_words",
	"paid_amount", "balance_amount",
	"created_at", "updated_at",
}

// BillRepo implements bill.Repository.
type BillRepo struct {
	txManager *postgres.TxManager
}

// NewBillRepo creates a new bill repository.
func NewBillRepo(txManager *postgres.TxManager) *BillRepo {
	return &BillRepo{txManager: txManager}
}

func (r *BillRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts the bill header.
func (r *BillRepo) Create(ctx context.Context, doc *bill.Bill) error {
	q := r.builder().
		Insert(billsTable).
		Columns(billColumns...).
		Values(
			doc.ID, doc.Number, doc.BillDate,
			doc.PartyID, doc.PartyGSTIN, doc.Jurisdiction,
			doc.GSTRate, doc.TDSRate, doc.ApplyTDS, doc.Discount,
			doc.GrossAmount, doc.TaxableAmount,
			doc.CGSTAmount, doc.SGSTAmount, doc.IGSTAmount, doc.TotalGST,
			doc.TDSAmount, doc.TotalAmount, doc.NetPayable,
			doc.RoundedTotal, doc.RoundOff, doc.AmountInWords,
			doc.PaidAmount, doc.BalanceAmount,
			doc.CreatedAt, doc.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("bill", "number", doc.Number)
		}
		return fmt.Errorf("insert %s: %w", billsTable, err)
	}

	return nil
}

// SaveLines saves charge lines for a bill (delete existing + insert new).
func (r *BillRepo) SaveLines(ctx context.Context, billID id.ID, lines []bill.Line) error {
	querier := r.txManager.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + billLinesTable + " WHERE bill_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, billID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder().
		Insert(billLinesTable).
		Columns("line_id", "bill_id", "line_no", "component", "rate", "quantity", "amount", "lot_id")

	for _, line := range lines {
		q = q.Values(
			line.LineID, billID, line.LineNo, line.Component,
			line.Rate, line.Quantity, line.Amount, line.LotID,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetByID retrieves a bill header by ID.
func (r *BillRepo) GetByID(ctx context.Context, billID id.ID) (*bill.Bill, error) {
	q := r.builder().
		Select(billColumns...).
		From(billsTable).
		Where(squirrel.Eq{"id": billID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc bill.Bill
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("bill", billID.String())
		}
		return nil, fmt.Errorf("get by id: %w", err)
	}

	return &doc, nil
}

// GetLines retrieves the charge lines of a bill.
func (r *BillRepo) GetLines(ctx context.Context, billID id.ID) ([]bill.Line, error) {
	q := r.builder().
		Select("line_id", "bill_id", "line_no", "component", "rate", "quantity", "amount", "lot_id").
		From(billLinesTable).
		Where(squirrel.Eq{"bill_id": billID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []bill.Line
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// ListNumbers returns bill numbers in the given financial year.
func (r *BillRepo) ListNumbers(ctx context.Context, financialYear string) ([]string, error) {
	q := r.builder().
		Select("number").
		From(billsTable).
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

// ListOpenByParty returns the party's bills with a positive balance, oldest first.
func (r *BillRepo) ListOpenByParty(ctx context.Context, partyID id.ID) ([]billing.OpenBill, error) {
	q := r.builder().
		Select("id", "bill_date", "balance_amount AS balance").
		From(billsTable).
		Where(squirrel.Eq{"party_id": partyID}).
		Where(squirrel.Gt{"balance_amount": 0}).
		OrderBy("bill_date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var open []billing.OpenBill
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &open, sql, args...); err != nil {
		return nil, fmt.Errorf("list open bills: %w", err)
	}

	return open, nil
}

// ApplyAllocation moves the allocated amount from balance to paid.
// The WHERE guard keeps the balance from going negative under concurrent
// receipts; zero rows affected means the balance changed underneath us.
func (r *BillRepo) ApplyAllocation(ctx context.Context, billID id.ID, amount types.Money) error {
	q := r.builder().
		Update(billsTable).
		Set("paid_amount", squirrel.Expr("paid_amount + ?", amount)).
		Set("balance_amount", squirrel.Expr("balance_amount - ?", amount)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": billID}).
		Where(squirrel.Expr("balance_amount >= ?", amount))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("apply allocation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewBusinessRule(
			apperror.CodeAllocationExceedsBalance,
			"allocation exceeds the bill's outstanding balance",
		).WithDetail("billId", billID.String()).
			WithDetail("amount", amount.String())
	}

	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
