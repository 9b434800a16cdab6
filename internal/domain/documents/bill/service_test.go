package bill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
)

// --- Mocks ---

type mockTxManager struct{}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	numbers []string
	created []*Bill
	lines   map[id.ID][]Line
	open    []billing.OpenBill

	// failCreates makes the first N Create calls collide on the number.
	failCreates int
}

func newMockRepo() *mockRepo {
	return &mockRepo{lines: make(map[id.ID][]Line)}
}

func (m *mockRepo) Create(ctx context.Context, doc *Bill) error {
	if m.failCreates > 0 {
		m.failCreates--
		// Simulate another writer having taken the number.
		m.numbers = append(m.numbers, doc.Number)
		return apperror.NewDuplicate("bill", "number", doc.Number)
	}
	copied := *doc
	m.created = append(m.created, &copied)
	m.numbers = append(m.numbers, doc.Number)
	return nil
}

func (m *mockRepo) SaveLines(ctx context.Context, billID id.ID, lines []Line) error {
	m.lines[billID] = lines
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, billID id.ID) (*Bill, error) {
	for _, doc := range m.created {
		if doc.ID == billID {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, apperror.NewNotFound("bill", billID.String())
}

func (m *mockRepo) GetLines(ctx context.Context, billID id.ID) ([]Line, error) {
	return m.lines[billID], nil
}

func (m *mockRepo) ListNumbers(ctx context.Context, financialYear string) ([]string, error) {
	var out []string
	for _, n := range m.numbers {
		if parsed := billing.ParseDocumentNumber(n); parsed != nil && parsed.FinancialYear == financialYear {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepo) ListOpenByParty(ctx context.Context, partyID id.ID) ([]billing.OpenBill, error) {
	return m.open, nil
}

func (m *mockRepo) ApplyAllocation(ctx context.Context, billID id.ID, amount types.Money) error {
	return nil
}

// --- Helpers ---

var fixedNow = time.Date(2024, time.September, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo) *Service {
	cfg := DefaultConfig("29XYZAB5678C1Z9")
	cfg.Now = func() time.Time { return fixedNow }
	return NewService(repo, &mockTxManager{}, nil, cfg)
}

func testLot() billing.StorageLot {
	return billing.StorageLot{
		WeightQuintals: types.MustMoney("100"),
		ArrivalDate:    fixedNow.AddDate(0, 0, -30),
		RatePerQuintal: types.MustMoney("2"),
		RateBasis:      billing.ByWeight,
		Period:         billing.PeriodMonthly,
	}
}

func draftBill() *Bill {
	return &Bill{
		BillDate: fixedNow,
		PartyID:  id.New(),
		GSTRate:  types.MustMoney("18"),
	}
}

// --- Tests ---

func TestService_Price(t *testing.T) {
	svc := newTestService(newMockRepo())

	doc := draftBill()
	err := svc.Price(context.Background(), doc, []billing.StorageLot{testLot()})
	require.NoError(t, err)

	// 100 quintals at 2/month for 30 days = 200 rent.
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, billing.ComponentRent, doc.Lines[0].Component)
	assert.True(t, doc.Lines[0].Amount.Equal(types.MustMoney("200")), "rent %s", doc.Lines[0].Amount)

	// No party GSTIN: jurisdiction defaults to intra-state, 9+9 split.
	assert.Equal(t, billing.IntraState, doc.Jurisdiction)
	assert.True(t, doc.CGSTAmount.Equal(types.MustMoney("18")))
	assert.True(t, doc.SGSTAmount.Equal(types.MustMoney("18")))
	assert.True(t, doc.TotalAmount.Equal(types.MustMoney("236")), "total %s", doc.TotalAmount)

	assert.True(t, doc.BalanceAmount.Equal(doc.NetPayable))
	assert.True(t, doc.PaidAmount.IsZero())
	assert.Equal(t, "Two Hundred Thirty Six Rupees Only", doc.AmountInWords)
}

func TestService_Price_PacketBasisLineMetadata(t *testing.T) {
	svc := newTestService(newMockRepo())

	lot := billing.StorageLot{
		WeightQuintals: types.MustMoney("100"),
		PacketCount:    500,
		ArrivalDate:    fixedNow.AddDate(0, 0, -30),
		RatePerQuintal: types.MustMoney("2"),
		RatePerPacket:  types.MustMoney("6"),
		RateBasis:      billing.ByPacket,
		Period:         billing.PeriodMonthly,
	}

	doc := draftBill()
	require.NoError(t, svc.Price(context.Background(), doc, []billing.StorageLot{lot}))

	// The line records the per-packet rate and packet count it was billed
	// on, not the lot's weight figures.
	require.Len(t, doc.Lines, 1)
	assert.True(t, doc.Lines[0].Rate.Equal(types.MustMoney("6")), "rate %s", doc.Lines[0].Rate)
	assert.True(t, doc.Lines[0].Quantity.Equal(types.MustMoney("500")), "quantity %s", doc.Lines[0].Quantity)
	assert.True(t, doc.Lines[0].Amount.Equal(types.MustMoney("3000")), "amount %s", doc.Lines[0].Amount)
}

func TestService_Price_InterStateParty(t *testing.T) {
	svc := newTestService(newMockRepo())

	doc := draftBill()
	doc.PartyGSTIN = "27AAACW2387R1ZT" // different state code than the org's 29

	err := svc.Price(context.Background(), doc, []billing.StorageLot{testLot()})
	require.NoError(t, err)

	assert.Equal(t, billing.InterState, doc.Jurisdiction)
	assert.True(t, doc.IGSTAmount.Equal(types.MustMoney("36")), "igst %s", doc.IGSTAmount)
	assert.True(t, doc.CGSTAmount.IsZero())
}

func TestService_Price_RejectsMalformedGSTIN(t *testing.T) {
	svc := newTestService(newMockRepo())

	doc := draftBill()
	doc.PartyGSTIN = "not-a-gstin"

	err := svc.Price(context.Background(), doc, nil)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidGSTIN, appErr.Code)
}

func TestService_Create_AssignsNextNumber(t *testing.T) {
	repo := newMockRepo()
	repo.numbers = []string{
		"KB/2024-25/0007",
		"KB/2023-24/0150", // previous FY, ignored
	}
	svc := newTestService(repo)

	doc := draftBill()
	err := svc.Create(context.Background(), doc, []billing.StorageLot{testLot()})
	require.NoError(t, err)

	assert.Equal(t, "KB/2024-25/0008", doc.Number)
	require.Len(t, repo.created, 1)
	assert.Len(t, repo.lines[doc.ID], 1)
	assert.False(t, id.IsNil(doc.ID))
	assert.Equal(t, fixedNow.UTC(), doc.CreatedAt)
}

func TestService_Create_RetriesOnNumberCollision(t *testing.T) {
	repo := newMockRepo()
	repo.numbers = []string{"KB/2024-25/0007"}
	repo.failCreates = 1
	svc := newTestService(repo)

	doc := draftBill()
	err := svc.Create(context.Background(), doc, []billing.StorageLot{testLot()})
	require.NoError(t, err)

	// First attempt took 0008 and collided; the retry re-scanned and got 0009.
	assert.Equal(t, "KB/2024-25/0009", doc.Number)
	require.Len(t, repo.created, 1)
}

func TestService_Create_GivesUpAfterRetries(t *testing.T) {
	repo := newMockRepo()
	repo.failCreates = numberRetries
	svc := newTestService(repo)

	doc := draftBill()
	err := svc.Create(context.Background(), doc, []billing.StorageLot{testLot()})

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNumberCollision, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestService_GetByID(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	doc := draftBill()
	require.NoError(t, svc.Create(context.Background(), doc, []billing.StorageLot{testLot()}))

	got, err := svc.GetByID(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Number, got.Number)
	assert.Len(t, got.Lines, 1)

	_, err = svc.GetByID(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}
