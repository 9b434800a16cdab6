package dto

import (
	"time"

	"coldstore/internal/core/apperror"
	"coldstore/internal/core/id"
	"coldstore/internal/core/types"
	"coldstore/internal/domain/billing"
	"coldstore/internal/domain/documents/bill"
)

// --- Storage lots ---

// StorageLotRequest describes one stored lot for rent calculation.
type StorageLotRequest struct {
	WeightQuintals types.Money `json:"weightQuintals"`
	PacketCount    int64       `json:"packetCount"`

	ArrivalDate  time.Time  `json:"arrivalDate" binding:"required"`
	DispatchDate *time.Time `json:"dispatchDate"`

	GraceDays int `json:"graceDays"`

	RatePerQuintal types.Money `json:"ratePerQuintal"`
	RatePerPacket  types.Money `json:"ratePerPacket"`
	RateBasis      string      `json:"rateBasis"`
	Period         string      `json:"period"`
}

// ToDomain converts the request to an engine storage lot.
func (r StorageLotRequest) ToDomain() billing.StorageLot {
	return billing.StorageLot{
		WeightQuintals: r.WeightQuintals,
		PacketCount:    r.PacketCount,
		ArrivalDate:    r.ArrivalDate,
		DispatchDate:   r.DispatchDate,
		GraceDays:      r.GraceDays,
		RatePerQuintal: r.RatePerQuintal,
		RatePerPacket:  r.RatePerPacket,
		RateBasis:      billing.RateBasis(r.RateBasis),
		Period:         billing.RentPeriod(r.Period),
	}
}

// --- Bills ---

// ChargeLineRequest is one ancillary charge on a bill.
type ChargeLineRequest struct {
	Component string      `json:"component" binding:"required"`
	Rate      types.Money `json:"rate"`
	Quantity  types.Money `json:"quantity"`
	Amount    types.Money `json:"amount"`
}

// CreateBillRequest creates (or previews) a rent bill.
type CreateBillRequest struct {
	BillDate   time.Time `json:"billDate" binding:"required"`
	PartyID    string    `json:"partyId" binding:"required"`
	PartyGSTIN string    `json:"partyGstin"`

	Jurisdiction string      `json:"jurisdiction"`
	GSTRate      types.Money `json:"gstRate"`
	TDSRate      types.Money `json:"tdsRate"`
	ApplyTDS     bool        `json:"applyTds"`

	Discount types.Money `json:"discount"`

	Lots    []StorageLotRequest `json:"lots"`
	Charges []ChargeLineRequest `json:"charges"`
}

// ToDocument converts the request to a bill draft plus its storage lots.
func (r CreateBillRequest) ToDocument() (*bill.Bill, []billing.StorageLot, error) {
	partyID, err := id.Parse(r.PartyID)
	if err != nil {
		return nil, nil, apperror.NewValidation("invalid partyId").
			WithDetail("partyId", r.PartyID)
	}

	doc := &bill.Bill{
		BillDate:     r.BillDate,
		PartyID:      partyID,
		PartyGSTIN:   r.PartyGSTIN,
		Jurisdiction: billing.TaxJurisdiction(r.Jurisdiction),
		GSTRate:      r.GSTRate,
		TDSRate:      r.TDSRate,
		ApplyTDS:     r.ApplyTDS,
		Discount:     r.Discount,
	}

	for i, charge := range r.Charges {
		doc.Lines = append(doc.Lines, bill.Line{
			LineID:    id.New(),
			LineNo:    i + 1,
			Component: billing.ChargeComponent(charge.Component),
			Rate:      charge.Rate,
			Quantity:  charge.Quantity,
			Amount:    charge.Amount,
		})
	}

	lots := make([]billing.StorageLot, len(r.Lots))
	for i, lot := range r.Lots {
		lots[i] = lot.ToDomain()
	}

	return doc, lots, nil
}

// OpenBillResponse is one unsettled bill of a party.
type OpenBillResponse struct {
	BillID   string      `json:"billId"`
	BillDate time.Time   `json:"billDate"`
	Balance  types.Money `json:"balance"`
}

// FromOpenBills converts engine open bills to responses.
func FromOpenBills(open []billing.OpenBill) []OpenBillResponse {
	out := make([]OpenBillResponse, len(open))
	for i, b := range open {
		out[i] = OpenBillResponse{
			BillID:   b.ID.String(),
			BillDate: b.BillDate,
			Balance:  b.Balance,
		}
	}
	return out
}

// --- Previews ---

// RentPreviewRequest computes rent for a single lot without a bill.
type RentPreviewRequest struct {
	Lot  StorageLotRequest `json:"lot" binding:"required"`
	AsOf *time.Time        `json:"asOf"`
}

// RentPreviewResponse is the rent calculation outcome.
type RentPreviewResponse struct {
	StorageDays  int         `json:"storageDays"`
	BillableDays int         `json:"billableDays"`
	Amount       types.Money `json:"amount"`
}

// AmountWordsRequest converts an amount to words and Indian digit grouping.
type AmountWordsRequest struct {
	Amount types.Money `json:"amount"`
}

// AmountWordsResponse carries both presentation forms.
type AmountWordsResponse struct {
	AmountInWords string `json:"amountInWords"`
	Formatted     string `json:"formatted"`
}
