package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"coldstore/internal/domain/billing"
	"coldstore/internal/domain/documents/bill"
	"coldstore/internal/infrastructure/http/v1/dto"
	"coldstore/pkg/words"
)

// BillHandler handles rent bill endpoints.
type BillHandler struct {
	*BaseHandler
	service *bill.Service
}

// NewBillHandler creates a new bill handler.
func NewBillHandler(base *BaseHandler, service *bill.Service) *BillHandler {
	return &BillHandler{BaseHandler: base, service: service}
}

// Create handles POST /bills.
func (h *BillHandler) Create(c *gin.Context) {
	var req dto.CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, lots, err := req.ToDocument()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc, lots); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID.String())
}

// Preview handles POST /bills/preview.
// Prices the bill draft without persisting anything.
func (h *BillHandler) Preview(c *gin.Context) {
	var req dto.CreateBillRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, lots, err := req.ToDocument()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Price(c.Request.Context(), doc, lots); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// GetByID handles GET /bills/:id.
func (h *BillHandler) GetByID(c *gin.Context) {
	billID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), billID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// OpenBills handles GET /parties/:partyId/open-bills.
func (h *BillHandler) OpenBills(c *gin.Context) {
	partyID, ok := h.ParseIDParam(c, "partyId")
	if !ok {
		return
	}

	open, err := h.service.OpenBills(c.Request.Context(), partyID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromOpenBills(open))
}

// RentPreview handles POST /billing/rent-preview.
// Computes storage days and rent for a single lot.
func (h *BillHandler) RentPreview(c *gin.Context) {
	var req dto.RentPreviewRequest
	if !h.BindJSON(c, &req) {
		return
	}

	asOf := time.Now()
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	result := billing.CalculateAmadRent(req.Lot.ToDomain(), asOf)

	h.OK(c, dto.RentPreviewResponse{
		StorageDays:  result.StorageDays,
		BillableDays: result.BillableDays,
		Amount:       result.Amount,
	})
}

// AmountWords handles POST /billing/amount-in-words.
func (h *BillHandler) AmountWords(c *gin.Context) {
	var req dto.AmountWordsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	h.OK(c, dto.AmountWordsResponse{
		AmountInWords: words.AmountInWords(req.Amount),
		Formatted:     words.IndianFormat(req.Amount),
	})
}
