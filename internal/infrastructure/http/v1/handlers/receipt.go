package handlers

import (
	"github.com/gin-gonic/gin"

	"coldstore/internal/domain/documents/receipt"
	"coldstore/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler handles payment receipt endpoints.
type ReceiptHandler struct {
	*BaseHandler
	service *receipt.Service
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service}
}

// Create handles POST /receipts.
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, manual, err := req.ToDocument()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), doc, manual); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc.ID.String())
}

// GetByID handles GET /receipts/:id.
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	receiptID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}
