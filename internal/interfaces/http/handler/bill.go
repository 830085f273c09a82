package handler

import (
	"context"
	"net/http"

	appbilling "github.com/erp/connector/internal/application/billing"
	"github.com/erp/connector/internal/domain/billing"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// BillService is the invoice lifecycle orchestrator used by BillHandler
type BillService interface {
	CreateWithLines(ctx context.Context, cred identity.Credential, input appbilling.CreateBillInput) shared.Result[*appbilling.BillWithWarnings]
	GetByID(ctx context.Context, cred identity.Credential, id int64, filter billing.StateFilter) shared.Result[*billing.Bill]
	List(ctx context.Context, cred identity.Credential, filter billing.Filter) shared.Result[[]billing.Bill]
	UpdateFull(ctx context.Context, cred identity.Credential, id int64, input appbilling.UpdateBillInput) shared.Result[*appbilling.BillWithWarnings]
	EditRow(ctx context.Context, cred identity.Credential, id int64, row appbilling.EditRowInput) shared.Result[*billing.Bill]
	Confirm(ctx context.Context, cred identity.Credential, id int64) shared.Result[*billing.Bill]
}

// BillHandler handles vendor bill and invoice endpoints
type BillHandler struct {
	BaseHandler
	bills BillService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(base BaseHandler, bills BillService) *BillHandler {
	return &BillHandler{BaseHandler: base, bills: bills}
}

// Create godoc
// @Summary      Create bill
// @Description  Create a draft bill and attach its lines; invalid lines are skipped and reported
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appbilling.CreateBillRequest true "Bill with lines"
// @Success      201 {object} dto.Envelope{data=appbilling.BillWithWarnings}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Failure      500 {object} dto.Envelope
// @Router       /bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req appbilling.CreateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Render(c, h.bills.CreateWithLines(c.Request.Context(), cred, req.ToInput()), http.StatusCreated)
}

// List godoc
// @Summary      List bills
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        state      query string false "draft or posted"
// @Param        partner_id query string false "Partner id"
// @Param        move_type  query string false "Document type"
// @Param        limit      query int    false "Max records"
// @Success      200 {object} dto.Envelope{data=[]billing.Bill}
// @Router       /bills [get]
func (h *BillHandler) List(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req appbilling.ListBillsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	state, err := billing.ParseStateFilter(req.State)
	if err != nil {
		h.HandleError(c, err, nil)
		return
	}
	partnerID, ok := h.queryID(c, "partner_id", req.PartnerID)
	if !ok {
		return
	}
	filter := billing.Filter{
		State:     state,
		PartnerID: partnerID,
		MoveType:  billing.MoveType(req.MoveType),
		Limit:     req.Limit,
	}
	h.Render(c, h.bills.List(c.Request.Context(), cred, filter), http.StatusOK)
}

// Get godoc
// @Summary      Get bill
// @Description  Read a bill with its lines, optionally requiring a state
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int    true  "Bill id"
// @Param        state query string false "draft or posted"
// @Success      200 {object} dto.Envelope{data=billing.Bill}
// @Failure      404 {object} dto.Envelope
// @Router       /bills/{id} [get]
func (h *BillHandler) Get(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	state, err := billing.ParseStateFilter(c.Query("state"))
	if err != nil {
		h.HandleError(c, err, nil)
		return
	}
	h.Render(c, h.bills.GetByID(c.Request.Context(), cred, id, state), http.StatusOK)
}

// Update godoc
// @Summary      Update draft bill
// @Description  Write the header and, when invoice_line_ids is sent, replace every line
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                          true "Bill id"
// @Param        request body appbilling.UpdateBillRequest true "Header and lines"
// @Success      200 {object} dto.Envelope{data=appbilling.BillWithWarnings}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /bills/{id} [put]
func (h *BillHandler) Update(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	var req appbilling.UpdateBillRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Render(c, h.bills.UpdateFull(c.Request.Context(), cred, id, req.ToInput()), http.StatusOK)
}

// AddLine godoc
// @Summary      Add bill line
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                    true "Bill id"
// @Param        request body appbilling.LineRequest true "Line"
// @Success      200 {object} dto.Envelope{data=billing.Bill}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /bills/{id}/lines [post]
func (h *BillHandler) AddLine(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	var req appbilling.LineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	row := appbilling.EditRowInput{Action: appbilling.RowAdd, Line: req.ToInput()}
	h.Render(c, h.bills.EditRow(c.Request.Context(), cred, id, row), http.StatusOK)
}

// DeleteLine godoc
// @Summary      Delete bill line
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int true "Bill id"
// @Param        lineId path int true "Line id"
// @Success      200 {object} dto.Envelope{data=billing.Bill}
// @Failure      404 {object} dto.Envelope
// @Router       /bills/{id}/lines/{lineId} [delete]
func (h *BillHandler) DeleteLine(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	lineID, ok := h.pathID(c, "lineId", "bill line")
	if !ok {
		return
	}
	row := appbilling.EditRowInput{Action: appbilling.RowDelete, LineID: lineID}
	h.Render(c, h.bills.EditRow(c.Request.Context(), cred, id, row), http.StatusOK)
}

// Confirm godoc
// @Summary      Confirm bill
// @Description  Post a draft bill
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Bill id"
// @Success      200 {object} dto.Envelope{data=billing.Bill}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /bills/{id}/confirm [post]
func (h *BillHandler) Confirm(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "bill")
	if !ok {
		return
	}
	h.Render(c, h.bills.Confirm(c.Request.Context(), cred, id), http.StatusOK)
}
