package handler

import (
	"context"
	"net/http"
	"strings"

	apppartner "github.com/erp/connector/internal/application/partner"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// BankService covers res.bank and standalone res.partner.bank writes
type BankService interface {
	CreateBank(ctx context.Context, cred identity.Credential, in partner.BankInput) shared.Result[*partner.Bank]
	ListBanks(ctx context.Context, cred identity.Credential, name string) shared.Result[[]partner.Bank]
	CreateBankAccount(ctx context.Context, cred identity.Credential, partnerID int64, in partner.BankAccountInput) shared.Result[*partner.BankAccount]
}

// BankHandler handles bank and bank account endpoints
type BankHandler struct {
	BaseHandler
	banks BankService
}

// NewBankHandler creates a new bank handler
func NewBankHandler(base BaseHandler, banks BankService) *BankHandler {
	return &BankHandler{BaseHandler: base, banks: banks}
}

// CreateBank godoc
// @Summary      Create bank
// @Tags         banks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body apppartner.CreateBankRequest true "Bank"
// @Success      201 {object} dto.Envelope{data=partner.Bank}
// @Failure      400 {object} dto.Envelope
// @Router       /banks [post]
func (h *BankHandler) CreateBank(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req apppartner.CreateBankRequest
	if !h.bindJSON(c, &req) {
		return
	}
	in := partner.BankInput{Name: strings.TrimSpace(req.Name), BIC: strings.TrimSpace(req.BIC)}
	h.Render(c, h.banks.CreateBank(c.Request.Context(), cred, in), http.StatusCreated)
}

// ListBanks godoc
// @Summary      List banks
// @Tags         banks
// @Produce      json
// @Security     BearerAuth
// @Param        name query string false "Name contains"
// @Success      200 {object} dto.Envelope{data=[]partner.Bank}
// @Router       /banks [get]
func (h *BankHandler) ListBanks(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Query("name"))
	if len(name) > 200 {
		h.HandleError(c, shared.InvalidInput("name must be at most 200 characters"), nil)
		return
	}
	h.Render(c, h.banks.ListBanks(c.Request.Context(), cred, name), http.StatusOK)
}

// CreateBankAccount godoc
// @Summary      Create bank account
// @Description  Create one account for partner_id, resolving or creating its bank
// @Tags         banks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body apppartner.CreateBankAccountRequest true "Account"
// @Success      201 {object} dto.Envelope{data=partner.BankAccount}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /bank-accounts [post]
func (h *BankHandler) CreateBankAccount(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req apppartner.CreateBankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if !req.PartnerID.Valid() {
		h.HandleError(c, shared.NotFound("partner", 0), nil)
		return
	}
	h.Render(c, h.banks.CreateBankAccount(c.Request.Context(), cred, req.PartnerID.Int64(), req.ToInput()), http.StatusCreated)
}
