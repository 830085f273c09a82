package handler

import (
	"context"
	"net/http"

	apppartner "github.com/erp/connector/internal/application/partner"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// PartnerService is the partner orchestrator used by PartnerHandler
type PartnerService interface {
	CreateWithBankAccounts(ctx context.Context, cred identity.Credential, input apppartner.CreatePartnerInput, role partner.Role) shared.Result[*apppartner.PartnerWithAccounts]
	Get(ctx context.Context, cred identity.Credential, id int64, role partner.Role) shared.Result[*partner.Partner]
	List(ctx context.Context, cred identity.Credential, filter partner.Filter) shared.Result[[]partner.Partner]
	Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields, role partner.Role) shared.Result[*partner.Partner]
	Archive(ctx context.Context, cred identity.Credential, id int64) shared.Result[int64]
	ListBankAccounts(ctx context.Context, cred identity.Credential, partnerID int64) shared.Result[[]partner.BankAccount]
	AddBankAccount(ctx context.Context, cred identity.Credential, partnerID int64, in partner.BankAccountInput) shared.Result[[]partner.BankAccount]
	RemoveBankAccount(ctx context.Context, cred identity.Credential, partnerID, accountID int64) shared.Result[[]partner.BankAccount]
}

// PartnerHandler handles client and provider endpoints
type PartnerHandler struct {
	BaseHandler
	partners PartnerService
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(base BaseHandler, partners PartnerService) *PartnerHandler {
	return &PartnerHandler{BaseHandler: base, partners: partners}
}

// CreateClient godoc
// @Summary      Create client
// @Description  Create a customer-ranked partner and attach its bank accounts in order
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body apppartner.CreatePartnerRequest true "Partner with bank accounts"
// @Success      201 {object} dto.Envelope{data=apppartner.PartnerWithAccounts}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Failure      500 {object} dto.Envelope
// @Router       /partners/clients [post]
func (h *PartnerHandler) CreateClient(c *gin.Context) {
	h.create(c, partner.RoleClient)
}

// CreateProvider godoc
// @Summary      Create provider
// @Description  Create a supplier-ranked partner and attach its bank accounts in order
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body apppartner.CreatePartnerRequest true "Partner with bank accounts"
// @Success      201 {object} dto.Envelope{data=apppartner.PartnerWithAccounts}
// @Failure      400 {object} dto.Envelope
// @Router       /partners/providers [post]
func (h *PartnerHandler) CreateProvider(c *gin.Context) {
	h.create(c, partner.RoleProvider)
}

// Create godoc
// @Summary      Create partner
// @Description  Create a partner whose rank comes from the body's role (default both)
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body apppartner.CreatePartnerRequest true "Partner with bank accounts"
// @Success      201 {object} dto.Envelope{data=apppartner.PartnerWithAccounts}
// @Failure      400 {object} dto.Envelope
// @Router       /partners [post]
func (h *PartnerHandler) Create(c *gin.Context) {
	// RoleAny means the body left role out
	h.create(c, partner.RoleAny)
}

func (h *PartnerHandler) create(c *gin.Context, role partner.Role) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req apppartner.CreatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if role == partner.RoleAny {
		parsed, err := partner.ParseRole(req.Role)
		if err != nil {
			h.HandleError(c, err, nil)
			return
		}
		role = parsed
		if role == partner.RoleAny {
			role = partner.RoleBoth
		}
	}
	h.Render(c, h.partners.CreateWithBankAccounts(c.Request.Context(), cred, req.ToInput(), role), http.StatusCreated)
}

// ListClients godoc
// @Summary      List clients
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        company_id query string false "Company id"
// @Param        name       query string false "Name contains"
// @Param        limit      query int    false "Max records"
// @Success      200 {object} dto.Envelope{data=[]partner.Partner}
// @Router       /partners/clients [get]
func (h *PartnerHandler) ListClients(c *gin.Context) {
	h.list(c, partner.RoleClient)
}

// ListProviders godoc
// @Summary      List providers
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Envelope{data=[]partner.Partner}
// @Router       /partners/providers [get]
func (h *PartnerHandler) ListProviders(c *gin.Context) {
	h.list(c, partner.RoleProvider)
}

func (h *PartnerHandler) list(c *gin.Context, role partner.Role) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req apppartner.ListPartnersRequest
	if !h.bindQuery(c, &req) {
		return
	}
	companyID, ok := h.queryID(c, "company_id", req.CompanyID)
	if !ok {
		return
	}
	filter := partner.Filter{
		Role:      role,
		CompanyID: companyID,
		Name:      req.Name,
		Limit:     req.Limit,
	}
	h.Render(c, h.partners.List(c.Request.Context(), cred, filter), http.StatusOK)
}

// GetClient godoc
// @Summary      Get client
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Partner id"
// @Success      200 {object} dto.Envelope{data=partner.Partner}
// @Failure      404 {object} dto.Envelope
// @Router       /partners/clients/{id} [get]
func (h *PartnerHandler) GetClient(c *gin.Context) {
	h.get(c, partner.RoleClient)
}

// GetProvider godoc
// @Summary      Get provider
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Partner id"
// @Success      200 {object} dto.Envelope{data=partner.Partner}
// @Failure      404 {object} dto.Envelope
// @Router       /partners/providers/{id} [get]
func (h *PartnerHandler) GetProvider(c *gin.Context) {
	h.get(c, partner.RoleProvider)
}

func (h *PartnerHandler) get(c *gin.Context, role partner.Role) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	h.Render(c, h.partners.Get(c.Request.Context(), cred, id, role), http.StatusOK)
}

// UpdateClient godoc
// @Summary      Update client
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                             true "Partner id"
// @Param        request body apppartner.UpdatePartnerRequest true "Fields to write"
// @Success      200 {object} dto.Envelope{data=partner.Partner}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /partners/clients/{id} [put]
func (h *PartnerHandler) UpdateClient(c *gin.Context) {
	h.update(c, partner.RoleClient)
}

// UpdateProvider godoc
// @Summary      Update provider
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                             true "Partner id"
// @Param        request body apppartner.UpdatePartnerRequest true "Fields to write"
// @Success      200 {object} dto.Envelope{data=partner.Partner}
// @Router       /partners/providers/{id} [put]
func (h *PartnerHandler) UpdateProvider(c *gin.Context) {
	h.update(c, partner.RoleProvider)
}

func (h *PartnerHandler) update(c *gin.Context, role partner.Role) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	var req apppartner.UpdatePartnerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Render(c, h.partners.Update(c.Request.Context(), cred, id, req.ToFields(), role), http.StatusOK)
}

// Archive godoc
// @Summary      Archive partner
// @Description  Set active=false on the partner; the record is kept
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Partner id"
// @Success      200 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /partners/{id} [delete]
func (h *PartnerHandler) Archive(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	h.Render(c, h.partners.Archive(c.Request.Context(), cred, id), http.StatusOK)
}

// ListBankAccounts godoc
// @Summary      List partner bank accounts
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Partner id"
// @Success      200 {object} dto.Envelope{data=[]partner.BankAccount}
// @Failure      404 {object} dto.Envelope
// @Router       /partners/{id}/bank-accounts [get]
func (h *PartnerHandler) ListBankAccounts(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	h.Render(c, h.partners.ListBankAccounts(c.Request.Context(), cred, id), http.StatusOK)
}

// AddBankAccount godoc
// @Summary      Add bank account
// @Description  Attach one account to the partner, resolving or creating its bank
// @Tags         partners
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                           true "Partner id"
// @Param        request body apppartner.BankAccountRequest true "Account"
// @Success      201 {object} dto.Envelope{data=[]partner.BankAccount}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /partners/{id}/bank-accounts [post]
func (h *PartnerHandler) AddBankAccount(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	var req apppartner.BankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Render(c, h.partners.AddBankAccount(c.Request.Context(), cred, id, req.ToInput()), http.StatusCreated)
}

// RemoveBankAccount godoc
// @Summary      Remove bank account
// @Tags         partners
// @Produce      json
// @Security     BearerAuth
// @Param        id        path int true "Partner id"
// @Param        accountId path int true "Bank account id"
// @Success      200 {object} dto.Envelope{data=[]partner.BankAccount}
// @Failure      404 {object} dto.Envelope
// @Router       /partners/{id}/bank-accounts/{accountId} [delete]
func (h *PartnerHandler) RemoveBankAccount(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "partner")
	if !ok {
		return
	}
	accountID, ok := h.pathID(c, "accountId", "bank account")
	if !ok {
		return
	}
	h.Render(c, h.partners.RemoveBankAccount(c.Request.Context(), cred, id, accountID), http.StatusOK)
}
