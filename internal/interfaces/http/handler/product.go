package handler

import (
	"context"
	"net/http"

	appcatalog "github.com/erp/connector/internal/application/catalog"
	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ProductService covers product.template reads and writes
type ProductService interface {
	Create(ctx context.Context, cred identity.Credential, fields shared.Fields) shared.Result[*catalog.Product]
	GetByID(ctx context.Context, cred identity.Credential, id int64) shared.Result[*catalog.Product]
	List(ctx context.Context, cred identity.Credential, filter catalog.Filter) shared.Result[[]catalog.Product]
	Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) shared.Result[*catalog.Product]
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	products ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(base BaseHandler, products ProductService) *ProductHandler {
	return &ProductHandler{BaseHandler: base, products: products}
}

// Create godoc
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body appcatalog.CreateProductRequest true "Product"
// @Success      201 {object} dto.Envelope{data=catalog.Product}
// @Failure      400 {object} dto.Envelope
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req appcatalog.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Render(c, h.products.Create(c.Request.Context(), cred, req.ToFields()), http.StatusCreated)
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        company_id query string false "Company id"
// @Param        name       query string false "Name contains"
// @Param        limit      query int    false "Max records"
// @Success      200 {object} dto.Envelope{data=[]catalog.Product}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	var req appcatalog.ListProductsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	companyID, ok := h.queryID(c, "company_id", req.CompanyID)
	if !ok {
		return
	}
	filter := catalog.Filter{CompanyID: companyID, Name: req.Name, Limit: req.Limit}
	h.Render(c, h.products.List(c.Request.Context(), cred, filter), http.StatusOK)
}

// Get godoc
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Product id"
// @Success      200 {object} dto.Envelope{data=catalog.Product}
// @Failure      404 {object} dto.Envelope
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	h.Render(c, h.products.GetByID(c.Request.Context(), cred, id), http.StatusOK)
}

// Update godoc
// @Summary      Update product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                             true "Product id"
// @Param        request body appcatalog.UpdateProductRequest true "Fields to write"
// @Success      200 {object} dto.Envelope{data=catalog.Product}
// @Failure      400 {object} dto.Envelope
// @Failure      404 {object} dto.Envelope
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	cred, ok := h.credential(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "product")
	if !ok {
		return
	}
	var req appcatalog.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.Render(c, h.products.Update(c.Request.Context(), cred, id, req.ToFields()), http.StatusOK)
}
