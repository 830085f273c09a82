// Package catalog exposes product template operations.
package catalog

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/catalog"
	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	DefaultCode   string           `json:"default_code" binding:"max=64"`
	Type          string           `json:"type" binding:"omitempty,oneof=consu service product combo"`
	ListPrice     *decimal.Decimal `json:"list_price"`
	StandardPrice *decimal.Decimal `json:"standard_price"`
	SaleOK        *bool            `json:"sale_ok"`
	PurchaseOK    *bool            `json:"purchase_ok"`
	Description   string           `json:"description" binding:"max=4000"`
	CompanyID     *shared.ID       `json:"company_id"`
}

// ToFields converts the request into a ledger payload
func (r CreateProductRequest) ToFields() shared.Fields {
	fields := shared.Fields{"name": strings.TrimSpace(r.Name)}
	if v := strings.TrimSpace(r.DefaultCode); v != "" {
		fields["default_code"] = v
	}
	if r.Type != "" {
		fields["type"] = r.Type
	}
	if r.Description != "" {
		fields["description"] = r.Description
	}
	if r.CompanyID != nil {
		fields["company_id"] = r.CompanyID.Int64()
	}
	setPrices(fields, r.ListPrice, r.StandardPrice)
	setFlags(fields, r.SaleOK, r.PurchaseOK)
	return fields
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=200"`
	DefaultCode   *string          `json:"default_code" binding:"omitempty,max=64"`
	Type          *string          `json:"type" binding:"omitempty,oneof=consu service product combo"`
	ListPrice     *decimal.Decimal `json:"list_price"`
	StandardPrice *decimal.Decimal `json:"standard_price"`
	SaleOK        *bool            `json:"sale_ok"`
	PurchaseOK    *bool            `json:"purchase_ok"`
	Description   *string          `json:"description" binding:"omitempty,max=4000"`
	CompanyID     *shared.ID       `json:"company_id"`
}

// ToFields returns the fields the caller set
func (r UpdateProductRequest) ToFields() shared.Fields {
	fields := shared.Fields{}
	if r.Name != nil {
		fields["name"] = strings.TrimSpace(*r.Name)
	}
	if r.DefaultCode != nil {
		fields["default_code"] = strings.TrimSpace(*r.DefaultCode)
	}
	if r.Type != nil {
		fields["type"] = *r.Type
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.CompanyID != nil {
		fields["company_id"] = r.CompanyID.Int64()
	}
	setPrices(fields, r.ListPrice, r.StandardPrice)
	setFlags(fields, r.SaleOK, r.PurchaseOK)
	return fields
}

// ListProductsRequest holds listing query parameters
type ListProductsRequest struct {
	CompanyID string `form:"company_id" binding:"max=20"`
	Name      string `form:"name" binding:"max=200"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

func setPrices(fields shared.Fields, list, standard *decimal.Decimal) {
	if list != nil {
		fields["list_price"] = list.InexactFloat64()
	}
	if standard != nil {
		fields["standard_price"] = standard.InexactFloat64()
	}
}

func setFlags(fields shared.Fields, sale, purchase *bool) {
	if sale != nil {
		fields["sale_ok"] = *sale
	}
	if purchase != nil {
		fields["purchase_ok"] = *purchase
	}
}

// ProductService handles product-related business operations
type ProductService struct {
	products  catalog.ProductRepository
	companies identity.CompanyRepository
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, companies identity.CompanyRepository) *ProductService {
	return &ProductService{products: products, companies: companies}
}

// Create creates a product from the whitelisted fields and returns the
// re-read record
func (s *ProductService) Create(ctx context.Context, cred identity.Credential, fields shared.Fields) shared.Result[*catalog.Product] {
	projected := shared.Project(fields, catalog.ProductFields)
	if name, _ := projected["name"].(string); name == "" {
		return shared.Rejected[*catalog.Product](shared.InvalidInput("product name is required"))
	}
	if err := s.checkCompany(ctx, cred, projected); err != nil {
		return shared.ResultOf[*catalog.Product](nil, err)
	}
	if err := checkPrices(projected); err != nil {
		return shared.Rejected[*catalog.Product](err)
	}

	id, err := s.products.Create(ctx, cred, projected)
	if err != nil {
		return shared.ResultOf[*catalog.Product](nil, err)
	}
	return shared.ResultOf(s.products.FindByID(ctx, cred, id))
}

// GetByID returns a product. Reads have no side effects.
func (s *ProductService) GetByID(ctx context.Context, cred identity.Credential, id int64) shared.Result[*catalog.Product] {
	return shared.ResultOf(s.products.FindByID(ctx, cred, id))
}

// List lists products, optionally scoped to a company
func (s *ProductService) List(ctx context.Context, cred identity.Credential, filter catalog.Filter) shared.Result[[]catalog.Product] {
	if filter.CompanyID < 0 {
		return shared.Rejected[[]catalog.Product](shared.InvalidInput("company_id must be a positive id"))
	}
	return shared.ResultOf(s.products.FindAll(ctx, cred, filter))
}

// Update overwrites whitelisted fields and returns the re-read product
func (s *ProductService) Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) shared.Result[*catalog.Product] {
	exists, err := s.products.Exists(ctx, cred, id)
	if err != nil {
		return shared.ResultOf[*catalog.Product](nil, err)
	}
	if !exists {
		return shared.Rejected[*catalog.Product](shared.NotFound("product", id))
	}
	projected := shared.Project(fields, catalog.ProductFields)
	if len(projected) == 0 {
		return shared.Rejected[*catalog.Product](shared.InvalidInput("no updatable fields supplied"))
	}
	if name, ok := projected["name"].(string); ok && name == "" {
		return shared.Rejected[*catalog.Product](shared.InvalidInput("product name cannot be empty"))
	}
	if err := s.checkCompany(ctx, cred, projected); err != nil {
		return shared.ResultOf[*catalog.Product](nil, err)
	}
	if err := checkPrices(projected); err != nil {
		return shared.Rejected[*catalog.Product](err)
	}
	if err := s.products.Update(ctx, cred, id, projected); err != nil {
		return shared.ResultOf[*catalog.Product](nil, err)
	}
	return shared.ResultOf(s.products.FindByID(ctx, cred, id))
}

var productRefs = shared.Refs{"company_id": "company"}

func (s *ProductService) checkCompany(ctx context.Context, cred identity.Credential, fields shared.Fields) error {
	if err := productRefs.Check(fields); err != nil {
		return err
	}
	companyID, present, _ := fields.ID("company_id")
	if !present {
		return nil
	}
	ok, err := s.companies.Exists(ctx, cred, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return shared.NotFound("company", companyID)
	}
	return nil
}

func checkPrices(fields shared.Fields) error {
	for _, key := range []string{"list_price", "standard_price"} {
		if v, ok := fields[key].(float64); ok && v < 0 {
			return shared.InvalidInput("%s cannot be negative", key)
		}
	}
	return nil
}
