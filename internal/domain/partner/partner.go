// Package partner models clients, providers, banks and bank accounts kept in
// the ledger.
package partner

import (
	"context"
	"fmt"
	"strings"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
)

// Role selects which partner rank a request targets
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleBoth     Role = "both"
	// RoleAny disables the rank filter on reads
	RoleAny Role = ""
)

// ParseRole parses a role name, case-insensitively
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleClient:
		return RoleClient, nil
	case RoleProvider:
		return RoleProvider, nil
	case RoleBoth:
		return RoleBoth, nil
	case RoleAny:
		return RoleAny, nil
	default:
		return "", shared.InvalidInput("unknown partner role %q", s)
	}
}

// IsClient reports whether the role includes the customer rank
func (r Role) IsClient() bool { return r == RoleClient || r == RoleBoth }

// IsProvider reports whether the role includes the supplier rank
func (r Role) IsProvider() bool { return r == RoleProvider || r == RoleBoth }

// Label names the entity in messages
func (r Role) Label() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleProvider:
		return "provider"
	default:
		return "partner"
	}
}

// Whitelists of writable partner fields
var (
	ClientFields = shared.NewFieldSet(
		"name", "is_company", "company_type", "lang", "mobile", "phone", "vat",
		"email", "street", "city", "customer_rank", "country_id", "company_id",
	)
	ProviderFields = shared.NewFieldSet(
		"name", "is_company", "company_type", "lang", "mobile", "phone", "vat",
		"email", "street", "street2", "zip", "country_id", "supplier_rank",
		"company_id", "website", "parent_id",
	)
	BothFields = shared.Union(ClientFields, ProviderFields)
)

// PartnerRefs names the entities referenced by writable partner fields
var PartnerRefs = shared.Refs{"country_id": "country", "company_id": "company", "parent_id": "partner"}

// FieldsFor returns the writable whitelist for role
func FieldsFor(r Role) shared.FieldSet {
	switch r {
	case RoleClient:
		return ClientFields
	case RoleProvider:
		return ProviderFields
	default:
		return BothFields
	}
}

// ReadFields is the field list requested on every partner read
var ReadFields = []string{
	"id", "name", "vat", "street", "street2", "zip", "city", "country_id",
	"phone", "mobile", "email", "website", "lang", "category_id", "company_id",
	"company_type", "is_company", "customer_rank", "supplier_rank", "parent_id",
	"active",
}

// Partner is a res.partner record
type Partner struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	VAT          string      `json:"vat,omitempty"`
	Street       string      `json:"street,omitempty"`
	Street2      string      `json:"street2,omitempty"`
	Zip          string      `json:"zip,omitempty"`
	City         string      `json:"city,omitempty"`
	Country      *shared.Ref `json:"country_id,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Mobile       string      `json:"mobile,omitempty"`
	Email        string      `json:"email,omitempty"`
	Website      string      `json:"website,omitempty"`
	Lang         string      `json:"lang,omitempty"`
	CategoryIDs  []int64     `json:"category_id,omitempty"`
	Company      *shared.Ref `json:"company_id,omitempty"`
	CompanyType  string      `json:"company_type,omitempty"`
	IsCompany    bool        `json:"is_company"`
	CustomerRank int         `json:"customer_rank"`
	SupplierRank int         `json:"supplier_rank"`
	Parent       *shared.Ref `json:"parent_id,omitempty"`
	Active       bool        `json:"active"`
}

// IsClient reports whether the partner carries the customer rank
func (p *Partner) IsClient() bool { return p.CustomerRank > 0 }

// IsProvider reports whether the partner carries the supplier rank
func (p *Partner) IsProvider() bool { return p.SupplierRank > 0 }

// HasRole reports whether the partner plays role
func (p *Partner) HasRole(r Role) bool {
	switch r {
	case RoleClient:
		return p.IsClient()
	case RoleProvider:
		return p.IsProvider()
	case RoleBoth:
		return p.IsClient() && p.IsProvider()
	default:
		return true
	}
}

// WithRank sets the rank fields implied by role unless the caller already
// supplied a positive rank.
func WithRank(fields shared.Fields, r Role) shared.Fields {
	out := fields.Clone()
	if r.IsClient() && !positive(out["customer_rank"]) {
		out["customer_rank"] = 1
	}
	if r.IsProvider() && !positive(out["supplier_rank"]) {
		out["supplier_rank"] = 1
	}
	return out
}

func positive(v any) bool {
	id, ok := shared.ParseID(v)
	return ok && id > 0
}

// Filter narrows partner listings
type Filter struct {
	Role      Role
	CompanyID int64
	Name      string
	Limit     int
}

// PartnerRepository reads and writes res.partner records
type PartnerRepository interface {
	// Exists reports whether an active partner with id exists
	Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error)

	// FindByID returns the partner with id playing role, or NOT_FOUND
	FindByID(ctx context.Context, cred identity.Credential, id int64, role Role) (*Partner, error)

	// FindAll lists partners matching filter
	FindAll(ctx context.Context, cred identity.Credential, filter Filter) ([]Partner, error)

	// Create creates a partner from projected fields and returns its id
	Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error)

	// Update overwrites the given fields
	Update(ctx context.Context, cred identity.Credential, id int64, fields shared.Fields) error

	// Archive soft-deletes the partner (active=false)
	Archive(ctx context.Context, cred identity.Credential, id int64) error
}

// String renders the partner for logs
func (p *Partner) String() string {
	return fmt.Sprintf("partner(%d, %q)", p.ID, p.Name)
}
