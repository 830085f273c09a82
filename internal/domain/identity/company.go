package identity

import "context"

// Company is the existence-only reference used to validate company scoping.
type Company struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CurrencyID int64  `json:"currency_id,omitempty"`
}

// CompanyRepository reads res.company records
type CompanyRepository interface {
	// Exists reports whether the company is visible to cred
	Exists(ctx context.Context, cred Credential, id int64) (bool, error)

	// FindByID returns the company or a NOT_FOUND error
	FindByID(ctx context.Context, cred Credential, id int64) (*Company, error)

	// FindAll lists the companies visible to cred
	FindAll(ctx context.Context, cred Credential) ([]Company, error)
}
