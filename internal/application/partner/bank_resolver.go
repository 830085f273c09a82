package partner

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/partner"
	"github.com/erp/connector/internal/domain/shared"
)

// bankResolver finds or creates banks by name for the lifetime of one
// request. Banks it has seen are cached by folded name so later accounts in
// the same request reuse them without another lookup.
type bankResolver struct {
	banks partner.BankRepository
	cred  identity.Credential
	seen  map[string]*partner.Bank
}

func newBankResolver(banks partner.BankRepository, cred identity.Credential) *bankResolver {
	return &bankResolver{banks: banks, cred: cred, seen: map[string]*partner.Bank{}}
}

// Resolve returns the bank named in, creating it when no exact match exists
func (r *bankResolver) Resolve(ctx context.Context, in partner.BankInput) (*partner.Bank, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, shared.InvalidInput("bank name is required")
	}
	key := partner.FoldName(name)
	if b, ok := r.seen[key]; ok {
		return b, nil
	}

	hits, err := r.banks.FindByName(ctx, r.cred, name)
	if err != nil {
		return nil, err
	}
	if b, ok := partner.PickByName(hits, name); ok {
		r.seen[key] = b
		return b, nil
	}

	bic := strings.ToUpper(strings.TrimSpace(in.BIC))
	fields := shared.Fields{"name": name}
	if bic != "" {
		fields["bic"] = bic
	}
	id, err := r.banks.Create(ctx, r.cred, shared.Project(fields, partner.BankFields))
	if err != nil {
		return nil, err
	}
	b := &partner.Bank{ID: id, Name: name, BIC: bic, Active: true}
	r.seen[key] = b
	return b, nil
}
