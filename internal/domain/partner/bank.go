package partner

import (
	"context"
	"strings"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
	"golang.org/x/text/cases"
)

// BankFields is the writable whitelist for res.bank
var BankFields = shared.NewFieldSet("name", "bic")

// Bank is a res.bank record
type Bank struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	BIC    string `json:"bic,omitempty"`
	Active bool   `json:"active"`
}

// FoldName normalizes a bank name for case-insensitive comparison.
// A Caser is stateful, so one is built per call.
func FoldName(name string) string {
	return cases.Fold().String(strings.Join(strings.Fields(name), " "))
}

// MatchesName reports whether the bank's name equals name ignoring case and
// surrounding or repeated whitespace.
func (b *Bank) MatchesName(name string) bool {
	return FoldName(b.Name) == FoldName(name)
}

// PickByName returns the first bank whose name matches exactly under case
// folding. Substring hits from an ilike search are not treated as matches.
func PickByName(banks []Bank, name string) (*Bank, bool) {
	for i := range banks {
		if banks[i].MatchesName(name) {
			return &banks[i], true
		}
	}
	return nil, false
}

// BankRepository reads and writes res.bank records
type BankRepository interface {
	Exists(ctx context.Context, cred identity.Credential, id int64) (bool, error)
	FindByID(ctx context.Context, cred identity.Credential, id int64) (*Bank, error)

	// FindByName runs a case-insensitive substring search on name
	FindByName(ctx context.Context, cred identity.Credential, name string) ([]Bank, error)

	Create(ctx context.Context, cred identity.Credential, fields shared.Fields) (int64, error)
}
