package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/erp/connector/internal/domain/identity"
	"github.com/erp/connector/internal/domain/shared"
)

// SearchOptions are the keyword arguments of search_read
type SearchOptions struct {
	Fields []string
	Limit  int
	Offset int
	Order  string
	// WithArchived includes records where active=false
	WithArchived bool
}

func (o SearchOptions) kwargs() map[string]any {
	kw := map[string]any{}
	if len(o.Fields) > 0 {
		kw["fields"] = o.Fields
	}
	if o.Limit > 0 {
		kw["limit"] = o.Limit
	}
	if o.Offset > 0 {
		kw["offset"] = o.Offset
	}
	if o.Order != "" {
		kw["order"] = o.Order
	}
	if o.WithArchived {
		kw["context"] = map[string]any{"active_test": false}
	}
	return kw
}

// SearchRead runs search_read on model and decodes every row into T
func SearchRead[T any](ctx context.Context, ex Executor, cred identity.Credential, model string, domain Domain, opts SearchOptions) ([]T, error) {
	if domain == nil {
		domain = Domain{}
	}
	raw, err := ex.Execute(ctx, cred, model, OpSearchRead, []any{domain}, opts.kwargs())
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, shared.NewTransportError(
			fmt.Sprintf("ledger returned unexpected %s rows", model), err)
	}
	return rows, nil
}

// ReadOne reads the record with id, returning NOT_FOUND when the ledger has
// no such record. Ids that are not positive never reach the ledger.
func ReadOne[T any](ctx context.Context, ex Executor, cred identity.Credential, model, entity string, id int64, fields []string) (*T, error) {
	if id <= 0 {
		return nil, shared.NotFound(entity, id)
	}
	rows, err := SearchRead[T](ctx, ex, cred, model, ByID(id), SearchOptions{Fields: fields, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.NotFound(entity, id)
	}
	return &rows[0], nil
}

// Count runs search and returns how many ids matched
func Count(ctx context.Context, ex Executor, cred identity.Credential, model string, domain Domain, limit int) (int, error) {
	if domain == nil {
		domain = Domain{}
	}
	kw := map[string]any{}
	if limit > 0 {
		kw["limit"] = limit
	}
	raw, err := ex.Execute(ctx, cred, model, OpSearch, []any{domain}, kw)
	if err != nil {
		return 0, err
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return 0, shared.NewTransportError(
			fmt.Sprintf("ledger returned unexpected %s search result", model), err)
	}
	return len(ids), nil
}

// Exists reports whether a record with id matches domain. Ids that are not
// positive report false without a remote call.
func Exists(ctx context.Context, ex Executor, cred identity.Credential, model string, id int64, domain Domain) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	n, err := Count(ctx, ex, cred, model, append(ByID(id), domain...), 1)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create runs create with vals and returns the new id
func Create(ctx context.Context, ex Executor, cred identity.Credential, model string, vals shared.Fields) (int64, error) {
	raw, err := ex.Execute(ctx, cred, model, OpCreate, []any{map[string]any(vals)}, nil)
	if err != nil {
		return 0, err
	}
	id, err := decodeID(raw)
	if err != nil {
		return 0, shared.NewTransportError(fmt.Sprintf("ledger returned no %s id", model), err)
	}
	if id <= 0 {
		return 0, shared.NewBackendError(fmt.Sprintf("ledger did not create the %s", model), nil)
	}
	return id, nil
}

// Write runs write on ids. A false result means the ledger declined.
func Write(ctx context.Context, ex Executor, cred identity.Credential, model string, ids []int64, vals shared.Fields) error {
	raw, err := ex.Execute(ctx, cred, model, OpWrite, []any{ids, map[string]any(vals)}, nil)
	if err != nil {
		return err
	}
	return expectTrue(model, OpWrite, raw)
}

// Unlink deletes ids
func Unlink(ctx context.Context, ex Executor, cred identity.Credential, model string, ids []int64) error {
	raw, err := ex.Execute(ctx, cred, model, OpUnlink, []any{ids}, nil)
	if err != nil {
		return err
	}
	return expectTrue(model, OpUnlink, raw)
}

// CallMethod runs a model method such as action_post on ids. Methods may
// return anything, so only errors are inspected.
func CallMethod(ctx context.Context, ex Executor, cred identity.Credential, model, method string, ids []int64) error {
	_, err := ex.Execute(ctx, cred, model, method, []any{ids}, nil)
	return err
}

func expectTrue(model, op string, raw json.RawMessage) error {
	// Some server versions answer with null on success.
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	var ok bool
	if err := json.Unmarshal(raw, &ok); err != nil {
		return shared.NewTransportError(
			fmt.Sprintf("ledger returned unexpected %s %s result %s", model, op, truncate(raw, 64)), err)
	}
	if !ok {
		return shared.NewBackendError(fmt.Sprintf("ledger declined %s on %s", op, model), nil)
	}
	return nil
}
