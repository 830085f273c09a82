package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/erp/connector/internal/domain/shared"
)

// Services and methods of the JSON-RPC dispatcher
const (
	ServiceCommon = "common"
	ServiceObject = "object"

	MethodLogin     = "login"
	MethodVersion   = "version"
	MethodExecuteKW = "execute_kw"
)

// ORM operations used through execute_kw
const (
	OpCreate     = "create"
	OpWrite      = "write"
	OpSearchRead = "search_read"
	OpSearch     = "search"
	OpUnlink     = "unlink"
	OpActionPost = "action_post"
)

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      string    `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is the error object the ledger returns when it declines a call
type RPCError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *RPCErrorData `json:"data,omitempty"`
}

// RPCErrorData carries the server-side exception detail
type RPCErrorData struct {
	Name      string `json:"name,omitempty"`
	Message   string `json:"message,omitempty"`
	Debug     string `json:"debug,omitempty"`
	Arguments []any  `json:"arguments,omitempty"`
}

// Text returns the most specific human-readable message available
func (e *RPCError) Text() string {
	if e.Data != nil && e.Data.Message != "" {
		return e.Data.Message
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Data != nil && e.Data.Debug != "" {
		return e.Data.Debug
	}
	return "ledger rejected the request"
}

// Domain is a search filter expression: a list of [field, operator, value]
// triples combined with an implicit AND.
type Domain []any

// Where appends a condition
func (d Domain) Where(field, op string, value any) Domain {
	return append(d, []any{field, op, value})
}

// ByID is the domain matching one record
func ByID(id int64) Domain {
	return Domain{}.Where("id", "=", id)
}

// AddCommand is the x2many command creating a linked record from vals
func AddCommand(vals map[string]any) []any { return []any{0, 0, vals} }

// DeleteCommand is the x2many command deleting the linked record id
func DeleteCommand(id int64) []any { return []any{2, id} }

// Text decodes a char field the ledger reports as false when empty
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(b []byte) error {
	if isFalsy(b) {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("ledger: text field: %w", err)
	}
	*t = Text(s)
	return nil
}

// Ref decodes a many2one value, [id, "display name"] or false
type Ref struct {
	ID   int64
	Name string
}

// UnmarshalJSON implements json.Unmarshaler
func (r *Ref) UnmarshalJSON(b []byte) error {
	*r = Ref{}
	if isFalsy(b) {
		return nil
	}
	// Plain ids appear when a field is read with load=None.
	if b[0] != '[' {
		var id int64
		if err := json.Unmarshal(b, &id); err != nil {
			return fmt.Errorf("ledger: many2one field: %w", err)
		}
		r.ID = id
		return nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("ledger: many2one field: %w", err)
	}
	if len(pair) == 0 {
		return nil
	}
	if err := json.Unmarshal(pair[0], &r.ID); err != nil {
		return fmt.Errorf("ledger: many2one id: %w", err)
	}
	if len(pair) > 1 {
		var name Text
		if err := json.Unmarshal(pair[1], &name); err != nil {
			return fmt.Errorf("ledger: many2one name: %w", err)
		}
		r.Name = string(name)
	}
	return nil
}

// Shared converts to the domain reference, nil when unset
func (r Ref) Shared() *shared.Ref {
	if r.ID == 0 {
		return nil
	}
	return &shared.Ref{ID: r.ID, Name: r.Name}
}

// IDs decodes an x2many value, a list of ids or false
type IDs []int64

// UnmarshalJSON implements json.Unmarshaler
func (ids *IDs) UnmarshalJSON(b []byte) error {
	if isFalsy(b) {
		*ids = IDs{}
		return nil
	}
	var out []int64
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("ledger: x2many field: %w", err)
	}
	*ids = out
	return nil
}

func isFalsy(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("false")) || bytes.Equal(b, []byte("null"))
}

// decodeID accepts the two shapes create returns: 42 or [42]
func decodeID(raw json.RawMessage) (int64, error) {
	var id int64
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil || len(ids) == 0 {
		return 0, fmt.Errorf("ledger: unexpected create result %s", truncate(raw, 64))
	}
	return ids[0], nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
