package shared

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseID coerces a caller-supplied id to a positive integer. Zero, negative,
// fractional and non-numeric values report ok=false.
func ParseID(v any) (int64, bool) {
	var id int64
	switch t := v.(type) {
	case int:
		id = int64(t)
	case int32:
		id = int64(t)
	case int64:
		id = t
	case float64:
		if t != math.Trunc(t) || t > math.MaxInt64 {
			return 0, false
		}
		id = int64(t)
	case json.Number:
		n, err := strconv.ParseInt(t.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	case ID:
		id = int64(t)
	default:
		return 0, false
	}
	if id <= 0 {
		return 0, false
	}
	return id, true
}

// ID is a ledger record id decoded leniently from JSON: numbers and numeric
// strings are accepted, anything else decodes to the invalid id 0.
type ID int64

// UnmarshalJSON implements json.Unmarshaler
func (i *ID) UnmarshalJSON(b []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	id, ok := ParseID(raw)
	if !ok {
		*i = 0
		return nil
	}
	*i = ID(id)
	return nil
}

// Valid reports whether the id can reference a ledger record
func (i ID) Valid() bool {
	return i > 0
}

// Int64 returns the id as int64
func (i ID) Int64() int64 {
	return int64(i)
}
