package shared

import "fmt"

// Warning is a non-fatal notice about one item of a batch that was skipped.
type Warning struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// Warnf builds a warning for the item at index
func Warnf(index int, format string, args ...any) Warning {
	return Warning{Index: index, Message: fmt.Sprintf(format, args...)}
}

// Ref is a many-to-one reference as the ledger reports it: an id plus the
// record's display name.
type Ref struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RefID returns the referenced id, or 0 for a nil reference
func RefID(r *Ref) int64 {
	if r == nil {
		return 0
	}
	return r.ID
}
