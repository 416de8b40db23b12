package aggregate

import (
	"encoding/json"

	"github.com/boshu2/vigilo/internal/event"
)

// eventArgs decodes an event's arguments as a JSON object, tolerating an
// encrypted-arguments string (which simply yields no usable fields —
// callers treat that as "nothing found" rather than a fault, since an
// encrypted ledger is a normal mode of operation).
func eventArgs(e *event.Event) map[string]any {
	args := make(map[string]any)
	if len(e.Arguments) == 0 {
		return args
	}
	_ = json.Unmarshal(e.Arguments, &args)
	return args
}
