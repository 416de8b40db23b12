package event

import "fmt"

// FormatDuration renders a microsecond duration for human display:
// sub-millisecond as whole microseconds, sub-second with one decimal of
// milliseconds, otherwise one decimal of seconds.
func FormatDuration(us uint64) string {
	switch {
	case us < 1_000:
		return fmt.Sprintf("%dµs", us)
	case us < 1_000_000:
		return fmt.Sprintf("%.1fms", float64(us)/1_000.0)
	default:
		return fmt.Sprintf("%.1fs", float64(us)/1_000_000.0)
	}
}
