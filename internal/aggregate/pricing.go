package aggregate

import (
	"strings"

	"github.com/boshu2/vigilo/internal/event"
)

// priceEntry is one row of the fixed price table: price per million
// tokens for input, output, and cache-read. It is a library constant
// carried in-repo, never fetched from a remote source (spec §4.9).
type priceEntry struct {
	fragment               string
	inputPerM, outputPerM, cacheReadPerM float64
}

// priceTable lists fragments matched against a lowercased model name.
// Unlike the upstream table (which relies on declaration order to avoid
// a short fragment shadowing a more specific one), Vigilo matches by
// longest fragment first (spec §4.9: "longest-substring-first matching"),
// so entry order here carries no semantic weight.
var priceTable = []priceEntry{
	{"claude-opus-4", 15.00, 75.00, 1.50},
	{"claude-sonnet-4", 3.00, 15.00, 0.30},
	{"claude-haiku-4", 1.00, 5.00, 0.10},
	{"claude-3-5-sonnet", 3.00, 15.00, 0.30},
	{"claude-3.5-sonnet", 3.00, 15.00, 0.30},
	{"claude-3-5-haiku", 0.80, 4.00, 0.08},
	{"claude-3.5-haiku", 0.80, 4.00, 0.08},
	{"claude-3-opus", 15.00, 75.00, 1.50},
	{"claude-3-sonnet", 3.00, 15.00, 0.30},
	{"claude-3-haiku", 0.25, 1.25, 0.025},
	{"claude-4.5-sonnet-thinking", 3.00, 15.00, 0.30},
	{"auto", 1.25, 6.00, 0.25},
	{"composer-1.5", 3.50, 17.50, 0.35},
	{"composer-1", 1.25, 10.00, 0.125},
	{"sonnet", 3.00, 15.00, 0.30},
	{"gpt-5-mini", 0.25, 2.00, 0.025},
	{"gpt-5", 1.25, 10.00, 0.125},
	{"gpt-4o-mini", 0.15, 0.60, 0.075},
	{"gpt-4o", 2.50, 10.00, 1.25},
	{"o3-mini", 1.10, 4.40, 0.55},
	{"o1-mini", 1.10, 4.40, 0.55},
	{"o3", 15.00, 60.00, 7.50},
	{"o1", 15.00, 60.00, 7.50},
	{"gemini-2.5-flash", 0.30, 2.50, 0.03},
	{"gemini-3-pro", 2.00, 12.00, 0.20},
	{"gemini-3-flash", 0.50, 3.00, 0.05},
	{"grok", 0.20, 1.50, 0.02},
}

const cacheWriteMultiplier = 1.25

// pricingFor resolves per-token rates (not per-million) for a model name
// by matching the longest priceTable fragment contained in the
// lowercased model string.
func pricingFor(model string) (inputRate, outputRate, cacheReadRate float64, ok bool) {
	lower := strings.ToLower(model)
	var best *priceEntry
	for i := range priceTable {
		e := &priceTable[i]
		if !strings.Contains(lower, e.fragment) {
			continue
		}
		if best == nil || len(e.fragment) > len(best.fragment) {
			best = e
		}
	}
	if best == nil {
		return 0, 0, 0, false
	}
	const perMillion = 1_000_000.0
	return best.inputPerM / perMillion, best.outputPerM / perMillion, best.cacheReadPerM / perMillion, true
}

// EventCostUSD estimates an event's token cost from the fixed price
// table. It returns ok=false when the event has no model or no input
// token count, or when the model matches no price table fragment — cost
// is simply omitted rather than guessed (spec §4.9).
func EventCostUSD(e *event.Event) (float64, bool) {
	if e.Tokens == nil || e.Tokens.Model == "" || e.Tokens.InputTokens == 0 {
		return 0, false
	}
	inputRate, outputRate, cacheReadRate, ok := pricingFor(e.Tokens.Model)
	if !ok {
		return 0, false
	}
	cost := float64(e.Tokens.InputTokens)*inputRate +
		float64(e.Tokens.OutputTokens)*outputRate +
		float64(e.Tokens.CacheReadTokens)*cacheReadRate +
		float64(e.Tokens.CacheCreationTokens)*inputRate*cacheWriteMultiplier
	return cost, true
}

// SessionCostUSD sums EventCostUSD across a slice of events.
func SessionCostUSD(events []*event.Event) float64 {
	var total float64
	for _, e := range events {
		if cost, ok := EventCostUSD(e); ok {
			total += cost
		}
	}
	return total
}
