package main

import (
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// parseDateExpr resolves a human date expression to YYYY-MM-DD: today,
// yesterday, Nd/Nw/Nm (days/weeks/months back), or passed through
// unchanged for an already-formatted date (spec §4.9 --since/--until).
func parseDateExpr(expr string) string {
	today := time.Now().Local()

	switch {
	case expr == "today":
		return today.Format(dateLayout)
	case expr == "yesterday":
		return today.AddDate(0, 0, -1).Format(dateLayout)
	case strings.HasSuffix(expr, "d"):
		if n, err := strconv.Atoi(strings.TrimSuffix(expr, "d")); err == nil {
			return today.AddDate(0, 0, -n).Format(dateLayout)
		}
	case strings.HasSuffix(expr, "w"):
		if n, err := strconv.Atoi(strings.TrimSuffix(expr, "w")); err == nil {
			return today.AddDate(0, 0, -7*n).Format(dateLayout)
		}
	case strings.HasSuffix(expr, "m"):
		if n, err := strconv.Atoi(strings.TrimSuffix(expr, "m")); err == nil {
			return today.AddDate(0, -n, 0).Format(dateLayout)
		}
	}
	return expr
}
