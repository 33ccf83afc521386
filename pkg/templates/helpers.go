package templates

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
)

// Funcs returns the helper functions available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"joinOrNone": JoinOrNone,
		"usd":        FormatUSD,
		"qty":        FormatQuantity,
		"fixed2":     func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"upper":      strings.ToUpper,
		"inc":        func(i int) int { return i + 1 },
	}
}

// JoinOrNone comma-joins items, rendering an empty list as "None".
func JoinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// FormatUSD renders a dollar amount with thousands separators and two decimals.
func FormatUSD(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatQuantity renders a holding quantity without trailing zeros.
func FormatQuantity(v float64) string {
	return humanize.Ftoa(v)
}
