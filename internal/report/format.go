// internal/report/format.go
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money renders a dollar amount rounded to cents with thousands separators,
// e.g. -$1,234.50.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	_, cents, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "$" + printer.Sprintf("%d", d.IntPart()) + "." + cents
}

// Percent renders a fraction as a percentage with two decimals.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// Count renders an integer with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}
