package supplier

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/partimport/pkg/errors"
)

var (
	moneyJunkRe  = regexp.MustCompile(`[^\d,.\-]`)
	moneySplitRe = regexp.MustCompile(`^(.*)[.,](\d+)$`)
	digitsRe     = regexp.MustCompile(`[^\d\-]`)
)

// ParseMoney parses a supplier price string such as "€ 1.234,56",
// "$0.0123" or "1,234.50 USD". The last "." or "," separates the fraction;
// any other separators and currency symbols are dropped.
func ParseMoney(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(moneyJunkRe.ReplaceAllString(s, ""))
	if clean == "" {
		return decimal.Zero, errors.New(errors.ErrCodeInvalidInput, "no amount in %q", s)
	}

	whole, frac := clean, "0"
	if m := moneySplitRe.FindStringSubmatch(clean); m != nil {
		whole, frac = m[1], m[2]
	}
	whole = digitsRe.ReplaceAllString(whole, "")
	if whole == "" || whole == "-" {
		whole += "0"
	}

	d, err := decimal.NewFromString(whole + "." + frac)
	if err != nil {
		return decimal.Zero, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse amount %q", s)
	}
	return d, nil
}
