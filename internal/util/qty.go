package util

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidQty = errors.New("invalid quantity")

var unitSuffix = regexp.MustCompile(`(?i)\s*(шт|штук|pcs|pc|м\.?|метр|kg|кг|уп\.?|компл\.?)$`)

// ParseQty reads a quantity typed by a person: comma or dot decimal
// separator, optional unit suffix ("2 шт", "1,5 м"). The value must be
// positive and not above max; it is rounded to three decimals.
func ParseQty(input string, max float64) (decimal.Decimal, error) {
	s := strings.ReplaceAll(input, "\u00A0", " ")
	s = strings.TrimSpace(unitSuffix.ReplaceAllString(strings.TrimSpace(s), ""))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidQty)
	}

	qty, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidQty, input)
	}
	if math.IsNaN(max) || math.IsInf(max, 0) {
		return decimal.Zero, fmt.Errorf("%w: limit %v", ErrInvalidQty, max)
	}
	qty = qty.Round(3)
	if !qty.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be > 0", ErrInvalidQty)
	}
	if qty.GreaterThan(decimal.NewFromFloat(max)) {
		return decimal.Zero, fmt.Errorf("%w: must be <= %s", ErrInvalidQty, FormatNumber(max))
	}
	return qty, nil
}

// FormatNumber renders a float the short way: 42 -> "42", 3.5 -> "3.5".
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return decimal.NewFromFloat(v).String()
}
