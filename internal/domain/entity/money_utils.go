package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places accepted for amounts and rates
const MaxDecimalPlaces = 4

// ParseAmount parses a strictly positive amount with at most MaxDecimalPlaces decimals
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(raw, errs.ErrInvalidAmount)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, raw)
	}
	return d, nil
}

// ParseRate parses a strictly positive exchange rate
func ParseRate(raw string) (decimal.Decimal, error) {
	d, err := parseDecimal(raw, errs.ErrInvalidRate)
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidateRate(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func parseDecimal(raw string, sentinel error) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", sentinel)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s", sentinel, err.Error())
	}
	if d.Exponent() < -MaxDecimalPlaces && !d.Equal(d.Round(MaxDecimalPlaces)) {
		return decimal.Zero, fmt.Errorf("%w: maximum %d decimal places allowed", sentinel, MaxDecimalPlaces)
	}
	return d, nil
}

// FormatTokens renders a token amount without trailing zeros
func FormatTokens(d decimal.Decimal) string {
	return d.String()
}
