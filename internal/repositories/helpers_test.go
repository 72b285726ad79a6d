package repositories

import (
	"github.com/shopspring/decimal"
)

func stringPtr(s string) *string {
	return &s
}

// decimalArg matches a decimal query argument by value, ignoring exponent.
type decimalArg struct {
	want decimal.Decimal
}

func moneyArg(s string) decimalArg {
	return decimalArg{want: decimal.RequireFromString(s)}
}

func (a decimalArg) Match(v interface{}) bool {
	switch got := v.(type) {
	case decimal.Decimal:
		return got.Equal(a.want)
	case decimal.NullDecimal:
		return got.Valid && got.Decimal.Equal(a.want)
	case string:
		d, err := decimal.NewFromString(got)
		return err == nil && d.Equal(a.want)
	}
	return false
}
