package report

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// FormatHours renders hours as "Xh Ym", keeping the sign: -1.5 -> "-1h 30m".
func FormatHours(h decimal.Decimal) string {
	minutes := h.Mul(sixty).Round(0).IntPart()
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%dh %dm", sign, minutes/60, minutes%60)
}

// FormatSigned is FormatHours with an explicit plus sign.
func FormatSigned(h decimal.Decimal) string {
	if h.IsPositive() {
		return "+" + FormatHours(h)
	}
	return FormatHours(h)
}
