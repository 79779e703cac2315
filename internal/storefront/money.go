package storefront

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatMoney renders an amount given in minor units, e.g. 12990 USD -> "$129.90".
func FormatMoney(minor int64, currency string) string {
	amount := decimal.New(minor, -2)
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	text := groupThousands(amount.StringFixed(2))

	switch code := strings.ToUpper(strings.TrimSpace(currency)); code {
	case "", "USD":
		return sign + "$" + text
	case "EUR":
		return sign + "€" + text
	case "GBP":
		return sign + "£" + text
	case "MXN":
		return sign + "MX$" + text
	default:
		return sign + text + " " + code
	}
}

// DiscountPercentage is the rounded saving shown on the sale badge. It is
// only defined when compareAt > price > 0.
func DiscountPercentage(price, compareAt int64) (int, bool) {
	if price <= 0 || compareAt <= price {
		return 0, false
	}
	pct := decimal.NewFromInt(compareAt - price).
		Mul(hundred).
		Div(decimal.NewFromInt(compareAt)).
		Round(0)
	return int(pct.IntPart()), true
}

func groupThousands(fixed string) string {
	whole, frac, _ := strings.Cut(fixed, ".")
	if len(whole) <= 3 {
		return fixed
	}

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Money pairs a minor-unit amount with its display text.
type Money struct {
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

func NewMoney(minor int64, currency string) Money {
	return Money{Amount: minor, Display: FormatMoney(minor, currency)}
}
