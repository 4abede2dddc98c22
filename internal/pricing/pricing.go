// Package pricing holds the money arithmetic shared by the cart, the payment
// session and the order writer. Amounts are decimals in major units until
// ToMinorUnits, which is the only place rounding happens.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line is anything with a unit price and a quantity.
type Line interface {
	UnitPrice() decimal.Decimal
	Units() int
}

func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Total sums price*quantity over lines. Empty input totals zero.
func Total[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l.UnitPrice(), l.Units()))
	}
	return sum
}

// ToMinorUnits converts to whole cents, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
