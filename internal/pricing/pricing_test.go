package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type line struct {
	price string
	qty   int
}

func (l line) UnitPrice() decimal.Decimal { return decimal.RequireFromString(l.price) }
func (l line) Units() int                 { return l.qty }

func TestTotal(t *testing.T) {
	assert.True(t, Total([]line{}).IsZero())

	got := Total([]line{{"10.00", 1}, {"5.50", 3}})
	assert.Equal(t, "26.5", got.String())
}

func TestToMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"0":       0,
		"26.50":   2650,
		"19.99":   1999,
		"0.005":   1,
		"10.004":  1000,
		"1234.56": 123456,
	}
	for in, want := range cases {
		assert.Equal(t, want, ToMinorUnits(decimal.RequireFromString(in)), in)
	}
}

func TestFromMinorUnits_RoundTrip(t *testing.T) {
	for _, minor := range []int64{0, 1, 99, 2650, 123456} {
		assert.Equal(t, minor, ToMinorUnits(FromMinorUnits(minor)))
	}
	assert.True(t, FromMinorUnits(2650).Equal(decimal.RequireFromString("26.50")))
}
