package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInPaise(t *testing.T) {
	cases := []struct {
		rupees float64
		want   int
	}{
		{24.60, 2460}, // 24.60*100 is 2459.999... in float64
		{0.01, 1},
		{19.99, 1999},
		{100, 10000},
		{1234.56, 123456},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, amountInPaise(c.rupees), "rupees=%v", c.rupees)
	}
}
