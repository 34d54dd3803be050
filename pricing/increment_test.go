package pricing

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/execution/order"
)

func TestIncrementTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{"sub_dollar", 0.42, "0.0001"},
		{"just_under_one", 0.9999, "0.0001"},
		{"single_digits", 9.50, "0.005"},
		{"just_under_ten", 9.996, "0.005"},
		{"ten_and_up", 10.00, "0.01"},
		{"large", 415.27, "0.01"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Increment(tt.price).String())
		})
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		// 9.995 is the nearest half-cent multiple (0.001 away vs 0.004 to
		// 10.00); only profit targets take the upward path to 10.00.
		{"entry_near_ten", 9.996, 9.995},
		{"cent_grid_up", 182.374, 182.37},
		{"cent_grid_down", 182.376, 182.38},
		{"sub_dollar_half_up", 0.12345, 0.1235},
		{"already_on_grid", 50.25, 50.25},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Round(tt.price)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.True(t, WithinOneIncrement(tt.price, got))
		})
	}
}

func TestRoundUpNeverDecreases(t *testing.T) {
	t.Parallel()

	// Boundary case: 9.996 sits in the half-cent tier and must
	// come out at 10.00 as a profit target, never 9.995.
	assert.InDelta(t, 10.00, RoundUp(9.996), 1e-9)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		raw := rng.Float64() * 500
		if raw == 0 {
			continue
		}
		up := RoundUp(raw)
		assert.GreaterOrEqual(t, up, raw-1e-9, "RoundUp(%v) = %v decreased", raw, up)
		assert.True(t, WithinOneIncrement(raw, up), "RoundUp(%v) = %v moved more than one increment", raw, up)
	}
}

func TestRoundDeviationBounded(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		raw := rng.Float64() * 500
		got := Round(raw)
		inc, _ := Increment(raw).Float64()
		assert.LessOrEqual(t, math.Abs(raw-got), inc/2+1e-9,
			"Round(%v) = %v deviated more than half an increment", raw, got)
	}
}

func TestProfitTarget(t *testing.T) {
	t.Parallel()

	o := order.PlannedOrder{
		Symbol:     "XYZ",
		Action:     order.Buy,
		EntryPrice: 9.50,
		StopLoss:   9.252,
		RiskReward: 2.0,
	}
	// raw target = 9.50 + 0.496 = 9.996 -> rounds up to 10.00
	got := ProfitTarget(o)
	assert.InDelta(t, 10.00, got, 1e-9)
	assert.GreaterOrEqual(t, got, order.RawProfitTarget(o))
}
