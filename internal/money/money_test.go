package money

import (
	"math"
	"testing"
)

func TestRound2HalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.234, 1.23},
		{1.235, 1.24},
		{0.005, 0.01},
		{3 * 19.995, 59.99},
		{-1.005, -1.01},
		{19.999, 20.00},
	}
	for _, tc := range cases {
		got := Round2(tc.in)
		if got != tc.want {
			t.Fatalf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRound8(t *testing.T) {
	if got := Round8(21.0 / 30000); got != 0.0007 {
		t.Fatalf("Round8(21/30000) = %v, want 0.0007", got)
	}
	if got := Round8(0.123456789); got != 0.12345679 {
		t.Fatalf("Round8(0.123456789) = %v, want 0.12345679", got)
	}
}

func TestRoundIdempotent(t *testing.T) {
	values := []float64{0, 0.005, 59.985, 19.995, 100.004999, -3.335, 1e9 + 0.125}
	for _, v := range values {
		once := Round2(v)
		if twice := Round2(once); twice != once {
			t.Fatalf("Round2 not idempotent for %v: %v then %v", v, once, twice)
		}
		once = Round8(v)
		if twice := Round8(once); twice != once {
			t.Fatalf("Round8 not idempotent for %v: %v then %v", v, once, twice)
		}
	}
}

func TestRoundNonFinite(t *testing.T) {
	if got := Round2(math.NaN()); got != 0 {
		t.Fatalf("Round2(NaN) = %v, want 0", got)
	}
	if got := Round8(math.Inf(1)); got != 0 {
		t.Fatalf("Round8(+Inf) = %v, want 0", got)
	}
}

func TestNonNegative(t *testing.T) {
	if got := NonNegative(-3.5); got != 0 {
		t.Fatalf("NonNegative(-3.5) = %v, want 0", got)
	}
	if got := NonNegative(math.NaN()); got != 0 {
		t.Fatalf("NonNegative(NaN) = %v, want 0", got)
	}
	if got := NonNegative(2.5); got != 2.5 {
		t.Fatalf("NonNegative(2.5) = %v, want 2.5", got)
	}
}

func TestQuantityOrDefault(t *testing.T) {
	if got := QuantityOrDefault(0); got != 1 {
		t.Fatalf("QuantityOrDefault(0) = %v, want 1", got)
	}
	if got := QuantityOrDefault(math.NaN()); got != 1 {
		t.Fatalf("QuantityOrDefault(NaN) = %v, want 1", got)
	}
	if got := QuantityOrDefault(-2); got != -2 {
		t.Fatalf("QuantityOrDefault(-2) = %v, want -2", got)
	}
	if got := QuantityOrDefault(3); got != 3 {
		t.Fatalf("QuantityOrDefault(3) = %v, want 3", got)
	}
}
