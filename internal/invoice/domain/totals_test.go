package invoice

import (
	"math/rand"
	"testing"
)

func TestComputeTotalsExample(t *testing.T) {
	items := []LineItem{{Description: "work", Quantity: 2, UnitPrice: 10.00}}
	totals := ComputeTotals(items, 10, 1)
	if totals.Subtotal != 20.00 {
		t.Fatalf("subtotal = %v, want 20.00", totals.Subtotal)
	}
	if totals.TaxAmount != 2.00 {
		t.Fatalf("tax amount = %v, want 2.00", totals.TaxAmount)
	}
	if totals.GrandTotal != 21.00 {
		t.Fatalf("grand total = %v, want 21.00", totals.GrandTotal)
	}
}

func TestComputeTotalsLineRounding(t *testing.T) {
	items := []LineItem{{Quantity: 3, UnitPrice: 19.995}}
	totals := ComputeTotals(items, 0, 0)
	if totals.Subtotal != 59.99 {
		t.Fatalf("subtotal = %v, want 59.99", totals.Subtotal)
	}
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	items := []LineItem{
		{Description: "a", Quantity: 1, UnitPrice: 3.33},
		{Description: "b", Quantity: 2.5, UnitPrice: 19.995},
		{Description: "c", Quantity: 7, UnitPrice: 0.07},
		{Description: "d", Quantity: 3, UnitPrice: 12.49},
	}
	want := ComputeTotals(items, 8.25, 4.5)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]LineItem, len(items))
		copy(shuffled, items)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := ComputeTotals(shuffled, 8.25, 4.5)
		if got != want {
			t.Fatalf("permutation %d changed totals: %+v vs %+v", i, got, want)
		}
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []LineItem{
		{Quantity: 2.5, UnitPrice: 19.995},
		{Quantity: 1, UnitPrice: 0.005},
	}
	first := ComputeTotals(items, 7.7, 1.25)
	second := ComputeTotals(items, 7.7, 1.25)
	if first != second {
		t.Fatalf("recompute drifted: %+v vs %+v", first, second)
	}
}

func TestComputeTotalsCoercesNegatives(t *testing.T) {
	items := []LineItem{
		{Quantity: -2, UnitPrice: 10},
		{Quantity: 3, UnitPrice: -5},
		{Quantity: 2, UnitPrice: 10},
	}
	totals := ComputeTotals(items, -5, 0)
	if totals.Subtotal != 20.00 {
		t.Fatalf("subtotal = %v, want 20.00 (negative lines coerced)", totals.Subtotal)
	}
	if totals.TaxPercent != 0 || totals.TaxAmount != 0 {
		t.Fatalf("negative tax not coerced: %+v", totals)
	}
}

func TestComputeTotalsDiscountMayGoNegative(t *testing.T) {
	items := []LineItem{{Quantity: 1, UnitPrice: 10}}
	totals := ComputeTotals(items, 0, 15)
	if totals.GrandTotal != -5.00 {
		t.Fatalf("grand total = %v, want -5.00 (no clamp)", totals.GrandTotal)
	}
}

func TestComputeTotalsEmptyItems(t *testing.T) {
	totals := ComputeTotals(nil, 10, 0)
	if totals.Subtotal != 0 || totals.TaxAmount != 0 || totals.GrandTotal != 0 {
		t.Fatalf("empty items should zero out: %+v", totals)
	}
}

func TestCloneIsDeep(t *testing.T) {
	inv := &Invoice{
		ID:    "inv-1",
		Items: []LineItem{{Description: "a", Quantity: 1, UnitPrice: 2}},
	}
	clone := inv.Clone()
	clone.Items[0].Quantity = 99
	if inv.Items[0].Quantity != 1 {
		t.Fatalf("clone shares items slice")
	}
}
