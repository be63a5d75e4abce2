package services

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/invoicelink/invoicelink/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTotals(t *testing.T) {
	items := []models.InvoiceItem{
		{Quantity: 2, Price: 50},
		{Quantity: 1.5, Price: 20},
	}

	subtotal, tax, total := Totals(items, 10, 5)
	if !almostEqual(subtotal, 130) {
		t.Fatalf("subtotal = %v", subtotal)
	}
	if !almostEqual(tax, 13) {
		t.Fatalf("tax = %v", tax)
	}
	if !almostEqual(total, 138) {
		t.Fatalf("total = %v", total)
	}
}

func TestTotalsZeroTaxRate(t *testing.T) {
	items := []models.InvoiceItem{{Quantity: 1, Price: 100}}
	_, tax, total := Totals(items, 0, 0)
	if tax != 0 {
		t.Fatalf("tax = %v", tax)
	}
	if !almostEqual(total, 100) {
		t.Fatalf("total = %v", total)
	}
}

func TestTotalsNegativeNotClamped(t *testing.T) {
	// A discount larger than subtotal+tax must flow through as a negative total.
	items := []models.InvoiceItem{{Quantity: 1, Price: 10}}
	_, _, total := Totals(items, 0, 50)
	if !almostEqual(total, -40) {
		t.Fatalf("total = %v, want -40", total)
	}
}

func TestTotalsEmptyItems(t *testing.T) {
	subtotal, tax, total := Totals(nil, 10, 0)
	if subtotal != 0 || tax != 0 || total != 0 {
		t.Fatalf("got %v %v %v", subtotal, tax, total)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{42.5, 42.5},
		{float32(2), 2},
		{7, 7},
		{int64(9), 9},
		{json.Number("3.25"), 3.25},
		{"12.5", 12.5},
		{"garbage", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); !almostEqual(got, tc.want) {
			t.Errorf("ParseAmount(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
