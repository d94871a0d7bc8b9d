package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromFloat64RoundsBankers(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"rounds half to even down", 2.005, "2.00"},
		{"rounds half to even up", 2.015, "2.02"},
		{"no rounding needed", 10.50, "10.50"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromFloat64(tc.in, DefaultScale)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tc.want {
				t.Fatalf("got %s want %s", got.String(), tc.want)
			}
		})
	}
}

func TestPrecisionOverflow(t *testing.T) {
	huge := decimal.New(2, 18)
	if _, err := New(huge); err != ErrPrecisionOverflow {
		t.Fatalf("expected ErrPrecisionOverflow, got %v", err)
	}
}

func TestArithmetic(t *testing.T) {
	a := MustFromString("100.00")
	b := MustFromString("33.33")

	if got := a.Sub(b).String(); got != "66.67" {
		t.Fatalf("Sub: got %s", got)
	}
	if !a.GreaterThan(b) {
		t.Fatalf("expected a > b")
	}
	if Sum(a, b).String() != "133.33" {
		t.Fatalf("Sum mismatch: got %s", Sum(a, b).String())
	}
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	v := MustFromString("1234.5")
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Value
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.String() != "1234.50" {
		t.Fatalf("round trip mismatch: got %s", got.String())
	}
}
