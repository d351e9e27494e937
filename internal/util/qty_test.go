package util

import (
	"errors"
	"math"
	"testing"
)

func TestParseQty(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "integer", input: "3", want: "3"},
		{name: "decimal comma", input: "1,5", want: "1.5"},
		{name: "decimal dot", input: "1.5", want: "1.5"},
		{name: "with unit", input: "2 шт", want: "2"},
		{name: "rounded", input: "0.12345", want: "0.123"},
		{name: "padded", input: "  7  ", want: "7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qty, err := ParseQty(tc.input, 1000)
			if err != nil {
				t.Fatal(err)
			}
			if qty.String() != tc.want {
				t.Fatalf("got %v want %v", qty.String(), tc.want)
			}
		})
	}
}

func TestParseQtyRejects(t *testing.T) {
	for _, input := range []string{"", "abc", "0", "-1", "1001", "1e400x"} {
		if _, err := ParseQty(input, 1000); !errors.Is(err, ErrInvalidQty) {
			t.Fatalf("input %q: err=%v", input, err)
		}
	}
}

func TestParseQtyNonFiniteLimit(t *testing.T) {
	for _, max := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := ParseQty("1", max); !errors.Is(err, ErrInvalidQty) {
			t.Fatalf("max %v: err=%v", max, err)
		}
	}
	if got := FormatNumber(math.Inf(1)); got != "+Inf" {
		t.Fatalf("got %s", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := FormatNumber(42); got != "42" {
		t.Fatalf("got %s", got)
	}
	if got := FormatNumber(3.5); got != "3.5" {
		t.Fatalf("got %s", got)
	}
}
