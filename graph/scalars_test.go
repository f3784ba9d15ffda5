package graph

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnmarshalDecimal_AcceptsFormattedStrings(t *testing.T) {
	cases := []struct {
		in       interface{}
		expected string
	}{
		{"20000", "20000"},
		{"20,000", "20000"},
		{"Rp 20,000", "20000"},
		{"IDR -20,000", "-20000"},
		{"  rp 1,234.50  ", "1234.5"},
		{json.Number("15.25"), "15.25"},
		{int64(7), "7"},
	}
	for _, tc := range cases {
		d, err := UnmarshalDecimal(tc.in)
		if err != nil {
			t.Fatalf("UnmarshalDecimal(%v) error: %v", tc.in, err)
		}
		if d.String() != tc.expected {
			t.Fatalf("UnmarshalDecimal(%v) expected %s, got %s", tc.in, tc.expected, d.String())
		}
	}
}

func TestUnmarshalDecimal_RejectsEmpty(t *testing.T) {
	for _, in := range []interface{}{"", "Rp", true} {
		if _, err := UnmarshalDecimal(in); err == nil {
			t.Fatalf("UnmarshalDecimal(%v) expected an error", in)
		}
	}
}

func TestUnmarshalTime_DateOrTimestamp(t *testing.T) {
	got, err := UnmarshalTime("2024-01-05")
	if err != nil {
		t.Fatalf("UnmarshalTime date: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected 2024-01-05 UTC, got %v", got)
	}

	got, err = UnmarshalTime("2024-01-05T10:30:00+07:00")
	if err != nil {
		t.Fatalf("UnmarshalTime timestamp: %v", err)
	}
	if !got.Equal(time.Date(2024, 1, 5, 3, 30, 0, 0, time.UTC)) {
		t.Fatalf("expected 03:30 UTC, got %v", got.UTC())
	}

	if _, err := UnmarshalTime("05/01/2024"); err == nil {
		t.Fatalf("expected an error for an unsupported layout")
	}
}
