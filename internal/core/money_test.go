package core

import "testing"

func TestMoneyFormat(t *testing.T) {
	cases := []struct {
		in  Money
		out string
	}{
		{0, "Rp 0"},
		{999, "Rp 999"},
		{1000, "Rp 1,000"},
		{150000, "Rp 150,000"},
		{3000000, "Rp 3,000,000"},
		{1234567890, "Rp 1,234,567,890"},
		{-100000, "Rp -100,000"},
	}
	for _, tc := range cases {
		if got := tc.in.Format(); got != tc.out {
			t.Fatalf("Format(%d) = %q, want %q", int64(tc.in), got, tc.out)
		}
	}
}

func TestParseRupiah(t *testing.T) {
	cases := []struct {
		in  string
		out Money
		ok  bool
	}{
		{"150000", 150000, true},
		{"150.000", 150000, true},
		{"150,000", 150000, true},
		{" 3000000 ", 3000000, true},
		{"0", 0, true},
		{"-100", 0, false},
		{"+100", 0, false},
		{"12.5x", 0, false},
		{"", 0, false},
		{".", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRupiah(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("ParseRupiah(%q) = %d, %v, want %d", tc.in, got, err, tc.out)
			}
		} else if err == nil {
			t.Fatalf("ParseRupiah(%q) expected error", tc.in)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := Money(0).Validate(); err != nil {
		t.Fatalf("zero should be valid, got %v", err)
	}
	if err := Money(-1).Validate(); err == nil {
		t.Fatalf("negative should be invalid")
	}
}
