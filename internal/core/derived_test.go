package core

import "testing"

func TestDeriveTuition(t *testing.T) {
	d := DeriveTuition(50000, 300000)
	if d.YearlyTotal != 600000 {
		t.Fatalf("YearlyTotal = %d, want 600000", d.YearlyTotal)
	}
	if d.AmountPaid != 300000 {
		t.Fatalf("AmountPaid = %d, want 300000", d.AmountPaid)
	}
	if d.RemainingBalance != 300000 {
		t.Fatalf("RemainingBalance = %d, want 300000", d.RemainingBalance)
	}
}

func TestDeriveTuitionOverpaymentNotClamped(t *testing.T) {
	d := DeriveTuition(50000, 700000)
	if d.RemainingBalance != -100000 {
		t.Fatalf("RemainingBalance = %d, want -100000", d.RemainingBalance)
	}
}

func TestDeriveReRegistration(t *testing.T) {
	cases := []struct {
		fee, paid, want Money
	}{
		{500000, 200000, 300000},
		{500000, 500000, 0},
		{500000, 600000, -100000}, // overpayment stays negative
	}
	for _, tc := range cases {
		if got := DeriveReRegistration(tc.fee, tc.paid); got != tc.want {
			t.Fatalf("DeriveReRegistration(%d, %d) = %d, want %d", tc.fee, tc.paid, got, tc.want)
		}
	}
}
