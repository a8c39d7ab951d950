package core

// TuitionDerived holds the values computed from a tuition payment's
// stored fields at append time.
type TuitionDerived struct {
	YearlyTotal      Money
	AmountPaid       Money
	RemainingBalance Money
}

// DeriveTuition computes the year total and remaining balance for an SPP
// payment. yearPaid is the cumulative amount paid to date for the school
// year. Pure integer arithmetic, no rounding; the remaining balance is
// negative when the student has overpaid and is never clamped.
func DeriveTuition(monthlyFee, yearPaid Money) TuitionDerived {
	total := monthlyFee * 12
	return TuitionDerived{
		YearlyTotal:      total,
		AmountPaid:       yearPaid,
		RemainingBalance: total - yearPaid,
	}
}

// DeriveReRegistration computes the outstanding re-registration amount.
// Negative on overpayment, never clamped.
func DeriveReRegistration(feeAmount, paidAmount Money) Money {
	return feeAmount - paidAmount
}
