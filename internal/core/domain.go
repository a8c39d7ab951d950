package core

import (
	"errors"
	"strings"
	"time"
)

// Kind tags the four record collections kept by the ledger.
type Kind string

const (
	KindTuition        Kind = "tuition"
	KindSalary         Kind = "salary"
	KindReRegistration Kind = "reregistration"
	KindExpense        Kind = "expense"
)

// Kinds lists all record kinds in table order.
var Kinds = []Kind{KindTuition, KindSalary, KindReRegistration, KindExpense}

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyClass       = errors.New("empty class")
	ErrEmptyMonth       = errors.New("empty month")
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownKind      = errors.New("unknown record kind")
)

// Record is the closed set of row types the renderer switches over.
// Exactly the four ledger types implement it.
type Record interface {
	Kind() Kind
	Validate() error
}

// TuitionPayment is one SPP payment row. YearlyTotal and RemainingBalance
// are derived once at append time and then immutable. RemainingBalance
// goes negative on overpayment; that is valid data, not an error.
type TuitionPayment struct {
	StudentName      string
	ClassName        string
	Month            string
	Year             string // optional school-year label
	AmountPaid       Money  // cumulative amount paid to date for the year
	MonthlyFee       Money
	YearlyTotal      Money
	RemainingBalance Money
	CreatedAt        time.Time
}

func (p TuitionPayment) Kind() Kind { return KindTuition }

func (p TuitionPayment) Validate() error {
	if strings.TrimSpace(p.StudentName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(p.ClassName) == "" {
		return ErrEmptyClass
	}
	if strings.TrimSpace(p.Month) == "" {
		return ErrEmptyMonth
	}
	if err := p.AmountPaid.Validate(); err != nil {
		return err
	}
	return p.MonthlyFee.Validate()
}

// TeacherSalary is one salary payout row. No derived fields.
type TeacherSalary struct {
	TeacherName string
	Month       string
	BaseSalary  Money
	Allowance   Money
	CreatedAt   time.Time
}

func (s TeacherSalary) Kind() Kind { return KindSalary }

func (s TeacherSalary) Validate() error {
	if strings.TrimSpace(s.TeacherName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.Month) == "" {
		return ErrEmptyMonth
	}
	if err := s.BaseSalary.Validate(); err != nil {
		return err
	}
	return s.Allowance.Validate()
}

// ReRegistration is one daftar ulang (annual re-registration) row.
// Remaining is derived once at append time.
type ReRegistration struct {
	StudentName string
	ClassName   string
	Year        string
	FeeAmount   Money
	PaidAmount  Money
	Remaining   Money
	CreatedAt   time.Time
}

func (r ReRegistration) Kind() Kind { return KindReRegistration }

func (r ReRegistration) Validate() error {
	if strings.TrimSpace(r.StudentName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(r.ClassName) == "" {
		return ErrEmptyClass
	}
	if err := r.FeeAmount.Validate(); err != nil {
		return err
	}
	return r.PaidAmount.Validate()
}

// Expense is one outgoing payment row. AttachmentRef is an opaque pointer
// to an uploaded proof file kept outside the ledger; it may be present at
// creation or attached later through the side table.
type Expense struct {
	RecipientName string
	Description   string
	Amount        Money
	AttachmentRef string
	CreatedAt     time.Time
}

func (e Expense) Kind() Kind { return KindExpense }

func (e Expense) Validate() error {
	if strings.TrimSpace(e.RecipientName) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	return e.Amount.Validate()
}

// ParseKind maps a kind selector string to its Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTuition:
		return KindTuition, nil
	case KindSalary:
		return KindSalary, nil
	case KindReRegistration:
		return KindReRegistration, nil
	case KindExpense:
		return KindExpense, nil
	}
	return "", ErrUnknownKind
}
