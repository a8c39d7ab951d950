package core

import "testing"

func TestTuitionPaymentValidate(t *testing.T) {
	good := TuitionPayment{StudentName: "Siti", ClassName: "1A", Month: "Januari", AmountPaid: 150000, MonthlyFee: 50000}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []TuitionPayment{
		{StudentName: "", ClassName: "1A", Month: "Januari", AmountPaid: 1, MonthlyFee: 1},
		{StudentName: "Siti", ClassName: " ", Month: "Januari", AmountPaid: 1, MonthlyFee: 1},
		{StudentName: "Siti", ClassName: "1A", Month: "", AmountPaid: 1, MonthlyFee: 1},
		{StudentName: "Siti", ClassName: "1A", Month: "Januari", AmountPaid: -1, MonthlyFee: 1},
		{StudentName: "Siti", ClassName: "1A", Month: "Januari", AmountPaid: 1, MonthlyFee: -1},
	}
	for i, p := range bads {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTeacherSalaryValidate(t *testing.T) {
	good := TeacherSalary{TeacherName: "Ani", Month: "Januari", BaseSalary: 3000000, Allowance: 500000}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (TeacherSalary{TeacherName: "", Month: "Januari"}).Validate(); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := (TeacherSalary{TeacherName: "Ani", Month: "Januari", Allowance: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative allowance")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{RecipientName: "Budi", Description: "ATK", Amount: 150000}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Expense{RecipientName: "Budi", Description: "", Amount: 1}).Validate(); err == nil {
		t.Fatalf("expected error for empty description")
	}
}

func TestReRegistrationValidate(t *testing.T) {
	good := ReRegistration{StudentName: "Siti", ClassName: "2B", Year: "2024", FeeAmount: 500000, PaidAmount: 200000}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (ReRegistration{StudentName: "Siti", ClassName: "", FeeAmount: 1}).Validate(); err == nil {
		t.Fatalf("expected error for empty class")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if got, err := ParseKind(" Tuition "); err != nil || got != KindTuition {
		t.Fatalf("ParseKind should trim and lower, got %q, %v", got, err)
	}
	if _, err := ParseKind("ledger"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
