package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"keuangan/internal/core"
)

var testOpts = ReceiptOptions{
	SchoolName:    "SD IT Harapan",
	SchoolAddress: "Jatimulyo",
	Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
}

func TestReceiptWithoutLogoStillRenders(t *testing.T) {
	p := core.TuitionPayment{
		StudentName: "Siti", ClassName: "1A", Month: "Januari",
		AmountPaid: 300000, MonthlyFee: 50000,
		YearlyTotal: 600000, RemainingBalance: 300000,
	}
	out, err := Receipt(p, testOpts) // no logo bytes at all
	if err != nil {
		t.Fatalf("render without logo: %v", err)
	}
	if len(out) == 0 || !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a non-empty PDF, got %d bytes", len(out))
	}
}

func TestReceiptWithBrokenLogoStillRenders(t *testing.T) {
	e := core.Expense{RecipientName: "Budi", Description: "ATK", Amount: 150000}
	opts := testOpts
	opts.Logo = []byte("this is not an image")
	out, err := Receipt(e, opts)
	if err != nil {
		t.Fatalf("render with broken logo: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a PDF stream")
	}
}

func TestReceiptWithValidLogo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 4; i++ {
		img.Set(i, i, color.RGBA{R: 255, A: 255})
	}
	var logo bytes.Buffer
	if err := png.Encode(&logo, img); err != nil {
		t.Fatalf("encode test logo: %v", err)
	}

	opts := testOpts
	opts.Logo = logo.Bytes()
	out, err := Receipt(core.TeacherSalary{TeacherName: "Ani", Month: "Januari", BaseSalary: 3000000, Allowance: 500000}, opts)
	if err != nil {
		t.Fatalf("render with logo: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a PDF stream")
	}
}

// PDF content streams are compressed, so field assertions target the row
// builder rather than raw output bytes.
func TestReceiptRowsExpense(t *testing.T) {
	e := core.Expense{RecipientName: "Budi", Description: "ATK", Amount: 150000}
	title, rows, err := receiptRows(e, testOpts.Date)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if title != "Expense Receipt" {
		t.Fatalf("title = %q", title)
	}
	want := []labelValue{
		{"Recipient Name", "Budi"},
		{"Description", "ATK"},
		{"Total Amount", "Rp 150,000"},
		{"Date", "2024-01-15"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestReceiptRowsTuitionIncludesDerived(t *testing.T) {
	p := core.TuitionPayment{
		StudentName: "Siti", ClassName: "1A", Month: "Januari",
		AmountPaid: 700000, MonthlyFee: 50000,
		YearlyTotal: 600000, RemainingBalance: -100000,
	}
	_, rows, err := receiptRows(p, testOpts.Date)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	var foundRemaining bool
	for _, row := range rows {
		if row.label == "Remaining Balance" {
			foundRemaining = true
			if row.value != "Rp -100,000" {
				t.Fatalf("remaining balance = %q, want %q", row.value, "Rp -100,000")
			}
		}
	}
	if !foundRemaining {
		t.Fatalf("derived rows missing: %+v", rows)
	}
}

func TestReceiptRowsTuitionWithoutDerived(t *testing.T) {
	p := core.TuitionPayment{StudentName: "Siti", ClassName: "1A", Month: "Januari", AmountPaid: 50000, MonthlyFee: 0}
	_, rows, err := receiptRows(p, testOpts.Date)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	for _, row := range rows {
		if row.label == "Yearly Total" || row.label == "Remaining Balance" {
			t.Fatalf("derived rows should be absent when not supplied: %+v", rows)
		}
	}
}

func TestReceiptUnknownRecordFails(t *testing.T) {
	_, _, err := receiptRows(fakeRecord{}, testOpts.Date)
	if !errors.Is(err, ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

type fakeRecord struct{}

func (fakeRecord) Kind() core.Kind { return core.Kind("bogus") }
func (fakeRecord) Validate() error { return nil }

func TestReceiptFileName(t *testing.T) {
	cases := []struct {
		rec  core.Record
		want string
	}{
		{core.TuitionPayment{StudentName: "Siti Aminah", Month: "Januari"}, "receipt_tuition_Siti_Aminah_Januari.pdf"},
		{core.TeacherSalary{TeacherName: "Ani", Month: "Feb/2024"}, "receipt_salary_Ani_Feb_2024.pdf"},
		{core.ReRegistration{StudentName: "Dewi", Year: "2024"}, "receipt_reregistration_Dewi_2024.pdf"},
		{core.Expense{RecipientName: "Budi"}, "receipt_expense_Budi.pdf"},
	}
	for _, tc := range cases {
		if got := ReceiptFileName(tc.rec); got != tc.want {
			t.Fatalf("ReceiptFileName = %q, want %q", got, tc.want)
		}
	}
}
