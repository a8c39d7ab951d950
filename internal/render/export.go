package render

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"keuangan/internal/core"
)

// ExportFileName is the download name for the consolidated report.
const ExportFileName = "financial_report.xlsx"

const timeFormat = "2006-01-02 15:04:05"

// Sheet names in table order.
const (
	SheetTuition        = "Tuition Payments"
	SheetSalaries       = "Teacher Salaries"
	SheetReRegistration = "Re-Registrations"
	SheetExpenses       = "Expenses"
)

// ExportTables carries the full content of the four ledger tables.
type ExportTables struct {
	Tuition         []core.TuitionPayment
	Salaries        []core.TeacherSalary
	ReRegistrations []core.ReRegistration
	Expenses        []core.Expense
}

// Export renders all four tables as one xlsx workbook, one sheet per
// table, header row first, one row per record in table order. Sheets for
// empty tables are still present, header-only. Attachment refs are
// written as the stored path text; the proof file itself is never read
// or embedded.
func Export(tables ExportTables) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTuition); err != nil {
		return nil, fmt.Errorf("%w: rename sheet: %v", ErrRender, err)
	}
	for _, name := range []string{SheetSalaries, SheetReRegistration, SheetExpenses} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("%w: create sheet %s: %v", ErrRender, name, err)
		}
	}

	tuitionRows := make([][]interface{}, len(tables.Tuition))
	for i, p := range tables.Tuition {
		tuitionRows[i] = []interface{}{
			p.StudentName, p.ClassName, p.Month, p.Year,
			int64(p.AmountPaid), int64(p.MonthlyFee), int64(p.YearlyTotal), int64(p.RemainingBalance),
			formatTime(p.CreatedAt),
		}
	}
	if err := writeSheet(f, SheetTuition,
		[]string{"student_name", "class_name", "month", "year", "amount_paid", "monthly_fee", "yearly_total", "remaining_balance", "created_at"},
		tuitionRows); err != nil {
		return nil, err
	}

	salaryRows := make([][]interface{}, len(tables.Salaries))
	for i, s := range tables.Salaries {
		salaryRows[i] = []interface{}{
			s.TeacherName, s.Month, int64(s.BaseSalary), int64(s.Allowance), formatTime(s.CreatedAt),
		}
	}
	if err := writeSheet(f, SheetSalaries,
		[]string{"teacher_name", "month", "base_salary", "allowance", "created_at"},
		salaryRows); err != nil {
		return nil, err
	}

	reRegRows := make([][]interface{}, len(tables.ReRegistrations))
	for i, r := range tables.ReRegistrations {
		reRegRows[i] = []interface{}{
			r.StudentName, r.ClassName, r.Year,
			int64(r.FeeAmount), int64(r.PaidAmount), int64(r.Remaining),
			formatTime(r.CreatedAt),
		}
	}
	if err := writeSheet(f, SheetReRegistration,
		[]string{"student_name", "class_name", "year", "fee_amount", "paid_amount", "remaining", "created_at"},
		reRegRows); err != nil {
		return nil, err
	}

	expenseRows := make([][]interface{}, len(tables.Expenses))
	for i, e := range tables.Expenses {
		expenseRows[i] = []interface{}{
			e.RecipientName, e.Description, int64(e.Amount), e.AttachmentRef, formatTime(e.CreatedAt),
		}
	}
	if err := writeSheet(f, SheetExpenses,
		[]string{"recipient_name", "description", "amount", "attachment_ref", "created_at"},
		expenseRows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: write workbook: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("%w: header cell: %v", ErrRender, err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%w: set header %s!%s: %v", ErrRender, sheet, cell, err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("%w: data cell: %v", ErrRender, err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%w: set cell %s!%s: %v", ErrRender, sheet, cell, err)
			}
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}
