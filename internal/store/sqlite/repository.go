// Package sqlite is the embedded relational store backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"keuangan/internal/core"
	"keuangan/internal/store"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", store.ErrWrite, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", store.ErrWrite, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", store.ErrWrite, err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", store.ErrWrite, err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) AppendTuition(ctx context.Context, p core.TuitionPayment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tuition_payments
			(student_name, class_name, month, year, amount_paid, monthly_fee, yearly_total, remaining_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.StudentName, p.ClassName, p.Month, p.Year,
		int64(p.AmountPaid), int64(p.MonthlyFee), int64(p.YearlyTotal), int64(p.RemainingBalance),
		p.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("%w: insert tuition payment: %v", store.ErrWrite, err)
	}

	slog.InfoContext(ctx, "Tuition payment saved",
		"student", p.StudentName,
		"month", p.Month,
		"amount_paid", int64(p.AmountPaid),
		"remaining_balance", int64(p.RemainingBalance))
	return nil
}

func (r *Repository) AppendSalary(ctx context.Context, s core.TeacherSalary) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teacher_salaries (teacher_name, month, base_salary, allowance, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.TeacherName, s.Month, int64(s.BaseSalary), int64(s.Allowance), s.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("%w: insert teacher salary: %v", store.ErrWrite, err)
	}

	slog.InfoContext(ctx, "Teacher salary saved",
		"teacher", s.TeacherName,
		"month", s.Month,
		"base_salary", int64(s.BaseSalary))
	return nil
}

func (r *Repository) AppendReRegistration(ctx context.Context, rr core.ReRegistration) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO re_registrations (student_name, class_name, year, fee_amount, paid_amount, remaining, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rr.StudentName, rr.ClassName, rr.Year,
		int64(rr.FeeAmount), int64(rr.PaidAmount), int64(rr.Remaining), rr.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("%w: insert re-registration: %v", store.ErrWrite, err)
	}

	slog.InfoContext(ctx, "Re-registration saved",
		"student", rr.StudentName,
		"year", rr.Year,
		"remaining", int64(rr.Remaining))
	return nil
}

func (r *Repository) AppendExpense(ctx context.Context, e core.Expense) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (recipient_name, description, amount, attachment_ref, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.RecipientName, e.Description, int64(e.Amount), e.AttachmentRef, e.CreatedAt.Format(timeFormat))
	if err != nil {
		return fmt.Errorf("%w: insert expense: %v", store.ErrWrite, err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"recipient", e.RecipientName,
		"description", e.Description,
		"amount", int64(e.Amount))
	return nil
}

func (r *Repository) AttachExpenseProof(ctx context.Context, index int, ref string) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&count); err != nil {
		return fmt.Errorf("%w: count expenses: %v", store.ErrRead, err)
	}
	if index < 0 || index >= count {
		return fmt.Errorf("%w: expense index %d out of range", store.ErrWrite, index)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expense_attachments (expense_position, attachment_ref, created_at)
		VALUES (?, ?, ?)`,
		index, ref, time.Now().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("%w: insert expense attachment: %v", store.ErrWrite, err)
	}

	slog.InfoContext(ctx, "Expense proof attached", "index", index, "ref", ref)
	return nil
}

func (r *Repository) ListTuition(ctx context.Context) ([]core.TuitionPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_name, class_name, month, year, amount_paid, monthly_fee, yearly_total, remaining_balance, created_at
		FROM tuition_payments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query tuition payments: %v", store.ErrRead, err)
	}
	defer rows.Close()

	var out []core.TuitionPayment
	for rows.Next() {
		var p core.TuitionPayment
		var amountPaid, monthlyFee, yearlyTotal, remaining int64
		var createdAt string
		if err := rows.Scan(&p.StudentName, &p.ClassName, &p.Month, &p.Year,
			&amountPaid, &monthlyFee, &yearlyTotal, &remaining, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan tuition payment: %v", store.ErrRead, err)
		}
		p.AmountPaid = core.Money(amountPaid)
		p.MonthlyFee = core.Money(monthlyFee)
		p.YearlyTotal = core.Money(yearlyTotal)
		p.RemainingBalance = core.Money(remaining)
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate tuition payments: %v", store.ErrRead, err)
	}
	return out, nil
}

func (r *Repository) ListSalaries(ctx context.Context) ([]core.TeacherSalary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT teacher_name, month, base_salary, allowance, created_at
		FROM teacher_salaries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query teacher salaries: %v", store.ErrRead, err)
	}
	defer rows.Close()

	var out []core.TeacherSalary
	for rows.Next() {
		var s core.TeacherSalary
		var baseSalary, allowance int64
		var createdAt string
		if err := rows.Scan(&s.TeacherName, &s.Month, &baseSalary, &allowance, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan teacher salary: %v", store.ErrRead, err)
		}
		s.BaseSalary = core.Money(baseSalary)
		s.Allowance = core.Money(allowance)
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate teacher salaries: %v", store.ErrRead, err)
	}
	return out, nil
}

func (r *Repository) ListReRegistrations(ctx context.Context) ([]core.ReRegistration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT student_name, class_name, year, fee_amount, paid_amount, remaining, created_at
		FROM re_registrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query re-registrations: %v", store.ErrRead, err)
	}
	defer rows.Close()

	var out []core.ReRegistration
	for rows.Next() {
		var rr core.ReRegistration
		var feeAmount, paidAmount, remaining int64
		var createdAt string
		if err := rows.Scan(&rr.StudentName, &rr.ClassName, &rr.Year,
			&feeAmount, &paidAmount, &remaining, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan re-registration: %v", store.ErrRead, err)
		}
		rr.FeeAmount = core.Money(feeAmount)
		rr.PaidAmount = core.Money(paidAmount)
		rr.Remaining = core.Money(remaining)
		if rr.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate re-registrations: %v", store.ErrRead, err)
	}
	return out, nil
}

func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT recipient_name, description, amount, attachment_ref, created_at
		FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query expenses: %v", store.ErrRead, err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var amount int64
		var createdAt string
		if err := rows.Scan(&e.RecipientName, &e.Description, &amount, &e.AttachmentRef, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan expense: %v", store.ErrRead, err)
		}
		e.Amount = core.Money(amount)
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate expenses: %v", store.ErrRead, err)
	}

	refs, err := r.attachmentRefs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if ref, ok := refs[i]; ok {
			out[i].AttachmentRef = ref
		}
	}
	return out, nil
}

// attachmentRefs returns the latest proof ref per expense position.
func (r *Repository) attachmentRefs(ctx context.Context) (map[int]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT expense_position, attachment_ref
		FROM expense_attachments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query expense attachments: %v", store.ErrRead, err)
	}
	defer rows.Close()

	refs := make(map[int]string)
	for rows.Next() {
		var pos int
		var ref string
		if err := rows.Scan(&pos, &ref); err != nil {
			return nil, fmt.Errorf("%w: scan expense attachment: %v", store.ErrRead, err)
		}
		refs[pos] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate expense attachments: %v", store.ErrRead, err)
	}
	return refs, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing created_at %q: %v", store.ErrRead, s, err)
	}
	return t, nil
}
