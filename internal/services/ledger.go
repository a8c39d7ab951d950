// Package services wires validation, derived-value computation, storage
// and event publishing behind the operations the controller calls.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"keuangan/internal/core"
	"keuangan/internal/render"
	"keuangan/internal/store"
)

// ErrNotFound is returned when a receipt is requested for a row position
// that does not exist.
var ErrNotFound = errors.New("record not found")

// EventPublisher announces appended rows. The AMQP client implements it;
// a nil publisher disables events without changing any code path.
type EventPublisher interface {
	PublishRecordAppended(ctx context.Context, table string, index int) error
}

type Ledger struct {
	store   store.Store
	events  EventPublisher
	receipt render.ReceiptOptions
	now     func() time.Time
}

func NewLedger(s store.Store, events EventPublisher, receipt render.ReceiptOptions) *Ledger {
	return &Ledger{
		store:   s,
		events:  events,
		receipt: receipt,
		now:     time.Now,
	}
}

// RecordTuition validates the payment, fills its derived fields, stamps
// the creation time and appends it. The stored row is returned.
func (l *Ledger) RecordTuition(ctx context.Context, p core.TuitionPayment) (core.TuitionPayment, error) {
	if err := p.Validate(); err != nil {
		return core.TuitionPayment{}, err
	}

	d := core.DeriveTuition(p.MonthlyFee, p.AmountPaid)
	p.YearlyTotal = d.YearlyTotal
	p.AmountPaid = d.AmountPaid
	p.RemainingBalance = d.RemainingBalance
	p.CreatedAt = l.now()

	if err := l.store.AppendTuition(ctx, p); err != nil {
		return core.TuitionPayment{}, fmt.Errorf("append tuition payment: %w", err)
	}
	l.publishAppended(ctx, core.KindTuition)
	return p, nil
}

func (l *Ledger) RecordSalary(ctx context.Context, s core.TeacherSalary) (core.TeacherSalary, error) {
	if err := s.Validate(); err != nil {
		return core.TeacherSalary{}, err
	}
	s.CreatedAt = l.now()

	if err := l.store.AppendSalary(ctx, s); err != nil {
		return core.TeacherSalary{}, fmt.Errorf("append teacher salary: %w", err)
	}
	l.publishAppended(ctx, core.KindSalary)
	return s, nil
}

func (l *Ledger) RecordReRegistration(ctx context.Context, r core.ReRegistration) (core.ReRegistration, error) {
	if err := r.Validate(); err != nil {
		return core.ReRegistration{}, err
	}
	r.Remaining = core.DeriveReRegistration(r.FeeAmount, r.PaidAmount)
	r.CreatedAt = l.now()

	if err := l.store.AppendReRegistration(ctx, r); err != nil {
		return core.ReRegistration{}, fmt.Errorf("append re-registration: %w", err)
	}
	l.publishAppended(ctx, core.KindReRegistration)
	return r, nil
}

func (l *Ledger) RecordExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	e.CreatedAt = l.now()

	if err := l.store.AppendExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("append expense: %w", err)
	}
	l.publishAppended(ctx, core.KindExpense)
	return e, nil
}

// AttachProof records a proof reference for the expense at index without
// touching the expense row itself.
func (l *Ledger) AttachProof(ctx context.Context, index int, ref string) error {
	if err := l.store.AttachExpenseProof(ctx, index, ref); err != nil {
		return fmt.Errorf("attach expense proof: %w", err)
	}
	return nil
}

func (l *Ledger) Tuition(ctx context.Context) ([]core.TuitionPayment, error) {
	return l.store.ListTuition(ctx)
}

func (l *Ledger) Salaries(ctx context.Context) ([]core.TeacherSalary, error) {
	return l.store.ListSalaries(ctx)
}

func (l *Ledger) ReRegistrations(ctx context.Context) ([]core.ReRegistration, error) {
	return l.store.ListReRegistrations(ctx)
}

func (l *Ledger) Expenses(ctx context.Context) ([]core.Expense, error) {
	return l.store.ListExpenses(ctx)
}

// Receipt renders the receipt for the row at index within the kind's
// table and returns the PDF bytes with their download file name.
func (l *Ledger) Receipt(ctx context.Context, kind core.Kind, index int) ([]byte, string, error) {
	rec, err := l.recordAt(ctx, kind, index)
	if err != nil {
		return nil, "", err
	}

	out, err := render.Receipt(rec, l.receipt)
	if err != nil {
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}
	return out, render.ReceiptFileName(rec), nil
}

// Export renders the consolidated report over all four tables.
func (l *Ledger) Export(ctx context.Context) ([]byte, string, error) {
	tuition, err := l.store.ListTuition(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load tuition payments: %w", err)
	}
	salaries, err := l.store.ListSalaries(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load teacher salaries: %w", err)
	}
	reRegs, err := l.store.ListReRegistrations(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load re-registrations: %w", err)
	}
	expenses, err := l.store.ListExpenses(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load expenses: %w", err)
	}

	out, err := render.Export(render.ExportTables{
		Tuition:         tuition,
		Salaries:        salaries,
		ReRegistrations: reRegs,
		Expenses:        expenses,
	})
	if err != nil {
		return nil, "", fmt.Errorf("render export: %w", err)
	}
	return out, render.ExportFileName, nil
}

// RecordAt returns the row at index within the kind's table, for the
// audit worker and receipt rendering.
func (l *Ledger) RecordAt(ctx context.Context, kind core.Kind, index int) (core.Record, error) {
	return l.recordAt(ctx, kind, index)
}

func (l *Ledger) recordAt(ctx context.Context, kind core.Kind, index int) (core.Record, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %s index %d", ErrNotFound, kind, index)
	}

	switch kind {
	case core.KindTuition:
		rows, err := l.store.ListTuition(ctx)
		if err != nil {
			return nil, err
		}
		if index >= len(rows) {
			return nil, fmt.Errorf("%w: %s index %d", ErrNotFound, kind, index)
		}
		return rows[index], nil
	case core.KindSalary:
		rows, err := l.store.ListSalaries(ctx)
		if err != nil {
			return nil, err
		}
		if index >= len(rows) {
			return nil, fmt.Errorf("%w: %s index %d", ErrNotFound, kind, index)
		}
		return rows[index], nil
	case core.KindReRegistration:
		rows, err := l.store.ListReRegistrations(ctx)
		if err != nil {
			return nil, err
		}
		if index >= len(rows) {
			return nil, fmt.Errorf("%w: %s index %d", ErrNotFound, kind, index)
		}
		return rows[index], nil
	case core.KindExpense:
		rows, err := l.store.ListExpenses(ctx)
		if err != nil {
			return nil, err
		}
		if index >= len(rows) {
			return nil, fmt.Errorf("%w: %s index %d", ErrNotFound, kind, index)
		}
		return rows[index], nil
	}
	return nil, core.ErrUnknownKind
}

// publishAppended is best effort: a broker outage must not fail a save
// that already hit durable storage.
func (l *Ledger) publishAppended(ctx context.Context, kind core.Kind) {
	if l.events == nil {
		return
	}

	index, err := l.tableLen(ctx, kind)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to resolve appended row index", "table", kind, "error", err)
		return
	}
	index--

	if err := l.events.PublishRecordAppended(ctx, string(kind), index); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record appended event",
			"table", kind, "index", index, "error", err)
	}
}

func (l *Ledger) tableLen(ctx context.Context, kind core.Kind) (int, error) {
	switch kind {
	case core.KindTuition:
		rows, err := l.store.ListTuition(ctx)
		return len(rows), err
	case core.KindSalary:
		rows, err := l.store.ListSalaries(ctx)
		return len(rows), err
	case core.KindReRegistration:
		rows, err := l.store.ListReRegistrations(ctx)
		return len(rows), err
	case core.KindExpense:
		rows, err := l.store.ListExpenses(ctx)
		return len(rows), err
	}
	return 0, core.ErrUnknownKind
}

func (l *Ledger) Close() error {
	return l.store.Close()
}
