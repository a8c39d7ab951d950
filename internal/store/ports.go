// Package store defines the record store contract shared by all backends.
//
// Each record kind is an independent append-only table: rows are created
// exactly once, never updated or deleted, and are returned in insertion
// order. The only sanctioned exception is the expense proof attachment,
// which lives in a side table keyed by the expense's position so the
// expense row itself stays immutable.
package store

import (
	"context"
	"errors"

	"keuangan/internal/core"
)

var (
	// ErrWrite wraps any failure to persist a row (unwritable medium,
	// out-of-range attach index, closed store).
	ErrWrite = errors.New("storage write failed")

	// ErrRead wraps corrupt or unreadable existing data. A table that has
	// never been written is an empty result, never ErrRead.
	ErrRead = errors.New("storage read failed")
)

// Ports for the ledger's storage backends.
type (
	Appender interface {
		AppendTuition(ctx context.Context, p core.TuitionPayment) error
		AppendSalary(ctx context.Context, s core.TeacherSalary) error
		AppendReRegistration(ctx context.Context, r core.ReRegistration) error
		AppendExpense(ctx context.Context, e core.Expense) error
	}

	Lister interface {
		ListTuition(ctx context.Context) ([]core.TuitionPayment, error)
		ListSalaries(ctx context.Context) ([]core.TeacherSalary, error)
		ListReRegistrations(ctx context.Context) ([]core.ReRegistration, error)
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}

	// Attacher records a proof reference for the expense at the given
	// position (0-based insertion order). The latest ref wins on load.
	Attacher interface {
		AttachExpenseProof(ctx context.Context, index int, ref string) error
	}
)

// Store is the full backend contract.
type Store interface {
	Appender
	Lister
	Attacher
	Close() error
}
