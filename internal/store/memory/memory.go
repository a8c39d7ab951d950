// Package memory provides the in-memory store double used in tests and
// as the default backend when nothing durable is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"keuangan/internal/core"
	"keuangan/internal/store"
)

type Store struct {
	mu             sync.Mutex
	tuition        []core.TuitionPayment
	salaries       []core.TeacherSalary
	reRegistration []core.ReRegistration
	expenses       []core.Expense
	attachments    map[int]string
}

func New() *Store {
	return &Store{attachments: make(map[int]string)}
}

func (s *Store) AppendTuition(_ context.Context, p core.TuitionPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tuition = append(s.tuition, p)
	return nil
}

func (s *Store) AppendSalary(_ context.Context, sal core.TeacherSalary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.salaries = append(s.salaries, sal)
	return nil
}

func (s *Store) AppendReRegistration(_ context.Context, r core.ReRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reRegistration = append(s.reRegistration, r)
	return nil
}

func (s *Store) AppendExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return nil
}

func (s *Store) AttachExpenseProof(_ context.Context, index int, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.expenses) {
		return fmt.Errorf("%w: expense index %d out of range", store.ErrWrite, index)
	}
	s.attachments[index] = ref
	return nil
}

func (s *Store) ListTuition(_ context.Context) ([]core.TuitionPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.TuitionPayment(nil), s.tuition...), nil
}

func (s *Store) ListSalaries(_ context.Context) ([]core.TeacherSalary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.TeacherSalary(nil), s.salaries...), nil
}

func (s *Store) ListReRegistrations(_ context.Context) ([]core.ReRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ReRegistration(nil), s.reRegistration...), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Expense(nil), s.expenses...)
	for i := range out {
		if ref, ok := s.attachments[i]; ok {
			out[i].AttachmentRef = ref
		}
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
