// Package csvfile is the flat-file store backend: one delimited file per
// table under a data directory, append-only with a header row written on
// first use. File names follow the original ledger books.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"keuangan/internal/core"
	"keuangan/internal/store"
)

const (
	tuitionFile        = "pembayaran_spp.csv"
	salaryFile         = "gaji_guru.csv"
	reRegistrationFile = "daftar_ulang.csv"
	expenseFile        = "pengeluaran.csv"
	attachmentFile     = "lampiran_pengeluaran.csv"

	timeFormat = time.RFC3339
)

const (
	tuitionHeader        = "student_name,class_name,month,year,amount_paid,monthly_fee,yearly_total,remaining_balance,created_at"
	salaryHeader         = "teacher_name,month,base_salary,allowance,created_at"
	reRegistrationHeader = "student_name,class_name,year,fee_amount,paid_amount,remaining,created_at"
	expenseHeader        = "recipient_name,description,amount,attachment_ref,created_at"
	attachmentHeader     = "expense_index,attachment_ref,created_at"
)

// Store persists each table as a CSV file under dir. A single mutex
// serializes appends so concurrent callers cannot interleave rows.
type Store struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", store.ErrWrite, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) AppendTuition(_ context.Context, p core.TuitionPayment) error {
	return s.appendRow(tuitionFile, tuitionHeader, marshalTuition(p))
}

func (s *Store) AppendSalary(_ context.Context, sal core.TeacherSalary) error {
	return s.appendRow(salaryFile, salaryHeader, marshalSalary(sal))
}

func (s *Store) AppendReRegistration(_ context.Context, r core.ReRegistration) error {
	return s.appendRow(reRegistrationFile, reRegistrationHeader, marshalReRegistration(r))
}

func (s *Store) AppendExpense(_ context.Context, e core.Expense) error {
	return s.appendRow(expenseFile, expenseHeader, marshalExpense(e))
}

// AttachExpenseProof appends a row to the attachment side file rather than
// rewriting the expense table; on load the latest ref per index wins.
func (s *Store) AttachExpenseProof(ctx context.Context, index int, ref string) error {
	expenses, err := s.loadExpenseRows()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(expenses) {
		return fmt.Errorf("%w: expense index %d out of range", store.ErrWrite, index)
	}
	row := []string{strconv.Itoa(index), ref, time.Now().Format(timeFormat)}
	return s.appendRow(attachmentFile, attachmentHeader, row)
}

func (s *Store) ListTuition(_ context.Context) ([]core.TuitionPayment, error) {
	rows, err := s.loadRows(tuitionFile, tuitionHeader)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]core.TuitionPayment, 0, len(rows))
	for i, rec := range rows {
		p, err := unmarshalTuition(rec)
		if err != nil {
			return nil, rowErr(tuitionFile, i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) ListSalaries(_ context.Context) ([]core.TeacherSalary, error) {
	rows, err := s.loadRows(salaryFile, salaryHeader)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]core.TeacherSalary, 0, len(rows))
	for i, rec := range rows {
		sal, err := unmarshalSalary(rec)
		if err != nil {
			return nil, rowErr(salaryFile, i, err)
		}
		out = append(out, sal)
	}
	return out, nil
}

func (s *Store) ListReRegistrations(_ context.Context) ([]core.ReRegistration, error) {
	rows, err := s.loadRows(reRegistrationFile, reRegistrationHeader)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]core.ReRegistration, 0, len(rows))
	for i, rec := range rows {
		r, err := unmarshalReRegistration(rec)
		if err != nil {
			return nil, rowErr(reRegistrationFile, i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	out, err := s.loadExpenseRows()
	if err != nil || out == nil {
		return nil, err
	}
	refs, err := s.loadAttachmentRefs()
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

func (s *Store) Close() error { return nil }

func (s *Store) loadExpenseRows() ([]core.Expense, error) {
	rows, err := s.loadRows(expenseFile, expenseHeader)
	if err != nil || rows == nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for i, rec := range rows {
		e, err := unmarshalExpense(rec)
		if err != nil {
			return nil, rowErr(expenseFile, i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) loadAttachmentRefs() (map[int]string, error) {
	rows, err := s.loadRows(attachmentFile, attachmentHeader)
	if err != nil {
		return nil, err
	}
	refs := make(map[int]string, len(rows))
	for i, rec := range rows {
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, rowErr(attachmentFile, i, fmt.Errorf("parsing expense_index %q: %v", rec[0], err))
		}
		refs[idx] = rec[1]
	}
	return refs, nil
}

// appendRow writes a single row, creating the file with its header first
// when the table has never been written. The row is flushed before the
// file handle is released on every path.
func (s *Store) appendRow(name, header string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	_, statErr := os.Stat(path)
	fresh := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", store.ErrWrite, name, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(strings.Split(header, ",")); err != nil {
			return fmt.Errorf("%w: write header to %s: %v", store.ErrWrite, name, err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("%w: write row to %s: %v", store.ErrWrite, name, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush %s: %v", store.ErrWrite, name, err)
	}
	return nil
}

// loadRows returns the data rows of a table file, nil when the table has
// never been written.
func (s *Store) loadRows(name, header string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", store.ErrRead, name, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(strings.Split(header, ","))
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", store.ErrRead, name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if strings.Join(records[0], ",") != header {
		return nil, fmt.Errorf("%w: %s: unexpected header %q", store.ErrRead, name, strings.Join(records[0], ","))
	}
	return records[1:], nil
}

func rowErr(name string, i int, err error) error {
	return fmt.Errorf("%w: %s row %d: %v", store.ErrRead, name, i+2, err)
}

func marshalTuition(p core.TuitionPayment) []string {
	return []string{
		p.StudentName,
		p.ClassName,
		p.Month,
		p.Year,
		strconv.FormatInt(int64(p.AmountPaid), 10),
		strconv.FormatInt(int64(p.MonthlyFee), 10),
		strconv.FormatInt(int64(p.YearlyTotal), 10),
		strconv.FormatInt(int64(p.RemainingBalance), 10),
		p.CreatedAt.Format(timeFormat),
	}
}

func unmarshalTuition(rec []string) (core.TuitionPayment, error) {
	amountPaid, err := parseMoney("amount_paid", rec[4])
	if err != nil {
		return core.TuitionPayment{}, err
	}
	monthlyFee, err := parseMoney("monthly_fee", rec[5])
	if err != nil {
		return core.TuitionPayment{}, err
	}
	yearlyTotal, err := parseMoney("yearly_total", rec[6])
	if err != nil {
		return core.TuitionPayment{}, err
	}
	remaining, err := parseMoney("remaining_balance", rec[7])
	if err != nil {
		return core.TuitionPayment{}, err
	}
	createdAt, err := parseTime(rec[8])
	if err != nil {
		return core.TuitionPayment{}, err
	}
	return core.TuitionPayment{
		StudentName:      rec[0],
		ClassName:        rec[1],
		Month:            rec[2],
		Year:             rec[3],
		AmountPaid:       amountPaid,
		MonthlyFee:       monthlyFee,
		YearlyTotal:      yearlyTotal,
		RemainingBalance: remaining,
		CreatedAt:        createdAt,
	}, nil
}

func marshalSalary(s core.TeacherSalary) []string {
	return []string{
		s.TeacherName,
		s.Month,
		strconv.FormatInt(int64(s.BaseSalary), 10),
		strconv.FormatInt(int64(s.Allowance), 10),
		s.CreatedAt.Format(timeFormat),
	}
}

func unmarshalSalary(rec []string) (core.TeacherSalary, error) {
	baseSalary, err := parseMoney("base_salary", rec[2])
	if err != nil {
		return core.TeacherSalary{}, err
	}
	allowance, err := parseMoney("allowance", rec[3])
	if err != nil {
		return core.TeacherSalary{}, err
	}
	createdAt, err := parseTime(rec[4])
	if err != nil {
		return core.TeacherSalary{}, err
	}
	return core.TeacherSalary{
		TeacherName: rec[0],
		Month:       rec[1],
		BaseSalary:  baseSalary,
		Allowance:   allowance,
		CreatedAt:   createdAt,
	}, nil
}

func marshalReRegistration(r core.ReRegistration) []string {
	return []string{
		r.StudentName,
		r.ClassName,
		r.Year,
		strconv.FormatInt(int64(r.FeeAmount), 10),
		strconv.FormatInt(int64(r.PaidAmount), 10),
		strconv.FormatInt(int64(r.Remaining), 10),
		r.CreatedAt.Format(timeFormat),
	}
}

func unmarshalReRegistration(rec []string) (core.ReRegistration, error) {
	feeAmount, err := parseMoney("fee_amount", rec[3])
	if err != nil {
		return core.ReRegistration{}, err
	}
	paidAmount, err := parseMoney("paid_amount", rec[4])
	if err != nil {
		return core.ReRegistration{}, err
	}
	remaining, err := parseMoney("remaining", rec[5])
	if err != nil {
		return core.ReRegistration{}, err
	}
	createdAt, err := parseTime(rec[6])
	if err != nil {
		return core.ReRegistration{}, err
	}
	return core.ReRegistration{
		StudentName: rec[0],
		ClassName:   rec[1],
		Year:        rec[2],
		FeeAmount:   feeAmount,
		PaidAmount:  paidAmount,
		Remaining:   remaining,
		CreatedAt:   createdAt,
	}, nil
}

func marshalExpense(e core.Expense) []string {
	return []string{
		e.RecipientName,
		e.Description,
		strconv.FormatInt(int64(e.Amount), 10),
		e.AttachmentRef,
		e.CreatedAt.Format(timeFormat),
	}
}

func unmarshalExpense(rec []string) (core.Expense, error) {
	amount, err := parseMoney("amount", rec[2])
	if err != nil {
		return core.Expense{}, err
	}
	createdAt, err := parseTime(rec[4])
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		RecipientName: rec[0],
		Description:   rec[1],
		Amount:        amount,
		AttachmentRef: rec[3],
		CreatedAt:     createdAt,
	}, nil
}

// parseMoney allows negative values: derived balances legitimately go
// negative on overpayment.
func parseMoney(field, s string) (core.Money, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %v", field, s, err)
	}
	return core.Money(v), nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing created_at %q: %v", s, err)
	}
	return t, nil
}
