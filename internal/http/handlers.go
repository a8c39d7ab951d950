package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"keuangan/internal/core"
	"keuangan/internal/services"
	"keuangan/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes: validation problems are
// the caller's fault, storage and render failures are ours.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrUnknownKind):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyClass),
		errors.Is(err, core.ErrEmptyMonth),
		errors.Is(err, core.ErrEmptyDescription):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrWrite), errors.Is(err, store.ErrRead):
		slog.ErrorContext(r.Context(), "Storage failure", "error", err, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "storage failure"})
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// formMoney parses a rupiah amount from a form field.
func formMoney(r *http.Request, field string) (core.Money, error) {
	v := strings.TrimSpace(r.Form.Get(field))
	if v == "" {
		return 0, fmt.Errorf("%w: missing %s", core.ErrInvalidAmount, field)
	}
	m, err := core.ParseRupiah(v)
	if err != nil {
		return 0, err
	}
	return m, nil
}

type tuitionView struct {
	Index            int    `json:"index"`
	StudentName      string `json:"student_name"`
	ClassName        string `json:"class_name"`
	Month            string `json:"month"`
	Year             string `json:"year,omitempty"`
	AmountPaid       int64  `json:"amount_paid"`
	MonthlyFee       int64  `json:"monthly_fee"`
	YearlyTotal      int64  `json:"yearly_total"`
	RemainingBalance int64  `json:"remaining_balance"`
	CreatedAt        string `json:"created_at"`
}

func newTuitionView(index int, p core.TuitionPayment) tuitionView {
	return tuitionView{
		Index:            index,
		StudentName:      p.StudentName,
		ClassName:        p.ClassName,
		Month:            p.Month,
		Year:             p.Year,
		AmountPaid:       int64(p.AmountPaid),
		MonthlyFee:       int64(p.MonthlyFee),
		YearlyTotal:      int64(p.YearlyTotal),
		RemainingBalance: int64(p.RemainingBalance),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleTuition(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := s.ledger.Tuition(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		views := make([]tuitionView, 0, len(rows))
		for i, row := range rows {
			views = append(views, newTuitionView(i, row))
		}
		writeJSON(w, http.StatusOK, views)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form data"})
			return
		}
		paid, err := formMoney(r, "amount_paid")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		fee, err := formMoney(r, "monthly_fee")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		saved, err := s.ledger.RecordTuition(r.Context(), core.TuitionPayment{
			StudentName: strings.TrimSpace(r.Form.Get("student_name")),
			ClassName:   strings.TrimSpace(r.Form.Get("class_name")),
			Month:       strings.TrimSpace(r.Form.Get("month")),
			Year:        strings.TrimSpace(r.Form.Get("year")),
			AmountPaid:  paid,
			MonthlyFee:  fee,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows, err := s.ledger.Tuition(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTuitionView(len(rows)-1, saved))
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

type salaryView struct {
	Index       int    `json:"index"`
	TeacherName string `json:"teacher_name"`
	Month       string `json:"month"`
	BaseSalary  int64  `json:"base_salary"`
	Allowance   int64  `json:"allowance"`
	CreatedAt   string `json:"created_at"`
}

func newSalaryView(index int, x core.TeacherSalary) salaryView {
	return salaryView{
		Index:       index,
		TeacherName: x.TeacherName,
		Month:       x.Month,
		BaseSalary:  int64(x.BaseSalary),
		Allowance:   int64(x.Allowance),
		CreatedAt:   x.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleSalary(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := s.ledger.Salaries(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		views := make([]salaryView, 0, len(rows))
		for i, row := range rows {
			views = append(views, newSalaryView(i, row))
		}
		writeJSON(w, http.StatusOK, views)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form data"})
			return
		}
		base, err := formMoney(r, "base_salary")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		allowance, err := formMoney(r, "allowance")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		saved, err := s.ledger.RecordSalary(r.Context(), core.TeacherSalary{
			TeacherName: strings.TrimSpace(r.Form.Get("teacher_name")),
			Month:       strings.TrimSpace(r.Form.Get("month")),
			BaseSalary:  base,
			Allowance:   allowance,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows, err := s.ledger.Salaries(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newSalaryView(len(rows)-1, saved))
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

type reRegistrationView struct {
	Index       int    `json:"index"`
	StudentName string `json:"student_name"`
	ClassName   string `json:"class_name"`
	Year        string `json:"year"`
	FeeAmount   int64  `json:"fee_amount"`
	PaidAmount  int64  `json:"paid_amount"`
	Remaining   int64  `json:"remaining"`
	CreatedAt   string `json:"created_at"`
}

func newReRegistrationView(index int, x core.ReRegistration) reRegistrationView {
	return reRegistrationView{
		Index:       index,
		StudentName: x.StudentName,
		ClassName:   x.ClassName,
		Year:        x.Year,
		FeeAmount:   int64(x.FeeAmount),
		PaidAmount:  int64(x.PaidAmount),
		Remaining:   int64(x.Remaining),
		CreatedAt:   x.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleReRegistration(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := s.ledger.ReRegistrations(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		views := make([]reRegistrationView, 0, len(rows))
		for i, row := range rows {
			views = append(views, newReRegistrationView(i, row))
		}
		writeJSON(w, http.StatusOK, views)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form data"})
			return
		}
		fee, err := formMoney(r, "fee_amount")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		paid, err := formMoney(r, "paid_amount")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		saved, err := s.ledger.RecordReRegistration(r.Context(), core.ReRegistration{
			StudentName: strings.TrimSpace(r.Form.Get("student_name")),
			ClassName:   strings.TrimSpace(r.Form.Get("class_name")),
			Year:        strings.TrimSpace(r.Form.Get("year")),
			FeeAmount:   fee,
			PaidAmount:  paid,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows, err := s.ledger.ReRegistrations(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newReRegistrationView(len(rows)-1, saved))
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

type expenseView struct {
	Index         int    `json:"index"`
	RecipientName string `json:"recipient_name"`
	Description   string `json:"description"`
	Amount        int64  `json:"amount"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func newExpenseView(index int, x core.Expense) expenseView {
	return expenseView{
		Index:         index,
		RecipientName: x.RecipientName,
		Description:   x.Description,
		Amount:        int64(x.Amount),
		AttachmentRef: x.AttachmentRef,
		CreatedAt:     x.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleExpense(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rows, err := s.ledger.Expenses(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		views := make([]expenseView, 0, len(rows))
		for i, row := range rows {
			views = append(views, newExpenseView(i, row))
		}
		writeJSON(w, http.StatusOK, views)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form data"})
			return
		}
		amount, err := formMoney(r, "amount")
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		saved, err := s.ledger.RecordExpense(r.Context(), core.Expense{
			RecipientName: strings.TrimSpace(r.Form.Get("recipient_name")),
			Description:   strings.TrimSpace(r.Form.Get("description")),
			Amount:        amount,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		rows, err := s.ledger.Expenses(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, newExpenseView(len(rows)-1, saved))
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleAttachProof(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form data"})
		return
	}

	index, err := strconv.Atoi(strings.TrimSpace(r.Form.Get("index")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid expense index"})
		return
	}
	ref := strings.TrimSpace(r.Form.Get("ref"))
	if ref == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing attachment ref"})
		return
	}

	if err := s.ledger.AttachProof(r.Context(), index, ref); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"index": index, "attachment_ref": ref})
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	kind, err := core.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	index, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("index")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid record index"})
		return
	}

	out, name, err := s.ledger.Receipt(r.Context(), kind, index)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	out, name, err := s.ledger.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
