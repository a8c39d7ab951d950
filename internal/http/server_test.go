package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"keuangan/internal/render"
	"keuangan/internal/services"
	"keuangan/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ledger := services.NewLedger(memory.New(), nil, render.ReceiptOptions{
		SchoolName:    "SD IT Harapan",
		SchoolAddress: "Jatimulyo",
	})
	return NewServer(":0", ledger)
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	if rec := get(t, s, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func TestCreateTuitionReturnsDerivedValues(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/tuition", url.Values{
		"student_name": {"Siti"},
		"class_name":   {"1A"},
		"month":        {"Januari"},
		"amount_paid":  {"300000"},
		"monthly_fee":  {"50000"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var got tuitionView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Index != 0 || got.YearlyTotal != 600000 || got.RemainingBalance != 300000 {
		t.Fatalf("view = %+v", got)
	}

	list := get(t, s, "/tuition")
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	var rows []tuitionView
	if err := json.Unmarshal(list.Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if len(rows) != 1 || rows[0].StudentName != "Siti" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestCreateTuitionValidation(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/tuition", url.Values{
		"class_name":  {"1A"},
		"month":       {"Januari"},
		"amount_paid": {"300000"},
		"monthly_fee": {"50000"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = postForm(t, s, "/tuition", url.Values{
		"student_name": {"Siti"},
		"class_name":   {"1A"},
		"month":        {"Januari"},
		"amount_paid":  {"-5"},
		"monthly_fee":  {"50000"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("negative amount: status = %d", rec.Code)
	}
}

func TestSalaryRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/salary", url.Values{
		"teacher_name": {"Ani"},
		"month":        {"Januari"},
		"base_salary":  {"3000000"},
		"allowance":    {"500000"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var rows []salaryView
	if err := json.Unmarshal(get(t, s, "/salary").Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 1 || rows[0].BaseSalary != 3000000 || rows[0].Allowance != 500000 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestReRegistrationOverpayment(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/reregistration", url.Values{
		"student_name": {"Dewi"},
		"class_name":   {"2B"},
		"year":         {"2024"},
		"fee_amount":   {"500000"},
		"paid_amount":  {"600000"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var got reRegistrationView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Remaining != -100000 {
		t.Fatalf("remaining = %d, want -100000", got.Remaining)
	}
}

func TestExpenseAttachAndReceipt(t *testing.T) {
	s := newTestServer(t)

	rec := postForm(t, s, "/expense", url.Values{
		"recipient_name": {"Budi"},
		"description":    {"ATK"},
		"amount":         {"150000"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}

	rec = postForm(t, s, "/expense/attach", url.Values{
		"index": {"0"},
		"ref":   {"uploads/nota.jpg"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("attach: %d %s", rec.Code, rec.Body.String())
	}

	var rows []expenseView
	if err := json.Unmarshal(get(t, s, "/expense").Body.Bytes(), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rows[0].AttachmentRef != "uploads/nota.jpg" {
		t.Fatalf("ref = %q", rows[0].AttachmentRef)
	}

	receipt := get(t, s, "/receipt?kind=expense&index=0")
	if receipt.Code != http.StatusOK {
		t.Fatalf("receipt: %d %s", receipt.Code, receipt.Body.String())
	}
	if ct := receipt.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := receipt.Header().Get("Content-Disposition"); !strings.Contains(cd, "receipt_expense_Budi.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(receipt.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF bytes")
	}
}

func TestReceiptErrors(t *testing.T) {
	s := newTestServer(t)

	if rec := get(t, s, "/receipt?kind=expense&index=5"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing row: %d", rec.Code)
	}
	if rec := get(t, s, "/receipt?kind=bogus&index=0"); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown kind: %d", rec.Code)
	}
	if rec := get(t, s, "/receipt?kind=expense&index=abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad index: %d", rec.Code)
	}
}

func TestExportDownload(t *testing.T) {
	s := newTestServer(t)

	rec := get(t, s, "/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "financial_report.xlsx") {
		t.Fatalf("content disposition = %q", cd)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty workbook")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/tuition", nil)
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, POST" {
		t.Fatalf("allow = %q", allow)
	}
}
