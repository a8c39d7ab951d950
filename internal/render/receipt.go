// Package render produces the ledger's derived artifacts: single-page PDF
// payment receipts and the consolidated xlsx report. Renderers are pure:
// they take records and return byte buffers, never touching disk.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"keuangan/internal/core"
)

// ErrRender wraps any failure to produce a document.
var ErrRender = errors.New("render failed")

// ReceiptOptions carries the fixed receipt header plus the logo image
// bytes (png or jpeg). A nil or undecodable logo is replaced by a
// plain-text placeholder; it never fails the render.
type ReceiptOptions struct {
	SchoolName    string
	SchoolAddress string
	Logo          []byte
	Date          time.Time // receipt date; zero means now
}

type labelValue struct {
	label string
	value string
}

// Receipt renders one record as a single-page PDF.
func Receipt(rec core.Record, opts ReceiptOptions) ([]byte, error) {
	title, rows, err := receiptRows(rec, opts.date())
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	if name, ok := registerLogo(pdf, opts.Logo); ok {
		pdf.ImageOptions(name, 10, 8, 33, 0, false, fpdf.ImageOptions{}, 0, "")
	} else {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 10, "Logo not found", "", 1, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, opts.SchoolName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, opts.SchoolAddress, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	for _, row := range rows {
		pdf.CellFormat(100, 10, row.label, "1", 0, "", false, 0, "")
		pdf.CellFormat(90, 10, ": "+row.value, "1", 1, "", false, 0, "")
	}

	pdf.Ln(10)
	pdf.CellFormat(0, 10, "Received", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func (o ReceiptOptions) date() time.Time {
	if o.Date.IsZero() {
		return time.Now()
	}
	return o.Date
}

// registerLogo validates the logo bytes before handing them to fpdf so a
// broken image degrades to the placeholder instead of poisoning the
// document's error state.
func registerLogo(pdf *fpdf.Fpdf, logo []byte) (string, bool) {
	if len(logo) == 0 {
		return "", false
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(logo))
	if err != nil {
		return "", false
	}
	var imageType string
	switch format {
	case "png":
		imageType = "PNG"
	case "jpeg":
		imageType = "JPG"
	default:
		return "", false
	}
	pdf.RegisterImageOptionsReader("logo", fpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(logo))
	return "logo", true
}

// receiptRows builds the title and the label/value table for one record,
// matching the field sets on the printed receipt books.
func receiptRows(rec core.Record, date time.Time) (string, []labelValue, error) {
	dateRow := labelValue{"Date", date.Format("2006-01-02")}

	switch r := rec.(type) {
	case core.TuitionPayment:
		rows := []labelValue{
			{"Student Name", r.StudentName},
			{"Class", r.ClassName},
			{"Month", r.Month},
			{"Amount Paid", r.AmountPaid.Format()},
			{"Monthly Fee", r.MonthlyFee.Format()},
		}
		if r.YearlyTotal != 0 || r.RemainingBalance != 0 {
			rows = append(rows,
				labelValue{"Yearly Total", r.YearlyTotal.Format()},
				labelValue{"Remaining Balance", r.RemainingBalance.Format()},
			)
		}
		rows = append(rows, dateRow)
		return "Tuition Payment Receipt", rows, nil

	case core.TeacherSalary:
		return "Teacher Salary Receipt", []labelValue{
			{"Teacher Name", r.TeacherName},
			{"Month", r.Month},
			{"Salary", r.BaseSalary.Format()},
			{"Allowance", r.Allowance.Format()},
			dateRow,
		}, nil

	case core.ReRegistration:
		return "Re-Registration Receipt", []labelValue{
			{"Student Name", r.StudentName},
			{"Class", r.ClassName},
			{"Re-Registration Fee", r.FeeAmount.Format()},
			{"Amount Paid", r.PaidAmount.Format()},
			dateRow,
		}, nil

	case core.Expense:
		return "Expense Receipt", []labelValue{
			{"Recipient Name", r.RecipientName},
			{"Description", r.Description},
			{"Total Amount", r.Amount.Format()},
			dateRow,
		}, nil
	}

	return "", nil, fmt.Errorf("%w: unsupported record type %T", ErrRender, rec)
}

// ReceiptFileName builds the download name for a record's receipt:
// receipt_{kind}_{primaryName}[_{secondaryLabel}].pdf.
func ReceiptFileName(rec core.Record) string {
	var primary, secondary string
	switch r := rec.(type) {
	case core.TuitionPayment:
		primary, secondary = r.StudentName, r.Month
	case core.TeacherSalary:
		primary, secondary = r.TeacherName, r.Month
	case core.ReRegistration:
		primary, secondary = r.StudentName, r.Year
	case core.Expense:
		primary = r.RecipientName
	}

	name := "receipt_" + string(rec.Kind()) + "_" + sanitizeFilePart(primary)
	if secondary != "" {
		name += "_" + sanitizeFilePart(secondary)
	}
	return name + ".pdf"
}

func sanitizeFilePart(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
