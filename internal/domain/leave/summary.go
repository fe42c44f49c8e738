package leave

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// SummaryPDF renders the owner's balance and application history.
func (s *Service) SummaryPDF(ctx context.Context, owner, name string) ([]byte, error) {
	list, err := s.Store.ListLeaves(ctx, Filter{OwnerEmail: owner})
	if err != nil {
		return nil, err
	}
	balance := ComputeBalance(list, s.Allowance)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(s.Now().UTC())
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Leave Summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", owner))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Allowance: %.0f days", balance.Total))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Used: %.0f  Pending: %.0f  Remaining: %.0f", balance.Used, balance.Pending, balance.Remaining))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	for _, h := range []struct {
		label string
		width float64
	}{{"Type", 30}, {"From", 30}, {"To", 30}, {"Days", 20}, {"Status", 30}} {
		pdf.CellFormat(h.width, 8, h.label, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range list {
		pdf.CellFormat(30, 8, l.Type, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, l.FromDate.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 8, l.ToDate.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%.0f", l.Days), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, l.Status, "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render leave summary: %w", err)
	}
	return buf.Bytes(), nil
}
