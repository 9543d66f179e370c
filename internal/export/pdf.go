package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders a titled, paginated table. The header row is repeated on
// every page.
func WritePDF(w io.Writer, title string, headers []string, rows [][]string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 15)
	// Core fonts are cp1252; translate so accented text renders.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right
	colW := usable / float64(len(headers))
	const rowH = 8.0

	writeHeader := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range headers {
			pdf.CellFormat(colW, rowH, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(rowH)
		pdf.SetFont("Helvetica", "", 10)
	}

	newPage := func() {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(usable, 10, tr(title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
		writeHeader()
	}

	newPage()

	for _, row := range rows {
		if pdf.GetY()+rowH > pageH-15 {
			newPage()
		}
		for _, value := range row {
			pdf.CellFormat(colW, rowH, tr(value), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(rowH)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	return nil
}
