// Package sheets reads and writes the xlsx workbooks used for catalog
// import/export and history export.
package sheets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrEmptySheet = errors.New("empty_sheet")

var componentHeader = []any{"Category", "Name", "Brand", "Model", "Price", "Warranty", "Link"}

var documentHeader = []any{
	"Number", "Type", "Issue Date", "Valid Until", "Customer", "Phone", "Email",
	"Items", "Subtotal", "Discount %", "Discount", "Taxable", "GST %", "GST", "Total",
}

// WriteComponents writes the catalog as a single-sheet workbook.
func WriteComponents(w io.Writer, items []models.Component) error {
	rows := make([][]any, 0, len(items))
	for _, c := range items {
		rows = append(rows, []any{string(c.Category), c.Name, c.Brand, c.Model, c.Price, c.Warranty, c.Link})
	}
	return write(w, "Components", componentHeader, rows)
}

// WriteDocuments writes history records, one row per document.
func WriteDocuments(w io.Writer, docs []models.Document) error {
	rows := make([][]any, 0, len(docs))
	for _, d := range docs {
		valid := ""
		if d.ValidUntil != nil {
			valid = d.ValidUntil.Format("2006-01-02")
		}
		rows = append(rows, []any{
			d.Number, string(d.Type), d.IssueDate.Format("2006-01-02"), valid,
			d.Customer.Name, d.Customer.Phone, d.Customer.Email, len(d.Lines),
			d.Subtotal, d.DiscountRate, d.DiscountAmount, d.TaxableAmount,
			d.GSTRate, d.GSTAmount, d.TotalAmount,
		})
	}
	return write(w, "History", documentHeader, rows)
}

func write(w io.Writer, sheet string, header []any, rows [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

// ReadRecords reads the first sheet of a workbook. The first row names the
// columns; each further row becomes a record keyed by lower-cased header.
// Blank cells are left out.
func ReadRecords(data []byte) ([]map[string]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptySheet
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	records := make([]map[string]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(header))
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				rec[header[i]] = cell
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	}
	return records, nil
}
