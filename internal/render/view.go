// Package render turns a finalized document into its printable forms.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/pricing"
)

const (
	// SymbolHTML prefixes amounts in the HTML preview.
	SymbolHTML = "₹"
	// SymbolPDF prefixes amounts in the PDF; the core fonts have no rupee glyph.
	SymbolPDF = "Rs. "

	dateLayout = "02 Jan 2006"
	notAvail   = "N/A"
)

// View is a document with every printed value already formatted.
type View struct {
	Title      string
	Kind       string
	Number     string
	IssueDate  string
	ValidUntil string
	IsQuote    bool

	Company  CompanyView
	Customer CustomerView
	Lines    []LineView

	Subtotal      string
	DiscountLabel string
	Discount      string
	HasDiscount   bool
	GSTLabel      string
	GST           string
	Total         string

	Notes  []string
	Footer string
}

type CompanyView struct {
	Name    string
	Address string
	Contact string
	GSTIN   string
	Website string
	Logo    string
}

type CustomerView struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type LineView struct {
	Index     int
	Name      string
	Brand     string
	Category  string
	Warranty  string
	Quantity  int
	UnitPrice string
	Total     string
}

// NewView formats doc for printing, prefixing amounts with symbol.
func NewView(company models.CompanyInfo, doc *models.Document, symbol string) View {
	v := View{
		Title:     doc.Type.Title(),
		Kind:      "Quotation",
		Number:    doc.Number,
		IssueDate: doc.IssueDate.Format(dateLayout),
		IsQuote:   doc.IsQuotation(),
		Company: CompanyView{
			Name:    company.Name,
			Address: company.Address,
			Contact: joinNonEmpty(" | ", company.Phone, company.Email),
			GSTIN:   company.GSTIN,
			Website: company.Website,
			Logo:    company.Logo,
		},
		Customer: CustomerView{
			Name:    orNA(doc.Customer.Name),
			Phone:   orNA(doc.Customer.DisplayPhone()),
			Email:   orNA(doc.Customer.Email),
			Address: strings.TrimSpace(doc.Customer.Address),
		},
		Subtotal:      pricing.FormatINR(doc.Subtotal, symbol),
		DiscountLabel: fmt.Sprintf("Discount (%s%%)", rate(doc.DiscountRate)),
		Discount:      "-" + pricing.FormatINR(doc.DiscountAmount, symbol),
		HasDiscount:   doc.DiscountAmount > 0,
		GSTLabel:      fmt.Sprintf("GST (%s%%)", rate(doc.GSTRate)),
		GST:           pricing.FormatINR(doc.GSTAmount, symbol),
		Total:         pricing.FormatINR(doc.TotalAmount, symbol),
		Notes:         noteLines(doc.Notes),
		Footer:        footer(company),
	}
	if !v.IsQuote {
		v.Kind = "Invoice"
	}
	if doc.ValidUntil != nil {
		v.ValidUntil = doc.ValidUntil.Format(dateLayout)
	}
	for i, l := range doc.Lines {
		v.Lines = append(v.Lines, LineView{
			Index:     i + 1,
			Name:      l.Name,
			Brand:     l.Brand,
			Category:  string(l.Category),
			Warranty:  l.Warranty,
			Quantity:  l.Quantity,
			UnitPrice: pricing.FormatINR(l.UnitPrice, symbol),
			Total:     pricing.FormatINR(l.LineTotal, symbol),
		})
	}
	return v
}

func footer(c models.CompanyInfo) string {
	if c.Website == "" {
		return "Generated by " + c.Name
	}
	return "Generated by " + c.Name + " - " + c.Website
}

func noteLines(notes string) []string {
	var out []string
	for _, l := range strings.Split(notes, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func rate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvail
	}
	return s
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
