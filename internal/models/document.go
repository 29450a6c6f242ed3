package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentType distinguishes quotations from invoices.
type DocumentType string

const (
	DocumentQuotation DocumentType = "quotation"
	DocumentInvoice   DocumentType = "invoice"
)

// ParseDocumentType defaults to quotation for anything that is not "invoice".
func ParseDocumentType(s string) DocumentType {
	if strings.EqualFold(strings.TrimSpace(s), string(DocumentInvoice)) {
		return DocumentInvoice
	}
	return DocumentQuotation
}

// Prefix is the leading part of the document number.
func (t DocumentType) Prefix() string {
	if t == DocumentInvoice {
		return "INV"
	}
	return "QUO"
}

// Title is the heading printed on the document.
func (t DocumentType) Title() string {
	if t == DocumentInvoice {
		return "INVOICE"
	}
	return "QUOTATION"
}

// Document is a rendered quotation or invoice kept in history.
// Monetary fields are computed once from Lines when the document is created.
type Document struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Number     string       `gorm:"size:40;uniqueIndex;not null" json:"number"`
	Type       DocumentType `gorm:"size:20;not null;default:'quotation'" json:"type"`
	IssueDate  time.Time    `gorm:"not null" json:"issue_date"`
	ValidUntil *time.Time   `json:"valid_until,omitempty"`

	Customer Customer       `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Lines    []DocumentLine `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"components"`

	Subtotal       float64 `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	DiscountRate   float64 `gorm:"type:decimal(5,2);not null" json:"discount_rate"`
	DiscountAmount float64 `gorm:"type:decimal(14,2);not null" json:"discount_amount"`
	TaxableAmount  float64 `gorm:"type:decimal(14,2);not null" json:"taxable_amount"`
	GSTRate        float64 `gorm:"column:gst_rate;type:decimal(5,2);not null" json:"gst_rate"`
	GSTAmount      float64 `gorm:"column:gst_amount;type:decimal(14,2);not null" json:"gst_amount"`
	TotalAmount    float64 `gorm:"type:decimal(14,2);not null" json:"total_amount"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	// Payload is the rendered PDF.
	Payload     []byte `json:"-"`
	PayloadSize int    `json:"payload_size"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.PayloadSize = len(d.Payload)
	return nil
}

func (d *Document) IsQuotation() bool {
	return d.Type != DocumentInvoice
}

// FileName is the suggested name of the rendered PDF.
func (d *Document) FileName() string {
	return d.Number + ".pdf"
}

// DocumentLine is a frozen copy of a selected component.
type DocumentLine struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	DocumentID string `gorm:"type:varchar(36);index;not null" json:"-"`
	Position   int    `gorm:"not null;default:0" json:"-"`

	Category  Category `gorm:"size:32" json:"category"`
	Name      string   `gorm:"size:255;not null" json:"name"`
	Brand     string   `gorm:"size:100" json:"brand"`
	Warranty  string   `gorm:"size:100" json:"warranty,omitempty"`
	Link      string   `gorm:"size:1000" json:"link,omitempty"`
	Quantity  int      `gorm:"not null" json:"quantity"`
	UnitPrice float64  `gorm:"type:decimal(12,2);not null" json:"price"`
	LineTotal float64  `gorm:"type:decimal(14,2);not null" json:"total"`
}

// NewDocumentLines freezes the selected lines in display order.
func NewDocumentLines(lines []Line) []DocumentLine {
	out := make([]DocumentLine, 0, len(lines))
	for i, l := range lines {
		out = append(out, DocumentLine{
			Position:  i,
			Category:  l.Category,
			Name:      l.Name,
			Brand:     l.Brand,
			Warranty:  l.Warranty,
			Link:      l.Link,
			Quantity:  l.Quantity,
			UnitPrice: l.Price,
			LineTotal: l.Total(),
		})
	}
	return out
}

// GenerateNumber builds a document number seeded with the issue date and a
// random suffix, e.g. QUO-20250114-3F9A1C.
func GenerateNumber(t DocumentType, issued time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", t.Prefix(), issued.Format("20060102"), suffix)
}
