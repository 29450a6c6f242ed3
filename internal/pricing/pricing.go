// Package pricing derives quotation totals from a snapshot of selected lines.
//
// The pipeline is fixed:
//
//	subtotal       = Σ price × quantity
//	discountAmount = subtotal × discountRate / 100
//	taxableAmount  = subtotal − discountAmount
//	gstAmount      = taxableAmount × gstRate / 100
//	totalAmount    = taxableAmount + gstAmount
//
// Amounts are exact decimals; rounding happens only when they are displayed.
package pricing

import (
	"github.com/diewo77/pcquote/internal/models"
	"github.com/shopspring/decimal"
)

const (
	DefaultGSTRate      = 18.0
	DefaultDiscountRate = 0.0
)

var hundred = decimal.NewFromInt(100)

// Item is the part of a line the pipeline needs.
type Item struct {
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Input is an immutable snapshot of a quotation.
type Input struct {
	Items        []Item  `json:"items"`
	DiscountRate float64 `json:"discountRate"`
	GSTRate      float64 `json:"gstRate"`
}

// Totals are the derived monetary fields.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	GSTAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Summary is the float form of Totals used in JSON and persisted records.
type Summary struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountRate   float64 `json:"discountRate"`
	DiscountAmount float64 `json:"discountAmount"`
	TaxableAmount  float64 `json:"taxableAmount"`
	GSTRate        float64 `json:"gstRate"`
	GSTAmount      float64 `json:"gstAmount"`
	TotalAmount    float64 `json:"totalAmount"`
}

// FromLines builds the pipeline input from selected lines.
func FromLines(lines []models.Line, discountRate, gstRate float64) Input {
	items := make([]Item, len(lines))
	for i, l := range lines {
		items[i] = Item{Price: l.Price, Quantity: l.Quantity}
	}
	return Input{Items: items, DiscountRate: discountRate, GSTRate: gstRate}
}

// Compute runs the pipeline. Negative prices count as zero and non-positive
// quantities as one.
func Compute(in Input) Totals {
	subtotal := decimal.Zero
	for _, it := range in.Items {
		price := decimal.NewFromFloat(it.Price)
		if price.IsNegative() {
			price = decimal.Zero
		}
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(qty))))
	}
	discount := subtotal.Mul(decimal.NewFromFloat(in.DiscountRate)).Div(hundred)
	taxable := subtotal.Sub(discount)
	gst := taxable.Mul(decimal.NewFromFloat(in.GSTRate)).Div(hundred)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		GSTAmount:      gst,
		TotalAmount:    taxable.Add(gst),
	}
}

// Summary converts the totals for transport, carrying the rates alongside.
func (t Totals) Summary(discountRate, gstRate float64) Summary {
	return Summary{
		Subtotal:       toFloat(t.Subtotal),
		DiscountRate:   discountRate,
		DiscountAmount: toFloat(t.DiscountAmount),
		TaxableAmount:  toFloat(t.TaxableAmount),
		GSTRate:        gstRate,
		GSTAmount:      toFloat(t.GSTAmount),
		TotalAmount:    toFloat(t.TotalAmount),
	}
}

// Apply copies the totals onto a document.
func (t Totals) Apply(doc *models.Document, discountRate, gstRate float64) {
	s := t.Summary(discountRate, gstRate)
	doc.Subtotal = s.Subtotal
	doc.DiscountRate = discountRate
	doc.DiscountAmount = s.DiscountAmount
	doc.TaxableAmount = s.TaxableAmount
	doc.GSTRate = gstRate
	doc.GSTAmount = s.GSTAmount
	doc.TotalAmount = s.TotalAmount
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
