package models

import "strings"

// LineSource records where a selected component came from.
type LineSource string

const (
	LineSourceCatalog LineSource = "catalog"
	LineSourceSearch  LineSource = "search"
	LineSourceManual  LineSource = "manual"
)

// Line is a component selected into the active quotation.
type Line struct {
	ID       string     `json:"id"`
	Category Category   `json:"category"`
	Name     string     `json:"name"`
	Brand    string     `json:"brand"`
	Price    float64    `json:"price"`
	Quantity int        `json:"quantity"`
	Warranty string     `json:"warranty,omitempty"`
	Link     string     `json:"link,omitempty"`
	Source   LineSource `json:"source,omitempty"`
}

// Sanitize applies the defaults used for untrusted records: a negative price
// becomes zero, a missing or non-positive quantity becomes one.
func (l *Line) Sanitize() {
	if l.Price < 0 {
		l.Price = 0
	}
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	l.Category = CategoryOrOther(string(l.Category))
	l.Name = strings.TrimSpace(l.Name)
	l.Brand = strings.TrimSpace(l.Brand)
}

// Total is price times quantity.
func (l Line) Total() float64 {
	return l.Price * float64(l.Quantity)
}
