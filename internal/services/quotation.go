package services

import (
	"context"
	"strings"
	"sync"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/pricing"
	"github.com/diewo77/pcquote/validation"
	"github.com/google/uuid"
)

// DefaultNotes are the shop's standard terms printed on each quotation.
const DefaultNotes = `• All prices are inclusive of GST
• This quotation is valid for 30 days from the date of issue
• Warranty terms as mentioned for individual components
• Installation and setup service available
• Payment terms: 50% advance, 50% on delivery`

const defaultValidityDays = 30

// QuotationDefaults seed every new quotation.
type QuotationDefaults struct {
	DiscountRate float64
	GSTRate      float64
	ValidityDays int
	Notes        string
}

// Snapshot is an immutable copy of the quotation being built.
type Snapshot struct {
	Type         models.DocumentType `json:"type"`
	Customer     models.Customer     `json:"customer"`
	Lines        []models.Line       `json:"components"`
	DiscountRate float64             `json:"discountRate"`
	GSTRate      float64             `json:"gstRate"`
	ValidityDays int                 `json:"validityDays"`
	Notes        string              `json:"notes,omitempty"`
}

// Totals runs the pricing pipeline over the snapshot.
func (s Snapshot) Totals() pricing.Totals {
	return pricing.Compute(pricing.FromLines(s.Lines, s.DiscountRate, s.GSTRate))
}

// Missing lists what blocks rendering.
func (s Snapshot) Missing() []string {
	return pricing.Eligibility(s.Lines, s.Customer)
}

// QuotationState is the snapshot plus everything derived from it.
type QuotationState struct {
	Snapshot
	Totals   pricing.Summary `json:"totals"`
	Missing  []string        `json:"missing"`
	Eligible bool            `json:"eligible"`
}

// SettingsInput changes document-level settings. Nil fields are left alone.
type SettingsInput struct {
	Type         *string  `json:"type"`
	DiscountRate *float64 `json:"discountRate"`
	GSTRate      *float64 `json:"gstRate"`
	ValidityDays *int     `json:"validityDays"`
	Notes        *string  `json:"notes"`
}

// LinePatch edits one selected line. Nil fields are left alone.
type LinePatch struct {
	Name     *string  `json:"name"`
	Brand    *string  `json:"brand"`
	Category *string  `json:"category"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
	Warranty *string  `json:"warranty"`
}

// QuotationBuilder holds the single quotation under construction. All
// methods are safe for concurrent use.
type QuotationBuilder struct {
	mu       sync.Mutex
	current  Snapshot
	defaults QuotationDefaults
	catalog  *CatalogService
}

func NewQuotationBuilder(catalog *CatalogService, d QuotationDefaults) *QuotationBuilder {
	if d.ValidityDays <= 0 {
		d.ValidityDays = defaultValidityDays
	}
	if d.Notes == "" {
		d.Notes = DefaultNotes
	}
	if !pricing.ValidRate(d.GSTRate) {
		d.GSTRate = pricing.DefaultGSTRate
	}
	if !pricing.ValidRate(d.DiscountRate) {
		d.DiscountRate = pricing.DefaultDiscountRate
	}
	b := &QuotationBuilder{defaults: d, catalog: catalog}
	b.current = b.blank()
	return b
}

func (b *QuotationBuilder) blank() Snapshot {
	return Snapshot{
		Type:         models.DocumentQuotation,
		Lines:        []models.Line{},
		DiscountRate: b.defaults.DiscountRate,
		GSTRate:      b.defaults.GSTRate,
		ValidityDays: b.defaults.ValidityDays,
		Notes:        b.defaults.Notes,
	}
}

// Snapshot copies the current quotation.
func (b *QuotationBuilder) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *QuotationBuilder) snapshotLocked() Snapshot {
	s := b.current
	s.Lines = append([]models.Line(nil), b.current.Lines...)
	if s.Lines == nil {
		s.Lines = []models.Line{}
	}
	return s
}

func (b *QuotationBuilder) State() QuotationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *QuotationBuilder) stateLocked() QuotationState {
	return StateOf(b.snapshotLocked())
}

// StateOf derives totals and eligibility for a snapshot.
func StateOf(s Snapshot) QuotationState {
	missing := s.Missing()
	if missing == nil {
		missing = []string{}
	}
	return QuotationState{
		Snapshot: s,
		Totals:   s.Totals().Summary(s.DiscountRate, s.GSTRate),
		Missing:  missing,
		Eligible: len(missing) == 0,
	}
}

func (b *QuotationBuilder) SetCustomer(c models.Customer) QuotationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current.Customer = models.Customer{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
	}
	return b.stateLocked()
}

func (b *QuotationBuilder) UpdateSettings(in SettingsInput) (QuotationState, error) {
	v := validation.Violations{}
	if in.DiscountRate != nil {
		validation.RangeFloat("discountRate", *in.DiscountRate, 0, 100, v)
	}
	if in.GSTRate != nil {
		validation.RangeFloat("gstRate", *in.GSTRate, 0, 100, v)
	}
	if in.ValidityDays != nil {
		validation.MinInt("validityDays", *in.ValidityDays, 1, v)
	}
	if !v.Empty() {
		return QuotationState{}, v
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if in.Type != nil {
		b.current.Type = models.ParseDocumentType(*in.Type)
	}
	if in.DiscountRate != nil {
		b.current.DiscountRate = *in.DiscountRate
	}
	if in.GSTRate != nil {
		b.current.GSTRate = *in.GSTRate
	}
	if in.ValidityDays != nil {
		b.current.ValidityDays = *in.ValidityDays
	}
	if in.Notes != nil {
		b.current.Notes = strings.TrimSpace(*in.Notes)
	}
	return b.stateLocked(), nil
}

// AddFromCatalog copies a catalog entry into the quotation. Later catalog
// edits do not reach the copied line.
func (b *QuotationBuilder) AddFromCatalog(ctx context.Context, componentID string, quantity int) (QuotationState, error) {
	c, err := b.catalog.Get(ctx, componentID)
	if err != nil {
		return QuotationState{}, err
	}
	return b.AddLine(c.ToLine(quantity))
}

// AddLine appends a line from search results or manual entry.
func (b *QuotationBuilder) AddLine(l models.Line) (QuotationState, error) {
	l.Sanitize()
	v := validation.Violations{}
	validation.Required("name", l.Name, v)
	if !v.Empty() {
		return QuotationState{}, v
	}
	if l.Source == "" {
		l.Source = models.LineSourceManual
	}
	l.ID = uuid.NewString()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.current.Lines = append(b.current.Lines, l)
	return b.stateLocked(), nil
}

func (b *QuotationBuilder) UpdateLine(id string, p LinePatch) (QuotationState, error) {
	v := validation.Violations{}
	if p.Name != nil {
		validation.Required("name", *p.Name, v)
	}
	if p.Price != nil {
		validation.NonNegativeFloat("price", *p.Price, v)
	}
	if p.Quantity != nil {
		validation.MinInt("quantity", *p.Quantity, 1, v)
	}
	if !v.Empty() {
		return QuotationState{}, v
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return QuotationState{}, ErrNotFound
	}
	l := b.current.Lines[i]
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Brand != nil {
		l.Brand = *p.Brand
	}
	if p.Category != nil {
		l.Category = models.Category(*p.Category)
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Quantity != nil {
		l.Quantity = *p.Quantity
	}
	if p.Warranty != nil {
		l.Warranty = strings.TrimSpace(*p.Warranty)
	}
	l.Sanitize()
	b.current.Lines[i] = l
	return b.stateLocked(), nil
}

func (b *QuotationBuilder) RemoveLine(id string) (QuotationState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return QuotationState{}, ErrNotFound
	}
	b.current.Lines = append(b.current.Lines[:i:i], b.current.Lines[i+1:]...)
	return b.stateLocked(), nil
}

// Reset starts a new quotation with the configured defaults.
func (b *QuotationBuilder) Reset() QuotationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.blank()
	return b.stateLocked()
}

func (b *QuotationBuilder) indexLocked(id string) int {
	for i, l := range b.current.Lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}
