package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/pricing"
	"github.com/diewo77/pcquote/internal/render"
	"github.com/diewo77/pcquote/validation"
)

// Renderer turns a document into its PDF payload.
type Renderer interface {
	Render(ctx context.Context, company models.CompanyInfo, doc *models.Document) ([]byte, error)
}

// ExternalRecord is a document rendered elsewhere and handed in for storage.
// Lines are sanitized and totals recomputed on the way in. A missing GST
// rate means the default rate. PDFData is a data URI or bare base64.
type ExternalRecord struct {
	Type         string          `json:"type"`
	Number       string          `json:"number"`
	Customer     models.Customer `json:"customer"`
	Lines        []models.Line   `json:"components"`
	DiscountRate float64         `json:"discountRate"`
	GSTRate      *float64        `json:"gstRate"`
	ValidityDays int             `json:"validityDays"`
	Notes        string          `json:"notes"`
	PDFData      string          `json:"pdfData"`
}

// DocumentService finalizes quotations: it renders them and, only when
// rendering succeeded, appends them to history.
type DocumentService struct {
	History  *HistoryService
	Company  *CompanyService
	Renderer Renderer
	Now      func() time.Time

	busy atomic.Bool
}

func NewDocumentService(history *HistoryService, company *CompanyService, r Renderer) *DocumentService {
	return &DocumentService{History: history, Company: company, Renderer: r, Now: time.Now}
}

// Build freezes a snapshot into an unsaved document with a fresh number.
func (s *DocumentService) Build(snap Snapshot) *models.Document {
	issued := s.Now()
	doc := &models.Document{
		Number:    models.GenerateNumber(snap.Type, issued),
		Type:      snap.Type,
		IssueDate: issued,
		Customer:  snap.Customer,
		Lines:     models.NewDocumentLines(snap.Lines),
		Notes:     snap.Notes,
	}
	if doc.IsQuotation() && snap.ValidityDays > 0 {
		until := issued.AddDate(0, 0, snap.ValidityDays)
		doc.ValidUntil = &until
	}
	snap.Totals().Apply(doc, snap.DiscountRate, snap.GSTRate)
	return doc
}

// Finalize renders an eligible snapshot and stores it. Nothing is stored
// when rendering fails. Only one finalization runs at a time.
func (s *DocumentService) Finalize(ctx context.Context, snap Snapshot) (*models.Document, error) {
	if missing := snap.Missing(); len(missing) > 0 {
		return nil, &NotEligibleError{Missing: missing}
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrRenderInProgress
	}
	defer s.busy.Store(false)

	doc := s.Build(snap)
	payload, err := s.render(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.Payload = payload
	if err := s.History.Append(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Preview renders without storing anything.
func (s *DocumentService) Preview(ctx context.Context, snap Snapshot) (*models.Document, *models.CompanyInfo, error) {
	company, err := s.Company.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.Build(snap), company, nil
}

// SaveExternal stores a record from another client. A missing payload is
// rendered here so every history entry can be downloaded again. Saving a
// number that is already stored replaces that entry.
func (s *DocumentService) SaveExternal(ctx context.Context, rec ExternalRecord) (*models.Document, error) {
	snap := Snapshot{
		Type:         models.ParseDocumentType(rec.Type),
		Customer:     rec.Customer,
		DiscountRate: rec.DiscountRate,
		GSTRate:      pricing.DefaultGSTRate,
		ValidityDays: rec.ValidityDays,
		Notes:        strings.TrimSpace(rec.Notes),
	}
	if rec.GSTRate != nil {
		snap.GSTRate = *rec.GSTRate
	}
	if snap.ValidityDays <= 0 {
		snap.ValidityDays = defaultValidityDays
	}
	for _, l := range rec.Lines {
		l.Sanitize()
		snap.Lines = append(snap.Lines, l)
	}
	v := validation.Violations{}
	validation.RangeFloat("discountRate", snap.DiscountRate, 0, 100, v)
	validation.RangeFloat("gstRate", snap.GSTRate, 0, 100, v)
	var payload []byte
	if strings.TrimSpace(rec.PDFData) != "" {
		data, err := render.DecodeDataURI(rec.PDFData)
		if err != nil {
			v["pdfData"] = "invalid_base64"
		}
		payload = data
	}
	if !v.Empty() {
		return nil, v
	}
	if missing := snap.Missing(); len(missing) > 0 {
		return nil, &NotEligibleError{Missing: missing}
	}

	doc := s.Build(snap)
	doc.Payload = payload
	if len(doc.Payload) == 0 {
		rendered, err := s.render(ctx, doc)
		if err != nil {
			return nil, err
		}
		doc.Payload = rendered
	}
	if n := strings.TrimSpace(rec.Number); n != "" {
		doc.Number = n
		if err := s.History.Replace(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err := s.History.Append(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) render(ctx context.Context, doc *models.Document) ([]byte, error) {
	company, err := s.Company.Get(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := s.Renderer.Render(ctx, *company, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrRenderFailed)
	}
	return payload, nil
}
