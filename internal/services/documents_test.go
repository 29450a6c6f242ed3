package services

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/validation"
)

type fakeRenderer struct {
	err     error
	calls   int
	block   chan struct{}
	started chan struct{}
	mu      sync.Mutex
}

func (f *fakeRenderer) Render(ctx context.Context, company models.CompanyInfo, doc *models.Document) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 " + company.Name + " " + doc.Number), nil
}

func newDocumentService(t *testing.T, r Renderer) (*DocumentService, *HistoryService) {
	t.Helper()
	db := setupTestDB(t, t.Name())
	history := NewHistoryService(db)
	svc := NewDocumentService(history, NewCompanyService(db), r)
	svc.Now = func() time.Time { return time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC) }
	return svc, history
}

func eligibleSnapshot() Snapshot {
	return Snapshot{
		Type:         models.DocumentQuotation,
		Customer:     models.Customer{Name: "Asha", Phone: "9876543210"},
		Lines:        []models.Line{{Name: "Ryzen 5", Price: 1000, Quantity: 2}},
		DiscountRate: 10,
		GSTRate:      18,
		ValidityDays: 30,
	}
}

func TestDocumentServiceFinalize(t *testing.T) {
	r := &fakeRenderer{}
	svc, history := newDocumentService(t, r)
	doc, err := svc.Finalize(context.Background(), eligibleSnapshot())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if doc.TotalAmount != 2124 || doc.GSTAmount != 324 || doc.DiscountAmount != 200 {
		t.Errorf("unexpected totals %+v", doc)
	}
	if doc.ValidUntil == nil || !doc.ValidUntil.Equal(time.Date(2025, 2, 13, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("valid until = %v", doc.ValidUntil)
	}
	docs, _ := history.List(context.Background(), HistoryFilter{})
	if len(docs) != 1 || docs[0].Number != doc.Number {
		t.Fatalf("history = %+v", docs)
	}
}

func TestDocumentServiceFinalizeNotEligible(t *testing.T) {
	r := &fakeRenderer{}
	svc, _ := newDocumentService(t, r)
	snap := eligibleSnapshot()
	snap.Customer.Phone = ""
	_, err := svc.Finalize(context.Background(), snap)
	var ne *NotEligibleError
	if !errors.As(err, &ne) || !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected NotEligibleError got %v", err)
	}
	if len(ne.Missing) != 1 || ne.Missing[0] != "customer_phone" {
		t.Errorf("missing = %v", ne.Missing)
	}
	if r.calls != 0 {
		t.Errorf("renderer called for an ineligible quotation")
	}
}

func TestDocumentServiceRenderFailureKeepsHistoryEmpty(t *testing.T) {
	svc, history := newDocumentService(t, &fakeRenderer{err: errors.New("font missing")})
	_, err := svc.Finalize(context.Background(), eligibleSnapshot())
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("expected ErrRenderFailed got %v", err)
	}
	docs, _ := history.List(context.Background(), HistoryFilter{})
	if len(docs) != 0 {
		t.Fatalf("failed render persisted %d docs", len(docs))
	}
}

func TestDocumentServiceSingleFlight(t *testing.T) {
	r := &fakeRenderer{block: make(chan struct{}), started: make(chan struct{})}
	svc, _ := newDocumentService(t, r)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Finalize(context.Background(), eligibleSnapshot())
		done <- err
	}()
	<-r.started
	if _, err := svc.Finalize(context.Background(), eligibleSnapshot()); !errors.Is(err, ErrRenderInProgress) {
		t.Fatalf("expected ErrRenderInProgress got %v", err)
	}
	close(r.block)
	if err := <-done; err != nil {
		t.Fatalf("first finalize: %v", err)
	}
}

func TestDocumentServiceSaveExternal(t *testing.T) {
	r := &fakeRenderer{}
	svc, history := newDocumentService(t, r)
	gst := 18.0
	doc, err := svc.SaveExternal(context.Background(), ExternalRecord{
		Type:     "invoice",
		Customer: models.Customer{Name: "Asha", Phone: "1"},
		Lines:    []models.Line{{Name: "PSU", Price: -5, Quantity: 0}, {Name: "Case", Price: 100, Quantity: 1}},
		GSTRate:  &gst,
		PDFData:  "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-client")),
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Type != models.DocumentInvoice || doc.ValidUntil != nil {
		t.Errorf("invoice must not carry a validity date: %+v", doc)
	}
	if doc.Subtotal != 100 || doc.TotalAmount != 118 {
		t.Errorf("totals = %v / %v", doc.Subtotal, doc.TotalAmount)
	}
	if r.calls != 0 {
		t.Errorf("payload supplied, renderer must not run")
	}
	stored, err := history.Payload(context.Background(), doc.ID)
	if err != nil || string(stored.Payload) != "%PDF-client" {
		t.Fatalf("payload = %q err=%v", stored.Payload, err)
	}

	doc, err = svc.SaveExternal(context.Background(), ExternalRecord{
		Customer: models.Customer{Name: "Asha", Phone: "1"},
		Lines:    []models.Line{{Name: "Case", Price: 100, Quantity: 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.calls != 1 || doc.PayloadSize == 0 {
		t.Errorf("missing payload should be rendered, calls=%d", r.calls)
	}
	if doc.GSTRate != 18 || doc.ValidUntil == nil {
		t.Errorf("defaults not applied: gst=%v valid_until=%v", doc.GSTRate, doc.ValidUntil)
	}
}

func TestDocumentServiceSaveExternalRejectsBadPDFData(t *testing.T) {
	svc, _ := newDocumentService(t, &fakeRenderer{})
	_, err := svc.SaveExternal(context.Background(), ExternalRecord{
		Customer: models.Customer{Name: "Asha", Phone: "1"},
		Lines:    []models.Line{{Name: "Case", Price: 100, Quantity: 1}},
		PDFData:  "data:application/pdf;base64,@@@",
	})
	var v validation.Violations
	if !errors.As(err, &v) || v["pdfData"] != "invalid_base64" {
		t.Fatalf("expected pdfData violation, got %v", err)
	}
}

func TestDocumentServiceSaveExternalSameNumberReplaces(t *testing.T) {
	r := &fakeRenderer{}
	svc, history := newDocumentService(t, r)
	ctx := context.Background()
	rec := ExternalRecord{
		Number:   "QUO-1",
		Customer: models.Customer{Name: "Asha", Phone: "1"},
		Lines:    []models.Line{{Name: "Case", Price: 100, Quantity: 1}},
	}
	first, err := svc.SaveExternal(ctx, rec)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	rec.Lines = []models.Line{{Name: "Case", Price: 100, Quantity: 2}, {Name: "Fan", Price: 50, Quantity: 1}}
	second, err := svc.SaveExternal(ctx, rec)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replaced entry must keep its id: %s != %s", second.ID, first.ID)
	}

	docs, err := history.List(ctx, HistoryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || len(docs[0].Lines) != 2 || docs[0].Subtotal != 250 {
		t.Fatalf("expected one updated entry, got %+v", docs)
	}
}
