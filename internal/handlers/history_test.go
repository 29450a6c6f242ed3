package handlers

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/models"
)

func TestHistoryExternalSaveAndLifecycle(t *testing.T) {
	f := newFixture(t)
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 external"))
	body := `{
		"type": "invoice",
		"customer": {"name": "Ravi Kumar", "phone": "9876543210"},
		"components": [{"name": "RTX 4060", "brand": "NVIDIA", "price": 1000, "quantity": 2}, {"name": "Cable", "price": -3}],
		"discountRate": 10,
		"gstRate": 18,
		"pdfData": "` + payload + `"
	}`

	w := httptest.NewRecorder()
	f.hist.Create(w, jsonRequest(http.MethodPost, "/api/history", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var doc models.Document
	decodeBody(t, w, &doc)
	if doc.Type != models.DocumentInvoice || !strings.HasPrefix(doc.Number, "INV-") {
		t.Errorf("unexpected document %s %s", doc.Type, doc.Number)
	}
	if doc.TotalAmount != 2124 || len(doc.Lines) != 2 || doc.Lines[1].Quantity != 1 || doc.Lines[1].UnitPrice != 0 {
		t.Errorf("unexpected totals or lines: total=%v lines=%+v", doc.TotalAmount, doc.Lines)
	}
	if f.renderer.calls != 0 {
		t.Errorf("payload was supplied, renderer must not run")
	}

	w = httptest.NewRecorder()
	f.hist.List(w, httptest.NewRequest(http.MethodGet, "/api/history?q=ravi", nil))
	var list []models.Document
	decodeBody(t, w, &list)
	if len(list) != 1 || list[0].ID != doc.ID {
		t.Fatalf("list = %+v", list)
	}
	if strings.Contains(w.Body.String(), "pdfData") {
		t.Errorf("list must not carry payloads")
	}

	w = httptest.NewRecorder()
	f.hist.PDF(w, withID(httptest.NewRequest(http.MethodGet, "/api/history/"+doc.ID+"/pdf", nil), doc.ID))
	if w.Code != http.StatusOK || w.Body.String() != "%PDF-1.4 external" {
		t.Fatalf("pdf: %d %q", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(w.Header().Get("Content-Disposition"), "inline") {
		t.Errorf("preview must be inline")
	}

	w = httptest.NewRecorder()
	f.hist.Delete(w, withID(httptest.NewRequest(http.MethodDelete, "/api/history/"+doc.ID, nil), doc.ID))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	f.hist.PDF(w, withID(httptest.NewRequest(http.MethodGet, "/api/history/"+doc.ID+"/pdf", nil), doc.ID))
	expectError(t, w, http.StatusNotFound, "not_found")

	w = httptest.NewRecorder()
	f.hist.List(w, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("list after delete = %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	f.hist.Delete(w, withID(httptest.NewRequest(http.MethodDelete, "/api/history/"+doc.ID, nil), doc.ID))
	expectError(t, w, http.StatusNotFound, "not_found")
}

func TestHistoryExternalSaveRendersMissingPayload(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.hist.Create(w, jsonRequest(http.MethodPost, "/api/history",
		`{"customer":{"name":"A","phone":"123"},"components":[{"name":"Fan","price":500}]}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var doc models.Document
	decodeBody(t, w, &doc)
	if doc.Type != models.DocumentQuotation || doc.GSTRate != 18 || doc.DiscountRate != 0 {
		t.Errorf("defaults not applied: type=%s discount=%v gst=%v", doc.Type, doc.DiscountRate, doc.GSTRate)
	}
	if f.renderer.calls != 1 || doc.PayloadSize == 0 {
		t.Errorf("missing payload must be rendered, calls=%d size=%d", f.renderer.calls, doc.PayloadSize)
	}
}

func TestHistoryExternalSaveAcceptsDataURI(t *testing.T) {
	f := newFixture(t)
	body := `{
		"number": "QUO-20250114-C0FFEE",
		"customer": {"name": "A", "phone": "123"},
		"components": [{"name": "Fan", "price": 500}],
		"pdfData": "data:application/pdf;base64,JVBERi0xLjQK"
	}`
	w := httptest.NewRecorder()
	f.hist.Create(w, jsonRequest(http.MethodPost, "/api/history", body))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var doc models.Document
	decodeBody(t, w, &doc)
	if f.renderer.calls != 0 {
		t.Errorf("payload was supplied, renderer must not run")
	}

	w = httptest.NewRecorder()
	f.hist.PDF(w, withID(httptest.NewRequest(http.MethodGet, "/api/history/"+doc.ID+"/pdf", nil), doc.ID))
	if w.Code != http.StatusOK || w.Body.String() != "%PDF-1.4\n" {
		t.Fatalf("pdf: %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	f.hist.Create(w, jsonRequest(http.MethodPost, "/api/history", strings.Replace(body, `"price": 500`, `"price": 700`, 1)))
	if w.Code != http.StatusCreated {
		t.Fatalf("re-save: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var again models.Document
	decodeBody(t, w, &again)
	if again.ID != doc.ID || again.Subtotal != 700 {
		t.Errorf("re-save must update the entry: id=%s subtotal=%v", again.ID, again.Subtotal)
	}
	if f.historyCount(t) != 1 {
		t.Errorf("re-save must not add an entry")
	}
}

func TestHistoryExternalSaveRejectsBadPDFData(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.hist.Create(w, jsonRequest(http.MethodPost, "/api/history",
		`{"customer":{"name":"A","phone":"123"},"components":[{"name":"Fan","price":500}],"pdfData":"data:application/pdf;base64,@@@"}`))
	expectError(t, w, http.StatusBadRequest, "validation_failed")
	if f.historyCount(t) != 0 {
		t.Errorf("invalid record stored")
	}
}

func TestHistoryExternalSaveBodyTooLarge(t *testing.T) {
	f := newFixture(t)
	body := `{"customer":{"name":"A","phone":"123"},"pdfData":"` + strings.Repeat("A", httpx.MaxBodyBytes) + `"}`
	w := httptest.NewRecorder()
	f.hist.Create(w, jsonRequest(http.MethodPost, "/api/history", body))
	expectError(t, w, http.StatusRequestEntityTooLarge, "body_too_large")
	if f.historyCount(t) != 0 {
		t.Errorf("oversized record stored")
	}
}

func TestHistoryExternalSaveRejectsIneligible(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.hist.Create(w, jsonRequest(http.MethodPost, "/api/history", `{"customer":{"name":"A"},"components":[]}`))
	expectError(t, w, http.StatusUnprocessableEntity, "not_eligible")
	if f.historyCount(t) != 0 {
		t.Errorf("ineligible record stored")
	}
}

func TestHistoryRenderedDocumentIsListedAndExported(t *testing.T) {
	f := newFixture(t)
	f.fillEligible(t)
	w := httptest.NewRecorder()
	f.quotation.Render(w, httptest.NewRequest(http.MethodPost, "/api/quotation/render?action=download", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("render: %d", w.Code)
	}

	w = httptest.NewRecorder()
	f.hist.List(w, httptest.NewRequest(http.MethodGet, "/api/history?type=quotation", nil))
	var list []models.Document
	decodeBody(t, w, &list)
	if len(list) != 1 || list[0].TotalAmount != 2124 || list[0].ValidUntil == nil {
		t.Fatalf("list = %+v", list)
	}

	w = httptest.NewRecorder()
	f.hist.Get(w, withID(httptest.NewRequest(http.MethodGet, "/api/history/"+list[0].ID, nil), list[0].ID))
	if w.Code != http.StatusOK {
		t.Fatalf("get: %d", w.Code)
	}

	w = httptest.NewRecorder()
	f.hist.Export(w, httptest.NewRequest(http.MethodGet, "/api/history/export.xlsx", nil))
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Body.String(), "PK") {
		t.Errorf("export: %d", w.Code)
	}
}
