package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Component{}, &models.CompanyInfo{}, &models.Document{}, &models.DocumentLine{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeRenderer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeRenderer) Render(ctx context.Context, company models.CompanyInfo, doc *models.Document) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7 " + doc.Number), nil
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withID(r *http.Request, id string) *http.Request {
	r.SetPathValue("id", id)
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

type errorBody struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details"`
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) errorBody {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	var e errorBody
	decodeBody(t, w, &e)
	if e.Error != code {
		t.Fatalf("error = %q, want %q", e.Error, code)
	}
	return e
}

// fixture wires the quotation and history handlers over one database.
type fixture struct {
	db        *gorm.DB
	renderer  *fakeRenderer
	history   *services.HistoryService
	builder   *services.QuotationBuilder
	quotation *QuotationHandler
	hist      *HistoryHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	r := &fakeRenderer{}
	catalog := services.NewCatalogService(db)
	history := services.NewHistoryService(db)
	docs := services.NewDocumentService(history, services.NewCompanyService(db), r)
	docs.Now = func() time.Time { return time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC) }
	builder := services.NewQuotationBuilder(catalog, services.QuotationDefaults{GSTRate: 18})
	log := testLogger()
	return &fixture{
		db:        db,
		renderer:  r,
		history:   history,
		builder:   builder,
		quotation: NewQuotationHandler(builder, docs, nil, "documents/", nil, log),
		hist:      NewHistoryHandler(history, docs, nil, log),
	}
}

func (f *fixture) historyCount(t *testing.T) int {
	t.Helper()
	docs, err := f.history.List(context.Background(), services.HistoryFilter{})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	return len(docs)
}

func (f *fixture) fillEligible(t *testing.T) {
	t.Helper()
	steps := []struct {
		h    http.HandlerFunc
		req  *http.Request
		want int
	}{
		{f.quotation.SetCustomer, jsonRequest(http.MethodPut, "/api/quotation/customer", `{"name":"A","phone":"123"}`), http.StatusOK},
		{f.quotation.UpdateSettings, jsonRequest(http.MethodPut, "/api/quotation/settings", `{"discountRate":10,"gstRate":18}`), http.StatusOK},
		{f.quotation.AddItem, jsonRequest(http.MethodPost, "/api/quotation/items", `{"line":{"name":"Ryzen 5 5600X","brand":"AMD","category":"CPU","price":1000,"quantity":2}}`), http.StatusCreated},
	}
	for i, s := range steps {
		w := httptest.NewRecorder()
		s.h(w, s.req)
		if w.Code != s.want {
			t.Fatalf("step %d: status = %d, want %d (%s)", i, w.Code, s.want, w.Body.String())
		}
	}
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}
