package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/pcquote/internal/handlers"
	"github.com/diewo77/pcquote/internal/metrics"
	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/search"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubRenderer struct{}

func (stubRenderer) Render(ctx context.Context, company models.CompanyInfo, doc *models.Document) ([]byte, error) {
	return []byte("%PDF-1.7 " + doc.Number), nil
}

func newTestServer(t *testing.T, upstreamURL string) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Component{}, &models.CompanyInfo{}, &models.Document{}, &models.DocumentLine{}))

	log := logrus.New()
	log.SetOutput(io.Discard)
	m := metrics.New()

	catalog := services.NewCatalogService(db)
	company := services.NewCompanyService(db)
	history := services.NewHistoryService(db)
	docs := services.NewDocumentService(history, company, stubRenderer{})
	builder := services.NewQuotationBuilder(catalog, services.QuotationDefaults{GSTRate: 18})
	searchSvc := search.NewService(search.NewClient(upstreamURL, 2*time.Second, nil), nil, time.Minute, log)

	h := New(Handlers{
		App:       handlers.NewAppHandler(db, "/opt/pcquote"),
		Catalog:   handlers.NewCatalogHandler(catalog, m, log),
		Search:    handlers.NewSearchHandler(searchSvc, search.NewLatest(0), m, log),
		Company:   handlers.NewCompanyHandler(company, log),
		Quotation: handlers.NewQuotationHandler(builder, docs, nil, "documents/", m, log),
		History:   handlers.NewHistoryHandler(history, docs, m, log),
		Metrics:   m,
		Log:       log,
		Origins:   []string{"http://localhost:5173"},
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, m
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestRouterEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"results":[{"title":"AMD Ryzen 5 7600","price":"₹18,499","link":"https://mdcomputers.in/r5"}]}`)
	}))
	defer upstream.Close()
	srv, _ := newTestServer(t, upstream.URL)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/search?query=ryzen&seller=mdcomputers", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"site":"MD Computers"`)
	assert.Contains(t, body, `"category":"CPU"`)

	resp, _ = do(t, http.MethodPut, srv.URL+"/api/quotation/customer", `{"name":"A","phone":"123"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodPut, srv.URL+"/api/quotation/settings", `{"discountRate":10}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = do(t, http.MethodPost, srv.URL+"/api/quotation/items", `{"line":{"name":"Ryzen","price":1000,"quantity":2}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Contains(t, body, `"totalAmount":2124`)

	resp, body = do(t, http.MethodPost, srv.URL+"/api/quotation/render?action=print", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "inline"))

	resp, body = do(t, http.MethodGet, srv.URL+"/api/history", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"total_amount":2124`)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/components/export.xlsx", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "PK"))
}

func TestRouterUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, "http://127.0.0.1:1")
	resp, body := do(t, http.MethodGet, srv.URL+"/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error":"not_found"`)
}

func TestRouterUpstreamDown(t *testing.T) {
	srv, _ := newTestServer(t, "http://127.0.0.1:1")
	resp, body := do(t, http.MethodGet, srv.URL+"/api/bing-search?query=keyboard", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "search_unavailable")
}

func TestRouterCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, "http://127.0.0.1:1")
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/components", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouterRecordsRouteMetrics(t *testing.T) {
	srv, _ := newTestServer(t, "http://127.0.0.1:1")
	do(t, http.MethodGet, srv.URL+"/api/components/missing-id", "")

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `route="GET /api/components/{id}",status="404"`)
}

func TestWithRecover(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := withRecover(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}
