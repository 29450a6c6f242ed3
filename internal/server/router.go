// Package server assembles the HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/handlers"
	"github.com/diewo77/pcquote/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Handlers is everything the router dispatches to.
type Handlers struct {
	App       *handlers.AppHandler
	Catalog   *handlers.CatalogHandler
	Search    *handlers.SearchHandler
	Company   *handlers.CompanyHandler
	Quotation *handlers.QuotationHandler
	History   *handlers.HistoryHandler

	Metrics *metrics.Metrics
	Log     logrus.FieldLogger
	Origins []string
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.App.Health)
	mux.HandleFunc("GET /api/app/install-path", h.App.InstallPath)

	// Catalog
	mux.HandleFunc("GET /api/components", h.Catalog.List)
	mux.HandleFunc("POST /api/components", h.Catalog.Create)
	mux.HandleFunc("POST /api/components/import", h.Catalog.Import)
	mux.HandleFunc("GET /api/components/export.xlsx", h.Catalog.Export)
	mux.HandleFunc("GET /api/components/{id}", h.Catalog.Get)
	mux.HandleFunc("PUT /api/components/{id}", h.Catalog.Update)
	mux.HandleFunc("DELETE /api/components/{id}", h.Catalog.Delete)

	// Search proxy
	mux.HandleFunc("GET /api/search", h.Search.Search)
	mux.HandleFunc("GET /api/bing-search", h.Search.BingSearch)

	// Company
	mux.HandleFunc("GET /api/company", h.Company.Get)
	mux.HandleFunc("PUT /api/company", h.Company.Update)
	mux.HandleFunc("POST /api/company", h.Company.Update)

	// Quotation session
	q := h.Quotation
	mux.HandleFunc("GET /api/quotation", q.State)
	mux.HandleFunc("DELETE /api/quotation", q.Reset)
	mux.HandleFunc("PUT /api/quotation/customer", q.SetCustomer)
	mux.HandleFunc("PUT /api/quotation/settings", q.UpdateSettings)
	mux.HandleFunc("POST /api/quotation/items", q.AddItem)
	mux.HandleFunc("PATCH /api/quotation/items/{id}", q.UpdateItem)
	mux.HandleFunc("DELETE /api/quotation/items/{id}", q.RemoveItem)
	mux.HandleFunc("POST /api/quotation/totals", q.Totals)
	mux.HandleFunc("GET /api/quotation/preview", q.Preview)
	mux.HandleFunc("POST /api/quotation/render", q.Render)

	// History
	mux.HandleFunc("GET /api/history", h.History.List)
	mux.HandleFunc("POST /api/history", h.History.Create)
	mux.HandleFunc("GET /api/history/export.xlsx", h.History.Export)
	mux.HandleFunc("GET /api/history/{id}", h.History.Get)
	mux.HandleFunc("DELETE /api/history/{id}", h.History.Delete)
	mux.HandleFunc("GET /api/history/{id}/pdf", h.History.PDF)

	mux.Handle("GET /metrics", h.Metrics.Handler())

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})

	return withRecover(h.Log, withLogging(h.Log, h.Metrics, httpx.CORS(h.Origins)(mux)))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request with the pattern the mux matched.
func withLogging(log logrus.FieldLogger, m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		m.ObserveRequest(r.Method, r.Pattern, rec.status, elapsed)
		entry := log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"route":    r.Pattern,
			"status":   rec.status,
			"duration": elapsed.String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Debug("request")
	})
}

func withRecover(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(logrus.Fields{"panic": rec, "path": r.URL.Path}).Error("recovered from panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
