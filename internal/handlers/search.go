package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/metrics"
	"github.com/diewo77/pcquote/internal/search"
	"github.com/sirupsen/logrus"
)

type SearchHandler struct {
	svc     *search.Service
	live    *search.Latest
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewSearchHandler(svc *search.Service, live *search.Latest, m *metrics.Metrics, log logrus.FieldLogger) *SearchHandler {
	return &SearchHandler{svc: svc, live: live, metrics: m, log: log}
}

// Search serves every scope. With live=1 the call is debounced and cancelled
// by the next live call.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	scope, err := search.ParseScope(r.URL.Query().Get("seller"))
	if err != nil {
		h.metrics.Searched("invalid", "invalid_seller")
		writeError(w, h.log, err)
		return
	}
	h.serve(w, r, scope)
}

// BingSearch is the web-shopping scope on its own route.
func (h *SearchHandler) BingSearch(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, search.ScopeWeb)
}

func (h *SearchHandler) serve(w http.ResponseWriter, r *http.Request, scope search.Scope) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	req := search.Request{Query: q.Get("query"), Scope: scope, Limit: limit}
	if req.Query == "" {
		req.Query = q.Get("q")
	}

	var res *search.Result
	run := func(ctx context.Context) error {
		var err error
		res, err = h.svc.Search(ctx, req)
		return err
	}
	var err error
	if isTrue(q.Get("live")) && h.live != nil {
		err = h.live.Do(r.Context(), run)
	} else {
		err = run(r.Context())
	}

	h.metrics.Searched(string(scope), outcome(err))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, search.ErrSuperseded):
		return "superseded"
	case errors.Is(err, search.ErrNoResults):
		return "no_results"
	case errors.Is(err, search.ErrQueryTooShort):
		return "query_too_short"
	default:
		return "error"
	}
}

func isTrue(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
