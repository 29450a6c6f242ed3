package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/metrics"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/diewo77/pcquote/internal/sheets"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	svc     *services.CatalogService
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewCatalogHandler(svc *services.CatalogService, m *metrics.Metrics, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{svc: svc, metrics: m, log: log}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.svc.List(r.Context(), services.CatalogFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ComponentInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.CatalogChanged("create", 1)
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.ComponentInput
	if !decode(w, r, &in) {
		return
	}
	c, err := h.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.CatalogChanged("update", 1)
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.CatalogChanged("delete", 1)
	w.WriteHeader(http.StatusNoContent)
}

// Import accepts a JSON array (or {"components": [...]}) or a multipart
// upload of an .xlsx sheet in the "file" field.
func (h *CatalogHandler) Import(w http.ResponseWriter, r *http.Request) {
	var records []map[string]any
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		recs, ok := h.readSheet(w, r)
		if !ok {
			return
		}
		records = recs
	} else {
		var raw json.RawMessage
		if !decode(w, r, &raw) {
			return
		}
		recs, ok := importRecords(raw)
		if !ok {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_import", nil)
			return
		}
		records = recs
	}

	result, err := h.svc.Import(r.Context(), records)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.CatalogChanged("import", result.Imported)
	h.log.WithFields(logrus.Fields{"imported": result.Imported, "skipped": result.Skipped}).Info("catalog import")
	httpx.JSON(w, http.StatusOK, result)
}

func (h *CatalogHandler) readSheet(w http.ResponseWriter, r *http.Request) ([]map[string]any, bool) {
	httpx.LimitBody(w, r)
	if err := r.ParseMultipartForm(httpx.MaxBodyBytes); err != nil {
		if httpx.IsTooLarge(err) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "body_too_large", map[string]any{"max_bytes": httpx.MaxBodyBytes})
			return nil, false
		}
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return nil, false
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", map[string]string{"file": "required"})
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return nil, false
	}
	records, err := sheets.ReadRecords(data)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_sheet", err.Error())
		return nil, false
	}
	return records, true
}

func importRecords(raw json.RawMessage) ([]map[string]any, bool) {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	var wrapped struct {
		Components []map[string]any `json:"components"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Components != nil {
		return wrapped.Components, true
	}
	return nil, false
}

func (h *CatalogHandler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.All(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var buf bytes.Buffer
	if err := sheets.WriteComponents(&buf, items); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.Binary(w, sheets.ContentType, "components.xlsx", false, buf.Bytes())
}
