package handlers

import (
	"bytes"
	"net/http"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/metrics"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/diewo77/pcquote/internal/sheets"
	"github.com/sirupsen/logrus"
)

type HistoryHandler struct {
	history *services.HistoryService
	docs    *services.DocumentService
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewHistoryHandler(history *services.HistoryService, docs *services.DocumentService, m *metrics.Metrics, log logrus.FieldLogger) *HistoryHandler {
	return &HistoryHandler{history: history, docs: docs, metrics: m, log: log}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs, err := h.history.List(r.Context(), services.HistoryFilter{Query: q.Get("q"), Type: q.Get("type")})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.history.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PDF serves the stored payload inline, or as an attachment with download=1.
func (h *HistoryHandler) PDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.history.Payload(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	inline := !isTrue(r.URL.Query().Get("download"))
	httpx.Binary(w, pdfContentType, doc.FileName(), inline, doc.Payload)
}

// Create stores a document finalized by another client.
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec services.ExternalRecord
	if !decode(w, r, &rec) {
		return
	}
	doc, err := h.docs.SaveExternal(r.Context(), rec)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.DocumentRendered(string(doc.Type), "external")
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs, err := h.history.List(r.Context(), services.HistoryFilter{Query: q.Get("q"), Type: q.Get("type")})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	var buf bytes.Buffer
	if err := sheets.WriteDocuments(&buf, docs); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.Binary(w, sheets.ContentType, "history.xlsx", false, buf.Bytes())
}
