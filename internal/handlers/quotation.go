package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/metrics"
	"github.com/diewo77/pcquote/internal/models"
	"github.com/diewo77/pcquote/internal/pricing"
	"github.com/diewo77/pcquote/internal/render"
	"github.com/diewo77/pcquote/internal/search"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/diewo77/pcquote/internal/share"
	"github.com/diewo77/pcquote/validation"
	"github.com/diewo77/pcquote/view"
	"github.com/sirupsen/logrus"
)

const pdfContentType = "application/pdf"

// Render actions.
const (
	ActionDownload = "download"
	ActionPrint    = "print"
	ActionShare    = "share"
)

type QuotationHandler struct {
	builder     *services.QuotationBuilder
	docs        *services.DocumentService
	sharer      share.Sharer
	sharePrefix string
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
}

func NewQuotationHandler(
	builder *services.QuotationBuilder,
	docs *services.DocumentService,
	sharer share.Sharer,
	sharePrefix string,
	m *metrics.Metrics,
	log logrus.FieldLogger,
) *QuotationHandler {
	if sharer == nil {
		sharer = share.Disabled{}
	}
	return &QuotationHandler{builder: builder, docs: docs, sharer: sharer, sharePrefix: sharePrefix, metrics: m, log: log}
}

func (h *QuotationHandler) State(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.builder.State())
}

func (h *QuotationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.builder.Reset())
}

func (h *QuotationHandler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if !decode(w, r, &c) {
		return
	}
	httpx.JSON(w, http.StatusOK, h.builder.SetCustomer(c))
}

func (h *QuotationHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in services.SettingsInput
	if !decode(w, r, &in) {
		return
	}
	state, err := h.builder.UpdateSettings(in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

// addItemRequest adds a catalog component by id, a search product, or a
// manual line. Exactly one of them is expected.
type addItemRequest struct {
	ComponentID string          `json:"componentId"`
	Quantity    int             `json:"quantity"`
	Product     *search.Product `json:"product"`
	Line        *models.Line    `json:"line"`
}

func (h *QuotationHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}

	var (
		state services.QuotationState
		err   error
	)
	switch {
	case req.ComponentID != "":
		state, err = h.builder.AddFromCatalog(r.Context(), req.ComponentID, req.Quantity)
	case req.Product != nil:
		l := req.Product.Line()
		if req.Quantity > 0 {
			l.Quantity = req.Quantity
		}
		state, err = h.builder.AddLine(l)
	case req.Line != nil:
		l := *req.Line
		l.Source = models.LineSourceManual
		state, err = h.builder.AddLine(l)
	default:
		err = validation.Violations{"componentId": "required"}
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, state)
}

func (h *QuotationHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var p services.LinePatch
	if !decode(w, r, &p) {
		return
	}
	state, err := h.builder.UpdateLine(r.PathValue("id"), p)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *QuotationHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	state, err := h.builder.RemoveLine(r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

// totalsRequest is a client-held snapshot. A missing gstRate means the
// default rate, as for external saves.
type totalsRequest struct {
	services.Snapshot
	GSTRate *float64 `json:"gstRate"`
}

// Totals prices a snapshot held by the client without touching the session.
func (h *QuotationHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var req totalsRequest
	if !decode(w, r, &req) {
		return
	}
	snap := req.Snapshot
	snap.GSTRate = pricing.DefaultGSTRate
	if req.GSTRate != nil {
		snap.GSTRate = *req.GSTRate
	}
	v := validation.Violations{}
	validation.RangeFloat("discountRate", snap.DiscountRate, 0, 100, v)
	validation.RangeFloat("gstRate", snap.GSTRate, 0, 100, v)
	if !v.Empty() {
		writeError(w, h.log, v)
		return
	}
	for i := range snap.Lines {
		snap.Lines[i].Sanitize()
	}
	snap.Type = models.ParseDocumentType(string(snap.Type))
	httpx.JSON(w, http.StatusOK, services.StateOf(snap))
}

// Preview renders the current quotation as HTML. print=1 opens the print
// dialog once the page has loaded.
func (h *QuotationHandler) Preview(w http.ResponseWriter, r *http.Request) {
	doc, company, err := h.docs.Preview(r.Context(), h.builder.Snapshot())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	data := map[string]any{
		"View":  render.NewView(*company, doc, render.SymbolHTML),
		"Logo":  render.LogoDataURI(company.Logo),
		"Print": isTrue(r.URL.Query().Get("print")),
	}
	var buf bytes.Buffer
	if err := view.Render(&buf, "preview.html", data); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Render finalizes the quotation and stores it in history, then delivers it
// according to action.
func (h *QuotationHandler) Render(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		action = ActionDownload
	}
	switch action {
	case ActionDownload, ActionPrint, ActionShare:
	default:
		httpx.JSONError(w, http.StatusBadRequest, "invalid_action", map[string]any{
			"allowed": []string{ActionDownload, ActionPrint, ActionShare},
		})
		return
	}

	doc, err := h.docs.Finalize(r.Context(), h.builder.Snapshot())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	h.metrics.DocumentRendered(string(doc.Type), action)
	h.log.WithFields(logrus.Fields{"number": doc.Number, "action": action, "bytes": len(doc.Payload)}).Info("document rendered")

	switch action {
	case ActionPrint:
		httpx.Binary(w, pdfContentType, doc.FileName(), true, doc.Payload)
	case ActionShare:
		h.share(w, r, doc)
	default:
		httpx.Binary(w, pdfContentType, doc.FileName(), false, doc.Payload)
	}
}

type shareResponse struct {
	Document    *models.Document `json:"document"`
	Shared      bool             `json:"shared"`
	Link        *share.Link      `json:"link,omitempty"`
	Instruction string           `json:"instruction,omitempty"`
	DownloadURL string           `json:"download_url"`
}

func (h *QuotationHandler) share(w http.ResponseWriter, r *http.Request, doc *models.Document) {
	resp := shareResponse{Document: doc, DownloadURL: "/api/history/" + doc.ID + "/pdf?download=1"}
	link, err := h.sharer.Share(r.Context(), share.ObjectKey(h.sharePrefix, doc.FileName()), pdfContentType, doc.Payload)
	if err != nil {
		if !errors.Is(err, share.ErrUnavailable) {
			h.log.WithError(err).WithField("number", doc.Number).Warn("share failed, falling back to download")
		}
		resp.Instruction = share.FallbackInstruction
		httpx.JSON(w, http.StatusOK, resp)
		return
	}
	resp.Shared = true
	resp.Link = link
	httpx.JSON(w, http.StatusOK, resp)
}
