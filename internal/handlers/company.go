package handlers

import (
	"net/http"

	"github.com/diewo77/pcquote/httpx"
	"github.com/diewo77/pcquote/internal/services"
	"github.com/sirupsen/logrus"
)

type CompanyHandler struct {
	svc *services.CompanyService
	log logrus.FieldLogger
}

func NewCompanyHandler(svc *services.CompanyService, log logrus.FieldLogger) *CompanyHandler {
	return &CompanyHandler{svc: svc, log: log}
}

// Get returns the saved company, or the defaults on a fresh install.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.Get(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}

// Update replaces the company settings.
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in services.CompanyInput
	if !decode(w, r, &in) {
		return
	}
	info, err := h.svc.Save(r.Context(), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, info)
}
