package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/pcquote/httpx"
	"gorm.io/gorm"
)

// AppHandler answers the desktop shell's queries.
type AppHandler struct {
	db          *gorm.DB
	installPath string
	now         func() time.Time
}

func NewAppHandler(db *gorm.DB, installPath string) *AppHandler {
	return &AppHandler{db: db, installPath: installPath, now: time.Now}
}

// Health reports ok once the database answers.
func (h *AppHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	httpx.JSON(w, code, map[string]any{
		"status":    status,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *AppHandler) InstallPath(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"path": h.installPath})
}
