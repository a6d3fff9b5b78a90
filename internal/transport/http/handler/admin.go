package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"heysera/internal/app"
	"heysera/internal/store"
	"heysera/internal/transport/http/response"
)

type AdminHandler struct {
	store    *store.Store
	counters app.UsageCounters
}

func NewAdminHandler(st *store.Store, counters app.UsageCounters) *AdminHandler {
	return &AdminHandler{store: st, counters: counters}
}

// Backup handles POST /api/backup: a manual point-in-time snapshot of both
// collections.
func (h *AdminHandler) Backup(c *gin.Context) {
	stamp, err := h.store.Backup()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "backup failed")
		return
	}
	if h.counters != nil {
		_ = h.counters.Add(c.Request.Context(), app.CounterBackupsTaken, 1)
	}
	response.OK(c, gin.H{"backupTimestamp": stamp})
}

// Stats handles GET /api/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	totals, err := h.counters.Totals(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read stats failed")
		return
	}
	response.OK(c, totals)
}
