package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"heysera/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check handles GET /api/health: liveness, store counts, and the status of
// whichever optional dependencies are enabled.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sessions, documents, err := h.app.Store.Counts()
	storeStatus := dependencyStatus{OK: err == nil}
	if err != nil {
		storeStatus.Message = err.Error()
	}

	deps := gin.H{"store": storeStatus}
	allOK := storeStatus.OK
	if h.app.Redis != nil {
		st := h.checkRedis(ctx)
		deps["redis"] = st
		allOK = allOK && st.OK
	}
	if h.app.MQConn != nil {
		st := h.checkRabbitMQ()
		deps["rabbitmq"] = st
		allOK = allOK && st.OK
	}

	statusCode := http.StatusOK
	status := "healthy"
	if !allOK {
		statusCode = http.StatusServiceUnavailable
		status = "degraded"
	}

	c.JSON(statusCode, gin.H{
		"status":            status,
		"service":           h.app.Config.App.Name,
		"env":               h.app.Config.App.Env,
		"uptimeSec":         int(time.Since(h.app.StartedAt).Seconds()),
		"activeSessions":    sessions,
		"uploadedDocuments": documents,
		"timestamp":         time.Now(),
		"dependencies":      deps,
	})
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn.IsClosed() {
		return dependencyStatus{OK: false, Message: "connection closed"}
	}
	return dependencyStatus{OK: true}
}
