package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// RootHandler serves the API banner.
type RootHandler struct {
	baseHandler
}

func NewRootHandler(adapter *httpcontext.Adapter, logger *zap.Logger) *RootHandler {
	return &RootHandler{baseHandler: newBaseHandler(adapter, logger)}
}

// @Summary API banner
// @Router /api/ [get]
func (h *RootHandler) Index(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{Message: "Task Manager API"})
}

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := transport.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]transport.DependencyStatus, len(status.Services)),
	}
	for name, svc := range status.Services {
		payload.Services[name] = transport.DependencyStatus{
			Healthy:   svc.Healthy,
			Error:     svc.Error,
			CheckedAt: svc.CheckedAt,
		}
	}

	if status.Healthy() {
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}
	payload.Status = "degraded"
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
