package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/dailylog/internal/service"
)

// SystemService is the operational surface SystemHandler needs.
type SystemService interface {
	Status() service.Status
	Health(ctx context.Context) error
	Categories() []service.CategoryInfo
	SendTestEmail(ctx context.Context) error
}

var _ SystemService = (*service.SystemService)(nil)

// SystemHandler serves status, health, category and test-email endpoints.
type SystemHandler struct {
	svc    SystemService
	logger *slog.Logger
}

func NewSystemHandler(svc SystemService, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{svc: svc, logger: logger}
}

// HandleStatus reports environment, storage and email configuration.
//
// HTTP: GET /api/status
func (h *SystemHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// HandleHealth reports liveness.
//
// HTTP: GET /healthz → 200 {"status":"ok"} or 503
func (h *SystemHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.logger.Error("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCategories lists the known categories with display names.
//
// HTTP: GET /api/categories
func (h *SystemHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Categories())
}

// HandleTestEmail sends a test notification synchronously.
//
// HTTP: GET /api/test-email (RequireAuth) → 200, 400 when email is disabled
func (h *SystemHandler) HandleTestEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SendTestEmail(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Test email sent successfully"})
}
