package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/auth"
	"github.com/sakif/dailylog/internal/journal"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/service"
)

// EntryService is the business logic EntryHandler needs.
// *service.EntryService implements it; tests pass a fake.
type EntryService interface {
	List(ctx context.Context, userID string, f journal.Filter) ([]model.Entry, error)
	Get(ctx context.Context, userID, id string) (*model.Entry, error)
	Create(ctx context.Context, userID string, in model.Entry) (*model.Entry, error)
	Update(ctx context.Context, userID, id string, patch model.Entry) (*model.Entry, error)
	Delete(ctx context.Context, userID, id string) error
	Sync(ctx context.Context, userID string, candidates []model.Entry, malformed int) (service.SyncResult, error)
	Progress(ctx context.Context, userID string) (journal.Progress, error)
}

var _ EntryService = (*service.EntryService)(nil)

// EntryHandler serves the /api/logs and /api/progress endpoints.
//
// Every route sits behind auth.RequireAuth, so the user ID is always in the
// request context. All operations are scoped to that user.
type EntryHandler struct {
	entries EntryService
	logger  *slog.Logger
}

func NewEntryHandler(entries EntryService, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, logger: logger}
}

// userID reads the authenticated user. A missing ID means the route was
// mounted without RequireAuth.
func userID(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperror.Unauthorized("valid authentication required")
	}
	return id, nil
}

// HandleList returns the user's entries, newest first.
//
// HTTP: GET /api/logs?category=node&search=express
//
// category "" or "all" and an empty search both mean "no filter".
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	entries, err := h.entries.List(r.Context(), uid, journal.Filter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleGet returns a single entry.
//
// HTTP: GET /api/logs/{id}
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.entries.Get(r.Context(), uid, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// createResponse is the created entry plus an encouragement message.
// Embedding model.Entry flattens its fields into the same JSON object.
type createResponse struct {
	model.Entry
	Message string `json:"message"`
}

// HandleCreate stores a new entry and schedules its email notification.
//
// HTTP: POST /api/logs
// REQUEST BODY: {"title":"...","category":"node","content":"...","importance":4}
//
// "id" and "timestamp" are optional; an offline client sends the provisional
// values it already showed the user.
func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in model.Entry
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.entries.Create(r.Context(), uid, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, createResponse{
		Entry:   *entry,
		Message: entry.Category.Encouragement(),
	})
}

// HandleUpdate edits an entry.
//
// HTTP: PUT /api/logs/{id}
//
// Omitted fields are left unchanged. An "id" in the body is ignored; the
// path decides which entry is edited.
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch model.Entry
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.entries.Update(r.Context(), uid, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete removes an entry.
//
// HTTP: DELETE /api/logs/{id} → 204 No Content
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.entries.Delete(r.Context(), uid, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// syncRequest keeps every item raw so that one bad item can be skipped
// without rejecting the whole batch.
type syncRequest struct {
	Logs []json.RawMessage `json:"logs"`
}

type syncResponse struct {
	Success bool   `json:"success"`
	Added   int    `json:"added"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

// HandleSync merges an offline client's cached entries.
//
// HTTP: POST /api/logs/sync
// REQUEST BODY: {"logs":[{"id":"...","title":"...","timestamp":"2024-03-01T10:00:00Z",...}]}
//
// Items that fail to decode (wrong types, unparseable timestamp) are counted
// as skipped. A missing or empty "logs" array is a 400.
func (h *EntryHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req syncRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Logs) == 0 {
		writeError(w, apperror.ValidationFailed("logs", "logs array is required and must not be empty"))
		return
	}

	candidates, malformed := service.DecodeCandidates(req.Logs)
	if malformed > 0 {
		h.logger.Warn("sync: malformed items skipped",
			slog.String("userID", uid),
			slog.Int("count", malformed),
		)
	}

	res, err := h.entries.Sync(r.Context(), uid, candidates, malformed)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success: true,
		Added:   res.Added,
		Updated: res.Updated,
		Skipped: res.Skipped,
		Message: res.Message(),
	})
}

// HandleProgress returns the course progress statistics.
//
// HTTP: GET /api/progress → {"daysLogged":3,"targetDays":65,"percentage":5}
func (h *EntryHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := h.entries.Progress(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}
