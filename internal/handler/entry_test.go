package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/auth"
	"github.com/sakif/dailylog/internal/handler"
	"github.com/sakif/dailylog/internal/journal"
	"github.com/sakif/dailylog/internal/model"
	"github.com/sakif/dailylog/internal/service"
)

// MockEntryService records calls and returns canned results.
type MockEntryService struct {
	Entries []model.Entry
	Err     error

	CapturedUser      string
	CapturedFilter    journal.Filter
	CapturedEntry     model.Entry
	CapturedID        string
	CapturedSync      []model.Entry
	CapturedMalformed int
	SyncResult        service.SyncResult
}

func (m *MockEntryService) List(_ context.Context, userID string, f journal.Filter) ([]model.Entry, error) {
	m.CapturedUser, m.CapturedFilter = userID, f
	return m.Entries, m.Err
}

func (m *MockEntryService) Get(_ context.Context, userID, id string) (*model.Entry, error) {
	m.CapturedUser, m.CapturedID = userID, id
	if m.Err != nil {
		return nil, m.Err
	}
	return &m.Entries[0], nil
}

func (m *MockEntryService) Create(_ context.Context, userID string, in model.Entry) (*model.Entry, error) {
	m.CapturedUser, m.CapturedEntry = userID, in
	if m.Err != nil {
		return nil, m.Err
	}
	out := in
	out.ID = "new-id"
	return &out, nil
}

func (m *MockEntryService) Update(_ context.Context, userID, id string, patch model.Entry) (*model.Entry, error) {
	m.CapturedUser, m.CapturedID, m.CapturedEntry = userID, id, patch
	if m.Err != nil {
		return nil, m.Err
	}
	out := patch
	out.ID = id
	return &out, nil
}

func (m *MockEntryService) Delete(_ context.Context, userID, id string) error {
	m.CapturedUser, m.CapturedID = userID, id
	return m.Err
}

func (m *MockEntryService) Sync(_ context.Context, userID string, c []model.Entry, malformed int) (service.SyncResult, error) {
	m.CapturedUser, m.CapturedSync, m.CapturedMalformed = userID, c, malformed
	return m.SyncResult, m.Err
}

func (m *MockEntryService) Progress(_ context.Context, userID string) (journal.Progress, error) {
	m.CapturedUser = userID
	return journal.Progress{DaysLogged: 3, TargetDays: 65, Percentage: 5}, m.Err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEntryRouter mounts the handler the way the server does, minus JWT:
// every request is pre-authenticated as "user-1".
func newEntryRouter(m *MockEntryService) http.Handler {
	h := handler.NewEntryHandler(m, testLogger())
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), "user-1")))
		})
	})
	r.Get("/api/logs", h.HandleList)
	r.Post("/api/logs", h.HandleCreate)
	r.Post("/api/logs/sync", h.HandleSync)
	r.Get("/api/logs/{id}", h.HandleGet)
	r.Put("/api/logs/{id}", h.HandleUpdate)
	r.Delete("/api/logs/{id}", h.HandleDelete)
	r.Get("/api/progress", h.HandleProgress)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestEntryHandler_List(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &MockEntryService{Entries: []model.Entry{{ID: "a", Title: "A", Category: model.CategoryNode, Content: "c", Importance: 3, Timestamp: ts}}}

	rr := do(t, newEntryRouter(m), http.MethodGet, "/api/logs?category=node&search=express", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-1", m.CapturedUser)
	assert.Equal(t, journal.Filter{Category: "node", Search: "express"}, m.CapturedFilter)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-01T10:00:00Z", got[0]["timestamp"])
	assert.Equal(t, "node", got[0]["category"])
}

func TestEntryHandler_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		m := &MockEntryService{Entries: []model.Entry{{ID: "abc"}}}
		rr := do(t, newEntryRouter(m), http.MethodGet, "/api/logs/abc", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "abc", m.CapturedID)
	})

	t.Run("not found", func(t *testing.T) {
		m := &MockEntryService{Err: apperror.NotFound("entry", "zzz")}
		rr := do(t, newEntryRouter(m), http.MethodGet, "/api/logs/zzz", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "not_found")
	})
}

func TestEntryHandler_Create(t *testing.T) {
	t.Run("created with message", func(t *testing.T) {
		m := &MockEntryService{}
		body := `{"title":"Streams","category":"node","content":"pipe()","importance":4}`

		rr := do(t, newEntryRouter(m), http.MethodPost, "/api/logs", body)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "Streams", m.CapturedEntry.Title)
		assert.Equal(t, 4, m.CapturedEntry.Importance)

		var got map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, "new-id", got["id"])
		assert.Equal(t, model.CategoryNode.Encouragement(), got["message"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		m := &MockEntryService{}
		rr := do(t, newEntryRouter(m), http.MethodPost, "/api/logs", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("two JSON objects", func(t *testing.T) {
		m := &MockEntryService{}
		rr := do(t, newEntryRouter(m), http.MethodPost, "/api/logs", `{"title":"a"}{"title":"b"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, m.CapturedUser, "service must not be called")
	})

	t.Run("validation error from service", func(t *testing.T) {
		m := &MockEntryService{Err: apperror.ValidationFailed("title", "title is required")}
		rr := do(t, newEntryRouter(m), http.MethodPost, "/api/logs", `{"content":"x"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error":"validation_error","message":"title is required","field":"title"}`, rr.Body.String())
	})
}

func TestEntryHandler_UpdateAndDelete(t *testing.T) {
	m := &MockEntryService{}
	router := newEntryRouter(m)

	rr := do(t, router, http.MethodPut, "/api/logs/e1", `{"title":"edited"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "e1", m.CapturedID)
	assert.Equal(t, "edited", m.CapturedEntry.Title)

	rr = do(t, router, http.MethodDelete, "/api/logs/e1", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	m.Err = apperror.NotFound("entry", "e1")
	rr = do(t, router, http.MethodDelete, "/api/logs/e1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEntryHandler_Sync(t *testing.T) {
	t.Run("merges and reports counts", func(t *testing.T) {
		m := &MockEntryService{SyncResult: service.SyncResult{Added: 1, Updated: 1, Skipped: 1}}
		body := `{"logs":[
			{"id":"a","title":"A","content":"c","timestamp":"2024-03-01T10:00:00+02:00"},
			{"id":"b","title":"B","content":"c","timestamp":"not a time"},
			{"id":"c","title":"C","content":"c","timestamp":"2024-03-02T10:00:00Z"}
		]}`

		rr := do(t, newEntryRouter(m), http.MethodPost, "/api/logs/sync", body)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, m.CapturedSync, 2)
		assert.Equal(t, 1, m.CapturedMalformed, "the unparseable timestamp is skipped, not fatal")
		assert.True(t, m.CapturedSync[0].Timestamp.Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)))

		var got map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, true, got["success"])
		assert.EqualValues(t, 1, got["added"])
		assert.EqualValues(t, 1, got["updated"])
		assert.EqualValues(t, 1, got["skipped"])
		assert.NotEmpty(t, got["message"])
	})

	for name, body := range map[string]string{
		"empty array":   `{"logs":[]}`,
		"missing logs":  `{}`,
		"logs not list": `{"logs":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			m := &MockEntryService{}
			rr := do(t, newEntryRouter(m), http.MethodPost, "/api/logs/sync", body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Nil(t, m.CapturedSync, "service must not be called")
		})
	}
}

func TestEntryHandler_Progress(t *testing.T) {
	rr := do(t, newEntryRouter(&MockEntryService{}), http.MethodGet, "/api/progress", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"daysLogged":3,"targetDays":65,"percentage":5}`, rr.Body.String())
}

func TestEntryHandler_NoUserInContext(t *testing.T) {
	h := handler.NewEntryHandler(&MockEntryService{}, testLogger())

	rr := httptest.NewRecorder()
	h.HandleList(rr, httptest.NewRequest(http.MethodGet, "/api/logs", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
