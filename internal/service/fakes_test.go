package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/dailylog/internal/apperror"
	"github.com/sakif/dailylog/internal/model"
)

// =========================================================================
// FAKES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// Each stores copies, never the caller's pointers, so a test cannot change
// "stored" data by accident.

type fakeEntryRepo struct {
	entries map[string]map[string]model.Entry // userID → id → entry

	writeAllCalls [][]model.Entry
	readErr       error
	writeErr      error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]map[string]model.Entry)}
}

func (f *fakeEntryRepo) coll(userID string) map[string]model.Entry {
	c, ok := f.entries[userID]
	if !ok {
		c = make(map[string]model.Entry)
		f.entries[userID] = c
	}
	return c
}

func (f *fakeEntryRepo) seed(userID string, es ...model.Entry) {
	for _, e := range es {
		f.coll(userID)[e.ID] = e
	}
}

func (f *fakeEntryRepo) ReadAll(_ context.Context, userID string) ([]model.Entry, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := []model.Entry{}
	for _, e := range f.coll(userID) {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (f *fakeEntryRepo) WriteAll(_ context.Context, userID string, entries []model.Entry) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writeAllCalls = append(f.writeAllCalls, append([]model.Entry(nil), entries...))
	for _, e := range entries {
		f.coll(userID)[e.ID] = e
	}
	return nil
}

func (f *fakeEntryRepo) GetByID(_ context.Context, userID, id string) (*model.Entry, error) {
	e, ok := f.coll(userID)[id]
	if !ok {
		return nil, apperror.NotFound("entry", id)
	}
	return &e, nil
}

func (f *fakeEntryRepo) Create(_ context.Context, userID string, e *model.Entry) error {
	if _, ok := f.coll(userID)[e.ID]; ok {
		return apperror.Conflict("entry", e.ID)
	}
	f.coll(userID)[e.ID] = *e
	return nil
}

func (f *fakeEntryRepo) Upsert(_ context.Context, userID string, e *model.Entry) error {
	f.coll(userID)[e.ID] = *e
	return nil
}

func (f *fakeEntryRepo) Update(_ context.Context, userID string, e *model.Entry) error {
	if _, ok := f.coll(userID)[e.ID]; !ok {
		return apperror.NotFound("entry", e.ID)
	}
	f.coll(userID)[e.ID] = *e
	return nil
}

func (f *fakeEntryRepo) Delete(_ context.Context, userID, id string) error {
	if _, ok := f.coll(userID)[id]; !ok {
		return apperror.NotFound("entry", id)
	}
	delete(f.coll(userID), id)
	return nil
}

// fakeQueue records enqueued entries.
type fakeQueue struct {
	mu       sync.Mutex
	enqueued []model.Entry
}

func (q *fakeQueue) Enqueue(e model.Entry) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, e)
	return true
}

func (q *fakeQueue) ids() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.enqueued))
	for i, e := range q.enqueued {
		out[i] = e.ID
	}
	return out
}

type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int

	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if u.Email != "" && existing.Email == u.Email {
			return apperror.Conflict("user", u.Email)
		}
	}
	f.nextID++
	u.ID = "user-" + string(rune('0'+f.nextID))
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) UpsertGitHub(ctx context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.GitHubID == u.GitHubID {
			existing.Name = u.Name
			existing.Email = u.Email
			existing.AvatarURL = u.AvatarURL
			*u = *existing
			return nil
		}
	}
	return f.CreateUser(ctx, u)
}

type fakeStore struct{ pingErr error }

func (fakeStore) StorageType() string          { return "in-memory" }
func (s fakeStore) Ping(context.Context) error { return s.pingErr }

type fakeNotifier struct {
	enabled bool
	err     error
	tests   int
}

func (n *fakeNotifier) NotifyEntry(context.Context, model.Entry) error { return nil }
func (n *fakeNotifier) SendTest(context.Context) error {
	n.tests++
	return n.err
}
func (n *fakeNotifier) Enabled() bool { return n.enabled }

var errDB = errors.New("database is locked")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
