// Package workout manages saved workout sessions and the pending-exercise
// staging slot used while composing one.
package workout

import (
	"context"
	"log/slog"
	"sync"

	"github.com/meltforce/nextrep/internal/models"
	"github.com/meltforce/nextrep/internal/observe"
	"github.com/meltforce/nextrep/internal/storage"
)

// Manager holds the session collection plus the staging area bridging the
// two-step "create session, pick exercises, return and save" flow. It shares
// the catalog manager's contract: in-memory state is updated synchronously,
// store writes are queued, subscribers see snapshots in mutation order.
type Manager struct {
	store *storage.DB
	log   *slog.Logger

	mu       sync.Mutex
	sessions []models.Session // insertion order
	pending  []models.Exercise
	nextID   int

	hub *observe.Hub[[]models.Session]

	writes chan func(context.Context)
	done   chan struct{}
}

// NewManager loads sessions from the store and starts the persistence worker.
func NewManager(ctx context.Context, store *storage.DB, log *slog.Logger) (*Manager, error) {
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	maxID, err := store.MaxSessionID(ctx)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:    store,
		log:      log,
		sessions: sessions,
		nextID:   maxID + 1,
		hub:      observe.NewHub[[]models.Session](),
		writes:   make(chan func(context.Context), 64),
		done:     make(chan struct{}),
	}
	m.hub.Publish(m.List())
	go m.worker()
	return m, nil
}

func (m *Manager) worker() {
	defer close(m.done)
	ctx := context.Background()
	for write := range m.writes {
		write(ctx)
	}
}

// Close drains pending writes and stops the worker.
func (m *Manager) Close() {
	close(m.writes)
	<-m.done
	m.hub.Close()
}

// List returns the session collection in creation order.
func (m *Manager) List() []models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Create assigns a fresh id, stores the session with its exercise
// associations, clears the pending staging slot, and returns the created
// session.
func (m *Manager) Create(name, date string, exercises []models.Exercise) models.Session {
	m.mu.Lock()
	s := models.Session{
		ID:        m.nextID,
		Name:      name,
		Date:      date,
		Exercises: exercises,
	}
	m.nextID++
	m.sessions = append(m.sessions, s)
	m.pending = nil
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.hub.Publish(snap)
	m.writes <- func(ctx context.Context) {
		if err := m.store.InsertSession(ctx, s); err != nil {
			m.log.Error("persisting session failed", "id", s.ID, "error", err)
		}
	}
	return s
}

// StagePending overwrites the pending exercise selection.
func (m *Manager) StagePending(exercises []models.Exercise) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = make([]models.Exercise, len(exercises))
	copy(m.pending, exercises)
}

// Pending returns the currently staged exercise selection.
func (m *Manager) Pending() []models.Exercise {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Exercise, len(m.pending))
	copy(out, m.pending)
	return out
}

// Delete removes a session if present; a no-op otherwise. Recorded history
// keeps its session snapshots.
func (m *Manager) Delete(id int) {
	m.mu.Lock()
	found := false
	for i, s := range m.sessions {
		if s.ID == id {
			m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)
			found = true
			break
		}
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if !found {
		return
	}
	m.hub.Publish(snap)
	m.writes <- func(ctx context.Context) {
		if err := m.store.DeleteSession(ctx, id); err != nil {
			m.log.Error("deleting session failed", "id", id, "error", err)
		}
	}
}

// FindByID returns the matching session, or false when absent.
func (m *Manager) FindByID(id int) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return models.Session{}, false
}

// Watch subscribes to session snapshots. The current snapshot is delivered
// first.
func (m *Manager) Watch() (<-chan []models.Session, func()) {
	return m.hub.Subscribe()
}

func (m *Manager) snapshotLocked() []models.Session {
	snap := make([]models.Session, len(m.sessions))
	copy(snap, m.sessions)
	return snap
}
