// Package catalog manages the exercise catalog: an in-memory snapshot the UI
// layer reads synchronously, backed by queued writes to the store.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/meltforce/nextrep/internal/models"
	"github.com/meltforce/nextrep/internal/observe"
	"github.com/meltforce/nextrep/internal/storage"
)

// Manager holds the exercise collection. Mutations update the in-memory
// state immediately (so callers get the assigned id back) and queue the
// store write; callers must not assume the write is durable on return, only
// that it has been queued. Every mutation publishes a fresh snapshot to
// subscribers in the order mutations were applied.
type Manager struct {
	store *storage.DB
	log   *slog.Logger

	mu        sync.Mutex
	exercises []models.Exercise // sorted by name asc
	nextID    int

	hub *observe.Hub[[]models.Exercise]

	writes chan func(context.Context)
	done   chan struct{}
}

// NewManager loads the catalog from the store and starts the persistence
// worker.
func NewManager(ctx context.Context, store *storage.DB, log *slog.Logger) (*Manager, error) {
	exercises, err := store.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	maxID, err := store.MaxExerciseID(ctx)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		store:     store,
		log:       log,
		exercises: exercises,
		nextID:    maxID + 1,
		hub:       observe.NewHub[[]models.Exercise](),
		writes:    make(chan func(context.Context), 64),
		done:      make(chan struct{}),
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

// List returns the current exercise collection, ordered by name ascending.
func (m *Manager) List() []models.Exercise {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Add validates, assigns a fresh id, and appends a new exercise. A blank
// name is a silent skip: the zero Exercise and false are returned and
// nothing changes.
func (m *Manager) Add(name, description string, series, repetitions int, photoURI string) (models.Exercise, bool) {
	if strings.TrimSpace(name) == "" {
		return models.Exercise{}, false
	}

	m.mu.Lock()
	ex := models.Exercise{
		ID:          m.nextID,
		Name:        name,
		Description: description,
		Series:      series,
		Repetitions: repetitions,
		PhotoURI:    photoURI,
	}
	m.nextID++
	m.exercises = append(m.exercises, ex)
	sort.SliceStable(m.exercises, func(i, j int) bool {
		return m.exercises[i].Name < m.exercises[j].Name
	})
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.hub.Publish(snap)
	m.writes <- func(ctx context.Context) {
		if err := m.store.InsertExercise(ctx, ex); err != nil {
			m.log.Error("persisting exercise failed", "id", ex.ID, "error", err)
		}
	}
	return ex, true
}

// Delete removes an exercise if present; a no-op otherwise. History records
// referencing the exercise keep their name snapshots.
func (m *Manager) Delete(id int) {
	m.mu.Lock()
	found := false
	for i, ex := range m.exercises {
		if ex.ID == id {
			m.exercises = append(m.exercises[:i], m.exercises[i+1:]...)
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
		if err := m.store.DeleteExercise(ctx, id); err != nil {
			m.log.Error("deleting exercise failed", "id", id, "error", err)
		}
	}
}

// FindByID returns the matching exercise, or false when absent.
func (m *Manager) FindByID(id int) (models.Exercise, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.exercises {
		if ex.ID == id {
			return ex, true
		}
	}
	return models.Exercise{}, false
}

// Watch subscribes to catalog snapshots. The current snapshot is delivered
// first.
func (m *Manager) Watch() (<-chan []models.Exercise, func()) {
	return m.hub.Subscribe()
}

func (m *Manager) snapshotLocked() []models.Exercise {
	snap := make([]models.Exercise, len(m.exercises))
	copy(snap, m.exercises)
	return snap
}
