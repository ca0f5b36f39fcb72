package server

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/meltforce/nextrep/internal/tracker"
)

// liveWorkout is one active tracker plus its elapsed-time ticker.
type liveWorkout struct {
	ID      uuid.UUID
	Tracker *tracker.Tracker
	Timer   *tracker.Timer
}

// liveRegistry tracks in-flight workouts by handle. Finished workouts are
// removed; their trackers are discarded, not reused.
type liveRegistry struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*liveWorkout
}

func newLiveRegistry() *liveRegistry {
	return &liveRegistry{byID: make(map[uuid.UUID]*liveWorkout)}
}

func (r *liveRegistry) start(t *tracker.Tracker) *liveWorkout {
	lw := &liveWorkout{
		ID:      uuid.New(),
		Tracker: t,
		Timer:   tracker.StartTimer(context.Background()),
	}
	r.mu.Lock()
	r.byID[lw.ID] = lw
	r.mu.Unlock()
	return lw
}

func (r *liveRegistry) get(id uuid.UUID) (*liveWorkout, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lw, ok := r.byID[id]
	return lw, ok
}

func (r *liveRegistry) remove(id uuid.UUID) {
	r.mu.Lock()
	lw, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if ok {
		lw.Timer.Stop()
	}
}
