// Package history reads and groups the append-only workout set records.
package history

import (
	"context"
	"log/slog"
	"sort"

	"github.com/meltforce/nextrep/internal/models"
	"github.com/meltforce/nextrep/internal/storage"
)

// RunKey identifies one workout instance. Two records belong to the same run
// iff all four components match exactly.
type RunKey struct {
	SessionID   int    `json:"session_id"`
	SessionName string `json:"session_name"`
	SessionDate string `json:"session_date"`
	Timestamp   int64  `json:"timestamp"`
}

// Run is one workout instance: the records sharing a RunKey, sorted by set
// index for display.
type Run struct {
	Key  RunKey                    `json:"key"`
	Sets []models.WorkoutSetRecord `json:"sets"`
}

// Aggregator persists finished workouts and serves grouped history views.
type Aggregator struct {
	store *storage.DB
	log   *slog.Logger
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store *storage.DB, log *slog.Logger) *Aggregator {
	return &Aggregator{store: store, log: log}
}

// SaveSets persists the records emitted by a finished workout. An empty
// batch is a no-op.
func (a *Aggregator) SaveSets(ctx context.Context, recs []models.WorkoutSetRecord) (int64, error) {
	return a.store.InsertWorkoutSets(ctx, recs)
}

// HistoryForExercise returns all records for an exercise ordered by
// timestamp descending, session date descending, set index ascending.
func (a *Aggregator) HistoryForExercise(ctx context.Context, exerciseID int) ([]models.WorkoutSetRecord, error) {
	return a.store.SetsForExercise(ctx, exerciseID)
}

// RunsForExercise returns the exercise's history grouped into runs, most
// recent first.
func (a *Aggregator) RunsForExercise(ctx context.Context, exerciseID int) ([]Run, error) {
	recs, err := a.HistoryForExercise(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	return GroupByRun(recs), nil
}

// RecentRuns returns the latest recorded runs across all exercises, built
// from at most limit records.
func (a *Aggregator) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	recs, err := a.store.RecentWorkoutSets(ctx, limit)
	if err != nil {
		return nil, err
	}
	return GroupByRun(recs), nil
}

// Watch emits the grouped history for an exercise, then re-emits it after
// every change to the recorded sets, until ctx is cancelled. The channel is
// closed on teardown.
func (a *Aggregator) Watch(ctx context.Context, exerciseID int) <-chan []Run {
	out := make(chan []Run, 1)
	changes, cancel := a.store.Watch(storage.TopicWorkoutSets)

	go func() {
		defer close(out)
		defer cancel()

		send := func() {
			runs, err := a.RunsForExercise(ctx, exerciseID)
			if err != nil {
				a.log.Error("history refresh failed", "exercise_id", exerciseID, "error", err)
				return
			}
			// Keep only the freshest view pending.
			select {
			case out <- runs:
			default:
				select {
				case <-out:
				default:
				}
				select {
				case out <- runs:
				default:
				}
			}
		}

		send()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				send()
			}
		}
	}()
	return out
}

// GroupByRun partitions records into workout runs. Within each run, sets are
// re-sorted by set index ascending; runs are ordered most recent first.
func GroupByRun(recs []models.WorkoutSetRecord) []Run {
	var order []RunKey
	byKey := make(map[RunKey][]models.WorkoutSetRecord)

	for _, r := range recs {
		key := RunKey{
			SessionID:   r.SessionID,
			SessionName: r.SessionName,
			SessionDate: r.SessionDate,
			Timestamp:   r.Timestamp,
		}
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], r)
	}

	runs := make([]Run, 0, len(order))
	for _, key := range order {
		sets := byKey[key]
		sort.SliceStable(sets, func(i, j int) bool {
			return sets[i].SetIndex < sets[j].SetIndex
		})
		runs = append(runs, Run{Key: key, Sets: sets})
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Key.Timestamp > runs[j].Key.Timestamp
	})
	return runs
}
