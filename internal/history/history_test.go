package history

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/meltforce/nextrep/internal/models"
	"github.com/meltforce/nextrep/internal/storage"
)

func testAggregator(t *testing.T) *Aggregator {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return NewAggregator(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func rec(sessionID int, sessionName, sessionDate string, exerciseID, setIndex int, ts int64) models.WorkoutSetRecord {
	return models.WorkoutSetRecord{
		SessionID:    sessionID,
		SessionName:  sessionName,
		SessionDate:  sessionDate,
		ExerciseID:   exerciseID,
		ExerciseName: "Squat",
		SetIndex:     setIndex,
		WeightKg:     100,
		Reps:         5,
		Timestamp:    ts,
	}
}

// TestGroupByRun verifies that records split into runs by the full key and
// that runs come back most recent first with sets in index order.
func TestGroupByRun(t *testing.T) {
	recs := []models.WorkoutSetRecord{
		rec(1, "Leg Day", "2026-08-08", 1, 2, 2000),
		rec(1, "Leg Day", "2026-08-08", 1, 1, 2000),
		rec(1, "Leg Day", "2026-08-01", 1, 1, 1000),
	}

	runs := GroupByRun(recs)
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	newest := runs[0]
	if newest.Key.Timestamp != 2000 {
		t.Errorf("first run timestamp = %d, want 2000", newest.Key.Timestamp)
	}
	if len(newest.Sets) != 2 {
		t.Fatalf("first run sets = %d, want 2", len(newest.Sets))
	}
	if newest.Sets[0].SetIndex != 1 || newest.Sets[1].SetIndex != 2 {
		t.Errorf("set order = [%d, %d], want [1, 2]", newest.Sets[0].SetIndex, newest.Sets[1].SetIndex)
	}

	if runs[1].Key.Timestamp != 1000 {
		t.Errorf("second run timestamp = %d, want 1000", runs[1].Key.Timestamp)
	}
}

// TestGroupByRunKeyComponents verifies that runs sharing a timestamp are
// still distinct when any session field differs.
func TestGroupByRunKeyComponents(t *testing.T) {
	recs := []models.WorkoutSetRecord{
		rec(1, "Leg Day", "2026-08-08", 1, 1, 2000),
		rec(2, "Push Day", "2026-08-08", 1, 1, 2000),
		rec(-1, "Free workout", "", 1, 1, 2000),
	}

	runs := GroupByRun(recs)
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
}

// TestGroupByRunEmpty verifies that no records produce no runs.
func TestGroupByRunEmpty(t *testing.T) {
	if runs := GroupByRun(nil); len(runs) != 0 {
		t.Errorf("got %d runs, want 0", len(runs))
	}
}

// TestSaveAndRunsRoundTrip verifies that a saved batch comes back as one run
// isolated from earlier history of the same exercise.
func TestSaveAndRunsRoundTrip(t *testing.T) {
	agg := testAggregator(t)
	ctx := context.Background()

	if _, err := agg.SaveSets(ctx, []models.WorkoutSetRecord{
		rec(1, "Leg Day", "2026-08-01", 1, 1, 1000),
	}); err != nil {
		t.Fatalf("SaveSets: %v", err)
	}
	if _, err := agg.SaveSets(ctx, []models.WorkoutSetRecord{
		rec(1, "Leg Day", "2026-08-08", 1, 1, 2000),
		rec(1, "Leg Day", "2026-08-08", 1, 2, 2000),
	}); err != nil {
		t.Fatalf("SaveSets: %v", err)
	}

	runs, err := agg.RunsForExercise(ctx, 1)
	if err != nil {
		t.Fatalf("RunsForExercise: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if len(runs[0].Sets) != 2 || len(runs[1].Sets) != 1 {
		t.Errorf("run sizes = [%d, %d], want [2, 1]", len(runs[0].Sets), len(runs[1].Sets))
	}
}

// TestRecentRuns verifies the cross-exercise recency view groups its records.
func TestRecentRuns(t *testing.T) {
	agg := testAggregator(t)
	ctx := context.Background()

	if _, err := agg.SaveSets(ctx, []models.WorkoutSetRecord{
		rec(1, "Leg Day", "2026-08-08", 1, 1, 2000),
		rec(1, "Leg Day", "2026-08-08", 1, 2, 2000),
	}); err != nil {
		t.Fatalf("SaveSets: %v", err)
	}

	runs, err := agg.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || len(runs[0].Sets) != 2 {
		t.Fatalf("got %+v, want one run with two sets", runs)
	}
}

// TestWatch verifies the initial emission and a refresh after a save.
func TestWatch(t *testing.T) {
	agg := testAggregator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := agg.Watch(ctx, 1)

	select {
	case runs := <-updates:
		if len(runs) != 0 {
			t.Errorf("initial view has %d runs, want 0", len(runs))
		}
	case <-time.After(time.Second):
		t.Fatal("no initial emission")
	}

	if _, err := agg.SaveSets(context.Background(), []models.WorkoutSetRecord{
		rec(1, "Leg Day", "2026-08-08", 1, 1, 2000),
	}); err != nil {
		t.Fatalf("SaveSets: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case runs, ok := <-updates:
			if !ok {
				t.Fatal("watch channel closed before the refresh arrived")
			}
			if len(runs) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("no refresh after saving sets")
		}
	}
}

// TestWatchClosesOnCancel verifies the channel is closed after context
// cancellation.
func TestWatchClosesOnCancel(t *testing.T) {
	agg := testAggregator(t)
	ctx, cancel := context.WithCancel(context.Background())

	updates := agg.Watch(ctx, 1)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}
