package workout

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

func testStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func testManager(t *testing.T, db *storage.DB) *Manager {
	t.Helper()
	m, err := NewManager(context.Background(), db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

// TestCreateAssignsIDAndClearsPending verifies session creation returns the
// assigned id and wipes the staging slot.
func TestCreateAssignsIDAndClearsPending(t *testing.T) {
	m := testManager(t, testStore(t))
	defer m.Close()

	m.StagePending([]models.Exercise{{ID: 1, Name: "Squat"}})

	s := m.Create("Leg Day", "2026-08-15", m.Pending())
	if s.ID != 1 {
		t.Errorf("session id = %d, want 1", s.ID)
	}
	if len(s.Exercises) != 1 || s.Exercises[0].Name != "Squat" {
		t.Errorf("session exercises = %+v, want the staged Squat", s.Exercises)
	}
	if got := m.Pending(); len(got) != 0 {
		t.Errorf("pending has %d exercises after create, want 0", len(got))
	}
}

// TestStagePendingOverwrites verifies that staging replaces, not appends.
func TestStagePendingOverwrites(t *testing.T) {
	m := testManager(t, testStore(t))
	defer m.Close()

	m.StagePending([]models.Exercise{{ID: 1, Name: "Squat"}, {ID: 2, Name: "Bench"}})
	m.StagePending([]models.Exercise{{ID: 3, Name: "Deadlift"}})

	got := m.Pending()
	if len(got) != 1 || got[0].Name != "Deadlift" {
		t.Errorf("pending = %+v, want only Deadlift", got)
	}
}

// TestCreatePersists verifies a created session with its associations reaches
// the store once the manager is closed.
func TestCreatePersists(t *testing.T) {
	db := testStore(t)
	ctx := context.Background()
	if err := db.InsertExercise(ctx, models.Exercise{ID: 1, Name: "Squat"}); err != nil {
		t.Fatalf("InsertExercise: %v", err)
	}

	m := testManager(t, db)
	m.Create("Leg Day", "2026-08-15", []models.Exercise{{ID: 1, Name: "Squat"}})
	m.Close()

	stored, found, err := db.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !found {
		t.Fatal("created session not stored")
	}
	if stored.Name != "Leg Day" || len(stored.Exercises) != 1 {
		t.Errorf("stored = %+v, want Leg Day with one exercise", stored)
	}
}

// TestLoadsExistingSessions verifies id assignment continues past stored
// sessions after a reload.
func TestLoadsExistingSessions(t *testing.T) {
	db := testStore(t)

	first := testManager(t, db)
	first.Create("Leg Day", "2026-08-15", nil)
	first.Close()

	second := testManager(t, db)
	defer second.Close()

	if got := len(second.List()); got != 1 {
		t.Fatalf("reloaded sessions = %d, want 1", got)
	}
	s := second.Create("Push Day", "2026-08-16", nil)
	if s.ID != 2 {
		t.Errorf("id after reload = %d, want 2", s.ID)
	}
}

// TestDelete verifies removal and the unknown-id no-op.
func TestDelete(t *testing.T) {
	m := testManager(t, testStore(t))
	defer m.Close()

	s := m.Create("Leg Day", "2026-08-15", nil)
	m.Delete(s.ID)
	m.Delete(99)

	if got := len(m.List()); got != 0 {
		t.Errorf("sessions = %d after delete, want 0", got)
	}
	if _, found := m.FindByID(s.ID); found {
		t.Error("deleted session still found")
	}
}

// TestWatchSnapshots verifies the seed snapshot and a post-mutation snapshot.
func TestWatchSnapshots(t *testing.T) {
	m := testManager(t, testStore(t))
	defer m.Close()

	updates, cancel := m.Watch()
	defer cancel()

	select {
	case snap := <-updates:
		if len(snap) != 0 {
			t.Errorf("seed snapshot has %d sessions, want 0", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no seed snapshot")
	}

	m.Create("Leg Day", "2026-08-15", nil)

	select {
	case snap := <-updates:
		if len(snap) != 1 {
			t.Errorf("snapshot has %d sessions, want 1", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after Create")
	}
}
