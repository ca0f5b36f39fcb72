// Package tracker holds the transient state of a workout being performed:
// one editable row per set, per exercise. Nothing here is persisted; the
// caller takes the records produced by Finish to the history layer.
package tracker

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/meltforce/nextrep/internal/models"
)

// DefaultSetCount seeds exercises whose series target is unset.
const DefaultSetCount = 3

var (
	// ErrNotInProgress is returned by mutations outside the InProgress state.
	ErrNotInProgress = errors.New("tracker: workout not in progress")
	// ErrRowNotFound is returned when an exercise or set index does not exist.
	ErrRowNotFound = errors.New("tracker: no such set row")
)

// State is the tracker lifecycle. Finished is terminal: a finished tracker
// is discarded, not reused.
type State int

const (
	StateUninitialized State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "uninitialized"
	}
}

// WorkoutContext identifies what a live workout is recorded against: a saved
// session, or a standalone workout outside any session.
type WorkoutContext interface {
	// snapshot returns the denormalized session fields stamped onto every
	// history record produced by this workout.
	snapshot() (id int, name, date string)
}

// SessionContext records against a saved session.
type SessionContext struct {
	ID   int
	Name string
	Date string
}

func (c SessionContext) snapshot() (int, string, string) { return c.ID, c.Name, c.Date }

// FreeContext records a standalone workout. Its records carry the wire values
// the original data set uses for session-less history.
type FreeContext struct{}

func (FreeContext) snapshot() (int, string, string) { return -1, "Free workout", "" }

// Row is one set's live, editable state. Weight and reps stay free text
// until finish-time extraction.
type Row struct {
	Index    int    `json:"index"`
	WeightKg string `json:"weight_kg"`
	Reps     string `json:"reps"`
	Done     bool   `json:"done"`
}

// ExerciseState is the row list for one exercise in the live workout.
type ExerciseState struct {
	ExerciseID int    `json:"exercise_id"`
	Name       string `json:"name"`
	Rows       []Row  `json:"rows"`
}

// Tracker is the live workout state machine.
type Tracker struct {
	mu        sync.Mutex
	state     State
	wctx      WorkoutContext
	exercises []ExerciseState
	completed int

	now func() time.Time
}

// New creates an uninitialized tracker.
func New() *Tracker {
	return &Tracker{now: time.Now}
}

// Init seeds one row list per exercise and moves the tracker to InProgress.
// Row count comes from the exercise's series target (falling back to
// DefaultSetCount), reps are pre-filled from the repetitions target when set,
// and weight starts blank. Calling Init on an InProgress tracker is a no-op
// so a re-render cannot wipe user-entered data.
func (t *Tracker) Init(wctx WorkoutContext, exercises []models.Exercise) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateInProgress:
		return nil
	case StateFinished:
		return ErrNotInProgress
	}

	t.wctx = wctx
	t.exercises = make([]ExerciseState, 0, len(exercises))
	for _, ex := range exercises {
		count := ex.Series
		if count <= 0 {
			count = DefaultSetCount
		}
		reps := ""
		if ex.Repetitions > 0 {
			reps = strconv.Itoa(ex.Repetitions)
		}
		rows := make([]Row, count)
		for i := range rows {
			rows[i] = Row{Index: i + 1, Reps: reps}
		}
		t.exercises = append(t.exercises, ExerciseState{
			ExerciseID: ex.ID,
			Name:       ex.Name,
			Rows:       rows,
		})
	}
	t.completed = 0
	t.state = StateInProgress
	return nil
}

// UpdateWeight replaces the weight text of one row. The value is not
// validated here; validation happens at finish-time extraction.
func (t *Tracker) UpdateWeight(exerciseID, setIndex int, value string) error {
	return t.mutateRow(exerciseID, setIndex, func(r *Row) {
		r.WeightKg = value
	})
}

// UpdateReps replaces the rep text of one row.
func (t *Tracker) UpdateReps(exerciseID, setIndex int, value string) error {
	return t.mutateRow(exerciseID, setIndex, func(r *Row) {
		r.Reps = value
	})
}

// ToggleDone sets a row's completion flag and keeps the completed-sets
// counter consistent with it. Setting the same value twice never double
// counts, and the counter never goes below zero.
func (t *Tracker) ToggleDone(exerciseID, setIndex int, done bool) error {
	return t.mutateRow(exerciseID, setIndex, func(r *Row) {
		if r.Done == done {
			return
		}
		r.Done = done
		if done {
			t.completed++
		} else if t.completed > 0 {
			t.completed--
		}
	})
}

// AddRow appends a new blank row to an exercise. The new index is the current
// maximum index plus one, never a reused gap.
func (t *Tracker) AddRow(exerciseID int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateInProgress {
		return 0, ErrNotInProgress
	}
	for i := range t.exercises {
		if t.exercises[i].ExerciseID != exerciseID {
			continue
		}
		max := 0
		for _, r := range t.exercises[i].Rows {
			if r.Index > max {
				max = r.Index
			}
		}
		row := Row{Index: max + 1}
		t.exercises[i].Rows = append(t.exercises[i].Rows, row)
		return row.Index, nil
	}
	return 0, ErrRowNotFound
}

// Finish converts the tracker to history records and moves it to the terminal
// Finished state. Only rows that are marked done with parseable non-negative
// weight and reps are kept; the rest are dropped silently. Every record from
// one Finish call shares the same timestamp, which is what groups them into
// one workout run. Finish never fails once the workout is in progress: a
// workout with nothing valid produces an empty record list.
func (t *Tracker) Finish() ([]models.WorkoutSetRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateInProgress {
		return nil, ErrNotInProgress
	}

	sessionID, sessionName, sessionDate := t.wctx.snapshot()
	now := t.now().UnixMilli()

	var records []models.WorkoutSetRecord
	for _, ex := range t.exercises {
		for _, row := range ex.Rows {
			if !row.Done {
				continue
			}
			weight, ok := parseWeight(row.WeightKg)
			if !ok {
				continue
			}
			reps, ok := parseReps(row.Reps)
			if !ok {
				continue
			}
			records = append(records, models.WorkoutSetRecord{
				SessionID:    sessionID,
				SessionName:  sessionName,
				SessionDate:  sessionDate,
				ExerciseID:   ex.ExerciseID,
				ExerciseName: ex.Name,
				SetIndex:     row.Index,
				WeightKg:     weight,
				Reps:         reps,
				Timestamp:    now,
			})
		}
	}

	t.state = StateFinished
	return records, nil
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Exercises returns a copy of the current per-exercise row lists.
func (t *Tracker) Exercises() []ExerciseState {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ExerciseState, len(t.exercises))
	for i, ex := range t.exercises {
		rows := make([]Row, len(ex.Rows))
		copy(rows, ex.Rows)
		out[i] = ExerciseState{ExerciseID: ex.ExerciseID, Name: ex.Name, Rows: rows}
	}
	return out
}

// TotalCompletedSets is the count of done rows across all exercises.
func (t *Tracker) TotalCompletedSets() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// AllSetsCompleted reports whether every row is done. An empty tracker is
// never considered complete.
func (t *Tracker) AllSetsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, ex := range t.exercises {
		for _, r := range ex.Rows {
			total++
			if !r.Done {
				return false
			}
		}
	}
	return total > 0
}

func (t *Tracker) mutateRow(exerciseID, setIndex int, fn func(*Row)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateInProgress {
		return ErrNotInProgress
	}
	for i := range t.exercises {
		if t.exercises[i].ExerciseID != exerciseID {
			continue
		}
		for j := range t.exercises[i].Rows {
			if t.exercises[i].Rows[j].Index == setIndex {
				fn(&t.exercises[i].Rows[j])
				return nil
			}
		}
	}
	return ErrRowNotFound
}

func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0, false
	}
	return w, true
}

func parseReps(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
