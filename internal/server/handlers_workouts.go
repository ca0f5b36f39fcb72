package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/meltforce/nextrep/internal/metrics"
	"github.com/meltforce/nextrep/internal/models"
	"github.com/meltforce/nextrep/internal/tracker"
)

type startWorkoutRequest struct {
	SessionID   *int  `json:"session_id"`
	Free        bool  `json:"free"`
	ExerciseIDs []int `json:"exercise_ids"`
}

type workoutState struct {
	ID               string                  `json:"id"`
	State            string                  `json:"state"`
	ElapsedSeconds   int                     `json:"elapsed_seconds"`
	Elapsed          string                  `json:"elapsed"`
	TotalCompleted   int                     `json:"total_completed_sets"`
	AllSetsCompleted bool                    `json:"all_sets_completed"`
	Exercises        []tracker.ExerciseState `json:"exercises"`
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req startWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var wctx tracker.WorkoutContext
	var exercises []models.Exercise

	switch {
	case req.SessionID != nil:
		sess, ok := s.sessions.FindByID(*req.SessionID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
		wctx = tracker.SessionContext{ID: sess.ID, Name: sess.Name, Date: sess.Date}
		exercises = sess.Exercises
	case req.Free:
		wctx = tracker.FreeContext{}
		for _, id := range req.ExerciseIDs {
			if ex, ok := s.catalog.FindByID(id); ok {
				exercises = append(exercises, ex)
			}
		}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id or free is required"})
		return
	}

	t := tracker.New()
	if err := t.Init(wctx, exercises); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	lw := s.live.start(t)
	metrics.WorkoutsStartedTotal.Inc()
	writeJSON(w, http.StatusCreated, s.workoutState(lw))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	lw, ok := s.liveWorkout(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.workoutState(lw))
}

type updateSetRequest struct {
	WeightKg *string `json:"weight_kg"`
	Reps     *string `json:"reps"`
	Done     *bool   `json:"done"`
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	lw, ok := s.liveWorkout(w, r)
	if !ok {
		return
	}
	exerciseID, err1 := pathInt(r, "exerciseID")
	index, err2 := pathInt(r, "index")
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise or set index"})
		return
	}

	var req updateSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var err error
	if req.WeightKg != nil {
		err = lw.Tracker.UpdateWeight(exerciseID, index, *req.WeightKg)
	}
	if err == nil && req.Reps != nil {
		err = lw.Tracker.UpdateReps(exerciseID, index, *req.Reps)
	}
	if err == nil && req.Done != nil {
		err = lw.Tracker.ToggleDone(exerciseID, index, *req.Done)
	}
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.workoutState(lw))
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	lw, ok := s.liveWorkout(w, r)
	if !ok {
		return
	}
	exerciseID, err := pathInt(r, "exerciseID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	index, err := lw.Tracker.AddRow(exerciseID)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"index": index})
}

func (s *Server) handleFinishWorkout(w http.ResponseWriter, r *http.Request) {
	lw, ok := s.liveWorkout(w, r)
	if !ok {
		return
	}

	doneBefore := lw.Tracker.TotalCompletedSets()
	records, err := lw.Tracker.Finish()
	if err != nil {
		writeTrackerError(w, err)
		return
	}

	if _, err := s.history.SaveSets(r.Context(), records); err != nil {
		s.log.Error("persisting workout failed", "workout_id", lw.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	metrics.WorkoutsFinishedTotal.Inc()
	metrics.SetsRecordedTotal.Add(float64(len(records)))
	if dropped := doneBefore - len(records); dropped > 0 {
		metrics.SetsDroppedTotal.Add(float64(dropped))
	}

	s.live.remove(lw.ID)
	s.log.Info("workout finished", "workout_id", lw.ID, "sets", len(records))
	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
	})
}

func (s *Server) liveWorkout(w http.ResponseWriter, r *http.Request) (*liveWorkout, bool) {
	id, err := uuid.Parse(pathString(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return nil, false
	}
	lw, ok := s.live.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return nil, false
	}
	return lw, true
}

func (s *Server) workoutState(lw *liveWorkout) workoutState {
	elapsed := lw.Timer.Elapsed()
	return workoutState{
		ID:               lw.ID.String(),
		State:            lw.Tracker.State().String(),
		ElapsedSeconds:   elapsed,
		Elapsed:          tracker.FormatDuration(elapsed),
		TotalCompleted:   lw.Tracker.TotalCompletedSets(),
		AllSetsCompleted: lw.Tracker.AllSetsCompleted(),
		Exercises:        lw.Tracker.Exercises(),
	}
}

func writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrRowNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrNotInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
