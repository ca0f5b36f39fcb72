package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/nextrep/internal/models"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

type addExerciseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Series      int    `json:"series"`
	Repetitions int    `json:"repetitions"`
	PhotoURI    string `json:"photo_uri"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ex, ok := s.catalog.Add(req.Name, req.Description, req.Series, req.Repetitions, req.PhotoURI)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	ex, ok := s.catalog.FindByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}
	s.catalog.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExerciseHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise ID"})
		return
	}

	runs, err := s.history.RunsForExercise(r.Context(), id)
	if err != nil {
		s.log.Error("history query failed", "exercise_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// The exercise may be deleted; history survives it either way.
	resp := map[string]any{"runs": runs}
	if ex, ok := s.catalog.FindByID(id); ok {
		resp["exercise"] = ex
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

type createSessionRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	ExerciseIDs []int  `json:"exercise_ids"`
	UsePending  bool   `json:"use_pending"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var exercises []models.Exercise
	if req.UsePending {
		exercises = s.sessions.Pending()
	} else {
		for _, id := range req.ExerciseIDs {
			if ex, ok := s.catalog.FindByID(id); ok {
				exercises = append(exercises, ex)
			}
		}
	}

	created := s.sessions.Create(req.Name, req.Date, exercises)
	writeJSON(w, http.StatusCreated, created)
}

type stagePendingRequest struct {
	ExerciseIDs []int `json:"exercise_ids"`
}

func (s *Server) handleStagePending(w http.ResponseWriter, r *http.Request) {
	var req stagePendingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var exercises []models.Exercise
	for _, id := range req.ExerciseIDs {
		if ex, ok := s.catalog.FindByID(id); ok {
			exercises = append(exercises, ex)
		}
	}
	s.sessions.StagePending(exercises)
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleGetPending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Pending())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	sess, ok := s.sessions.FindByID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}
	s.sessions.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.history.RecentRuns(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathInt(r *http.Request, key string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, key))
}

func pathString(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
