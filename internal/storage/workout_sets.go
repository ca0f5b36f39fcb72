package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meltforce/nextrep/internal/models"
)

// InsertWorkoutSets batch-inserts history records from a finished workout.
// Returns the count inserted.
func (db *DB) InsertWorkoutSets(ctx context.Context, recs []models.WorkoutSetRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workout_sets (session_id, session_name, session_date,
		exercise_id, exercise_name, set_index, weight_kg, reps, timestamp) VALUES `
	args := make([]any, 0, len(recs)*9)
	valueStrings := make([]string, 0, len(recs))

	for _, r := range recs {
		valueStrings = append(valueStrings, "(?,?,?,?,?,?,?,?,?)")
		args = append(args, r.SessionID, r.SessionName, r.SessionDate,
			r.ExerciseID, r.ExerciseName, r.SetIndex, r.WeightKg, r.Reps, r.Timestamp)
	}

	query += strings.Join(valueStrings, ",")

	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	n, _ := res.RowsAffected()
	db.notifier.notify(TopicWorkoutSets)
	return n, nil
}

// SetsForExercise retrieves all history records for one exercise, ordered by
// timestamp descending, then session date descending, then set index
// ascending. The tie-break order keeps display deterministic when timestamps
// collide.
func (db *DB) SetsForExercise(ctx context.Context, exerciseID int) ([]models.WorkoutSetRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, session_id, session_name, session_date,
		        exercise_id, exercise_name, set_index, weight_kg, reps, timestamp
		 FROM workout_sets
		 WHERE exercise_id = ?
		 ORDER BY timestamp DESC, session_date DESC, set_index ASC`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRecord
	for rows.Next() {
		var r models.WorkoutSetRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.SessionName, &r.SessionDate,
			&r.ExerciseID, &r.ExerciseName, &r.SetIndex, &r.WeightKg, &r.Reps, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecentWorkoutSets retrieves the most recently recorded history records
// across all exercises, newest first.
func (db *DB) RecentWorkoutSets(ctx context.Context, limit int) ([]models.WorkoutSetRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, session_id, session_name, session_date,
		        exercise_id, exercise_name, set_index, weight_kg, reps, timestamp
		 FROM workout_sets
		 ORDER BY timestamp DESC, session_date DESC, set_index ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent workout sets: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutSetRecord
	for rows.Next() {
		var r models.WorkoutSetRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.SessionName, &r.SessionDate,
			&r.ExerciseID, &r.ExerciseName, &r.SetIndex, &r.WeightKg, &r.Reps, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
