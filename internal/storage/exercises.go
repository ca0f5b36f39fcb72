package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meltforce/nextrep/internal/models"
)

// InsertExercise inserts an exercise with an explicit id.
func (db *DB) InsertExercise(ctx context.Context, ex models.Exercise) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO exercises (id, name, description, series, repetitions, photo_uri)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.Name, ex.Description, ex.Series, ex.Repetitions, nullString(ex.PhotoURI))
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}
	db.notifier.notify(TopicExercises)
	return nil
}

// ListExercises retrieves all exercises ordered by name ascending.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, series, repetitions, photo_uri
		 FROM exercises ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, ex)
	}
	return result, rows.Err()
}

// GetExercise retrieves one exercise by id. A missing id is not an error:
// the second return value reports whether the exercise was found.
func (db *DB) GetExercise(ctx context.Context, id int) (models.Exercise, bool, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, series, repetitions, photo_uri
		 FROM exercises WHERE id = ?`, id)

	var ex models.Exercise
	var photo sql.NullString
	err := row.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.Series, &ex.Repetitions, &photo)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Exercise{}, false, nil
	}
	if err != nil {
		return models.Exercise{}, false, fmt.Errorf("querying exercise: %w", err)
	}
	ex.PhotoURI = photo.String
	return ex, true, nil
}

// DeleteExercise removes an exercise; a no-op if the id is absent. History
// records referencing the exercise are left untouched.
func (db *DB) DeleteExercise(ctx context.Context, id int) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting exercise: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		db.notifier.notify(TopicExercises)
	}
	return nil
}

// MaxExerciseID returns the highest assigned exercise id, or 0 when the
// catalog is empty.
func (db *DB) MaxExerciseID(ctx context.Context) (int, error) {
	var max sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `SELECT MAX(id) FROM exercises`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("querying max exercise id: %w", err)
	}
	return int(max.Int64), nil
}

func scanExercise(rows *sql.Rows) (models.Exercise, error) {
	var ex models.Exercise
	var photo sql.NullString
	if err := rows.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.Series, &ex.Repetitions, &photo); err != nil {
		return models.Exercise{}, fmt.Errorf("scanning exercise: %w", err)
	}
	ex.PhotoURI = photo.String
	return ex, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
