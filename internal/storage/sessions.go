package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/meltforce/nextrep/internal/models"
)

// InsertSession inserts a session and its exercise associations in one
// transaction.
func (db *DB) InsertSession(ctx context.Context, s models.Session) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, date) VALUES (?, ?, ?)`,
		s.ID, s.Name, s.Date); err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for _, ex := range s.Exercises {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO session_exercise_crossref (session_id, exercise_id) VALUES (?, ?)`,
			s.ID, ex.ID); err != nil {
			return fmt.Errorf("inserting session crossref: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	db.notifier.notify(TopicSessions)
	return nil
}

// ListSessions retrieves all sessions with their exercises, in creation order.
func (db *DB) ListSessions(ctx context.Context) ([]models.Session, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, date FROM sessions ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.Date); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		exercises, err := db.sessionExercises(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Exercises = exercises
	}
	return result, nil
}

// GetSession retrieves one session with its exercises. The second return
// value reports whether the session was found.
func (db *DB) GetSession(ctx context.Context, id int) (models.Session, bool, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, date FROM sessions WHERE id = ?`, id)

	var s models.Session
	err := row.Scan(&s.ID, &s.Name, &s.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, fmt.Errorf("querying session: %w", err)
	}

	s.Exercises, err = db.sessionExercises(ctx, s.ID)
	if err != nil {
		return models.Session{}, false, err
	}
	return s, true, nil
}

// DeleteSession removes a session and its associations; a no-op if absent.
// Workout history recorded against the session is left untouched.
func (db *DB) DeleteSession(ctx context.Context, id int) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_exercise_crossref WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("deleting session crossrefs: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		db.notifier.notify(TopicSessions)
	}
	return nil
}

// MaxSessionID returns the highest assigned session id, or 0 when none exist.
func (db *DB) MaxSessionID(ctx context.Context) (int, error) {
	var max sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `SELECT MAX(id) FROM sessions`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("querying max session id: %w", err)
	}
	return int(max.Int64), nil
}

func (db *DB) sessionExercises(ctx context.Context, sessionID int) ([]models.Exercise, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT e.id, e.name, e.description, e.series, e.repetitions, e.photo_uri
		 FROM exercises e
		 JOIN session_exercise_crossref c ON c.exercise_id = e.id
		 WHERE c.session_id = ?
		 ORDER BY e.id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session exercises: %w", err)
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
