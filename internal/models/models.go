package models

// Exercise is a catalog entry the user can add to sessions. Series and
// Repetitions are the default set/rep targets used to seed a live workout.
type Exercise struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Series      int    `json:"series"`
	Repetitions int    `json:"repetitions"`
	PhotoURI    string `json:"photo_uri,omitempty"`
}

// Session is a named group of exercises the user performs together.
type Session struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutSetRecord is one persisted set from a finished workout. Session and
// exercise names are snapshots taken at recording time, so history survives
// deletion or renaming of the source entities. Timestamp is epoch
// milliseconds and is shared by every record of one workout run.
type WorkoutSetRecord struct {
	ID           int64   `json:"id"`
	SessionID    int     `json:"session_id"`
	SessionName  string  `json:"session_name"`
	SessionDate  string  `json:"session_date"`
	ExerciseID   int     `json:"exercise_id"`
	ExerciseName string  `json:"exercise_name"`
	SetIndex     int     `json:"set_index"`
	WeightKg     float64 `json:"weight_kg"`
	Reps         int     `json:"reps"`
	Timestamp    int64   `json:"timestamp"`
}
