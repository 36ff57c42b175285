package models

import "time"

// DateLayout is the date-only format used for HealthEntry.TrackedDate, both
// in the database and on the wire.
const DateLayout = "2006-01-02"

// HealthEntry is one entry per calendar day tracking two independent
// behaviors: abstinence (abstained + drinks count) and activity (exercised +
// minutes). A second write for the same day updates in place.
type HealthEntry struct {
	ID          string
	TrackedDate string // DateLayout, unique per day

	Abstained   bool
	DrinksCount int

	Exercised       bool
	ExerciseMinutes int

	Mood   *int // 1..10
	Energy *int // 1..10
	Notes  *string

	CreatedAt time.Time
	SyncState SyncState
}

// StreakStats aggregates one tracked behavior over the full entry history.
type StreakStats struct {
	CurrentStreak int
	LongestStreak int
	TotalDays     int
	Last7Days     int
	Last30Days    int
}

// Stats is the derived aggregate over all health entries. It is always a
// pure function of the full HealthEntry set, recomputed whole after every
// upsert, never patched incrementally.
type Stats struct {
	Abstinence StreakStats
	Exercise   StreakStats

	TotalDrinks          int
	TotalExerciseMinutes int

	ComputedAt time.Time
}
