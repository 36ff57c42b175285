package health

import (
	"sort"
	"time"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// ComputeStats derives the Stats aggregate from the full entry set. It is a
// pure function of (entries, now): the same inputs always produce the same
// output, which is why the caller recomputes the whole thing after every
// upsert instead of patching counters.
func ComputeStats(entries []models.HealthEntry, now time.Time) models.Stats {
	s := models.Stats{ComputedAt: now}

	s.Abstinence = behaviorStats(entries, now, func(e *models.HealthEntry) bool { return e.Abstained })
	s.Exercise = behaviorStats(entries, now, func(e *models.HealthEntry) bool { return e.Exercised })

	for i := range entries {
		s.TotalDrinks += entries[i].DrinksCount
		s.TotalExerciseMinutes += entries[i].ExerciseMinutes
	}
	return s
}

func behaviorStats(entries []models.HealthEntry, now time.Time, qualifies func(*models.HealthEntry) bool) models.StreakStats {
	var st models.StreakStats

	today := civilDate(now)
	week := today.AddDate(0, 0, -6)
	month := today.AddDate(0, 0, -29)

	days := make(map[time.Time]bool, len(entries))
	var qualifying []time.Time
	for i := range entries {
		d, err := time.ParseInLocation(models.DateLayout, entries[i].TrackedDate, time.UTC)
		if err != nil {
			continue
		}
		ok := qualifies(&entries[i])
		days[d] = ok
		if !ok {
			continue
		}
		qualifying = append(qualifying, d)
		st.TotalDays++
		if !d.Before(week) && !d.After(today) {
			st.Last7Days++
		}
		if !d.Before(month) && !d.After(today) {
			st.Last30Days++
		}
	}

	// Longest run of consecutive qualifying days anywhere in history.
	sort.Slice(qualifying, func(i, j int) bool { return qualifying[i].Before(qualifying[j]) })
	run := 0
	for i, d := range qualifying {
		if i > 0 && d.Equal(qualifying[i-1].AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
	}

	// Current streak counts back from today; a missing entry for today does
	// not break it (the day is not over yet), a disqualifying one does.
	start := today
	if ok, present := dayState(days, today); present && !ok {
		st.CurrentStreak = 0
		return st
	} else if !present {
		start = today.AddDate(0, 0, -1)
	}
	for d := start; ; d = d.AddDate(0, 0, -1) {
		ok, present := dayState(days, d)
		if !present || !ok {
			break
		}
		st.CurrentStreak++
	}
	return st
}

func dayState(days map[time.Time]bool, d time.Time) (qualifies, present bool) {
	q, ok := days[d]
	return q, ok
}

// civilDate keys t's wall-clock date. Entry dates are the user's local
// calendar days, so "today" must be too.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
