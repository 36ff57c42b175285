package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// addHealth records or updates the health entry for one day. Writing the
// same day twice updates the existing entry in place.
func (a *App) addHealth(ctx context.Context) {
	date, err := GetSimpleText(a.reader, "Date YYYY-MM-DD (empty for today)", a.out)
	if err != nil {
		return
	}
	if date == "" {
		date = time.Now().Format(models.DateLayout)
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		fmt.Fprintln(a.out, "Invalid date, expected YYYY-MM-DD")
		return
	}

	entry := &models.HealthEntry{TrackedDate: date}

	abstained, err := GetYesNo(a.reader, "Abstained from drinking?", true, a.out)
	if err != nil {
		return
	}
	entry.Abstained = abstained
	if !abstained {
		n, _ := GetOptionalInt(a.reader, "How many drinks?", 0, 100, a.out)
		if n != nil {
			entry.DrinksCount = *n
		}
	}

	exercised, err := GetYesNo(a.reader, "Exercised?", false, a.out)
	if err != nil {
		return
	}
	entry.Exercised = exercised
	if exercised {
		n, _ := GetOptionalInt(a.reader, "For how many minutes?", 1, 1440, a.out)
		if n != nil {
			entry.ExerciseMinutes = *n
		}
	}

	entry.Mood, _ = GetOptionalInt(a.reader, "Mood 1-10 (optional)", 1, 10, a.out)
	entry.Energy, _ = GetOptionalInt(a.reader, "Energy 1-10 (optional)", 1, 10, a.out)
	if notes, _ := GetSimpleText(a.reader, "Notes (optional)", a.out); notes != "" {
		entry.Notes = &notes
	}

	stored, err := a.store.UpsertHealthEntry(ctx, entry)
	if err != nil {
		a.log.Error(ctx, "failed to save health entry", "error", err)
		fmt.Fprintln(a.out, "Error saving health entry:", err)
		return
	}
	fmt.Fprintf(a.out, "Recorded %s (pending sync)\n", stored.TrackedDate)
}

func (a *App) stats(ctx context.Context) {
	stats, err := a.store.HealthStats(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error loading stats:", err)
		return
	}

	fmt.Fprintln(a.out, "Abstinence:")
	printStreak(a, stats.Abstinence)
	fmt.Fprintf(a.out, "  total drinks: %d\n", stats.TotalDrinks)

	fmt.Fprintln(a.out, "Exercise:")
	printStreak(a, stats.Exercise)
	fmt.Fprintf(a.out, "  total minutes: %d\n", stats.TotalExerciseMinutes)
}

func printStreak(a *App, s models.StreakStats) {
	fmt.Fprintf(a.out, "  current streak: %d days, longest: %d, total: %d\n",
		s.CurrentStreak, s.LongestStreak, s.TotalDays)
	fmt.Fprintf(a.out, "  last 7 days: %d, last 30 days: %d\n",
		s.Last7Days, s.Last30Days)
}
