package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/keepsakeapp/keepsake/internal/models"
)

func syncMark(s models.SyncState) string {
	if s == models.SyncSynced {
		return " "
	}
	return "*"
}

// list prints the records of one kind from the in-memory view. Pending
// records are marked with an asterisk.
func (a *App) list(ctx context.Context, args []string) {
	kind := "experiences"
	if len(args) > 0 {
		kind = args[0]
	}

	switch kind {
	case "experiences", "exp":
		for _, e := range a.store.Experiences() {
			place := ""
			if e.PlaceName != nil {
				place = " @ " + *e.PlaceName
			}
			fmt.Fprintf(a.out, "%s %s  %s%s (%d photos)\n",
				syncMark(e.SyncState), e.ExperiencedAt.Format("2006-01-02 15:04"), e.Title, place, len(e.Photos))
		}
	case "emotions":
		for _, c := range a.store.Emotions() {
			fmt.Fprintf(a.out, "%s %s  %s (%d/10)\n",
				syncMark(c.SyncState), c.CreatedAt.Format("2006-01-02 15:04"), c.Emotion, c.Intensity)
		}
	case "messages", "chat":
		for _, m := range a.store.Messages() {
			fmt.Fprintf(a.out, "%s %s  [%s] %s\n",
				syncMark(m.SyncState), m.CreatedAt.Format("15:04"), m.Speaker, m.Text)
		}
	case "health":
		for _, h := range a.store.HealthEntries() {
			fmt.Fprintf(a.out, "%s %s  abstained=%v drinks=%d exercised=%v minutes=%d\n",
				syncMark(h.SyncState), h.TrackedDate, h.Abstained, h.DrinksCount, h.Exercised, h.ExerciseMinutes)
		}
	default:
		fmt.Fprintln(a.out, "Usage: list [experiences|emotions|messages|health]")
	}
}

func (a *App) status(ctx context.Context) {
	pending, err := a.store.PendingCount(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error reading pending count:", err)
		return
	}

	fmt.Fprintln(a.out, "Network:", a.monitor.Status())
	fmt.Fprintln(a.out, "Pending records:", pending)
	fmt.Fprintln(a.out, "Auto-sync:", onOff(a.store.AutoSyncEnabled(ctx)))
	if t, ok := a.store.LastSyncAt(ctx); ok {
		fmt.Fprintln(a.out, "Last sync:", t.Local().Format(time.RFC822))
	} else {
		fmt.Fprintln(a.out, "Last sync: never")
	}
	fmt.Fprintln(a.out, "Server:", a.serverBaseURL(ctx))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
