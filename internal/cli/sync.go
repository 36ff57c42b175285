package cli

import (
	"context"
	"fmt"
	"strings"
)

// sync runs a sync session inline and reports the outcome. The session
// honors the auto-sync toggle and the single-flight rule like any other
// trigger.
func (a *App) sync(ctx context.Context) {
	if a.engine.Running() {
		fmt.Fprintln(a.out, "A sync session is already running")
		return
	}

	res := a.engine.SyncNow(ctx)
	if !res.Started {
		if !a.store.AutoSyncEnabled(ctx) {
			fmt.Fprintln(a.out, "Auto-sync is off (enable with: autosync on)")
			return
		}
		fmt.Fprintln(a.out, "Nothing to sync")
		return
	}
	fmt.Fprintf(a.out, "Sync finished: %d uploaded, %d failed\n", res.Uploaded, res.Failed)
}

func (a *App) autosync(ctx context.Context, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		fmt.Fprintln(a.out, "Usage: autosync on|off")
		return
	}
	enabled := args[0] == "on"
	if err := a.store.SetAutoSyncEnabled(ctx, enabled); err != nil {
		fmt.Fprintln(a.out, "Error updating auto-sync:", err)
		return
	}
	fmt.Fprintln(a.out, "Auto-sync", onOff(enabled))
}

// server shows or changes the backend base URL. The stored value overrides
// the config default and survives restarts.
func (a *App) server(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Server:", a.serverBaseURL(ctx))
		return
	}
	url := strings.TrimSpace(args[0])
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		fmt.Fprintln(a.out, "Server URL must start with http:// or https://")
		return
	}
	if err := a.store.SetServerBaseURL(ctx, url); err != nil {
		fmt.Fprintln(a.out, "Error updating server URL:", err)
		return
	}
	fmt.Fprintln(a.out, "Server set to", url)
}

// serverBaseURL resolves the effective backend URL: the stored override if
// present, the config default otherwise.
func (a *App) serverBaseURL(ctx context.Context) string {
	if url := a.store.ServerBaseURL(ctx); url != "" {
		return url
	}
	return a.config.ServerBaseURL
}
