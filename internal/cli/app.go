// Package cli is the interactive front end: a small REPL over the local
// store, the blob manager, and the sync engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/keepsakeapp/keepsake/internal/blob"
	"github.com/keepsakeapp/keepsake/internal/config"
	"github.com/keepsakeapp/keepsake/internal/logging"
	"github.com/keepsakeapp/keepsake/internal/reachability"
	"github.com/keepsakeapp/keepsake/internal/store"
	"github.com/keepsakeapp/keepsake/internal/syncer"
)

type App struct {
	config  *config.Config
	store   *store.Store
	blobs   *blob.Store
	engine  *syncer.Engine
	monitor *reachability.Monitor
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config, st *store.Store, blobs *blob.Store, engine *syncer.Engine, monitor *reachability.Monitor, log logging.Logger) *App {
	return &App{
		config:  cfg,
		store:   st,
		blobs:   blobs,
		engine:  engine,
		monitor: monitor,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

func (a *App) getStatus() string {
	s := a.monitor.Status().String()
	if a.engine.Running() {
		s = s + " syncing"
	}
	return fmt.Sprintf("(%s)", s)
}

// Run starts the REPL. It returns when the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to keepsake (type 'help' for commands)")

	for {
		fmt.Fprintf(a.out, "keepsake %s> ", a.getStatus())
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: add, emotion, say, reply, health, list, stats, sync, autosync on|off, server <url>, status, exit")

		case "add":
			a.addExperience(ctx)
		case "emotion":
			a.addEmotion(ctx)
		case "say":
			a.say(ctx, args)
		case "reply":
			a.reply(ctx, args)
		case "health":
			a.addHealth(ctx)
		case "list":
			a.list(ctx, args)
		case "stats":
			a.stats(ctx)
		case "sync":
			a.sync(ctx)
		case "autosync":
			a.autosync(ctx, args)
		case "server":
			a.server(ctx, args)
		case "status":
			a.status(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
