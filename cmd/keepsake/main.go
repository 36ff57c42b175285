package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/keepsakeapp/keepsake/internal/blob"
	"github.com/keepsakeapp/keepsake/internal/cli"
	"github.com/keepsakeapp/keepsake/internal/config"
	"github.com/keepsakeapp/keepsake/internal/logging"
	"github.com/keepsakeapp/keepsake/internal/models"
	"github.com/keepsakeapp/keepsake/internal/reachability"
	"github.com/keepsakeapp/keepsake/internal/store"
	"github.com/keepsakeapp/keepsake/internal/syncer"
	"github.com/keepsakeapp/keepsake/internal/upload"
)

func main() {
	cfg := config.LoadConfig()

	// Logs go to a rotating file so the interactive prompt stays clean.
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	blobs, err := blob.NewStore(cfg.BlobDir)
	if err != nil {
		log.Fatalf("opening blob store: %v", err)
	}

	// The stored server override wins over the config default, resolved per
	// request so a "server" command takes effect without a restart.
	baseURL := func() string {
		if url := st.ServerBaseURL(ctx); url != "" {
			return url
		}
		return cfg.ServerBaseURL
	}
	api := upload.NewClient(baseURL, blobs, logger, upload.WithTimeout(cfg.UploadTimeout))

	engine := syncer.New(st, api, logger,
		syncer.WithDeleteAfterSync(cfg.DeleteAfterSync...))

	monitor := reachability.NewMonitor(logger)
	monitor.OnWiFi(func() {
		engine.Trigger(ctx)
	})
	// New pending records also try to start a session; the policy and the
	// single-flight guard keep this cheap when nothing qualifies.
	go watchPending(ctx, st, monitor, engine)

	prober := reachability.NewProber(monitor, cfg.ProbeInterval)
	go prober.Run(ctx)

	app := cli.NewApp(cfg, st, blobs, engine, monitor, logger)
	app.Run(ctx)
}

// watchPending triggers the sync engine whenever a record of any kind is
// written while the device is on Wi-Fi.
func watchPending(ctx context.Context, st *store.Store, monitor *reachability.Monitor, engine *syncer.Engine) {
	experiences := st.Observe(models.KindExperience)
	emotions := st.Observe(models.KindEmotion)
	messages := st.Observe(models.KindMessage)
	health := st.Observe(models.KindHealth)

	for {
		select {
		case <-ctx.Done():
			return
		case <-experiences:
		case <-emotions:
		case <-messages:
		case <-health:
		}
		if monitor.Status() == reachability.WiFi {
			engine.Trigger(ctx)
		}
	}
}
