package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/keepsakeapp/keepsake/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server (default from Config)
//	-d string   path to the SQLite database file
//	-b string   directory for photo blobs
//	-l string   path to the log file
//	-i int      reachability probe interval in seconds
//	-r string   comma-separated kinds to delete locally after sync
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-b", "-l", "-i", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the backend server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the SQLite database file")
	fs.StringVar(&cfg.BlobDir, "b", cfg.BlobDir, "directory for photo blobs")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "path to the log file")
	probeInterval := fs.Int("i", int(cfg.ProbeInterval.Seconds()), "reachability probe interval (in seconds)")
	retention := fs.String("r", "", "comma-separated kinds to delete locally after sync")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ProbeInterval = time.Duration(*probeInterval) * time.Second
	if *retention != "" {
		cfg.DeleteAfterSync = parseKinds(strings.Split(*retention, ","))
	}
}
