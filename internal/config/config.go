package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/keepsakeapp/keepsake/internal/models"
)

// Config holds runtime settings for the keepsake CLI.
//
// ServerBaseURL is only the initial value: the user can change the target
// server at runtime and the stored value wins over this one.
type Config struct {
	ServerBaseURL string
	DatabasePath  string
	BlobDir       string
	LogFile       string

	ProbeInterval time.Duration
	UploadTimeout time.Duration

	// DeleteAfterSync lists the kinds whose records are removed locally once
	// the backend confirms them. Default is to retain everything as local
	// history.
	DeleteAfterSync []models.Kind
}

// LoadDefaults populates c with sensible defaults. Data lands under the
// user's home directory so the store survives reinstalls of the binary.
func (c *Config) LoadDefaults() {
	base := dataDir()
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.DatabasePath = filepath.Join(base, "keepsake.db")
	c.BlobDir = filepath.Join(base, "photos")
	c.LogFile = filepath.Join(base, "keepsake.log")
	c.ProbeInterval = 5 * time.Second
	c.UploadTimeout = 30 * time.Second
	c.DeleteAfterSync = nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keepsake"
	}
	return filepath.Join(home, ".keepsake")
}
