package config

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/keepsakeapp/keepsake/internal/flagx"
	"github.com/keepsakeapp/keepsake/internal/models"
	"github.com/keepsakeapp/keepsake/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "5s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	ServerBaseURL   string         `json:"server_base_url"`
	DatabasePath    string         `json:"database_path"`
	BlobDir         string         `json:"blob_dir"`
	LogFile         string         `json:"log_file"`
	ProbeInterval   timex.Duration `json:"probe_interval"`
	UploadTimeout   timex.Duration `json:"upload_timeout"`
	DeleteAfterSync []string       `json:"delete_after_sync"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; if neither
// is given, nothing is loaded. Fields absent from the JSON keep their
// earlier values; read or unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.BlobDir != "" {
		cfg.BlobDir = jc.BlobDir
	}
	if jc.LogFile != "" {
		cfg.LogFile = jc.LogFile
	}
	if jc.ProbeInterval.Duration > 0 {
		cfg.ProbeInterval = time.Duration(jc.ProbeInterval.Duration)
	}
	if jc.UploadTimeout.Duration > 0 {
		cfg.UploadTimeout = time.Duration(jc.UploadTimeout.Duration)
	}
	if jc.DeleteAfterSync != nil {
		cfg.DeleteAfterSync = parseKinds(jc.DeleteAfterSync)
	}
}

// parseKinds maps kind names to models.Kind values, dropping unknown names
// and normalizing to the sync order.
func parseKinds(names []string) []models.Kind {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	var kinds []models.Kind
	for _, k := range models.KindsInSyncOrder {
		if want[string(k)] {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
