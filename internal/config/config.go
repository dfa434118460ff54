// Package config resolves notesd's runtime configuration from CLI
// flags with an optional YAML file as the lower-priority layer,
// mirroring the teacher's flag-first cobra CLI (cmd/warren) layered
// over explicit struct config.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the full set of tunables for the notesd server, per spec
// §6's CLI surface plus ambient logging/TLS flags.
type Config struct {
	Listen           string        `yaml:"listen"`
	DataDir          string        `yaml:"data_dir"`
	RetentionDays    int           `yaml:"retention_days"`
	ScavengerPeriod  time.Duration `yaml:"-"`
	ScavengerSecs    int           `yaml:"scavenger_period_secs"`
	MaxPage          int           `yaml:"max_page"`
	SubQueueDepth    int           `yaml:"sub_queue_depth"`
	MaxSubscriptions int           `yaml:"max_subscriptions"`
	MaxInFlightSends int           `yaml:"max_in_flight_sends"`
	TelemetryAddr    string        `yaml:"telemetry_addr"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	TLSCert string `yaml:"tls_cert"`
	TLSKey  string `yaml:"tls_key"`
}

// Default returns the zero-config defaults, matching spec §6's stated
// defaults.
func Default() Config {
	return Config{
		Listen:           "127.0.0.1:7847",
		DataDir:          "./notesd-data",
		RetentionDays:    30,
		ScavengerSecs:    3600,
		MaxPage:          256,
		SubQueueDepth:    128,
		MaxSubscriptions: 10000,
		MaxInFlightSends: 256,
		TelemetryAddr:    "127.0.0.1:9090",
		LogLevel:         "info",
	}
}

// RegisterFlags attaches the config surface to a cobra command's flag
// set, in the style of cmd/warren's per-command Flags() calls.
func RegisterFlags(cmd *cobra.Command) {
	def := Default()
	cmd.Flags().String("config", "", "Path to a YAML config file")
	cmd.Flags().String("listen", def.Listen, "gRPC listen address")
	cmd.Flags().String("database", def.DataDir, "Data directory for the note store")
	cmd.Flags().Int("retention-days", def.RetentionDays, "Days to retain a note after creation")
	cmd.Flags().Int("scavenger-period-secs", def.ScavengerSecs, "Seconds between retention sweeps")
	cmd.Flags().Int("max-page", def.MaxPage, "Maximum notes returned per FetchNotes page")
	cmd.Flags().Int("sub-queue-depth", def.SubQueueDepth, "Per-subscriber buffered queue depth before drop-oldest")
	cmd.Flags().Int("max-subscriptions", def.MaxSubscriptions, "Maximum concurrent StreamNotes subscriptions")
	cmd.Flags().Int("max-in-flight-sends", def.MaxInFlightSends, "Maximum concurrent SendNote calls before ResourceExhausted")
	cmd.Flags().String("telemetry-endpoint", def.TelemetryAddr, "Address for the /metrics and /healthz HTTP endpoints")
	cmd.Flags().String("log-level", def.LogLevel, "Log level (debug, info, warn, error)")
	cmd.Flags().Bool("log-json", def.LogJSON, "Output logs in JSON format")
	cmd.Flags().String("tls-cert", "", "Path to a TLS certificate (enables transport security if set with --tls-key)")
	cmd.Flags().String("tls-key", "", "Path to a TLS private key")
}

// FromCommand resolves a Config from cmd's flags, merging in a YAML
// file at --config first (if present) as the base layer, so explicit
// flags always win. This mirrors the teacher's preference for
// flag-driven config with no surprise precedence inversions.
func FromCommand(cmd *cobra.Command) (Config, error) {
	cfg := Default()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := mergeFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	flags := cmd.Flags()
	if v, err := flags.GetString("listen"); err == nil && flags.Changed("listen") {
		cfg.Listen = v
	}
	if v, err := flags.GetString("database"); err == nil && flags.Changed("database") {
		cfg.DataDir = v
	}
	if v, err := flags.GetInt("retention-days"); err == nil && flags.Changed("retention-days") {
		cfg.RetentionDays = v
	}
	if v, err := flags.GetInt("scavenger-period-secs"); err == nil && flags.Changed("scavenger-period-secs") {
		cfg.ScavengerSecs = v
	}
	if v, err := flags.GetInt("max-page"); err == nil && flags.Changed("max-page") {
		cfg.MaxPage = v
	}
	if v, err := flags.GetInt("sub-queue-depth"); err == nil && flags.Changed("sub-queue-depth") {
		cfg.SubQueueDepth = v
	}
	if v, err := flags.GetInt("max-subscriptions"); err == nil && flags.Changed("max-subscriptions") {
		cfg.MaxSubscriptions = v
	}
	if v, err := flags.GetInt("max-in-flight-sends"); err == nil && flags.Changed("max-in-flight-sends") {
		cfg.MaxInFlightSends = v
	}
	if v, err := flags.GetString("telemetry-endpoint"); err == nil && flags.Changed("telemetry-endpoint") {
		cfg.TelemetryAddr = v
	}
	if v, err := flags.GetString("log-level"); err == nil && flags.Changed("log-level") {
		cfg.LogLevel = v
	}
	if v, err := flags.GetBool("log-json"); err == nil && flags.Changed("log-json") {
		cfg.LogJSON = v
	}
	if v, err := flags.GetString("tls-cert"); err == nil && flags.Changed("tls-cert") {
		cfg.TLSCert = v
	}
	if v, err := flags.GetString("tls-key"); err == nil && flags.Changed("tls-key") {
		cfg.TLSKey = v
	}

	if cfg.RetentionDays <= 0 {
		return Config{}, fmt.Errorf("retention-days must be positive, got %d", cfg.RetentionDays)
	}
	cfg.ScavengerPeriod = time.Duration(cfg.ScavengerSecs) * time.Second

	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}
