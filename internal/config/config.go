// Package config holds application configuration, layered as
// defaults < config file < environment < explicitly-set flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Year         int    `json:"year"`
	SnapshotPath string `json:"snapshot_path"`
	OutputPath   string `json:"output_path"`
	DataDir      string `json:"data_dir"`
	DBPath       string `json:"-"`

	// Serve mode.
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Default returns a Config with default values. The report year
// defaults to the current calendar year.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("determining home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".unwrapped")
	return Config{
		Year:       time.Now().Year(),
		OutputPath: filepath.Join("data", "metrics.json"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, "snapshot.db"),
		Host:       "127.0.0.1",
		Port:       8080,
	}, nil
}

// Load builds a Config by layering: defaults < config file <
// env < flags. The provided FlagSet must already be parsed by
// the caller; only flags that were explicitly set override the
// lower layers.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}

	// The data dir override has to apply before the file layer;
	// it decides where the config file lives.
	if v := os.Getenv("UNWRAPPED_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	cfg.loadEnv()
	applyFlags(&cfg, fs)

	cfg.DBPath = filepath.Join(cfg.DataDir, "snapshot.db")
	return cfg, nil
}

func (c *Config) configPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.configPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file struct {
		Year         int    `json:"year"`
		SnapshotPath string `json:"snapshot_path"`
		OutputPath   string `json:"output_path"`
		Host         string `json:"host"`
		Port         int    `json:"port"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if file.Year != 0 {
		c.Year = file.Year
	}
	if file.SnapshotPath != "" {
		c.SnapshotPath = file.SnapshotPath
	}
	if file.OutputPath != "" {
		c.OutputPath = file.OutputPath
	}
	if file.Host != "" {
		c.Host = file.Host
	}
	if file.Port != 0 {
		c.Port = file.Port
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("UNWRAPPED_SNAPSHOT"); v != "" {
		c.SnapshotPath = v
	}
	if v := os.Getenv("UNWRAPPED_YEAR"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			c.Year = year
		}
	}
}

// RegisterFlags registers the shared flags on fs. The caller
// must call fs.Parse before passing fs to Load.
func RegisterFlags(fs *flag.FlagSet) {
	fs.String("snapshot", "", "Path to the raw snapshot JSON")
	fs.String("out", filepath.Join("data", "metrics.json"),
		"Output path for the report JSON")
	fs.Int("year", time.Now().Year(), "Year to report on")
	fs.String("host", "127.0.0.1", "Host to bind to (serve)")
	fs.Int("port", 8080, "Port to listen on (serve)")
}

// applyFlags copies explicitly-set flags from fs into cfg.
func applyFlags(cfg *Config, fs *flag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "snapshot":
			cfg.SnapshotPath = f.Value.String()
		case "out":
			cfg.OutputPath = f.Value.String()
		case "year":
			// flag already validated the int; ignore parse error
			cfg.Year, _ = strconv.Atoi(f.Value.String())
		case "host":
			cfg.Host = f.Value.String()
		case "port":
			cfg.Port, _ = strconv.Atoi(f.Value.String())
		}
	})
}
