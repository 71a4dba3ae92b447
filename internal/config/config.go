// Package config defines service configuration and its layered loading.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scoring queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize sets how many submitted game ids are remembered.
	DedupeSize int `koanf:"dedupe_size"`
	// MaxListLimit caps ?limit= on list endpoints.
	MaxListLimit int `koanf:"max_list_limit"`

	// DBPath is the SQLite file; ":memory:" keeps everything in process.
	DBPath string `koanf:"db_path"`
	// UnknownLogPath is the text file unknown plays are appended to; empty disables it.
	UnknownLogPath string `koanf:"unknown_log_path"`
	// RosterPath is an optional YAML roster of player names.
	RosterPath string `koanf:"roster_path"`

	SavantBaseURL string `koanf:"savant_base_url"`
	// PeopleBaseURL enables remote name lookups when non-empty.
	PeopleBaseURL  string  `koanf:"people_base_url"`
	FetchRPS       float64 `koanf:"fetch_rps"`
	FetchTimeoutMS int     `koanf:"fetch_timeout_ms"`
	NameCacheSize  int     `koanf:"name_cache_size"`

	// FetchSchedule is a cron spec for pulling the previous day's games;
	// empty disables scheduled ingestion.
	FetchSchedule string `koanf:"fetch_schedule"`

	// KeyPlayThreshold is the win expectancy swing that flags a key play.
	KeyPlayThreshold float64 `koanf:"key_play_threshold"`
}

// New creates a Config with defaults. The context is unused and kept for
// symmetry with Load.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		QueueSize:        1024,
		WorkerCount:      runtime.NumCPU() * 2,
		DedupeSize:       50_000,
		MaxListLimit:     1000,
		DBPath:           "scorebook.db",
		UnknownLogPath:   "unknown_plays.txt",
		SavantBaseURL:    "https://baseballsavant.mlb.com",
		PeopleBaseURL:    "https://statsapi.mlb.com",
		FetchRPS:         2,
		FetchTimeoutMS:   30_000,
		NameCacheSize:    4096,
		KeyPlayThreshold: 0.25,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}
