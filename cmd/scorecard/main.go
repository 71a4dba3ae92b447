package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/scorebook/internal/adapters/roster"
	"github.com/okian/scorebook/internal/adapters/source"
	"github.com/okian/scorebook/internal/cli"
	"github.com/okian/scorebook/internal/domain/model"
)

// Default configuration constants.
const (
	defaultWorkers = 2 // multiplier for runtime.NumCPU()
	defaultTimeout = 30 * time.Second
	defaultWait    = time.Minute
)

func main() {
	var (
		file       = flag.String("file", "", "JSON game or Savant CSV export")
		game       = flag.String("game", "", "Savant game_pk to fetch or select")
		plain      = flag.Bool("plain", false, "Plain text tables instead of styled output")
		rosterPath = flag.String("roster", "", "YAML roster of player names")
		people     = flag.Bool("people", false, "Look missing player names up remotely")
		unknownLog = flag.String("unknown-log", "", "Append unclassified plays to this file")
		threshold  = flag.Float64("threshold", model.KeyPlayThreshold, "Win expectancy swing that flags a key play")
		submit     = flag.Bool("submit", false, "Score through a running server")
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the server")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent submissions")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait       = flag.Duration("wait", defaultWait, "How long to wait for submitted games to be scored")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		cli.ShowHelp(os.Stdout)
		return
	}

	if err := cli.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &cli.Config{
		File:       *file,
		GamePk:     *game,
		Plain:      *plain,
		RosterPath: *rosterPath,
		People:     *people,
		UnknownLog: *unknownLog,
		Threshold:  *threshold,
		SavantURL:  source.DefaultSavantURL,
		PeopleURL:  roster.DefaultPeopleURL,
		Submit:     *submit,
		BaseURL:    *baseURL,
		Workers:    *workers,
		Timeout:    *timeout,
		Wait:       *wait,
		Verbose:    *verbose,
	}

	if err := cli.Run(ctx, cfg, os.Stdout); err != nil {
		os.Stderr.WriteString("scorecard: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
