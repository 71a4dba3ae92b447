// Package cli implements the scorecard command: it loads play-by-play from
// a file or Baseball Savant, scores it locally or through a running
// scorebook server, and prints the result.
package cli

import "time"

// Config holds the command line options.
type Config struct {
	File   string // JSON game or Savant CSV export
	GamePk string // game to fetch, or to pick out of a multi-game CSV

	Plain      bool    // tabular text instead of styled tables
	RosterPath string  // YAML roster of player names
	People     bool    // look missing names up remotely
	UnknownLog string  // append unclassified plays to this file
	Threshold  float64 // key play win expectancy swing

	SavantURL string
	PeopleURL string

	Submit  bool          // score through the server at BaseURL
	BaseURL string        // scorebook server
	Workers int           // concurrent submissions
	Timeout time.Duration // per-request timeout
	Wait    time.Duration // how long to wait for a submitted game to be scored
	Verbose bool
}

// AckResponse is the server's reply to a game submission.
type AckResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	GamesLoaded    int
	GamesSubmitted int
	GamesAccepted  int
	GamesDuplicate int
	GamesFailed    int
	GamesScored    int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
