// Package roster resolves player ids to display names from roster files,
// names carried by the play-by-play, and a remote people service.
package roster

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrLoadRoster is returned when a roster file cannot be read or parsed.
var ErrLoadRoster = errors.New("load roster")

// Names maps player ids to display names.
type Names map[string]string

// DisplayName implements the scorer's name lookup.
func (n Names) DisplayName(id string) (string, bool) {
	name, ok := n[id]
	return name, ok && name != ""
}

// Merge copies every non-empty name of other into n, keeping names n
// already has.
func (n Names) Merge(other map[string]string) {
	for id, name := range other {
		if name == "" {
			continue
		}
		if _, ok := n[id]; !ok {
			n[id] = name
		}
	}
}

type rosterFile struct {
	Players map[string]string `yaml:"players"`
}

// LoadFile reads a YAML roster of the form:
//
//	players:
//	  "592450": Aaron Judge
//	  "605483": Kutter Crawford
func LoadFile(path string) (Names, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadRoster, err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadRoster, path, err)
	}
	names := make(Names, len(f.Players))
	names.Merge(f.Players)
	return names, nil
}
