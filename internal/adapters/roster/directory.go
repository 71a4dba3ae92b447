package roster

import (
	"context"
	"errors"

	"github.com/okian/scorebook/internal/adapters/remote"
	"github.com/okian/scorebook/internal/domain/basepath"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
)

func isNotFound(err error) bool { return errors.Is(err, remote.ErrNotFound) }

// Directory resolves names for a game in order: names carried by the log,
// the static roster, then the people service. A failed remote lookup
// leaves the player unnamed; scoring never fails on a missing name.
type Directory struct {
	static Names
	people *PeopleClient
	logger logger.Logger
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithRoster sets the static roster.
func WithRoster(n Names) DirectoryOption {
	return func(d *Directory) { d.static = n }
}

// WithPeople enables remote lookups for ids nothing else names.
func WithPeople(p *PeopleClient) DirectoryOption {
	return func(d *Directory) { d.people = p }
}

// WithDirectoryLogger sets the logger.
func WithDirectoryLogger(l logger.Logger) DirectoryOption {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDirectory returns a directory; with no options it only knows the
// names carried by each log.
func NewDirectory(opts ...DirectoryOption) *Directory {
	d := &Directory{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.Named("roster")
	}
	return d
}

// Resolve returns the names of every batter, pitcher and runner in log.
func (d *Directory) Resolve(ctx context.Context, log model.GameLog) basepath.NameLookup {
	return d.Lookup(ctx, playerIDs(log.Plays), log.Names)
}

// Lookup resolves ids, starting from the names already known.
func (d *Directory) Lookup(ctx context.Context, ids []string, known map[string]string) Names {
	out := make(Names, len(ids))
	out.Merge(known)
	out.Merge(d.static)

	if d.people == nil {
		return out
	}
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		name, err := d.people.Name(ctx, id)
		if err != nil {
			d.logger.Warn(ctx, "name lookup failed", logger.String("player_id", id), logger.Error(err))
			continue
		}
		if name != "" {
			out[id] = name
		}
	}
	return out
}

// playerIDs lists the distinct player ids of plays in first-seen order.
func playerIDs(plays []model.PlateAppearance) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for i := range plays {
		add(plays[i].BatterID)
		add(plays[i].PitcherID)
		for _, r := range plays[i].OnBase {
			add(r)
		}
	}
	return ids
}
