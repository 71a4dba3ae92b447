package outcome

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// Input is one plate appearance as the classifier sees it.
type Input struct {
	Code        model.EventCode
	Description string
	// BatterName is the resolved display name, "" when unknown.
	BatterName string
	// GameID and BatterID are forwarded to the sink for context only.
	GameID   string
	BatterID string
}

// UnknownPlay is what the sink receives when classification falls through.
type UnknownPlay struct {
	GameID      string
	BatterID    string
	BatterName  string
	EventCode   model.EventCode
	Description string
}

// Sink receives descriptions that could not be classified. It is write-only.
type Sink interface {
	RecordUnknown(ctx context.Context, play UnknownPlay) error
}

// Classifier maps event codes and descriptions to outcomes.
type Classifier struct {
	rules  []Rule
	sink   Sink
	logger logger.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSink sets the unknown-play sink.
func WithSink(s Sink) Option {
	return func(c *Classifier) { c.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRules replaces the cascade. Intended for tests and experiments.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) { c.rules = rules }
}

// NewClassifier returns a Classifier running the default cascade.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		rules:  Rules,
		logger: logger.Named("classifier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns exactly one outcome for in. It never fails: text that no
// rule recognizes, a record with neither code nor description, and a
// panicking rule all yield Unknown and notify the sink.
func (c *Classifier) Classify(ctx context.Context, in Input) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(ctx, "classification panicked",
				logger.String("description", in.Description),
				logger.Any("panic", fmt.Sprint(r)),
			)
			metrics.RecordError("classifier", "panic")
			out = c.unknown(ctx, in)
		}
	}()

	if in.Code == model.EventNone && strings.TrimSpace(in.Description) == "" {
		return c.unknown(ctx, in)
	}

	clue := &Clue{
		Code:   in.Code,
		Raw:    in.Description,
		Text:   clean(in.Description),
		Batter: strings.ToLower(strings.TrimSpace(in.BatterName)),
	}
	for _, r := range c.rules {
		if o, ok := r.Produce(clue); ok {
			o.RawText = in.Description
			metrics.RecordClassification(o.Kind.String())
			return o
		}
	}
	return c.unknown(ctx, in)
}

func (c *Classifier) unknown(ctx context.Context, in Input) Outcome {
	metrics.RecordClassification(KindUnknown.String())
	metrics.RecordUnknownPlay()
	c.logger.Warn(ctx, "unclassified play",
		logger.String("description", in.Description),
		logger.String("event_code", string(in.Code)),
		logger.String("game_id", in.GameID),
	)
	if c.sink != nil {
		err := c.sink.RecordUnknown(ctx, UnknownPlay{
			GameID:      in.GameID,
			BatterID:    in.BatterID,
			BatterName:  in.BatterName,
			EventCode:   in.Code,
			Description: in.Description,
		})
		if err != nil {
			c.logger.Error(ctx, "failed to record unknown play", logger.Error(err))
			metrics.RecordError("classifier", "sink")
		}
	}
	return Unknown(in.Description)
}
