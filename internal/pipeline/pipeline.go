// Package pipeline wires fetch, extraction and serialization into the
// single request-scoped flow the rest of the application calls. It holds
// no state beyond one invocation, so concurrent runs need no coordination.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"uekcal/internal/config"
	"uekcal/internal/ical"
	appLog "uekcal/internal/log"
	"uekcal/internal/schedule"
)

// ErrNoEvents is reported when the page was retrieved but no usable event
// came out of it: either nothing matched the extraction rules, or every
// extracted event failed timestamp composition. It usually means the
// upstream layout changed.
var ErrNoEvents = errors.New("no schedule events found in source document")

// Pipeline runs one fetch → extract → build cycle per call.
type Pipeline struct {
	fetcher  *Fetcher
	strategy schedule.Strategy
	builder  *ical.Builder
}

// New assembles a Pipeline from the configuration. The strategy is chosen
// here so a third extraction strategy only touches this switch.
func New(cfg *config.Config) (*Pipeline, error) {
	var strategy schedule.Strategy
	switch cfg.Strategy {
	case config.StrategyFreeText:
		strategy = schedule.FreeTextStrategy{}
	case config.StrategyTable:
		strategy = schedule.TableStrategy{}
	default:
		return nil, fmt.Errorf("unknown extraction strategy %q", cfg.Strategy)
	}

	builder, err := ical.NewBuilder(cfg.Timezone, cfg.ProdID, cfg.UIDSuffix, cfg.CalendarName)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		fetcher:  NewFetcher(time.Duration(cfg.FetchTimeoutSeconds) * time.Second),
		strategy: strategy,
		builder:  builder,
	}, nil
}

// Run fetches sourceURL and returns the serialized calendar.
//
// Failure modes: *FetchError (retrieval), *schedule.ParseError (document
// unreadable as markup), ErrNoEvents (zero usable events). Per-event
// build failures are logged here and never fail the run as long as at
// least one event survives.
func (p *Pipeline) Run(ctx context.Context, sourceURL string) (string, error) {
	doc, err := p.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	events, err := p.strategy.Extract(doc)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "", ErrNoEvents
	}

	out, skipped := p.builder.Build(events)
	for _, serr := range skipped {
		appLog.Error("dropping event with uncomposable timestamp", serr, "source", sourceURL)
	}
	built := len(events) - len(skipped)
	if built == 0 {
		// Never hand back an empty calendar as a success.
		return "", ErrNoEvents
	}

	appLog.Info("calendar built",
		"source", sourceURL,
		"events", built,
		"skipped", len(skipped),
	)
	return out, nil
}
