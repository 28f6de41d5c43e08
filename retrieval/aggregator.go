package retrieval

import (
	"context"
	"strings"

	"searchbot/config"
	"searchbot/types"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Aggregator fans a query out to every source and joins the fragments in source order
type Aggregator struct {
	sources      []types.Source
	fetcher      *Fetcher
	maxFragments int
	log          zerolog.Logger
}

// NewAggregator creates an Aggregator over a fixed, ordered source list
func NewAggregator(sources []types.Source, fetcher *Fetcher, logger *zerolog.Logger) *Aggregator {
	if fetcher == nil {
		fetcher = NewFetcher(FetcherConfig{Logger: logger})
	}
	log := zerolog.Nop()
	if logger != nil {
		log = logger.With().Str("component", "aggregator").Logger()
	}
	return &Aggregator{
		sources:      append([]types.Source(nil), sources...),
		fetcher:      fetcher,
		maxFragments: config.MaxFragments,
		log:          log,
	}
}

// Sources returns a copy of the configured sources
func (a *Aggregator) Sources() []types.Source {
	return append([]types.Source(nil), a.sources...)
}

// Aggregate returns every source's fragments joined into one string. Sources that
// fail or match nothing contribute nothing; if all do, the result is "".
func (a *Aggregator) Aggregate(ctx context.Context, query string) string {
	parts := make([]string, 0, len(a.sources))
	for _, text := range a.Collect(ctx, query) {
		if joined := text.Joined(); joined != "" {
			parts = append(parts, joined)
		}
	}
	return strings.Join(parts, " ")
}

// Collect runs fetch+extract for all sources on a pool sized to the source count
// and returns the per-source fragments indexed by declaration order. It blocks
// until every source has finished or hit its own timeout; once dispatched, fetches
// are not cancelled by the caller's context.
func (a *Aggregator) Collect(ctx context.Context, query string) []types.ExtractedText {
	results := make([]types.ExtractedText, len(a.sources))
	if len(a.sources) == 0 {
		return results
	}

	detached := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(len(a.sources))
	for i, src := range a.sources {
		g.Go(func() error {
			res := a.fetcher.Fetch(detached, i, src, query)
			results[i] = Extract(src, res, a.maxFragments)
			a.log.Debug().
				Str("source", src.Name).
				Bool("fetched", res.Succeeded).
				Int("fragments", len(results[i])).
				Msg("Source processed")
			return nil
		})
	}
	_ = g.Wait()

	return results
}
