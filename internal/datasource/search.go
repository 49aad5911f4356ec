package datasource

import (
	"context"
	"strings"

	"github.com/phuslu/log"

	"github.com/seenimoa/stockpulse/pkg/models"
)

// MaxSearchResults caps the candidates returned by Searcher.Search.
const MaxSearchResults = 10

// Searcher resolves free text through an ordered chain of search sources.
type Searcher struct {
	sources []SearchSource
	logger  *log.Logger
}

// NewSearcher creates a searcher over sources in priority order.
func NewSearcher(logger *log.Logger, sources ...SearchSource) *Searcher {
	return &Searcher{sources: sources, logger: logger}
}

// Search returns up to MaxSearchResults candidates. An empty answer from a
// source counts as a miss and the next source is tried. A blank query or
// exhausted chain yields an empty slice, never an error.
func (s *Searcher) Search(ctx context.Context, query string) []models.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}
	}

	for _, src := range s.sources {
		results, err := src.Search(ctx, query)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", query).Str("source", src.Name()).Msg("search failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(results) == 0 {
			s.logger.Debug().Str("query", query).Str("source", src.Name()).Msg("search returned no matches")
			continue
		}
		if len(results) > MaxSearchResults {
			results = results[:MaxSearchResults]
		}
		return results
	}
	return []models.SearchResult{}
}
