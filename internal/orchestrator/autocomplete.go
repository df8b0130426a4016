package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

// autocomplete runs the hits query concurrently with one facet-value
// prefix lookup per requested facet field, joining all of them before
// returning — a single failed child surfaces as the whole call's error
// (spec.md §4.I, §5), grounded on escuse-me's errgroup.WithContext fan-out
// in cmd/escuse-me/cmds/serve.go's runConfigFileHandler.
func (hc *handleContext) autocomplete(ctx context.Context, query string, opts engine.SearchOptions, facetFields []string) (*engine.SearchResult, map[string][]engine.FacetValue, error) {
	g, gctx := errgroup.WithContext(ctx)

	var result *engine.SearchResult
	g.Go(func() error {
		r, err := hc.engine.Search(gctx, query, opts)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	facetResults := make([][]engine.FacetValue, len(facetFields))
	for i, field := range facetFields {
		i, field := i, field
		g.Go(func() error {
			values, err := hc.engine.SearchFacetValues(gctx, field, query, engine.FacetValuesOptions{Filters: opts.Filters})
			if err != nil {
				return err
			}
			facetResults[i] = values
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	facetValues := make(map[string][]engine.FacetValue, len(facetFields))
	for i, field := range facetFields {
		facetValues[field] = facetResults[i]
	}
	return result, facetValues, nil
}
