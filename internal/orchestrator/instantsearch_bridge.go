package orchestrator

import (
	"context"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

// RunQuery looks up handle, applies inbound alias translation to opts
// (already built in public field names), dispatches to the engine, and
// applies outbound alias translation to the result — the same pipeline
// Search uses, minus the HTTP-specific parameter parsing and caching,
// reused by Registry.InstantSearch's per-request fan-out (instantsearch.go).
func (r *Registry) RunQuery(ctx context.Context, handle, query string, opts engine.SearchOptions) (*engine.SearchResult, error) {
	hc, err := r.lookup(handle)
	if err != nil {
		return nil, err
	}
	opts = hc.aliasInbound(opts)
	result, err := hc.engine.Search(ctx, query, opts)
	recordEngineOutcome(handle, hc.cfg.Kind, err)
	if err != nil {
		return nil, err
	}
	hc.outboundAliasResult(result)
	return result, nil
}

// DefaultFacets returns the configured default facets for handle, used
// by InstantSearch's `facets: ["*"]` sentinel (spec.md §4.J).
func (r *Registry) DefaultFacets(handle string) []string {
	hc, err := r.lookup(handle)
	if err != nil {
		return nil
	}
	return hc.cfg.Defaults.Facets
}
