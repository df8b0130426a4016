package typesense

import (
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v3/typesense/api"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

func normalizeSearchResult(result *api.SearchResult, cfg engine.IndexConfig, opts engine.SearchOptions) *engine.SearchResult {
	var rawHits []api.SearchResultHit
	if result.Hits != nil {
		rawHits = *result.Hits
	}
	hits := make([]engine.Hit, 0, len(rawHits))
	for _, h := range rawHits {
		hits = append(hits, normalizeSearchHit(h, cfg))
	}

	totalHits := 0
	if result.Found != nil {
		totalHits = *result.Found
	}

	out := &engine.SearchResult{
		Hits:        hits,
		TotalHits:   totalHits,
		Page:        opts.Page,
		PerPage:     opts.PerPage,
		TotalPages:  engine.TotalPages(totalHits, opts.PerPage),
		Suggestions: []string{},
	}

	if result.FacetCounts != nil {
		facets := map[string][]engine.FacetValue{}
		for _, fc := range *result.FacetCounts {
			if fc.FieldName == nil || fc.Counts == nil {
				continue
			}
			values := make([]engine.FacetValue, 0, len(*fc.Counts))
			for _, c := range *fc.Counts {
				if c.Value == nil {
					continue
				}
				count := 0
				if c.Count != nil {
					count = *c.Count
				}
				values = append(values, engine.FacetValue{Value: *c.Value, Count: count})
			}
			facets[*fc.FieldName] = values
		}
		out.Facets = facets
	}
	return out
}

func normalizeSearchHit(h api.SearchResultHit, cfg engine.IndexConfig) engine.Hit {
	var doc map[string]interface{}
	if h.Document != nil {
		doc = *h.Document
	}
	hit := normalizeDocument(doc, cfg)
	hit.Highlights = extractHighlights(h)
	return hit
}

// extractHighlights accepts both the native per-field highlight object and
// the legacy per-field array form, per spec.md §4.H.
func extractHighlights(h api.SearchResultHit) map[string][]string {
	out := map[string][]string{}
	if h.Highlight != nil {
		for field, v := range *h.Highlight {
			entry, ok := v.(map[string]interface{})
			if !ok {
				continue
			}
			if snippet, ok := entry["snippet"].(string); ok {
				out[field] = []string{snippet}
			} else if value, ok := entry["value"].(string); ok {
				out[field] = []string{value}
			}
		}
	}
	if h.Highlights != nil {
		for _, legacy := range *h.Highlights {
			if legacy.Field == nil {
				continue
			}
			if legacy.Snippet != nil {
				out[*legacy.Field] = append(out[*legacy.Field], *legacy.Snippet)
			}
			if legacy.Snippets != nil {
				out[*legacy.Field] = append(out[*legacy.Field], (*legacy.Snippets)...)
			}
		}
	}
	return out
}

// normalizeDocument rewrites configured date fields from
// seconds-since-epoch to ISO strings, per spec.md §4.H.
func normalizeDocument(doc map[string]interface{}, cfg engine.IndexConfig) engine.Hit {
	id := fmt.Sprintf("%v", doc["id"])
	source := make(map[string]interface{}, len(doc))
	for field, v := range doc {
		source[field] = v
		if fc, ok := cfg.Fields[field]; ok && fc.DateField {
			if seconds, ok := toFloat(v); ok {
				source[field] = time.Unix(int64(seconds), 0).UTC().Format(time.RFC3339)
			}
		}
	}
	return engine.Hit{ObjectID: id, Source: source}
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

func extractFacetCounts(result *api.SearchResult, field string, maxValues int) []engine.FacetValue {
	if result.FacetCounts == nil {
		return nil
	}
	for _, fc := range *result.FacetCounts {
		if fc.FieldName == nil || *fc.FieldName != field || fc.Counts == nil {
			continue
		}
		out := make([]engine.FacetValue, 0, len(*fc.Counts))
		for i, c := range *fc.Counts {
			if i >= maxValues || c.Value == nil {
				break
			}
			count := 0
			if c.Count != nil {
				count = *c.Count
			}
			out = append(out, engine.FacetValue{Value: *c.Value, Count: count})
		}
		return out
	}
	return nil
}
