package meili

import (
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

func highlightAttributes(h *engine.Highlight) []string {
	if h.All {
		return []string{"*"}
	}
	return h.Fields
}

func normalizeSearchResponse(resp *meilisearch.SearchResponse, opts engine.SearchOptions) *engine.SearchResult {
	hits := make([]engine.Hit, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		doc, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		hits = append(hits, normalizeHit(doc))
	}

	totalHits := int(resp.EstimatedTotalHits)
	if resp.TotalHits > 0 {
		totalHits = int(resp.TotalHits)
	}

	result := &engine.SearchResult{
		Hits:        hits,
		TotalHits:   totalHits,
		Page:        opts.Page,
		PerPage:     opts.PerPage,
		TotalPages:  engine.TotalPages(totalHits, opts.PerPage),
		Suggestions: []string{}, // spec.md §4.G: Meilisearch suggestions are always empty
	}

	if facetDistribution := facetDistributionMap(resp.FacetDistribution); len(facetDistribution) > 0 {
		facets := map[string][]engine.FacetValue{}
		for field, dist := range facetDistribution {
			values := make([]engine.FacetValue, 0, len(dist))
			for value, count := range dist {
				values = append(values, engine.FacetValue{Value: value, Count: count})
			}
			facets[field] = values
		}
		result.Facets = facets
	}
	return result
}

// facetDistributionMap normalizes SearchResponse.FacetDistribution, which
// meilisearch-go types as interface{}: it arrives as map[string]interface{}
// (nested map[string]interface{} with float64 counts) when decoded from a
// live API response, or as a concrete map[string]map[string]int64 when
// constructed directly in Go.
func facetDistributionMap(raw interface{}) map[string]map[string]int {
	switch v := raw.(type) {
	case map[string]map[string]int64:
		out := make(map[string]map[string]int, len(v))
		for field, dist := range v {
			d := make(map[string]int, len(dist))
			for value, count := range dist {
				d[value] = int(count)
			}
			out[field] = d
		}
		return out
	case map[string]interface{}:
		out := make(map[string]map[string]int, len(v))
		for field, distRaw := range v {
			dist, ok := distRaw.(map[string]interface{})
			if !ok {
				continue
			}
			d := make(map[string]int, len(dist))
			for value, countRaw := range dist {
				count, ok := countRaw.(float64)
				if !ok {
					continue
				}
				d[value] = int(count)
			}
			out[field] = d
		}
		return out
	default:
		return nil
	}
}

// normalizeHit extracts only the _formatted entries that actually contain
// a <mark> tag (spec.md §4.G): unmarked fields mean Meilisearch found no
// match to highlight, and the gateway treats that as "no highlight" rather
// than echoing the plain value back under _highlights.
func normalizeHit(doc map[string]interface{}) engine.Hit {
	id := fmt.Sprintf("%v", doc[primaryKeyField])
	highlights := map[string][]string{}
	if formatted, ok := doc["_formatted"].(map[string]interface{}); ok {
		for field, v := range formatted {
			s, ok := v.(string)
			if !ok || !strings.Contains(s, "<mark>") {
				continue
			}
			highlights[field] = []string{s}
		}
	}
	source := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k == "_formatted" {
			continue
		}
		source[k] = v
	}
	return engine.Hit{ObjectID: id, Index: "", Highlights: highlights, Source: source}
}

func normalizeDocument(doc map[string]interface{}) engine.Hit {
	return normalizeHit(doc)
}
