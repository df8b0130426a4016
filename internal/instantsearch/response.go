package instantsearch

import (
	"strings"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

// Result is one Algolia-shaped entry of the /1/indexes/*/queries response.
type Result struct {
	Hits             []map[string]interface{} `json:"hits"`
	NbHits           int                       `json:"nbHits"`
	Page             int                       `json:"page"`
	HitsPerPage      int                       `json:"hitsPerPage"`
	NbPages          int                       `json:"nbPages"`
	Facets           map[string]map[string]int `json:"facets,omitempty"`
	ExhaustiveNbHits bool                      `json:"exhaustiveNbHits"`
	ProcessingTimeMS int64                     `json:"processingTimeMS"`
	Query            string                    `json:"query"`
	IndexName        string                    `json:"index"`
}

// FromSearchResult renders the gateway's normalized SearchResult in
// Algolia's response shape (spec.md §4.J response translation).
func FromSearchResult(result *engine.SearchResult, indexName, query, preTag, postTag string, processingTimeMS int64) Result {
	hits := make([]map[string]interface{}, 0, len(result.Hits))
	for _, hit := range result.Hits {
		hits = append(hits, renderHit(hit, preTag, postTag))
	}

	var facets map[string]map[string]int
	if len(result.Facets) > 0 {
		facets = make(map[string]map[string]int, len(result.Facets))
		for field, values := range result.Facets {
			counts := make(map[string]int, len(values))
			for _, v := range values {
				counts[v.Value] = v.Count
			}
			facets[field] = counts
		}
	}

	return Result{
		Hits:             hits,
		NbHits:           result.TotalHits,
		Page:             result.Page - 1,
		HitsPerPage:      result.PerPage,
		NbPages:          result.TotalPages,
		Facets:           facets,
		ExhaustiveNbHits: true,
		ProcessingTimeMS: processingTimeMS,
		Query:            query,
		IndexName:        indexName,
	}
}

// renderHit drops _index/_score/_highlights, keeps objectID + source
// fields, and builds _highlightResult from the normalized highlight
// fragments (spec.md §4.J).
func renderHit(hit engine.Hit, preTag, postTag string) map[string]interface{} {
	out := make(map[string]interface{}, len(hit.Source)+2)
	for k, v := range hit.Source {
		out[k] = v
	}
	out["objectID"] = hit.ObjectID

	highlightResult := make(map[string]interface{}, len(hit.Highlights))
	for field, fragments := range hit.Highlights {
		highlightResult[field] = renderHighlightEntry(fragments, preTag, postTag)
	}
	out["_highlightResult"] = highlightResult
	return out
}

func renderHighlightEntry(fragments []string, preTag, postTag string) map[string]interface{} {
	matchLevel := "none"
	value := ""
	if len(fragments) > 0 {
		matchLevel = "full"
		joined := strings.Join(fragments, " ... ")
		joined = strings.ReplaceAll(joined, "<mark>", preTag)
		value = strings.ReplaceAll(joined, "</mark>", postTag)
	}
	return map[string]interface{}{"value": value, "matchLevel": matchLevel}
}
