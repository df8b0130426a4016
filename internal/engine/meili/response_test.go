package meili

import (
	"testing"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/require"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

func TestNormalizeHitKeepsOnlyMarkedHighlights(t *testing.T) {
	doc := map[string]interface{}{
		"id":    "1",
		"title": "Running Shoes",
		"_formatted": map[string]interface{}{
			"title":       "<mark>Running</mark> Shoes",
			"description": "no match here",
		},
	}
	hit := normalizeHit(doc)

	require.Equal(t, "1", hit.ObjectID)
	require.Equal(t, []string{"<mark>Running</mark> Shoes"}, hit.Highlights["title"])
	require.NotContains(t, hit.Highlights, "description")
	require.NotContains(t, hit.Source, "_formatted")
	require.Equal(t, "Running Shoes", hit.Source["title"])
}

func TestNormalizeSearchResponsePrefersTotalHitsOverEstimate(t *testing.T) {
	resp := &meilisearch.SearchResponse{
		Hits:               []interface{}{map[string]interface{}{"id": "1"}},
		EstimatedTotalHits: 5,
		TotalHits:          2,
	}
	result := normalizeSearchResponse(resp, engine.SearchOptions{Page: 1, PerPage: 10})

	require.Equal(t, 2, result.TotalHits)
	require.Len(t, result.Hits, 1)
	require.Equal(t, []string{}, result.Suggestions)
}

func TestNormalizeSearchResponseFallsBackToEstimateWhenTotalHitsZero(t *testing.T) {
	resp := &meilisearch.SearchResponse{EstimatedTotalHits: 7}
	result := normalizeSearchResponse(resp, engine.SearchOptions{Page: 1, PerPage: 10})
	require.Equal(t, 7, result.TotalHits)
}

func TestNormalizeSearchResponseBuildsFacetDistribution(t *testing.T) {
	resp := &meilisearch.SearchResponse{
		FacetDistribution: map[string]map[string]int64{
			"color": {"red": 3, "blue": 1},
		},
	}
	result := normalizeSearchResponse(resp, engine.SearchOptions{})
	require.Len(t, result.Facets["color"], 2)
}

func TestHighlightAttributesExpandsAllToWildcard(t *testing.T) {
	require.Equal(t, []string{"*"}, highlightAttributes(&engine.Highlight{All: true}))
	require.Equal(t, []string{"title"}, highlightAttributes(&engine.Highlight{Fields: []string{"title"}}))
}
