package elastic

import (
	"testing"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

func TestBuildSearchBodyDisjunctiveFaceting(t *testing.T) {
	opts := engine.SearchOptions{
		Page:    1,
		PerPage: 10,
		Facets:  []string{"category", "period"},
		Filters: map[string]interface{}{"category": "painting"},
	}
	cfg := engine.IndexConfig{Indices: []string{"catalog"}}

	body := buildSearchBody("", opts, cfg, nil)

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Empty(t, boolQuery["filter"].([]interface{}))

	postFilter := body["post_filter"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, postFilter["filter"].([]interface{}), 1)

	aggs := body["aggs"].(map[string]interface{})
	// category's own aggregation is NOT wrapped in a filter: it is narrowed
	// only by *other* facets' active filters, and there are none here.
	categoryAgg, ok := aggs["category"].(map[string]interface{})
	require.True(t, ok)
	_, hasTerms := categoryAgg["terms"]
	assert.True(t, hasTerms, "category facet aggregation should be plain terms (its own filter is excluded)")

	// period's aggregation must be narrowed by category's active filter.
	periodAgg, ok := aggs["period"].(map[string]interface{})
	require.True(t, ok)
	_, hasFilter := periodAgg["filter"]
	assert.True(t, hasFilter, "period facet aggregation should be wrapped in category's filter")
}

func TestBuildSearchBodyBoosts(t *testing.T) {
	boosts := orderedmap.New[string, float64]()
	boosts.Set("title", 10)
	boosts.Set("description", 2)
	opts := engine.SearchOptions{Page: 1, PerPage: 10, Boosts: boosts}

	body := buildSearchBody("castle", opts, engine.IndexConfig{}, nil)
	multiMatch := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["must"].([]interface{})[0].(map[string]interface{})["multi_match"].(map[string]interface{})

	assert.Equal(t, "bool_prefix", multiMatch["type"])
	assert.Equal(t, []string{"title^10", "description^2"}, multiMatch["fields"])
}

func TestBuildSortResolvesKeywordSubfield(t *testing.T) {
	sort := orderedmap.New[string, string]()
	sort.Set("title", "asc")
	opts := engine.SearchOptions{Page: 1, PerPage: 10, Sort: sort}
	cfg := engine.IndexConfig{Indices: []string{"catalog"}}
	mapping := map[string]interface{}{
		"catalog": map[string]interface{}{
			"mappings": map[string]interface{}{
				"properties": map[string]interface{}{
					"title": map[string]interface{}{
						"type":   "text",
						"fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword"}},
					},
				},
			},
		},
	}

	body := buildSearchBody("test", opts, cfg, mapping)
	sortClauses := body["sort"].([]interface{})
	require.Len(t, sortClauses, 1)
	clause := sortClauses[0].(map[string]interface{})
	_, ok := clause["title.keyword"]
	assert.True(t, ok)
}

func TestBuildSearchBodyEmptyQueryIsMatchAll(t *testing.T) {
	opts := engine.SearchOptions{Page: 1, PerPage: 10}
	body := buildSearchBody("", opts, engine.IndexConfig{}, nil)
	must := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["must"].([]interface{})
	_, ok := must[0].(map[string]interface{})["match_all"]
	assert.True(t, ok)
}

func TestNormalizeHitMetadataNotOverwrittenBySource(t *testing.T) {
	hit := normalizeHit(map[string]interface{}{
		"_id":    "42",
		"_index": "catalog",
		"_score": 1.5,
		"_source": map[string]interface{}{
			"objectID": "should-be-ignored",
			"_index":   "should-be-ignored",
			"title":    "a painting",
		},
	})
	assert.Equal(t, "42", hit.ObjectID)
	assert.Equal(t, "catalog", hit.Index)
}

func TestCaseInsensitiveContainsRegex(t *testing.T) {
	regex := caseInsensitiveContainsRegex("ab")
	assert.Equal(t, ".*[aA][bB].*", regex)
}
