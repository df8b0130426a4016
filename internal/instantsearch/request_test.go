package instantsearch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platformbuilds/search-gateway/internal/engine"
)

func TestToSearchOptionsParamsQueryOverridesTopLevel(t *testing.T) {
	paramQuery := "from params"
	sr := SingleRequest{Query: "top level", Params: &Params{Query: &paramQuery}}
	query, _ := sr.ToSearchOptions(nil)
	require.Equal(t, "from params", query)
}

func TestToSearchOptionsPageIsZeroIndexed(t *testing.T) {
	page := 2
	sr := SingleRequest{Params: &Params{Page: &page}}
	_, opts := sr.ToSearchOptions(nil)
	require.Equal(t, 3, opts.Page)
}

func TestToSearchOptionsFacetsWildcardUsesDefaults(t *testing.T) {
	sr := SingleRequest{Params: &Params{Facets: []interface{}{"*"}}}
	_, opts := sr.ToSearchOptions([]string{"brand", "color"})
	require.Equal(t, []string{"brand", "color"}, opts.Facets)
}

func TestParseFacetFiltersANDandOR(t *testing.T) {
	raw := []interface{}{
		"brand:apple",
		[]interface{}{"color:red", "color:blue"},
		"-discontinued:true",
	}
	out := parseFacetFilters(raw)
	require.Equal(t, "apple", out["brand"])
	require.ElementsMatch(t, []string{"red", "blue"}, out["color"])
	require.NotContains(t, out, "discontinued")
}

func TestMergeNumericFiltersBuildsMinMax(t *testing.T) {
	filters := map[string]interface{}{}
	mergeNumericFilters(filters, []string{"price>=10", "price<=50"})
	rf, ok := filters["price"].(engine.RangeFilter)
	require.True(t, ok)
	require.NotNil(t, rf.Min)
	require.NotNil(t, rf.Max)
	require.Equal(t, 10.0, *rf.Min)
	require.Equal(t, 50.0, *rf.Max)
}

func TestHighlightTagsDefaultsToEm(t *testing.T) {
	sr := SingleRequest{}
	pre, post := sr.HighlightTags()
	require.Equal(t, "<em>", pre)
	require.Equal(t, "</em>", post)
}
