package orchestrator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/platformbuilds/search-gateway/internal/alias"
	"github.com/platformbuilds/search-gateway/internal/engine"
)

func newTestContext(t *testing.T, rawQuery string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/products/search?"+rawQuery, nil)
	return c
}

func newHandleContext(cfg engine.IndexConfig, aliases *alias.Map) *handleContext {
	return &handleContext{cfg: cfg, aliases: aliases}
}

func TestBuildSearchOptionsDefaultsPerPageFromIndexConfig(t *testing.T) {
	hc := newHandleContext(engine.IndexConfig{Defaults: engine.Defaults{PerPage: 50}}, nil)
	_, opts, err := hc.buildSearchOptions(newTestContext(t, "q=shoes"))
	require.NoError(t, err)
	require.Equal(t, 50, opts.PerPage)
}

func TestBuildSearchOptionsFallsBackToEngineDefaultPerPage(t *testing.T) {
	hc := newHandleContext(engine.IndexConfig{}, nil)
	_, opts, err := hc.buildSearchOptions(newTestContext(t, "q=shoes"))
	require.NoError(t, err)
	require.Equal(t, defaultPerPage, opts.PerPage)
}

func TestBuildSearchOptionsQueryStringOverridesIndexDefault(t *testing.T) {
	hc := newHandleContext(engine.IndexConfig{Defaults: engine.Defaults{PerPage: 50}}, nil)
	_, opts, err := hc.buildSearchOptions(newTestContext(t, "q=shoes&perPage=5"))
	require.NoError(t, err)
	require.Equal(t, 5, opts.PerPage)
}

func TestBuildSearchOptionsClampsPageToAtLeastOne(t *testing.T) {
	hc := newHandleContext(engine.IndexConfig{}, nil)
	_, opts, err := hc.buildSearchOptions(newTestContext(t, "q=shoes&page=-3"))
	require.NoError(t, err)
	require.Equal(t, 1, opts.Page)
}

func TestBuildSearchOptionsUsesDerivedBoostsWhenNoneRequested(t *testing.T) {
	derived := orderedmap.New[string, float64]()
	derived.Set("title", 2)
	hc := newHandleContext(engine.IndexConfig{}, nil)
	hc.derivedBoosts = derived

	_, opts, err := hc.buildSearchOptions(newTestContext(t, "q=shoes"))
	require.NoError(t, err)
	require.Equal(t, derived, opts.Boosts)
}

func TestAliasInboundTranslatesFacetsAndFilters(t *testing.T) {
	aliases, err := alias.New(map[string]string{"title": "name"})
	require.NoError(t, err)
	hc := newHandleContext(engine.IndexConfig{}, aliases)

	opts := engine.SearchOptions{
		Facets:  []string{"title"},
		Filters: map[string]interface{}{"title": "shoes"},
	}
	out := hc.aliasInbound(opts)
	require.Equal(t, []string{"name"}, out.Facets)
	require.Equal(t, "shoes", out.Filters["name"])
}

func TestOutboundAliasResultTranslatesFacetKeysAndHitHighlights(t *testing.T) {
	aliases, err := alias.New(map[string]string{"title": "name"})
	require.NoError(t, err)
	hc := newHandleContext(engine.IndexConfig{}, aliases)

	result := &engine.SearchResult{
		Facets: map[string][]engine.FacetValue{"name": {{Value: "shoes", Count: 1}}},
		Hits:   []engine.Hit{{ObjectID: "1", Highlights: map[string][]string{"name": {"<mark>Shoes</mark>"}}}},
	}
	hc.outboundAliasResult(result)
	require.Contains(t, result.Facets, "title")
	require.Contains(t, result.Hits[0].Highlights, "title")
}

func TestResolveHighlightQueryStringOverridesIndexDefault(t *testing.T) {
	hc := newHandleContext(engine.IndexConfig{Defaults: engine.Defaults{Highlight: true}}, nil)
	h := hc.resolveHighlight(newTestContext(t, "highlight=false"))
	require.Nil(t, h)
}

func TestResolveHighlightFallsBackToIndexDefault(t *testing.T) {
	hc := newHandleContext(engine.IndexConfig{Defaults: engine.Defaults{Highlight: true}}, nil)
	h := hc.resolveHighlight(newTestContext(t, ""))
	require.NotNil(t, h)
	require.True(t, h.All)
}

func TestCsvOrDefaultFallsBackWhenQueryParamAbsent(t *testing.T) {
	require.Equal(t, []string{"brand", "color"}, csvOrDefault("", []string{"brand", "color"}))
	require.Equal(t, []string{"brand"}, csvOrDefault("brand", []string{"color"}))
}
