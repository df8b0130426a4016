package orchestrator

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/platformbuilds/search-gateway/internal/alias"
	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/validate"
)

// buildSearchOptions parses and validates the /search query parameters,
// applies the defaults precedence (query-string > index defaults >
// derived-from-fields > engine default, spec.md §4.I step 3), and applies
// inbound alias translation (step 4).
func (hc *handleContext) buildSearchOptions(c *gin.Context) (string, engine.SearchOptions, error) {
	query := c.Query("q")

	page := validate.ClampPage(atoiOr(c.Query("page"), 1))

	perPage := 0
	if raw := c.Query("perPage"); raw != "" {
		perPage = atoiOr(raw, 0)
	} else if hc.cfg.Defaults.PerPage > 0 {
		perPage = hc.cfg.Defaults.PerPage
	} else {
		perPage = defaultPerPage
	}
	perPage = validate.ClampPerPage(perPage)

	sort, err := validate.ParseSort(c.Query("sort"))
	if err != nil {
		return "", engine.SearchOptions{}, err
	}

	facets := csvOrDefault(c.Query("facets"), hc.cfg.Defaults.Facets)

	filters, err := validate.ParseFilters(c.Query("filters"))
	if err != nil {
		return "", engine.SearchOptions{}, err
	}

	highlight := hc.resolveHighlight(c)

	attributesToRetrieve := csvOrNil(c.Query("fields"))

	suggest := validate.ParseBool(c.Query("suggest"), false)

	boosts, err := validate.ParseBoosts(c.Query("boosts"))
	if err != nil {
		return "", engine.SearchOptions{}, err
	}
	if boosts == nil {
		boosts = hc.derivedBoosts
	}

	histogram, err := validate.ParseHistogram(c.Query("histogram"))
	if err != nil {
		return "", engine.SearchOptions{}, err
	}

	geoGrid, err := validate.ParseGeoGrid(c.Query("geoGrid"))
	if err != nil {
		return "", engine.SearchOptions{}, err
	}

	opts := engine.SearchOptions{
		Page:                 page,
		PerPage:              perPage,
		Sort:                 sort,
		Facets:               facets,
		Filters:              filters,
		Highlight:            highlight,
		AttributesToRetrieve: attributesToRetrieve,
		Suggest:              suggest,
		Boosts:               boosts,
		SearchableFields:     hc.searchableFields,
		Histogram:            histogram,
		GeoGrid:              geoGrid,
	}
	return query, hc.aliasInbound(opts), nil
}

// aliasInbound applies inbound alias translation (spec.md §4.I step 4) to
// every field-name-bearing option: sort keys, facets, filters keys,
// boosts keys, attributesToRetrieve, histogram keys, and geoGrid.field.
// Both the query-string search path and the InstantSearch path funnel
// through this one function so the two stay in sync.
func (hc *handleContext) aliasInbound(opts engine.SearchOptions) engine.SearchOptions {
	opts.Sort = alias.OrderedKeysToBackend(hc.aliases, opts.Sort)
	opts.Facets = hc.aliases.ArrayToBackend(opts.Facets)
	opts.Filters = hc.aliases.KeysToBackend(opts.Filters)
	opts.AttributesToRetrieve = hc.aliases.ArrayToBackend(opts.AttributesToRetrieve)
	opts.Boosts = alias.OrderedKeysToBackend(hc.aliases, opts.Boosts)
	opts.SearchableFields = hc.aliases.ArrayToBackend(opts.SearchableFields)
	opts.Histogram = aliasHistogramKeys(hc.aliases, opts.Histogram)
	if opts.GeoGrid != nil {
		geoGrid := *opts.GeoGrid
		geoGrid.Field = hc.aliases.ToBackend(geoGrid.Field)
		opts.GeoGrid = &geoGrid
	}
	return opts
}

// resolveHighlight applies the query-string > index-default precedence
// for the boolean-or-field-list highlight option (spec.md §3).
func (hc *handleContext) resolveHighlight(c *gin.Context) *engine.Highlight {
	if raw, ok := c.GetQuery("highlight"); ok {
		on := raw == "true"
		if !on {
			return nil
		}
		return &engine.Highlight{All: true}
	}
	if hc.cfg.Defaults.Highlight {
		return &engine.Highlight{All: true}
	}
	return nil
}

func aliasHistogramKeys(m *alias.Map, histogram map[string]int) map[string]int {
	if m.Empty() || histogram == nil {
		return histogram
	}
	out := make(map[string]int, len(histogram))
	for field, interval := range histogram {
		out[m.ToBackend(field)] = interval
	}
	return out
}

func atoiOr(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func csvOrNil(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func csvOrDefault(raw string, def []string) []string {
	if raw == "" {
		return def
	}
	return csvOrNil(raw)
}

// outboundAliasResult applies outbound alias translation (spec.md §4.I
// step 7) to facets, histograms, and each hit's highlight keys, including
// sample hits nested inside geo-clusters.
func (hc *handleContext) outboundAliasResult(result *engine.SearchResult) {
	if result == nil {
		return
	}
	if !hc.aliases.Empty() {
		if result.Facets != nil {
			aliased := make(map[string][]engine.FacetValue, len(result.Facets))
			for field, values := range result.Facets {
				aliased[hc.aliases.FromBackend(field)] = values
			}
			result.Facets = aliased
		}
		if result.Histograms != nil {
			aliased := make(map[string][]engine.HistogramBucket, len(result.Histograms))
			for field, buckets := range result.Histograms {
				aliased[hc.aliases.FromBackend(field)] = buckets
			}
			result.Histograms = aliased
		}
	}
	for i := range result.Hits {
		hc.aliasHitHighlights(&result.Hits[i])
	}
	for i := range result.GeoClusters {
		if result.GeoClusters[i].Hit != nil {
			hc.aliasHitHighlights(result.GeoClusters[i].Hit)
		}
	}
}

func (hc *handleContext) aliasHitHighlights(hit *engine.Hit) {
	if hc.aliases.Empty() || hit.Highlights == nil {
		return
	}
	aliased := make(map[string][]string, len(hit.Highlights))
	for field, fragments := range hit.Highlights {
		aliased[hc.aliases.FromBackend(field)] = fragments
	}
	hit.Highlights = aliased
}
