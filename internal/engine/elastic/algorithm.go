package elastic

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/geotile"
)

// buildSearchBody implements spec.md §4.F.1 in full: text clause, filter
// partitioning for disjunctive faceting, facet aggregations with
// exclusion wrapping, histogram/geo-grid aggregations, mapping-driven
// sort resolution, highlight, suggest, and pagination.
func buildSearchBody(query string, opts engine.SearchOptions, cfg engine.IndexConfig, mapping map[string]interface{}) map[string]interface{} {
	facetSet := make(map[string]bool, len(opts.Facets))
	for _, f := range opts.Facets {
		facetSet[f] = true
	}

	facetFilterMap := map[string][]map[string]interface{}{}
	var nonFacetFilters []map[string]interface{}
	for field, value := range opts.Filters {
		clause := filterClause(field, value, cfg)
		if facetSet[field] {
			facetFilterMap[field] = append(facetFilterMap[field], clause)
		} else {
			nonFacetFilters = append(nonFacetFilters, clause)
		}
	}

	if opts.GeoGrid != nil {
		nonFacetFilters = append(nonFacetFilters, geoBoundingBoxFilter(opts.GeoGrid))
	}

	boolQuery := map[string]interface{}{
		"must":   []interface{}{buildTextClause(query, opts)},
		"filter": toClauseSlice(nonFacetFilters),
	}
	body := map[string]interface{}{"query": map[string]interface{}{"bool": boolQuery}}

	if len(facetFilterMap) > 0 {
		var allFacetFilters []map[string]interface{}
		for _, clauses := range facetFilterMap {
			allFacetFilters = append(allFacetFilters, clauses...)
		}
		body["post_filter"] = map[string]interface{}{"bool": map[string]interface{}{"filter": toClauseSlice(allFacetFilters)}}
	}

	if aggs := buildFacetAggs(opts.Facets, facetFilterMap, cfg); len(aggs) > 0 {
		body["aggs"] = aggs
	}
	for field, interval := range opts.Histogram {
		setAgg(body, "__histogram_"+field, map[string]interface{}{
			"histogram": map[string]interface{}{"field": field, "interval": interval, "min_doc_count": 1},
		})
	}
	if opts.GeoGrid != nil {
		setAgg(body, "__geo_grid", geoTileGridAgg(opts.GeoGrid))
	}

	if opts.Sort != nil && opts.Sort.Len() > 0 {
		body["sort"] = buildSort(opts.Sort, mapping, firstIndexName(cfg))
	}

	if opts.Highlight != nil {
		body["highlight"] = buildHighlight(opts.Highlight)
	}

	if opts.Suggest && strings.TrimSpace(query) != "" && cfg.Defaults.SuggestField != "" {
		body["suggest"] = map[string]interface{}{
			"text": query,
			"__suggest": map[string]interface{}{
				"phrase": map[string]interface{}{
					"field":     cfg.Defaults.SuggestField,
					"size":      3,
					"gram_size": 3,
				},
			},
		}
	}

	body["from"] = (opts.Page - 1) * opts.PerPage
	body["size"] = opts.PerPage
	return body
}

func setAgg(body map[string]interface{}, name string, agg map[string]interface{}) {
	aggs, _ := body["aggs"].(map[string]interface{})
	if aggs == nil {
		aggs = map[string]interface{}{}
	}
	aggs[name] = agg
	body["aggs"] = aggs
}

func buildTextClause(query string, opts engine.SearchOptions) map[string]interface{} {
	if strings.TrimSpace(query) == "" {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	var fields []string
	if opts.Boosts != nil && opts.Boosts.Len() > 0 {
		for pair := opts.Boosts.Oldest(); pair != nil; pair = pair.Next() {
			fields = append(fields, pair.Key+"^"+trimFloat(pair.Value))
		}
	} else if len(opts.SearchableFields) > 0 {
		fields = opts.SearchableFields
	} else {
		fields = []string{"*"}
	}
	return map[string]interface{}{
		"multi_match": map[string]interface{}{
			"query":  query,
			"type":   "bool_prefix",
			"fields": fields,
		},
	}
}

func filterClause(field string, value interface{}, cfg engine.IndexConfig) map[string]interface{} {
	clause := rawFilterClause(field, value)
	if nested := cfg.Fields[field].Nested; nested != "" {
		return map[string]interface{}{"nested": map[string]interface{}{"path": nested, "query": clause}}
	}
	return clause
}

func rawFilterClause(field string, value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case string:
		return map[string]interface{}{"term": map[string]interface{}{field: v}}
	case []string:
		values := make([]interface{}, len(v))
		for i, s := range v {
			values[i] = s
		}
		return map[string]interface{}{"terms": map[string]interface{}{field: values}}
	case bool:
		return map[string]interface{}{"term": map[string]interface{}{field: v}}
	case engine.RangeFilter:
		rangeBody := map[string]interface{}{}
		if v.Min != nil {
			rangeBody["gte"] = *v.Min
		}
		if v.Max != nil {
			rangeBody["lte"] = *v.Max
		}
		return map[string]interface{}{"range": map[string]interface{}{field: rangeBody}}
	default:
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
}

func facetTermsAgg(field string, cfg engine.IndexConfig) map[string]interface{} {
	terms := map[string]interface{}{"terms": map[string]interface{}{"field": field, "size": 100}}
	if nested := cfg.Fields[field].Nested; nested != "" {
		return map[string]interface{}{
			"nested": map[string]interface{}{"path": nested},
			"aggs":   map[string]interface{}{field: terms},
		}
	}
	return terms
}

// buildFacetAggs implements disjunctive faceting (spec.md §4.F.1): each
// facet's aggregation excludes only its own active filter, so a user
// refining one facet still sees the full set of alternatives for it.
func buildFacetAggs(facets []string, facetFilterMap map[string][]map[string]interface{}, cfg engine.IndexConfig) map[string]interface{} {
	if len(facets) == 0 {
		return nil
	}
	aggs := map[string]interface{}{}
	for _, f := range facets {
		termsAgg := facetTermsAgg(f, cfg)
		if len(facetFilterMap) == 0 {
			aggs[f] = termsAgg
			continue
		}
		var otherClauses []map[string]interface{}
		for field, clauses := range facetFilterMap {
			if field == f {
				continue
			}
			otherClauses = append(otherClauses, clauses...)
		}
		if len(otherClauses) == 0 {
			aggs[f] = termsAgg
			continue
		}
		aggs[f] = map[string]interface{}{
			"filter": map[string]interface{}{"bool": map[string]interface{}{"filter": toClauseSlice(otherClauses)}},
			"aggs":   map[string]interface{}{f: termsAgg},
		}
	}
	return aggs
}

func geoBoundingBoxFilter(g *engine.GeoGrid) map[string]interface{} {
	return map[string]interface{}{
		"geo_bounding_box": map[string]interface{}{
			g.Field: map[string]interface{}{
				"top_left":     map[string]interface{}{"lat": g.TopLeft.Lat, "lon": g.TopLeft.Lon},
				"bottom_right": map[string]interface{}{"lat": g.BottomRight.Lat, "lon": g.BottomRight.Lon},
			},
		},
	}
}

func geoTileGridAgg(g *engine.GeoGrid) map[string]interface{} {
	return map[string]interface{}{
		"geotile_grid": map[string]interface{}{
			"field":     g.Field,
			"precision": g.Precision,
			"bounds": map[string]interface{}{
				"top_left":     map[string]interface{}{"lat": g.TopLeft.Lat, "lon": g.TopLeft.Lon},
				"bottom_right": map[string]interface{}{"lat": g.BottomRight.Lat, "lon": g.BottomRight.Lon},
			},
		},
		"aggs": map[string]interface{}{
			"sample": map[string]interface{}{"top_hits": map[string]interface{}{"size": 1}},
		},
	}
}

func buildHighlight(h *engine.Highlight) map[string]interface{} {
	fields := map[string]interface{}{}
	if h.All {
		fields["*"] = map[string]interface{}{}
	} else {
		for _, f := range h.Fields {
			fields[f] = map[string]interface{}{}
		}
	}
	return map[string]interface{}{
		"pre_tags":  []string{"<mark>"},
		"post_tags": []string{"</mark>"},
		"fields":    fields,
	}
}

func buildSort(sort *orderedmap.OrderedMap[string, string], mapping map[string]interface{}, firstIndex string) []interface{} {
	out := make([]interface{}, 0, sort.Len())
	for pair := sort.Oldest(); pair != nil; pair = pair.Next() {
		field := resolveSortField(pair.Key, mapping, firstIndex)
		out = append(out, map[string]interface{}{field: map[string]interface{}{"order": pair.Value}})
	}
	return out
}

// resolveSortField implements the §4.F.1 sort-field resolver: a text
// field with a .keyword sub-field sorts on field.keyword. Per spec.md §9's
// documented open question, only the *first* configured index's mapping
// is ever consulted for cross-index handles — reproduced here, not fixed.
func resolveSortField(field string, mapping map[string]interface{}, firstIndex string) string {
	if mapping == nil {
		return field
	}
	idxMapping, ok := mapping[firstIndex].(map[string]interface{})
	if !ok {
		return field
	}
	mappings, ok := idxMapping["mappings"].(map[string]interface{})
	if !ok {
		return field
	}
	properties, ok := mappings["properties"].(map[string]interface{})
	if !ok {
		return field
	}
	fieldDef, ok := properties[field].(map[string]interface{})
	if !ok {
		return field
	}
	if t, _ := fieldDef["type"].(string); t != "text" {
		return field
	}
	if subFields, ok := fieldDef["fields"].(map[string]interface{}); ok {
		if _, ok := subFields["keyword"]; ok {
			return field + ".keyword"
		}
	}
	return field
}

func firstIndexName(cfg engine.IndexConfig) string {
	if len(cfg.Indices) == 0 {
		return ""
	}
	return cfg.Indices[0]
}

// buildFacetValuesBody implements the facet type-ahead search (spec.md
// §4.F.4): a size-0 search whose single aggregation filters terms by a
// case-insensitive regex built from prefix.
func buildFacetValuesBody(field, prefix string, opts engine.FacetValuesOptions, cfg engine.IndexConfig) map[string]interface{} {
	regex := caseInsensitiveContainsRegex(prefix)
	termsAgg := map[string]interface{}{
		"terms": map[string]interface{}{"field": field, "size": opts.MaxValues, "include": regex},
	}
	if nested := cfg.Fields[field].Nested; nested != "" {
		termsAgg = map[string]interface{}{
			"nested": map[string]interface{}{"path": nested},
			"aggs":   map[string]interface{}{"facet_values": termsAgg},
		}
	}

	var queryClause map[string]interface{}
	if len(opts.Filters) > 0 {
		var clauses []map[string]interface{}
		for f, v := range opts.Filters {
			clauses = append(clauses, filterClause(f, v, cfg))
		}
		queryClause = map[string]interface{}{"bool": map[string]interface{}{"filter": toClauseSlice(clauses)}}
	} else {
		queryClause = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	return map[string]interface{}{
		"size":  0,
		"query": queryClause,
		"aggs":  map[string]interface{}{"facet_values": termsAgg},
	}
}

// caseInsensitiveContainsRegex escapes prefix's regex metacharacters then
// replaces each ASCII letter c with [lc uc], per spec.md §4.F.4.
func caseInsensitiveContainsRegex(prefix string) string {
	escaped := regexp.QuoteMeta(prefix)
	var b strings.Builder
	for _, r := range escaped {
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			b.WriteByte('[')
			b.WriteRune(unicode.ToLower(r))
			b.WriteRune(unicode.ToUpper(r))
			b.WriteByte(']')
		} else {
			b.WriteRune(r)
		}
	}
	return ".*" + b.String() + ".*"
}

func toClauseSlice(clauses []map[string]interface{}) []interface{} {
	out := make([]interface{}, len(clauses))
	for i, c := range clauses {
		out[i] = c
	}
	return out
}

// trimFloat renders a boost weight the way a human-authored query would
// ("title^10" not "title^10.000000").
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// geotileCentroid is a thin wrapper kept local so response normalization
// never needs to know the geotile package's error type (a malformed key
// from the backend is simply skipped, not surfaced as a request error).
func geotileCentroid(key string) (lat, lng float64, ok bool) {
	ll, err := geotile.ToLatLng(key)
	if err != nil {
		return 0, 0, false
	}
	return ll.Lat, ll.Lng, true
}
