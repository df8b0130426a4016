// Package instantsearch translates Algolia's multi-query protocol to and
// from the gateway's normalized SearchOptions/SearchResult shapes
// (spec.md §4.J).
package instantsearch

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

// Request is the top-level Algolia multi-query body: POST /1/indexes/*/queries.
type Request struct {
	Requests []SingleRequest `json:"requests"`
}

// SingleRequest is one entry of Request.Requests.
type SingleRequest struct {
	IndexName string  `json:"indexName"`
	Query     string  `json:"query"`
	Params    *Params `json:"params"`
}

// Params mirrors the subset of Algolia's query parameters this gateway
// supports (spec.md §4.J).
type Params struct {
	Query             *string     `json:"query"`
	Page              *int        `json:"page"`
	HitsPerPage       *int        `json:"hitsPerPage"`
	Facets            interface{} `json:"facets"` // string | []string
	FacetFilters      interface{} `json:"facetFilters"`
	NumericFilters    []string    `json:"numericFilters"`
	HighlightPreTag   *string     `json:"highlightPreTag"`
	HighlightPostTag  *string     `json:"highlightPostTag"`
}

// ParseRequest decodes and minimally validates the multi-query body.
func ParseRequest(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, gatewayerr.BadRequest("body", err.Error())
	}
	return &req, nil
}

const defaultHitsPerPage = 20

// ToSearchOptions translates one SingleRequest into the normalized
// (query, SearchOptions) the orchestrator dispatches, applying the
// defaulting rules from spec.md §4.J. defaultFacets is the index's
// configured default facet list, substituted for the `["*"]` sentinel.
func (sr SingleRequest) ToSearchOptions(defaultFacets []string) (string, engine.SearchOptions) {
	query := sr.Query
	page := 1
	hitsPerPage := defaultHitsPerPage
	var facets []string
	var filters map[string]interface{}

	if sr.Params != nil {
		p := sr.Params
		if p.Query != nil {
			query = *p.Query
		}
		if p.Page != nil {
			page = *p.Page + 1
		}
		if p.HitsPerPage != nil && *p.HitsPerPage >= 1 {
			hitsPerPage = *p.HitsPerPage
		}
		facets = facetsFromParam(p.Facets, defaultFacets)
		filters = parseFacetFilters(p.FacetFilters)
		if len(p.NumericFilters) > 0 {
			if filters == nil {
				filters = map[string]interface{}{}
			}
			mergeNumericFilters(filters, p.NumericFilters)
		}
	}

	opts := engine.SearchOptions{
		Page:      page,
		PerPage:   hitsPerPage,
		Facets:    facets,
		Filters:   filters,
		Highlight: &engine.Highlight{All: true},
	}
	return query, opts
}

// HighlightTags returns the pre/post highlight tags a SingleRequest
// requested, defaulting to Algolia's own default (spec.md §4.J).
func (sr SingleRequest) HighlightTags() (string, string) {
	if sr.Params == nil {
		return "<em>", "</em>"
	}
	pre, post := "<em>", "</em>"
	if sr.Params.HighlightPreTag != nil {
		pre = *sr.Params.HighlightPreTag
	}
	if sr.Params.HighlightPostTag != nil {
		post = *sr.Params.HighlightPostTag
	}
	return pre, post
}

func facetsFromParam(raw interface{}, defaultFacets []string) []string {
	switch v := raw.(type) {
	case string:
		return []string{v}
	case []interface{}:
		if len(v) == 1 {
			if s, ok := v[0].(string); ok && s == "*" {
				return defaultFacets
			}
		}
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// parseFacetFilters implements Algolia's facetFilters grammar (spec.md
// §4.J): the outer list is AND'd, an inner list is OR'd for the same
// field, entries split on the first ':', entries prefixed with '-' (a
// negation) are skipped, and a field with exactly one surviving value
// collapses to a bare string instead of a single-element list.
func parseFacetFilters(raw interface{}) map[string]interface{} {
	outer, ok := raw.([]interface{})
	if !ok || len(outer) == 0 {
		return nil
	}
	grouped := map[string][]string{}
	for _, entry := range outer {
		for _, token := range orGroup(entry) {
			field, value, ok := splitFacetFilter(token)
			if !ok {
				continue
			}
			grouped[field] = append(grouped[field], value)
		}
	}
	if len(grouped) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(grouped))
	for field, values := range grouped {
		if len(values) == 1 {
			out[field] = values[0]
		} else {
			out[field] = values
		}
	}
	return out
}

// orGroup normalizes one outer entry (a bare string, or a nested OR list)
// into its constituent filter tokens.
func orGroup(entry interface{}) []string {
	switch v := entry.(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func splitFacetFilter(token string) (field, value string, ok bool) {
	if strings.HasPrefix(token, "-") {
		return "", "", false
	}
	idx := strings.Index(token, ":")
	if idx < 0 {
		return "", "", false
	}
	return token[:idx], token[idx+1:], true
}

var numericFilterPattern = regexp.MustCompile(`^(.+?)(>=|<=|>|<)(.+)$`)

// mergeNumericFilters parses Algolia numericFilters strings and merges
// the min/max bound into filters in place (spec.md §4.J, §8 round-trip
// law: `parseNumericFilters(["f>=a","f<=b"]) = {f:{min:a, max:b}}`).
func mergeNumericFilters(filters map[string]interface{}, raw []string) {
	for _, token := range raw {
		m := numericFilterPattern.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		field, op, numStr := m[1], m[2], m[3]
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			continue
		}
		rf, _ := filters[field].(engine.RangeFilter)
		switch op {
		case ">=", ">":
			rf.Min = &num
		case "<=", "<":
			rf.Max = &num
		}
		filters[field] = rf
	}
}
