// Package validate implements parameter parsing and schema checking for
// the JSON-encoded query parameters (spec.md §4.B): sort, filters, boosts,
// histogram, geoGrid. Every exported Parse* function either returns a
// typed value or a *gatewayerr.Error of kind bad-request naming the
// offending parameter.
package validate

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

func parseError(param string, err error) *gatewayerr.Error {
	return gatewayerr.BadRequest(param, err.Error())
}

// ParseSort decodes and validates the sort parameter: map<string, "asc"|"desc">,
// preserving the client's key ordering via OrderedMap.
func ParseSort(raw string) (*orderedmap.OrderedMap[string, string], error) {
	if raw == "" {
		return nil, nil
	}
	om := orderedmap.New[string, string]()
	if err := json.Unmarshal([]byte(raw), om); err != nil {
		return nil, parseError("sort", err)
	}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value != "asc" && pair.Value != "desc" {
			return nil, gatewayerr.BadRequest("sort", fmt.Sprintf("field %q: order must be \"asc\" or \"desc\"", pair.Key))
		}
	}
	return om, nil
}

// ParseBoosts decodes and validates the boosts parameter: map<string, number >= 0>.
func ParseBoosts(raw string) (*orderedmap.OrderedMap[string, float64], error) {
	if raw == "" {
		return nil, nil
	}
	om := orderedmap.New[string, float64]()
	if err := json.Unmarshal([]byte(raw), om); err != nil {
		return nil, parseError("boosts", err)
	}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value < 0 {
			return nil, gatewayerr.BadRequest("boosts", fmt.Sprintf("field %q: weight must be >= 0", pair.Key))
		}
	}
	return om, nil
}

// ParseHistogram decodes and validates the histogram parameter: map<string, integer >= 1>.
func ParseHistogram(raw string) (map[string]int, error) {
	if raw == "" {
		return nil, nil
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, parseError("histogram", err)
	}
	result := make(map[string]int, len(out))
	for field, interval := range out {
		if interval != float64(int(interval)) || interval < 1 {
			return nil, gatewayerr.BadRequest("histogram", fmt.Sprintf("field %q: interval must be an integer >= 1", field))
		}
		result[field] = int(interval)
	}
	return result, nil
}

// ParseFilters decodes and validates the filters parameter:
// map<string, string | list<string> | boolean | {min?, max?}>.
func ParseFilters(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, parseError("filters", err)
	}
	out := make(map[string]interface{}, len(decoded))
	for field, v := range decoded {
		value, err := normalizeFilterValue(field, v)
		if err != nil {
			return nil, err
		}
		out[field] = value
	}
	return out, nil
}

func normalizeFilterValue(field string, v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return x, nil
	case []interface{}:
		list := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, gatewayerr.BadRequest("filters", fmt.Sprintf("field %q: list entries must be strings", field))
			}
			list = append(list, s)
		}
		return list, nil
	case map[string]interface{}:
		rf := engine.RangeFilter{}
		for k, rv := range x {
			num, ok := rv.(float64)
			if !ok {
				return nil, gatewayerr.BadRequest("filters", fmt.Sprintf("field %q: range bound %q must be a number", field, k))
			}
			switch k {
			case "min":
				rf.Min = &num
			case "max":
				rf.Max = &num
			default:
				return nil, gatewayerr.BadRequest("filters", fmt.Sprintf("field %q: unknown range key %q", field, k))
			}
		}
		return rf, nil
	default:
		return nil, gatewayerr.BadRequest("filters", fmt.Sprintf("field %q: unsupported filter value", field))
	}
}

// ParseFacetFilters decodes and validates the narrower facet-filter shape
// used by the facet type-ahead endpoint: map<string, string | list<string>>.
func ParseFacetFilters(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, parseError("facetFilters", err)
	}
	out := make(map[string]interface{}, len(decoded))
	for field, v := range decoded {
		switch x := v.(type) {
		case string:
			out[field] = x
		case []interface{}:
			list := make([]string, 0, len(x))
			for _, e := range x {
				s, ok := e.(string)
				if !ok {
					return nil, gatewayerr.BadRequest("facetFilters", fmt.Sprintf("field %q: list entries must be strings", field))
				}
				list = append(list, s)
			}
			out[field] = list
		default:
			return nil, gatewayerr.BadRequest("facetFilters", fmt.Sprintf("field %q: must be a string or list of strings", field))
		}
	}
	return out, nil
}

// ParseGeoGrid decodes and validates the geoGrid parameter:
// {field, precision: 1..29, bounds: {top_left, bottom_right}}.
func ParseGeoGrid(raw string) (*engine.GeoGrid, error) {
	if raw == "" {
		return nil, nil
	}
	var decoded struct {
		Field     string `json:"field"`
		Precision int    `json:"precision"`
		Bounds    struct {
			TopLeft     struct{ Lat, Lon float64 } `json:"top_left"`
			BottomRight struct{ Lat, Lon float64 } `json:"bottom_right"`
		} `json:"bounds"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, parseError("geoGrid", err)
	}
	if decoded.Field == "" {
		return nil, gatewayerr.BadRequest("geoGrid", "field is required")
	}
	if decoded.Precision < 1 || decoded.Precision > 29 {
		return nil, gatewayerr.BadRequest("geoGrid", "precision must be between 1 and 29")
	}
	return &engine.GeoGrid{
		Field:       decoded.Field,
		Precision:   decoded.Precision,
		TopLeft:     engine.LatLng{Lat: decoded.Bounds.TopLeft.Lat, Lon: decoded.Bounds.TopLeft.Lon},
		BottomRight: engine.LatLng{Lat: decoded.Bounds.BottomRight.Lat, Lon: decoded.Bounds.BottomRight.Lon},
	}, nil
}

// ClampPage clamps page to >= 1 (spec.md §8 boundary behavior).
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampPerPage clamps perPage to [1, 100].
func ClampPerPage(perPage int) int {
	if perPage < 1 {
		return 1
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}

// ParseBool parses the highlight/suggest query parameters ("true"|"false").
func ParseBool(raw string, def bool) bool {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}
