// Package engine defines the normalized request/response shapes shared by
// every backend adapter (spec.md §3) and the Engine capability interface
// each adapter implements (spec.md §4.E).
package engine

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies which backend an IndexConfig targets.
type Kind string

const (
	KindElastic    Kind = "elastic-like"
	KindOpenSearch Kind = "opensearch-like"
	KindMeilisearch Kind = "meilisearch"
	KindTypesense  Kind = "typesense"
)

// FieldConfig is the per-field configuration entry of an IndexConfig:
// optional weight, searchable flag, backend field name (alias target),
// nested path, and date-field marker (Typesense only, spec.md §4.H).
type FieldConfig struct {
	Weight     float64 `yaml:"weight"`
	Searchable bool    `yaml:"searchable"`
	Backend    string  `yaml:"backend"`
	Nested     string  `yaml:"nested"`
	DateField  bool    `yaml:"dateField"`
}

// Defaults holds the index-level defaults consulted by the orchestrator
// before falling back to engine-wide defaults (spec.md §4.I step 3).
type Defaults struct {
	PerPage      int      `yaml:"perPage"`
	Facets       []string `yaml:"facets"`
	Highlight    bool     `yaml:"highlight"`
	SuggestField string   `yaml:"suggestField"`
}

// IndexConfig is one configured handle, immutable after load.
type IndexConfig struct {
	Handle   string                 `yaml:"-"`
	Kind     Kind                   `yaml:"engine"`
	Host     string                 `yaml:"host"`
	Username string                 `yaml:"username"`
	Password string                 `yaml:"password"`
	APIKey   string                 `yaml:"apiKey"`
	Indices  []string               `yaml:"indices"`
	Defaults Defaults               `yaml:"defaults"`
	Fields   map[string]FieldConfig `yaml:"fields"`
}

// IndexName joins Indices the way an elastic-like engine expects
// (comma-separated for cross-index search); Meilisearch/Typesense reject
// more than one name at construction time (spec.md §4.G/H).
func (c *IndexConfig) IndexName() string {
	out := ""
	for i, idx := range c.Indices {
		if i > 0 {
			out += ","
		}
		out += idx
	}
	return out
}

// RangeFilter is the {min?, max?} filter shape from spec.md §4.B.
type RangeFilter struct {
	Min *float64
	Max *float64
}

// GeoGrid is the geo-tile aggregation request shape from spec.md §4.B.
type GeoGrid struct {
	Field      string
	Precision  int
	TopLeft    LatLng
	BottomRight LatLng
}

// LatLng is a plain coordinate pair used in GeoGrid bounds.
type LatLng struct {
	Lat float64
	Lon float64
}

// Highlight is either "all fields" (bool true) or an explicit field list.
type Highlight struct {
	All    bool
	Fields []string
}

// SearchOptions is the normalized request shape from spec.md §3.
type SearchOptions struct {
	Page                 int
	PerPage              int
	Sort                 *orderedmap.OrderedMap[string, string]
	Facets               []string
	Filters              map[string]interface{} // string | []string | bool | RangeFilter
	Highlight            *Highlight
	AttributesToRetrieve []string
	Suggest              bool
	Boosts               *orderedmap.OrderedMap[string, float64]
	SearchableFields     []string
	Histogram            map[string]int
	GeoGrid              *GeoGrid
}

// FacetValuesOptions narrows a facet type-ahead search (spec.md §4.F.4).
type FacetValuesOptions struct {
	Filters   map[string]interface{}
	MaxValues int
}

// FacetValue is one bucket of a facet aggregation.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// HistogramBucket is one bucket of a histogram aggregation.
type HistogramBucket struct {
	Key   interface{} `json:"key"`
	Count int         `json:"count"`
}

// GeoCluster is one bucket of a geotile-grid aggregation, normalized to a
// lat/lng centroid plus an optional sample hit (spec.md §4.F.2).
type GeoCluster struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Count int     `json:"count"`
	Key   string  `json:"key"`
	Hit   *Hit    `json:"hit,omitempty"`
}

// Hit is a single normalized search result (spec.md §3, invariants I2/I5):
// the backend's source fields are spread first, then objectID/_index/
// _score/_highlights are assigned on top so they are never shadowed by a
// same-named source field.
type Hit struct {
	ObjectID   string
	Index      string
	Score      *float64
	Highlights map[string][]string
	Source     map[string]interface{}
}

func (h Hit) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(h.Source)+4)
	for k, v := range h.Source {
		out[k] = v
	}
	out["objectID"] = h.ObjectID
	out["_index"] = h.Index
	if h.Score != nil {
		out["_score"] = *h.Score
	} else {
		out["_score"] = nil
	}
	highlights := h.Highlights
	if highlights == nil {
		highlights = map[string][]string{}
	}
	out["_highlights"] = highlights
	return json.Marshal(out)
}

// SearchResult is the normalized response shape from spec.md §3.
type SearchResult struct {
	Hits        []Hit                    `json:"hits"`
	TotalHits   int                      `json:"totalHits"`
	Page        int                      `json:"page"`
	PerPage     int                      `json:"perPage"`
	TotalPages  int                      `json:"totalPages"`
	Facets      map[string][]FacetValue  `json:"facets,omitempty"`
	Histograms  map[string][]HistogramBucket `json:"histograms,omitempty"`
	GeoClusters []GeoCluster             `json:"geoClusters,omitempty"`
	Suggestions []string                 `json:"suggestions"`
}

// TotalPages implements invariant I1.
func TotalPages(totalHits, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	pages := totalHits / perPage
	if totalHits%perPage != 0 {
		pages++
	}
	return pages
}
