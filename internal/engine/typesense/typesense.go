// Package typesense implements the Engine adapter over Typesense's
// filter_by/sort_by/facet_by model (spec.md §4.H).
package typesense

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/typesense/typesense-go/v3/typesense"
	"github.com/typesense/typesense-go/v3/typesense/api"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

type adapter struct {
	client     *typesense.Client
	collection string
	cfg        engine.IndexConfig
}

func init() {
	engine.RegisterFactory(engine.KindTypesense, func(cfg engine.IndexConfig) (engine.Engine, error) {
		if len(cfg.Indices) != 1 {
			return nil, gatewayerr.ConfigurationError("typesense engine requires exactly one collection name", nil)
		}
		client := typesense.NewClient(
			typesense.WithServer(cfg.Host),
			typesense.WithAPIKey(cfg.APIKey),
		)
		return &adapter{client: client, collection: cfg.Indices[0], cfg: cfg}, nil
	})
}

func (a *adapter) Search(ctx context.Context, query string, opts engine.SearchOptions) (*engine.SearchResult, error) {
	params := a.baseSearchParams(query, opts)
	page := opts.Page
	perPage := opts.PerPage
	params.Page = &page
	params.PerPage = &perPage

	result, err := a.client.Collection(a.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	return normalizeSearchResult(result, a.cfg, opts), nil
}

func (a *adapter) baseSearchParams(query string, opts engine.SearchOptions) *api.SearchCollectionParams {
	q := query
	if strings.TrimSpace(q) == "" {
		q = "*"
	}
	queryBy, queryByWeights := buildQueryBy(opts)
	params := &api.SearchCollectionParams{
		Q:       &q,
		QueryBy: &queryBy,
	}
	if queryByWeights != "" {
		params.QueryByWeights = &queryByWeights
	}
	if filter := buildFilterBy(opts.Filters); filter != "" {
		params.FilterBy = &filter
	}
	if opts.Sort != nil && opts.Sort.Len() > 0 {
		sortBy := buildSortBy(opts.Sort)
		params.SortBy = &sortBy
	}
	if len(opts.Facets) > 0 {
		facetBy := strings.Join(opts.Facets, ",")
		params.FacetBy = &facetBy
	}
	if opts.Highlight != nil && !opts.Highlight.All && len(opts.Highlight.Fields) > 0 {
		fields := strings.Join(opts.Highlight.Fields, ",")
		params.HighlightFields = &fields
	}
	return params
}

func (a *adapter) GetDocument(ctx context.Context, id string) (*engine.Hit, error) {
	doc, err := a.client.Collection(a.collection).Document(id).Retrieve(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, gatewayerr.BackendError(err)
	}
	hit := normalizeDocument(doc, a.cfg)
	return &hit, nil
}

func (a *adapter) SearchFacetValues(ctx context.Context, field, prefix string, opts engine.FacetValuesOptions) ([]engine.FacetValue, error) {
	maxValues := opts.MaxValues
	if maxValues <= 0 {
		maxValues = 20
	}
	facetQuery := fmt.Sprintf("%s:%s", field, prefix)
	star := "*"
	perPage := 0
	params := &api.SearchCollectionParams{
		Q:          &star,
		QueryBy:    &field,
		FacetBy:    &field,
		FacetQuery: &facetQuery,
		PerPage:    &perPage,
	}
	if filter := buildFilterBy(opts.Filters); filter != "" {
		params.FilterBy = &filter
	}
	result, err := a.client.Collection(a.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	return extractFacetCounts(result, field, maxValues), nil
}

func (a *adapter) GetMapping(ctx context.Context) (map[string]interface{}, error) {
	schema, err := a.client.Collection(a.collection).Retrieve(ctx)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	fields := make([]map[string]interface{}, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		fields = append(fields, map[string]interface{}{"name": f.Name, "type": f.Type})
	}
	return map[string]interface{}{"name": schema.Name, "fields": fields}, nil
}

// RawQuery forwards body to search, defaulting query_by to "*" when the
// caller didn't supply one, per spec.md §4.H.
func (a *adapter) RawQuery(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	q, _ := body["q"].(string)
	if q == "" {
		q = "*"
	}
	queryBy, _ := body["query_by"].(string)
	if queryBy == "" {
		queryBy = "*"
	}
	params := &api.SearchCollectionParams{Q: &q, QueryBy: &queryBy}
	if filterBy, ok := body["filter_by"].(string); ok {
		params.FilterBy = &filterBy
	}
	result, err := a.client.Collection(a.collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	return map[string]interface{}{"found": result.Found, "hits": result.Hits}, nil
}

func isNotFound(err error) bool {
	if httpErr, ok := err.(*typesense.HTTPError); ok {
		return httpErr.Status == http.StatusNotFound
	}
	return strings.Contains(err.Error(), "ObjectNotFound") || strings.Contains(err.Error(), "ObjectUnprocessable")
}

// buildQueryBy implements spec.md §4.H: query_by is the boost keys (with
// parallel weights), else the searchable-fields list, else "*".
func buildQueryBy(opts engine.SearchOptions) (queryBy string, queryByWeights string) {
	if opts.Boosts != nil && opts.Boosts.Len() > 0 {
		var fields, weights []string
		for pair := opts.Boosts.Oldest(); pair != nil; pair = pair.Next() {
			fields = append(fields, pair.Key)
			weights = append(weights, strconv.FormatFloat(pair.Value, 'f', -1, 64))
		}
		return strings.Join(fields, ","), strings.Join(weights, ",")
	}
	if len(opts.SearchableFields) > 0 {
		return strings.Join(opts.SearchableFields, ","), ""
	}
	return "*", ""
}

// buildFilterBy implements the filter-clause shapes from spec.md §4.H.
func buildFilterBy(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	var clauses []string
	for field, value := range filters {
		clauses = append(clauses, filterClause(field, value))
	}
	return strings.Join(clauses, " && ")
}

func filterClause(field string, value interface{}) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%s:=%s", field, backtick(v))
	case []string:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = backtick(s)
		}
		return fmt.Sprintf("%s:=[%s]", field, strings.Join(parts, ","))
	case bool:
		return fmt.Sprintf("%s:=%v", field, v)
	case engine.RangeFilter:
		var parts []string
		if v.Min != nil {
			parts = append(parts, fmt.Sprintf("%s:>=%v", field, *v.Min))
		}
		if v.Max != nil {
			parts = append(parts, fmt.Sprintf("%s:<=%v", field, *v.Max))
		}
		return strings.Join(parts, " && ")
	default:
		return ""
	}
}

// backtick quotes a scalar and escapes embedded backticks, per spec.md §4.H.
func backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "\\`") + "`"
}

func buildSortBy(sort *orderedmap.OrderedMap[string, string]) string {
	tokens := make([]string, 0, sort.Len())
	for pair := sort.Oldest(); pair != nil; pair = pair.Next() {
		tokens = append(tokens, pair.Key+":"+pair.Value)
	}
	return strings.Join(tokens, ",")
}
