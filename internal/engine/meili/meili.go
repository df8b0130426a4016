// Package meili implements the Engine adapter over Meilisearch's
// filter/sort/facet model (spec.md §4.G).
package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

// primaryKeyField is the source field Meilisearch uses as its document
// id; this gateway assumes the conventional "id" the way most Meilisearch
// deployments configure it, since IndexConfig carries no dedicated
// primary-key setting.
const primaryKeyField = "id"

type adapter struct {
	client *meilisearch.Client
	index  *meilisearch.Index
	cfg    engine.IndexConfig
}

func init() {
	engine.RegisterFactory(engine.KindMeilisearch, func(cfg engine.IndexConfig) (engine.Engine, error) {
		if len(cfg.Indices) != 1 {
			return nil, gatewayerr.ConfigurationError("meilisearch engine requires exactly one index name", nil)
		}
		client := meilisearch.NewClient(meilisearch.ClientConfig{
			Host:   cfg.Host,
			APIKey: cfg.APIKey,
		})
		return &adapter{client: client, index: client.Index(cfg.Indices[0]), cfg: cfg}, nil
	})
}

func (a *adapter) Search(ctx context.Context, query string, opts engine.SearchOptions) (*engine.SearchResult, error) {
	req := &meilisearch.SearchRequest{
		Offset: int64((opts.Page - 1) * opts.PerPage),
		Limit:  int64(opts.PerPage),
	}
	if filter := buildFilterExpression(opts.Filters); filter != "" {
		req.Filter = filter
	}
	if opts.Sort != nil && opts.Sort.Len() > 0 {
		req.Sort = buildSortTokens(opts.Sort)
	}
	if len(opts.Facets) > 0 {
		req.Facets = opts.Facets
	}
	if opts.Highlight != nil {
		req.AttributesToHighlight = highlightAttributes(opts.Highlight)
		req.HighlightPreTag = "<mark>"
		req.HighlightPostTag = "</mark>"
	}
	if len(opts.AttributesToRetrieve) > 0 {
		req.AttributesToRetrieve = opts.AttributesToRetrieve
	}

	resp, err := a.index.Search(query, req)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	return normalizeSearchResponse(resp, opts), nil
}

func (a *adapter) GetDocument(ctx context.Context, id string) (*engine.Hit, error) {
	var doc map[string]interface{}
	err := a.index.GetDocument(id, &meilisearch.DocumentQuery{}, &doc)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, gatewayerr.BackendError(err)
	}
	hit := normalizeDocument(doc)
	return &hit, nil
}

func (a *adapter) SearchFacetValues(ctx context.Context, field, prefix string, opts engine.FacetValuesOptions) ([]engine.FacetValue, error) {
	req := &meilisearch.FacetSearchRequest{
		FacetName:  field,
		FacetQuery: prefix,
	}
	if filter := buildFilterExpression(opts.Filters); filter != "" {
		req.Filter = filter
	}
	raw, err := a.index.FacetSearch(req)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	var resp meilisearch.FacetSearchResponse
	if raw != nil {
		if err := json.Unmarshal(*raw, &resp); err != nil {
			return nil, gatewayerr.BackendError(err)
		}
	}
	out := make([]engine.FacetValue, 0, len(resp.FacetHits))
	for _, fhRaw := range resp.FacetHits {
		fh, ok := fhRaw.(map[string]interface{})
		if !ok {
			continue
		}
		value := fmt.Sprintf("%v", fh["value"])
		count, _ := fh["count"].(float64)
		out = append(out, engine.FacetValue{Value: value, Count: int(count)})
	}
	return out, nil
}

func (a *adapter) GetMapping(ctx context.Context) (map[string]interface{}, error) {
	settings, err := a.index.GetSettings()
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	return map[string]interface{}{
		"filterableAttributes":  settings.FilterableAttributes,
		"sortableAttributes":    settings.SortableAttributes,
		"searchableAttributes":  settings.SearchableAttributes,
		"displayedAttributes":   settings.DisplayedAttributes,
	}, nil
}

func (a *adapter) RawQuery(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	q, _ := body["q"].(string)
	req := &meilisearch.SearchRequest{}
	if filter, ok := body["filter"].(string); ok {
		req.Filter = filter
	}
	if limit, ok := body["limit"].(float64); ok {
		req.Limit = int64(limit)
	}
	resp, err := a.index.Search(q, req)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	return map[string]interface{}{
		"hits":               resp.Hits,
		"estimatedTotalHits": resp.EstimatedTotalHits,
		"processingTimeMs":   resp.ProcessingTimeMs,
	}, nil
}

func isNotFound(err error) bool {
	if merr, ok := err.(*meilisearch.Error); ok {
		return merr.StatusCode == 404 || merr.MeilisearchApiError.Code == "document_not_found"
	}
	return false
}

// buildFilterExpression implements spec.md §4.G's filter-clause shapes.
// Multiple filter entries are joined with AND.
func buildFilterExpression(filters map[string]interface{}) string {
	if len(filters) == 0 {
		return ""
	}
	var clauses []string
	for field, value := range filters {
		clauses = append(clauses, filterClause(field, value))
	}
	return strings.Join(clauses, " AND ")
}

func filterClause(field string, value interface{}) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%s = %s", field, quote(v))
	case []string:
		parts := make([]string, len(v))
		for i, s := range v {
			parts[i] = fmt.Sprintf("%s = %s", field, quote(s))
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	case bool:
		return fmt.Sprintf("%s = %v", field, v)
	case engine.RangeFilter:
		var parts []string
		if v.Min != nil {
			parts = append(parts, fmt.Sprintf("%s >= %v", field, *v.Min))
		}
		if v.Max != nil {
			parts = append(parts, fmt.Sprintf("%s <= %v", field, *v.Max))
		}
		return strings.Join(parts, " AND ")
	default:
		return ""
	}
}

// quote escapes backslash then doublequote, per spec.md §4.G.
func quote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// buildSortTokens renders "field:asc" tokens in the client's key order,
// per spec.md §4.G.
func buildSortTokens(sort *orderedmap.OrderedMap[string, string]) []string {
	out := make([]string, 0, sort.Len())
	for pair := sort.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key+":"+pair.Value)
	}
	return out
}
