package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

// adapter implements engine.Engine against a backend (ES or OpenSearch),
// sharing the query-building and response-normalization algorithm. The
// mapping cache is lazy and memoized for the process lifetime (spec.md
// §4.F.3), using sync.Once for publish-once semantics under concurrent
// cold reads (spec.md §5).
type adapter struct {
	cfg     engine.IndexConfig
	backend backend

	mappingOnce sync.Once
	mapping     map[string]interface{}
	mappingErr  error
}

func newAdapter(cfg engine.IndexConfig, b backend) *adapter {
	return &adapter{cfg: cfg, backend: b}
}

func (a *adapter) Search(ctx context.Context, query string, opts engine.SearchOptions) (*engine.SearchResult, error) {
	mapping, err := a.mappingForSort(ctx, opts)
	if err != nil {
		return nil, err
	}
	body := buildSearchBody(query, opts, a.cfg, mapping)
	raw, err := a.doSearch(ctx, body)
	if err != nil {
		return nil, err
	}
	return normalizeSearchResponse(raw, opts), nil
}

// mappingForSort only triggers the mapping fetch when the request
// actually sorts, matching the "lazy, first call fetches" contract
// without paying the round-trip on unsorted requests.
func (a *adapter) mappingForSort(ctx context.Context, opts engine.SearchOptions) (map[string]interface{}, error) {
	if opts.Sort == nil || opts.Sort.Len() == 0 {
		return nil, nil
	}
	return a.GetMapping(ctx)
}

func (a *adapter) doSearch(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	path := "/" + a.backend.indexName() + "/_search"
	status, respBody, err := a.backend.execute(ctx, "POST", path, bytes.NewReader(encoded))
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	respBody = a.backend.unwrap(respBody)
	if status >= 400 {
		return nil, gatewayerr.BackendError(fmt.Errorf("engine returned status %d: %s", status, string(respBody)))
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	return raw, nil
}

func (a *adapter) GetDocument(ctx context.Context, id string) (*engine.Hit, error) {
	if strings.Contains(a.backend.indexName(), ",") {
		body := map[string]interface{}{
			"query": map[string]interface{}{"ids": map[string]interface{}{"values": []string{id}}},
			"size":  1,
		}
		raw, err := a.doSearch(ctx, body)
		if err != nil {
			if ge, ok := gatewayerr.As(err); ok && ge.Kind == gatewayerr.KindBackendError {
				return nil, err
			}
			return nil, err
		}
		hitsObj, _ := raw["hits"].(map[string]interface{})
		rawHits, _ := hitsObj["hits"].([]interface{})
		if len(rawHits) == 0 {
			return nil, nil
		}
		hitMap, ok := rawHits[0].(map[string]interface{})
		if !ok {
			return nil, nil
		}
		hit := normalizeHit(hitMap)
		return &hit, nil
	}

	path := "/" + a.backend.indexName() + "/_doc/" + id
	status, respBody, err := a.backend.execute(ctx, "GET", path, nil)
	if err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	if a.backend.isNotFound(status, respBody) {
		return nil, nil
	}
	respBody = a.backend.unwrap(respBody)
	if status >= 400 {
		return nil, gatewayerr.BackendError(fmt.Errorf("engine returned status %d: %s", status, string(respBody)))
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, gatewayerr.BackendError(err)
	}
	hit := normalizeHit(raw)
	return &hit, nil
}

func (a *adapter) SearchFacetValues(ctx context.Context, field, prefix string, opts engine.FacetValuesOptions) ([]engine.FacetValue, error) {
	if opts.MaxValues <= 0 {
		opts.MaxValues = 20
	}
	body := buildFacetValuesBody(field, prefix, opts, a.cfg)
	raw, err := a.doSearch(ctx, body)
	if err != nil {
		return nil, err
	}
	aggs, _ := raw["aggregations"].(map[string]interface{})
	facets := extractFacets(aggs, []string{"facet_values"})
	return facets["facet_values"], nil
}

func (a *adapter) GetMapping(ctx context.Context) (map[string]interface{}, error) {
	a.mappingOnce.Do(func() {
		path := "/" + a.backend.indexName() + "/_mapping"
		status, respBody, err := a.backend.execute(ctx, "GET", path, nil)
		if err != nil {
			a.mappingErr = gatewayerr.BackendError(err)
			return
		}
		respBody = a.backend.unwrap(respBody)
		if status >= 400 {
			a.mappingErr = gatewayerr.BackendError(fmt.Errorf("engine returned status %d: %s", status, string(respBody)))
			return
		}
		var raw map[string]interface{}
		if err := json.Unmarshal(respBody, &raw); err != nil {
			a.mappingErr = gatewayerr.BackendError(err)
			return
		}
		a.mapping = raw
	})
	return a.mapping, a.mappingErr
}

// RawQuery implements spec.md §4.F.6: the body is forwarded to search
// verbatim and the backend's response returned unwrapped but otherwise
// unnormalized — a deliberate escape hatch (spec.md §9).
func (a *adapter) RawQuery(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	return a.doSearch(ctx, body)
}
