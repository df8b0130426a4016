// Package elastic implements the shared Elasticsearch/OpenSearch
// translation algorithm (spec.md §4.F) behind two thin backend adapters.
// Elasticsearch and OpenSearch differ only in (1) client construction,
// (2) response-body unwrapping, and (3) 404 detection — everything else,
// query construction and response normalization, lives once in
// algorithm.go and is shared by composition over the backend interface,
// grounded on escuse-me's pkg/cmds/layers/settings.go split between
// ElasticsearchClient and OpenSearchClient.
package elastic

import (
	"context"
	"io"
)

// backend is the minimal seam between the shared algorithm and each
// concrete SDK. Both adapters issue requests through their SDK's
// low-level Transport.Perform so algorithm.go only ever builds and parses
// bare map[string]interface{} DSL, never a typed request struct.
type backend interface {
	execute(ctx context.Context, method, path string, body io.Reader) (status int, respBody []byte, err error)
	unwrap(respBody []byte) []byte
	isNotFound(status int, body []byte) bool
	indexName() string
}
