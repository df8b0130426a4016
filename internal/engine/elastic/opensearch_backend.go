package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v4"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

// openSearchBackend talks to OpenSearch via the low-level opensearch-go
// transport, grounded on escuse-me's newOpenSearchClient construction.
type openSearchBackend struct {
	client *opensearch.Client
	index  string
}

func newOpenSearchBackend(cfg engine.IndexConfig) (*openSearchBackend, error) {
	osCfg := opensearch.Config{
		Addresses: []string{cfg.Host},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, gatewayerr.ConfigurationError("failed to construct opensearch client", err)
	}
	return &openSearchBackend{client: client, index: cfg.IndexName()}, nil
}

func (b *openSearchBackend) execute(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := b.client.Transport.Perform(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode, respBody, nil
}

// unwrap strips the single-key {"body": ...} envelope some OpenSearch
// responses carry, per spec.md §4.F ("OpenSearch wraps payloads in
// .body"). A normal, unwrapped body is returned unchanged.
func (b *openSearchBackend) unwrap(body []byte) []byte {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil {
		if inner, ok := probe["body"]; ok && len(probe) == 1 {
			return inner
		}
	}
	return body
}

// isNotFound checks the transport status first; OpenSearch's wrapped
// error shape can also carry the status inside the body itself, so that
// is checked as a fallback — the status-code location differs from the
// Elasticsearch adapter, per spec.md §4.F.
func (b *openSearchBackend) isNotFound(status int, body []byte) bool {
	if status == http.StatusNotFound {
		return true
	}
	var probe struct {
		Status int `json:"status"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Status == http.StatusNotFound {
		return true
	}
	return false
}

func (b *openSearchBackend) indexName() string { return b.index }

func init() {
	engine.RegisterFactory(engine.KindOpenSearch, func(cfg engine.IndexConfig) (engine.Engine, error) {
		b, err := newOpenSearchBackend(cfg)
		if err != nil {
			return nil, err
		}
		return newAdapter(cfg, b), nil
	})
}
