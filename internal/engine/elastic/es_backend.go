package elastic

import (
	"context"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

// esBackend talks to Elasticsearch via the low-level esapi transport,
// grounded on escuse-me's newElasticsearchClient construction.
type esBackend struct {
	client *elasticsearch.Client
	index  string
}

func newESBackend(cfg engine.IndexConfig) (*esBackend, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.Host},
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	}
	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, gatewayerr.ConfigurationError("failed to construct elasticsearch client", err)
	}
	return &esBackend{client: client, index: cfg.IndexName()}, nil
}

func (b *esBackend) execute(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
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

func (b *esBackend) unwrap(body []byte) []byte { return body }

func (b *esBackend) isNotFound(status int, body []byte) bool { return status == http.StatusNotFound }

func (b *esBackend) indexName() string { return b.index }

func init() {
	engine.RegisterFactory(engine.KindElastic, func(cfg engine.IndexConfig) (engine.Engine, error) {
		b, err := newESBackend(cfg)
		if err != nil {
			return nil, err
		}
		return newAdapter(cfg, b), nil
	})
}
