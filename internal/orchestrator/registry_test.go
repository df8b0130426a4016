package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/platformbuilds/search-gateway/internal/cache"
	"github.com/platformbuilds/search-gateway/internal/engine"
	_ "github.com/platformbuilds/search-gateway/internal/engine/elastic"
	"github.com/platformbuilds/search-gateway/pkg/logger"
)

func TestNewRegistryRejectsUnknownEngineKind(t *testing.T) {
	_, err := NewRegistry(map[string]engine.IndexConfig{
		"products": {Kind: engine.Kind("bogus"), Host: "http://localhost", Indices: []string{"products"}},
	}, &cache.NoopCache{}, logger.New("error"))
	require.Error(t, err)
}

func TestNewRegistryRejectsDuplicateBackendAlias(t *testing.T) {
	_, err := NewRegistry(map[string]engine.IndexConfig{
		"products": {
			Kind:    engine.KindElastic,
			Host:    "http://localhost:9200",
			Indices: []string{"products"},
			Fields: map[string]engine.FieldConfig{
				"title": {Backend: "name"},
				"label": {Backend: "name"},
			},
		},
	}, &cache.NoopCache{}, logger.New("error"))
	require.Error(t, err)
}

func TestDerivedBoostsSortedByFieldName(t *testing.T) {
	cfg := engine.IndexConfig{
		Fields: map[string]engine.FieldConfig{
			"title":       {Weight: 2},
			"description": {Weight: 1},
			"tags":        {Weight: 0},
		},
	}
	boosts := derivedBoosts(cfg)
	require.NotNil(t, boosts)
	var keys []string
	for pair := boosts.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	require.Equal(t, []string{"description", "title"}, keys)
}

func TestHandlesListsSortedByHandle(t *testing.T) {
	reg, err := NewRegistry(map[string]engine.IndexConfig{
		"zeta":  {Kind: engine.KindElastic, Host: "http://localhost:9200", Indices: []string{"zeta"}},
		"alpha": {Kind: engine.KindElastic, Host: "http://localhost:9200", Indices: []string{"alpha"}},
	}, &cache.NoopCache{}, logger.New("error"))
	require.NoError(t, err)
	handles := reg.Handles()
	require.Len(t, handles, 2)
	require.Equal(t, "alpha", handles[0].Handle)
	require.Equal(t, "zeta", handles[1].Handle)
}
