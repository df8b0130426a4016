package alias

import (
	"testing"

	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestNewRejectsDuplicateBackendTarget(t *testing.T) {
	_, err := New(map[string]string{"title": "name", "label": "name"})
	require.Error(t, err)
}

func TestToBackendAndFromBackendRoundTrip(t *testing.T) {
	m, err := New(map[string]string{"title": "name"})
	require.NoError(t, err)
	require.Equal(t, "name", m.ToBackend("title"))
	require.Equal(t, "title", m.FromBackend("name"))
	require.Equal(t, "unmapped", m.ToBackend("unmapped"))
}

func TestEmptyMapIsIdentityOnArrayOperations(t *testing.T) {
	var m *Map
	in := []string{"a", "b"}
	out := m.ArrayToBackend(in)
	require.Same(t, &in[0], &out[0])
}

func TestKeysToBackendTranslatesFilterKeys(t *testing.T) {
	m, err := New(map[string]string{"title": "name"})
	require.NoError(t, err)
	out := m.KeysToBackend(map[string]interface{}{"title": "shoes", "price": 10})
	require.Equal(t, "shoes", out["name"])
	require.Equal(t, 10, out["price"])
}

func TestOrderedKeysToBackendPreservesOrder(t *testing.T) {
	m, err := New(map[string]string{"title": "name"})
	require.NoError(t, err)
	in := orderedmap.New[string, float64]()
	in.Set("title", 2)
	in.Set("description", 1)

	out := OrderedKeysToBackend(m, in)
	var keys []string
	for pair := out.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	require.Equal(t, []string{"name", "description"}, keys)
}
