// Package alias implements the bidirectional translation between public
// field names (aliases) and backend field names, per spec.md §4.A.
package alias

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

// Map is a bijective alias<->backend field name translation table. The
// zero value is the identity map: every lookup misses and every
// translation function returns its input unchanged, including the same
// slice reference on array operations (tests assert on this identity,
// not just value-equality).
type Map struct {
	toBackend   map[string]string
	fromBackend map[string]string
}

// New builds a Map from public-name -> backend-name pairs. Two public
// names mapping to the same backend name is a configuration error (I3):
// the map would no longer be injective on toBackend.
func New(publicToBackend map[string]string) (*Map, error) {
	m := &Map{
		toBackend:   make(map[string]string, len(publicToBackend)),
		fromBackend: make(map[string]string, len(publicToBackend)),
	}
	for public, backend := range publicToBackend {
		if existing, ok := m.fromBackend[backend]; ok {
			return nil, gatewayerr.ConfigurationError(
				"field alias \""+public+"\" and \""+existing+"\" both target backend field \""+backend+"\"", nil)
		}
		m.toBackend[public] = backend
		m.fromBackend[backend] = public
	}
	return m, nil
}

// Empty reports whether the map carries no entries, the fast-path the
// rest of this package optimizes for.
func (m *Map) Empty() bool {
	return m == nil || len(m.toBackend) == 0
}

func (m *Map) ToBackend(name string) string {
	if m.Empty() {
		return name
	}
	if backend, ok := m.toBackend[name]; ok {
		return backend
	}
	return name
}

func (m *Map) FromBackend(name string) string {
	if m.Empty() {
		return name
	}
	if public, ok := m.fromBackend[name]; ok {
		return public
	}
	return name
}

// KeysToBackend returns a new map with keys translated to backend names,
// or the same map reference unchanged when the alias map is empty.
func (m *Map) KeysToBackend(in map[string]interface{}) map[string]interface{} {
	if m.Empty() || in == nil {
		return in
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[m.ToBackend(k)] = v
	}
	return out
}

// KeysFromBackend mirrors KeysToBackend in the opposite direction.
func (m *Map) KeysFromBackend(in map[string]interface{}) map[string]interface{} {
	if m.Empty() || in == nil {
		return in
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[m.FromBackend(k)] = v
	}
	return out
}

// ArrayToBackend translates each element of a field-name list, returning
// the same slice reference when the alias map is empty.
func (m *Map) ArrayToBackend(in []string) []string {
	if m.Empty() || in == nil {
		return in
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = m.ToBackend(v)
	}
	return out
}

// ArrayFromBackend mirrors ArrayToBackend in the opposite direction.
func (m *Map) ArrayFromBackend(in []string) []string {
	if m.Empty() || in == nil {
		return in
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = m.FromBackend(v)
	}
	return out
}

// OrderedKeysToBackend translates the keys of an insertion-order-preserving
// map (sort fields, boosts) to backend names without disturbing order.
func OrderedKeysToBackend[V any](m *Map, in *orderedmap.OrderedMap[string, V]) *orderedmap.OrderedMap[string, V] {
	if m.Empty() || in == nil {
		return in
	}
	out := orderedmap.New[string, V]()
	for pair := in.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(m.ToBackend(pair.Key), pair.Value)
	}
	return out
}

// OrderedKeysFromBackend mirrors OrderedKeysToBackend in the opposite direction.
func OrderedKeysFromBackend[V any](m *Map, in *orderedmap.OrderedMap[string, V]) *orderedmap.OrderedMap[string, V] {
	if m.Empty() || in == nil {
		return in
	}
	out := orderedmap.New[string, V]()
	for pair := in.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(m.FromBackend(pair.Key), pair.Value)
	}
	return out
}
