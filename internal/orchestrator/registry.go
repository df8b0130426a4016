// Package orchestrator implements the request orchestrator (spec.md
// §4.I): per-handle lookup, parameter defaulting, inbound/outbound alias
// translation, cache consultation, and engine dispatch.
package orchestrator

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/platformbuilds/search-gateway/internal/alias"
	"github.com/platformbuilds/search-gateway/internal/cache"
	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
	"github.com/platformbuilds/search-gateway/pkg/logger"
)

// defaultPerPage is the engine-wide fallback when neither the request nor
// the index's own defaults specify one (spec.md §4.I step 3).
const defaultPerPage = 20

// handleContext holds everything the orchestrator needs for one
// configured handle, built once at startup and read-only afterward
// (spec.md §5 "Shared-resource policy").
type handleContext struct {
	cfg              engine.IndexConfig
	engine           engine.Engine
	aliases          *alias.Map
	derivedBoosts    *orderedmap.OrderedMap[string, float64]
	searchableFields []string
}

// Registry is the process-wide {handle -> handleContext} map.
type Registry struct {
	handles map[string]*handleContext
	cache   cache.Cache
	log     logger.Logger
}

// NewRegistry constructs one engine + alias map per configured index,
// failing fast (configuration-error) on the first adapter that cannot be
// built — an unknown engine kind surfaces here even though config
// validation already rejects it once, because a future caller may build
// a Registry from a Config that skipped Load's validation.
func NewRegistry(indexes map[string]engine.IndexConfig, c cache.Cache, log logger.Logger) (*Registry, error) {
	r := &Registry{handles: make(map[string]*handleContext, len(indexes)), cache: c, log: log}
	for handle, cfg := range indexes {
		eng, err := engine.New(cfg)
		if err != nil {
			return nil, err
		}
		aliasMap, err := buildAliasMap(cfg)
		if err != nil {
			return nil, err
		}
		r.handles[handle] = &handleContext{
			cfg:              cfg,
			engine:           eng,
			aliases:          aliasMap,
			derivedBoosts:    derivedBoosts(cfg),
			searchableFields: derivedSearchableFields(cfg),
		}
	}
	return r, nil
}

// buildAliasMap collects the public->backend field entries from
// IndexConfig.Fields (spec.md §4.A); fields with no Backend override are
// left out, since the identity already covers them.
func buildAliasMap(cfg engine.IndexConfig) (*alias.Map, error) {
	entries := make(map[string]string)
	for public, fc := range cfg.Fields {
		if fc.Backend != "" {
			entries[public] = fc.Backend
		}
	}
	return alias.New(entries)
}

// derivedBoosts builds the boosts map from per-field Weight entries
// (spec.md §4.I step 3 "derived-from-fields"), sorted by public field
// name for a deterministic iteration order — IndexConfig.Fields is a Go
// map and has none of its own.
func derivedBoosts(cfg engine.IndexConfig) *orderedmap.OrderedMap[string, float64] {
	names := make([]string, 0, len(cfg.Fields))
	for name, fc := range cfg.Fields {
		if fc.Weight > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	om := orderedmap.New[string, float64]()
	for _, name := range names {
		om.Set(name, cfg.Fields[name].Weight)
	}
	return om
}

// derivedSearchableFields mirrors derivedBoosts for the Searchable flag.
func derivedSearchableFields(cfg engine.IndexConfig) []string {
	names := make([]string, 0, len(cfg.Fields))
	for name, fc := range cfg.Fields {
		if fc.Searchable {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(handle string) (*handleContext, error) {
	hc, ok := r.handles[handle]
	if !ok {
		return nil, gatewayerr.IndexNotFound(handle)
	}
	return hc, nil
}

// Handles lists the configured handles and their engine kind, for the
// /indexes endpoint.
func (r *Registry) Handles() []HandleInfo {
	out := make([]HandleInfo, 0, len(r.handles))
	for handle, hc := range r.handles {
		out = append(out, HandleInfo{Handle: handle, Engine: string(hc.cfg.Kind)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// HandleInfo is one /indexes entry.
type HandleInfo struct {
	Handle string `json:"handle"`
	Engine string `json:"engine"`
}
