package orchestrator

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platformbuilds/search-gateway/internal/cache"
	"github.com/platformbuilds/search-gateway/internal/engine"
	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
	"github.com/platformbuilds/search-gateway/internal/metrics"
	"github.com/platformbuilds/search-gateway/internal/validate"
)

const (
	searchCacheControl  = "public, max-age=10, stale-while-revalidate=50"
	mappingCacheControl = "public, max-age=300, stale-while-revalidate=3300"
)

// Health reports {status, cache}, per spec.md §6.
func (r *Registry) Health(c *gin.Context) {
	status := "connected"
	if r.cache == nil {
		status = "disabled"
	} else if !r.cache.Connected() {
		status = "error"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": status})
}

// Indexes lists configured handles, per spec.md §6.
func (r *Registry) Indexes(c *gin.Context) {
	c.JSON(http.StatusOK, r.Handles())
}

// CacheClear flushes the result cache, per the supplemented /cache/clear
// endpoint (SPEC_FULL.md §10).
func (r *Registry) CacheClear(c *gin.Context) {
	if r.cache != nil {
		r.cache.Flush(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Search implements GET /:handle/search (spec.md §4.I).
func (r *Registry) Search(c *gin.Context) {
	hc, err := r.lookup(c.Param("handle"))
	if err != nil {
		abort(c, err)
		return
	}
	query, opts, err := hc.buildSearchOptions(c)
	if err != nil {
		abort(c, err)
		return
	}

	key := cache.SearchKey(c.Param("handle"), query, opts)
	result := new(engine.SearchResult)
	if r.cache != nil && r.cache.Get(c.Request.Context(), key, result) {
		c.Header("Cache-Control", searchCacheControl)
		c.JSON(http.StatusOK, result)
		return
	}

	result, err = hc.engine.Search(c.Request.Context(), query, opts)
	recordEngineOutcome(c.Param("handle"), hc.cfg.Kind, err)
	if err != nil {
		abort(c, err)
		return
	}
	hc.outboundAliasResult(result)

	if r.cache != nil {
		r.cache.Set(c.Request.Context(), key, result, cache.SearchTTL)
	}
	c.Header("Cache-Control", searchCacheControl)
	c.JSON(http.StatusOK, result)
}

// Autocomplete runs the hits query (highlight off, small perPage)
// concurrently with one facet-value prefix lookup per requested facet
// field and merges them (spec.md §4.I, SPEC_FULL.md §6 errgroup fan-out).
func (r *Registry) Autocomplete(c *gin.Context) {
	hc, err := r.lookup(c.Param("handle"))
	if err != nil {
		abort(c, err)
		return
	}
	_, opts, err := hc.buildSearchOptions(c)
	if err != nil {
		abort(c, err)
		return
	}
	query := c.Query("q")
	opts.Highlight = nil
	if opts.PerPage > 10 {
		opts.PerPage = 10
	}
	facetFields := opts.Facets

	result, facetValues, err := hc.autocomplete(c.Request.Context(), query, opts, facetFields)
	recordEngineOutcome(c.Param("handle"), hc.cfg.Kind, err)
	if err != nil {
		abort(c, err)
		return
	}
	hc.outboundAliasResult(result)
	if len(facetValues) > 0 {
		aliasedFacets := make(map[string][]engine.FacetValue, len(facetValues))
		for field, values := range facetValues {
			aliasedFacets[hc.aliases.FromBackend(field)] = values
		}
		result.Facets = aliasedFacets
	}
	c.JSON(http.StatusOK, result)
}

// GetDocument implements GET /:handle/documents/:id.
func (r *Registry) GetDocument(c *gin.Context) {
	hc, err := r.lookup(c.Param("handle"))
	if err != nil {
		abort(c, err)
		return
	}
	hit, err := hc.engine.GetDocument(c.Request.Context(), c.Param("id"))
	recordEngineOutcome(c.Param("handle"), hc.cfg.Kind, err)
	if err != nil {
		abort(c, err)
		return
	}
	if hit == nil {
		abort(c, gatewayerr.DocumentNotFound())
		return
	}
	hc.aliasHitHighlights(hit)
	c.JSON(http.StatusOK, hit)
}

// GetMapping implements GET /:handle/mapping (cached).
func (r *Registry) GetMapping(c *gin.Context) {
	hc, err := r.lookup(c.Param("handle"))
	if err != nil {
		abort(c, err)
		return
	}
	key := cache.MappingKey(c.Param("handle"))
	var mapping map[string]interface{}
	if r.cache != nil && r.cache.Get(c.Request.Context(), key, &mapping) {
		c.Header("Cache-Control", mappingCacheControl)
		c.JSON(http.StatusOK, mapping)
		return
	}
	mapping, err = hc.engine.GetMapping(c.Request.Context())
	recordEngineOutcome(c.Param("handle"), hc.cfg.Kind, err)
	if err != nil {
		abort(c, err)
		return
	}
	if r.cache != nil {
		r.cache.Set(c.Request.Context(), key, mapping, cache.MappingTTL)
	}
	c.Header("Cache-Control", mappingCacheControl)
	c.JSON(http.StatusOK, mapping)
}

// RawQuery implements POST /:handle/query (spec.md §4.F.6).
func (r *Registry) RawQuery(c *gin.Context) {
	hc, err := r.lookup(c.Param("handle"))
	if err != nil {
		abort(c, err)
		return
	}
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		abort(c, gatewayerr.BadRequest("body", err.Error()))
		return
	}
	resp, err := hc.engine.RawQuery(c.Request.Context(), body)
	recordEngineOutcome(c.Param("handle"), hc.cfg.Kind, err)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FacetValues implements GET /:handle/facets/:field (type-ahead).
func (r *Registry) FacetValues(c *gin.Context) {
	hc, err := r.lookup(c.Param("handle"))
	if err != nil {
		abort(c, err)
		return
	}
	field := hc.aliases.ToBackend(c.Param("field"))
	prefix := c.Query("prefix")
	filters, err := validate.ParseFacetFilters(c.Query("filters"))
	if err != nil {
		abort(c, err)
		return
	}
	filters = hc.aliases.KeysToBackend(filters)
	maxValues := atoiOr(c.Query("maxValues"), 20)

	values, err := hc.engine.SearchFacetValues(c.Request.Context(), field, prefix, engine.FacetValuesOptions{
		Filters:   filters,
		MaxValues: maxValues,
	})
	recordEngineOutcome(c.Param("handle"), hc.cfg.Kind, err)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

func recordEngineOutcome(handle string, kind engine.Kind, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordEngineCall(handle, string(kind), outcome)
}

// abort renders the one gatewayerr-aware error shape (spec.md §7),
// falling back to a generic 500 for an error that never went through
// gatewayerr — this should not happen in practice, since every boundary
// in this package wraps errors before returning them.
func abort(c *gin.Context, err error) {
	if ge, ok := gatewayerr.As(err); ok {
		c.AbortWithStatusJSON(ge.Status(), gin.H{"error": ge.Message})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
