package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/platformbuilds/search-gateway/internal/cache"
	"github.com/platformbuilds/search-gateway/internal/engine"
)

// fakeEngine is a minimal engine.Engine double so handler tests never
// touch the network, mirroring the teacher's mockRBACRepository-style
// hand-rolled interface fakes in cmd/server/main.go.
type fakeEngine struct {
	searchResult *engine.SearchResult
	searchErr    error
	document     *engine.Hit
	documentErr  error
	mapping      map[string]interface{}
	mappingCalls int
	facetValues  []engine.FacetValue
}

func (f *fakeEngine) Search(ctx context.Context, query string, opts engine.SearchOptions) (*engine.SearchResult, error) {
	return f.searchResult, f.searchErr
}
func (f *fakeEngine) GetDocument(ctx context.Context, id string) (*engine.Hit, error) {
	return f.document, f.documentErr
}
func (f *fakeEngine) SearchFacetValues(ctx context.Context, field, prefix string, opts engine.FacetValuesOptions) ([]engine.FacetValue, error) {
	return f.facetValues, nil
}
func (f *fakeEngine) GetMapping(ctx context.Context) (map[string]interface{}, error) {
	f.mappingCalls++
	return f.mapping, nil
}
func (f *fakeEngine) RawQuery(ctx context.Context, body map[string]interface{}) (map[string]interface{}, error) {
	return body, nil
}

// fakeCache is a bare in-process Cache double, mirroring internal/cache's
// NoopCache shape but actually storing entries so GetMapping's
// cache-then-fetch path can be exercised without a Redis dependency.
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string][]byte)} }

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) bool {
	_, ok := f.entries[key]
	return ok
}
func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	f.entries[key] = []byte("cached")
}
func (f *fakeCache) Flush(ctx context.Context) { f.entries = make(map[string][]byte) }
func (f *fakeCache) Connected() bool           { return true }

func newTestRegistry(eng engine.Engine) *Registry {
	return &Registry{
		handles: map[string]*handleContext{
			"products": {cfg: engine.IndexConfig{Kind: engine.KindElastic}, engine: eng},
		},
		cache: &cache.NoopCache{},
	}
}

func TestSearchReturns404ForUnknownHandle(t *testing.T) {
	r := newTestRegistry(&fakeEngine{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:handle/search", r.Search)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing/search", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchReturnsResultOnSuccess(t *testing.T) {
	eng := &fakeEngine{searchResult: &engine.SearchResult{TotalHits: 1, Hits: []engine.Hit{{ObjectID: "1"}}}}
	r := newTestRegistry(eng)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:handle/search", r.Search)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/search?q=shoes", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "\"totalHits\":1")
}

func TestSearchSurfacesEngineErrorThroughGatewayerr(t *testing.T) {
	eng := &fakeEngine{searchErr: errors.New("engine unavailable")}
	r := newTestRegistry(eng)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:handle/search", r.Search)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/search?q=shoes", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetDocumentReturns404WhenEngineReturnsNilHit(t *testing.T) {
	eng := &fakeEngine{document: nil}
	r := newTestRegistry(eng)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:handle/documents/:id", r.GetDocument)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/documents/1", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetDocumentReturnsHitOnSuccess(t *testing.T) {
	eng := &fakeEngine{document: &engine.Hit{ObjectID: "42"}}
	r := newTestRegistry(eng)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:handle/documents/:id", r.GetDocument)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/documents/42", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "42")
}

func TestGetMappingServesFromCacheOnSecondCall(t *testing.T) {
	eng := &fakeEngine{mapping: map[string]interface{}{"properties": map[string]interface{}{}}}
	r := &Registry{
		handles: map[string]*handleContext{"products": {cfg: engine.IndexConfig{Kind: engine.KindElastic}, engine: eng}},
		cache:   newFakeCache(),
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:handle/mapping", r.GetMapping)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/mapping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, 1, eng.mappingCalls)
}

func TestRawQueryRejectsInvalidJSONBody(t *testing.T) {
	r := newTestRegistry(&fakeEngine{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/:handle/query", r.RawQuery)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products/query", strings.NewReader("{not json"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFacetValuesReturnsEngineResult(t *testing.T) {
	eng := &fakeEngine{facetValues: []engine.FacetValue{{Value: "red", Count: 3}}}
	r := newTestRegistry(eng)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/:handle/facets/:field", r.FacetValues)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/facets/color?prefix=re", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "red")
}

func TestIndexesListsConfiguredHandles(t *testing.T) {
	r := newTestRegistry(&fakeEngine{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/indexes", r.Indexes)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/indexes", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "products")
}

func TestHealthReportsCacheDisabledWhenNoCacheConfigured(t *testing.T) {
	r := &Registry{handles: map[string]*handleContext{}, cache: nil}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", r.Health)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "disabled")
}
