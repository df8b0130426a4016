package orchestrator

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
	"github.com/platformbuilds/search-gateway/internal/instantsearch"
)

// InstantSearch implements POST /:handle/instantsearch: an Algolia-style
// multi-query body whose requests[i] entries run concurrently and are
// joined before responding (spec.md §4.I, §4.J).
func (r *Registry) InstantSearch(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, gatewayerr.BadRequest("body", err.Error()))
		return
	}
	req, err := instantsearch.ParseRequest(raw)
	if err != nil {
		abort(c, err)
		return
	}

	results := make([]instantsearch.Result, len(req.Requests))
	g, ctx := errgroup.WithContext(c.Request.Context())
	for i, sr := range req.Requests {
		i, sr := i, sr
		g.Go(func() error {
			result, err := r.runSingleInstantSearchQuery(ctx, sr)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// runSingleInstantSearchQuery translates, dispatches, and renders one
// requests[i] entry, measuring wall-clock around the engine call for
// processingTimeMS (spec.md §4.J).
func (r *Registry) runSingleInstantSearchQuery(ctx context.Context, sr instantsearch.SingleRequest) (instantsearch.Result, error) {
	query, opts := sr.ToSearchOptions(r.DefaultFacets(sr.IndexName))

	start := time.Now()
	result, err := r.RunQuery(ctx, sr.IndexName, query, opts)
	elapsed := time.Since(start)
	if err != nil {
		return instantsearch.Result{}, err
	}

	preTag, postTag := sr.HighlightTags()
	return instantsearch.FromSearchResult(result, sr.IndexName, query, preTag, postTag, elapsed.Milliseconds()), nil
}
