package elastic

import (
	"github.com/platformbuilds/search-gateway/internal/engine"
)

// normalizeSearchResponse implements spec.md §4.F.2.
func normalizeSearchResponse(raw map[string]interface{}, opts engine.SearchOptions) *engine.SearchResult {
	hitsObj, _ := raw["hits"].(map[string]interface{})
	rawHits, _ := hitsObj["hits"].([]interface{})

	hits := make([]engine.Hit, 0, len(rawHits))
	for _, h := range rawHits {
		hitMap, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		hits = append(hits, normalizeHit(hitMap))
	}

	totalHits := extractTotal(hitsObj)

	result := &engine.SearchResult{
		Hits:        hits,
		TotalHits:   totalHits,
		Page:        opts.Page,
		PerPage:     opts.PerPage,
		TotalPages:  engine.TotalPages(totalHits, opts.PerPage),
		Suggestions: extractSuggestions(raw),
	}

	aggs, _ := raw["aggregations"].(map[string]interface{})
	if aggs != nil {
		if facets := extractFacets(aggs, opts.Facets); len(facets) > 0 {
			result.Facets = facets
		}
		if histograms := extractHistograms(aggs, opts.Histogram); len(histograms) > 0 {
			result.Histograms = histograms
		}
		if opts.GeoGrid != nil {
			result.GeoClusters = extractGeoClusters(aggs)
		}
	}
	return result
}

// normalizeHit implements invariants I2/I5: _source is spread first, then
// objectID/_index/_score/_highlights are assigned on top.
func normalizeHit(hit map[string]interface{}) engine.Hit {
	source, _ := hit["_source"].(map[string]interface{})
	id, _ := hit["_id"].(string)
	index, _ := hit["_index"].(string)

	var score *float64
	if raw, ok := hit["_score"]; ok && raw != nil {
		if f, ok := raw.(float64); ok {
			score = &f
		}
	}

	highlights := map[string][]string{}
	if raw, ok := hit["highlight"].(map[string]interface{}); ok {
		for field, fragments := range raw {
			list, ok := fragments.([]interface{})
			if !ok {
				continue
			}
			for _, fr := range list {
				if s, ok := fr.(string); ok {
					highlights[field] = append(highlights[field], s)
				}
			}
		}
	}

	return engine.Hit{ObjectID: id, Index: index, Score: score, Highlights: highlights, Source: source}
}

func extractTotal(hits map[string]interface{}) int {
	switch t := hits["total"].(type) {
	case float64:
		return int(t)
	case map[string]interface{}:
		if v, ok := t["value"].(float64); ok {
			return int(v)
		}
	}
	return 0
}

// extractFacetBuckets recurses through the plain / filter-wrapped /
// nested-then-filter-wrapped aggregation shapes from spec.md §4.F.2.
func extractFacetBuckets(agg map[string]interface{}, name string) []interface{} {
	if buckets, ok := agg["buckets"].([]interface{}); ok {
		return buckets
	}
	if inner, ok := agg[name].(map[string]interface{}); ok {
		return extractFacetBuckets(inner, name)
	}
	return nil
}

func extractFacets(aggs map[string]interface{}, facets []string) map[string][]engine.FacetValue {
	out := map[string][]engine.FacetValue{}
	for _, name := range facets {
		aggEntry, ok := aggs[name].(map[string]interface{})
		if !ok {
			continue
		}
		buckets := extractFacetBuckets(aggEntry, name)
		values := make([]engine.FacetValue, 0, len(buckets))
		for _, b := range buckets {
			bucket, ok := b.(map[string]interface{})
			if !ok {
				continue
			}
			values = append(values, engine.FacetValue{
				Value: stringifyKey(bucket["key"]),
				Count: intOf(bucket["doc_count"]),
			})
		}
		out[name] = values
	}
	return out
}

func extractHistograms(aggs map[string]interface{}, histogram map[string]int) map[string][]engine.HistogramBucket {
	out := map[string][]engine.HistogramBucket{}
	for field := range histogram {
		aggEntry, ok := aggs["__histogram_"+field].(map[string]interface{})
		if !ok {
			continue
		}
		buckets, _ := aggEntry["buckets"].([]interface{})
		values := make([]engine.HistogramBucket, 0, len(buckets))
		for _, b := range buckets {
			bucket, ok := b.(map[string]interface{})
			if !ok {
				continue
			}
			values = append(values, engine.HistogramBucket{Key: bucket["key"], Count: intOf(bucket["doc_count"])})
		}
		out[field] = values
	}
	return out
}

func extractGeoClusters(aggs map[string]interface{}) []engine.GeoCluster {
	geoAgg, ok := aggs["__geo_grid"].(map[string]interface{})
	if !ok {
		return nil
	}
	buckets, _ := geoAgg["buckets"].([]interface{})
	out := make([]engine.GeoCluster, 0, len(buckets))
	for _, b := range buckets {
		bucket, ok := b.(map[string]interface{})
		if !ok {
			continue
		}
		key, _ := bucket["key"].(string)
		lat, lng, ok := geotileCentroid(key)
		if !ok {
			continue
		}
		cluster := engine.GeoCluster{Lat: lat, Lng: lng, Count: intOf(bucket["doc_count"]), Key: key}
		if sample, ok := bucket["sample"].(map[string]interface{}); ok {
			if sampleHits, ok := sample["hits"].(map[string]interface{}); ok {
				if rawHits, ok := sampleHits["hits"].([]interface{}); ok && len(rawHits) > 0 {
					if hitMap, ok := rawHits[0].(map[string]interface{}); ok {
						hit := normalizeHit(hitMap)
						cluster.Hit = &hit
					}
				}
			}
		}
		out = append(out, cluster)
	}
	return out
}

// extractSuggestions flattens the phrase-suggester's nested option lists,
// keeping only the "text" strings (spec.md §4.F.2).
func extractSuggestions(raw map[string]interface{}) []string {
	suggest, ok := raw["suggest"].(map[string]interface{})
	if !ok {
		return []string{}
	}
	entries, ok := suggest["__suggest"].([]interface{})
	if !ok {
		return []string{}
	}
	var out []string
	for _, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		options, ok := entry["options"].([]interface{})
		if !ok {
			continue
		}
		for _, o := range options {
			option, ok := o.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := option["text"].(string); ok {
				out = append(out, text)
			}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func stringifyKey(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return trimFloat(x)
	default:
		return ""
	}
}

func intOf(v interface{}) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return 0
}
