package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortOrdered(t *testing.T) {
	om, err := ParseSort(`{"title":"asc","createdAt":"desc"}`)
	require.NoError(t, err)
	require.NotNil(t, om)
	assert.Equal(t, 2, om.Len())
}

func TestParseSortRejectsBadOrder(t *testing.T) {
	_, err := ParseSort(`{"title":"ascending"}`)
	assert.Error(t, err)
}

func TestParseFiltersVariants(t *testing.T) {
	filters, err := ParseFilters(`{"category":"painting","tags":["a","b"],"featured":true,"price":{"min":10,"max":20}}`)
	require.NoError(t, err)
	assert.Equal(t, "painting", filters["category"])
	assert.Equal(t, []string{"a", "b"}, filters["tags"])
	assert.Equal(t, true, filters["featured"])
}

func TestParseHistogramRejectsNonInteger(t *testing.T) {
	_, err := ParseHistogram(`{"price":1.5}`)
	assert.Error(t, err)
}

func TestParseGeoGridValidatesPrecision(t *testing.T) {
	_, err := ParseGeoGrid(`{"field":"location","precision":30,"bounds":{"top_left":{"Lat":1,"Lon":1},"bottom_right":{"Lat":0,"Lon":2}}}`)
	assert.Error(t, err)
}

func TestClampPageAndPerPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0))
	assert.Equal(t, 1, ClampPage(-5))
	assert.Equal(t, 1, ClampPerPage(0))
	assert.Equal(t, 100, ClampPerPage(500))
}
