// Package geotile converts geotile grid keys ("z/x/y") to the centroid
// latitude/longitude of the tile, per spec.md §4.C.
package geotile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
)

// LatLng is a point on the globe.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToLatLng parses a "z/x/y" geotile key and returns the centroid of that
// tile. z is the zoom level, x/y are the tile's column/row at that zoom.
func ToLatLng(key string) (LatLng, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return LatLng{}, gatewayerr.BadRequest("geoGrid", fmt.Sprintf("invalid geotile key %q", key))
	}
	z, err := strconv.Atoi(parts[0])
	if err != nil {
		return LatLng{}, gatewayerr.BadRequest("geoGrid", fmt.Sprintf("invalid geotile zoom %q", parts[0]))
	}
	x, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return LatLng{}, gatewayerr.BadRequest("geoGrid", fmt.Sprintf("invalid geotile x %q", parts[1]))
	}
	y, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return LatLng{}, gatewayerr.BadRequest("geoGrid", fmt.Sprintf("invalid geotile y %q", parts[2]))
	}

	n := math.Exp2(float64(z))
	lng := (x+0.5)/n*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*(y+0.5)/n))) * 180 / math.Pi
	return LatLng{Lat: lat, Lng: lng}, nil
}
