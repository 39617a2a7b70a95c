// Package geo provides coordinates, great-circle distance and proximity filtering.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Coordinate is a WGS84 point in decimal degrees. It is a value type; copies
// never alias.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewCoordinate validates lat/lon and returns a Coordinate.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return Coordinate{}, eris.Errorf("geo: invalid coordinate lat=%v lon=%v", lat, lon)
	}
	return c, nil
}

// Valid reports whether the coordinate is finite and inside [-90,90] x [-180,180].
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Truncate rounds both axes to dp decimal places. MET Norway rejects requests
// with more than four.
func (c Coordinate) Truncate(dp int) Coordinate {
	p := math.Pow(10, float64(dp))
	return Coordinate{
		Lat: math.Round(c.Lat*p) / p,
		Lon: math.Round(c.Lon*p) / p,
	}
}

// ParseCoordinate parses "lat,lon" (or "lat lon") in decimal degrees.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	if len(parts) != 2 {
		return Coordinate{}, eris.Errorf("geo: want \"lat,lon\", got %q", s)
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coordinate{}, eris.Wrapf(err, "geo: parse latitude %q", parts[0])
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coordinate{}, eris.Wrapf(err, "geo: parse longitude %q", parts[1])
	}
	return NewCoordinate(lat, lon)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lon)
}

// Norway's bounding box as accepted by the NGU and NVE services.
const (
	norwayLatMin = 57.0
	norwayLatMax = 82.0
	norwayLonMin = -2.0
	norwayLonMax = 35.0
)

// InNorway reports whether c lies inside the service area of the national
// geology and hydrology APIs.
func InNorway(c Coordinate) bool {
	return c.Lat >= norwayLatMin && c.Lat <= norwayLatMax &&
		c.Lon >= norwayLonMin && c.Lon <= norwayLonMax
}

// CheckNorway returns an error describing why c is outside Norway, or nil.
func CheckNorway(c Coordinate) error {
	if !c.Valid() {
		return eris.Errorf("geo: invalid coordinate %s", c)
	}
	if !InNorway(c) {
		return eris.New("coordinates out of Norway bounds (lat 57-82, lon -2 to 35)")
	}
	return nil
}
