package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// Envelope returns the lon/lat box extending delta degrees around c.
func Envelope(c Coordinate, delta float64) *geom.Bounds {
	return geom.NewBounds(geom.XY).Set(c.Lon-delta, c.Lat-delta, c.Lon+delta, c.Lat+delta)
}

// CirclePolygon approximates a circle of radius degrees around c with the
// given number of vertices. The ring is closed.
func CirclePolygon(c Coordinate, radius float64, vertices int) (*geom.Polygon, error) {
	if vertices < 3 {
		return nil, eris.Errorf("geo: circle needs at least 3 vertices, got %d", vertices)
	}
	ring := make([]geom.Coord, 0, vertices+1)
	for i := 0; i < vertices; i++ {
		angle := 2 * math.Pi * float64(i) / float64(vertices)
		ring = append(ring, geom.Coord{c.Lon + radius*math.Cos(angle), c.Lat + radius*math.Sin(angle)})
	}
	ring = append(ring, ring[0])

	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{ring})
	if err != nil {
		return nil, eris.Wrap(err, "geo: build circle polygon")
	}
	return poly, nil
}

// CircleWKT is CirclePolygon rendered as WKT.
func CircleWKT(c Coordinate, radius float64, vertices int) (string, error) {
	poly, err := CirclePolygon(c, radius, vertices)
	if err != nil {
		return "", err
	}
	s, err := wkt.Marshal(poly)
	if err != nil {
		return "", eris.Wrap(err, "geo: encode WKT")
	}
	return s, nil
}

// Point converts c to a go-geom point in lon/lat axis order.
func Point(c Coordinate) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{c.Lon, c.Lat}).SetSRID(4326)
}
