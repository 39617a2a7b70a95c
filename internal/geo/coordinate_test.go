package geo

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"valid Oslo", 59.91, 10.75, false},
		{"poles", -90, 180, false},
		{"lat too high", 90.5, 10, true},
		{"lon too low", 10, -180.1, true},
		{"NaN", math.NaN(), 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lon)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	c, err := ParseCoordinate("59.9139,10.7522")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: 59.9139, Lon: 10.7522}, c)

	c, err = ParseCoordinate(" 60.39, 5.32 ")
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: 60.39, Lon: 5.32}, c)

	for _, bad := range []string{"", "59.9", "a,b", "59.9,10,1", "95,10"} {
		_, err := ParseCoordinate(bad)
		assert.Error(t, err, bad)
	}
}

func TestCheckNorway(t *testing.T) {
	tests := []struct {
		name    string
		c       Coordinate
		wantErr bool
	}{
		{"valid Oslo", Coordinate{59.91, 10.75}, false},
		{"valid Tromsø", Coordinate{69.65, 18.96}, false},
		{"out of bounds south", Coordinate{50.0, 10.75}, true},
		{"out of bounds east", Coordinate{59.91, 40.0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNorway(tt.c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	c := Coordinate{Lat: 59.913912345, Lon: 10.752287654}.Truncate(4)
	assert.Equal(t, 59.9139, c.Lat)
	assert.Equal(t, 10.7523, c.Lon)
}

func TestEnvelope(t *testing.T) {
	b := Envelope(Coordinate{Lat: 60, Lon: 10}, 0.05)
	assert.InDelta(t, 9.95, b.Min(0), 1e-9)
	assert.InDelta(t, 59.95, b.Min(1), 1e-9)
	assert.InDelta(t, 10.05, b.Max(0), 1e-9)
	assert.InDelta(t, 60.05, b.Max(1), 1e-9)
}

func TestCircleWKT(t *testing.T) {
	s, err := CircleWKT(Coordinate{Lat: 60, Lon: 10}, 0.1, 8)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "POLYGON"))
	// 8 vertices plus the closing point.
	assert.Equal(t, 9, strings.Count(s, ",")+1)

	poly, err := CirclePolygon(Coordinate{Lat: 60, Lon: 10}, 0.1, 8)
	require.NoError(t, err)
	ring := poly.Coords()[0]
	assert.Equal(t, ring[0], ring[len(ring)-1])

	_, err = CirclePolygon(Coordinate{}, 0.1, 2)
	assert.Error(t, err)
}
