// Package mapview defines the map contract the lookup core drives and a
// recorder that holds the resulting map state.
package mapview

import (
	"sort"
	"strings"
	"sync"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

// Overlay kinds.
const (
	OverlayNature   = "nature"
	OverlayHeritage = "heritage"
	storePrefix     = "stores:"
)

// StoreOverlay names the overlay for one chain's nearby stores.
func StoreOverlay(chain string) string {
	return storePrefix + chain
}

// IsStoreOverlay reports whether kind is a store overlay and returns its chain.
func IsStoreOverlay(kind string) (string, bool) {
	if !strings.HasPrefix(kind, storePrefix) {
		return "", false
	}
	return strings.TrimPrefix(kind, storePrefix), true
}

// Sink receives map commands. Implementations must be safe for use from
// multiple goroutines.
type Sink interface {
	PlaceMarker(c geo.Coordinate)
	// PanTo recenters the view. zoom <= 0 keeps the current zoom.
	PanTo(c geo.Coordinate, zoom int)
	SetOverlayDataset(kind string, fc *geojson.FeatureCollection)
	ClearOverlays()
}

// StoresCollection converts nearby stores into point features carrying
// name, address, city and distance_km properties.
func StoresCollection(near []geo.Near[model.Store]) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(near))}
	for _, n := range near {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry: geom.NewPointFlat(geom.XY, []float64{n.Coordinate.Lon, n.Coordinate.Lat}),
			Properties: map[string]any{
				"chain":       n.Item.Chain,
				"name":        n.Item.Name,
				"address":     n.Item.Address,
				"city":        n.Item.City,
				"distance_km": n.DistanceKm,
			},
		})
	}
	return fc
}

// State records map commands. Overlay datasets are kept whether or not the
// overlay is visible, so toggling one on shows the latest data at once.
type State struct {
	mu       sync.RWMutex
	marker   *geo.Coordinate
	center   *geo.Coordinate
	zoom     int
	overlays map[string]*geojson.FeatureCollection
	visible  map[string]bool
}

var _ Sink = (*State)(nil)

// NewState creates an empty map. Store overlays start visible; nature and
// heritage start hidden.
func NewState(initialZoom int) *State {
	return &State{
		zoom:     initialZoom,
		overlays: make(map[string]*geojson.FeatureCollection),
		visible:  map[string]bool{OverlayNature: false, OverlayHeritage: false},
	}
}

func (s *State) PlaceMarker(c geo.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = &c
}

func (s *State) PanTo(c geo.Coordinate, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = &c
	if zoom > 0 {
		s.zoom = zoom
	}
}

func (s *State) SetOverlayDataset(kind string, fc *geojson.FeatureCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays[kind] = fc
}

func (s *State) ClearOverlays() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays = make(map[string]*geojson.FeatureCollection)
}

// Toggle flips an overlay's visibility and returns the new value.
func (s *State) Toggle(kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible[kind] = !s.visibleLocked(kind)
	return s.visible[kind]
}

func (s *State) visibleLocked(kind string) bool {
	v, ok := s.visible[kind]
	if !ok {
		_, isStore := IsStoreOverlay(kind)
		return isStore
	}
	return v
}

// Visible reports whether an overlay is shown.
func (s *State) Visible(kind string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleLocked(kind)
}

// Marker returns the marker position, if placed.
func (s *State) Marker() (geo.Coordinate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.marker == nil {
		return geo.Coordinate{}, false
	}
	return *s.marker, true
}

// View returns the viewport center (if set) and zoom.
func (s *State) View() (geo.Coordinate, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.center == nil {
		return geo.Coordinate{}, s.zoom, false
	}
	return *s.center, s.zoom, true
}

// Overlay returns the dataset for kind, if any.
func (s *State) Overlay(kind string) (*geojson.FeatureCollection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fc, ok := s.overlays[kind]
	return fc, ok
}

// Overlays lists the kinds that currently hold a dataset, sorted.
func (s *State) Overlays() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.overlays))
	for k := range s.overlays {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// VisibleFeatures returns the feature count per visible overlay.
func (s *State) VisibleFeatures() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	for k, fc := range s.overlays {
		if !s.visibleLocked(k) {
			continue
		}
		n := 0
		if fc != nil {
			n = len(fc.Features)
		}
		out[k] = n
	}
	return out
}
