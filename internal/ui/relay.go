package ui

import (
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/mapview"
)

// MapRelay records map commands in a mapview.State and signals the
// dashboard that it should redraw. Signals coalesce.
type MapRelay struct {
	state   *mapview.State
	changed chan struct{}
}

var _ mapview.Sink = (*MapRelay)(nil)

// NewMapRelay wraps state.
func NewMapRelay(state *mapview.State) *MapRelay {
	return &MapRelay{state: state, changed: make(chan struct{}, 1)}
}

// Changed fires after one or more map commands.
func (r *MapRelay) Changed() <-chan struct{} { return r.changed }

// State returns the wrapped map.
func (r *MapRelay) State() *mapview.State { return r.state }

func (r *MapRelay) signal() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}

func (r *MapRelay) PlaceMarker(c geo.Coordinate) {
	r.state.PlaceMarker(c)
	r.signal()
}

func (r *MapRelay) PanTo(c geo.Coordinate, zoom int) {
	r.state.PanTo(c, zoom)
	r.signal()
}

func (r *MapRelay) SetOverlayDataset(kind string, fc *geojson.FeatureCollection) {
	r.state.SetOverlayDataset(kind, fc)
	r.signal()
}

func (r *MapRelay) ClearOverlays() {
	r.state.ClearOverlays()
	r.signal()
}
