package model

import "github.com/norgesglass/norgesglass/internal/geo"

// HydroStation is an active hydrological measuring station.
type HydroStation struct {
	Name      string `json:"station_name"`
	Parameter string `json:"parameter_name"`
	Status    string `json:"status"`
}

// HydroStations is the hydrology panel result.
type HydroStations []HydroStation

// IsEmpty implements Emptier.
func (h HydroStations) IsEmpty() bool { return len(h) == 0 }

// Population is the latest published population count for a municipality.
type Population struct {
	Value  *int64 `json:"value,omitempty"`
	Period string `json:"period,omitempty"`
}

// IsEmpty implements Emptier.
func (p *Population) IsEmpty() bool { return p == nil || p.Value == nil }

// Business is one registered unit in the business registry.
type Business struct {
	Name      string `json:"name"`
	OrgNumber string `json:"org_number"`
	OrgForm   string `json:"org_form,omitempty"`
	Founded   string `json:"founded,omitempty"`
}

// Businesses is the business panel result.
type Businesses []Business

// IsEmpty implements Emptier.
func (b Businesses) IsEmpty() bool { return len(b) == 0 }

// Store is one record from a retail chain's store directory.
type Store struct {
	Chain   string   `json:"chain"`
	Name    string   `json:"name"`
	Address string   `json:"address,omitempty"`
	City    string   `json:"city,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lng,omitempty"`
}

// Position implements geo.Located.
func (s Store) Position() (geo.Coordinate, bool) {
	if s.Lat == nil || s.Lon == nil {
		return geo.Coordinate{}, false
	}
	c := geo.Coordinate{Lat: *s.Lat, Lon: *s.Lon}
	return c, c.Valid()
}
