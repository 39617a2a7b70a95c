package model

import "github.com/norgesglass/norgesglass/internal/geo"

// AddressCandidate is one hit from the address search.
type AddressCandidate struct {
	Text         string          `json:"text"`
	Municipality string          `json:"municipality,omitempty"`
	County       string          `json:"county,omitempty"`
	Point        *geo.Coordinate `json:"point,omitempty"`
}

// Position implements geo.Located.
func (a AddressCandidate) Position() (geo.Coordinate, bool) {
	if a.Point == nil {
		return geo.Coordinate{}, false
	}
	return *a.Point, true
}

// AdminUnit is the municipality (kommune) containing a point.
type AdminUnit struct {
	Municipality       string `json:"kommunenavn"`
	County             string `json:"fylkesnavn"`
	MunicipalityNumber string `json:"kommunenummer"`
}

// IsEmpty implements Emptier.
func (a *AdminUnit) IsEmpty() bool {
	return a == nil || (a.Municipality == "" && a.County == "" && a.MunicipalityNumber == "")
}

// RegionCode returns the municipality number used to key statistics and
// business lookups, or "" when the upstream answer had none.
func (a *AdminUnit) RegionCode() string {
	if a == nil {
		return ""
	}
	return a.MunicipalityNumber
}

// PlaceName is one named feature near a point.
type PlaceName struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// PlaceNames is the place name panel result.
type PlaceNames []PlaceName

// IsEmpty implements Emptier.
func (p PlaceNames) IsEmpty() bool { return len(p) == 0 }
