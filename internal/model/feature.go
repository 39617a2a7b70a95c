package model

import "github.com/twpayne/go-geom/encoding/geojson"

// FeatureSet is an overlay-bearing result (protected areas, cultural
// heritage): the raw geometry for the map plus its features' properties.
type FeatureSet struct {
	Collection *geojson.FeatureCollection `json:"collection"`
}

// IsEmpty implements Emptier.
func (f *FeatureSet) IsEmpty() bool {
	return f == nil || f.Collection == nil || len(f.Collection.Features) == 0
}

// Len returns the number of features.
func (f *FeatureSet) Len() int {
	if f.IsEmpty() {
		return 0
	}
	return len(f.Collection.Features)
}

// Properties returns each feature's attribute map, in order.
func (f *FeatureSet) Properties() []map[string]any {
	if f.IsEmpty() {
		return nil
	}
	out := make([]map[string]any, 0, len(f.Collection.Features))
	for _, feat := range f.Collection.Features {
		props := feat.Properties
		if props == nil {
			props = map[string]any{}
		}
		out = append(out, props)
	}
	return out
}
