package model

// GeologyLayerKind selects one of the two NGU map layers.
type GeologyLayerKind string

const (
	GeologyBedrock  GeologyLayerKind = "bedrock"
	GeologySediment GeologyLayerKind = "sediment"
)

// GeologyLayer is the first feature found under a point in one layer.
// Available is false when the point has no mapped feature.
type GeologyLayer struct {
	Layer     GeologyLayerKind  `json:"layer"`
	Available bool              `json:"available"`
	Fields    map[string]string `json:"fields"`
}

// Geology joins bedrock and sediment.
type Geology struct {
	Bedrock  *GeologyLayer `json:"bedrock"`
	Sediment *GeologyLayer `json:"sediment"`
}

func (l *GeologyLayer) usable() bool {
	return l != nil && l.Available && len(l.Fields) > 0
}

// IsEmpty implements Emptier.
func (g *Geology) IsEmpty() bool {
	return g == nil || (!g.Bedrock.usable() && !g.Sediment.usable())
}
