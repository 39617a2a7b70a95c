// Package panel defines the dashboard's display regions, the sink contract
// the lookup core drives them through, and sinks that record or forward
// those commands.
package panel

// ID names one panel. Each panel shows exactly one data category.
type ID int

const (
	Admin ID = iota
	Weather
	Sun
	Nature
	PlaceNames
	Geology
	Heritage
	Hydro
	Population
	Business
)

// All lists every panel in display order.
var All = []ID{Admin, Weather, Sun, Nature, PlaceNames, Geology, Heritage, Hydro, Population, Business}

var names = map[ID]string{
	Admin:      "admin",
	Weather:    "weather",
	Sun:        "sun",
	Nature:     "nature",
	PlaceNames: "placenames",
	Geology:    "geology",
	Heritage:   "heritage",
	Hydro:      "hydro",
	Population: "population",
	Business:   "business",
}

var titles = map[ID]string{
	Admin:      "Kommune",
	Weather:    "Vær",
	Sun:        "Sol",
	Nature:     "Verneområder",
	PlaceNames: "Stedsnavn",
	Geology:    "Geologi",
	Heritage:   "Kulturminner",
	Hydro:      "Hydrologi",
	Population: "Befolkning",
	Business:   "Næringsliv",
}

func (id ID) String() string {
	if n, ok := names[id]; ok {
		return n
	}
	return "unknown"
}

// Title is the panel heading shown to the user.
func (id ID) Title() string {
	return titles[id]
}

// Sink receives display commands for panels. Implementations must be safe
// for use from multiple goroutines.
type Sink interface {
	SetLoading(id ID)
	SetEmpty(id ID)
	SetError(id ID, message string)
	// SetContent shows a successful, non-empty result. content is one of the
	// model result types.
	SetContent(id ID, content any)
}

// Status is a panel's display state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusEmpty
	StatusError
	StatusContent
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	case StatusContent:
		return "content"
	default:
		return "idle"
	}
}

// Settled reports whether s is a terminal state for a lookup.
func (s Status) Settled() bool {
	return s == StatusEmpty || s == StatusError || s == StatusContent
}

// State is what one panel currently shows.
type State struct {
	Status  Status
	Message string
	Content any
}

// Event is one display command, as carried by ChannelSink.
type Event struct {
	Panel ID
	State State
}
