package panel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/norgesglass/norgesglass/internal/model"
)

// Fixed texts.
const (
	LoadingMessage      = "Henter data..."
	DefaultErrorMessage = "Kunne ikke hente data"
	defaultEmpty        = "Ingen data funnet"
	missing             = "–"
	sep                 = " · "
)

var emptyMessages = map[ID]string{
	Weather:    "Ingen værdata tilgjengelig",
	Sun:        "Ingen soldata tilgjengelig",
	Nature:     "Ingen verneområder i nærheten",
	Heritage:   "Ingen kulturminner i nærheten",
	Hydro:      "Ingen målestasjoner i nærheten",
	Population: "Ingen befolkningsdata tilgjengelig",
	Business:   "Ingen registrerte virksomheter",
}

// EmptyMessage is what a panel says when its source had nothing.
func EmptyMessage(id ID) string {
	if m, ok := emptyMessages[id]; ok {
		return m
	}
	return defaultEmpty
}

// Row is one line of rendered panel content. Heading rows have no Value.
type Row struct {
	Label   string
	Value   string
	Heading bool
}

// The bare "no" tag has no CLDR number data and falls back to comma grouping.
var printer = message.NewPrinter(language.MustParse("nb"))

// FormatThousands groups digits the Norwegian way, with a no-break space (717 710).
func FormatThousands(n int64) string {
	return printer.Sprintf("%d", n)
}

// Render turns a panel's content into rows. Unknown content renders as a
// single row holding its default formatting.
func Render(id ID, content any) []Row {
	switch v := content.(type) {
	case *model.AdminUnit:
		return renderAdmin(v)
	case *model.Weather:
		return renderWeather(v)
	case *model.SunEvents:
		return renderSun(v)
	case *model.FeatureSet:
		if id == Heritage {
			return renderHeritage(v)
		}
		return renderNature(v)
	case model.PlaceNames:
		return renderPlaceNames(v)
	case *model.Geology:
		return renderGeology(v)
	case model.HydroStations:
		return renderHydro(v)
	case *model.Population:
		return renderPopulation(v)
	case model.Businesses:
		return renderBusinesses(v)
	case nil:
		return nil
	default:
		return []Row{{Label: id.Title(), Value: fmt.Sprint(v)}}
	}
}

func renderAdmin(a *model.AdminUnit) []Row {
	return []Row{
		{Label: a.Municipality + " kommune", Heading: true},
		{Label: "Fylke", Value: a.County},
		{Label: "Kommunenr.", Value: a.MunicipalityNumber},
	}
}

func withUnit(v *float64, unit string) string {
	if v == nil {
		return missing
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

// forecastStrip is how many upcoming steps follow the current conditions.
const forecastStrip = 6

func renderWeather(w *model.Weather) []Row {
	if w.IsEmpty() {
		return nil
	}
	now := w.Forecast.Steps[0]
	rows := []Row{
		{Label: "Temperatur", Value: withUnit(now.AirTemperature, "°C")},
		{Label: "Vind", Value: withUnit(now.WindSpeed, " m/s")},
		{Label: "Luftfuktighet", Value: withUnit(now.RelativeHumidity, "%")},
	}
	if w.Nowcast != nil {
		rows = append(rows, Row{Label: "Nedbør nå", Value: withUnit(w.Nowcast.PrecipitationRate, " mm/t")})
	}

	next := w.Forecast.Steps[1:]
	if len(next) > forecastStrip {
		next = next[:forecastStrip]
	}
	if len(next) > 0 {
		rows = append(rows, Row{Label: "Prognose", Heading: true})
	}
	for _, step := range next {
		rows = append(rows, Row{Label: step.Time.Format("15:04"), Value: withUnit(step.AirTemperature, "°")})
	}
	return rows
}

func clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("15:04")
}

// FormatDayLength renders a duration as "10t 18m".
func FormatDayLength(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dt %dm", h, m)
}

func renderSun(s *model.SunEvents) []Row {
	if s.Sunrise == nil && s.Sunset == nil {
		if s.MidnightSun() {
			return []Row{{Label: "Midnattsol", Value: "Solen går ikke ned"}}
		}
		return []Row{{Label: "Mørketid", Value: "Solen går ikke opp"}}
	}

	rows := []Row{{Label: "Opp", Value: clock(s.Sunrise)}}
	if s.SolarNoon != nil {
		rows = append(rows, Row{Label: "Topp", Value: clock(s.SolarNoon)})
	}
	rows = append(rows, Row{Label: "Ned", Value: clock(s.Sunset)})
	if d := s.DayLength(); d > 0 {
		rows = append(rows, Row{Label: "Dagslys", Value: FormatDayLength(d)})
	}
	return rows
}

// firstString returns the first non-empty string attribute among keys.
func firstString(props map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := props[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// protectionDate handles ArcGIS dates, which arrive as epoch milliseconds.
func protectionDate(v any) string {
	switch d := v.(type) {
	case float64:
		return time.UnixMilli(int64(d)).UTC().Format("02.01.2006")
	case string:
		return d
	default:
		return ""
	}
}

func renderNature(f *model.FeatureSet) []Row {
	var rows []Row
	for _, props := range f.Properties() {
		rows = append(rows, Row{
			Label: firstString(props, "offisieltNavn", "navn"),
			Value: joinNonEmpty(firstString(props, "verneform", "vernefom"), protectionDate(props["vernedato"])),
		})
	}
	return rows
}

func renderHeritage(f *model.FeatureSet) []Row {
	var rows []Row
	for _, props := range f.Properties() {
		rows = append(rows, Row{
			Label: firstString(props, "Navn", "KulturminneNavn"),
			Value: joinNonEmpty(firstString(props, "KulturminneKategori", "Kategori"), firstString(props, "Vernestatus")),
		})
	}
	return rows
}

const maxPlaceNames = 10

func renderPlaceNames(p model.PlaceNames) []Row {
	if len(p) > maxPlaceNames {
		p = p[:maxPlaceNames]
	}
	rows := make([]Row, 0, len(p))
	for _, n := range p {
		rows = append(rows, Row{Label: n.Name, Value: n.Type})
	}
	return rows
}

type fieldLabel struct {
	key, label string
}

// Only the human-readable *_tekst fields of the NGU layers are shown.
var bedrockLabels = []fieldLabel{
	{"hovedbergart_tekst", "Hovedbergart"},
	{"bergartsenhet_tekst", "Bergartsenhet"},
	{"tektoniskhovedinndeling_tekst", "Tektonisk inndeling"},
	{"tektoniskenhet_tekst", "Tektonisk enhet"},
	{"tilleggsbergart1_tekst", "Tilleggsbergart 1"},
	{"tilleggsbergart2_tekst", "Tilleggsbergart 2"},
	{"tilleggsbergart3_tekst", "Tilleggsbergart 3"},
	{"dekkekompleks_tekst", "Dekkekompleks"},
	{"gruppe_tekst", "Gruppe"},
	{"overgruppe_tekst", "Overgruppe"},
}

var sedimentLabels = []fieldLabel{
	{"losmassetype_navn", "Løsmassetype"},
	{"losmassetype_besk", "Beskrivelse"},
	{"datasett_visning_tekst", "Datakilde"},
}

func geologySection(heading string, layer *model.GeologyLayer, labels []fieldLabel) []Row {
	if layer == nil || !layer.Available || len(layer.Fields) == 0 {
		return nil
	}
	rows := []Row{{Label: heading, Heading: true}}
	for _, fl := range labels {
		if v := layer.Fields[fl.key]; v != "" {
			rows = append(rows, Row{Label: fl.label, Value: v})
		}
	}
	return rows
}

func renderGeology(g *model.Geology) []Row {
	rows := geologySection("Berggrunn", g.Bedrock, bedrockLabels)
	return append(rows, geologySection("Løsmasser", g.Sediment, sedimentLabels)...)
}

const maxListed = 5

func renderHydro(h model.HydroStations) []Row {
	if len(h) > maxListed {
		h = h[:maxListed]
	}
	rows := make([]Row, 0, len(h))
	for _, s := range h {
		rows = append(rows, Row{Label: s.Name, Value: joinNonEmpty(s.Parameter, s.Status)})
	}
	return rows
}

func renderPopulation(p *model.Population) []Row {
	label := "Befolkning"
	if p.Period != "" {
		label += " (" + p.Period + ")"
	}
	value := missing
	if p.Value != nil {
		value = FormatThousands(*p.Value)
	}
	return []Row{{Label: label, Value: value}}
}

func renderBusinesses(b model.Businesses) []Row {
	if len(b) > maxListed {
		b = b[:maxListed]
	}
	rows := make([]Row, 0, len(b))
	for _, biz := range b {
		rows = append(rows, Row{Label: biz.Name, Value: joinNonEmpty(biz.OrgForm, biz.Founded, biz.OrgNumber)})
	}
	return rows
}
