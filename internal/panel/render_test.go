package panel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/norgesglass/norgesglass/internal/model"
)

func f64(v float64) *float64 { return &v }

func TestRenderAdmin(t *testing.T) {
	rows := Render(Admin, &model.AdminUnit{Municipality: "Oslo", County: "Oslo", MunicipalityNumber: "0301"})
	require.Len(t, rows, 3)
	assert.Equal(t, Row{Label: "Oslo kommune", Heading: true}, rows[0])
	assert.Equal(t, "0301", rows[2].Value)
}

func TestRenderWeather(t *testing.T) {
	base := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	steps := []model.ForecastStep{{Time: base, AirTemperature: f64(14.2), WindSpeed: f64(3.1)}}
	for i := 1; i <= 8; i++ {
		steps = append(steps, model.ForecastStep{Time: base.Add(time.Duration(i) * time.Hour), AirTemperature: f64(float64(14 + i))})
	}

	rows := Render(Weather, &model.Weather{
		Forecast: &model.Forecast{Steps: steps},
		Nowcast:  &model.Nowcast{PrecipitationRate: f64(0.4)},
	})

	assert.Equal(t, Row{Label: "Temperatur", Value: "14.2°C"}, rows[0])
	assert.Equal(t, Row{Label: "Vind", Value: "3.1 m/s"}, rows[1])
	assert.Equal(t, Row{Label: "Luftfuktighet", Value: "–"}, rows[2])
	assert.Equal(t, Row{Label: "Nedbør nå", Value: "0.4 mm/t"}, rows[3])
	assert.True(t, rows[4].Heading)
	// Six upcoming steps follow the heading.
	assert.Len(t, rows, 5+6)
	assert.Equal(t, Row{Label: "13:00", Value: "15°"}, rows[5])
}

func TestRenderWeather_NoNowcast(t *testing.T) {
	rows := Render(Weather, &model.Weather{
		Forecast: &model.Forecast{Steps: []model.ForecastStep{{AirTemperature: f64(-3)}}},
	})
	require.Len(t, rows, 3)
	assert.Equal(t, "-3°C", rows[0].Value)
}

func TestRenderSun(t *testing.T) {
	zone := time.FixedZone("", 3600)
	rise := time.Date(2024, 3, 1, 7, 2, 0, 0, zone)
	noon := time.Date(2024, 3, 1, 12, 11, 0, 0, zone)
	set := time.Date(2024, 3, 1, 17, 20, 0, 0, zone)

	rows := Render(Sun, &model.SunEvents{Sunrise: &rise, SolarNoon: &noon, Sunset: &set})
	assert.Equal(t, []Row{
		{Label: "Opp", Value: "07:02"},
		{Label: "Topp", Value: "12:11"},
		{Label: "Ned", Value: "17:20"},
		{Label: "Dagslys", Value: "10t 18m"},
	}, rows)
}

func TestRenderSun_MidnightSunAndPolarNight(t *testing.T) {
	rows := Render(Sun, &model.SunEvents{NoonElevation: f64(43.8)})
	assert.Equal(t, []Row{{Label: "Midnattsol", Value: "Solen går ikke ned"}}, rows)

	rows = Render(Sun, &model.SunEvents{NoonElevation: f64(-2.1)})
	assert.Equal(t, []Row{{Label: "Mørketid", Value: "Solen går ikke opp"}}, rows)
}

func featureSet(props ...map[string]any) *model.FeatureSet {
	fc := &geojson.FeatureCollection{}
	for _, p := range props {
		fc.Features = append(fc.Features, &geojson.Feature{Properties: p})
	}
	return &model.FeatureSet{Collection: fc}
}

func TestRenderNature(t *testing.T) {
	rows := Render(Nature, featureSet(
		map[string]any{"offisieltNavn": "Østmarka naturreservat", "verneform": "Naturreservat", "vernedato": float64(1041379200000)},
		map[string]any{"navn": "Bygdøy", "vernedato": "1939"},
	))
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Label: "Østmarka naturreservat", Value: "Naturreservat · 01.01.2003"}, rows[0])
	assert.Equal(t, Row{Label: "Bygdøy", Value: "1939"}, rows[1])
}

func TestRenderHeritage(t *testing.T) {
	rows := Render(Heritage, featureSet(
		map[string]any{"Navn": "Akershus festning", "KulturminneKategori": "Bygning", "Vernestatus": "Vedtaksfredet"},
		map[string]any{"KulturminneNavn": "Gravhaug"},
	))
	require.Len(t, rows, 2)
	assert.Equal(t, "Bygning · Vedtaksfredet", rows[0].Value)
	assert.Equal(t, Row{Label: "Gravhaug"}, rows[1])
}

func TestRenderGeology(t *testing.T) {
	rows := Render(Geology, &model.Geology{
		Bedrock: &model.GeologyLayer{Available: true, Fields: map[string]string{
			"hovedbergart_tekst": "Leirskifer",
			"gruppe_tekst":       "Oslogruppen",
			"objekttype":         "ignored",
		}},
		Sediment: &model.GeologyLayer{Available: false},
	})
	assert.Equal(t, []Row{
		{Label: "Berggrunn", Heading: true},
		{Label: "Hovedbergart", Value: "Leirskifer"},
		{Label: "Gruppe", Value: "Oslogruppen"},
	}, rows)
}

func TestRenderPopulation(t *testing.T) {
	v := int64(717710)
	rows := Render(Population, &model.Population{Value: &v, Period: "2024"})
	require.Len(t, rows, 1)
	assert.Equal(t, "Befolkning (2024)", rows[0].Label)
	assert.Equal(t, "717\u00a0710", rows[0].Value)
}

func TestFormatThousands(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1\u00a0000"},
		{717710, "717\u00a0710"},
		{1234567, "1\u00a0234\u00a0567"},
	}
	for _, tt := range tests {
		got := FormatThousands(tt.in)
		assert.Equal(t, tt.want, got)
		assert.NotContains(t, got, ",")
	}
}

func TestRenderListsAreCapped(t *testing.T) {
	var biz model.Businesses
	var stations model.HydroStations
	var names model.PlaceNames
	for i := 0; i < 12; i++ {
		biz = append(biz, model.Business{Name: "AS", OrgForm: "Aksjeselskap", OrgNumber: "1"})
		stations = append(stations, model.HydroStation{Name: "S", Parameter: "Vannstand"})
		names = append(names, model.PlaceName{Name: "N", Type: "By"})
	}
	assert.Len(t, Render(Business, biz), 5)
	assert.Equal(t, "Aksjeselskap · 1", Render(Business, biz)[0].Value)
	assert.Len(t, Render(Hydro, stations), 5)
	assert.Len(t, Render(PlaceNames, names), 10)
}

func TestRenderUnknown(t *testing.T) {
	assert.Nil(t, Render(Admin, nil))
	assert.Equal(t, []Row{{Label: "Sol", Value: "7"}}, Render(Sun, 7))
}

func TestEmptyMessage(t *testing.T) {
	assert.Equal(t, "Ingen værdata tilgjengelig", EmptyMessage(Weather))
	assert.Equal(t, "Ingen data funnet", EmptyMessage(Admin))
}
