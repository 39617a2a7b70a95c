package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/mapview"
	"github.com/norgesglass/norgesglass/internal/model"
	"github.com/norgesglass/norgesglass/internal/panel"
	"github.com/norgesglass/norgesglass/internal/search"
)

type fakeLookup struct {
	mu       sync.Mutex
	selected []geo.Coordinate
	labels   []string
	has      bool
}

func (f *fakeLookup) Select(_ context.Context, c geo.Coordinate, label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, c)
	f.labels = append(f.labels, label)
	f.has = true
}

func (f *fakeLookup) Refresh(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.has
}

type noSearch struct{}

func (noSearch) SearchAddress(context.Context, string) ([]model.AddressCandidate, error) {
	return nil, nil
}

func newModel(t *testing.T) (*Model, *fakeLookup, *MapRelay) {
	t.Helper()
	lk := &fakeLookup{}
	relay := NewMapRelay(mapview.NewState(5))
	m := New(context.Background(), Options{
		Lookup:   lk,
		Searcher: noSearch{},
		Map:      relay,
		Events:   make(chan panel.Event),
		Search:   search.Options{Debounce: time.Hour, MinChars: 2},
	})
	t.Cleanup(m.Close)
	return m, lk, relay
}

func TestView_PanelStates(t *testing.T) {
	t.Parallel()

	m, _, _ := newModel(t)
	m.Update(panelMsg{Panel: panel.Admin, State: panel.State{
		Status:  panel.StatusContent,
		Content: &model.AdminUnit{Municipality: "Oslo", County: "Oslo", MunicipalityNumber: "0301"},
	}})
	m.Update(panelMsg{Panel: panel.Weather, State: panel.State{
		Status:  panel.StatusError,
		Message: "Forecast request failed: HTTP 500",
	}})
	m.Update(panelMsg{Panel: panel.Nature, State: panel.State{
		Status:  panel.StatusEmpty,
		Message: panel.EmptyMessage(panel.Nature),
	}})
	m.Update(panelMsg{Panel: panel.Sun, State: panel.State{Status: panel.StatusLoading}})

	out := m.View()
	assert.Contains(t, out, "0301")
	assert.Contains(t, out, "HTTP 500")
	assert.Contains(t, out, panel.EmptyMessage(panel.Nature))
	assert.Contains(t, out, panel.LoadingMessage)
	assert.Contains(t, out, "Velg et punkt")
}

func TestEnter_RawCoordinateSelects(t *testing.T) {
	t.Parallel()

	m, lk, _ := newModel(t)
	m.input.SetValue(":59.9139,10.7522")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, coordinateMsg(geo.Coordinate{Lat: 59.9139, Lon: 10.7522}), msg)

	require.Len(t, lk.selected, 1)
	assert.Equal(t, "", lk.labels[0])
	assert.Equal(t, "", m.search.State().Query)
}

func TestEnter_InvalidCoordinate(t *testing.T) {
	t.Parallel()

	m, lk, _ := newModel(t)
	m.input.SetValue(":north,south")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Ugyldig koordinat")
	assert.Empty(t, lk.selected)
}

func TestEnter_NothingHighlighted(t *testing.T) {
	t.Parallel()

	m, _, _ := newModel(t)
	m.input.SetValue("Karl Johans gate")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestOverlayToggles(t *testing.T) {
	t.Parallel()

	m, _, relay := newModel(t)
	require.False(t, relay.State().Visible(mapview.OverlayHeritage))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlK})
	assert.True(t, relay.State().Visible(mapview.OverlayHeritage))
	assert.False(t, relay.State().Visible(mapview.OverlayNature))

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.True(t, relay.State().Visible(mapview.OverlayNature))
}

func TestRefresh_WithoutSelection(t *testing.T) {
	t.Parallel()

	m, _, _ := newModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, statusMsg("Ingen posisjon valgt ennå"), cmd())
}

func TestView_MapLine(t *testing.T) {
	t.Parallel()

	m, _, relay := newModel(t)
	assert.Contains(t, m.View(), "ingen markør")

	c := geo.Coordinate{Lat: 59.9139, Lon: 10.7522}
	relay.PlaceMarker(c)
	relay.PanTo(c, 14)
	relay.SetOverlayDataset(mapview.StoreOverlay("narvesen"), mapview.StoresCollection(nil))

	select {
	case <-relay.Changed():
	default:
		t.Fatal("relay did not signal")
	}

	out := m.View()
	assert.Contains(t, out, "zoom 14")
	assert.Contains(t, out, "narvesen 0 (på)")
	assert.Contains(t, out, "kulturminner 0 (av)")
}
