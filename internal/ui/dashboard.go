// Package ui is the interactive terminal dashboard: a search box with a
// result list, the ten data panels and a one-line map summary.
package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/mapview"
	"github.com/norgesglass/norgesglass/internal/panel"
	"github.com/norgesglass/norgesglass/internal/search"
)

// Lookup is the part of the orchestrator the dashboard drives.
type Lookup interface {
	Select(ctx context.Context, c geo.Coordinate, label string)
	Refresh(ctx context.Context) bool
}

// Options wires a dashboard.
type Options struct {
	Lookup   Lookup
	Searcher search.Searcher
	// Map is the relay the orchestrator was built with.
	Map    *MapRelay
	Events <-chan panel.Event
	Search search.Options
}

type (
	panelMsg       panel.Event
	searchMsg      struct{}
	mapMsg         struct{}
	statusMsg      string
	eventsDoneMsg  struct{}
	selectedMsg    struct{}
	coordinateMsg  geo.Coordinate
	refreshDoneMsg bool
)

// Model is the bubbletea model.
type Model struct {
	ctx     context.Context
	lookup  Lookup
	search  *search.Controller
	maps    *MapRelay
	events  <-chan panel.Event
	changed chan struct{}
	log     *zap.Logger

	input   textinput.Model
	spinner spinner.Model
	panels  map[panel.ID]panel.State
	results search.State
	status  string
	width   int
}

var _ tea.Model = (*Model)(nil)

// New creates the dashboard model. The search controller it owns is closed
// by Close.
func New(ctx context.Context, opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "Søk etter adresse, eller :lat,lon"
	ti.Prompt = "› "
	ti.CharLimit = 120
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &Model{
		ctx:     ctx,
		lookup:  opts.Lookup,
		maps:    opts.Map,
		events:  opts.Events,
		changed: make(chan struct{}, 1),
		log:     zap.L().With(zap.String("component", "ui")),
		input:   ti,
		spinner: sp,
		panels:  make(map[panel.ID]panel.State, len(panel.All)),
		width:   100,
	}

	so := opts.Search
	so.OnChange = func() {
		select {
		case m.changed <- struct{}{}:
		default:
		}
	}
	m.search = search.New(opts.Searcher, opts.Lookup, so)
	m.results = m.search.State()
	return m
}

// Close stops the search controller's timer.
func (m *Model) Close() { m.search.Close() }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.listenPanels(), m.listenSearch(), m.listenMap())
}

func (m *Model) listenPanels() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return eventsDoneMsg{}
		}
		return panelMsg(ev)
	}
}

func (m *Model) listenSearch() tea.Cmd {
	return func() tea.Msg {
		<-m.changed
		return searchMsg{}
	}
}

func (m *Model) listenMap() tea.Cmd {
	if m.maps == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.maps.Changed()
		return mapMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case panelMsg:
		m.panels[msg.Panel] = msg.State
		return m, m.listenPanels()
	case eventsDoneMsg:
		return m, nil
	case searchMsg:
		m.results = m.search.State()
		if m.results.Query != m.input.Value() {
			m.input.SetValue(m.results.Query)
			m.input.CursorEnd()
		}
		return m, m.listenSearch()
	case mapMsg:
		return m, m.listenMap()
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case selectedMsg, refreshDoneMsg, coordinateMsg:
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.input.Width = msg.Width - 6
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "up":
		m.search.Key(m.ctx, search.KeyUp)
		return m, nil
	case "down":
		m.search.Key(m.ctx, search.KeyDown)
		return m, nil
	case "esc":
		m.search.Key(m.ctx, search.KeyEscape)
		return m, nil
	case "enter":
		return m, m.submit()
	case "ctrl+k":
		m.toggle(mapview.OverlayHeritage)
		return m, nil
	case "ctrl+n":
		m.toggle(mapview.OverlayNature)
		return m, nil
	case "ctrl+r":
		return m, m.refresh()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.status = ""
		if !strings.HasPrefix(strings.TrimSpace(v), ":") {
			m.search.Input(m.ctx, v)
		}
	}
	return m, cmd
}

func (m *Model) toggle(kind string) {
	if m.maps == nil {
		return
	}
	m.maps.State().Toggle(kind)
}

// submit runs Enter. Selection takes the orchestrator's lock and feeds the
// panel channel this model drains, so it always runs as a command, never
// inside Update.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if strings.HasPrefix(text, ":") {
		c, err := geo.ParseCoordinate(strings.TrimPrefix(text, ":"))
		if err != nil {
			m.status = "Ugyldig koordinat: skriv :lat,lon"
			return nil
		}
		return m.selectPoint(c)
	}
	if !m.results.Open || m.results.Active < 0 {
		return nil
	}
	ctx, ctrl := m.ctx, m.search
	return func() tea.Msg {
		ctrl.Key(ctx, search.KeyEnter)
		return selectedMsg{}
	}
}

// selectPoint is the map-click path: the search box is cleared and the
// point has no label.
func (m *Model) selectPoint(c geo.Coordinate) tea.Cmd {
	ctx, ctrl, lookup := m.ctx, m.search, m.lookup
	return func() tea.Msg {
		ctrl.Reset()
		lookup.Select(ctx, c, "")
		return coordinateMsg(c)
	}
}

func (m *Model) refresh() tea.Cmd {
	ctx, lookup := m.ctx, m.lookup
	return func() tea.Msg {
		if !lookup.Refresh(ctx) {
			return statusMsg("Ingen posisjon valgt ennå")
		}
		return refreshDoneMsg(true)
	}
}
