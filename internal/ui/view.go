package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/norgesglass/norgesglass/internal/mapview"
	"github.com/norgesglass/norgesglass/internal/panel"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	activeStyle   = lipgloss.NewStyle().Reverse(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	overlayLabels = map[string]string{
		mapview.OverlayNature:   "verneområder",
		mapview.OverlayHeritage: "kulturminner",
	}
)

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Norgesglass"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.results.Open {
		b.WriteString(m.viewResults())
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.viewPanels())
	b.WriteString("\n")
	b.WriteString(m.viewMap())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ velg · enter søk · esc lukk · ctrl+n verneområder · ctrl+k kulturminner · ctrl+r oppdater · ctrl+c avslutt"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewResults() string {
	var b strings.Builder
	for i, r := range m.results.Results {
		line := r.Text
		if sub := strings.Join(nonEmpty(r.Municipality, r.County), ", "); sub != "" {
			line += "  " + labelStyle.Render(sub)
		}
		if i == m.results.Active {
			line = activeStyle.Render(r.Text) + strings.TrimPrefix(line, r.Text)
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (m *Model) viewPanels() string {
	colWidth := m.width/2 - 4
	if colWidth < 30 {
		colWidth = 30
	}
	half := (len(panel.All) + 1) / 2
	var left, right []string
	for i, id := range panel.All {
		box := boxStyle.Width(colWidth).Render(m.viewPanel(id))
		if i < half {
			left = append(left, box)
		} else {
			right = append(right, box)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.JoinVertical(lipgloss.Left, left...),
		lipgloss.JoinVertical(lipgloss.Left, right...),
	)
}

func (m *Model) viewPanel(id panel.ID) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(id.Title()))
	b.WriteString("\n")

	st := m.panels[id]
	switch st.Status {
	case panel.StatusLoading:
		b.WriteString(m.spinner.View() + " " + panel.LoadingMessage)
	case panel.StatusEmpty:
		b.WriteString(dimStyle.Render(st.Message))
	case panel.StatusError:
		b.WriteString(errorStyle.Render(st.Message))
	case panel.StatusContent:
		rows := panel.Render(id, st.Content)
		lines := make([]string, 0, len(rows))
		for _, r := range rows {
			switch {
			case r.Heading:
				lines = append(lines, headingStyle.Render(r.Label))
			case r.Label == "":
				lines = append(lines, r.Value)
			default:
				lines = append(lines, labelStyle.Render(r.Label+":")+" "+r.Value)
			}
		}
		b.WriteString(strings.Join(lines, "\n"))
	default:
		b.WriteString(dimStyle.Render("Velg et punkt"))
	}
	return b.String()
}

func (m *Model) viewMap() string {
	if m.maps == nil {
		return ""
	}
	st := m.maps.State()
	center, zoom, ok := st.View()
	if !ok {
		return labelStyle.Render("Kart: ingen markør")
	}

	parts := []string{fmt.Sprintf("Kart: %s zoom %d", center, zoom)}
	kinds := []string{mapview.OverlayNature, mapview.OverlayHeritage}
	var stores []string
	for _, k := range st.Overlays() {
		if _, isStore := mapview.IsStoreOverlay(k); isStore {
			stores = append(stores, k)
		}
	}
	sort.Strings(stores)
	kinds = append(kinds, stores...)

	for _, k := range kinds {
		label, ok := overlayLabels[k]
		if !ok {
			label, _ = mapview.IsStoreOverlay(k)
		}
		n := 0
		if fc, ok := st.Overlay(k); ok && fc != nil {
			n = len(fc.Features)
		}
		onOff := "av"
		if st.Visible(k) {
			onOff = "på"
		}
		parts = append(parts, fmt.Sprintf("%s %d (%s)", label, n, onOff))
	}
	return labelStyle.Render(strings.Join(parts, " · "))
}
