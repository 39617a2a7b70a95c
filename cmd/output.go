package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/norgesglass/norgesglass/internal/mapview"
	"github.com/norgesglass/norgesglass/internal/panel"
)

var (
	titleColor   = color.New(color.FgBlue, color.Bold)
	headingColor = color.New(color.Bold)
	labelColor   = color.New(color.FgHiBlack)
	errorColor   = color.New(color.FgRed)
	emptyColor   = color.New(color.FgHiBlack, color.Italic)
)

func printPanel(w io.Writer, id panel.ID, st panel.State) {
	titleColor.Fprintln(w, id.Title())
	switch st.Status {
	case panel.StatusContent:
		for _, r := range panel.Render(id, st.Content) {
			switch {
			case r.Heading:
				fmt.Fprintf(w, "  %s\n", headingColor.Sprint(r.Label))
			case r.Label == "":
				fmt.Fprintf(w, "  %s\n", r.Value)
			default:
				fmt.Fprintf(w, "  %s %s\n", labelColor.Sprint(r.Label+":"), r.Value)
			}
		}
	case panel.StatusError:
		fmt.Fprintf(w, "  %s\n", errorColor.Sprint(st.Message))
	case panel.StatusEmpty:
		fmt.Fprintf(w, "  %s\n", emptyColor.Sprint(st.Message))
	case panel.StatusLoading:
		fmt.Fprintf(w, "  %s\n", emptyColor.Sprint(panel.LoadingMessage))
	default:
		fmt.Fprintf(w, "  %s\n", emptyColor.Sprint("ikke hentet"))
	}
	fmt.Fprintln(w)
}

func printMap(w io.Writer, m *mapview.State) {
	titleColor.Fprintln(w, "Kart")
	marker, ok := m.Marker()
	if !ok {
		fmt.Fprintf(w, "  %s\n\n", emptyColor.Sprint("ingen markør"))
		return
	}
	_, zoom, _ := m.View()
	fmt.Fprintf(w, "  %s %s (zoom %d)\n", labelColor.Sprint("Markør:"), marker, zoom)

	kinds := m.Overlays()
	sort.Strings(kinds)
	for _, k := range kinds {
		fc, _ := m.Overlay(k)
		n := 0
		if fc != nil {
			n = len(fc.Features)
		}
		state := "skjult"
		if m.Visible(k) {
			state = "vist"
		}
		fmt.Fprintf(w, "  %s %d objekter, %s\n", labelColor.Sprint(strings.TrimSpace(k)+":"), n, state)
	}
	fmt.Fprintln(w)
}
