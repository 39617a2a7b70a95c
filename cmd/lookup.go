package main

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/lookup"
	"github.com/norgesglass/norgesglass/internal/mapview"
	"github.com/norgesglass/norgesglass/internal/panel"
	"github.com/norgesglass/norgesglass/internal/source"
	"github.com/norgesglass/norgesglass/internal/storecache"
)

var (
	lookupLat     float64
	lookupLon     float64
	lookupLabel   string
	lookupTimeout time.Duration
	lookupJSON    bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Fetch every panel for one point",
	Long:  "Runs a single lookup for --lat/--lon, printing each panel as it settles, then the resulting map state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := geo.NewCoordinate(lookupLat, lookupLon)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), lookupTimeout)
		defer cancel()

		src := source.New(cfg)
		return runLookup(ctx, cmd.OutOrStdout(), src, c)
	},
}

func runLookup(ctx context.Context, w io.Writer, src source.DataSource, c geo.Coordinate) error {
	board := panel.NewBoard()
	events := panel.NewChannelSink(len(panel.All) * 4)
	maps := mapview.NewState(cfg.Lookup.Zoom)
	orch := lookup.New(src, panel.Multi{board, events}, maps, storecache.New(src), lookupOptions(cfg))

	show := func(ev panel.Event) {
		if !lookupJSON && ev.State.Status.Settled() {
			printPanel(w, ev.Panel, ev.State)
		}
	}
	done := make(chan struct{})
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for {
			select {
			case ev := <-events.Events():
				show(ev)
			case <-done:
				for {
					select {
					case ev := <-events.Events():
						show(ev)
					default:
						return
					}
				}
			}
		}
	}()

	orch.Select(ctx, c, lookupLabel)
	waitErr := board.WaitSettled(ctx)
	// Store overlays may still be arriving; ctx bounds them.
	orch.Wait()
	close(done)
	<-printed

	zap.L().Info("lookup finished",
		zap.String("session_id", orch.Session().ID),
		zap.Int("stale_dropped", orch.Dropped()),
	)

	if lookupJSON {
		return writeLookupJSON(w, board, maps)
	}
	printMap(w, maps)
	if waitErr != nil {
		return eris.Wrap(waitErr, "lookup did not settle")
	}
	return nil
}

type panelJSON struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Content any    `json:"content,omitempty"`
}

type mapJSON struct {
	Marker   *geo.Coordinate `json:"marker,omitempty"`
	Zoom     int             `json:"zoom"`
	Overlays map[string]int  `json:"overlays"`
}

func writeLookupJSON(w io.Writer, board *panel.Board, maps *mapview.State) error {
	out := struct {
		Panels map[string]panelJSON `json:"panels"`
		Map    mapJSON              `json:"map"`
	}{
		Panels: make(map[string]panelJSON, len(panel.All)),
		Map:    mapJSON{Overlays: make(map[string]int)},
	}
	for id, st := range board.Snapshot() {
		out.Panels[id.String()] = panelJSON{Status: st.Status.String(), Message: st.Message, Content: st.Content}
	}
	if m, ok := maps.Marker(); ok {
		out.Map.Marker = &m
	}
	_, out.Map.Zoom, _ = maps.View()
	for _, k := range maps.Overlays() {
		fc, _ := maps.Overlay(k)
		if fc != nil {
			out.Map.Overlays[k] = len(fc.Features)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	lookupCmd.Flags().Float64Var(&lookupLat, "lat", 0, "latitude in decimal degrees (required)")
	lookupCmd.Flags().Float64Var(&lookupLon, "lon", 0, "longitude in decimal degrees (required)")
	lookupCmd.Flags().StringVar(&lookupLabel, "label", "", "label for the point, e.g. an address")
	lookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 30*time.Second, "give up on panels still loading after this long")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print the final panel and map state as JSON")
	_ = lookupCmd.MarkFlagRequired("lat")
	_ = lookupCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(lookupCmd)
}
