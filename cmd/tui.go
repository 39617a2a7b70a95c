package main

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/norgesglass/norgesglass/internal/config"
	"github.com/norgesglass/norgesglass/internal/lookup"
	"github.com/norgesglass/norgesglass/internal/mapview"
	"github.com/norgesglass/norgesglass/internal/panel"
	"github.com/norgesglass/norgesglass/internal/source"
	"github.com/norgesglass/norgesglass/internal/storecache"
	"github.com/norgesglass/norgesglass/internal/ui"
)

const defaultTUILog = "norgesglass.log"

// Panel commands are sent while the orchestrator holds its lock, so the
// buffer must absorb a full reset plus results without waiting on the UI.
const tuiEventBuffer = 256

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		logCfg := cfg.Log
		if logCfg.File == "" {
			logCfg.File = defaultTUILog
		}
		if err := config.InitLogger(logCfg); err != nil {
			return eris.Wrap(err, "init logger")
		}

		ctx := cmd.Context()
		src := source.New(cfg)
		events := panel.NewChannelSink(tuiEventBuffer)
		relay := ui.NewMapRelay(mapview.NewState(5))
		orch := lookup.New(src, events, relay, storecache.New(src), lookupOptions(cfg))

		model := ui.New(ctx, ui.Options{
			Lookup:   orch,
			Searcher: src,
			Map:      relay,
			Events:   events.Events(),
			Search:   searchOptions(cfg),
		})
		defer model.Close()

		zap.L().Info("dashboard starting", zap.String("log_file", logCfg.File))
		_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
		// Nothing reads panel events any more; discard them so in-flight
		// branches can finish.
		go func() {
			for range events.Events() {
			}
		}()
		orch.Close()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return eris.Wrap(err, "run dashboard")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
