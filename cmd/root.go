package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/norgesglass/norgesglass/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "norgesglass",
	Short: "Look up everything public about a point in Norway",
	Long:  "Pick an address or a coordinate and see weather, sun, geology, protected areas, cultural heritage, hydrology, population and businesses for it, fetched live from the Norwegian open data services.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
