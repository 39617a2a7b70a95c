package main

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/source"
	"github.com/norgesglass/norgesglass/internal/storecache"
)

var (
	storesLat    float64
	storesLon    float64
	storesRadius float64
	storesChains []string
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "List chain stores near a point",
	Long:  "Fetches the configured store directories and lists the stores within --radius km of --lat/--lon, nearest first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := geo.NewCoordinate(storesLat, storesLon)
		if err != nil {
			return err
		}
		src := source.New(cfg)
		chains := storesChains
		if len(chains) == 0 {
			chains = cfg.Lookup.StoreChains
		}
		if len(chains) == 0 {
			chains = src.Stores.Chains()
		}
		radius := storesRadius
		if radius < 0 {
			radius = math.Inf(1)
		}

		return printStores(cmd.Context(), cmd.OutOrStdout(), storecache.New(src), chains, c, radius)
	},
}

func printStores(ctx context.Context, w io.Writer, cache *storecache.Cache, chains []string, c geo.Coordinate, radius float64) error {
	var failed int
	for _, chain := range chains {
		titleColor.Fprintln(w, chain)
		near, err := cache.Nearby(ctx, chain, c, radius)
		if err != nil {
			failed++
			zap.L().Warn("store directory unavailable", zap.String("chain", chain), zap.Error(err))
			fmt.Fprintf(w, "  %s\n\n", errorColor.Sprint(err.Error()))
			continue
		}
		if len(near) == 0 {
			fmt.Fprintf(w, "  %s\n\n", emptyColor.Sprintf("Ingen butikker innen %g km", radius))
			continue
		}
		for _, n := range near {
			s := n.Item
			fmt.Fprintf(w, "  %6.2f km  %s", n.DistanceKm, headingColor.Sprint(s.Name))
			if addr := joinAddress(s.Address, s.City); addr != "" {
				fmt.Fprintf(w, "  %s", labelColor.Sprint(addr))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
	if failed == len(chains) && failed > 0 {
		return eris.New("no store directory could be fetched")
	}
	return nil
}

func joinAddress(address, city string) string {
	switch {
	case address == "":
		return city
	case city == "":
		return address
	default:
		return address + ", " + city
	}
}

func init() {
	storesCmd.Flags().Float64Var(&storesLat, "lat", 0, "latitude in decimal degrees (required)")
	storesCmd.Flags().Float64Var(&storesLon, "lon", 0, "longitude in decimal degrees (required)")
	storesCmd.Flags().Float64Var(&storesRadius, "radius", 5, "search radius in km; negative means unlimited")
	storesCmd.Flags().StringSliceVar(&storesChains, "chain", nil, "chains to list (default: lookup.store_chains)")
	_ = storesCmd.MarkFlagRequired("lat")
	_ = storesCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(storesCmd)
}
