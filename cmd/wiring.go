package main

import (
	"time"

	"github.com/norgesglass/norgesglass/internal/config"
	"github.com/norgesglass/norgesglass/internal/lookup"
	"github.com/norgesglass/norgesglass/internal/search"
)

func lookupOptions(c *config.Config) lookup.Options {
	return lookup.Options{
		Zoom:             c.Lookup.Zoom,
		StoreChains:      c.Lookup.StoreChains,
		StoreRadiusKm:    c.Lookup.StoreRadiusKm,
		CancelSuperseded: c.Lookup.CancelSuperseded,
	}
}

func searchOptions(c *config.Config) search.Options {
	return search.Options{
		Debounce: time.Duration(c.Search.DebounceMs) * time.Millisecond,
		MinChars: c.Search.MinChars,
	}
}
