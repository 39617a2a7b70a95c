// Package lookup runs one dashboard lookup per selected point: it resets the
// panels and the map, fans out to every data source, joins the paired and
// dependent requests, and lets only the most recent selection reach the
// sinks.
package lookup

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/mapview"
	"github.com/norgesglass/norgesglass/internal/model"
	"github.com/norgesglass/norgesglass/internal/panel"
	"github.com/norgesglass/norgesglass/internal/source"
)

// RegionCodeUnavailableMessage is shown on the population and business
// panels when the admin unit lookup succeeds without a municipality number.
const RegionCodeUnavailableMessage = "Kommunenummer ikke tilgjengelig"

// ErrRegionCodeUnavailable is the error form of RegionCodeUnavailableMessage.
var ErrRegionCodeUnavailable = eris.New(RegionCodeUnavailableMessage)

// StoreFinder answers proximity queries against cached store directories.
type StoreFinder interface {
	Nearby(ctx context.Context, chain string, origin geo.Coordinate, radiusKm float64) ([]geo.Near[model.Store], error)
}

// Options tunes an Orchestrator.
type Options struct {
	// Zoom is the map zoom used when centering on a selection.
	Zoom          int
	StoreChains   []string
	StoreRadiusKm float64
	// CancelSuperseded cancels the context of a lookup's in-flight requests
	// once a newer selection is made. Stale results are dropped either way.
	CancelSuperseded bool
	// Now supplies the day sun events are requested for.
	Now func() time.Time
}

// Session is the orchestrator's view of the current selection.
type Session struct {
	ID         string
	Epoch      uint64
	Location   *geo.Coordinate
	Label      string
	RegionCode string
}

// Orchestrator owns the session and the epoch counter. All sink calls are
// made while holding its lock, after checking the epoch, so a superseded
// lookup can never touch a sink.
type Orchestrator struct {
	src    source.DataSource
	panels panel.Sink
	maps   mapview.Sink
	stores StoreFinder
	opts   Options
	log    *zap.Logger

	wg sync.WaitGroup

	mu      sync.Mutex
	session Session
	cancel  context.CancelFunc
	dropped int
}

// New creates an Orchestrator. stores may be nil to disable store overlays.
func New(src source.DataSource, panels panel.Sink, maps mapview.Sink, stores StoreFinder, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		src:    src,
		panels: panels,
		maps:   maps,
		stores: stores,
		opts:   opts,
		log:    zap.L().With(zap.String("component", "lookup")),
	}
}

// Select starts a new lookup for c. Before it returns, the marker is placed,
// the view recentered, overlays cleared and every panel set to loading;
// results arrive asynchronously. label may be empty.
func (o *Orchestrator) Select(ctx context.Context, c geo.Coordinate, label string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cancel != nil && o.opts.CancelSuperseded {
		o.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	o.session.Epoch++
	loc := c
	o.session.ID = uuid.NewString()
	o.session.Location = &loc
	o.session.Label = label
	o.session.RegionCode = ""
	epoch := o.session.Epoch

	o.log.Info("lookup started",
		zap.String("session_id", o.session.ID),
		zap.Uint64("epoch", epoch),
		zap.Float64("lat", c.Lat),
		zap.Float64("lon", c.Lon),
		zap.String("label", label),
	)

	o.maps.PlaceMarker(c)
	o.maps.PanTo(c, o.opts.Zoom)
	o.maps.ClearOverlays()
	for _, id := range panel.All {
		o.panels.SetLoading(id)
	}

	o.spawn(func() { o.admin(ctx, epoch, c) })
	o.spawn(func() { o.weather(ctx, epoch, c) })
	o.spawn(func() { o.geology(ctx, epoch, c) })
	o.spawn(func() {
		o.single(ctx, epoch, panel.Sun, func(ctx context.Context) (any, error) {
			return o.src.Sunrise(ctx, c, o.opts.Now())
		})
	})
	o.spawn(func() {
		o.single(ctx, epoch, panel.PlaceNames, func(ctx context.Context) (any, error) {
			return o.src.PlaceNames(ctx, c)
		})
	})
	o.spawn(func() {
		o.single(ctx, epoch, panel.Hydro, func(ctx context.Context) (any, error) {
			return o.src.Hydrology(ctx, c)
		})
	})
	o.spawn(func() {
		o.overlay(ctx, epoch, panel.Nature, mapview.OverlayNature, func(ctx context.Context) (*model.FeatureSet, error) {
			return o.src.NatureReserves(ctx, c)
		})
	})
	o.spawn(func() {
		o.overlay(ctx, epoch, panel.Heritage, mapview.OverlayHeritage, func(ctx context.Context) (*model.FeatureSet, error) {
			return o.src.CulturalHeritage(ctx, c)
		})
	})
	if o.stores != nil {
		for _, chain := range o.opts.StoreChains {
			o.spawn(func() { o.nearbyStores(ctx, epoch, chain, c) })
		}
	}
}

// Refresh re-runs the lookup for the current location. It returns false when
// nothing has been selected yet.
func (o *Orchestrator) Refresh(ctx context.Context) bool {
	s := o.Session()
	if s.Location == nil {
		return false
	}
	o.Select(ctx, *s.Location, s.Label)
	return true
}

// Session returns a copy of the current session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session
	if s.Location != nil {
		loc := *s.Location
		s.Location = &loc
	}
	return s
}

// Dropped returns how many results were discarded as stale.
func (o *Orchestrator) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

// Wait blocks until every branch of every lookup started so far has
// finished. It must not race with Select.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels the in-flight lookup, if any, and waits for it to drain.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.mu.Unlock()
	o.wg.Wait()
}

func (o *Orchestrator) spawn(fn func()) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		fn()
	}()
}

// commit runs apply under the session lock if epoch is still current and
// reports whether it ran.
func (o *Orchestrator) commit(epoch uint64, branch string, apply func()) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session.Epoch != epoch {
		o.dropped++
		o.log.Debug("dropping stale result",
			zap.String("branch", branch),
			zap.Uint64("epoch", epoch),
			zap.Uint64("current", o.session.Epoch),
		)
		return false
	}
	apply()
	return true
}

// show must be called from inside commit.
func (o *Orchestrator) show(id panel.ID, v any) {
	if model.IsEmpty(v) {
		o.panels.SetEmpty(id)
		return
	}
	o.panels.SetContent(id, v)
}

// fail must be called from inside commit.
func (o *Orchestrator) fail(id panel.ID, err error) {
	o.log.Warn("panel lookup failed",
		zap.String("panel", id.String()),
		zap.String("session_id", o.session.ID),
		zap.Error(err),
	)
	o.panels.SetError(id, source.Message(err))
}

func (o *Orchestrator) single(ctx context.Context, epoch uint64, id panel.ID, fetch func(context.Context) (any, error)) {
	v, err := fetch(ctx)
	o.commit(epoch, id.String(), func() {
		if err != nil {
			o.fail(id, err)
			return
		}
		o.show(id, v)
	})
}

func (o *Orchestrator) overlay(ctx context.Context, epoch uint64, id panel.ID, kind string, fetch func(context.Context) (*model.FeatureSet, error)) {
	fs, err := fetch(ctx)
	o.commit(epoch, id.String(), func() {
		if err != nil {
			o.fail(id, err)
			return
		}
		o.show(id, fs)
		if fs != nil && fs.Collection != nil {
			o.maps.SetOverlayDataset(kind, fs.Collection)
		}
	})
}

// weather joins forecast and nowcast; either failing fails the panel.
func (o *Orchestrator) weather(ctx context.Context, epoch uint64, c geo.Coordinate) {
	var (
		forecast *model.Forecast
		nowcast  *model.Nowcast
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		forecast, err = o.src.Forecast(gctx, c)
		return err
	})
	g.Go(func() error {
		var err error
		nowcast, err = o.src.Nowcast(gctx, c)
		return err
	})
	err := g.Wait()

	o.commit(epoch, "weather", func() {
		if err != nil {
			o.fail(panel.Weather, err)
			return
		}
		o.show(panel.Weather, &model.Weather{Forecast: forecast, Nowcast: nowcast})
	})
}

// geology joins the bedrock and sediment layers; either failing fails the
// panel.
func (o *Orchestrator) geology(ctx context.Context, epoch uint64, c geo.Coordinate) {
	var bedrock, sediment *model.GeologyLayer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bedrock, err = o.src.Geology(gctx, c, model.GeologyBedrock)
		return err
	})
	g.Go(func() error {
		var err error
		sediment, err = o.src.Geology(gctx, c, model.GeologySediment)
		return err
	})
	err := g.Wait()

	o.commit(epoch, "geology", func() {
		if err != nil {
			o.fail(panel.Geology, err)
			return
		}
		o.show(panel.Geology, &model.Geology{Bedrock: bedrock, Sediment: sediment})
	})
}

// admin resolves the municipality, then keys population and business on its
// number.
func (o *Orchestrator) admin(ctx context.Context, epoch uint64, c geo.Coordinate) {
	unit, err := o.src.AdminUnit(ctx, c)

	var code string
	ok := o.commit(epoch, "admin", func() {
		if err != nil {
			o.fail(panel.Admin, err)
			msg := source.Message(err)
			o.panels.SetError(panel.Population, msg)
			o.panels.SetError(panel.Business, msg)
			return
		}
		o.show(panel.Admin, unit)

		code = unit.RegionCode()
		if code == "" {
			o.log.Info("admin unit has no municipality number",
				zap.String("session_id", o.session.ID))
			msg := RegionCodeUnavailableMessage
			o.panels.SetError(panel.Population, msg)
			o.panels.SetError(panel.Business, msg)
			return
		}
		o.session.RegionCode = code
	})
	if !ok || code == "" {
		return
	}

	o.spawn(func() {
		o.single(ctx, epoch, panel.Population, func(ctx context.Context) (any, error) {
			return o.src.Population(ctx, code)
		})
	})
	o.spawn(func() {
		o.single(ctx, epoch, panel.Business, func(ctx context.Context) (any, error) {
			return o.src.Businesses(ctx, code)
		})
	})
}

// nearbyStores publishes one chain's store overlay. Failures only mean the
// overlay is missing.
func (o *Orchestrator) nearbyStores(ctx context.Context, epoch uint64, chain string, c geo.Coordinate) {
	near, err := o.stores.Nearby(ctx, chain, c, o.opts.StoreRadiusKm)
	if err != nil {
		o.log.Warn("store overlay unavailable", zap.String("chain", chain), zap.Error(err))
		return
	}
	o.commit(epoch, "stores:"+chain, func() {
		o.maps.SetOverlayDataset(mapview.StoreOverlay(chain), mapview.StoresCollection(near))
	})
}
