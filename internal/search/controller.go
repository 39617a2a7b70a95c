// Package search drives the address search box: debounced queries, a
// keyboard-navigable result list, and handing the picked address to the
// lookup.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/norgesglass/norgesglass/internal/geo"
	"github.com/norgesglass/norgesglass/internal/model"
)

// Searcher runs one address search.
type Searcher interface {
	SearchAddress(ctx context.Context, query string) ([]model.AddressCandidate, error)
}

// Selector receives the picked point. *lookup.Orchestrator implements it.
type Selector interface {
	Select(ctx context.Context, c geo.Coordinate, label string)
}

// Key is a navigation key understood by the result list.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEscape
)

// Options tunes a Controller.
type Options struct {
	Debounce time.Duration
	MinChars int
	// OnChange signals that the visible state changed. It carries no snapshot
	// because signals from different goroutines may arrive out of order;
	// callers read State for the current value. It runs on whichever
	// goroutine made the change, without the lock held, and must not block.
	OnChange func()
}

// State is a snapshot of the search box.
type State struct {
	Query   string
	Results []model.AddressCandidate
	// Active is the highlighted result, or -1.
	Active int
	Open   bool
}

// Controller owns one search session. Every query bumps a generation
// counter; a response is applied only if no newer query was typed since it
// was issued.
type Controller struct {
	searcher Searcher
	selector Selector
	opts     Options
	log      *zap.Logger

	mu         sync.Mutex
	query      string
	results    []model.AddressCandidate
	active     int
	open       bool
	generation uint64
	timer      *time.Timer
}

// New creates a Controller.
func New(searcher Searcher, selector Selector, opts Options) *Controller {
	if opts.MinChars < 1 {
		opts.MinChars = 2
	}
	return &Controller{
		searcher: searcher,
		selector: selector,
		opts:     opts,
		log:      zap.L().With(zap.String("component", "search")),
		active:   -1,
	}
}

// Input handles a change of the search text. Short input closes the list at
// once; anything else (re)starts the debounce timer.
func (c *Controller) Input(ctx context.Context, text string) {
	c.mu.Lock()
	c.query = text
	c.generation++
	gen := c.generation
	c.stopTimerLocked()

	q := strings.TrimSpace(text)
	if utf8.RuneCountInString(q) < c.opts.MinChars {
		c.results = nil
		c.active = -1
		c.open = false
		c.mu.Unlock()
		c.notify()
		return
	}

	c.timer = time.AfterFunc(c.opts.Debounce, func() { c.run(ctx, gen, q) })
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) run(ctx context.Context, gen uint64, query string) {
	results, err := c.searcher.SearchAddress(ctx, query)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.log.Debug("dropping stale search response", zap.String("query", query))
		return
	}
	c.timer = nil
	c.active = -1
	if err != nil {
		c.log.Warn("address search failed", zap.String("query", query), zap.Error(err))
		c.results = nil
		c.open = false
	} else {
		c.results = results
		c.open = len(results) > 0
	}
	c.mu.Unlock()
	c.notify()
}

// Key handles a navigation key and reports whether it changed anything.
func (c *Controller) Key(ctx context.Context, k Key) bool {
	c.mu.Lock()
	switch k {
	case KeyUp, KeyDown:
		n := len(c.results)
		if !c.open || n == 0 {
			c.mu.Unlock()
			return false
		}
		if k == KeyDown {
			c.active = (c.active + 1) % n
		} else if c.active <= 0 {
			c.active = n - 1
		} else {
			c.active--
		}
		c.mu.Unlock()
		c.notify()
		return true
	case KeyEnter:
		i := c.active
		c.mu.Unlock()
		return c.Pick(ctx, i)
	case KeyEscape:
		c.generation++
		c.stopTimerLocked()
		c.open = false
		c.active = -1
		c.mu.Unlock()
		c.notify()
		return true
	}
	c.mu.Unlock()
	return false
}

// Pick selects result i of the open list: the query becomes the address
// text, the list closes and the selector is called. It reports false when i
// is not a valid index or the result has no position.
func (c *Controller) Pick(ctx context.Context, i int) bool {
	c.mu.Lock()
	if !c.open || i < 0 || i >= len(c.results) {
		c.mu.Unlock()
		return false
	}
	cand := c.results[i]
	pos, ok := cand.Position()
	if !ok {
		c.mu.Unlock()
		c.log.Debug("search result has no position", zap.String("text", cand.Text))
		return false
	}
	c.generation++
	c.stopTimerLocked()
	c.query = cand.Text
	c.results = nil
	c.active = -1
	c.open = false
	c.mu.Unlock()

	c.notify()
	c.selector.Select(ctx, pos, cand.Text)
	return true
}

// Reset clears the box without searching, as when a point is chosen some
// other way.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.generation++
	c.stopTimerLocked()
	c.query = ""
	c.results = nil
	c.active = -1
	c.open = false
	c.mu.Unlock()
	c.notify()
}

// State returns a snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Close stops any pending debounce timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.stopTimerLocked()
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) stateLocked() State {
	return State{
		Query:   c.query,
		Results: c.results,
		Active:  c.active,
		Open:    c.open,
	}
}

func (c *Controller) notify() {
	if c.opts.OnChange != nil {
		c.opts.OnChange()
	}
}
