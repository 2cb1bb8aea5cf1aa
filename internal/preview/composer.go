// Package preview turns three independently edited source buffers into one
// composed document, recomputing only after edits settle.
//
// Every Update restarts a single-shot timer for its buffer. When the timer
// fires with no newer Update in between, the buffer's settled value advances
// to its live value. The composed document is rebuilt only when the settled
// triple differs from the one it was last built from, so bursts of typing
// never produce intermediate documents.
package preview

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/varunrmantri23/nexacode/internal/clock"
	"github.com/varunrmantri23/nexacode/internal/core"
)

const DefaultQuiescence = 300 * time.Millisecond

// ChangeFunc receives every newly composed document. Version increases by one
// per recomputation. Buffers settle on separate timer goroutines, so calls may
// run concurrently and arrive out of order; compare versions or re-read
// Snapshot to act on the newest document.
type ChangeFunc func(doc string, version uint64)

type Option func(*Composer)

func WithQuiescence(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.quiescence = d
		}
	}
}

func WithClock(clk clock.Clock) Option {
	return func(c *Composer) {
		if clk != nil {
			c.clock = clk
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// OnChange registers fn to run after each recomputation. It is called
// without the composer's lock held and may call back into the composer.
func OnChange(fn ChangeFunc) Option {
	return func(c *Composer) {
		c.onChange = fn
	}
}

type Composer struct {
	quiescence time.Duration
	clock      clock.Clock
	logger     *zap.Logger
	onChange   ChangeFunc

	mu           sync.Mutex
	live         core.Sources
	settled      core.Sources
	timers       [3]clock.Timer
	generation   [3]uint64
	computedFrom core.Sources
	doc          string
	version      uint64
	closed       bool
}

// New returns a composer with empty buffers and the empty-shell document
// already computed.
func New(opts ...Option) *Composer {
	c := &Composer{
		quiescence: DefaultQuiescence,
		clock:      clock.Real(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.doc = core.ComposeSources(c.computedFrom)
	c.version = 1
	return c
}

func (c *Composer) Quiescence() time.Duration {
	return c.quiescence
}

// Update replaces the live value of kind and restarts its quiescence timer.
// Any text is accepted. After Close the live value still changes but never
// settles.
func (c *Composer) Update(kind core.BufferKind, value string) {
	if !kind.Valid() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.live.Set(kind, value)
	if c.closed {
		return
	}

	if t := c.timers[kind]; t != nil {
		t.Stop()
	}
	c.generation[kind]++
	gen := c.generation[kind]
	c.timers[kind] = c.clock.AfterFunc(c.quiescence, func() {
		c.settle(kind, gen)
	})
}

func (c *Composer) settle(kind core.BufferKind, gen uint64) {
	c.mu.Lock()
	// A newer Update or a Close may have raced with this timer.
	if c.closed || gen != c.generation[kind] {
		c.mu.Unlock()
		return
	}
	c.timers[kind] = nil
	c.settled.Set(kind, c.live.Get(kind))

	doc, version, changed := c.recomputeLocked()
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(doc, version)
	}
}

func (c *Composer) recomputeLocked() (string, uint64, bool) {
	if c.settled == c.computedFrom {
		return c.doc, c.version, false
	}

	c.computedFrom = c.settled
	c.doc = core.ComposeSources(c.settled)
	c.version++

	c.logger.Debug("preview recomputed",
		zap.Uint64("version", c.version),
		zap.Int("bytes", len(c.doc)),
	)
	return c.doc, c.version, true
}

// Seed replaces all three buffers at once, as when a stored project is
// opened. Pending settles are cancelled and the document is recomputed
// immediately.
func (c *Composer) Seed(src core.Sources) {
	c.mu.Lock()
	if c.closed {
		c.live = src
		c.mu.Unlock()
		return
	}

	c.cancelTimersLocked()
	c.live = src
	c.settled = src

	doc, version, changed := c.recomputeLocked()
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(doc, version)
	}
}

// Close cancels every pending settle. No recomputation happens afterwards.
// Close is idempotent.
func (c *Composer) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancelTimersLocked()
}

func (c *Composer) cancelTimersLocked() {
	for i, t := range c.timers {
		if t != nil {
			t.Stop()
			c.timers[i] = nil
		}
		c.generation[i]++
	}
}

// Settled returns the value kind held when it last stayed unchanged for the
// quiescence interval.
func (c *Composer) Settled(kind core.BufferKind) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled.Get(kind)
}

// Live returns the most recent value passed to Update or Seed.
func (c *Composer) Live(kind core.BufferKind) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live.Get(kind)
}

func (c *Composer) Sources() core.Sources {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

func (c *Composer) SettledSources() core.Sources {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

// Document returns the composed document built from the settled triple.
func (c *Composer) Document() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc
}

// Snapshot returns the document together with its version.
func (c *Composer) Snapshot() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc, c.version
}

// Recomputations counts documents built so far, including the initial empty
// shell.
func (c *Composer) Recomputations() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// State is a consistent view of a composer: Document is always built from
// Settled.
type State struct {
	Document string
	Version  uint64
	Live     core.Sources
	Settled  core.Sources
	Pending  bool
}

// State reads every field under a single lock.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Document: c.doc,
		Version:  c.version,
		Live:     c.live,
		Settled:  c.settled,
		Pending:  c.pendingLocked(),
	}
}

// Pending reports whether any buffer has an edit that has not settled yet.
func (c *Composer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked()
}

func (c *Composer) pendingLocked() bool {
	for _, t := range c.timers {
		if t != nil {
			return true
		}
	}
	return false
}

func (c *Composer) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
