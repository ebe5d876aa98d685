package poller

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// FetchFunc performs one request for q. Decoding the response into T is part
// of the fetch, so the poller does not care about response shapes.
type FetchFunc[Q comparable, T any] func(ctx context.Context, q Q) (T, error)

// Metrics receives poll cycle observations.
type Metrics interface {
	ObserveFetch(err error, started time.Time)
	ObserveDropped()
	ObserveState(state State)
}

// Options tune poller behaviour.
type Options[T any] struct {
	Interval time.Duration
	// Clock drives the ticker; defaults to the wall clock.
	Clock   clock.Clock
	Metrics Metrics
	// OnChange is called after every applied response, outside the poller
	// lock. Overlapping fetches may call it concurrently.
	OnChange func(prev, next Result[T])
}

// Poller repeatedly fetches T for the active query Q and keeps the latest
// Result. A query is fetched once immediately and then on every Interval
// tick. Ticks do not wait for the previous fetch, so requests overlap when
// the backend is slower than the interval.
//
// Each query value is an identity. Responses are applied only when they
// belong to the current identity and were issued after the last applied
// response, so neither a query change nor out-of-order completion can let an
// older response overwrite a newer one.
type Poller[Q comparable, T any] struct {
	name    string
	fetch   FetchFunc[Q, T]
	opts    Options[T]
	clock   clock.Clock
	logger  zerolog.Logger
	restart chan struct{}

	mu          sync.Mutex
	query       Q
	enabled     bool
	generation  uint64
	issued      uint64
	applied     uint64
	result      Result[T]
	ticker      *clock.Ticker
	cancelCycle context.CancelFunc

	inflight sync.WaitGroup
}

// New constructs a disabled Poller; call SetQuery to give it work.
func New[Q comparable, T any](name string, fetch FetchFunc[Q, T], opts Options[T], logger zerolog.Logger) *Poller[Q, T] {
	if opts.Interval <= 0 {
		panic("poller interval must be positive")
	}
	if fetch == nil {
		panic("poller fetch func is required")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Poller[Q, T]{
		name:    name,
		fetch:   fetch,
		opts:    opts,
		clock:   clk,
		logger:  logger.With().Str("component", "poller").Str("poller", name).Logger(),
		restart: make(chan struct{}, 1),
		result:  Result[T]{State: StateLoading},
	}
}

// Name returns the poller name used in logs and metrics.
func (p *Poller[Q, T]) Name() string { return p.name }

// SetQuery makes q the active query. An equal query is a no-op; anything else
// tears down the running cycle, resets the result to loading and starts over.
func (p *Poller[Q, T]) SetQuery(q Q) {
	p.mu.Lock()
	if p.enabled && p.query == q {
		p.mu.Unlock()
		return
	}
	p.query = q
	p.enabled = true
	p.resetLocked()
	p.mu.Unlock()

	p.afterReset()
}

// Disable clears the active query and stops polling.
func (p *Poller[Q, T]) Disable() {
	p.mu.Lock()
	if !p.enabled {
		p.mu.Unlock()
		return
	}
	var zero Q
	p.query = zero
	p.enabled = false
	p.resetLocked()
	p.mu.Unlock()

	p.afterReset()
}

// Query returns the active query and whether polling is enabled.
func (p *Poller[Q, T]) Query() (Q, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query, p.enabled
}

// Snapshot returns the current result.
func (p *Poller[Q, T]) Snapshot() Result[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// Run blocks, polling the active query until ctx is cancelled. In-flight
// requests are cancelled and awaited before Run returns. Run must not be
// called concurrently on the same Poller.
func (p *Poller[Q, T]) Run(ctx context.Context) error {
	defer p.inflight.Wait()

	for {
		gen, tick, issue := p.startCycle(ctx)
		if issue != nil {
			issue()
		}

		if err := p.waitCycle(ctx, gen, tick, issue); err != nil {
			p.mu.Lock()
			p.stopCycleLocked()
			p.mu.Unlock()
			return err
		}
	}
}

func (p *Poller[Q, T]) startCycle(ctx context.Context) (uint64, <-chan time.Time, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopCycleLocked()

	gen, q := p.generation, p.query
	if !p.enabled {
		p.logger.Debug().Uint64("generation", gen).Msg("poller idle")
		return gen, nil, nil
	}

	cycleCtx, cancel := context.WithCancel(ctx)
	p.cancelCycle = cancel
	p.ticker = p.clock.Ticker(p.opts.Interval)

	p.logger.Debug().
		Uint64("generation", gen).
		Dur("interval", p.opts.Interval).
		Msg("poll cycle started")

	return gen, p.ticker.C, func() { p.issue(cycleCtx, gen, q) }
}

func (p *Poller[Q, T]) waitCycle(ctx context.Context, gen uint64, tick <-chan time.Time, issue func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.restart:
			if p.currentGeneration() != gen {
				return nil
			}
		case <-tick:
			issue()
		}
	}
}

func (p *Poller[Q, T]) issue(ctx context.Context, gen uint64, q Q) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.issued++
	seq := p.issued
	p.inflight.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.inflight.Done()

		started := time.Now()
		data, err := p.fetch(ctx, q)
		if p.opts.Metrics != nil {
			p.opts.Metrics.ObserveFetch(err, started)
		}
		if ctx.Err() != nil {
			p.drop(gen, seq, "cycle torn down")
			return
		}
		p.apply(gen, seq, data, err)
	}()
}

func (p *Poller[Q, T]) apply(gen, seq uint64, data T, err error) {
	p.mu.Lock()
	if gen != p.generation || seq <= p.applied {
		p.mu.Unlock()
		p.drop(gen, seq, "stale response")
		return
	}
	p.applied = seq

	prev := p.result
	next := prev
	next.UpdatedAt = p.clock.Now()
	if err != nil {
		next.State = StateFailure
		next.Message = err.Error()
	} else {
		next.State = StateSuccess
		next.Data = data
		next.HasData = true
		next.Message = ""
	}
	p.result = next
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn().Err(err).Uint64("generation", gen).Uint64("seq", seq).Msg("poll failed")
	} else {
		p.logger.Debug().Uint64("generation", gen).Uint64("seq", seq).Msg("poll succeeded")
	}
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveState(next.State)
	}
	if p.opts.OnChange != nil {
		p.opts.OnChange(prev, next)
	}
}

func (p *Poller[Q, T]) drop(gen, seq uint64, reason string) {
	p.logger.Debug().Uint64("generation", gen).Uint64("seq", seq).Str("reason", reason).Msg("response dropped")
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveDropped()
	}
}

func (p *Poller[Q, T]) resetLocked() {
	p.generation++
	p.result = Result[T]{State: StateLoading}
	p.stopCycleLocked()
}

// stopCycleLocked stops the ticker and cancels in-flight requests of the
// running cycle. Late responses are still discarded by apply.
func (p *Poller[Q, T]) stopCycleLocked() {
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
	if p.cancelCycle != nil {
		p.cancelCycle()
		p.cancelCycle = nil
	}
}

func (p *Poller[Q, T]) afterReset() {
	if p.opts.Metrics != nil {
		p.opts.Metrics.ObserveState(StateLoading)
	}
	select {
	case p.restart <- struct{}{}:
	default:
	}
}

func (p *Poller[Q, T]) currentGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}
