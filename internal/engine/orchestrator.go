package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"brokkr/internal/book"
	"brokkr/internal/common"
	"brokkr/internal/ltp"
	"brokkr/internal/price"
)

// ErrCycleInFlight is returned by TryRun when a cycle is already running.
var ErrCycleInFlight = errors.New("a processing cycle is already running")

// Aggregate is one cycle's merged output: every trade executed and a value
// snapshot of every order whose status or quantity changed, in processor
// order.
type Aggregate struct {
	Trades []common.Trade
	Orders []common.Order
}

// Committer applies a cycle aggregate durably and atomically: all trades
// and order changes commit together or none do. Commits must be idempotent
// under re-delivery, keyed by trade and order id, because the in-memory
// books are not rolled back when a commit fails.
type Committer interface {
	Commit(ctx context.Context, agg Aggregate) error
}

// Notifier receives the final snapshot of each changed order, once per
// order, independent of the commit step.
type Notifier interface {
	OrderUpdated(ctx context.Context, o common.Order)
}

// Orchestrator runs processing cycles: build the context, run every
// registered processor in a fixed order, aggregate the non-empty results,
// commit and notify. At most one cycle runs at any instant, enforced by a
// single-slot guard.
type Orchestrator struct {
	books     *book.Router
	ltps      *ltp.Store
	ticks     price.Sink
	procs     []Processor
	committer Committer
	notifier  Notifier
	slot      chan struct{}
}

// NewOrchestrator wires an orchestrator. Processors run in the order given.
func NewOrchestrator(books *book.Router, ltps *ltp.Store, ticks price.Sink,
	committer Committer, notifier Notifier, procs ...Processor) *Orchestrator {
	return &Orchestrator{
		books:     books,
		ltps:      ltps,
		ticks:     ticks,
		procs:     procs,
		committer: committer,
		notifier:  notifier,
		slot:      make(chan struct{}, 1),
	}
}

// Run executes one full cycle, waiting for any in-flight cycle to finish
// first. The ingress uses this: an arriving order always gets a cycle.
func (o *Orchestrator) Run(ctx context.Context) {
	o.slot <- struct{}{}
	defer func() { <-o.slot }()
	o.cycle(ctx)
}

// TryRun executes a cycle unless one is already in flight, in which case
// it returns ErrCycleInFlight. Periodic triggers use this so overlapping
// requests collapse into the single serialized cycle.
func (o *Orchestrator) TryRun(ctx context.Context) error {
	select {
	case o.slot <- struct{}{}:
	default:
		return ErrCycleInFlight
	}
	defer func() { <-o.slot }()
	o.cycle(ctx)
	return nil
}

// Loop triggers a cycle at the given cadence until the tomb starts dying.
func (o *Orchestrator) Loop(t *tomb.Tomb, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-t.Dying():
			return nil
		case <-ticker.C:
			if err := o.TryRun(t.Context(nil)); err != nil {
				log.Debug().Msg("cycle already in flight, tick collapsed")
			}
		}
	}
}

// cycle runs BUILD_CONTEXT, RUN_PROCESSORS, AGGREGATE, COMMIT. A cycle
// always runs to completion once started.
func (o *Orchestrator) cycle(ctx context.Context) {
	cx := &Context{
		Now:   time.Now(),
		Ltps:  o.ltps.Snapshot(),
		Books: o.books,
		Ltp:   o.ltps,
		Ticks: o.ticks,
	}

	var agg Aggregate
	for _, proc := range o.procs {
		res, err := runProcessor(proc, cx)
		if err != nil {
			// Skip the processor and discard its result. Whatever it
			// already did to its books stands; processors keep their
			// books self-consistent on failure.
			log.Error().Err(err).Str("processor", proc.Name()).Msg("processor failed, skipping")
			continue
		}
		if res == nil || res.Empty() {
			continue
		}
		agg.Trades = append(agg.Trades, res.Trades...)
		for _, ord := range res.Orders {
			agg.Orders = append(agg.Orders, *ord)
		}
	}

	if len(agg.Trades) == 0 && len(agg.Orders) == 0 {
		log.Debug().Msg("cycle produced no trades or order updates")
		return
	}

	log.Info().
		Int("trades", len(agg.Trades)).
		Int("orders", len(agg.Orders)).
		Msg("cycle complete, committing")

	if err := o.committer.Commit(ctx, agg); err != nil {
		// The books are already mutated and are not rolled back. The
		// store re-applies the same aggregate idempotently on retry;
		// here we can only flag the divergence.
		log.Error().Err(err).Msg("CRITICAL: commit failed after matching")
	}

	if o.notifier != nil {
		for _, ord := range agg.Orders {
			o.notifier.OrderUpdated(ctx, ord)
		}
	}
}

// runProcessor isolates one processor invocation: a panic becomes an error
// so a single misbehaving processor cannot abort the cycle or poison the
// other symbols' books.
func runProcessor(p Processor, cx *Context) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processor panicked: %v", r)
		}
	}()
	return p.Process(cx)
}
