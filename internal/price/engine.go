// Package price implements the synthetic reference price engine. It runs on
// its own schedule and is coupled to the matcher only through the shared
// reference-price store and the open-order population, never through direct
// references, so the two loops are independently testable.
package price

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"brokkr/internal/ltp"
)

const (
	// DefaultStartPrice seeds a symbol that has never been repriced.
	DefaultStartPrice = 10.00

	floorPrice = 0.01
)

// Sink accepts price-history samples. Fire and forget: implementations log
// failures instead of returning them.
type Sink interface {
	Append(symbol string, price float64, quantity int64, ts time.Time)
}

// Source exposes the open-order population the engine prices against. The
// book router implements it.
type Source interface {
	Symbols() []string
	OpenInterest(symbol string) (demand, supply int64)
}

// Config holds the tuning knobs of the synthetic walk.
type Config struct {
	Drift        float64
	Volatility   float64
	ImpactFactor float64
	Interval     time.Duration
}

// DefaultConfig mirrors the simulation defaults: a small positive drift,
// a base volatility, and a one percent imbalance impact each second.
func DefaultConfig() Config {
	return Config{
		Drift:        0.0001,
		Volatility:   0.005,
		ImpactFactor: 0.01,
		Interval:     time.Second,
	}
}

// Engine recomputes each symbol's reference price from the open-order
// imbalance plus a stochastic walk.
type Engine struct {
	cfg  Config
	refs *ltp.Store
	src  Source
	sink Sink
	rng  *rand.Rand
}

// NewEngine creates a price engine writing into refs and sampling ticks
// into sink.
func NewEngine(cfg Config, refs *ltp.Store, src Source, sink Sink) *Engine {
	return &Engine{
		cfg:  cfg,
		refs: refs,
		src:  src,
		sink: sink,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Loop reprices every known symbol at the configured interval until the
// tomb starts dying.
func (e *Engine) Loop(t *tomb.Tomb) error {
	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.Dying():
			return nil
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Tick reprices every symbol with open books.
func (e *Engine) Tick() {
	for _, symbol := range e.src.Symbols() {
		e.Reprice(symbol)
	}
}

// Reprice computes and records the symbol's next reference price:
//
//	next = current + current*(drift + volatility*gauss) + imbalance*impact*current
//
// floored at 0.01 and rounded half-up to two decimals. The imbalance is
// (demand-supply)/(demand+supply) over open and partial orders, zero when
// the symbol has no liquidity.
func (e *Engine) Reprice(symbol string) float64 {
	current, ok := e.refs.Get(symbol)
	if !ok {
		current = DefaultStartPrice
	}

	demand, supply := e.src.OpenInterest(symbol)
	liquidity := demand + supply
	imbalance := 0.0
	if liquidity > 0 {
		imbalance = float64(demand-supply) / float64(liquidity)
	}

	walk := current * (e.cfg.Drift + e.cfg.Volatility*e.rng.NormFloat64())
	impact := imbalance * e.cfg.ImpactFactor * current

	next := current + walk + impact
	if next < floorPrice {
		next = floorPrice
	}
	next = Round2(next)

	e.refs.Update(symbol, next)
	e.sink.Append(symbol, next, liquidity, time.Now())

	log.Debug().
		Str("symbol", symbol).
		Float64("price", next).
		Float64("imbalance", imbalance).
		Msg("repriced symbol")
	return next
}

// Round2 rounds half-up to two decimal places.
func Round2(p float64) float64 {
	return math.Floor(p*100+0.5) / 100
}
