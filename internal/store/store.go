// Package store persists cycle output in an embedded pebble database and
// doubles as the price-history sink. Trades and orders are keyed by id, so
// re-applying an aggregate after a failed or repeated delivery is a plain
// upsert.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"brokkr/internal/common"
	"brokkr/internal/engine"
)

const (
	tradePrefix = "trade/"
	orderPrefix = "order/"
	tickPrefix  = "tick/"
)

// Tick is one persisted price-history sample.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Quantity  int64     `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a durable record of trades, order states and price ticks.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if needed) the database under dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Commit applies one cycle aggregate in a single synced batch: every trade
// and order change lands together or not at all.
func (s *Store) Commit(_ context.Context, agg engine.Aggregate) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, t := range agg.Trades {
		val, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode trade %s: %w", t.ID, err)
		}
		if err := batch.Set(tradeKey(t.ID), val, nil); err != nil {
			return fmt.Errorf("stage trade %s: %w", t.ID, err)
		}
	}
	for _, o := range agg.Orders {
		val, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("encode order %s: %w", o.ID, err)
		}
		if err := batch.Set(orderKey(o.ID), val, nil); err != nil {
			return fmt.Errorf("stage order %s: %w", o.ID, err)
		}
	}
	if err := s.db.Apply(batch, pebble.Sync); err != nil {
		return fmt.Errorf("apply aggregate: %w", err)
	}
	return nil
}

// Append records one price-history sample. Fire and forget: failures are
// logged, never surfaced to the caller.
func (s *Store) Append(symbol string, price float64, quantity int64, ts time.Time) {
	val, err := json.Marshal(Tick{
		Symbol:    symbol,
		Price:     price,
		Quantity:  quantity,
		Timestamp: ts,
	})
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("could not encode tick")
		return
	}
	if err := s.db.Set(tickKey(symbol, ts), val, pebble.NoSync); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("could not append tick")
	}
}

// Trade loads a committed trade by id.
func (s *Store) Trade(id uuid.UUID) (common.Trade, error) {
	var t common.Trade
	err := s.get(tradeKey(id), &t)
	return t, err
}

// Order loads the last committed state of an order by id.
func (s *Store) Order(id uuid.UUID) (common.Order, error) {
	var o common.Order
	err := s.get(orderKey(id), &o)
	return o, err
}

// Ticks scans a symbol's price history in time order.
func (s *Store) Ticks(symbol string, fn func(Tick) error) error {
	prefix := tickPrefix + symbol + "/"
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(prefix),
		UpperBound: []byte(prefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var t Tick
		if err := json.Unmarshal(iter.Value(), &t); err != nil {
			return fmt.Errorf("decode tick %q: %w", iter.Key(), err)
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *Store) get(key []byte, out any) error {
	val, closer, err := s.db.Get(key)
	if err != nil {
		return err
	}
	defer closer.Close()
	return json.Unmarshal(val, out)
}

func tradeKey(id uuid.UUID) []byte {
	return []byte(tradePrefix + id.String())
}

func orderKey(id uuid.UUID) []byte {
	return []byte(orderPrefix + id.String())
}

func tickKey(symbol string, ts time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", tickPrefix, symbol, ts.UnixNano()))
}
