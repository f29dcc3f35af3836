// Package ingress consumes validated order requests from Kafka and feeds
// them into the engine. Orders arrive with identity and creation time
// already assigned; the consumer never mints either.
package ingress

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	tomb "gopkg.in/tomb.v2"

	"brokkr/internal/book"
	"brokkr/internal/common"
	"brokkr/internal/engine"
	"brokkr/internal/ltp"
	"brokkr/internal/price"
)

// Request actions.
const (
	ActionNew    = "new"
	ActionCancel = "cancel"
)

// Request is the envelope carried by the order topic.
type Request struct {
	Action string       `json:"action"`
	Order  common.Order `json:"order"`
}

// Consumer reads order requests and drives the router and orchestrator.
// Each accepted order runs one full serialized processing cycle.
type Consumer struct {
	reader    *kafka.Reader
	books     *book.Router
	orch      *engine.Orchestrator
	refs      *ltp.Store
	committer engine.Committer
	notifier  engine.Notifier
}

// NewConsumer creates a consumer in the given group for the order topic.
func NewConsumer(brokers []string, topic, group string, books *book.Router,
	orch *engine.Orchestrator, refs *ltp.Store,
	committer engine.Committer, notifier engine.Notifier) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: group,
			Topic:   topic,
		}),
		books:     books,
		orch:      orch,
		refs:      refs,
		committer: committer,
		notifier:  notifier,
	}
}

// Loop consumes until the tomb starts dying.
func (c *Consumer) Loop(t *tomb.Tomb) error {
	ctx := t.Context(nil)
	defer func() {
		if err := c.reader.Close(); err != nil {
			log.Error().Err(err).Msg("could not close ingress reader")
		}
	}()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			select {
			case <-t.Dying():
				return nil
			default:
			}
			log.Error().Err(err).Msg("could not read order request")
			time.Sleep(time.Second)
			continue
		}
		c.Handle(ctx, msg.Value)
	}
}

// Handle decodes and applies one request payload.
func (c *Consumer) Handle(ctx context.Context, payload []byte) {
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Error().Err(err).Msg("could not decode order request")
		return
	}
	switch req.Action {
	case ActionNew:
		c.place(ctx, req.Order)
	case ActionCancel:
		c.cancel(ctx, req.Order)
	default:
		log.Warn().Str("action", req.Action).Msg("unknown request action, dropping")
	}
}

func (c *Consumer) place(ctx context.Context, o common.Order) {
	ord := o
	if ord.Type == common.Market && ord.Price <= 0 {
		// Market orders quoted without a price take the current
		// reference price.
		ref, ok := c.refs.Get(ord.Symbol)
		if !ok {
			ref = price.DefaultStartPrice
		}
		ord.Price = ref
	}

	if err := c.books.Add(&ord); err != nil {
		if errors.Is(err, book.ErrOrderDropped) {
			log.Warn().Stringer("order", ord.ID).Stringer("type", ord.Type).Msg("order dropped, no book for its type")
			return
		}
		ord.Status = common.Rejected
		log.Error().Err(err).Stringer("order", ord.ID).Msg("order rejected")
		c.record(ctx, ord)
		return
	}

	log.Info().Stringer("order", ord.ID).Str("symbol", ord.Symbol).Msg("order accepted")
	c.orch.Run(ctx)
}

func (c *Consumer) cancel(ctx context.Context, o common.Order) {
	resting, ok := c.books.Find(o.Symbol, o.Side, o.Type, o.ID)
	if !ok || !c.books.Remove(o.Symbol, o.Side, o.Type, o.ID) {
		log.Warn().Stringer("order", o.ID).Msg("cancel for unknown order, ignoring")
		return
	}
	resting.Status = common.Cancelled
	log.Info().Stringer("order", resting.ID).Msg("order cancelled")
	c.record(ctx, *resting)
}

// record persists and fans out a single order-state change outside a cycle.
func (c *Consumer) record(ctx context.Context, o common.Order) {
	if c.committer != nil {
		err := c.committer.Commit(ctx, engine.Aggregate{Orders: []common.Order{o}})
		if err != nil {
			log.Error().Err(err).Stringer("order", o.ID).Msg("could not persist order state")
		}
	}
	if c.notifier != nil {
		c.notifier.OrderUpdated(ctx, o)
	}
}
