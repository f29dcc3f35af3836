package ingress

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokkr/internal/book"
	"brokkr/internal/common"
	"brokkr/internal/engine"
	"brokkr/internal/ltp"
	"brokkr/internal/price"
)

// --- Fakes ------------------------------------------------------------------

type nullSink struct{}

func (nullSink) Append(string, float64, int64, time.Time) {}

type memCommitter struct {
	mu   sync.Mutex
	aggs []engine.Aggregate
}

func (c *memCommitter) Commit(_ context.Context, agg engine.Aggregate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aggs = append(c.aggs, agg)
	return nil
}

type memNotifier struct {
	mu     sync.Mutex
	orders []common.Order
}

func (n *memNotifier) OrderUpdated(_ context.Context, o common.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
}

// newTestConsumer wires a consumer without a Kafka reader, feeding payloads
// straight into Handle.
func newTestConsumer() (*Consumer, *book.Router, *ltp.Store, *memCommitter, *memNotifier) {
	books := book.NewRouter()
	ltps := ltp.NewStore()
	refs := ltp.NewStore()
	committer := &memCommitter{}
	notifier := &memNotifier{}
	orch := engine.NewOrchestrator(books, ltps, nullSink{}, committer, notifier,
		engine.MarketProcessor{}, engine.GttProcessor{})
	c := &Consumer{
		books:     books,
		orch:      orch,
		refs:      refs,
		committer: committer,
		notifier:  notifier,
	}
	return c, books, refs, committer, notifier
}

func encodeRequest(t *testing.T, action string, o common.Order) []byte {
	t.Helper()
	payload, err := json.Marshal(Request{Action: action, Order: o})
	require.NoError(t, err)
	return payload
}

func marketRequest(side common.Side, qty int64, px float64) common.Order {
	return common.Order{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Symbol:    "AAPL",
		Side:      side,
		Type:      common.Market,
		Quantity:  qty,
		Price:     px,
		Status:    common.Open,
		CreatedAt: time.Now(),
	}
}

// --- Tests ------------------------------------------------------------------

func TestConsumer_NewOrderRunsACycle(t *testing.T) {
	c, _, _, committer, notifier := newTestConsumer()
	ctx := context.Background()

	c.Handle(ctx, encodeRequest(t, ActionNew, marketRequest(common.Buy, 10, 100)))
	c.Handle(ctx, encodeRequest(t, ActionNew, marketRequest(common.Sell, 10, 100)))

	// The second arrival finds opposing liquidity: one committed cycle
	// with one trade and two filled orders.
	require.Len(t, committer.aggs, 1)
	assert.Len(t, committer.aggs[0].Trades, 1)
	assert.Len(t, committer.aggs[0].Orders, 2)
	assert.Len(t, notifier.orders, 2)
}

func TestConsumer_MarketOrderWithoutPriceTakesReference(t *testing.T) {
	c, books, refs, _, _ := newTestConsumer()
	refs.Update("AAPL", 55.5)

	o := marketRequest(common.Buy, 10, 0)
	c.Handle(context.Background(), encodeRequest(t, ActionNew, o))

	b, ok := books.Market().Buy("AAPL")
	require.True(t, ok)
	resting := b.PeekOldest()
	require.NotNil(t, resting)
	assert.Equal(t, 55.5, resting.Price)
}

func TestConsumer_MarketOrderDefaultsWhenNoReference(t *testing.T) {
	c, books, _, _, _ := newTestConsumer()

	c.Handle(context.Background(), encodeRequest(t, ActionNew, marketRequest(common.Buy, 10, 0)))

	b, _ := books.Market().Buy("AAPL")
	assert.Equal(t, price.DefaultStartPrice, b.PeekOldest().Price)
}

func TestConsumer_IocOrderIsDroppedWithoutACycle(t *testing.T) {
	c, books, _, committer, notifier := newTestConsumer()

	// Rest a crossed pair so any cycle would produce a trade, then send
	// an IOC order: it must neither rest nor trigger a cycle.
	require.NoError(t, books.Add(&common.Order{
		ID: uuid.New(), Symbol: "AAPL", Side: common.Buy,
		Type: common.Market, Quantity: 10, Price: 100,
		Status: common.Open, CreatedAt: time.Now(),
	}))
	require.NoError(t, books.Add(&common.Order{
		ID: uuid.New(), Symbol: "AAPL", Side: common.Sell,
		Type: common.Market, Quantity: 10, Price: 100,
		Status: common.Open, CreatedAt: time.Now(),
	}))

	ioc := marketRequest(common.Buy, 10, 100)
	ioc.Type = common.Ioc
	c.Handle(context.Background(), encodeRequest(t, ActionNew, ioc))

	assert.Empty(t, committer.aggs, "a dropped order must not run a cycle or be recorded")
	assert.Empty(t, notifier.orders)
	b, ok := books.Market().Buy("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1, b.Len(), "the ioc order must not rest")
}

func TestConsumer_RejectedOrderIsRecorded(t *testing.T) {
	c, _, _, committer, notifier := newTestConsumer()

	bad := marketRequest(common.Buy, 10, 100)
	bad.Type = common.OrderType(42)
	c.Handle(context.Background(), encodeRequest(t, ActionNew, bad))

	require.Len(t, committer.aggs, 1)
	require.Len(t, committer.aggs[0].Orders, 1)
	assert.Equal(t, common.Rejected, committer.aggs[0].Orders[0].Status)
	assert.Len(t, notifier.orders, 1)
}

func TestConsumer_CancelRemovesRestingOrder(t *testing.T) {
	c, books, _, committer, notifier := newTestConsumer()
	ctx := context.Background()

	o := marketRequest(common.Buy, 10, 100)
	c.Handle(ctx, encodeRequest(t, ActionNew, o))
	c.Handle(ctx, encodeRequest(t, ActionCancel, o))

	b, _ := books.Market().Buy("AAPL")
	assert.True(t, b.Empty())
	require.Len(t, committer.aggs, 1)
	assert.Equal(t, common.Cancelled, committer.aggs[0].Orders[0].Status)
	assert.Len(t, notifier.orders, 1)
}

func TestConsumer_CancelUnknownOrderIsIgnored(t *testing.T) {
	c, _, _, committer, _ := newTestConsumer()

	c.Handle(context.Background(), encodeRequest(t, ActionCancel, marketRequest(common.Buy, 10, 100)))

	assert.Empty(t, committer.aggs)
}

func TestConsumer_GarbagePayloadIsDropped(t *testing.T) {
	c, _, _, committer, _ := newTestConsumer()

	c.Handle(context.Background(), []byte("{not json"))
	c.Handle(context.Background(), encodeRequest(t, "upsert", marketRequest(common.Buy, 10, 100)))

	assert.Empty(t, committer.aggs)
}
