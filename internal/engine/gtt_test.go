package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokkr/internal/book"
	"brokkr/internal/common"
)

func gttTestOrder(side common.Side, symbol string, px, trigger float64, dir common.TriggerDirection) *common.Order {
	return &common.Order{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Symbol:    symbol,
		Side:      side,
		Type:      common.Gtt,
		Quantity:  5,
		Price:     px,
		Trigger:   trigger,
		Direction: dir,
		Status:    common.Open,
		CreatedAt: time.Now(),
	}
}

func TestGttProcessor_FiresOnCrossedTrigger(t *testing.T) {
	books := book.NewRouter()
	above := gttTestOrder(common.Buy, "AAPL", 106, 105, common.TriggerAbove)
	dormant := gttTestOrder(common.Buy, "AAPL", 121, 120, common.TriggerAbove)
	require.NoError(t, books.Add(above))
	require.NoError(t, books.Add(dormant))

	cx, _ := newTestContext(books)
	cx.Ltps["AAPL"] = 105

	res, err := GttProcessor{}.Process(cx)
	require.NoError(t, err)

	// The crossed order converts to a limit order, the other stays put.
	require.Equal(t, []*common.Order{above}, res.Orders)
	assert.Equal(t, common.Limit, above.Type)
	assert.Equal(t, common.Open, above.Status)

	limitBuy, ok := books.Limit().Buy("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1, limitBuy.Len())
	gttBuy, ok := books.Gtt().Buy("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1, gttBuy.Len())
	assert.Equal(t, common.Gtt, dormant.Type)
}

func TestGttProcessor_FiresBelowOnBothSides(t *testing.T) {
	books := book.NewRouter()
	buy := gttTestOrder(common.Buy, "AAPL", 94, 95, common.TriggerBelow)
	sell := gttTestOrder(common.Sell, "AAPL", 94, 95, common.TriggerBelow)
	require.NoError(t, books.Add(buy))
	require.NoError(t, books.Add(sell))

	cx, _ := newTestContext(books)
	cx.Ltps["AAPL"] = 94.5

	res, err := GttProcessor{}.Process(cx)
	require.NoError(t, err)

	assert.ElementsMatch(t, []*common.Order{buy, sell}, res.Orders)
	limitBuy, _ := books.Limit().Buy("AAPL")
	limitSell, _ := books.Limit().Sell("AAPL")
	assert.Equal(t, 1, limitBuy.Len())
	assert.Equal(t, 1, limitSell.Len())
}

func TestGttProcessor_NoLtpNoFire(t *testing.T) {
	books := book.NewRouter()
	o := gttTestOrder(common.Buy, "AAPL", 94, 95, common.TriggerBelow)
	require.NoError(t, books.Add(o))

	cx, _ := newTestContext(books)
	res, err := GttProcessor{}.Process(cx)
	require.NoError(t, err)

	// Without a traded price for the symbol nothing may trigger.
	assert.True(t, res.Empty())
	assert.Equal(t, common.Gtt, o.Type)
}

func TestGttProcessor_ExactTriggerFires(t *testing.T) {
	books := book.NewRouter()
	o := gttTestOrder(common.Sell, "AAPL", 104, 105, common.TriggerAbove)
	require.NoError(t, books.Add(o))

	cx, _ := newTestContext(books)
	cx.Ltps["AAPL"] = 105

	res, err := GttProcessor{}.Process(cx)
	require.NoError(t, err)
	assert.Len(t, res.Orders, 1)
}
