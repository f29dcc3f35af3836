package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokkr/internal/common"
)

func gttOrder(side common.Side, trigger float64, dir common.TriggerDirection) *common.Order {
	o := testOrder(common.Gtt, side, "AAPL", 10, 100)
	o.Trigger = trigger
	o.Direction = dir
	return o
}

func TestGttBook_AddValidation(t *testing.T) {
	b := NewGtt()

	assert.ErrorIs(t, b.Add(testOrder(common.Limit, common.Buy, "AAPL", 10, 100)), ErrInvalidOrderKind)

	noTrigger := testOrder(common.Gtt, common.Buy, "AAPL", 10, 100)
	assert.ErrorIs(t, b.Add(noTrigger), ErrMissingPrice)

	noPrice := gttOrder(common.Buy, 90, common.TriggerBelow)
	noPrice.Price = 0
	assert.ErrorIs(t, b.Add(noPrice), ErrMissingPrice)

	assert.Equal(t, 0, b.Len())
}

func TestGttBook_TriggeredAbove(t *testing.T) {
	b := NewGtt()

	near := gttOrder(common.Sell, 100, common.TriggerAbove)
	far := gttOrder(common.Sell, 120, common.TriggerAbove)
	require.NoError(t, b.Add(near))
	require.NoError(t, b.Add(far))

	assert.Empty(t, b.Triggered(99.99))

	// The trigger price itself fires.
	fired := b.Triggered(100)
	require.Len(t, fired, 1)
	assert.Equal(t, near.ID, fired[0].ID)

	fired = b.Triggered(125)
	assert.Len(t, fired, 2)
}

func TestGttBook_TriggeredBelow(t *testing.T) {
	b := NewGtt()

	near := gttOrder(common.Buy, 95, common.TriggerBelow)
	far := gttOrder(common.Buy, 80, common.TriggerBelow)
	require.NoError(t, b.Add(near))
	require.NoError(t, b.Add(far))

	assert.Empty(t, b.Triggered(95.01))

	fired := b.Triggered(95)
	require.Len(t, fired, 1)
	assert.Equal(t, near.ID, fired[0].ID)

	fired = b.Triggered(79)
	assert.Len(t, fired, 2)
}

func TestGttBook_MixedDirections(t *testing.T) {
	b := NewGtt()

	stopLoss := gttOrder(common.Sell, 90, common.TriggerBelow)
	takeProfit := gttOrder(common.Sell, 110, common.TriggerAbove)
	require.NoError(t, b.Add(stopLoss))
	require.NoError(t, b.Add(takeProfit))

	// A price between the two triggers fires neither.
	assert.Empty(t, b.Triggered(100))

	fired := b.Triggered(111)
	require.Len(t, fired, 1)
	assert.Equal(t, takeProfit.ID, fired[0].ID)

	fired = b.Triggered(89)
	require.Len(t, fired, 1)
	assert.Equal(t, stopLoss.ID, fired[0].ID)
}

func TestGttBook_RemoveDropsTriggerIndex(t *testing.T) {
	b := NewGtt()

	a := gttOrder(common.Buy, 100, common.TriggerAbove)
	c := gttOrder(common.Buy, 100, common.TriggerAbove)
	require.NoError(t, b.Add(a))
	require.NoError(t, b.Add(c))

	assert.True(t, b.Remove(a.ID))
	assert.False(t, b.Remove(a.ID))

	fired := b.Triggered(100)
	require.Len(t, fired, 1)
	assert.Equal(t, c.ID, fired[0].ID)

	assert.True(t, b.Remove(c.ID))
	assert.Empty(t, b.Triggered(100))
	assert.Equal(t, 0, b.Len())
}
