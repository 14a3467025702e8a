package warehouse

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWarehouse(t *testing.T) *Warehouse {
	t.Helper()
	wh, err := NewWarehouse("KSI-01", "Kumasi Central Store", WarehouseTypeDry, "GH", decimal.NewFromInt(1000))
	require.NoError(t, err)
	return wh
}

func TestNewWarehouseValidation(t *testing.T) {
	_, err := NewWarehouse("", "Name", WarehouseTypeDry, "GH", decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = NewWarehouse("C1", "", WarehouseTypeDry, "GH", decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = NewWarehouse("C1", "Name", WarehouseType("floating"), "GH", decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = NewWarehouse("C1", "Name", WarehouseTypeDry, "GHA", decimal.NewFromInt(10))
	assert.Error(t, err)

	_, err = NewWarehouse("C1", "Name", WarehouseTypeDry, "GH", decimal.Zero)
	assert.Error(t, err)
}

func TestWarehouseZones(t *testing.T) {
	wh := newTestWarehouse(t)

	zone, err := wh.AddZone("a1", ZoneTypeStorage, decimal.NewFromInt(600))
	require.NoError(t, err)
	assert.Equal(t, "A1", zone.Code)

	// duplicate code rejected
	_, err = wh.AddZone("A1", ZoneTypeStorage, decimal.NewFromInt(100))
	assert.Error(t, err)

	// zone capacity bounded by warehouse capacity
	_, err = wh.AddZone("B1", ZoneTypeStorage, decimal.NewFromInt(500))
	assert.Error(t, err)

	_, err = wh.AddZone("B1", ZoneTypeColdStorage, decimal.NewFromInt(400))
	require.NoError(t, err)
}

func TestZoneStockBounds(t *testing.T) {
	zone, err := NewZone(uuid.New(), "A1", ZoneTypeStorage, decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, zone.AddStock(decimal.NewFromInt(80)))
	assert.Equal(t, "20", zone.FreeCapacity().String())

	// over capacity rejected
	assert.Error(t, zone.AddStock(decimal.NewFromInt(30)))

	require.NoError(t, zone.RemoveStock(decimal.NewFromInt(50)))
	assert.Error(t, zone.RemoveStock(decimal.NewFromInt(40)))
}

func TestWarehouseUtilization(t *testing.T) {
	wh := newTestWarehouse(t)
	zone, err := wh.AddZone("A1", ZoneTypeStorage, decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NoError(t, wh.Zones[0].AddStock(decimal.NewFromInt(250)))
	_ = zone

	assert.Equal(t, "50", wh.Utilization().String())
}

func TestInventoryReserveReleaseDeduct(t *testing.T) {
	item, err := NewInventoryItem(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, item.Receive(decimal.NewFromInt(100), "B-1", "", nil, nil))
	assert.Equal(t, "100", item.Available().String())

	require.NoError(t, item.Reserve(decimal.NewFromInt(40)))
	assert.Equal(t, "60", item.Available().String())
	assert.Equal(t, "100", item.Quantity.String())

	// cannot reserve past available
	assert.Error(t, item.Reserve(decimal.NewFromInt(70)))

	require.NoError(t, item.Release(decimal.NewFromInt(10)))
	assert.Equal(t, "70", item.Available().String())

	// deduct consumes reservation and on-hand stock
	require.NoError(t, item.Deduct(decimal.NewFromInt(30)))
	assert.Equal(t, "70", item.Quantity.String())
	assert.Equal(t, "0", item.Reserved.String())

	// cannot deduct or release more than reserved
	assert.Error(t, item.Deduct(decimal.NewFromInt(1)))
	assert.Error(t, item.Release(decimal.NewFromInt(1)))
}

func TestInventoryQualityHold(t *testing.T) {
	item, err := NewInventoryItem(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(50), "", "", nil, nil))

	item.SetQuality(QualityStatusQuarantined)
	assert.Error(t, item.Reserve(decimal.NewFromInt(10)))

	item.SetQuality(QualityStatusGood)
	assert.NoError(t, item.Reserve(decimal.NewFromInt(10)))
}

func TestInventoryAdjustTo(t *testing.T) {
	item, err := NewInventoryItem(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(100), "", "", nil, nil))
	require.NoError(t, item.Reserve(decimal.NewFromInt(30)))

	delta, err := item.AdjustTo(decimal.NewFromInt(90), "stock count")
	require.NoError(t, err)
	assert.Equal(t, "-10", delta.String())

	// cannot undercut reservations
	_, err = item.AdjustTo(decimal.NewFromInt(20), "stock count")
	assert.Error(t, err)

	_, err = item.AdjustTo(decimal.NewFromInt(90), "")
	assert.Error(t, err)
}

func TestInventoryLowStockEvent(t *testing.T) {
	item, err := NewInventoryItem(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(100), "", "", nil, nil))
	require.NoError(t, item.SetMinQuantity(decimal.NewFromInt(80)))
	require.NoError(t, item.Reserve(decimal.NewFromInt(30)))
	item.ClearDomainEvents()

	require.NoError(t, item.Deduct(decimal.NewFromInt(30)))

	var sawLowStock bool
	for _, ev := range item.GetDomainEvents() {
		if ev.EventType() == EventTypeLowStock {
			sawLowStock = true
		}
	}
	assert.True(t, sawLowStock)
}

func TestStockMovementReference(t *testing.T) {
	m, err := NewStockMovement(MovementTypeInbound, uuid.New(), uuid.New(), decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Contains(t, m.ReferenceNumber, "MV-IN-")

	_, err = NewStockMovement(MovementType("sideways"), uuid.New(), uuid.New(), decimal.NewFromInt(5))
	assert.Error(t, err)

	_, err = NewStockMovement(MovementTypeOutbound, uuid.New(), uuid.New(), decimal.Zero)
	assert.Error(t, err)
}

func TestTemperatureLog(t *testing.T) {
	wh, err := NewWarehouse("CLD-1", "Tema Cold Store", WarehouseTypeCold, "GH", decimal.NewFromInt(200))
	require.NoError(t, err)
	zone, err := wh.AddZone("Z1", ZoneTypeColdStorage, decimal.NewFromInt(200))
	require.NoError(t, err)

	ok, err := NewTemperatureLog(wh, zone.ID, 4.5, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, ok.InRange)
	assert.False(t, ok.NeedsAlert())

	hot, err := NewTemperatureLog(wh, zone.ID, 12.0, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, hot.NeedsAlert())

	_, err = NewTemperatureLog(wh, uuid.New(), 4.0, nil, time.Now())
	assert.Error(t, err)
}
