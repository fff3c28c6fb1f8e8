package chemical

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCentralLiveStock(t *testing.T) {
	master := testMaster(t, "Acetone - B", day(30))

	stock := NewCentralLiveStock(master)

	assert.Equal(t, master.ID, stock.MasterRecordID)
	assert.Equal(t, CentralPool, stock.PoolID)
	assert.Equal(t, "Acetone - B", stock.ChemicalName)
	assert.Equal(t, "Acetone", stock.DisplayName, "labs only ever see the base name")
	assert.True(t, stock.Quantity.Equal(master.Quantity))
	assert.True(t, stock.OriginalQuantity.Equal(master.Quantity))
	assert.False(t, stock.IsAllocated)
}

func TestNewLabLiveStock(t *testing.T) {
	master := testMaster(t, "Acetone", day(30))
	central := NewCentralLiveStock(master)

	lab := NewLabLiveStock(central, PoolLab03, decimal.NewFromInt(4))

	assert.Equal(t, master.ID, lab.MasterRecordID)
	assert.Equal(t, PoolLab03, lab.PoolID)
	assert.True(t, lab.Quantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, lab.OriginalQuantity.Equal(decimal.NewFromInt(4)))
	assert.True(t, lab.IsAllocated)
	assert.Equal(t, central.ExpiryDate, lab.ExpiryDate)
}

func TestLiveStock_Receive(t *testing.T) {
	master := testMaster(t, "Acetone", day(30))
	stock := NewCentralLiveStock(master)

	require.NoError(t, stock.Receive(decimal.NewFromInt(5)))

	assert.True(t, stock.Quantity.Equal(decimal.NewFromInt(15)))
	assert.True(t, stock.OriginalQuantity.Equal(decimal.NewFromInt(15)))

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		err := stock.Receive(decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects lab pools", func(t *testing.T) {
		lab := NewLabLiveStock(stock, PoolLab01, decimal.NewFromInt(2))
		err := lab.Receive(decimal.NewFromInt(1))
		assert.Error(t, err)
	})
}

func TestLiveStock_SetChemicalName(t *testing.T) {
	master := testMaster(t, "Acetone", day(30))
	stock := NewCentralLiveStock(master)

	stock.SetChemicalName("Acetone - A")

	assert.Equal(t, "Acetone - A", stock.ChemicalName)
	assert.Equal(t, "Acetone", stock.DisplayName, "display name survives a rename")
}
