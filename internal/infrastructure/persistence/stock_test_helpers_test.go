package persistence

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chemstock/backend/internal/domain/chemical"
)

// setupStockTestDB creates an in-memory SQLite database with the stock schema
func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&chemical.MasterRecord{},
		&chemical.LiveStock{},
		&chemical.StockTransaction{},
	))
	return db
}

func testExpiry(offset int) time.Time {
	return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func newTestMaster(t *testing.T, name string, qty int64, exp time.Time) *chemical.MasterRecord {
	t.Helper()
	m, err := chemical.NewMasterRecord(name, decimal.NewFromInt(qty), "mL", exp, "BATCH-20261001-123", "Sigma", decimal.NewFromInt(7), "chemistry")
	require.NoError(t, err)
	return m
}

// seedCentralLot persists a master record together with its central live row
func seedCentralLot(t *testing.T, db *gorm.DB, name string, qty int64, exp time.Time) (*chemical.MasterRecord, *chemical.LiveStock) {
	t.Helper()
	master := newTestMaster(t, name, qty, exp)
	require.NoError(t, db.Create(master).Error)
	live := chemical.NewCentralLiveStock(master)
	require.NoError(t, db.Create(live).Error)
	return master, live
}
