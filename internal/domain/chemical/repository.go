package chemical

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MasterRecordRepository manages catalog identities.
type MasterRecordRepository interface {
	Create(ctx context.Context, record *MasterRecord) error
	Save(ctx context.Context, record *MasterRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*MasterRecord, error)
	// FindByIdentity returns every record whose stored name is the base name
	// or the base name plus a suffix (case-insensitive), with the same vendor
	// and unit.
	FindByIdentity(ctx context.Context, baseName, vendor, unit string) ([]*MasterRecord, error)
	// FindNamesLike returns the stored names matching the base name or a
	// suffixed variant of it, across all vendors and units. Used to compute
	// which suffixes are already taken.
	FindNamesLike(ctx context.Context, baseName string) ([]string, error)
	// FindLatest returns the most recently created record, or ErrNotFound
	// when the catalog is empty.
	FindLatest(ctx context.Context) (*MasterRecord, error)
	FindAll(ctx context.Context) ([]*MasterRecord, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*MasterRecord, error)
}

// LiveStockRepository manages per-pool on-hand quantities.
type LiveStockRepository interface {
	Create(ctx context.Context, stock *LiveStock) error
	Save(ctx context.Context, stock *LiveStock) error
	FindByID(ctx context.Context, id uuid.UUID) (*LiveStock, error)
	FindByMasterAndPool(ctx context.Context, masterID uuid.UUID, pool PoolID) (*LiveStock, error)
	FindByMaster(ctx context.Context, masterID uuid.UUID) ([]*LiveStock, error)
	FindByPool(ctx context.Context, pool PoolID) ([]*LiveStock, error)
	FindAll(ctx context.Context) ([]*LiveStock, error)
	// AllocateFromCentral atomically draws quantity from the central row
	// with the earliest expiry that still holds at least that much, retrying
	// later-expiry rows when a concurrent writer empties a candidate first.
	// The decrement is a single conditional update, never a read followed by
	// a write. Returns the drawn row as it was before the decrement, or
	// ErrInsufficientStock when no candidate can cover the quantity.
	AllocateFromCentral(ctx context.Context, displayName string, quantity decimal.Decimal) (*LiveStock, error)
	// UpsertIntoPool inserts stock, or, when a row for the same
	// (master, pool) already exists, atomically adds stock.Quantity to that
	// row's live quantity while leaving its original quantity untouched.
	// Returns the surviving row.
	UpsertIntoPool(ctx context.Context, stock *LiveStock) (*LiveStock, error)
}

// StockTransactionRepository is the append-only audit trail. There are no
// update or delete operations.
type StockTransactionRepository interface {
	Create(ctx context.Context, transaction *StockTransaction) error
	FindAll(ctx context.Context) ([]*StockTransaction, error)
	FindByType(ctx context.Context, txType TransactionType) ([]*StockTransaction, error)
	FindByPool(ctx context.Context, pool PoolID) ([]*StockTransaction, error)
}
