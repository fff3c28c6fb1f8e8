package chemical

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemstock/backend/internal/domain/shared"
)

// TransactionType classifies a stock movement.
type TransactionType string

const (
	// TransactionEntry records stock arriving into the central pool.
	TransactionEntry TransactionType = "entry"
	// TransactionAllocation records stock moving from central to a lab.
	TransactionAllocation TransactionType = "allocation"
)

// StockTransaction is one append-only audit row. Transactions are never
// updated or deleted; a rolled-back allocation leaves no rows behind because
// they are written inside the same database transaction as the movement.
type StockTransaction struct {
	shared.BaseEntity
	ChemicalName    string          `gorm:"not null;index" json:"chemical_name"`
	TransactionType TransactionType `gorm:"type:varchar(16);not null;index" json:"transaction_type"`
	LiveStockID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"live_stock_id"`
	SourcePool      PoolID          `gorm:"type:varchar(32);not null" json:"source_pool"`
	DestinationPool PoolID          `gorm:"type:varchar(32);not null" json:"destination_pool"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit            string          `gorm:"type:varchar(32);not null" json:"unit"`
	ExpiryDate      time.Time       `gorm:"not null" json:"expiry_date"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	Timestamp       time.Time       `gorm:"not null;index" json:"timestamp"`
}

// TableName returns the database table name
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewEntryTransaction records an intake into the central pool. Entries stay
// within central, so source and destination are both the central pool.
func NewEntryTransaction(liveStockID uuid.UUID, chemicalName string, quantity decimal.Decimal, unit string, expiry time.Time, createdBy uuid.UUID) (*StockTransaction, error) {
	return newStockTransaction(TransactionEntry, liveStockID, chemicalName, CentralPool, CentralPool, quantity, unit, expiry, createdBy)
}

// NewAllocationTransaction records a movement from central to a lab pool.
// liveStockID references the destination lab row.
func NewAllocationTransaction(liveStockID uuid.UUID, chemicalName string, lab PoolID, quantity decimal.Decimal, unit string, expiry time.Time, createdBy uuid.UUID) (*StockTransaction, error) {
	if !IsLabPool(lab) {
		return nil, shared.ErrUnknownPool
	}
	return newStockTransaction(TransactionAllocation, liveStockID, chemicalName, CentralPool, lab, quantity, unit, expiry, createdBy)
}

func newStockTransaction(txType TransactionType, liveStockID uuid.UUID, chemicalName string, source, destination PoolID, quantity decimal.Decimal, unit string, expiry time.Time, createdBy uuid.UUID) (*StockTransaction, error) {
	if liveStockID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "live stock reference is required")
	}
	if chemicalName == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "chemical name is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "transaction quantity must be positive")
	}

	return &StockTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		ChemicalName:    chemicalName,
		TransactionType: txType,
		LiveStockID:     liveStockID,
		SourcePool:      source,
		DestinationPool: destination,
		Quantity:        quantity,
		Unit:            unit,
		ExpiryDate:      expiry,
		CreatedBy:       createdBy,
		Timestamp:       time.Now(),
	}, nil
}
