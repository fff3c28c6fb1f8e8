package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/chemstock/backend/internal/domain/chemical"
)

// GormStockTransactionRepository implements StockTransactionRepository using
// GORM. The audit trail is append-only: the type exposes no update or delete
// operations on purpose.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Create appends an audit row
func (r *GormStockTransactionRepository) Create(ctx context.Context, transaction *chemical.StockTransaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// FindAll returns the audit trail, newest first
func (r *GormStockTransactionRepository) FindAll(ctx context.Context) ([]*chemical.StockTransaction, error) {
	var txs []*chemical.StockTransaction
	if err := r.db.WithContext(ctx).Order("timestamp DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByType returns every row of one transaction type, newest first
func (r *GormStockTransactionRepository) FindByType(ctx context.Context, txType chemical.TransactionType) ([]*chemical.StockTransaction, error) {
	var txs []*chemical.StockTransaction
	err := r.db.WithContext(ctx).
		Where("transaction_type = ?", txType).
		Order("timestamp DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByPool returns every row touching a pool on either side, newest first
func (r *GormStockTransactionRepository) FindByPool(ctx context.Context, pool chemical.PoolID) ([]*chemical.StockTransaction, error) {
	var txs []*chemical.StockTransaction
	err := r.db.WithContext(ctx).
		Where("source_pool = ? OR destination_pool = ?", pool, pool).
		Order("timestamp DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

var _ chemical.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
