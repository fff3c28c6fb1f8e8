package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chemstock/backend/internal/domain/chemical"
	"github.com/chemstock/backend/internal/domain/shared"
)

// GormLiveStockRepository implements LiveStockRepository using GORM
type GormLiveStockRepository struct {
	db *gorm.DB
}

// NewGormLiveStockRepository creates a new GormLiveStockRepository
func NewGormLiveStockRepository(db *gorm.DB) *GormLiveStockRepository {
	return &GormLiveStockRepository{db: db}
}

// Create inserts a new live stock row
func (r *GormLiveStockRepository) Create(ctx context.Context, stock *chemical.LiveStock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

// Save persists changes to an existing live stock row
func (r *GormLiveStockRepository) Save(ctx context.Context, stock *chemical.LiveStock) error {
	result := r.db.WithContext(ctx).Model(&chemical.LiveStock{}).
		Where("id = ?", stock.ID).
		Updates(map[string]interface{}{
			"chemical_name":     stock.ChemicalName,
			"display_name":      stock.DisplayName,
			"quantity":          stock.Quantity,
			"original_quantity": stock.OriginalQuantity,
			"is_allocated":      stock.IsAllocated,
			"updated_at":        stock.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a live stock row by its ID
func (r *GormLiveStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*chemical.LiveStock, error) {
	var stock chemical.LiveStock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByMasterAndPool finds the unique row a lot holds in a pool
func (r *GormLiveStockRepository) FindByMasterAndPool(ctx context.Context, masterID uuid.UUID, pool chemical.PoolID) (*chemical.LiveStock, error) {
	var stock chemical.LiveStock
	err := r.db.WithContext(ctx).
		Where("master_record_id = ? AND pool_id = ?", masterID, pool).
		First(&stock).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stock, nil
}

// FindByMaster returns every pool's row for one lot
func (r *GormLiveStockRepository) FindByMaster(ctx context.Context, masterID uuid.UUID) ([]*chemical.LiveStock, error) {
	var stocks []*chemical.LiveStock
	if err := r.db.WithContext(ctx).Where("master_record_id = ?", masterID).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindByPool returns a pool's rows ordered by expiry
func (r *GormLiveStockRepository) FindByPool(ctx context.Context, pool chemical.PoolID) ([]*chemical.LiveStock, error) {
	var stocks []*chemical.LiveStock
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", pool).
		Order("expiry_date ASC").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindAll returns every live stock row
func (r *GormLiveStockRepository) FindAll(ctx context.Context) ([]*chemical.LiveStock, error) {
	var stocks []*chemical.LiveStock
	if err := r.db.WithContext(ctx).Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// AllocateFromCentral draws quantity from the earliest-expiring central row
// that can cover it. The decrement is a single conditional UPDATE guarded by
// "quantity >= ?"; when a concurrent allocation drains a candidate between
// the read and the update, zero rows are affected and the next candidate is
// tried. Rows are never driven negative and a lot too small for the request
// is skipped, never split.
func (r *GormLiveStockRepository) AllocateFromCentral(ctx context.Context, displayName string, quantity decimal.Decimal) (*chemical.LiveStock, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "allocation quantity must be positive")
	}

	var candidates []*chemical.LiveStock
	err := r.db.WithContext(ctx).
		Where("pool_id = ? AND display_name = ? AND quantity >= ?", chemical.CentralPool, displayName, quantity).
		Order("expiry_date ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		result := r.db.WithContext(ctx).Model(&chemical.LiveStock{}).
			Where("id = ? AND quantity >= ?", candidate.ID, quantity).
			Updates(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - ?", quantity),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			return candidate, nil
		}
		// Lost the race on this row, try the next lot by expiry.
	}

	return nil, shared.ErrInsufficientStock
}

// UpsertIntoPool inserts the row, or atomically adds its quantity to the
// existing (master, pool) row. OriginalQuantity is only written on insert.
func (r *GormLiveStockRepository) UpsertIntoPool(ctx context.Context, stock *chemical.LiveStock) (*chemical.LiveStock, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "master_record_id"}, {Name: "pool_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("live_stocks.quantity + ?", stock.Quantity),
				"updated_at": time.Now(),
			}),
		}).
		Create(stock).Error
	if err != nil {
		return nil, err
	}
	return r.FindByMasterAndPool(ctx, stock.MasterRecordID, stock.PoolID)
}

var _ chemical.LiveStockRepository = (*GormLiveStockRepository)(nil)
