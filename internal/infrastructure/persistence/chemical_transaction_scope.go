package persistence

import (
	"context"

	"gorm.io/gorm"

	appchem "github.com/chemstock/backend/internal/application/chemical"
	"github.com/chemstock/backend/internal/domain/chemical"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appchem.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// MasterRepo returns the master record repository scoped to the current transaction.
func (r *gormTransactionalRepositories) MasterRepo() chemical.MasterRecordRepository {
	return NewGormMasterRecordRepository(r.tx)
}

// LiveRepo returns the live stock repository scoped to the current transaction.
func (r *gormTransactionalRepositories) LiveRepo() chemical.LiveStockRepository {
	return NewGormLiveStockRepository(r.tx)
}

// TransactionRepo returns the stock transaction repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TransactionRepo() chemical.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appchem.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appchem.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
