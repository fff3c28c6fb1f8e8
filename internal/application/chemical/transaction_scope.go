package chemical

import (
	"context"

	"github.com/chemstock/backend/internal/domain/chemical"
)

// TransactionScope provides transactional access to the stock repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all stock repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Intake opens one scope per entry, so a failing entry never undoes the
// entries before it. Allocation wraps a whole batch in a single scope, so one
// failing item rolls back every movement of the batch.
type TransactionalRepositories interface {
	// MasterRepo returns the master record repository scoped to the current transaction
	MasterRepo() chemical.MasterRecordRepository
	// LiveRepo returns the live stock repository scoped to the current transaction
	LiveRepo() chemical.LiveStockRepository
	// TransactionRepo returns the stock transaction repository scoped to the current transaction
	TransactionRepo() chemical.StockTransactionRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests or storage without transaction support.
type NoOpTransactionScope struct {
	masterRepo      chemical.MasterRecordRepository
	liveRepo        chemical.LiveStockRepository
	transactionRepo chemical.StockTransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	masterRepo chemical.MasterRecordRepository,
	liveRepo chemical.LiveStockRepository,
	transactionRepo chemical.StockTransactionRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		masterRepo:      masterRepo,
		liveRepo:        liveRepo,
		transactionRepo: transactionRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MasterRepo returns the master record repository.
func (s *NoOpTransactionScope) MasterRepo() chemical.MasterRecordRepository {
	return s.masterRepo
}

// LiveRepo returns the live stock repository.
func (s *NoOpTransactionScope) LiveRepo() chemical.LiveStockRepository {
	return s.liveRepo
}

// TransactionRepo returns the stock transaction repository.
func (s *NoOpTransactionScope) TransactionRepo() chemical.StockTransactionRepository {
	return s.transactionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
