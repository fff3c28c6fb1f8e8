package chemical

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chemstock/backend/internal/domain/chemical"
	"github.com/chemstock/backend/internal/domain/shared"
)

// errBatchFailed aborts the allocation transaction so every movement rolls
// back. It never escapes Allocate; the caller gets the per-item results
// instead.
var errBatchFailed = errors.New("allocation batch failed")

// AllocationService moves stock from the central repository into lab pools.
// A batch is all-or-nothing: every item runs inside one transaction scope and
// a single failed item rolls the whole batch back, while the response still
// reports each item's individual verdict.
type AllocationService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewAllocationService creates an allocation service.
func NewAllocationService(scope TransactionScope, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{scope: scope, logger: logger}
}

// Allocate runs one allocation batch against a single lab. Stock is always
// drawn from the earliest-expiring central lot that can cover the requested
// quantity; partial draws across lots are never made.
func (s *AllocationService) Allocate(ctx context.Context, actorID uuid.UUID, req AllocationRequest) (*AllocationResponse, error) {
	if !chemical.IsLabPool(req.LabID) {
		return nil, shared.ErrUnknownPool
	}
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "allocation requires at least one item")
	}

	resp := &AllocationResponse{
		LabID: req.LabID,
		Items: make([]AllocationItemResponse, 0, len(req.Items)),
	}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		failed := false

		for i := range req.Items {
			item := req.Items[i]

			result, err := s.allocateItem(ctx, repos, req.LabID, actorID, item)
			if err != nil {
				// Storage failure, not a business verdict: surface it.
				return err
			}

			resp.Items = append(resp.Items, result)
			if result.Status == AllocationStatusFailed {
				failed = true
			}
		}

		if failed {
			return errBatchFailed
		}
		return nil
	})

	switch {
	case err == nil:
		resp.Success = true
		s.logger.Info("allocation batch committed",
			zap.String("lab_id", string(req.LabID)),
			zap.Int("items", len(resp.Items)))
		return resp, nil

	case errors.Is(err, errBatchFailed):
		resp.Success = false
		s.logger.Warn("allocation batch rolled back",
			zap.String("lab_id", string(req.LabID)),
			zap.Int("items", len(resp.Items)))
		return resp, nil

	default:
		return nil, err
	}
}

func (s *AllocationService) allocateItem(ctx context.Context, repos TransactionalRepositories, lab chemical.PoolID, actorID uuid.UUID, item AllocationItemRequest) (AllocationItemResponse, error) {
	name := strings.TrimSpace(item.ChemicalName)
	result := AllocationItemResponse{
		ChemicalName: name,
		Quantity:     item.Quantity,
	}

	if name == "" || item.Quantity.LessThanOrEqual(decimal.Zero) {
		result.Status = AllocationStatusFailed
		result.Reason = "invalid chemical name or quantity"
		return result, nil
	}

	source, err := repos.LiveRepo().AllocateFromCentral(ctx, name, item.Quantity)
	if errors.Is(err, shared.ErrInsufficientStock) || errors.Is(err, shared.ErrNotFound) {
		result.Status = AllocationStatusFailed
		result.Reason = "insufficient central stock"
		return result, nil
	}
	if err != nil {
		return AllocationItemResponse{}, err
	}

	dest, err := repos.LiveRepo().UpsertIntoPool(ctx, chemical.NewLabLiveStock(source, lab, item.Quantity))
	if err != nil {
		return AllocationItemResponse{}, err
	}

	tx, err := chemical.NewAllocationTransaction(dest.ID, source.ChemicalName, lab, item.Quantity, source.Unit, source.ExpiryDate, actorID)
	if err != nil {
		return AllocationItemResponse{}, err
	}
	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return AllocationItemResponse{}, err
	}

	result.Status = AllocationStatusSuccess
	expiry := source.ExpiryDate
	result.ExpiryDate = &expiry
	return result, nil
}
