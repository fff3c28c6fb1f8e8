package chemical

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chemstock/backend/internal/domain/chemical"
	"github.com/chemstock/backend/internal/domain/shared"
)

// IntakeService registers incoming chemical batches into the central
// repository. Every entry resolves against the catalog (merge, suffix or
// rebase) and lands as a master record, a central live-stock row and one
// audit transaction.
//
// Each entry commits in its own transaction scope: a storage failure on
// entry N aborts the request but leaves entries 1..N-1 committed. There is
// deliberately no cross-entry rollback.
type IntakeService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewIntakeService creates an intake service.
func NewIntakeService(scope TransactionScope, logger *zap.Logger) *IntakeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntakeService{scope: scope, logger: logger}
}

// Intake processes one intake batch. All entries share a single batch id,
// freshly generated or, when UsePreviousBatch is set, reused from the most
// recently created master record.
func (s *IntakeService) Intake(ctx context.Context, actorID uuid.UUID, req IntakeRequest) (*IntakeResponse, error) {
	if len(req.Entries) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "intake requires at least one entry")
	}
	for i := range req.Entries {
		if err := validateIntakeEntry(&req.Entries[i]); err != nil {
			return nil, err
		}
	}

	batchID, err := s.resolveBatchID(ctx, req.UsePreviousBatch)
	if err != nil {
		return nil, err
	}

	resp := &IntakeResponse{
		BatchID: batchID,
		Entries: make([]IntakeEntryResponse, 0, len(req.Entries)),
	}

	for i := range req.Entries {
		entry := req.Entries[i]

		var outcome IntakeEntryResponse
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			var execErr error
			outcome, execErr = s.processEntry(ctx, repos, batchID, actorID, entry)
			return execErr
		})
		if err != nil {
			// Entries before this one are already committed and stay so.
			s.logger.Error("intake entry failed",
				zap.Int("entry_index", i),
				zap.String("chemical_name", entry.ChemicalName),
				zap.String("batch_id", batchID),
				zap.Error(err))
			return nil, err
		}

		resp.Entries = append(resp.Entries, outcome)
	}

	s.logger.Info("intake batch registered",
		zap.String("batch_id", batchID),
		zap.Int("entries", len(resp.Entries)))

	return resp, nil
}

func validateIntakeEntry(e *IntakeEntryRequest) error {
	if strings.TrimSpace(e.ChemicalName) == "" {
		return shared.NewDomainError("INVALID_INPUT", "chemical name is required")
	}
	if strings.TrimSpace(e.Unit) == "" {
		return shared.NewDomainError("INVALID_INPUT", "unit is required")
	}
	if e.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "quantity must be positive")
	}
	if e.ExpiryDate.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "expiry date is required")
	}
	if e.PricePerUnit.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "price per unit cannot be negative")
	}
	return nil
}

func (s *IntakeService) resolveBatchID(ctx context.Context, usePrevious bool) (string, error) {
	if !usePrevious {
		return chemical.NewBatchID(time.Now()), nil
	}

	var batchID string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		latest, err := repos.MasterRepo().FindLatest(ctx)
		if errors.Is(err, shared.ErrNotFound) {
			batchID = chemical.NewBatchID(time.Now())
			return nil
		}
		if err != nil {
			return err
		}
		batchID = latest.BatchID
		return nil
	})
	if err != nil {
		return "", err
	}
	return batchID, nil
}

func (s *IntakeService) processEntry(ctx context.Context, repos TransactionalRepositories, batchID string, actorID uuid.UUID, entry IntakeEntryRequest) (IntakeEntryResponse, error) {
	candidate := chemical.Candidate{
		Name:   strings.TrimSpace(entry.ChemicalName),
		Vendor: strings.TrimSpace(entry.Vendor),
		Unit:   strings.TrimSpace(entry.Unit),
		Expiry: entry.ExpiryDate,
	}
	base := chemical.BaseName(candidate.Name)

	existing, err := repos.MasterRepo().FindByIdentity(ctx, base, candidate.Vendor, candidate.Unit)
	if err != nil {
		return IntakeEntryResponse{}, err
	}
	names, err := repos.MasterRepo().FindNamesLike(ctx, base)
	if err != nil {
		return IntakeEntryResponse{}, err
	}

	res := chemical.Resolve(candidate, existing, chemical.UsedSuffixes(base, names))

	switch res.Kind {
	case chemical.MatchMerge:
		return s.mergeEntry(ctx, repos, res.Target, actorID, entry)

	case chemical.MatchRebase:
		if err := s.applyRenames(ctx, repos, res.Renames); err != nil {
			return IntakeEntryResponse{}, err
		}
		return s.createEntry(ctx, repos, res.AssignedName, batchID, actorID, entry, OutcomeRebased)

	default:
		return s.createEntry(ctx, repos, res.AssignedName, batchID, actorID, entry, OutcomeCreated)
	}
}

func (s *IntakeService) mergeEntry(ctx context.Context, repos TransactionalRepositories, target *chemical.MasterRecord, actorID uuid.UUID, entry IntakeEntryRequest) (IntakeEntryResponse, error) {
	if err := target.Merge(entry.Quantity); err != nil {
		return IntakeEntryResponse{}, err
	}
	if err := repos.MasterRepo().Save(ctx, target); err != nil {
		return IntakeEntryResponse{}, err
	}

	live, err := repos.LiveRepo().FindByMasterAndPool(ctx, target.ID, chemical.CentralPool)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		// Central row missing for a known lot. Rebuild it from the merged
		// master minus whatever the labs already hold, so pool totals
		// still sum to the master quantity.
		held, herr := s.labHoldings(ctx, repos, target.ID)
		if herr != nil {
			return IntakeEntryResponse{}, herr
		}
		remainder := target.Quantity.Sub(held)
		if remainder.IsNegative() {
			return IntakeEntryResponse{}, shared.NewDomainError("INVALID_STATE", "lab holdings exceed the master quantity")
		}
		live = chemical.NewCentralLiveStock(target)
		live.Quantity = remainder
		if err := repos.LiveRepo().Create(ctx, live); err != nil {
			return IntakeEntryResponse{}, err
		}
	case err != nil:
		return IntakeEntryResponse{}, err
	default:
		if err := live.Receive(entry.Quantity); err != nil {
			return IntakeEntryResponse{}, err
		}
		if err := repos.LiveRepo().Save(ctx, live); err != nil {
			return IntakeEntryResponse{}, err
		}
	}

	tx, err := chemical.NewEntryTransaction(live.ID, target.ChemicalName, entry.Quantity, target.Unit, target.ExpiryDate, actorID)
	if err != nil {
		return IntakeEntryResponse{}, err
	}
	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return IntakeEntryResponse{}, err
	}

	return IntakeEntryResponse{
		MasterRecordID: target.ID,
		ChemicalName:   target.ChemicalName,
		Outcome:        OutcomeMerged,
		Quantity:       entry.Quantity,
	}, nil
}

// labHoldings sums the quantity of a master lot sitting in lab pools.
func (s *IntakeService) labHoldings(ctx context.Context, repos TransactionalRepositories, masterID uuid.UUID) (decimal.Decimal, error) {
	rows, err := repos.LiveRepo().FindByMaster(ctx, masterID)
	if err != nil {
		return decimal.Zero, err
	}
	held := decimal.Zero
	for _, row := range rows {
		if row.PoolID != chemical.CentralPool {
			held = held.Add(row.Quantity)
		}
	}
	return held, nil
}

func (s *IntakeService) applyRenames(ctx context.Context, repos TransactionalRepositories, renames []chemical.Rename) error {
	for _, rn := range renames {
		master, err := repos.MasterRepo().FindByID(ctx, rn.RecordID)
		if err != nil {
			return err
		}
		if err := master.Rename(rn.NewName); err != nil {
			return err
		}
		if err := repos.MasterRepo().Save(ctx, master); err != nil {
			return err
		}

		lives, err := repos.LiveRepo().FindByMaster(ctx, rn.RecordID)
		if err != nil {
			return err
		}
		for _, live := range lives {
			live.SetChemicalName(rn.NewName)
			if err := repos.LiveRepo().Save(ctx, live); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *IntakeService) createEntry(ctx context.Context, repos TransactionalRepositories, name, batchID string, actorID uuid.UUID, entry IntakeEntryRequest, outcome IntakeEntryOutcome) (IntakeEntryResponse, error) {
	master, err := chemical.NewMasterRecord(name, entry.Quantity, entry.Unit, entry.ExpiryDate, batchID, entry.Vendor, entry.PricePerUnit, entry.Department)
	if err != nil {
		return IntakeEntryResponse{}, err
	}
	if err := repos.MasterRepo().Create(ctx, master); err != nil {
		return IntakeEntryResponse{}, err
	}

	live := chemical.NewCentralLiveStock(master)
	if err := repos.LiveRepo().Create(ctx, live); err != nil {
		return IntakeEntryResponse{}, err
	}

	tx, err := chemical.NewEntryTransaction(live.ID, master.ChemicalName, entry.Quantity, master.Unit, master.ExpiryDate, actorID)
	if err != nil {
		return IntakeEntryResponse{}, err
	}
	if err := repos.TransactionRepo().Create(ctx, tx); err != nil {
		return IntakeEntryResponse{}, err
	}

	return IntakeEntryResponse{
		MasterRecordID: master.ID,
		ChemicalName:   master.ChemicalName,
		Outcome:        outcome,
		Quantity:       entry.Quantity,
	}, nil
}
