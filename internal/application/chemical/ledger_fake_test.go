package chemical

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemstock/backend/internal/domain/chemical"
	"github.com/chemstock/backend/internal/domain/shared"
)

// fakeLedger is an in-memory stand-in for the persistence layer. fakeScope
// serializes transactions and restores a deep snapshot when the scoped
// function fails, which is exactly the rollback contract the services rely
// on.
type fakeLedger struct {
	mu          sync.Mutex
	masters     map[uuid.UUID]*chemical.MasterRecord
	masterOrder []uuid.UUID
	stocks      map[uuid.UUID]*chemical.LiveStock
	txs         []*chemical.StockTransaction

	txCreateCalls  int
	failTxCreateOn int // fail the Nth transaction create, 0 disables
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		masters: make(map[uuid.UUID]*chemical.MasterRecord),
		stocks:  make(map[uuid.UUID]*chemical.LiveStock),
	}
}

type ledgerSnapshot struct {
	masters     map[uuid.UUID]*chemical.MasterRecord
	masterOrder []uuid.UUID
	stocks      map[uuid.UUID]*chemical.LiveStock
	txs         []*chemical.StockTransaction
}

func (l *fakeLedger) snapshot() ledgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := ledgerSnapshot{
		masters:     make(map[uuid.UUID]*chemical.MasterRecord, len(l.masters)),
		masterOrder: append([]uuid.UUID(nil), l.masterOrder...),
		stocks:      make(map[uuid.UUID]*chemical.LiveStock, len(l.stocks)),
		txs:         append([]*chemical.StockTransaction(nil), l.txs...),
	}
	for id, m := range l.masters {
		cp := *m
		s.masters[id] = &cp
	}
	for id, st := range l.stocks {
		cp := *st
		s.stocks[id] = &cp
	}
	return s
}

func (l *fakeLedger) restore(s ledgerSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.masters = s.masters
	l.masterOrder = s.masterOrder
	l.stocks = s.stocks
	l.txs = s.txs
}

// centralQuantity sums the central live stock held under a display name.
func (l *fakeLedger) centralQuantity(displayName string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, st := range l.stocks {
		if st.PoolID == chemical.CentralPool && st.DisplayName == displayName {
			total = total.Add(st.Quantity)
		}
	}
	return total
}

func (l *fakeLedger) poolStock(pool chemical.PoolID) []*chemical.LiveStock {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*chemical.LiveStock
	for _, st := range l.stocks {
		if st.PoolID == pool {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out
}

type fakeScope struct {
	l    *fakeLedger
	txMu sync.Mutex
}

func newFakeScope(l *fakeLedger) *fakeScope {
	return &fakeScope{l: l}
}

func (s *fakeScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.l.snapshot()
	if err := fn(s); err != nil {
		s.l.restore(snap)
		return err
	}
	return nil
}

func (s *fakeScope) MasterRepo() chemical.MasterRecordRepository {
	return &fakeMasterRepo{l: s.l}
}

func (s *fakeScope) LiveRepo() chemical.LiveStockRepository {
	return &fakeLiveRepo{l: s.l}
}

func (s *fakeScope) TransactionRepo() chemical.StockTransactionRepository {
	return &fakeTxRepo{l: s.l}
}

var _ TransactionScope = (*fakeScope)(nil)
var _ TransactionalRepositories = (*fakeScope)(nil)

type fakeMasterRepo struct{ l *fakeLedger }

func (r *fakeMasterRepo) Create(_ context.Context, record *chemical.MasterRecord) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	cp := *record
	r.l.masters[record.ID] = &cp
	r.l.masterOrder = append(r.l.masterOrder, record.ID)
	return nil
}

func (r *fakeMasterRepo) Save(_ context.Context, record *chemical.MasterRecord) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if _, ok := r.l.masters[record.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *record
	r.l.masters[record.ID] = &cp
	return nil
}

func (r *fakeMasterRepo) FindByID(_ context.Context, id uuid.UUID) (*chemical.MasterRecord, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	m, ok := r.l.masters[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMasterRepo) FindByIdentity(_ context.Context, baseName, vendor, unit string) ([]*chemical.MasterRecord, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	probe := chemical.Candidate{Name: baseName, Vendor: vendor, Unit: unit}
	var out []*chemical.MasterRecord
	for _, id := range r.l.masterOrder {
		m := r.l.masters[id]
		if chemical.MatchesIdentity(probe, m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMasterRepo) FindNamesLike(_ context.Context, baseName string) ([]string, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []string
	for _, m := range r.l.masters {
		if strings.EqualFold(chemical.BaseName(m.ChemicalName), baseName) {
			out = append(out, m.ChemicalName)
		}
	}
	return out, nil
}

func (r *fakeMasterRepo) FindLatest(_ context.Context) (*chemical.MasterRecord, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if len(r.l.masterOrder) == 0 {
		return nil, shared.ErrNotFound
	}
	m := r.l.masters[r.l.masterOrder[len(r.l.masterOrder)-1]]
	cp := *m
	return &cp, nil
}

func (r *fakeMasterRepo) FindAll(_ context.Context) ([]*chemical.MasterRecord, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	out := make([]*chemical.MasterRecord, 0, len(r.l.masterOrder))
	for i := len(r.l.masterOrder) - 1; i >= 0; i-- {
		cp := *r.l.masters[r.l.masterOrder[i]]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMasterRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*chemical.MasterRecord, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*chemical.MasterRecord
	for _, id := range ids {
		if m, ok := r.l.masters[id]; ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeLiveRepo struct{ l *fakeLedger }

func (r *fakeLiveRepo) Create(_ context.Context, stock *chemical.LiveStock) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, st := range r.l.stocks {
		if st.MasterRecordID == stock.MasterRecordID && st.PoolID == stock.PoolID {
			return shared.ErrAlreadyExists
		}
	}
	cp := *stock
	r.l.stocks[stock.ID] = &cp
	return nil
}

func (r *fakeLiveRepo) Save(_ context.Context, stock *chemical.LiveStock) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if _, ok := r.l.stocks[stock.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := *stock
	r.l.stocks[stock.ID] = &cp
	return nil
}

func (r *fakeLiveRepo) FindByID(_ context.Context, id uuid.UUID) (*chemical.LiveStock, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	st, ok := r.l.stocks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *fakeLiveRepo) FindByMasterAndPool(_ context.Context, masterID uuid.UUID, pool chemical.PoolID) (*chemical.LiveStock, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, st := range r.l.stocks {
		if st.MasterRecordID == masterID && st.PoolID == pool {
			cp := *st
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeLiveRepo) FindByMaster(_ context.Context, masterID uuid.UUID) ([]*chemical.LiveStock, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*chemical.LiveStock
	for _, st := range r.l.stocks {
		if st.MasterRecordID == masterID {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLiveRepo) FindByPool(_ context.Context, pool chemical.PoolID) ([]*chemical.LiveStock, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*chemical.LiveStock
	for _, st := range r.l.stocks {
		if st.PoolID == pool {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}

func (r *fakeLiveRepo) FindAll(_ context.Context) ([]*chemical.LiveStock, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	out := make([]*chemical.LiveStock, 0, len(r.l.stocks))
	for _, st := range r.l.stocks {
		cp := *st
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLiveRepo) AllocateFromCentral(_ context.Context, displayName string, quantity decimal.Decimal) (*chemical.LiveStock, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()

	var candidates []*chemical.LiveStock
	for _, st := range r.l.stocks {
		if st.PoolID == chemical.CentralPool && st.DisplayName == displayName && st.Quantity.GreaterThanOrEqual(quantity) {
			candidates = append(candidates, st)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ExpiryDate.Before(candidates[j].ExpiryDate)
	})
	if len(candidates) == 0 {
		return nil, shared.ErrInsufficientStock
	}

	chosen := candidates[0]
	drawn := *chosen
	chosen.Quantity = chosen.Quantity.Sub(quantity)
	return &drawn, nil
}

func (r *fakeLiveRepo) UpsertIntoPool(_ context.Context, stock *chemical.LiveStock) (*chemical.LiveStock, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, st := range r.l.stocks {
		if st.MasterRecordID == stock.MasterRecordID && st.PoolID == stock.PoolID {
			st.Quantity = st.Quantity.Add(stock.Quantity)
			cp := *st
			return &cp, nil
		}
	}
	cp := *stock
	r.l.stocks[stock.ID] = &cp
	out := cp
	return &out, nil
}

type fakeTxRepo struct{ l *fakeLedger }

func (r *fakeTxRepo) Create(_ context.Context, transaction *chemical.StockTransaction) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	r.l.txCreateCalls++
	if r.l.failTxCreateOn > 0 && r.l.txCreateCalls == r.l.failTxCreateOn {
		return shared.NewDomainError("INTERNAL_ERROR", "injected transaction failure")
	}
	cp := *transaction
	r.l.txs = append(r.l.txs, &cp)
	return nil
}

func (r *fakeTxRepo) FindAll(_ context.Context) ([]*chemical.StockTransaction, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	out := make([]*chemical.StockTransaction, 0, len(r.l.txs))
	for i := len(r.l.txs) - 1; i >= 0; i-- {
		cp := *r.l.txs[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTxRepo) FindByType(_ context.Context, txType chemical.TransactionType) ([]*chemical.StockTransaction, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*chemical.StockTransaction
	for _, tx := range r.l.txs {
		if tx.TransactionType == txType {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) FindByPool(_ context.Context, pool chemical.PoolID) ([]*chemical.StockTransaction, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*chemical.StockTransaction
	for _, tx := range r.l.txs {
		if tx.SourcePool == pool || tx.DestinationPool == pool {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}
