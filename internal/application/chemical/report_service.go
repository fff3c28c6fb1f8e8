package chemical

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chemstock/backend/internal/domain/chemical"
	"github.com/chemstock/backend/internal/domain/shared"
)

// ExpiryWarningWindow is how far ahead the distribution summary looks when
// counting soon-to-expire lots.
const ExpiryWarningWindow = 30 * 24 * time.Hour

// ReportService serves the read-side projections. It works on plain
// repositories outside any transaction scope; reads tolerate being a moment
// stale.
type ReportService struct {
	masters      chemical.MasterRecordRepository
	live         chemical.LiveStockRepository
	transactions chemical.StockTransactionRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewReportService creates a report service.
func NewReportService(
	masters chemical.MasterRecordRepository,
	live chemical.LiveStockRepository,
	transactions chemical.StockTransactionRepository,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		masters:      masters,
		live:         live,
		transactions: transactions,
		logger:       logger,
		now:          time.Now,
	}
}

// ListMasters returns the whole catalog, newest first.
func (s *ReportService) ListMasters(ctx context.Context) ([]MasterRecordResponse, error) {
	records, err := s.masters.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MasterRecordResponse, 0, len(records))
	for _, m := range records {
		out = append(out, toMasterRecordResponse(m))
	}
	return out, nil
}

// CentralStock returns every central live row with batch and vendor joined
// in from the owning master record.
func (s *ReportService) CentralStock(ctx context.Context) ([]LiveStockResponse, error) {
	return s.stockByPool(ctx, chemical.CentralPool)
}

// LabStock returns a single lab's live rows.
func (s *ReportService) LabStock(ctx context.Context, lab chemical.PoolID) ([]LiveStockResponse, error) {
	if !chemical.IsLabPool(lab) {
		return nil, shared.ErrUnknownPool
	}
	return s.stockByPool(ctx, lab)
}

func (s *ReportService) stockByPool(ctx context.Context, pool chemical.PoolID) ([]LiveStockResponse, error) {
	stocks, err := s.live.FindByPool(ctx, pool)
	if err != nil {
		return nil, err
	}

	masters, err := s.mastersByID(ctx, stocks)
	if err != nil {
		return nil, err
	}

	out := make([]LiveStockResponse, 0, len(stocks))
	for _, st := range stocks {
		out = append(out, toLiveStockResponse(st, masters[st.MasterRecordID]))
	}
	return out, nil
}

// AllocationForm returns the simplified central feed used to populate
// allocation forms: one line per central lot that still has stock.
func (s *ReportService) AllocationForm(ctx context.Context) ([]AllocationFormItem, error) {
	stocks, err := s.live.FindByPool(ctx, chemical.CentralPool)
	if err != nil {
		return nil, err
	}
	masters, err := s.mastersByID(ctx, stocks)
	if err != nil {
		return nil, err
	}

	out := make([]AllocationFormItem, 0, len(stocks))
	for _, st := range stocks {
		if st.IsDepleted() {
			continue
		}
		item := AllocationFormItem{
			DisplayName: st.DisplayName,
			Quantity:    st.Quantity,
			Unit:        st.Unit,
			ExpiryDate:  st.ExpiryDate,
		}
		if m := masters[st.MasterRecordID]; m != nil {
			item.PricePerUnit = m.PricePerUnit
		}
		out = append(out, item)
	}
	return out, nil
}

// LabMasters returns the catalog records present in a lab, derived from the
// lab's live rows.
func (s *ReportService) LabMasters(ctx context.Context, lab chemical.PoolID) ([]MasterRecordResponse, error) {
	if !chemical.IsLabPool(lab) {
		return nil, shared.ErrUnknownPool
	}
	stocks, err := s.live.FindByPool(ctx, lab)
	if err != nil {
		return nil, err
	}
	masters, err := s.mastersByID(ctx, stocks)
	if err != nil {
		return nil, err
	}

	out := make([]MasterRecordResponse, 0, len(stocks))
	seen := make(map[uuid.UUID]bool, len(stocks))
	for _, st := range stocks {
		m := masters[st.MasterRecordID]
		if m == nil || seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, toMasterRecordResponse(m))
	}
	return out, nil
}

// ListTransactions returns the audit trail, newest first.
func (s *ReportService) ListTransactions(ctx context.Context) ([]StockTransactionResponse, error) {
	txs, err := s.transactions.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]StockTransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toStockTransactionResponse(tx))
	}
	return out, nil
}

// Distribution summarizes every pool: distinct lots held, total quantity,
// total value priced from the owning master records, and lots expiring
// within the warning window.
func (s *ReportService) Distribution(ctx context.Context) (*DistributionResponse, error) {
	stocks, err := s.live.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	masters, err := s.mastersByID(ctx, stocks)
	if err != nil {
		return nil, err
	}

	now := s.now()
	byPool := make(map[chemical.PoolID][]*chemical.LiveStock)
	for _, st := range stocks {
		byPool[st.PoolID] = append(byPool[st.PoolID], st)
	}

	resp := &DistributionResponse{Pools: make([]PoolDistributionResponse, 0, len(chemical.KnownPools()))}
	for _, pool := range chemical.KnownPools() {
		summary := PoolDistributionResponse{
			PoolID:        pool,
			TotalQuantity: decimal.Zero,
			TotalValue:    decimal.Zero,
		}
		for _, st := range byPool[pool] {
			if st.IsDepleted() {
				continue
			}
			summary.ChemicalCount++
			summary.TotalQuantity = summary.TotalQuantity.Add(st.Quantity)
			if m := masters[st.MasterRecordID]; m != nil {
				summary.TotalValue = summary.TotalValue.Add(st.Quantity.Mul(m.PricePerUnit))
				if m.ExpiresWithin(now, ExpiryWarningWindow) {
					summary.ExpiringCount++
				}
			}
		}
		resp.Pools = append(resp.Pools, summary)
	}
	return resp, nil
}

func (s *ReportService) mastersByID(ctx context.Context, stocks []*chemical.LiveStock) (map[uuid.UUID]*chemical.MasterRecord, error) {
	ids := make([]uuid.UUID, 0, len(stocks))
	seen := make(map[uuid.UUID]bool, len(stocks))
	for _, st := range stocks {
		if !seen[st.MasterRecordID] {
			seen[st.MasterRecordID] = true
			ids = append(ids, st.MasterRecordID)
		}
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*chemical.MasterRecord{}, nil
	}

	masters, err := s.masters.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*chemical.MasterRecord, len(masters))
	for _, m := range masters {
		byID[m.ID] = m
	}
	return byID, nil
}
