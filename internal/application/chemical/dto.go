package chemical

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemstock/backend/internal/domain/chemical"
)

// IntakeEntryRequest is one line of an intake batch.
type IntakeEntryRequest struct {
	ChemicalName string          `json:"chemical_name" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	Unit         string          `json:"unit" binding:"required"`
	ExpiryDate   time.Time       `json:"expiry_date" binding:"required"`
	Vendor       string          `json:"vendor" binding:"required"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Department   string          `json:"department"`
}

// IntakeRequest registers a batch of chemicals into the central repository.
type IntakeRequest struct {
	UsePreviousBatch bool                 `json:"use_previous_batch"`
	Entries          []IntakeEntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// IntakeEntryOutcome describes what happened to one intake entry.
type IntakeEntryOutcome string

const (
	OutcomeCreated IntakeEntryOutcome = "created"
	OutcomeMerged  IntakeEntryOutcome = "merged"
	OutcomeRebased IntakeEntryOutcome = "rebased"
)

// IntakeEntryResponse reports the master record an entry landed on.
type IntakeEntryResponse struct {
	MasterRecordID uuid.UUID          `json:"master_record_id"`
	ChemicalName   string             `json:"chemical_name"`
	Outcome        IntakeEntryOutcome `json:"outcome"`
	Quantity       decimal.Decimal    `json:"quantity"`
}

// IntakeResponse is the result of a whole intake batch.
type IntakeResponse struct {
	BatchID string                `json:"batch_id"`
	Entries []IntakeEntryResponse `json:"entries"`
}

// AllocationItemRequest asks for a quantity of one chemical by display name.
type AllocationItemRequest struct {
	ChemicalName string          `json:"chemical_name" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
}

// AllocationRequest moves a batch of chemicals from central to one lab.
type AllocationRequest struct {
	LabID chemical.PoolID         `json:"lab_id" binding:"required,labpool"`
	Items []AllocationItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Allocation item statuses.
const (
	AllocationStatusSuccess = "success"
	AllocationStatusFailed  = "failed"
)

// AllocationItemResponse is the per-item verdict. Failed batches still carry
// one entry per requested item so the caller sees exactly which lines sank
// the batch.
type AllocationItemResponse struct {
	ChemicalName string          `json:"chemical_name"`
	Status       string          `json:"status"`
	Reason       string          `json:"reason,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// AllocationResponse is the result of one allocation batch. Success is false
// when any item failed, in which case no stock moved at all.
type AllocationResponse struct {
	Success bool                     `json:"success"`
	LabID   chemical.PoolID          `json:"lab_id"`
	Items   []AllocationItemResponse `json:"items"`
}

// MasterRecordResponse represents a catalog record in API responses.
type MasterRecordResponse struct {
	ID           uuid.UUID       `json:"id"`
	ChemicalName string          `json:"chemical_name"`
	DisplayName  string          `json:"display_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	BatchID      string          `json:"batch_id"`
	Vendor       string          `json:"vendor"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Department   string          `json:"department,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// LiveStockResponse represents one pool's holding of a lot.
type LiveStockResponse struct {
	ID               uuid.UUID       `json:"id"`
	MasterRecordID   uuid.UUID       `json:"master_record_id"`
	PoolID           chemical.PoolID `json:"pool_id"`
	DisplayName      string          `json:"display_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	OriginalQuantity decimal.Decimal `json:"original_quantity"`
	Unit             string          `json:"unit"`
	ExpiryDate       time.Time       `json:"expiry_date"`
	IsAllocated      bool            `json:"is_allocated"`
	BatchID          string          `json:"batch_id,omitempty"`
	Vendor           string          `json:"vendor,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AllocationFormItem is the simplified central-stock feed used to build
// allocation forms.
type AllocationFormItem struct {
	DisplayName  string          `json:"display_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// StockTransactionResponse represents one audit row.
type StockTransactionResponse struct {
	ID              uuid.UUID                `json:"id"`
	ChemicalName    string                   `json:"chemical_name"`
	TransactionType chemical.TransactionType `json:"transaction_type"`
	SourcePool      chemical.PoolID          `json:"source_pool"`
	DestinationPool chemical.PoolID          `json:"destination_pool"`
	Quantity        decimal.Decimal          `json:"quantity"`
	Unit            string                   `json:"unit"`
	ExpiryDate      time.Time                `json:"expiry_date"`
	CreatedBy       uuid.UUID                `json:"created_by"`
	Timestamp       time.Time                `json:"timestamp"`
}

// PoolDistributionResponse summarizes one pool for the distribution view.
type PoolDistributionResponse struct {
	PoolID        chemical.PoolID `json:"pool_id"`
	ChemicalCount int             `json:"chemical_count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalValue    decimal.Decimal `json:"total_value"`
	ExpiringCount int             `json:"expiring_count"`
}

// DistributionResponse is the whole-system distribution summary.
type DistributionResponse struct {
	Pools []PoolDistributionResponse `json:"pools"`
}

func toMasterRecordResponse(m *chemical.MasterRecord) MasterRecordResponse {
	return MasterRecordResponse{
		ID:           m.ID,
		ChemicalName: m.ChemicalName,
		DisplayName:  m.BaseChemicalName(),
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		ExpiryDate:   m.ExpiryDate,
		BatchID:      m.BatchID,
		Vendor:       m.Vendor,
		PricePerUnit: m.PricePerUnit,
		Department:   m.Department,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toLiveStockResponse(s *chemical.LiveStock, master *chemical.MasterRecord) LiveStockResponse {
	resp := LiveStockResponse{
		ID:               s.ID,
		MasterRecordID:   s.MasterRecordID,
		PoolID:           s.PoolID,
		DisplayName:      s.DisplayName,
		Quantity:         s.Quantity,
		OriginalQuantity: s.OriginalQuantity,
		Unit:             s.Unit,
		ExpiryDate:       s.ExpiryDate,
		IsAllocated:      s.IsAllocated,
		UpdatedAt:        s.UpdatedAt,
	}
	if master != nil {
		resp.BatchID = master.BatchID
		resp.Vendor = master.Vendor
	}
	return resp
}

func toStockTransactionResponse(tx *chemical.StockTransaction) StockTransactionResponse {
	return StockTransactionResponse{
		ID:              tx.ID,
		ChemicalName:    tx.ChemicalName,
		TransactionType: tx.TransactionType,
		SourcePool:      tx.SourcePool,
		DestinationPool: tx.DestinationPool,
		Quantity:        tx.Quantity,
		Unit:            tx.Unit,
		ExpiryDate:      tx.ExpiryDate,
		CreatedBy:       tx.CreatedBy,
		Timestamp:       tx.Timestamp,
	}
}
