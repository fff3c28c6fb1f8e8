package chemical

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chemstock/backend/internal/domain/shared"
)

// LiveStock is the physical on-hand quantity of one master lot in one pool.
// A lot has at most one row per pool; the (master_record_id, pool_id) pair is
// unique. DisplayName is always the suffix-free base name, so labs order by
// the name they know while the suffixed master name stays internal.
type LiveStock struct {
	shared.BaseEntity
	MasterRecordID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_live_stocks_master_pool,priority:1" json:"master_record_id"`
	PoolID           PoolID          `gorm:"type:varchar(32);not null;uniqueIndex:idx_live_stocks_master_pool,priority:2;index" json:"pool_id"`
	ChemicalName     string          `gorm:"not null" json:"chemical_name"`
	DisplayName      string          `gorm:"not null;index" json:"display_name"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	OriginalQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"original_quantity"`
	Unit             string          `gorm:"type:varchar(32);not null" json:"unit"`
	ExpiryDate       time.Time       `gorm:"not null;index" json:"expiry_date"`
	IsAllocated      bool            `gorm:"not null;default:false" json:"is_allocated"`
}

// TableName returns the database table name
func (LiveStock) TableName() string {
	return "live_stocks"
}

// NewCentralLiveStock creates the central-pool row for a freshly created
// master record. Quantity and OriginalQuantity both start at the intake
// amount.
func NewCentralLiveStock(master *MasterRecord) *LiveStock {
	return &LiveStock{
		BaseEntity:       shared.NewBaseEntity(),
		MasterRecordID:   master.ID,
		PoolID:           CentralPool,
		ChemicalName:     master.ChemicalName,
		DisplayName:      master.BaseChemicalName(),
		Quantity:         master.Quantity,
		OriginalQuantity: master.Quantity,
		Unit:             master.Unit,
		ExpiryDate:       master.ExpiryDate,
		IsAllocated:      false,
	}
}

// NewLabLiveStock creates the lab-pool row inserted when a lot is first
// allocated to a lab. OriginalQuantity records the first allocation amount
// and never changes afterwards.
func NewLabLiveStock(source *LiveStock, lab PoolID, quantity decimal.Decimal) *LiveStock {
	return &LiveStock{
		BaseEntity:       shared.NewBaseEntity(),
		MasterRecordID:   source.MasterRecordID,
		PoolID:           lab,
		ChemicalName:     source.ChemicalName,
		DisplayName:      source.DisplayName,
		Quantity:         quantity,
		OriginalQuantity: quantity,
		Unit:             source.Unit,
		ExpiryDate:       source.ExpiryDate,
		IsAllocated:      true,
	}
}

// Receive folds a merged intake into a central row. Both the live quantity
// and the running intake total grow.
func (s *LiveStock) Receive(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "received quantity must be positive")
	}
	if s.PoolID != CentralPool {
		return shared.NewDomainError("INVALID_STATE", "only central stock can receive intake")
	}
	s.Quantity = s.Quantity.Add(quantity)
	s.OriginalQuantity = s.OriginalQuantity.Add(quantity)
	s.UpdatedAt = time.Now()
	return nil
}

// SetChemicalName propagates a master rename. The display name is derived
// from the new stored name.
func (s *LiveStock) SetChemicalName(name string) {
	s.ChemicalName = name
	s.DisplayName = BaseName(name)
	s.UpdatedAt = time.Now()
}

// IsDepleted reports whether nothing is left to allocate from this row.
func (s *LiveStock) IsDepleted() bool {
	return s.Quantity.LessThanOrEqual(decimal.Zero)
}
