package chemical

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chemstock/backend/internal/domain/shared"
)

// MasterRecord is the catalog identity of one distinct chemical lot: a unique
// (name, vendor, unit, expiry) combination. Its ChemicalName may carry a
// disambiguation suffix ("Acetone - B") when several lots of the same base
// chemical coexist with different expiry dates. Quantity accumulates across
// intake batches that resolve to the same record.
type MasterRecord struct {
	shared.BaseEntity
	ChemicalName string          `gorm:"not null;index" json:"chemical_name"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit         string          `gorm:"type:varchar(32);not null" json:"unit"`
	ExpiryDate   time.Time       `gorm:"not null;index" json:"expiry_date"`
	BatchID      string          `gorm:"type:varchar(32);not null;index" json:"batch_id"`
	Vendor       string          `gorm:"not null" json:"vendor"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"price_per_unit"`
	Department   string          `gorm:"type:varchar(64)" json:"department"`
}

// TableName returns the database table name
func (MasterRecord) TableName() string {
	return "master_records"
}

// NewMasterRecord creates a master record for an intake entry. The name is
// stored as given, suffix included; callers resolve the name first.
func NewMasterRecord(name string, quantity decimal.Decimal, unit string, expiry time.Time, batchID, vendor string, pricePerUnit decimal.Decimal, department string) (*MasterRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "chemical name is required")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "unit is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "quantity must be positive")
	}
	if expiry.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "expiry date is required")
	}
	if batchID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "batch id is required")
	}
	if pricePerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "price per unit cannot be negative")
	}

	return &MasterRecord{
		BaseEntity:   shared.NewBaseEntity(),
		ChemicalName: name,
		Quantity:     quantity,
		Unit:         strings.TrimSpace(unit),
		ExpiryDate:   expiry,
		BatchID:      batchID,
		Vendor:       strings.TrimSpace(vendor),
		PricePerUnit: pricePerUnit,
		Department:   strings.TrimSpace(department),
	}, nil
}

// Merge folds a new intake of the same lot into this record.
func (m *MasterRecord) Merge(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "merge quantity must be positive")
	}
	m.Quantity = m.Quantity.Add(quantity)
	m.UpdatedAt = time.Now()
	return nil
}

// Rename assigns a new stored name, used when a later intake with an earlier
// expiry claims the base name.
func (m *MasterRecord) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "chemical name is required")
	}
	m.ChemicalName = name
	m.UpdatedAt = time.Now()
	return nil
}

// BaseChemicalName returns the record's name with any disambiguation suffix
// stripped. This is the name labs see.
func (m *MasterRecord) BaseChemicalName() string {
	return BaseName(m.ChemicalName)
}

// ExpiresWithin reports whether the lot expires on or before now+window.
func (m *MasterRecord) ExpiresWithin(now time.Time, window time.Duration) bool {
	return !m.ExpiryDate.After(now.Add(window))
}
