package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chemstock/backend/internal/domain/chemical"
	"github.com/chemstock/backend/internal/domain/shared"
)

// familyNameClause matches the bare base name or a suffixed variant. The LIKE
// pattern is a coarse prefilter ("_" matches any character); callers narrow
// the rows down with the domain suffix rules afterwards.
const familyNameClause = `LOWER(chemical_name) = LOWER(?) OR LOWER(chemical_name) LIKE LOWER(?) ESCAPE '\'`

func familyNamePattern(baseName string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(baseName)
	return escaped + " - _"
}

// GormMasterRecordRepository implements MasterRecordRepository using GORM
type GormMasterRecordRepository struct {
	db *gorm.DB
}

// NewGormMasterRecordRepository creates a new GormMasterRecordRepository
func NewGormMasterRecordRepository(db *gorm.DB) *GormMasterRecordRepository {
	return &GormMasterRecordRepository{db: db}
}

// Create inserts a new master record
func (r *GormMasterRecordRepository) Create(ctx context.Context, record *chemical.MasterRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Save persists changes to an existing master record
func (r *GormMasterRecordRepository) Save(ctx context.Context, record *chemical.MasterRecord) error {
	result := r.db.WithContext(ctx).Model(&chemical.MasterRecord{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"chemical_name": record.ChemicalName,
			"quantity":      record.Quantity,
			"batch_id":      record.BatchID,
			"updated_at":    record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a master record by its ID
func (r *GormMasterRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*chemical.MasterRecord, error) {
	var record chemical.MasterRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByIdentity returns the records stored under the base name or a
// suffixed variant of it, with the same vendor and unit. Name and vendor
// comparisons are case-insensitive; the unit must match exactly.
func (r *GormMasterRecordRepository) FindByIdentity(ctx context.Context, baseName, vendor, unit string) ([]*chemical.MasterRecord, error) {
	var rows []*chemical.MasterRecord
	err := r.db.WithContext(ctx).
		Where(familyNameClause, baseName, familyNamePattern(baseName)).
		Where("LOWER(vendor) = LOWER(?)", vendor).
		Where("unit = ?", unit).
		Order("expiry_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// The LIKE prefilter also admits names like "Acetone - 1"; only names
	// that are the base plus a single letter suffix belong to the family.
	probe := chemical.Candidate{Name: baseName, Vendor: vendor, Unit: unit}
	records := make([]*chemical.MasterRecord, 0, len(rows))
	for _, m := range rows {
		if chemical.MatchesIdentity(probe, m) {
			records = append(records, m)
		}
	}
	return records, nil
}

// FindNamesLike returns every stored name equal to the base name or a
// suffixed variant of it, across all vendors and units.
func (r *GormMasterRecordRepository) FindNamesLike(ctx context.Context, baseName string) ([]string, error) {
	var rows []string
	err := r.db.WithContext(ctx).Model(&chemical.MasterRecord{}).
		Where(familyNameClause, baseName, familyNamePattern(baseName)).
		Pluck("chemical_name", &rows).Error
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, name := range rows {
		if strings.EqualFold(name, baseName) {
			names = append(names, name)
			continue
		}
		if _, ok := chemical.SuffixOf(baseName, name); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// FindLatest returns the most recently created master record
func (r *GormMasterRecordRepository) FindLatest(ctx context.Context) (*chemical.MasterRecord, error) {
	var record chemical.MasterRecord
	err := r.db.WithContext(ctx).Order("created_at DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAll returns the whole catalog, newest first
func (r *GormMasterRecordRepository) FindAll(ctx context.Context) ([]*chemical.MasterRecord, error) {
	var records []*chemical.MasterRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindByIDs returns the records matching the given ids
func (r *GormMasterRecordRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*chemical.MasterRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []*chemical.MasterRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

var _ chemical.MasterRecordRepository = (*GormMasterRecordRepository)(nil)
