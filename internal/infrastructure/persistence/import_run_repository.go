package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lpcheniris/shopify-demo/internal/domain/bulk"
	"github.com/lpcheniris/shopify-demo/internal/domain/shared"
	"github.com/lpcheniris/shopify-demo/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultRecentLimit bounds FindRecent when no limit is given
const defaultRecentLimit = 20

// GormImportRunRepository implements ImportRunRepository using GORM
type GormImportRunRepository struct {
	db *gorm.DB
}

// NewGormImportRunRepository creates a new GormImportRunRepository
func NewGormImportRunRepository(db *gorm.DB) *GormImportRunRepository {
	return &GormImportRunRepository{db: db}
}

// FindByID finds an import run by ID with its items in position order
func (r *GormImportRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportRun, error) {
	var model models.ImportRunModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRecent returns runs without their items, newest first unless the
// filter names another order
func (r *GormImportRunRepository) FindRecent(ctx context.Context, filter bulk.ImportRunFilter) ([]*bulk.ImportRun, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportRunModel{})

	if filter.Shop != "" {
		query = query.Where("shop = ?", filter.Shop)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var runModels []models.ImportRunModel
	if err := query.Order(orderClause(filter.SortBy, filter.SortOrder, ImportRunSortFields, "created_at")).Limit(limit).Find(&runModels).Error; err != nil {
		return nil, err
	}

	runs := make([]*bulk.ImportRun, len(runModels))
	for i := range runModels {
		runs[i] = runModels[i].ToDomain()
	}
	return runs, nil
}

// itemBatchSize keeps each item insert under the PostgreSQL bind parameter limit
const itemBatchSize = 500

// Save saves an import run and upserts its items in one transaction
func (r *GormImportRunRepository) Save(ctx context.Context, run *bulk.ImportRun) error {
	model, err := models.ImportRunModelFromDomain(run)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil

		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&items, itemBatchSize).Error
	})
}

var _ bulk.ImportRunRepository = (*GormImportRunRepository)(nil)
