package persistence

import (
	"context"
	"errors"

	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductReader using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// GetProductCategory returns the category of a product, or nil when the
// product has no category. A missing product is shared.ErrNotFound.
func (r *GormProductRepository) GetProductCategory(ctx context.Context, productID uuid.UUID) (*uuid.UUID, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Select("id", "category_id").
		First(&model, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.CategoryID, nil
}
