package repository

import (
	"context"

	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/filter"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]*entity.Product, error) {
	products := make([]*entity.Product, 0)
	if err := r.db.WithContext(ctx).Order("created_at").Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}
	return products, nil
}

// FindByID returns nil, nil when the product does not exist.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product by ID")
	}
	return &product, nil
}

func (r *ProductRepository) FindFiltered(ctx context.Context, q *filter.Query) ([]*entity.Product, error) {
	products := make([]*entity.Product, 0)
	tx := filter.Apply(r.db.WithContext(ctx).Model(&entity.Product{}), q)
	if err := tx.Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "failed to filter products")
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return errors.Wrap(err, "failed to create product")
	}
	return nil
}

// Update writes every mutable column. Creator and creation date never change.
func (r *ProductRepository) Update(ctx context.Context, product *entity.Product) error {
	err := r.db.WithContext(ctx).
		Model(&entity.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":         product.Name,
			"description":  product.Description,
			"price":        product.Price,
			"is_available": product.IsAvailable,
		}).Error
	if err != nil {
		return errors.Wrap(err, "failed to update product")
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Product{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	return nil
}

// DeleteByCreator removes every product created by creatorID and reports how
// many rows went away.
func (r *ProductRepository) DeleteByCreator(ctx context.Context, creatorID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).Delete(&entity.Product{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete user products")
	}
	return result.RowsAffected, nil
}
