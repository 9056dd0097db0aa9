package repository

import (
	"context"
	"errors"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductListFilter struct {
	OnlyActive   bool
	OnlyArchived bool
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, f ProductListFilter) ([]*models.Product, error)
	Save(ctx context.Context, p *models.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) (bool, error)
	ReplaceVariants(ctx context.Context, p *models.Product, variants []models.ProductVariant) error
	ReplaceImages(ctx context.Context, p *models.Product, images []models.ProductImage) error
	ReplaceTags(ctx context.Context, p *models.Product, tags []models.Tag) error

	// TryDeductStock: if stock >= qty then stock -= qty (атомарно)
	TryDeductStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	// TryDeductVariantStock: как выше, но для варианта, с пересчётом product.stock
	TryDeductVariantStock(ctx context.Context, productID, variantID uuid.UUID, qty int) (bool, error)
	RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error
	RestoreVariantStock(ctx context.Context, productID, variantID uuid.UUID, qty int) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Tags").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]*models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if f.OnlyArchived {
		q = q.Where("archived = true")
	} else {
		q = q.Where("archived = false")
		if f.OnlyActive {
			q = q.Where("active = true")
		}
	}

	var list []*models.Product
	err := q.Order("created_at DESC").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Tags").
		Find(&list).Error
	return list, err
}

func (r *productRepo) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Omit("Variants", "Images", "Tags").Save(p).Error
}

func (r *productRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("active", active)
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("archived", archived)
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) ReplaceVariants(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", p.ID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	for i := range variants {
		variants[i].ProductID = p.ID
	}
	if len(variants) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&variants).Error
}

func (r *productRepo) ReplaceImages(ctx context.Context, p *models.Product, images []models.ProductImage) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", p.ID).Delete(&models.ProductImage{}).Error; err != nil {
		return err
	}
	for i := range images {
		images[i].ProductID = p.ID
	}
	if len(images) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *productRepo) ReplaceTags(ctx context.Context, p *models.Product, tags []models.Tag) error {
	return r.db.WithContext(ctx).Model(p).Association("Tags").Replace(tags)
}

func (r *productRepo) TryDeductStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	// атомарно: stock -= qty, если хватает
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock = stock - @q,
    updated_at = now()
WHERE id = @pid
  AND stock >= @q
`, map[string]any{
		"pid": productID,
		"q":   qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *productRepo) TryDeductVariantStock(ctx context.Context, productID, variantID uuid.UUID, qty int) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE product_variants
SET stock = stock - @q
WHERE id = @vid
  AND product_id = @pid
  AND stock >= @q
`, map[string]any{
		"pid": productID,
		"vid": variantID,
		"q":   qty,
	})
	if tx.Error != nil || tx.RowsAffected == 0 {
		return false, tx.Error
	}
	return true, r.recomputeStock(ctx, productID)
}

func (r *productRepo) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock = stock + @q,
    updated_at = now()
WHERE id = @pid
`, map[string]any{
		"pid": productID,
		"q":   qty,
	}).Error
}

func (r *productRepo) RestoreVariantStock(ctx context.Context, productID, variantID uuid.UUID, qty int) error {
	if err := r.db.WithContext(ctx).Exec(`
UPDATE product_variants
SET stock = stock + @q
WHERE id = @vid
  AND product_id = @pid
`, map[string]any{
		"pid": productID,
		"vid": variantID,
		"q":   qty,
	}).Error; err != nil {
		return err
	}
	return r.recomputeStock(ctx, productID)
}

// recomputeStock поддерживает инвариант product.stock = sum(variant.stock)
func (r *productRepo) recomputeStock(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
UPDATE products
SET stock = (SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id = @pid),
    updated_at = now()
WHERE id = @pid
`, map[string]any{"pid": productID}).Error
}
