package service

import (
	"context"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"github.com/google/uuid"
)

type VariantInput struct {
	Name      string
	Stock     int
	SortOrder int
}

type ProductInput struct {
	Title       string
	Description string
	PriceMinor  int64
	Stock       int
	Active      bool
	Images      []string
	TagNames    []string
	Variants    []VariantInput
}

type PromoInput struct {
	Code                string
	DiscountPercent     int
	DiscountAmountMinor int64
	MaxUses             *int
	Active              bool
}

type CatalogService interface {
	ListProducts(ctx context.Context, onlyActive bool) ([]*models.Product, error)
	// SoldCounts — количество проданных единиц по товарам (для витрины и админки)
	SoldCounts(ctx context.Context) (map[uuid.UUID]int64, error)
	ListArchivedProducts(ctx context.Context) ([]*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error)
	SetProductActive(ctx context.Context, id uuid.UUID, active bool) error
	SetProductArchived(ctx context.Context, id uuid.UUID, archived bool) error

	ListTags(ctx context.Context) ([]*models.Tag, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	RenameTag(ctx context.Context, id uuid.UUID, name string) error
	DeleteTag(ctx context.Context, id uuid.UUID) error

	ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error)
	CreatePromoCode(ctx context.Context, in PromoInput) (*models.PromoCode, error)
	UpdatePromoCode(ctx context.Context, id uuid.UUID, in PromoInput) (*models.PromoCode, error)
	DeletePromoCode(ctx context.Context, id uuid.UUID) error

	GetPaymentTemplate(ctx context.Context) (string, error)
	SetPaymentTemplate(ctx context.Context, html string) error
}

// CatalogInvalidator сбрасывает кэш витрины после админских правок каталога.
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}
