package repository

import (
	"context"

	"gorm.io/gorm"
)

type Repository struct {
	DB       *gorm.DB
	Products ProductRepo
	Orders   OrderRepo
	Items    OrderItemRepo
	Promos   PromoRepo
	Tags     TagRepo
	Settings SettingRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:       db,
		Products: NewProductRepo(db),
		Orders:   NewOrderRepo(db),
		Items:    NewOrderItemRepo(db),
		Promos:   NewPromoRepo(db),
		Tags:     NewTagRepo(db),
		Settings: NewSettingRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// WithTx выполняет fn в одной транзакции; все репозитории внутри работают на tx.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
