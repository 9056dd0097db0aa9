package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type catalogService struct {
	store Store
	repo  *repository.Repository
	cache CatalogInvalidator
	log   *zap.Logger
}

func NewCatalogService(store Store, repo *repository.Repository, cache CatalogInvalidator, log *zap.Logger) CatalogService {
	return &catalogService{
		store: store,
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *catalogService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateCatalog(ctx)
	}
}

func (s *catalogService) ListProducts(ctx context.Context, onlyActive bool) ([]*models.Product, error) {
	return s.repo.Products.List(ctx, repository.ProductListFilter{OnlyActive: onlyActive})
}

func (s *catalogService) SoldCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return s.repo.Items.SoldCounts(ctx)
}

func (s *catalogService) ListArchivedProducts(ctx context.Context) ([]*models.Product, error) {
	return s.repo.Products.List(ctx, repository.ProductListFilter{OnlyArchived: true})
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var created *models.Product

	err := s.store.WithTx(ctx, func(tx *repository.Repository) error {
		p := &models.Product{
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			PriceMinor:  in.PriceMinor,
			Currency:    currencyUAH,
			Stock:       in.Stock,
			Active:      in.Active,
		}
		if err := tx.Products.Create(ctx, p); err != nil {
			return err
		}
		if err := s.applyProductRelations(ctx, tx, p, in); err != nil {
			return err
		}

		loaded, err := tx.Products.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Товар создан", zap.String("productId", created.ID.String()), zap.String("title", created.Title))
	s.invalidate(ctx)
	return created, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	var updated *models.Product

	err := s.store.WithTx(ctx, func(tx *repository.Repository) error {
		p, err := tx.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}

		p.Title = strings.TrimSpace(in.Title)
		p.Description = in.Description
		p.PriceMinor = in.PriceMinor
		p.Active = in.Active
		p.Stock = in.Stock
		if err := tx.Products.Save(ctx, p); err != nil {
			return err
		}
		if err := s.applyProductRelations(ctx, tx, p, in); err != nil {
			return err
		}

		loaded, err := tx.Products.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		updated = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Товар обновлён", zap.String("productId", id.String()))
	s.invalidate(ctx)
	return updated, nil
}

// applyProductRelations перезаписывает варианты, изображения и теги товара.
// При наличии вариантов общий остаток пересчитывается как сумма по ним.
func (s *catalogService) applyProductRelations(ctx context.Context, tx *repository.Repository, p *models.Product, in ProductInput) error {
	variants := make([]models.ProductVariant, 0, len(in.Variants))
	for i, v := range in.Variants {
		variants = append(variants, models.ProductVariant{
			Name:      strings.TrimSpace(v.Name),
			Stock:     v.Stock,
			SortOrder: v.SortOrder,
		})
		if variants[i].SortOrder == 0 {
			variants[i].SortOrder = i
		}
	}
	if err := tx.Products.ReplaceVariants(ctx, p, variants); err != nil {
		return err
	}
	if len(variants) > 0 {
		total := 0
		for _, v := range variants {
			total += v.Stock
		}
		p.Stock = total
		if err := tx.Products.Save(ctx, p); err != nil {
			return err
		}
	}

	images := make([]models.ProductImage, 0, len(in.Images))
	for i, url := range in.Images {
		images = append(images, models.ProductImage{URL: url, SortOrder: i})
	}
	if err := tx.Products.ReplaceImages(ctx, p, images); err != nil {
		return err
	}

	tags := make([]models.Tag, 0, len(in.TagNames))
	for _, name := range in.TagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		existing, err := tx.Tags.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing == nil {
			existing = &models.Tag{Name: name}
			if err := tx.Tags.Create(ctx, existing); err != nil {
				return err
			}
		}
		tags = append(tags, *existing)
	}
	return tx.Products.ReplaceTags(ctx, p, tags)
}

func (s *catalogService) SetProductActive(ctx context.Context, id uuid.UUID, active bool) error {
	ok, err := s.repo.Products.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) SetProductArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	ok, err := s.repo.Products.SetArchived(ctx, id, archived)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) ListTags(ctx context.Context) ([]*models.Tag, error) {
	return s.repo.Tags.List(ctx)
}

func (s *catalogService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	existing, err := s.repo.Tags.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrTagAlreadyExists, name)
	}

	t := &models.Tag{Name: name}
	if err := s.repo.Tags.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *catalogService) RenameTag(ctx context.Context, id uuid.UUID, name string) error {
	ok, err := s.repo.Tags.Rename(ctx, id, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTagNotFound, id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Tags.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrTagNotFound, id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *catalogService) ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error) {
	return s.repo.Promos.List(ctx)
}

func (s *catalogService) CreatePromoCode(ctx context.Context, in PromoInput) (*models.PromoCode, error) {
	code := NormalizePromoCode(in.Code)
	existing, err := s.repo.Promos.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrPromoCodeAlreadyExists, code)
	}

	p := &models.PromoCode{
		Code:                code,
		DiscountPercent:     in.DiscountPercent,
		DiscountAmountMinor: in.DiscountAmountMinor,
		MaxUses:             in.MaxUses,
		Active:              in.Active,
	}
	if err := s.repo.Promos.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("Промокод создан", zap.String("code", code))
	return p, nil
}

func (s *catalogService) UpdatePromoCode(ctx context.Context, id uuid.UUID, in PromoInput) (*models.PromoCode, error) {
	p, err := s.repo.Promos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPromoNotFound, id)
	}

	if in.Code != "" {
		p.Code = NormalizePromoCode(in.Code)
	}
	p.DiscountPercent = in.DiscountPercent
	p.DiscountAmountMinor = in.DiscountAmountMinor
	p.MaxUses = in.MaxUses
	p.Active = in.Active

	if err := s.repo.Promos.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) DeletePromoCode(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Promos.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrPromoNotFound, id)
	}
	return nil
}

func (s *catalogService) GetPaymentTemplate(ctx context.Context) (string, error) {
	val, found, err := s.repo.Settings.Get(ctx, PaymentTemplateKey)
	if err != nil {
		return "", err
	}
	if !found {
		return DefaultPaymentTemplate(), nil
	}
	return val, nil
}

func (s *catalogService) SetPaymentTemplate(ctx context.Context, html string) error {
	return s.repo.Settings.Put(ctx, PaymentTemplateKey, html)
}
