package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"
	"github.com/vladbogun1/tg-shop-miniapp/internal/repository"
	"github.com/vladbogun1/tg-shop-miniapp/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockTagRepo
type MockTagRepo struct {
	CreateFunc    func(ctx context.Context, t *models.Tag) error
	GetByIDFunc   func(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	GetByNameFunc func(ctx context.Context, name string) (*models.Tag, error)
	ListFunc      func(ctx context.Context) ([]*models.Tag, error)
	RenameFunc    func(ctx context.Context, id uuid.UUID, name string) (bool, error)
	DeleteFunc    func(ctx context.Context, id uuid.UUID) (bool, error)
}

func (m *MockTagRepo) Create(ctx context.Context, t *models.Tag) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	t.ID = uuid.New()
	return nil
}

func (m *MockTagRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTagRepo) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	if m.GetByNameFunc != nil {
		return m.GetByNameFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockTagRepo) List(ctx context.Context) ([]*models.Tag, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockTagRepo) Rename(ctx context.Context, id uuid.UUID, name string) (bool, error) {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, id, name)
	}
	return true, nil
}

func (m *MockTagRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return true, nil
}

// MockSettingRepo
type MockSettingRepo struct {
	GetFunc func(ctx context.Context, key string) (string, bool, error)
	PutFunc func(ctx context.Context, key, value string) error
}

func (m *MockSettingRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", false, nil
}

func (m *MockSettingRepo) Put(ctx context.Context, key, value string) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value)
	}
	return nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidateCatalog(ctx context.Context) { m.calls++ }

type catalogDeps struct {
	products    *MockProductRepo
	tags        *MockTagRepo
	promos      *MockPromoRepo
	settings    *MockSettingRepo
	invalidator *mockInvalidator
}

func newCatalogService(d *catalogDeps) service.CatalogService {
	repo := &repository.Repository{
		Products: d.products,
		Tags:     d.tags,
		Promos:   d.promos,
		Settings: d.settings,
	}
	return service.NewCatalogService(&mockStore{repo: repo}, repo, d.invalidator, zap.NewNop())
}

func defaultCatalogDeps() *catalogDeps {
	return &catalogDeps{
		products:    &MockProductRepo{},
		tags:        &MockTagRepo{},
		promos:      &MockPromoRepo{},
		settings:    &MockSettingRepo{},
		invalidator: &mockInvalidator{},
	}
}

func TestCreateProduct_VariantsDriveStock(t *testing.T) {
	d := defaultCatalogDeps()

	var created *models.Product
	d.products.CreateFunc = func(ctx context.Context, p *models.Product) error {
		p.ID = uuid.New()
		created = p
		return nil
	}
	var savedStock int
	d.products.SaveFunc = func(ctx context.Context, p *models.Product) error {
		savedStock = p.Stock
		return nil
	}
	var replacedVariants []models.ProductVariant
	d.products.ReplaceVariantsFunc = func(ctx context.Context, p *models.Product, variants []models.ProductVariant) error {
		replacedVariants = variants
		return nil
	}
	d.products.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return created, nil
	}

	svc := newCatalogService(d)
	_, err := svc.CreateProduct(context.Background(), service.ProductInput{
		Title:      "  Кружка  ",
		PriceMinor: 1500,
		Stock:      99, // игнорируется при наличии вариантов
		Active:     true,
		Variants: []service.VariantInput{
			{Name: "Белая", Stock: 3},
			{Name: "Чёрная", Stock: 4},
		},
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if created.Title != "Кружка" {
		t.Fatalf("title not trimmed: %q", created.Title)
	}
	if created.Currency != "UAH" {
		t.Fatalf("currency expected UAH got %s", created.Currency)
	}
	if len(replacedVariants) != 2 {
		t.Fatalf("variants not replaced: %v", replacedVariants)
	}
	if savedStock != 7 {
		t.Fatalf("stock expected 7 (sum of variants) got %d", savedStock)
	}
	if d.invalidator.calls != 1 {
		t.Fatalf("cache invalidation expected once got %d", d.invalidator.calls)
	}
}

func TestCreateProduct_TagsGetOrCreate(t *testing.T) {
	d := defaultCatalogDeps()

	existing := &models.Tag{ID: uuid.New(), Name: "лето"}
	d.tags.GetByNameFunc = func(ctx context.Context, name string) (*models.Tag, error) {
		if name == "лето" {
			return existing, nil
		}
		return nil, nil
	}
	var createdTags []string
	d.tags.CreateFunc = func(ctx context.Context, tag *models.Tag) error {
		tag.ID = uuid.New()
		createdTags = append(createdTags, tag.Name)
		return nil
	}
	var attached []models.Tag
	d.products.ReplaceTagsFunc = func(ctx context.Context, p *models.Product, tags []models.Tag) error {
		attached = tags
		return nil
	}
	d.products.CreateFunc = func(ctx context.Context, p *models.Product) error {
		p.ID = uuid.New()
		return nil
	}
	d.products.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Product, error) {
		return &models.Product{ID: id}, nil
	}

	svc := newCatalogService(d)
	_, err := svc.CreateProduct(context.Background(), service.ProductInput{
		Title:    "Футболка",
		TagNames: []string{"лето", " новинка ", ""},
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if len(createdTags) != 1 || createdTags[0] != "новинка" {
		t.Fatalf("expected only 'новинка' created, got %v", createdTags)
	}
	if len(attached) != 2 {
		t.Fatalf("expected 2 tags attached, got %v", attached)
	}
}

func TestCreateTag_Duplicate(t *testing.T) {
	d := defaultCatalogDeps()
	d.tags.GetByNameFunc = func(ctx context.Context, name string) (*models.Tag, error) {
		return &models.Tag{ID: uuid.New(), Name: name}, nil
	}

	svc := newCatalogService(d)
	_, err := svc.CreateTag(context.Background(), "лето")
	if !errors.Is(err, service.ErrTagAlreadyExists) {
		t.Fatalf("expected ErrTagAlreadyExists got %v", err)
	}
}

func TestCreatePromoCode_NormalizedAndUnique(t *testing.T) {
	d := defaultCatalogDeps()

	var requested string
	d.promos.GetByCodeFunc = func(ctx context.Context, code string) (*models.PromoCode, error) {
		requested = code
		return nil, nil
	}
	var created *models.PromoCode
	d.promos.CreateFunc = func(ctx context.Context, p *models.PromoCode) error {
		p.ID = uuid.New()
		created = p
		return nil
	}

	svc := newCatalogService(d)
	_, err := svc.CreatePromoCode(context.Background(), service.PromoInput{
		Code:            "  sale5 ",
		DiscountPercent: 5,
		Active:          true,
	})
	if err != nil {
		t.Fatalf("CreatePromoCode: %v", err)
	}
	if requested != "SALE5" || created.Code != "SALE5" {
		t.Fatalf("code not normalized: requested=%q created=%q", requested, created.Code)
	}

	d.promos.GetByCodeFunc = func(ctx context.Context, code string) (*models.PromoCode, error) {
		return created, nil
	}
	_, err = svc.CreatePromoCode(context.Background(), service.PromoInput{Code: "SALE5"})
	if !errors.Is(err, service.ErrPromoCodeAlreadyExists) {
		t.Fatalf("expected ErrPromoCodeAlreadyExists got %v", err)
	}
}

func TestGetPaymentTemplate_DefaultFallback(t *testing.T) {
	d := defaultCatalogDeps()
	svc := newCatalogService(d)

	html, err := svc.GetPaymentTemplate(context.Background())
	if err != nil {
		t.Fatalf("GetPaymentTemplate: %v", err)
	}
	if html != service.DefaultPaymentTemplate() {
		t.Fatalf("expected default template fallback")
	}
	if !strings.Contains(html, "Реквизиты для оплаты") {
		t.Fatalf("default template content unexpected: %q", html)
	}

	d.settings.GetFunc = func(ctx context.Context, key string) (string, bool, error) {
		if key != service.PaymentTemplateKey {
			t.Fatalf("unexpected setting key %q", key)
		}
		return "<b>custom</b>", true, nil
	}
	html, err = svc.GetPaymentTemplate(context.Background())
	if err != nil || html != "<b>custom</b>" {
		t.Fatalf("stored template not returned: %q %v", html, err)
	}
}
