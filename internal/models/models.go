package models

import (
	"time"

	"github.com/google/uuid"
)

// Статус заказа — строковый тип, допустимые значения закрепляем CHECK-ом в миграции
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusApproved OrderStatus = "APPROVED"
	OrderStatusRejected OrderStatus = "REJECTED"
	OrderStatusShipped  OrderStatus = "SHIPPED"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text;not null;default:''"`
	PriceMinor  int64     `gorm:"not null"`
	Currency    string    `gorm:"type:char(3);not null"`
	Stock       int       `gorm:"not null;default:0"` // при наличии вариантов — сумма по вариантам
	Active      bool      `gorm:"not null;default:true;index"`
	Archived    bool      `gorm:"not null;default:false;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Images   []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Tags     []Tag            `gorm:"many2many:product_tags;"`
}

func (Product) TableName() string { return "products" }

func (p *Product) HasVariants() bool { return len(p.Variants) > 0 }

// FindVariant ищет вариант по id среди загруженных вариантов товара.
func (p *Product) FindVariant(id uuid.UUID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// RecomputeStock пересчитывает общий остаток как сумму по вариантам.
func (p *Product) RecomputeStock() {
	if !p.HasVariants() {
		return
	}
	total := 0
	for i := range p.Variants {
		total += p.Variants[i].Stock
	}
	p.Stock = total
}

type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:text;not null"`
	Stock     int       `gorm:"not null;default:0"`
	SortOrder int       `gorm:"not null;default:0"`
}

func (ProductVariant) TableName() string { return "product_variants" }

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"type:text;not null"`
	SortOrder int       `gorm:"not null;default:0"`
}

func (ProductImage) TableName() string { return "product_images" }

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:text;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }

type PromoCode struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code                string    `gorm:"type:text;not null;uniqueIndex"` // нормализован: trim + upper
	DiscountPercent     int       `gorm:"not null;default:0"`
	DiscountAmountMinor int64     `gorm:"not null;default:0"`
	MaxUses             *int      `gorm:"type:int"`
	UsesCount           int       `gorm:"not null;default:0"`
	Active              bool      `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (PromoCode) TableName() string { return "promo_codes" }

type Order struct {
	ID            uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Status        OrderStatus `gorm:"type:text;not null;default:'NEW';index"`
	SubtotalMinor int64       `gorm:"not null;default:0"`
	DiscountMinor int64       `gorm:"not null;default:0"`
	TotalMinor    int64       `gorm:"not null;default:0"`
	Currency      string      `gorm:"type:char(3);not null"`

	CustomerName string `gorm:"type:text;not null"`
	Phone        string `gorm:"type:text;not null"`
	Address      string `gorm:"type:text;not null"`
	Comment      string `gorm:"type:text;not null;default:''"`

	TgUserID   int64  `gorm:"not null;index"`
	TgUsername string `gorm:"type:text;not null;default:''"`

	TrackingNumber *string `gorm:"type:text"`
	PromoCode      *string `gorm:"type:text"`

	// Привязка к теме (forum topic) в админ-чате
	AdminChatID          *int64 `gorm:"index:ix_orders_admin_thread"`
	AdminThreadID        *int   `gorm:"index:ix_orders_admin_thread"`
	AdminThreadMessageID *int

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"` // каскад на позиции
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"type:uuid"`

	// Снапшоты каталога на момент оформления, дальнейшие правки товара их не меняют
	TitleSnapshot       string  `gorm:"type:text;not null"`
	VariantNameSnapshot *string `gorm:"type:text"`
	PriceMinorSnapshot  int64   `gorm:"not null"`
	Quantity            int     `gorm:"type:int;not null"` // CHECK добавим в миграции

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

// Setting — key/value настройки (ADMIN_CHAT_ID, шаблон оплаты и т.д.)
type Setting struct {
	Key   string `gorm:"type:text;primaryKey"`
	Value string `gorm:"type:text;not null"`
}

func (Setting) TableName() string { return "settings" }
