package migrate

import (
	"context"

	"github.com/vladbogun1/tg-shop-miniapp/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto, uuid-ossp
	CreateChecks           bool // CHECK-constraint для целостности
	CreateIndexes          bool // индексы и UNIQUE
	CreateUpdatedAtTrigger bool // триггер обновления updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateShopDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных магазина")

	// Расширения
	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
			return err
		}
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
			log.Error("Не удалось включить расширение uuid-ossp", zap.Error(err))
			return err
		}
		log.Info("Расширения PostgreSQL успешно созданы")
	}

	// Таблицы
	log.Info("Создание таблиц каталога, заказов и настроек")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.ProductImage{},
		&models.Tag{},
		&models.PromoCode{},
		&models.Order{},
		&models.OrderItem{},
		&models.Setting{},
	); err != nil {
		log.Error("Не удалось создать таблицы", zap.Error(err))
		return err
	}
	log.Info("Таблицы успешно созданы")

	// Триггер updated_at
	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_orders_updated ON orders;
CREATE TRIGGER trg_orders_updated
BEFORE UPDATE ON orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_products_updated ON products;
CREATE TRIGGER trg_products_updated
BEFORE UPDATE ON products
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("Не удалось создать триггеры updated_at", zap.Error(err))
			return err
		}
		log.Info("Триггеры updated_at успешно созданы")
	}

	// CHECK-constraint
	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")

		// Статусы (так как храним TEXT)
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('NEW','APPROVED','REJECTED','SHIPPED'));
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для статусов", zap.Error(err))
			return err
		}

		// Суммы неотрицательные
		if err := db.Exec(`
ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_amounts_non_negative;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_amounts_non_negative
  CHECK (subtotal_minor >= 0 AND discount_minor >= 0 AND total_minor >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для сумм заказа", zap.Error(err))
			return err
		}

		// Количество > 0
		if err := db.Exec(`
ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для order_items.quantity", zap.Error(err))
			return err
		}

		// Остатки неотрицательные
		if err := db.Exec(`
ALTER TABLE products
  DROP CONSTRAINT IF EXISTS chk_products_stock_non_negative;
ALTER TABLE products
  ADD CONSTRAINT chk_products_stock_non_negative
  CHECK (stock >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для products.stock", zap.Error(err))
			return err
		}
		if err := db.Exec(`
ALTER TABLE product_variants
  DROP CONSTRAINT IF EXISTS chk_product_variants_stock_non_negative;
ALTER TABLE product_variants
  ADD CONSTRAINT chk_product_variants_stock_non_negative
  CHECK (stock >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для product_variants.stock", zap.Error(err))
			return err
		}

		// Скидка промокода в допустимых пределах
		if err := db.Exec(`
ALTER TABLE promo_codes
  DROP CONSTRAINT IF EXISTS chk_promo_codes_discount_range;
ALTER TABLE promo_codes
  ADD CONSTRAINT chk_promo_codes_discount_range
  CHECK (discount_percent >= 0 AND discount_percent <= 100 AND discount_amount_minor >= 0);
`).Error; err != nil {
			log.Error("Не удалось создать CHECK для promo_codes", zap.Error(err))
			return err
		}

		log.Info("CHECK-ограничения успешно созданы")
	}

	// Индексы
	if opt.CreateIndexes {
		log.Info("Создание индексов")

		// Заказ по привязке к теме админ-чата
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_admin_thread
ON orders (admin_chat_id, admin_thread_id);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_orders_admin_thread", zap.Error(err))
			return err
		}

		// Заказы пользователя по дате
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_orders_tg_user_created
ON orders (tg_user_id, created_at DESC);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_orders_tg_user_created", zap.Error(err))
			return err
		}

		// Витрина: активные неархивные товары
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_products_active
ON products (active, archived);
`).Error; err != nil {
			log.Error("Не удалось создать индекс ix_products_active", zap.Error(err))
			return err
		}

		log.Info("Индексы успешно созданы")
	}

	log.Info("Миграция базы данных магазина успешно завершена")
	return nil
}
