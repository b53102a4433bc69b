package infra

import (
	"fmt"
	"time"

	"printscrap/internal/config"
	"printscrap/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection pool backed by pgx. The returned
// handle is the only pool in the process; it is built once in cmd/server and
// injected into every repository.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Surface unique / FK violations as gorm.ErrDuplicatedKey / ErrForeignKeyViolated.
		TranslateError: true,
		// Timestamps are stored in UTC; the business timezone applies only to
		// invoice dates and report boundaries.
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)

	return db, nil
}

// Migrate creates / updates all tables, then applies the idempotent patches
// GORM cannot express. Patches are Postgres-only and skipped on other dialects
// (the SQLite databases used by unit tests).
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs DDL guarded by existence checks so re-running on an
// already-patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Last line of defence for the ledger invariant; the outflow UPDATE
		// already refuses to oversell.
		{"stock available non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_available_non_negative') THEN
    ALTER TABLE stock ADD CONSTRAINT chk_stock_available_non_negative CHECK (available_stock >= 0);
  END IF;
END $$`},
		{"scrap entries positive quantity", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_scrap_entries_quantity_positive') THEN
    ALTER TABLE scrap_entries ADD CONSTRAINT chk_scrap_entries_quantity_positive CHECK (quantity > 0);
  END IF;
END $$`},
		{"sale items positive quantity", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sale_items_quantity_positive') THEN
    ALTER TABLE sale_items ADD CONSTRAINT chk_sale_items_quantity_positive CHECK (quantity > 0);
  END IF;
END $$`},
		// One pending request per client; approve/reject moves the row out of the index.
		{"plan requests single pending", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_plan_requests_one_pending
    ON plan_activation_requests (user_id) WHERE status = 'pending'`},
		{"scrap entries tenant timeline", `
CREATE INDEX IF NOT EXISTS idx_scrap_entries_tenant_created
    ON scrap_entries (created_by, created_at DESC)`},
		{"categories tenant name", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_tenant_name
    ON categories (created_by, lower(name))`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
