package infra

import (
	"fmt"

	"github.com/KevinGarciaLuque/inventario-nuevo-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes, CHECK constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates all tables and applies the schema patches.
// Also used by integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Producto{},
		&model.MovimientoStock{},
		&model.Usuario{},
		&model.SesionCaja{},
		&model.MovimientoCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.VentaPago{},
		&model.CAI{},
		&model.Factura{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that backstops the invariants the
// application enforces in its transactions:
//   - at most one open cash session per operator
//   - at most one active CAI
//   - stock never negative
//
// Each statement uses IF NOT EXISTS guards so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"one open session per operator", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_sesion_abierta_por_usuario') THEN
    CREATE UNIQUE INDEX uq_sesion_abierta_por_usuario
        ON sesiones_caja (usuario_id)
        WHERE estado = 'abierta';
  END IF;
END $$`},
		{"single active CAI", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uq_cai_activo') THEN
    CREATE UNIQUE INDEX uq_cai_activo
        ON cais (activo)
        WHERE activo = true;
  END IF;
END $$`},
		{"non-negative stock", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_no_negativo') THEN
    ALTER TABLE productos
      ADD CONSTRAINT chk_stock_no_negativo CHECK (stock_actual >= 0);
  END IF;
END $$`},
		{"correlative inside authorized range", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_cai_correlativo_en_rango') THEN
    ALTER TABLE cais
      ADD CONSTRAINT chk_cai_correlativo_en_rango
      CHECK (correlativo >= rango_inicio - 1 AND correlativo <= rango_fin);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
