package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/pcquote/internal/config"
	"github.com/diewo77/pcquote/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

// Models lists every persisted model, in dependency order.
func Models() []any {
	return []any{
		&models.Component{},
		&models.CompanyInfo{},
		&models.Document{},
		&models.DocumentLine{},
	}
}

// Migrate brings the schema up to date. Postgres deployments with migrations
// enabled use the versioned SQL files; everything else uses AutoMigrate.
func Migrate(conn *gorm.DB, cfg *config.Config) error {
	if cfg.Database.Driver == "postgres" && cfg.App.Migrations {
		if err := runSQLMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range Models() {
			if err := conn.AutoMigrate(m); err != nil {
				return fmt.Errorf("automigrate %T: %w", m, err)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"components", "company_info", "documents", "document_lines"} {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// runSQLMigrations applies the embedded postgres migrations.
func runSQLMigrations(url string) error {
	src, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
