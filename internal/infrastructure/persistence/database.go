package persistence

import (
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/infrastructure/config"
	"github.com/delivery/storefront/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the database connection backing the session, cart and
// checkout tables
type Database struct {
	DB     *gorm.DB
	driver string
}

// NewDatabase opens a connection for the given store driver (postgres or sqlite)
func NewDatabase(cfg *config.DatabaseConfig, driver string) (*Database, error) {
	return NewDatabaseWithLogger(cfg, driver, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithLogger opens a connection that logs SQL through gormLog
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, driver string, gormLog logger.Interface) (*Database, error) {
	return open(cfg, driver, gormLog)
}

func dialectorFor(cfg *config.DatabaseConfig, driver string) (gorm.Dialector, error) {
	switch driver {
	case config.StorePostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.StoreSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func open(cfg *config.DatabaseConfig, driver string, gormLog logger.Interface) (*Database, error) {
	dialector, err := dialectorFor(cfg, driver)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == config.StoreSQLite {
		// SQLite serializes writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, driver: driver}, nil
}

// Driver returns the store driver the connection was opened for
func (d *Database) Driver() string {
	return d.driver
}

// Migrate creates or updates the storefront tables
func (d *Database) Migrate() error {
	if err := d.DB.AutoMigrate(&models.SessionModel{}, &models.CartModel{}, &models.CheckoutLockModel{}); err != nil {
		return fmt.Errorf("failed to migrate storefront tables: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
