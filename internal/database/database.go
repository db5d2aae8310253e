package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"example.com/outcry/config"
	"example.com/outcry/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DB is an interface for database operations
type DB interface {
	DB() (*gorm.DB, error)
	Ping(ctx context.Context) error
	Close() error
}

// GormDatabase implements the DB interface for GORM
type GormDatabase struct {
	db *gorm.DB
}

// Connect establishes a connection to the configured database
func Connect(cfg config.DatabaseConfig) (DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.Path + "?_pragma=busy_timeout(5000)")
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   newGormLogger(log.Logger, cfg.LogLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get DB instance")
	}

	if cfg.Driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY between pooled connections
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &GormDatabase{db: db}, nil
}

// DB returns the underlying gorm.DB instance
func (d *GormDatabase) DB() (*gorm.DB, error) {
	return d.db, nil
}

// Ping checks that the database answers
func (d *GormDatabase) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *GormDatabase) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AllModels lists every persisted table in migration order
func AllModels() []interface{} {
	return []interface{}{
		&models.ProductCategory{},
		&models.MeasureType{},
		&models.Product{},
		&models.ProductVariable{},
		&models.VariableOption{},
		&models.ProductProductVariable{},
		&models.Client{},
		&models.Contact{},
		&models.Billing{},
		&models.Staff{},
		&models.Project{},
		&models.JobStatus{},
		&models.Job{},
		&models.JobStatusHistory{},
		&models.Quote{},
		&models.Item{},
		&models.ItemVariable{},
		&models.ItemVariableOption{},
		&models.ThroughputStage{},
		&models.ThroughputStatus{},
		&models.ThroughputTask{},
		&models.ThroughputStageDate{},
		&models.Address{},
		&models.Booking{},
		&models.Attachment{},
	}
}

// AutoMigrate creates or updates every table. Foreign keys stay unenforced at the
// database level; the service checks references before writing.
func AutoMigrate(db DB) error {
	gormDB, err := db.DB()
	if err != nil {
		return err
	}

	gormDB.DisableForeignKeyConstraintWhenMigrating = true
	if err := gormDB.AutoMigrate(AllModels()...); err != nil {
		return errors.Wrap(err, "failed to migrate table structures")
	}
	return nil
}

// SeedLookups inserts the fixed lookup rows the workflow depends on. Existing rows are kept.
func SeedLookups(db DB) error {
	gormDB, err := db.DB()
	if err != nil {
		return err
	}

	jobStatuses := models.DefaultJobStatuses()
	stages := models.DefaultStages()
	taskStatuses := models.DefaultTaskStatuses()
	measureTypes := models.DefaultMeasureTypes()

	return gormDB.Transaction(func(tx *gorm.DB) error {
		seeds := []struct {
			table  string
			column string
			rows   interface{}
		}{
			{"job_statuses", "job_status_id", &jobStatuses},
			{"throughput_stages", "stage_id", &stages},
			{"throughput_statuses", "status_id", &taskStatuses},
			{"measure_types", "measure_type_id", &measureTypes},
		}

		for _, seed := range seeds {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed.rows).Error; err != nil {
				return errors.Wrapf(err, "failed to seed %s", seed.table)
			}
			if tx.Dialector.Name() == "postgres" {
				// explicit ids leave the serial sequence behind
				stmt := fmt.Sprintf(
					"SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE((SELECT MAX(%s) FROM %s), 1))",
					seed.table, seed.column, seed.column, seed.table,
				)
				if err := tx.Exec(stmt).Error; err != nil {
					return errors.Wrapf(err, "failed to realign sequence for %s", seed.table)
				}
			}
		}
		return nil
	})
}

type gormLogWriter struct {
	log zerolog.Logger
}

func (w gormLogWriter) Printf(format string, args ...interface{}) {
	w.log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func newGormLogger(l zerolog.Logger, level string) logger.Interface {
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info", "debug":
		lvl = logger.Info
	}

	return logger.New(gormLogWriter{log: l.With().Str("component", "gorm").Logger()}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
