package database

import (
	"fmt"
	"io"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/smartlaw/crm-backend/pkg/config"
)

// Init opens the backing database. A Postgres DSN takes priority; without
// one the service persists to a local SQLite file, which matches the
// single-tenant deployment this CRM is built for.
func Init(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.DSN != "" {
		dialector = postgres.Open(cfg.DSN)
	} else {
		dialector = sqlite.Open(cfg.Path)
	}

	silent := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: silent})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}
