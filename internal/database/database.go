package database

import (
	"fmt"
	"strings"

	"github.com/pathakanu/muditam/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every persisted type, in migration order.
var Models = []any{
	&model.User{},
	&model.Reminder{},
	&model.Quiz{},
	&model.Cart{},
}

// New creates a GORM database connection.
// When databaseURL is provided PostgreSQL is used, otherwise SQLite at sqlitePath.
func New(databaseURL, sqlitePath string, log *zap.SugaredLogger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), gormConfig)
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logBackend(db, sqlitePath, log)
	return db, nil
}

// Migrate creates or updates the tables of all models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("database: migrate: %w", err)
	}
	return nil
}

func logBackend(db *gorm.DB, sqlitePath string, log *zap.SugaredLogger) {
	dialector := db.Dialector.Name()
	switch strings.ToLower(dialector) {
	case "postgres":
		log.Infow("database connected", "backend", "postgres")
	case "sqlite":
		log.Infow("database connected", "backend", "sqlite", "path", sqlitePath)
	default:
		log.Infow("database connected", "backend", dialector)
	}
}
