package db

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/models"
)

const DefaultDbPath = "devices.db"

type DB struct {
	Conn *gorm.DB
}

// New opens a connection and migrates the schema. Every call returns an
// independent handle; callers own its lifetime.
func New(dialector gorm.Dialector) (*DB, error) {
	logger := common.GetLoggerWith(common.LoggerNameStore)

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time
	sqlDB.SetMaxOpenConns(1)

	instance := &DB{Conn: conn}

	if err := instance.Conn.AutoMigrate(&models.DeviceRecord{}, &models.CatalogRevision{}, &models.Alert{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migration completed")

	if err := instance.Conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable sqlite foreign key support: %w", err)
	}

	if err := instance.Conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, fmt.Errorf("failed to set sqlite journal mode: %w", err)
	}

	return instance, nil
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func UseSqliteDialector() gorm.Dialector {
	var dbPath string
	var found bool
	if dbPath, found = os.LookupEnv(common.EnvKeyIOTDbPath); !found {
		dbPath = DefaultDbPath
	}
	return sqlite.Open(dbPath)
}

// UseMemorySqliteDialector names each in-memory database so handles opened by
// different callers never share tables.
func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}
