package database

import (
	"creditbank/config"
	"creditbank/migrations"
	"creditbank/models"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Database представляет подключение к базе данных
type Database struct {
	DB     *gorm.DB
	Driver string
}

// SQLDriverName возвращает имя database/sql драйвера, под которым открыто соединение.
// Нужно sqlx для выбора формата плейсхолдеров.
func (d *Database) SQLDriverName() string {
	if d.Driver == DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Connect устанавливает соединение с базой данных и выполняет миграции
func Connect(cfg *config.Config) (*Database, error) {
	// Настраиваем логгер
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gormCfg := &gorm.Config{
		Logger:  newLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DB.Path + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("неизвестный драйвер базы данных: %q", cfg.DB.Driver)
	}

	// Устанавливаем соединение
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Настраиваем пул соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула соединений: %w", err)
	}

	if cfg.DB.Driver == DriverSQLite {
		// sqlite не допускает конкурентной записи
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	database := &Database{DB: db, Driver: cfg.DB.Driver}

	if cfg.DB.Driver == DriverPostgres {
		// Выполняем SQL миграции
		if err := runMigrations(cfg); err != nil {
			return nil, fmt.Errorf("ошибка выполнения SQL миграций: %w", err)
		}
		return database, nil
	}

	// Выполняем автоматическую миграцию моделей
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("ошибка автоматической миграции моделей: %w", err)
	}

	return database, nil
}

// NewInMemory открывает чистую базу sqlite в памяти со всеми таблицами.
// Используется в тестах и для локального запуска без postgres.
func NewInMemory() (*Database, error) {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы в памяти: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Каждое новое соединение к :memory: получает свою пустую базу
	sqlDB.SetMaxOpenConns(1)

	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &Database{DB: db, Driver: DriverSQLite}, nil
}

// runMigrations выполняет SQL миграции
func runMigrations(cfg *config.Config) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("ошибка чтения миграций: %w", err)
	}

	// Создаем экземпляр миграции
	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("ошибка создания миграции: %w", err)
	}
	defer m.Close()

	// Выполняем миграции
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	return nil
}

// autoMigrate выполняет автоматическую миграцию моделей
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.CreditProduct{},
		&models.CreditApplication{},
	)
	if err != nil {
		return fmt.Errorf("ошибка автоматической миграции: %w", err)
	}

	return nil
}
