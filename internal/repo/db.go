package repo

import (
	"ModPlanner/internal/model"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// InitDB открывает БД по DSN и выполняет миграции.
// postgres:// , postgresql:// и key=value DSN с host= — PostgreSQL, всё остальное — путь к SQLite (modernc).
func InitDB(dsn string) (*gorm.DB, error) {
	gcfg := NewGormConfig(logger.Warn)

	var (
		db  *gorm.DB
		err error
	)
	if isPostgresDSN(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), gcfg)
	} else {
		db, err = gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: sqliteDSN(dsn)}, gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// SQLite допускает одного писателя: одно соединение сериализует транзакции
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// NewGormConfig — общие настройки gorm. Время пишется в UTC: SQLite сравнивает
// даты как текст, и значения с разными смещениями сравнивались бы неверно.
func NewGormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// Migrate создаёт/обновляет таблицы всех моделей ядра.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.GlobalPart{},
		&model.BuildList{},
		&model.BuildListPart{},
		&model.Vote{},
		&model.Report{},
	)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") || strings.Contains(dsn, "mode=memory") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return "file:" + strings.TrimPrefix(dsn, "file:") + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
}
