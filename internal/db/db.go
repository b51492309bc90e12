package db

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the analytics store. DATABASE_URL selects Postgres; when it is
// empty, SQLITE_PATH selects a local SQLite file (the format the reference
// dataset ships in). One of the two must be set.
func Connect() {
	dsn := os.Getenv("DATABASE_URL")
	sqlitePath := os.Getenv("SQLITE_PATH")
	if dsn == "" && sqlitePath == "" {
		log.Fatal("DATABASE_URL and SQLITE_PATH are both empty")
	}

	// Verbose logger to surface slow aggregate queries in server logs.
	lg := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             100 * time.Millisecond, // log queries > 100ms
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	var (
		db  *gorm.DB
		err error
	)
	if dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: lg})
	} else {
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{Logger: lg})
	}
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB: ", err)
	}

	// All serving traffic is short read-only aggregates; a small pool is plenty.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	log.Println("Connected to database")
}
