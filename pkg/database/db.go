package database

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestUsage represents the request_usage table: one row per mode per day
// counting orchestration traffic and its yield.
type RequestUsage struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Date              string `gorm:"uniqueIndex:idx_date_mode;not null" json:"date"`
	Mode              string `gorm:"uniqueIndex:idx_date_mode;not null" json:"mode"`
	RequestCount      int    `gorm:"default:0" json:"request_count"`
	MatchCount        int    `gorm:"default:0" json:"match_count"`
	NotificationCount int    `gorm:"default:0" json:"notification_count"`
}

// InitDB initializes the database connection and migrates the schema.
// DATABASE_URL selects postgres; otherwise a sqlite file at DATA_PATH.
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "orchestrator.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	db.AutoMigrate(&RequestUsage{})

	return db
}

// RecordUsage upserts one day/mode usage row in a single query (supported
// by both postgres and sqlite).
func RecordUsage(db *gorm.DB, date, mode string, matches, notifications int) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "mode"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":      gorm.Expr("request_count + ?", 1),
			"match_count":        gorm.Expr("match_count + ?", matches),
			"notification_count": gorm.Expr("notification_count + ?", notifications),
		}),
	}).Create(&RequestUsage{
		Date:              date,
		Mode:              mode,
		RequestCount:      1,
		MatchCount:        matches,
		NotificationCount: notifications,
	}).Error
}

// RecentUsage returns the newest usage rows, most recent date first.
func RecentUsage(db *gorm.DB, limit int) ([]RequestUsage, error) {
	var usage []RequestUsage
	err := db.Order("date desc").Limit(limit).Find(&usage).Error
	return usage, err
}
