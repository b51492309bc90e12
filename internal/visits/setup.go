package visits

import (
	"log"

	"github.com/parkpulse/nps-backend/internal/db"
)

func Init() {
	if err := db.DB.AutoMigrate(&MonthlyVisit{}); err != nil {
		log.Fatal("Failed to auto-migrate visits tables: ", err)
	}

	// Every catalogue operation filters on year first.
	if err := db.DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_visits_year_park
		ON monthly_visits (year, park_code);
	`).Error; err != nil {
		log.Fatal("Failed to create idx_visits_year_park: ", err)
	}

	log.Println("Visits module initialized")
}
