package catalog

import (
	"log"

	"github.com/parkpulse/nps-backend/internal/db"
)

func Init() {
	// Auto-migrate reference tables
	if err := db.DB.AutoMigrate(&Region{}, &Park{}); err != nil {
		log.Fatal("Failed to auto-migrate catalog tables: ", err)
	}

	if err := SeedRegions(db.DB); err != nil {
		log.Fatal("Failed to seed regions: ", err)
	}

	log.Println("Catalog module initialized")
}
