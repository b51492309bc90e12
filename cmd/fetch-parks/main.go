package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parkpulse/nps-backend/internal/catalog"
	"github.com/parkpulse/nps-backend/internal/npsapi"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		dbURL      = flag.String("db", os.Getenv("DATABASE_URL"), "Postgres DSN")
		sqlitePath = flag.String("sqlite", os.Getenv("SQLITE_PATH"), "SQLite file path (used when -db is empty)")
		boundaries = flag.Bool("boundaries", false, "also fetch boundary GeoJSON per park (slow)")
	)
	flag.Parse()

	if *dbURL == "" && *sqlitePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	var (
		d   *gorm.DB
		err error
	)
	if *dbURL != "" {
		d, err = gorm.Open(postgres.Open(*dbURL), &gorm.Config{})
	} else {
		d, err = gorm.Open(sqlite.Open(*sqlitePath), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := d.AutoMigrate(&catalog.Region{}, &catalog.Park{}); err != nil {
		log.Fatal("Failed to migrate: ", err)
	}
	if err := catalog.SeedRegions(d); err != nil {
		log.Fatal("Failed to seed regions: ", err)
	}

	client := npsapi.NewClient(os.Getenv("NPS_API_KEY"))
	n, err := npsapi.ImportParks(context.Background(), d, client, *boundaries)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("imported %d parks", n)
}
