package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parkpulse/nps-backend/internal/ingest"
)

// Standalone region backfill for stores loaded before the region map existed.
// The normal CSV loader already runs this pass by default.
func main() {
	_ = godotenv.Load(".env.local")

	var (
		csvPaths   = flag.String("csv", "", "comma-separated paths to visitation CSV exports")
		dbURL      = flag.String("db", os.Getenv("DATABASE_URL"), "Postgres DSN")
		sqlitePath = flag.String("sqlite", os.Getenv("SQLITE_PATH"), "SQLite file path (used when -db is empty)")
		regionMap  = flag.String("region-map", "", "optional YAML override for the region-name map")
	)
	flag.Parse()

	if *csvPaths == "" || (*dbURL == "" && *sqlitePath == "") {
		flag.Usage()
		os.Exit(2)
	}

	m, err := ingest.LoadRegionMap(*regionMap)
	if err != nil {
		log.Fatal(err)
	}

	var rows []ingest.Row
	for _, path := range strings.Split(*csvPaths, ",") {
		parsed, err := ingest.ParseCSV(path)
		if err != nil {
			log.Fatal(err)
		}
		rows = append(rows, parsed...)
	}

	var d *gorm.DB
	if *dbURL != "" {
		d, err = gorm.Open(postgres.Open(*dbURL), &gorm.Config{})
	} else {
		d, err = gorm.Open(sqlite.Open(*sqlitePath), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	n, err := ingest.BackfillRegions(d, rows, m)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("backfilled region for %d parks", n)
}
