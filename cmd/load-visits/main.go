package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/parkpulse/nps-backend/internal/ingest"
)

func main() {
	_ = godotenv.Load(".env.local")

	var (
		csvPaths  = flag.String("csv", "", "comma-separated paths to visitation CSV exports")
		dbURL     = flag.String("db", os.Getenv("DATABASE_URL"), "Postgres DSN")
		sqlite    = flag.String("sqlite", os.Getenv("SQLITE_PATH"), "SQLite file path (used when -db is empty)")
		regionMap = flag.String("region-map", "", "optional YAML override for the region-name map")
		backfill  = flag.Bool("backfill-regions", true, "set parks.region_id from the CSV for unassigned parks")
	)
	flag.Parse()

	if *csvPaths == "" || (*dbURL == "" && *sqlite == "") {
		flag.Usage()
		os.Exit(2)
	}

	// Fail fast on a bad DSN before any CSV parsing happens.
	if *dbURL != "" {
		conn, err := sql.Open("pgx", *dbURL)
		if err != nil {
			log.Fatalf("invalid Postgres DSN: %v", err)
		}
		if err := conn.Ping(); err != nil {
			log.Fatalf("cannot reach Postgres: %v", err)
		}
		conn.Close()
	}

	cfg := ingest.Config{
		CSVPaths:        strings.Split(*csvPaths, ","),
		DatabaseURL:     *dbURL,
		SQLitePath:      *sqlite,
		RegionMapPath:   *regionMap,
		BackfillRegions: *backfill,
	}

	if err := ingest.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
