package ingest

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parkpulse/nps-backend/internal/catalog"
	"github.com/parkpulse/nps-backend/internal/visits"
)

type Config struct {
	CSVPaths      []string
	DatabaseURL   string // Postgres DSN; takes precedence over SQLitePath
	SQLitePath    string
	RegionMapPath string // optional YAML override for the region-name map
	// BackfillRegions sets parks.region_id from the CSV's region column for
	// parks that have no region yet.
	BackfillRegions bool
}

// Run loads one or more visitation exports into the store in a single
// transaction. Reruns are safe: rows upsert on (park_code, year, month).
func Run(cfg Config) error {
	if len(cfg.CSVPaths) == 0 {
		return errors.New("no CSV paths given")
	}

	// Short run id to tie log lines of one load together.
	runID := uuid.NewString()[:8]

	regionMap, err := LoadRegionMap(cfg.RegionMapPath)
	if err != nil {
		return fmt.Errorf("region map: %w", err)
	}

	var rows []Row
	for _, path := range cfg.CSVPaths {
		parsed, err := ParseCSV(path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		log.Printf("[ingest %s] parsed %d rows from %s", runID, len(parsed), path)
		rows = append(rows, parsed...)
	}

	d, err := open(cfg)
	if err != nil {
		return err
	}

	// The loader can run against a fresh database before the server ever has.
	if err := d.AutoMigrate(&catalog.Region{}, &catalog.Park{}, &visits.MonthlyVisit{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := catalog.SeedRegions(d); err != nil {
		return fmt.Errorf("seed regions: %w", err)
	}

	return d.Transaction(func(tx *gorm.DB) error {
		unknownRegions := map[string]struct{}{}

		// Placeholder parks for codes the park fetch hasn't seen yet, so
		// every monthly row references an existing park.
		parks := map[string]catalog.Park{}
		records := make([]visits.MonthlyVisit, 0, len(rows))
		for _, r := range rows {
			regionID, ok := regionMap[r.RegionName]
			if !ok && r.RegionName != "" {
				unknownRegions[r.RegionName] = struct{}{}
			}

			if _, seen := parks[r.ParkCode]; !seen {
				p := catalog.Park{ParkCode: r.ParkCode, ParkName: r.ParkCode}
				if r.ParkName != "" {
					p.ParkName = r.ParkName
				}
				if ok {
					rid := regionID
					p.RegionID = &rid
				}
				parks[r.ParkCode] = p
			}

			records = append(records, visits.MonthlyVisit{
				ParkCode:            r.ParkCode,
				Year:                r.Year,
				Month:               r.Month,
				RecreationVisits:    r.RecreationVisits,
				NonRecreationVisits: r.NonRecreationVisits,
				// Derived once at load; the query layer never recomputes it.
				TotalVisits:                 r.RecreationVisits + r.NonRecreationVisits,
				ConcessionerLodging:         r.ConcessionerLodging,
				ConcessionerCamping:         r.ConcessionerCamping,
				TentCampers:                 r.TentCampers,
				RVCampers:                   r.RVCampers,
				Backcountry:                 r.Backcountry,
				NonRecreationOvernightStays: r.NonRecreationOvernightStays,
				MiscellaneousOvernightStays: r.MiscellaneousOvernightStays,
			})
		}

		for name := range unknownRegions {
			log.Printf("[ingest %s] WARNING: region %q not in region map; parks left unassigned", runID, name)
		}

		parkList := make([]catalog.Park, 0, len(parks))
		for _, p := range parks {
			parkList = append(parkList, p)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			CreateInBatches(&parkList, 500).Error; err != nil {
			return fmt.Errorf("insert parks: %w", err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "park_code"}, {Name: "year"}, {Name: "month"}},
			UpdateAll: true,
		}).CreateInBatches(&records, 500).Error; err != nil {
			return fmt.Errorf("upsert monthly visits: %w", err)
		}
		log.Printf("[ingest %s] upserted %d monthly rows for %d parks", runID, len(records), len(parks))

		if cfg.BackfillRegions {
			n, err := BackfillRegions(tx, rows, regionMap)
			if err != nil {
				return err
			}
			log.Printf("[ingest %s] backfilled region for %d parks", runID, n)
		}

		return nil
	})
}

// BackfillRegions assigns parks.region_id from the CSV's region column for
// parks still unassigned. Parks already carrying a region are left alone.
func BackfillRegions(d *gorm.DB, rows []Row, regionMap map[string]string) (int, error) {
	byPark := map[string]string{}
	for _, r := range rows {
		regionID, ok := regionMap[r.RegionName]
		if !ok {
			continue
		}
		byPark[r.ParkCode] = regionID
	}

	// Invert to one UPDATE per region instead of one per park.
	byRegion := map[string][]string{}
	for code, regionID := range byPark {
		byRegion[regionID] = append(byRegion[regionID], code)
	}

	total := 0
	for regionID, codes := range byRegion {
		res := d.Table("parks").
			Where("park_code IN ? AND region_id IS NULL", codes).
			Update("region_id", regionID)
		if res.Error != nil {
			return total, fmt.Errorf("backfill region %s: %w", regionID, res.Error)
		}
		total += int(res.RowsAffected)
	}
	return total, nil
}

func open(cfg Config) (*gorm.DB, error) {
	switch {
	case cfg.DatabaseURL != "":
		return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	case cfg.SQLitePath != "":
		return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	default:
		return nil, errors.New("no DATABASE_URL or SQLITE_PATH configured")
	}
}
