package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Row is one record of the NPS "Query Builder" visitation export.
type Row struct {
	RegionName string
	ParkCode   string
	ParkName   string // present in some exports as UnitName; may be empty
	Year       int
	Month      int

	RecreationVisits            int
	NonRecreationVisits         int
	ConcessionerLodging         int
	ConcessionerCamping         int
	TentCampers                 int
	RVCampers                   int
	Backcountry                 int
	NonRecreationOvernightStays int
	MiscellaneousOvernightStays int
}

var requiredColumns = []string{
	"Region", "UnitCode", "Year", "Month",
	"RecreationVisits", "NonRecreationVisits",
	"ConcessionerLodging", "ConcessionerCamping",
	"TentCampers", "RVCampers", "Backcountry",
	"NonRecreationOvernightStays", "MiscellaneousOvernightStays",
}

// ParseCSV reads one visitation export. Counters use comma thousands
// grouping; blanks become zero. Unit codes are uppercased here so the store
// only ever sees canonical codes.
func ParseCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("csv has no data rows")
	}

	header := records[0]
	// Handle BOM on first header cell
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, k := range requiredColumns {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("missing required column: %s", k)
		}
	}

	field := func(rec []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[idx])
	}

	var rows []Row
	for i, rec := range records[1:] {
		row := Row{
			RegionName: cleanRegionName(field(rec, "Region")),
			ParkCode:   strings.ToUpper(field(rec, "UnitCode")),
			ParkName:   field(rec, "UnitName"),
		}
		if row.ParkCode == "" {
			return nil, fmt.Errorf("row %d: empty UnitCode", i+2)
		}

		var errs []error
		parse := func(name string) int {
			v, err := parseCount(field(rec, name))
			if err != nil {
				errs = append(errs, fmt.Errorf("row %d: bad %s: %w", i+2, name, err))
			}
			return v
		}

		row.Year = parse("Year")
		row.Month = parse("Month")
		row.RecreationVisits = parse("RecreationVisits")
		row.NonRecreationVisits = parse("NonRecreationVisits")
		row.ConcessionerLodging = parse("ConcessionerLodging")
		row.ConcessionerCamping = parse("ConcessionerCamping")
		row.TentCampers = parse("TentCampers")
		row.RVCampers = parse("RVCampers")
		row.Backcountry = parse("Backcountry")
		row.NonRecreationOvernightStays = parse("NonRecreationOvernightStays")
		row.MiscellaneousOvernightStays = parse("MiscellaneousOvernightStays")
		if len(errs) > 0 {
			return nil, errs[0]
		}
		if row.Month < 1 || row.Month > 12 {
			return nil, fmt.Errorf("row %d: month out of range: %d", i+2, row.Month)
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// parseCount handles "1,234"-style grouping. Blank cells count as zero.
func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative count: %d", v)
	}
	return v, nil
}

// cleanRegionName collapses runs of whitespace; the exports pad some region
// names with stray spaces.
func cleanRegionName(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
