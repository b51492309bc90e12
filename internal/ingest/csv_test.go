package ingest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parkpulse/nps-backend/internal/ingest"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const sampleHeader = "Region,UnitCode,UnitName,Year,Month,RecreationVisits,NonRecreationVisits," +
	"ConcessionerLodging,ConcessionerCamping,TentCampers,RVCampers,Backcountry," +
	"NonRecreationOvernightStays,MiscellaneousOvernightStays\n"

func TestParseCSV(t *testing.T) {
	// BOM on the header, comma-grouped counters, padded region name,
	// lowercase unit code, and a blank counter cell.
	content := "\ufeff" + sampleHeader +
		"Intermountain  ,yell,Yellowstone NP,2023,6,\"1,000\",200,10,5,40,10,3,2,\n"

	rows, err := ingest.ParseCSV(writeTempFile(t, "visits.csv", content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	r := rows[0]
	if r.ParkCode != "YELL" {
		t.Errorf("expected uppercased code YELL, got %s", r.ParkCode)
	}
	if r.RegionName != "Intermountain" {
		t.Errorf("expected cleaned region name, got %q", r.RegionName)
	}
	if r.RecreationVisits != 1000 {
		t.Errorf("expected grouped 1,000 parsed as 1000, got %d", r.RecreationVisits)
	}
	if r.MiscellaneousOvernightStays != 0 {
		t.Errorf("expected blank cell as zero, got %d", r.MiscellaneousOvernightStays)
	}
	if r.Year != 2023 || r.Month != 6 {
		t.Errorf("expected 2023-06, got %d-%d", r.Year, r.Month)
	}
}

func TestParseCSV_MissingColumn(t *testing.T) {
	content := "Region,UnitCode,Year\nIntermountain,YELL,2023\n"

	_, err := ingest.ParseCSV(writeTempFile(t, "bad.csv", content))
	if err == nil || !strings.Contains(err.Error(), "missing required column") {
		t.Fatalf("expected missing-column error, got %v", err)
	}
}

func TestParseCSV_MonthOutOfRange(t *testing.T) {
	content := sampleHeader +
		"Intermountain,YELL,Yellowstone NP,2023,13,100,0,0,0,0,0,0,0,0\n"

	_, err := ingest.ParseCSV(writeTempFile(t, "bad.csv", content))
	if err == nil || !strings.Contains(err.Error(), "month out of range") {
		t.Fatalf("expected month range error, got %v", err)
	}
}

func TestParseCSV_NegativeCount(t *testing.T) {
	content := sampleHeader +
		"Intermountain,YELL,Yellowstone NP,2023,6,-5,0,0,0,0,0,0,0,0\n"

	_, err := ingest.ParseCSV(writeTempFile(t, "bad.csv", content))
	if err == nil {
		t.Fatal("expected error for a negative counter")
	}
}

func TestLoadRegionMap_DefaultsAndOverride(t *testing.T) {
	m, err := ingest.LoadRegionMap("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["Pacific West"] != "PWR" {
		t.Errorf("expected default Pacific West -> PWR, got %q", m["Pacific West"])
	}

	override := writeTempFile(t, "regions.yaml",
		"Western Area: PWR\nAlaska: AKX\n")
	m, err = ingest.LoadRegionMap(override)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["Western Area"] != "PWR" {
		t.Errorf("expected override entry, got %q", m["Western Area"])
	}
	if m["Alaska"] != "AKX" {
		t.Errorf("expected override to win over the default, got %q", m["Alaska"])
	}
	if m["Midwest"] != "MWR" {
		t.Errorf("expected untouched defaults to survive, got %q", m["Midwest"])
	}
}
