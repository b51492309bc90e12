package visits_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/parkpulse/nps-backend/internal/catalog"
	"github.com/parkpulse/nps-backend/internal/visits"
)

// newTestDB opens a per-test in-memory SQLite database with the analytics
// schema migrated. cache=shared keeps every pooled connection on the same
// database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := d.AutoMigrate(&catalog.Region{}, &catalog.Park{}, &visits.MonthlyVisit{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func addRegion(t *testing.T, d *gorm.DB, id, name string) {
	t.Helper()
	if err := d.Create(&catalog.Region{RegionID: id, RegionName: name}).Error; err != nil {
		t.Fatalf("insert region %s: %v", id, err)
	}
}

func addPark(t *testing.T, d *gorm.DB, code, name, regionID string) {
	t.Helper()
	p := catalog.Park{ParkCode: code, ParkName: name, States: []string{"XX"}}
	if regionID != "" {
		p.RegionID = &regionID
	}
	if err := d.Create(&p).Error; err != nil {
		t.Fatalf("insert park %s: %v", code, err)
	}
}

func addVisit(t *testing.T, d *gorm.DB, code string, year, month, total int) {
	t.Helper()
	v := visits.MonthlyVisit{
		ParkCode:         code,
		Year:             year,
		Month:            month,
		RecreationVisits: total,
		TotalVisits:      total,
	}
	if err := d.Create(&v).Error; err != nil {
		t.Fatalf("insert visit %s/%d-%d: %v", code, year, month, err)
	}
}

func TestMonthlySeries_OrderAndThreshold(t *testing.T) {
	d := newTestDB(t)
	addRegion(t, d, "IMR", "Intermountain")
	addPark(t, d, "YELL", "Yellowstone National Park", "IMR")
	// Inserted out of order; month 2 intentionally missing.
	addVisit(t, d, "YELL", 2023, 8, 300)
	addVisit(t, d, "YELL", 2023, 1, 100)
	addVisit(t, d, "YELL", 2023, 3, 150)

	out, err := visits.MonthlySeries(d, "yell", 2023, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantMonths := []int{1, 3, 8}
	if len(out) != len(wantMonths) {
		t.Fatalf("expected %d months, got %d", len(wantMonths), len(out))
	}
	for i, rec := range out {
		if rec.Month != wantMonths[i] {
			t.Errorf("position %d: expected month %d, got %d", i, wantMonths[i], rec.Month)
		}
	}
	// above_threshold is true iff total_visits >= threshold.
	if out[0].AboveThreshold {
		t.Error("100 must not meet threshold 150")
	}
	if !out[1].AboveThreshold {
		t.Error("150 must meet threshold 150 (inclusive)")
	}
	if !out[2].AboveThreshold {
		t.Error("300 must meet threshold 150")
	}
}

func TestMonthlySeries_NoRows(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "YELL", "Yellowstone National Park", "")

	_, err := visits.MonthlySeries(d, "YELL", 1999, 0)
	if !errors.Is(err, visits.ErrNoRows) {
		t.Fatalf("expected ErrNoRows, got %v", err)
	}
}

func TestAnnualByPark_SumsFiltersAndCutoff(t *testing.T) {
	d := newTestDB(t)
	addRegion(t, d, "IMR", "Intermountain")
	addRegion(t, d, "PWR", "Pacific West")
	addPark(t, d, "YELL", "Yellowstone National Park", "IMR")
	addPark(t, d, "YOSE", "Yosemite National Park", "PWR")
	addVisit(t, d, "YELL", 2023, 6, 100)
	addVisit(t, d, "YELL", 2023, 7, 200)
	addVisit(t, d, "YOSE", 2023, 7, 900)
	addVisit(t, d, "YOSE", 2022, 7, 5000) // other year, must not leak in

	out, err := visits.AnnualByPark(d, visits.AnnualParams{Year: 2023})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 parks, got %d", len(out))
	}
	// Descending annual total.
	if out[0].ParkCode != "YOSE" || out[0].AnnualTotalVisits != 900 {
		t.Errorf("expected YOSE/900 first, got %s/%d", out[0].ParkCode, out[0].AnnualTotalVisits)
	}
	if out[1].ParkCode != "YELL" || out[1].AnnualTotalVisits != 300 {
		t.Errorf("expected YELL/300 second, got %s/%d", out[1].ParkCode, out[1].AnnualTotalVisits)
	}
	if out[1].RegionName == nil || *out[1].RegionName != "Intermountain" {
		t.Errorf("expected region name joined in, got %v", out[1].RegionName)
	}

	// HAVING-style cutoff applies to the aggregated sum.
	minTotal := 500
	out, err = visits.AnnualByPark(d, visits.AnnualParams{Year: 2023, MinTotal: &minTotal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ParkCode != "YOSE" {
		t.Fatalf("expected only YOSE past the cutoff, got %+v", out)
	}

	// Region filter, with a lowercase region code normalized at the boundary.
	out, err = visits.AnnualByPark(d, visits.AnnualParams{Year: 2023, RegionID: "imr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ParkCode != "YELL" {
		t.Fatalf("expected only YELL in IMR, got %+v", out)
	}

	// Partial-name search is case-insensitive.
	out, err = visits.AnnualByPark(d, visits.AnnualParams{Year: 2023, Query: "yosem"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ParkCode != "YOSE" {
		t.Fatalf("expected name search to find YOSE, got %+v", out)
	}
}

func TestAverageMonthly_RangeRoundingAndBadRequest(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "GRCA", "Grand Canyon National Park", "")
	addVisit(t, d, "GRCA", 2022, 6, 100)
	addVisit(t, d, "GRCA", 2023, 6, 101)
	addVisit(t, d, "GRCA", 2024, 6, 999) // outside range

	out, err := visits.AverageMonthly(d, visits.RangeParams{StartYear: 2022, EndYear: 2023})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (100+101)/2 = 100.5 rounds to 101.
	if len(out) != 1 || out[0].AvgMonthlyVisits != 101 {
		t.Fatalf("expected rounded average 101, got %+v", out)
	}
	if out[0].StartYear != 2022 || out[0].EndYear != 2023 {
		t.Errorf("expected range echoed back, got %d-%d", out[0].StartYear, out[0].EndYear)
	}

	_, err = visits.AverageMonthly(d, visits.RangeParams{StartYear: 2024, EndYear: 2022})
	var badReq *visits.BadRequestError
	if !errors.As(err, &badReq) {
		t.Fatalf("expected BadRequestError for inverted range, got %v", err)
	}
}

func TestPeakSeason_MonthsAndThreshold(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "YELL", "Yellowstone National Park", "")
	addPark(t, d, "SLEE", "Sleepy Hollow Historical Park", "")
	// YELL peak months average (600+800+1000)/3 = 800; May must not count.
	addVisit(t, d, "YELL", 2023, 5, 9999)
	addVisit(t, d, "YELL", 2023, 6, 600)
	addVisit(t, d, "YELL", 2023, 7, 800)
	addVisit(t, d, "YELL", 2023, 8, 1000)
	// SLEE peak average 100, below threshold.
	addVisit(t, d, "SLEE", 2023, 7, 100)

	out, err := visits.PeakSeason(d, 2023, 500, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ParkCode != "YELL" {
		t.Fatalf("expected only YELL above threshold, got %+v", out)
	}
	if out[0].AvgMonthlyVisits != 800 {
		t.Errorf("expected Jun-Aug average 800 (May excluded), got %d", out[0].AvgMonthlyVisits)
	}
}

func TestAboveAverage_StrictComparison(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "AAAA", "Park A", "")
	addPark(t, d, "BBBB", "Park B", "")
	addPark(t, d, "CCCC", "Park C", "")
	// Annual totals [100, 200, 300]; unweighted mean 200.
	addVisit(t, d, "AAAA", 2023, 6, 100)
	addVisit(t, d, "BBBB", 2023, 6, 200)
	addVisit(t, d, "CCCC", 2023, 6, 300)

	out, err := visits.AboveAverage(d, visits.AboveAverageParams{Year: 2023})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 200 is not strictly greater than 200; only the 300 park qualifies.
	if len(out) != 1 || out[0].ParkCode != "CCCC" {
		t.Fatalf("expected only CCCC above the average, got %+v", out)
	}
	if out[0].SystemAverageVisits != 200 {
		t.Errorf("expected system average 200, got %d", out[0].SystemAverageVisits)
	}
	if out[0].DifferenceFromAverage != 100 {
		t.Errorf("expected difference 100, got %d", out[0].DifferenceFromAverage)
	}
	if out[0].PercentAboveAverage != 50 {
		t.Errorf("expected 50%% above average, got %d", out[0].PercentAboveAverage)
	}
}

func TestTopParks_RankAssignedBeforeNameFilter(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "YOSE", "Yosemite National Park", "")
	addPark(t, d, "YELL", "Yellowstone National Park", "")
	addPark(t, d, "GRCA", "Grand Canyon National Park", "")
	addVisit(t, d, "YOSE", 2023, 6, 900)
	addVisit(t, d, "YELL", 2023, 6, 600)
	addVisit(t, d, "GRCA", 2023, 6, 300)

	full, err := visits.TopParks(d, visits.TopParams{Year: 2023})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(full) != 3 || full[0].ParkCode != "YOSE" || full[0].Rank != 1 {
		t.Fatalf("expected YOSE ranked 1, got %+v", full)
	}

	// A name filter must not change computed ranks: GRCA stays rank 3.
	filtered, err := visits.TopParks(d, visits.TopParams{Year: 2023, Query: "grand"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("expected a single filtered park, got %d", len(filtered))
	}
	if filtered[0].ParkCode != "GRCA" || filtered[0].Rank != 3 {
		t.Errorf("expected GRCA at rank 3 after filtering, got %s at rank %d",
			filtered[0].ParkCode, filtered[0].Rank)
	}

	// Limit truncates after ranking.
	top2, err := visits.TopParks(d, visits.TopParams{Year: 2023, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top2) != 2 || top2[1].ParkCode != "YELL" || top2[1].Rank != 2 {
		t.Fatalf("expected [YOSE, YELL] with ranks [1, 2], got %+v", top2)
	}
}

func TestRegionTotals_Ranked(t *testing.T) {
	d := newTestDB(t)
	addRegion(t, d, "IMR", "Intermountain")
	addRegion(t, d, "PWR", "Pacific West")
	addPark(t, d, "YELL", "Yellowstone National Park", "IMR")
	addPark(t, d, "YOSE", "Yosemite National Park", "PWR")
	addPark(t, d, "LOST", "Lost Unit", "") // unassigned, must not count anywhere
	addVisit(t, d, "YELL", 2023, 6, 500)
	addVisit(t, d, "YOSE", 2023, 6, 900)
	addVisit(t, d, "LOST", 2023, 6, 9999)

	out, err := visits.RegionTotals(d, 2023, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(out))
	}
	if out[0].RegionID != "PWR" || out[0].Rank != 1 || out[0].AnnualTotalVisits != 900 {
		t.Errorf("expected PWR ranked 1 with 900, got %+v", out[0])
	}
	if out[1].RegionID != "IMR" || out[1].Rank != 2 {
		t.Errorf("expected IMR ranked 2, got %+v", out[1])
	}
}

func TestMonthToMonthChange_GapsYieldNilChange(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "ACAD", "Acadia National Park", "")
	addVisit(t, d, "ACAD", 2023, 1, 100)
	addVisit(t, d, "ACAD", 2023, 2, 250)
	addVisit(t, d, "ACAD", 2023, 4, 400) // month 3 missing
	addVisit(t, d, "ACAD", 2022, 12, 9999) // prior December must not count

	out, err := visits.MonthToMonthChange(d, "acad", 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 months, got %d", len(out))
	}
	if out[0].ChangeFromPrevious != nil {
		t.Errorf("first month must have nil change, got %d", *out[0].ChangeFromPrevious)
	}
	if out[1].ChangeFromPrevious == nil || *out[1].ChangeFromPrevious != 150 {
		t.Errorf("expected change +150 for month 2, got %v", out[1].ChangeFromPrevious)
	}
	// Month 4 follows a gap; same-year adjacent-month comparison only.
	if out[2].ChangeFromPrevious != nil {
		t.Errorf("month after a gap must have nil change, got %d", *out[2].ChangeFromPrevious)
	}
}

func TestGrowth_GuardsOrderingAndInnerJoin(t *testing.T) {
	d := newTestDB(t)
	addRegion(t, d, "IMR", "Intermountain")
	addPark(t, d, "YELL", "Yellowstone National Park", "IMR")
	addPark(t, d, "GRCA", "Grand Canyon National Park", "IMR")
	addPark(t, d, "ZION", "Zion National Park", "IMR")
	// YELL: start total 0 (a stored zero row), end 500 -> guard forces 0%.
	addVisit(t, d, "YELL", 2021, 6, 0)
	addVisit(t, d, "YELL", 2023, 6, 500)
	// GRCA: 100 -> 300 = +200%.
	addVisit(t, d, "GRCA", 2021, 6, 100)
	addVisit(t, d, "GRCA", 2023, 6, 300)
	// ZION has no 2021 data; inner-join semantics exclude it.
	addVisit(t, d, "ZION", 2023, 6, 400)

	out, err := visits.Growth(d, "imr", 2021, 2023)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 parks (ZION excluded), got %d", len(out))
	}
	// Descending growth percent.
	if out[0].ParkCode != "GRCA" || out[0].GrowthPercent != 200 {
		t.Errorf("expected GRCA +200%% first, got %+v", out[0])
	}
	if out[1].ParkCode != "YELL" || out[1].GrowthPercent != 0 {
		t.Errorf("expected YELL 0%% (zero-start guard), got %+v", out[1])
	}
	if out[1].StartTotal != 0 || out[1].EndTotal != 500 {
		t.Errorf("expected boundary totals 0/500, got %d/%d", out[1].StartTotal, out[1].EndTotal)
	}

	_, err = visits.Growth(d, "IMR", 2023, 2023)
	var badReq *visits.BadRequestError
	if !errors.As(err, &badReq) {
		t.Fatalf("expected BadRequestError for start >= end, got %v", err)
	}
}

func TestVariability_ExactValuesSortAndLimit(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "YELL", "Yellowstone National Park", "")
	addPark(t, d, "FLAT", "Flatline Memorial", "")
	// [100, 200, 300]: mean 200, population std dev 81.65 -> rounds to 82.
	addVisit(t, d, "YELL", 2023, 6, 100)
	addVisit(t, d, "YELL", 2023, 7, 200)
	addVisit(t, d, "YELL", 2023, 8, 300)
	// Constant series: std dev 0.
	addVisit(t, d, "FLAT", 2023, 6, 500)
	addVisit(t, d, "FLAT", 2023, 7, 500)

	out, err := visits.Variability(d, visits.VariabilityParams{Year: 2023})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 parks, got %d", len(out))
	}
	// Sorted by descending std dev.
	if out[0].ParkCode != "YELL" {
		t.Fatalf("expected YELL first, got %s", out[0].ParkCode)
	}
	if out[0].StdDevMonthlyVisits != 82 {
		t.Errorf("expected std dev 82, got %d", out[0].StdDevMonthlyVisits)
	}
	if out[0].AvgMonthlyVisits != 200 {
		t.Errorf("expected mean 200, got %d", out[0].AvgMonthlyVisits)
	}
	if out[0].MonthsWithData != 3 {
		t.Errorf("expected months_with_data 3, got %d", out[0].MonthsWithData)
	}
	if out[1].StdDevMonthlyVisits != 0 {
		t.Errorf("expected std dev 0 for constant series, got %d", out[1].StdDevMonthlyVisits)
	}

	// Limit truncates the full sorted set.
	out, err = visits.Variability(d, visits.VariabilityParams{Year: 2023, Limit: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].ParkCode != "YELL" {
		t.Fatalf("expected the most variable park to survive the limit, got %+v", out)
	}
}

func TestMetricTotals_WhitelistAndSum(t *testing.T) {
	d := newTestDB(t)
	addPark(t, d, "YELL", "Yellowstone National Park", "")
	if err := d.Create(&visits.MonthlyVisit{
		ParkCode: "YELL", Year: 2023, Month: 6,
		TentCampers: 40, RVCampers: 10,
	}).Error; err != nil {
		t.Fatalf("insert visit: %v", err)
	}
	if err := d.Create(&visits.MonthlyVisit{
		ParkCode: "YELL", Year: 2023, Month: 7,
		TentCampers: 60, RVCampers: 5,
	}).Error; err != nil {
		t.Fatalf("insert visit: %v", err)
	}

	out, err := visits.MetricTotals(d, visits.MetricParams{Year: 2023, Metric: "tent_campers"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].MetricTotal != 100 {
		t.Fatalf("expected tent_campers total 100, got %+v", out)
	}

	_, err = visits.MetricTotals(d, visits.MetricParams{Year: 2023, Metric: "not_a_real_column"})
	var badReq *visits.BadRequestError
	if !errors.As(err, &badReq) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
	if badReq.Msg != "Unsupported metric: not_a_real_column" {
		t.Errorf("error must name the rejected metric, got %q", badReq.Msg)
	}
}

func TestYearBounds(t *testing.T) {
	d := newTestDB(t)

	_, err := visits.YearBounds(d)
	if !errors.Is(err, visits.ErrNoRows) {
		t.Fatalf("expected ErrNoRows on an empty store, got %v", err)
	}

	addPark(t, d, "YELL", "Yellowstone National Park", "")
	addVisit(t, d, "YELL", 2015, 6, 100)
	addVisit(t, d, "YELL", 2024, 6, 100)

	bounds, err := visits.YearBounds(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bounds.MinYear != 2015 || bounds.MaxYear != 2024 {
		t.Errorf("expected bounds 2015/2024, got %d/%d", bounds.MinYear, bounds.MaxYear)
	}
}

// Repeating an operation against an unchanged store must yield field-wise
// identical output.
func TestQueriesAreIdempotent(t *testing.T) {
	d := newTestDB(t)
	addRegion(t, d, "IMR", "Intermountain")
	addPark(t, d, "YELL", "Yellowstone National Park", "IMR")
	addPark(t, d, "GRCA", "Grand Canyon National Park", "IMR")
	addVisit(t, d, "YELL", 2023, 6, 100)
	addVisit(t, d, "YELL", 2023, 7, 200)
	addVisit(t, d, "GRCA", 2023, 7, 900)

	first, err := visits.AnnualByPark(d, visits.AnnualParams{Year: 2023})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := visits.AnnualByPark(d, visits.AnnualParams{Year: 2023})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %+v then %+v", first, second)
	}
}
