package visits

import (
	"sort"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// The query catalogue. Each operation is a pure read over the store: typed
// filters in, ordered result records out. Identifier filters are uppercased
// here so callers never have to pre-normalize, and parameter contradictions
// are rejected before a query runs.
//
// Name search is expressed as LOWER(...) LIKE LOWER(...) rather than ILIKE so
// the same queries run on Postgres and SQLite.

func normCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

// parkAggregateScope builds the shared Park–MonthlyVisit–Region join used by
// the per-park aggregates, with the common filter set applied.
func parkAggregateScope(d *gorm.DB, regionID, parkCode, query string) *gorm.DB {
	q := d.Table("parks").
		Joins("JOIN monthly_visits ON monthly_visits.park_code = parks.park_code").
		Joins("LEFT JOIN regions ON regions.region_id = parks.region_id")

	if regionID != "" {
		q = q.Where("regions.region_id = ?", normCode(regionID))
	}
	if parkCode != "" {
		q = q.Where("parks.park_code = ?", normCode(parkCode))
	} else if query != "" {
		q = q.Where("LOWER(parks.park_name) LIKE ?", likePattern(query))
	}
	return q
}

// MonthlySeries returns each stored month of one park/year with a flag for
// meeting the demand threshold. Months without rows are simply absent.
func MonthlySeries(d *gorm.DB, parkCode string, year, threshold int) ([]MonthlyThresholdOut, error) {
	parkCode = normCode(parkCode)

	var rows []struct {
		Month       int
		TotalVisits int
	}
	err := d.Table("monthly_visits").
		Select("month, total_visits").
		Where("park_code = ? AND year = ?", parkCode, year).
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]MonthlyThresholdOut, 0, len(rows))
	for _, r := range rows {
		out = append(out, MonthlyThresholdOut{
			Month:          r.Month,
			TotalVisits:    r.TotalVisits,
			AboveThreshold: r.TotalVisits >= threshold,
		})
	}
	return out, nil
}

type AnnualParams struct {
	Year     int
	RegionID string
	ParkCode string
	Query    string
	MinTotal *int // HAVING-style cutoff on the annual sum
	Limit    int
}

type annualRow struct {
	ParkCode    string
	ParkName    string
	States      pq.StringArray
	Latitude    *float64
	Longitude   *float64
	RegionID    *string
	RegionName  *string
	Year        int
	AnnualTotal int64
}

// AnnualByPark sums total visits per park for one year, joined to region
// names, ordered by descending annual total.
func AnnualByPark(d *gorm.DB, p AnnualParams) ([]AnnualParkVisitsOut, error) {
	if p.Limit <= 0 {
		p.Limit = 100
	}

	q := parkAggregateScope(d, p.RegionID, p.ParkCode, p.Query).
		Select(`parks.park_code, parks.park_name, parks.states,
			parks.latitude, parks.longitude,
			regions.region_id AS region_id, regions.region_name,
			monthly_visits.year,
			SUM(monthly_visits.total_visits) AS annual_total`).
		Where("monthly_visits.year = ?", p.Year).
		Group(`parks.park_code, parks.park_name, parks.states,
			parks.latitude, parks.longitude,
			regions.region_id, regions.region_name, monthly_visits.year`)

	if p.MinTotal != nil {
		q = q.Having("SUM(monthly_visits.total_visits) >= ?", *p.MinTotal)
	}

	var rows []annualRow
	if err := q.Order("annual_total DESC").Limit(p.Limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]AnnualParkVisitsOut, 0, len(rows))
	for _, r := range rows {
		out = append(out, AnnualParkVisitsOut{
			ParkCode:          r.ParkCode,
			ParkName:          r.ParkName,
			RegionID:          r.RegionID,
			RegionName:        r.RegionName,
			Year:              r.Year,
			AnnualTotalVisits: int(r.AnnualTotal),
			State:             strings.Join(r.States, ","),
			Latitude:          r.Latitude,
			Longitude:         r.Longitude,
		})
	}
	return out, nil
}

type RangeParams struct {
	StartYear int
	EndYear   int
	RegionID  string
	ParkCode  string
	Query     string
	Limit     int
}

type avgRow struct {
	ParkCode   string
	ParkName   string
	RegionID   *string
	RegionName *string
	AvgMonthly float64
}

// AverageMonthly averages total visits per park over all monthly rows whose
// year falls in [start, end], rounded to the nearest integer.
func AverageMonthly(d *gorm.DB, p RangeParams) ([]AvgMonthlyVisitsOut, error) {
	if p.StartYear > p.EndYear {
		return nil, badRequest("start_year must be <= end_year")
	}
	if p.Limit <= 0 {
		p.Limit = 100
	}

	var rows []avgRow
	err := parkAggregateScope(d, p.RegionID, p.ParkCode, p.Query).
		Select(`parks.park_code, parks.park_name,
			regions.region_id AS region_id, regions.region_name,
			AVG(monthly_visits.total_visits) AS avg_monthly`).
		Where("monthly_visits.year BETWEEN ? AND ?", p.StartYear, p.EndYear).
		Group("parks.park_code, parks.park_name, regions.region_id, regions.region_name").
		Order("avg_monthly DESC").
		Limit(p.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]AvgMonthlyVisitsOut, 0, len(rows))
	for _, r := range rows {
		out = append(out, AvgMonthlyVisitsOut{
			ParkCode:         r.ParkCode,
			ParkName:         r.ParkName,
			RegionID:         r.RegionID,
			RegionName:       r.RegionName,
			StartYear:        p.StartYear,
			EndYear:          p.EndYear,
			AvgMonthlyVisits: roundToInt(r.AvgMonthly),
		})
	}
	return out, nil
}

// PeakSeason keeps parks whose June–August average for the year meets the
// threshold, ordered by descending average.
func PeakSeason(d *gorm.DB, year, threshold int, regionID string) ([]AvgMonthlyVisitsOut, error) {
	var rows []avgRow
	err := parkAggregateScope(d, regionID, "", "").
		Select(`parks.park_code, parks.park_name,
			regions.region_id AS region_id, regions.region_name,
			AVG(monthly_visits.total_visits) AS avg_monthly`).
		Where("monthly_visits.year = ? AND monthly_visits.month IN (6, 7, 8)", year).
		Group("parks.park_code, parks.park_name, regions.region_id, regions.region_name").
		Having("AVG(monthly_visits.total_visits) >= ?", threshold).
		Order("avg_monthly DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]AvgMonthlyVisitsOut, 0, len(rows))
	for _, r := range rows {
		out = append(out, AvgMonthlyVisitsOut{
			ParkCode:         r.ParkCode,
			ParkName:         r.ParkName,
			RegionID:         r.RegionID,
			RegionName:       r.RegionName,
			StartYear:        year,
			EndYear:          year,
			AvgMonthlyVisits: roundToInt(r.AvgMonthly),
		})
	}
	return out, nil
}

type AboveAverageParams struct {
	Year     int
	RegionID string
	ParkCode string
	Query    string
}

// AboveAverage is the two-pass comparison: pass 1 computes the unweighted mean
// of per-park annual totals for the scope (system-wide, or one region), pass 2
// returns the parks whose total strictly exceeds that mean. The mean is the
// pass-1 scalar, passed explicitly; it is not re-aggregated inside pass 2.
func AboveAverage(d *gorm.DB, p AboveAverageParams) ([]ParkAboveAverageOut, error) {
	scope := d.Table("monthly_visits").
		Joins("JOIN parks ON parks.park_code = monthly_visits.park_code").
		Where("monthly_visits.year = ?", p.Year)
	if p.RegionID != "" {
		scope = scope.Where("parks.region_id = ?", normCode(p.RegionID))
	}

	var totals []struct {
		AnnualTotal int64
	}
	err := scope.
		Select("SUM(monthly_visits.total_visits) AS annual_total").
		Group("monthly_visits.park_code").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return nil, ErrNoRows
	}

	var sum int64
	for _, t := range totals {
		sum += t.AnnualTotal
	}
	average := roundToInt(float64(sum) / float64(len(totals)))

	var rows []annualRow
	err = parkAggregateScope(d, p.RegionID, p.ParkCode, p.Query).
		Select(`parks.park_code, parks.park_name, parks.states,
			parks.latitude, parks.longitude,
			regions.region_id AS region_id, regions.region_name,
			monthly_visits.year,
			SUM(monthly_visits.total_visits) AS annual_total`).
		Where("monthly_visits.year = ?", p.Year).
		Group(`parks.park_code, parks.park_name, parks.states,
			parks.latitude, parks.longitude,
			regions.region_id, regions.region_name, monthly_visits.year`).
		Having("SUM(monthly_visits.total_visits) > ?", average).
		Order("annual_total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]ParkAboveAverageOut, 0, len(rows))
	for _, r := range rows {
		total := int(r.AnnualTotal)
		out = append(out, ParkAboveAverageOut{
			ParkCode:              r.ParkCode,
			ParkName:              r.ParkName,
			RegionID:              r.RegionID,
			RegionName:            r.RegionName,
			Year:                  r.Year,
			AnnualTotalVisits:     total,
			SystemAverageVisits:   average,
			DifferenceFromAverage: total - average,
			PercentAboveAverage:   percentAbove(total, average),
		})
	}
	return out, nil
}

type TopParams struct {
	Year     int
	Limit    int
	RegionID string
	Query    string
}

// TopParks ranks parks by annual total within the scope (global or one
// region). The full scope is ranked first; the name filter and the limit are
// applied afterwards, so a filter never changes a park's rank.
func TopParks(d *gorm.DB, p TopParams) ([]TopParkOut, error) {
	if p.Limit <= 0 {
		p.Limit = 10
	}

	q := d.Table("parks").
		Select(`parks.park_code, parks.park_name, monthly_visits.year,
			SUM(monthly_visits.total_visits) AS annual_total`).
		Joins("JOIN monthly_visits ON monthly_visits.park_code = parks.park_code").
		Where("monthly_visits.year = ?", p.Year).
		Group("parks.park_code, parks.park_name, monthly_visits.year").
		Order("annual_total DESC")
	if p.RegionID != "" {
		q = q.Where("parks.region_id = ?", normCode(p.RegionID))
	}

	var ranked []struct {
		ParkCode    string
		ParkName    string
		Year        int
		AnnualTotal int64
	}
	if err := q.Scan(&ranked).Error; err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, ErrNoRows
	}

	out := []TopParkOut{}
	for idx, r := range ranked {
		if !nameContains(r.ParkName, p.Query) {
			continue
		}
		out = append(out, TopParkOut{
			Rank:              idx + 1, // position in the unfiltered scope
			ParkCode:          r.ParkCode,
			ParkName:          r.ParkName,
			Year:              r.Year,
			AnnualTotalVisits: int(r.AnnualTotal),
		})
		if len(out) == p.Limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

// RegionTotals sums annual visits per region (three-way join), ranked by
// descending total over the returned rows.
func RegionTotals(d *gorm.DB, year int, regionID string) ([]RegionAnnualVisitsOut, error) {
	q := d.Table("regions").
		Select(`regions.region_id, regions.region_name, monthly_visits.year,
			SUM(monthly_visits.total_visits) AS annual_total`).
		Joins("JOIN parks ON parks.region_id = regions.region_id").
		Joins("JOIN monthly_visits ON monthly_visits.park_code = parks.park_code").
		Where("monthly_visits.year = ?", year).
		Group("regions.region_id, regions.region_name, monthly_visits.year").
		Order("annual_total DESC")
	if regionID != "" {
		q = q.Where("regions.region_id = ?", normCode(regionID))
	}

	var rows []struct {
		RegionID    string
		RegionName  string
		Year        int
		AnnualTotal int64
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]RegionAnnualVisitsOut, 0, len(rows))
	for idx, r := range rows {
		out = append(out, RegionAnnualVisitsOut{
			RegionID:          r.RegionID,
			RegionName:        r.RegionName,
			Year:              r.Year,
			AnnualTotalVisits: int(r.AnnualTotal),
			Rank:              idx + 1,
		})
	}
	return out, nil
}

// MonthToMonthChange returns each stored month of one park/year alongside the
// delta against month N-1 of the same year. The change is nil when the
// preceding month number has no row (always true for the first month).
func MonthToMonthChange(d *gorm.DB, parkCode string, year int) ([]MonthToMonthChangeOut, error) {
	parkCode = normCode(parkCode)

	var rows []struct {
		Month       int
		TotalVisits int
		PrevTotal   *int
	}
	err := d.Table("monthly_visits AS m1").
		Select("m1.month, m1.total_visits, m2.total_visits AS prev_total").
		Joins(`LEFT JOIN monthly_visits AS m2
			ON m2.park_code = m1.park_code
			AND m2.year = m1.year
			AND m1.month = m2.month + 1`).
		Where("m1.park_code = ? AND m1.year = ?", parkCode, year).
		Order("m1.month").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]MonthToMonthChangeOut, 0, len(rows))
	for _, r := range rows {
		rec := MonthToMonthChangeOut{Month: r.Month, TotalVisits: r.TotalVisits}
		if r.PrevTotal != nil {
			change := r.TotalVisits - *r.PrevTotal
			rec.ChangeFromPrevious = &change
		}
		out = append(out, rec)
	}
	return out, nil
}

// Growth compares each park's annual total between two boundary years inside
// one region. Only parks with data in both years appear. The two totals are
// aggregated in separate passes and combined here, which keeps the
// zero-division guard in plain sight.
func Growth(d *gorm.DB, regionID string, startYear, endYear int) ([]GrowthOut, error) {
	if startYear >= endYear {
		return nil, badRequest("start_year must be < end_year")
	}
	regionID = normCode(regionID)

	var region struct {
		RegionID   string
		RegionName string
	}
	err := d.Table("regions").
		Select("region_id, region_name").
		Where("region_id = ?", regionID).
		Scan(&region).Error
	if err != nil {
		return nil, err
	}
	if region.RegionID == "" {
		return nil, ErrNoRows
	}

	startTotals, err := annualTotalsForRegion(d, regionID, startYear)
	if err != nil {
		return nil, err
	}
	endTotals, err := annualTotalsForRegion(d, regionID, endYear)
	if err != nil {
		return nil, err
	}

	var parks []struct {
		ParkCode string
		ParkName string
	}
	err = d.Table("parks").
		Select("park_code, park_name").
		Where("region_id = ?", regionID).
		Order("park_code").
		Scan(&parks).Error
	if err != nil {
		return nil, err
	}

	out := []GrowthOut{}
	for _, park := range parks {
		start, okStart := startTotals[park.ParkCode]
		end, okEnd := endTotals[park.ParkCode]
		if !okStart || !okEnd {
			continue // inner-join semantics: both boundary years required
		}
		out = append(out, GrowthOut{
			ParkCode:      park.ParkCode,
			ParkName:      park.ParkName,
			RegionID:      region.RegionID,
			RegionName:    region.RegionName,
			StartYear:     startYear,
			EndYear:       endYear,
			StartTotal:    start,
			EndTotal:      end,
			GrowthPercent: growthPercent(start, end),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GrowthPercent > out[j].GrowthPercent
	})
	return out, nil
}

func annualTotalsForRegion(d *gorm.DB, regionID string, year int) (map[string]int, error) {
	var rows []struct {
		ParkCode    string
		AnnualTotal int64
	}
	err := d.Table("monthly_visits").
		Select("monthly_visits.park_code, SUM(monthly_visits.total_visits) AS annual_total").
		Joins("JOIN parks ON parks.park_code = monthly_visits.park_code").
		Where("parks.region_id = ? AND monthly_visits.year = ?", regionID, year).
		Group("monthly_visits.park_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int, len(rows))
	for _, r := range rows {
		totals[r.ParkCode] = int(r.AnnualTotal)
	}
	return totals, nil
}

type VariabilityParams struct {
	Year     int
	RegionID string
	ParkCode string
	Query    string
	Limit    int
}

// Variability ranks parks by the population standard deviation of their
// monthly totals within a year. The store supplies n, Σv, and Σv²; the
// statistical moments are computed here so the guards stay auditable. The
// full set is sorted and then truncated to the limit.
func Variability(d *gorm.DB, p VariabilityParams) ([]VariabilityOut, error) {
	if p.Limit <= 0 {
		p.Limit = 10
	}

	var rows []struct {
		ParkCode   string
		ParkName   string
		RegionID   *string
		RegionName *string
		Year       int
		NMonths    int
		SumV       float64
		SumV2      float64
	}
	err := parkAggregateScope(d, p.RegionID, p.ParkCode, p.Query).
		Select(`parks.park_code, parks.park_name,
			regions.region_id AS region_id, regions.region_name,
			monthly_visits.year,
			COUNT(monthly_visits.month) AS n_months,
			SUM(monthly_visits.total_visits) AS sum_v,
			SUM(monthly_visits.total_visits * monthly_visits.total_visits) AS sum_v2`).
		Where("monthly_visits.year = ?", p.Year).
		Group(`parks.park_code, parks.park_name,
			regions.region_id, regions.region_name, monthly_visits.year`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]VariabilityOut, 0, len(rows))
	for _, r := range rows {
		mean, stdDev := populationStdDev(r.NMonths, r.SumV, r.SumV2)
		out = append(out, VariabilityOut{
			ParkCode:            r.ParkCode,
			ParkName:            r.ParkName,
			RegionID:            r.RegionID,
			RegionName:          r.RegionName,
			Year:                r.Year,
			AvgMonthlyVisits:    roundToInt(mean),
			StdDevMonthlyVisits: roundToInt(stdDev),
			MonthsWithData:      r.NMonths,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StdDevMonthlyVisits > out[j].StdDevMonthlyVisits
	})
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

type MetricParams struct {
	Year     int
	Metric   string
	RegionID string
	Limit    int
}

// MetricTotals sums one whitelisted auxiliary counter per park for a year.
// Metrics outside the whitelist are rejected by name before any query runs.
func MetricTotals(d *gorm.DB, p MetricParams) ([]MetricParkOut, error) {
	column, ok := MetricColumns[p.Metric]
	if !ok {
		return nil, badRequest("Unsupported metric: " + p.Metric)
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}

	var rows []struct {
		ParkCode    string
		ParkName    string
		RegionID    *string
		RegionName  *string
		Year        int
		MetricTotal int64
	}
	err := parkAggregateScope(d, p.RegionID, "", "").
		Select(`parks.park_code, parks.park_name,
			regions.region_id AS region_id, regions.region_name,
			monthly_visits.year,
			SUM(monthly_visits.`+column+`) AS metric_total`).
		Where("monthly_visits.year = ?", p.Year).
		Group(`parks.park_code, parks.park_name,
			regions.region_id, regions.region_name, monthly_visits.year`).
		Order("metric_total DESC").
		Limit(p.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	out := make([]MetricParkOut, 0, len(rows))
	for _, r := range rows {
		out = append(out, MetricParkOut{
			ParkCode:    r.ParkCode,
			ParkName:    r.ParkName,
			RegionID:    r.RegionID,
			RegionName:  r.RegionName,
			Year:        r.Year,
			MetricTotal: int(r.MetricTotal),
		})
	}
	return out, nil
}

// YearBounds reports the minimum and maximum year present in the store, for
// the dashboard's year selectors.
func YearBounds(d *gorm.DB) (YearBoundsOut, error) {
	var row struct {
		MinYear *int
		MaxYear *int
	}
	err := d.Table("monthly_visits").
		Select("MIN(year) AS min_year, MAX(year) AS max_year").
		Scan(&row).Error
	if err != nil {
		return YearBoundsOut{}, err
	}
	if row.MinYear == nil || row.MaxYear == nil {
		return YearBoundsOut{}, ErrNoRows
	}
	return YearBoundsOut{MinYear: *row.MinYear, MaxYear: *row.MaxYear}, nil
}
