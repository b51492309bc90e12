package visits

// MonthlyVisit is one calendar month of recorded visitation for one park.
// The (park_code, year, month) triple is the primary key, so at most one row
// exists per park per month. Missing months are legal and mean "no data",
// never zero.
type MonthlyVisit struct {
	ParkCode string `gorm:"primaryKey;column:park_code" json:"park_code"`
	Year     int    `gorm:"primaryKey" json:"year"`
	Month    int    `gorm:"primaryKey" json:"month"`

	RecreationVisits    int `json:"recreation_visits"`
	NonRecreationVisits int `json:"non_recreation_visits"`
	// TotalVisits is derived at load time (recreation + non-recreation) and
	// never recomputed afterwards.
	TotalVisits                 int `json:"total_visits"`
	ConcessionerLodging         int `json:"concessioner_lodging"`
	ConcessionerCamping         int `json:"concessioner_camping"`
	TentCampers                 int `json:"tent_campers"`
	RVCampers                   int `gorm:"column:rv_campers" json:"rv_campers"`
	Backcountry                 int `json:"backcountry"`
	NonRecreationOvernightStays int `json:"non_recreation_overnight_stays"`
	MiscellaneousOvernightStays int `json:"miscellaneous_overnight_stays"`
}

func (MonthlyVisit) TableName() string {
	return "monthly_visits"
}

// MetricColumns is the whitelist for the arbitrary-metric sum operation.
// Requests naming any other column are rejected before a query runs.
var MetricColumns = map[string]string{
	"concessioner_lodging":           "concessioner_lodging",
	"concessioner_camping":           "concessioner_camping",
	"tent_campers":                   "tent_campers",
	"rv_campers":                     "rv_campers",
	"backcountry":                    "backcountry",
	"non_recreation_overnight_stays": "non_recreation_overnight_stays",
	"miscellaneous_overnight_stays":  "miscellaneous_overnight_stays",
}

// Response records. Field sets follow the dashboard contract; region fields
// are pointers because a park may be temporarily unassigned to a region.

type MonthlyThresholdOut struct {
	Month          int  `json:"month"`
	TotalVisits    int  `json:"total_visits"`
	AboveThreshold bool `json:"above_threshold"`
}

type AnnualParkVisitsOut struct {
	ParkCode          string   `json:"park_code"`
	ParkName          string   `json:"park_name"`
	RegionID          *string  `json:"region_id,omitempty"`
	RegionName        *string  `json:"region_name,omitempty"`
	Year              int      `json:"year"`
	AnnualTotalVisits int      `json:"annual_total_visits"`
	State             string   `json:"state,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
}

type AvgMonthlyVisitsOut struct {
	ParkCode         string  `json:"park_code"`
	ParkName         string  `json:"park_name"`
	RegionID         *string `json:"region_id,omitempty"`
	RegionName       *string `json:"region_name,omitempty"`
	StartYear        int     `json:"start_year"`
	EndYear          int     `json:"end_year"`
	AvgMonthlyVisits int     `json:"avg_monthly_visits"`
}

type ParkAboveAverageOut struct {
	ParkCode              string  `json:"park_code"`
	ParkName              string  `json:"park_name"`
	RegionID              *string `json:"region_id,omitempty"`
	RegionName            *string `json:"region_name,omitempty"`
	Year                  int     `json:"year"`
	AnnualTotalVisits     int     `json:"annual_total_visits"`
	SystemAverageVisits   int     `json:"system_average_visits"`
	DifferenceFromAverage int     `json:"difference_from_average"`
	PercentAboveAverage   int     `json:"percent_above_average"`
}

type TopParkOut struct {
	Rank              int    `json:"rank"`
	ParkCode          string `json:"park_code"`
	ParkName          string `json:"park_name"`
	Year              int    `json:"year"`
	AnnualTotalVisits int    `json:"annual_total_visits"`
}

type RegionAnnualVisitsOut struct {
	RegionID          string `json:"region_id"`
	RegionName        string `json:"region_name"`
	Year              int    `json:"year"`
	AnnualTotalVisits int    `json:"annual_total_visits"`
	Rank              int    `json:"rank"`
}

type MonthToMonthChangeOut struct {
	Month       int  `json:"month"`
	TotalVisits int  `json:"total_visits"`
	// ChangeFromPrevious is nil for the first available month of the year and
	// for any month whose immediate predecessor has no row.
	ChangeFromPrevious *int `json:"change_from_previous"`
}

type GrowthOut struct {
	ParkCode      string `json:"park_code"`
	ParkName      string `json:"park_name"`
	RegionID      string `json:"region_id"`
	RegionName    string `json:"region_name"`
	StartYear     int    `json:"start_year"`
	EndYear       int    `json:"end_year"`
	StartTotal    int    `json:"start_total"`
	EndTotal      int    `json:"end_total"`
	GrowthPercent int    `json:"growth_percent"`
}

type VariabilityOut struct {
	ParkCode            string  `json:"park_code"`
	ParkName            string  `json:"park_name"`
	RegionID            *string `json:"region_id,omitempty"`
	RegionName          *string `json:"region_name,omitempty"`
	Year                int     `json:"year"`
	AvgMonthlyVisits    int     `json:"avg_monthly_visits"`
	StdDevMonthlyVisits int     `json:"std_dev_monthly_visits"`
	MonthsWithData      int     `json:"months_with_data"`
}

type MetricParkOut struct {
	ParkCode    string  `json:"park_code"`
	ParkName    string  `json:"park_name"`
	RegionID    *string `json:"region_id,omitempty"`
	RegionName  *string `json:"region_name,omitempty"`
	Year        int     `json:"year"`
	MetricTotal int     `json:"metric_total"`
}

type YearBoundsOut struct {
	MinYear int `json:"min_year"`
	MaxYear int `json:"max_year"`
}
