package catalog

import (
	"github.com/lib/pq"
)

// Region is one of the fixed NPS administrative areas (Alaska, Intermountain,
// Midwest, National Capital, Northeast, Pacific West, Southeast).
type Region struct {
	RegionID    string  `gorm:"primaryKey;column:region_id" json:"region_id"`
	RegionName  string  `gorm:"not null" json:"region_name"`
	Description *string `json:"description,omitempty"`

	Parks []Park `gorm:"foreignKey:RegionID" json:"parks,omitempty"`
}

func (Region) TableName() string {
	return "regions"
}

// Park is a single NPS-managed unit, keyed by its short unit code. Codes are
// uppercased before they reach the store and at every query boundary.
type Park struct {
	ParkCode    string         `gorm:"primaryKey;column:park_code" json:"park_code"`
	ParkName    string         `gorm:"not null" json:"park_name"`
	States      pq.StringArray `gorm:"type:text" json:"states"`
	Designation string         `json:"designation"`
	RegionID    *string        `gorm:"index" json:"region_id,omitempty"`
	Latitude    *float64       `json:"latitude,omitempty"`
	Longitude   *float64       `json:"longitude,omitempty"`
	Description *string        `json:"description,omitempty"`
	Website     *string        `json:"website,omitempty"`
	Boundary    *string        `json:"boundary,omitempty"` // GeoJSON as string

	Region *Region `gorm:"foreignKey:RegionID;references:RegionID" json:"region,omitempty"`
}

func (Park) TableName() string {
	return "parks"
}

// ParkDetailOut is the full park record for the detail panel and the boundary
// overlay on the map.
type ParkDetailOut struct {
	ParkCode    string   `json:"park_code"`
	ParkName    string   `json:"park_name"`
	State       string   `json:"state"`
	Designation string   `json:"designation"`
	RegionID    *string  `json:"region_id,omitempty"`
	RegionName  *string  `json:"region_name,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description *string  `json:"description,omitempty"`
	Website     *string  `json:"website,omitempty"`
	Boundary    *string  `json:"boundary,omitempty"`
}
