package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func strPtr(s string) *string { return &s }

// referenceRegions is the fixed NPS region list. Region codes match the
// region names used in the public visitation CSV exports.
var referenceRegions = []Region{
	{RegionID: "AKR", RegionName: "Alaska", Description: strPtr("Alaska Region")},
	{RegionID: "IMR", RegionName: "Intermountain", Description: strPtr("Intermountain Region")},
	{RegionID: "MWR", RegionName: "Midwest", Description: strPtr("Midwest Region")},
	{RegionID: "NCR", RegionName: "National Capital", Description: strPtr("National Capital Region")},
	{RegionID: "NER", RegionName: "Northeast", Description: strPtr("Northeast Region")},
	{RegionID: "PWR", RegionName: "Pacific West", Description: strPtr("Pacific West Region")},
	{RegionID: "SER", RegionName: "Southeast", Description: strPtr("Southeast Region")},
}

// SeedRegions inserts the reference region list, leaving existing rows alone
// so reruns are safe.
func SeedRegions(d *gorm.DB) error {
	return d.Clauses(clause.OnConflict{DoNothing: true}).Create(&referenceRegions).Error
}
