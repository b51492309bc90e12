package npsapi

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parkpulse/nps-backend/internal/catalog"
)

// ImportParks fetches the park catalogue and upserts it. The upsert leaves
// region_id alone (the CSV backfill owns it) and only touches boundary when a
// fetch succeeded, so reruns never erase opportunistically-gathered data.
func ImportParks(ctx context.Context, d *gorm.DB, c *Client, withBoundaries bool) (int, error) {
	parks, err := c.FetchParks(ctx)
	if err != nil {
		return 0, err
	}

	began := time.Now()
	upserted := 0
	for _, park := range parks {
		var boundary string
		if withBoundaries {
			boundary, err = c.FetchBoundary(ctx, park.ParkCode)
			if err != nil {
				// Boundary is optional data; record absence and move on.
				logError("boundary "+park.ParkCode, err)
				boundary = ""
			}
		}

		err := d.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "park_code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"park_name", "states", "designation",
				"latitude", "longitude", "description", "website",
			}),
		}).Create(&park).Error
		if err != nil {
			return upserted, err
		}

		if boundary != "" {
			err = d.Model(&catalog.Park{}).
				Where("park_code = ?", park.ParkCode).
				Update("boundary", boundary).Error
			if err != nil {
				return upserted, err
			}
		}
		upserted++
	}

	logUpsert(upserted, time.Since(began))
	return upserted, nil
}
