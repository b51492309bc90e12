package npsapi

import (
	"log"
	"time"
)

func logRequest(method, url string, start int) {
	log.Printf("[nps] %s %s start=%d", method, url, start)
}

func logResponse(statusCode int, duration time.Duration, resultCount int) {
	log.Printf("[nps] response status=%d duration=%dms results=%d",
		statusCode, duration.Milliseconds(), resultCount)
}

func logError(operation string, err error) {
	log.Printf("[nps] %s error: %v", operation, err)
}

func logUpsert(count int, duration time.Duration) {
	log.Printf("[nps] upserted %d parks in %dms", count, duration.Milliseconds())
}
