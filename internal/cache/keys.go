package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func RunStatusKey(runID uuid.UUID) string {
	return fmt.Sprintf("run:%s", runID)
}

func OverviewKey(brandID uuid.UUID, days int) string {
	return fmt.Sprintf("overview:%s:%d", brandID, days)
}

func ComparisonKey(brandID uuid.UUID, days int) string {
	return fmt.Sprintf("comparison:%s:%d", brandID, days)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
