package digest

import (
	"context"
	"time"
)

// WeatherSource fetches today's forecast.
type WeatherSource interface {
	Today(ctx context.Context) (*Forecast, error)
}

// NewsSource fetches the first limit headlines in feed order.
type NewsSource interface {
	Top(ctx context.Context, limit int) ([]Headline, error)
}

// RunLedger records which calendar days already had a digest.
type RunLedger interface {
	// Claim marks day as done. It returns false if the day was already claimed.
	Claim(ctx context.Context, day time.Time, runID string) (bool, error)
}

// DayKey normalizes t to the YYYY-MM-DD date in its own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
