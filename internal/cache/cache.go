// Package cache keeps fetched prayer times and the detected location so
// repeated runs do not hit the network.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/geo"
)

const (
	geoTTL      = 24 * time.Hour
	timingsTTL  = 48 * time.Hour
	calendarTTL = 40 * 24 * time.Hour
)

// Store is implemented by FileStore and RedisStore. Load methods return
// nil on a miss, a stale entry, or a backend failure.
type Store interface {
	LoadTimings(ctx context.Context, date time.Time, q api.Query) *TimingsEntry
	SaveTimings(ctx context.Context, date time.Time, q api.Query, resp *api.Response) error
	LoadCalendar(ctx context.Context, year, month int, q api.Query) *CalendarEntry
	SaveCalendar(ctx context.Context, year, month int, q api.Query, resp *api.CalendarResponse) error
	geo.Store
}

// TimingsEntry stores a day's prayer times along with metadata for validation.
type TimingsEntry struct {
	Date    string       `json:"date"` // YYYY-MM-DD
	Method  int          `json:"method"`
	School  int          `json:"school"`
	Timings api.Timings  `json:"timings"`
	Day     api.DateInfo `json:"day"`
	Meta    api.Meta     `json:"meta"`
}

// Response rebuilds the API response the entry was saved from.
func (e *TimingsEntry) Response() *api.Response {
	return &api.Response{
		Code:   200,
		Status: "OK",
		Data:   api.Data{Timings: e.Timings, Date: e.Day, Meta: e.Meta},
	}
}

// CalendarEntry stores a month of prayer times.
type CalendarEntry struct {
	Month  string     `json:"month"` // YYYY-MM
	Method int        `json:"method"`
	School int        `json:"school"`
	Days   []api.Data `json:"days"`
}

// GeoEntry stores a located position with the time it was cached.
type GeoEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

func newTimingsEntry(date time.Time, q api.Query, resp *api.Response) TimingsEntry {
	return TimingsEntry{
		Date:    date.Format(time.DateOnly),
		Method:  q.Method,
		School:  q.School,
		Timings: resp.Data.Timings,
		Day:     resp.Data.Date,
		Meta:    resp.Data.Meta,
	}
}

func newCalendarEntry(year, month int, q api.Query, resp *api.CalendarResponse) CalendarEntry {
	return CalendarEntry{
		Month:  monthKey(year, month),
		Method: q.Method,
		School: q.School,
		Days:   resp.Data,
	}
}

func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// hashKey builds a deterministic hash from the parameters that affect
// prayer times, so different locations, methods and schools never share
// an entry.
func hashKey(period string, q api.Query) string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%d|%d", period, q.Latitude, q.Longitude, q.City, q.Country, q.Method, q.School)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}
