package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/geo"
)

const (
	timingsFile  = "timings_%s.json"
	calendarFile = "calendar_%s.json"
	geoFile      = "geolocation.json"
)

// FileStore is a Store backed by JSON files in one directory.
type FileStore struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

// DefaultDir returns ~/.cache/salah-clock.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "salah-clock"), nil
}

// NewFileStore creates the cache directory on fs. An empty dir means
// DefaultDir.
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &FileStore{fs: fs, dir: dir, now: time.Now}, nil
}

// Dir returns the directory entries are written to.
func (c *FileStore) Dir() string { return c.dir }

func (c *FileStore) read(name string, v any) bool {
	data, err := afero.ReadFile(c.fs, filepath.Join(c.dir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *FileStore) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := afero.WriteFile(c.fs, filepath.Join(c.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// LoadTimings implements Store. An entry for another date is a miss.
func (c *FileStore) LoadTimings(_ context.Context, date time.Time, q api.Query) *TimingsEntry {
	dateStr := date.Format(time.DateOnly)

	var entry TimingsEntry
	if !c.read(fmt.Sprintf(timingsFile, hashKey(dateStr, q)), &entry) {
		return nil
	}
	if entry.Date != dateStr {
		return nil
	}
	return &entry
}

// SaveTimings implements Store.
func (c *FileStore) SaveTimings(_ context.Context, date time.Time, q api.Query, resp *api.Response) error {
	entry := newTimingsEntry(date, q, resp)
	return c.write(fmt.Sprintf(timingsFile, hashKey(entry.Date, q)), entry)
}

// LoadCalendar implements Store.
func (c *FileStore) LoadCalendar(_ context.Context, year, month int, q api.Query) *CalendarEntry {
	key := monthKey(year, month)

	var entry CalendarEntry
	if !c.read(fmt.Sprintf(calendarFile, hashKey(key, q)), &entry) {
		return nil
	}
	if entry.Month != key || len(entry.Days) == 0 {
		return nil
	}
	return &entry
}

// SaveCalendar implements Store.
func (c *FileStore) SaveCalendar(_ context.Context, year, month int, q api.Query, resp *api.CalendarResponse) error {
	entry := newCalendarEntry(year, month, q, resp)
	return c.write(fmt.Sprintf(calendarFile, hashKey(entry.Month, q)), entry)
}

// LoadGeo implements geo.Store. Entries older than 24 hours are a miss.
func (c *FileStore) LoadGeo(context.Context) *geo.Location {
	var entry GeoEntry
	if !c.read(geoFile, &entry) {
		return nil
	}
	if c.now().Sub(entry.CachedAt) > geoTTL {
		return nil
	}
	return &entry.Location
}

// SaveGeo implements geo.Store.
func (c *FileStore) SaveGeo(_ context.Context, loc *geo.Location) error {
	return c.write(geoFile, GeoEntry{Location: *loc, CachedAt: c.now()})
}
