package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/geo"
)

const testDir = "/cache"

var riyadh = api.Query{Latitude: 24.7136, Longitude: 46.6753, Method: 4, School: -1}

func sampleAPIResponse() *api.Response {
	return &api.Response{
		Code:   200,
		Status: "OK",
		Data: api.Data{
			Timings: api.Timings{
				Fajr:       "04:32",
				Sunrise:    "05:52",
				Dhuhr:      "11:51",
				Asr:        "15:13",
				Sunset:     "17:50",
				Maghrib:    "17:50",
				Isha:       "19:20",
				Imsak:      "04:22",
				Midnight:   "23:51",
				Firstthird: "21:51",
				Lastthird:  "01:51",
			},
			Date: api.DateInfo{
				Readable: "19 Oct 2026",
				Hijri: api.HijriDate{
					Day:   "7",
					Month: api.HijriMonth{Number: 5, En: "Jumādá al-ūlá", Ar: "جُمادى الأولى"},
					Year:  "1448",
				},
			},
			Meta: api.Meta{
				Latitude:  24.7136,
				Longitude: 46.6753,
				Timezone:  "Asia/Riyadh",
				Method:    api.MethodInfo{ID: 4, Name: "Umm Al-Qura University, Makkah"},
			},
		},
	}
}

func sampleCalendarResponse(days int) *api.CalendarResponse {
	data := make([]api.Data, days)
	for i := range data {
		data[i] = sampleAPIResponse().Data
		data[i].Date.Readable = fmt.Sprintf("%d Oct 2026", i+1)
	}
	return &api.CalendarResponse{Code: 200, Status: "OK", Data: data}
}

func newMemStore(t *testing.T) (*FileStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	c, err := NewFileStore(fs, testDir)
	require.NoError(t, err)
	return c, fs
}

func TestNewFileStore_CreatesDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := filepath.Join("/home", "u", ".cache", "salah-clock")

	c, err := NewFileStore(fs, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, c.Dir())

	ok, err := afero.DirExists(fs, dir)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewFileStore_ReadOnlyFs(t *testing.T) {
	_, err := NewFileStore(afero.NewReadOnlyFs(afero.NewMemMapFs()), testDir)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// Timings
// ---------------------------------------------------------------------------

func TestTimings_RoundTrip(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveTimings(ctx, date, riyadh, sampleAPIResponse()))

	entry := c.LoadTimings(ctx, date, riyadh)
	require.NotNil(t, entry)
	assert.Equal(t, "04:32", entry.Timings.Fajr)
	assert.Equal(t, "19:20", entry.Timings.Isha)
	assert.Equal(t, "Asia/Riyadh", entry.Meta.Timezone)
	assert.Equal(t, "1448", entry.Day.Hijri.Year)
	assert.Equal(t, 4, entry.Method)

	resp := entry.Response()
	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, sampleAPIResponse().Data, resp.Data)
}

func TestTimings_CacheMiss(t *testing.T) {
	c, _ := newMemStore(t)

	entry := c.LoadTimings(context.Background(), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), riyadh)
	assert.Nil(t, entry)
}

func TestTimings_DifferentDate(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()
	today := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveTimings(ctx, today, riyadh, sampleAPIResponse()))

	assert.Nil(t, c.LoadTimings(ctx, today.AddDate(0, 0, 1), riyadh))
}

func TestTimings_StaleEntryUnderSameKey(t *testing.T) {
	c, fs := newMemStore(t)
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	// An entry whose recorded date disagrees with its file name is stale.
	stale := TimingsEntry{Date: "2026-10-18", Timings: sampleAPIResponse().Data.Timings}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	name := fmt.Sprintf(timingsFile, hashKey("2026-10-19", riyadh))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDir, name), data, 0o644))

	assert.Nil(t, c.LoadTimings(context.Background(), date, riyadh))
}

func TestTimings_KeyedByParameters(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.SaveTimings(ctx, date, riyadh, sampleAPIResponse()))

	tests := []struct {
		name string
		q    api.Query
	}{
		{"other method", api.Query{Latitude: 24.7136, Longitude: 46.6753, Method: 2, School: -1}},
		{"other school", api.Query{Latitude: 24.7136, Longitude: 46.6753, Method: 4, School: 1}},
		{"other coordinates", api.Query{Latitude: 21.4225, Longitude: 39.8262, Method: 4, School: -1}},
		{"city", api.Query{City: "Riyadh", Country: "Saudi Arabia", Method: 4, School: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, c.LoadTimings(ctx, date, tt.q))
		})
	}
}

func TestTimings_CorruptedFile(t *testing.T) {
	c, fs := newMemStore(t)
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	name := fmt.Sprintf(timingsFile, hashKey("2026-10-19", riyadh))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDir, name), []byte("{bad json"), 0o644))

	assert.Nil(t, c.LoadTimings(context.Background(), date, riyadh))
}

// ---------------------------------------------------------------------------
// Calendar
// ---------------------------------------------------------------------------

func TestCalendar_RoundTrip(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()

	require.NoError(t, c.SaveCalendar(ctx, 2026, 10, riyadh, sampleCalendarResponse(31)))

	entry := c.LoadCalendar(ctx, 2026, 10, riyadh)
	require.NotNil(t, entry)
	assert.Equal(t, "2026-10", entry.Month)
	assert.Len(t, entry.Days, 31)
	assert.Equal(t, "31 Oct 2026", entry.Days[30].Date.Readable)
}

func TestCalendar_Misses(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()
	require.NoError(t, c.SaveCalendar(ctx, 2026, 10, riyadh, sampleCalendarResponse(31)))

	assert.Nil(t, c.LoadCalendar(ctx, 2026, 11, riyadh), "different month")
	assert.Nil(t, c.LoadCalendar(ctx, 2027, 10, riyadh), "different year")
	assert.Nil(t, c.LoadCalendar(ctx, 2026, 10, api.Query{City: "Jeddah", Country: "SA", Method: 4, School: -1}), "different location")
}

func TestCalendar_EmptyIsMiss(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()
	require.NoError(t, c.SaveCalendar(ctx, 2026, 10, riyadh, sampleCalendarResponse(0)))

	assert.Nil(t, c.LoadCalendar(ctx, 2026, 10, riyadh))
}

// ---------------------------------------------------------------------------
// Geo
// ---------------------------------------------------------------------------

func TestGeo_RoundTrip(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()
	loc := geo.Location{Latitude: 51.5074, Longitude: -0.1278, City: "London", Country: "United Kingdom", Timezone: "Europe/London"}

	require.NoError(t, c.SaveGeo(ctx, &loc))

	got := c.LoadGeo(ctx)
	require.NotNil(t, got)
	assert.Equal(t, loc, *got)
}

func TestGeo_CacheMiss(t *testing.T) {
	c, _ := newMemStore(t)
	assert.Nil(t, c.LoadGeo(context.Background()))
}

func TestGeo_ExpiredTTL(t *testing.T) {
	c, _ := newMemStore(t)
	ctx := context.Background()
	saved := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	c.now = func() time.Time { return saved }
	require.NoError(t, c.SaveGeo(ctx, &geo.Default))

	c.now = func() time.Time { return saved.Add(23 * time.Hour) }
	assert.NotNil(t, c.LoadGeo(ctx), "still fresh after 23h")

	c.now = func() time.Time { return saved.Add(25 * time.Hour) }
	assert.Nil(t, c.LoadGeo(ctx), "expired after 25h")
}

func TestGeo_CorruptedFile(t *testing.T) {
	c, fs := newMemStore(t)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(testDir, geoFile), []byte("{bad json"), 0o644))

	assert.Nil(t, c.LoadGeo(context.Background()))
}

func TestFileStore_ImplementsStores(t *testing.T) {
	var _ Store = (*FileStore)(nil)
	var _ Store = (*RedisStore)(nil)
	var _ geo.Store = (*FileStore)(nil)
}
