package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/cache"
	"github.com/smokyabdulrahman/salah-clock/internal/config"
	"github.com/smokyabdulrahman/salah-clock/internal/geo"
	"github.com/smokyabdulrahman/salah-clock/internal/logging"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

// Swapped by tests.
var (
	newAPIClient  = api.NewClient
	newIPProvider = func(log zerolog.Logger) geo.Provider { return geo.NewIPProvider(log) }
	cacheFs       = afero.NewOsFs()
	timeNow       = time.Now
)

// env bundles what the data commands share.
type env struct {
	cfg    *config.Config
	log    zerolog.Logger
	out    io.Writer
	store  cache.Store // nil when caching is disabled
	client *api.Client
}

func newEnv(cmd *cobra.Command, level zerolog.Level) (*env, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Language != "" && !prayer.ValidLanguage(cfg.Language) {
		return nil, fmt.Errorf("invalid language %q: must be en or ar", cfg.Language)
	}

	log := logging.Stderr(cfg.LogLevel, level)
	return &env{
		cfg:    cfg,
		log:    log,
		out:    cmd.OutOrStdout(),
		store:  openStore(cmd.Context(), cfg, log),
		client: newAPIClient(log),
	}, nil
}

// openStore prefers Redis when configured and falls back to the file
// cache. A cache that cannot be opened disables caching.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) cache.Store {
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err == nil {
			return cache.NewRedisStore(client, log)
		}
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using file cache")
	}

	fs, err := cache.NewFileStore(cacheFs, cfg.CacheDir)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		return nil
	}
	return fs
}

// target is the place timings are fetched for.
type target struct {
	Query    api.Query
	Location geo.Location
	Fallback bool
}

// Place renders the location for headers: "City, Country" or coordinates.
func (t target) Place() string {
	loc := t.Location
	if loc.City != "" && loc.Country != "" {
		return loc.City + ", " + loc.Country
	}
	return fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
}

// resolveTarget determines where to fetch for.
// Priority: coordinates > city > cached geolocation > IP auto-detect > Riyadh.
func (e *env) resolveTarget(ctx context.Context) (target, error) {
	cfg := e.cfg
	q := api.Query{
		Method: cfg.MethodOrDefault(api.DefaultMethod),
		School: cfg.SchoolOrDefault(-1),
	}

	if !cfg.HasCoordinates() && cfg.City != "" {
		if cfg.Country == "" {
			return target{}, fmt.Errorf("--country is required when using --city")
		}
		q.City, q.Country = cfg.City, cfg.Country
		return target{Query: q, Location: geo.Location{City: cfg.City, Country: cfg.Country}}, nil
	}

	var p geo.Provider
	switch {
	case cfg.HasCoordinates():
		p = geo.Static{Latitude: cfg.Latitude, Longitude: cfg.Longitude}
	case e.store != nil:
		p = geo.Cached{Provider: newIPProvider(e.log), Store: e.store, Log: e.log}
	default:
		p = newIPProvider(e.log)
	}

	res := geo.Resolve(ctx, p)
	if res.Fallback {
		e.log.Warn().
			Err(res.Err).
			Float64("lat", res.Location.Latitude).
			Float64("lon", res.Location.Longitude).
			Msg("using default location")
	}
	q.Latitude, q.Longitude = res.Location.Latitude, res.Location.Longitude
	return target{Query: q, Location: res.Location, Fallback: res.Fallback}, nil
}

// fetchNow returns the timings of the day containing now in the target's
// zone, using the cache when available. The zone may only be known from a
// cached or fetched response, so the neighbouring days are checked too.
func (e *env) fetchNow(ctx context.Context, now time.Time, t target) (*api.Response, error) {
	if e.store != nil {
		if entry := e.cachedNow(ctx, now, t); entry != nil {
			e.log.Debug().Str("date", entry.Date).Msg("timings served from cache")
			return entry.Response(), nil
		}
	}

	resp, err := e.client.FetchByTimestamp(ctx, now, t.Query)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		zone, err := zoneFor(t, resp.Data.Meta)
		if err != nil {
			e.log.Warn().Err(err).Msg("could not cache timings")
			return resp, nil
		}
		if err := e.store.SaveTimings(ctx, now.In(zone), t.Query, resp); err != nil {
			e.log.Warn().Err(err).Msg("could not cache timings")
		}
	}
	return resp, nil
}

// cachedNow finds the cached day that contains now in the entry's zone.
func (e *env) cachedNow(ctx context.Context, now time.Time, t target) *cache.TimingsEntry {
	for _, d := range []int{0, -1, 1} {
		entry := e.store.LoadTimings(ctx, now.UTC().AddDate(0, 0, d), t.Query)
		if entry == nil {
			continue
		}
		zone, err := zoneFor(t, entry.Meta)
		if err != nil {
			continue
		}
		if now.In(zone).Format(time.DateOnly) == entry.Date {
			return entry
		}
	}
	return nil
}

// fetchDate returns the timings of a calendar date.
func (e *env) fetchDate(ctx context.Context, date time.Time, t target) (*api.Response, error) {
	return e.cachedDay(ctx, date, t, func() (*api.Response, error) {
		return e.client.FetchDay(ctx, date, t.Query)
	})
}

func (e *env) cachedDay(ctx context.Context, date time.Time, t target, fetch func() (*api.Response, error)) (*api.Response, error) {
	if e.store != nil {
		if entry := e.store.LoadTimings(ctx, date, t.Query); entry != nil {
			e.log.Debug().Str("date", entry.Date).Msg("timings served from cache")
			return entry.Response(), nil
		}
	}

	resp, err := fetch()
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.store.SaveTimings(ctx, date, t.Query, resp); err != nil {
			e.log.Warn().Err(err).Msg("could not cache timings")
		}
	}
	return resp, nil
}

// dayData holds a single day's data for list/query output.
type dayData struct {
	Date time.Time
	api.Data
}

// fetchCalendarDays fetches `days` consecutive days starting from `start`.
// It uses the calendar endpoint (whole months) with caching.
func (e *env) fetchCalendarDays(ctx context.Context, start time.Time, days int, t target) ([]dayData, error) {
	type yearMonth struct {
		year, month int
	}
	monthData := make(map[yearMonth][]api.Data)

	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		ym := yearMonth{d.Year(), int(d.Month())}
		if _, ok := monthData[ym]; ok {
			continue
		}

		if e.store != nil {
			if entry := e.store.LoadCalendar(ctx, ym.year, ym.month, t.Query); entry != nil {
				monthData[ym] = entry.Days
				continue
			}
		}

		resp, err := e.client.FetchCalendar(ctx, ym.year, ym.month, t.Query)
		if err != nil {
			return nil, fmt.Errorf("calendar %d-%02d: %w", ym.year, ym.month, err)
		}
		monthData[ym] = resp.Data

		if e.store != nil {
			if err := e.store.SaveCalendar(ctx, ym.year, ym.month, t.Query, resp); err != nil {
				e.log.Warn().Err(err).Msg("could not cache calendar")
			}
		}
	}

	result := make([]dayData, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		month := monthData[yearMonth{d.Year(), int(d.Month())}]

		idx := d.Day() - 1
		if idx >= len(month) {
			return nil, fmt.Errorf("day %d out of range for %d-%02d (got %d days)", d.Day(), d.Year(), d.Month(), len(month))
		}
		result = append(result, dayData{Date: d, Data: month[idx]})
	}
	return result, nil
}

// zoneFor picks the timezone of the target: the detected one, else the
// API's.
func zoneFor(t target, meta api.Meta) (*time.Location, error) {
	tz := t.Location.Timezone
	if tz == "" {
		tz = meta.Timezone
	}
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// selectedPrayers returns the configured prayer list, or the daily set.
func selectedPrayers(list string) []string {
	if list == "" {
		return prayer.Canonical
	}
	names := strings.Split(list, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// hijriFor formats the Hijri date in lang.
func hijriFor(h api.HijriDate, lang string) string {
	if lang == prayer.LangArabic {
		return h.FormatArabic()
	}
	return h.Format()
}
