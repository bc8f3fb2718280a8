// Package geo finds the coordinates prayer times are computed for.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrLocationUnavailable is wrapped by every Provider failure.
var ErrLocationUnavailable = errors.New("location unavailable")

// Location holds geographic coordinates and the place they resolve to.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// Default is used when no provider can locate the user.
var Default = Location{
	Latitude:  24.7136,
	Longitude: 46.6753,
	City:      "Riyadh",
	Country:   "Saudi Arabia",
	Timezone:  "Asia/Riyadh",
}

// Provider yields the user's location.
type Provider interface {
	Locate(ctx context.Context) (Location, error)
}

// Static is a fixed location, typically from configuration.
type Static Location

// Locate implements Provider.
func (s Static) Locate(context.Context) (Location, error) {
	return Location(s), nil
}

// Store persists a located position between runs.
type Store interface {
	LoadGeo(ctx context.Context) *Location
	SaveGeo(ctx context.Context, loc *Location) error
}

// Cached serves the location from Store while it is fresh and asks
// Provider otherwise.
type Cached struct {
	Provider Provider
	Store    Store
	Log      zerolog.Logger
}

// Locate implements Provider. A failed save is logged, not returned.
func (c Cached) Locate(ctx context.Context) (Location, error) {
	if loc := c.Store.LoadGeo(ctx); loc != nil {
		return *loc, nil
	}

	loc, err := c.Provider.Locate(ctx)
	if err != nil {
		return Location{}, err
	}
	if err := c.Store.SaveGeo(ctx, &loc); err != nil {
		c.Log.Warn().Err(err).Msg("could not cache location")
	}
	return loc, nil
}

// Resolution is the outcome of Resolve. When Fallback is set, Location is
// Default and Err holds the reason the provider failed.
type Resolution struct {
	Location Location
	Fallback bool
	Err      error
}

// Resolve asks p for the location and substitutes Default on failure.
// It never fails; callers inspect Fallback.
func Resolve(ctx context.Context, p Provider) Resolution {
	if p == nil {
		return Resolution{Location: Default, Fallback: true, Err: fmt.Errorf("%w: no provider", ErrLocationUnavailable)}
	}
	loc, err := p.Locate(ctx)
	if err != nil {
		if !errors.Is(err, ErrLocationUnavailable) {
			err = fmt.Errorf("%w: %w", ErrLocationUnavailable, err)
		}
		return Resolution{Location: Default, Fallback: true, Err: err}
	}
	return Resolution{Location: loc}
}
