package geo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Timezone string  `json:"timezone"`
}

const defaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// IPProvider locates the machine from its public IP address using
// ip-api.com, a free service that needs no API key.
type IPProvider struct {
	httpClient *http.Client
	log        zerolog.Logger
	// URL defaults to ip-api.com; tests point it at httptest.
	URL string
}

// NewIPProvider creates an IPProvider with a 5s timeout.
func NewIPProvider(log zerolog.Logger) *IPProvider {
	return &IPProvider{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		log:        log,
		URL:        defaultIPAPIURL,
	}
}

// Locate implements Provider. Every failure wraps ErrLocationUnavailable.
func (p *IPProvider) Locate(ctx context.Context) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("%w: geolocation request failed: %w", ErrLocationUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: geolocation API returned status %d", ErrLocationUnavailable, resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Location{}, fmt.Errorf("%w: failed to decode geolocation response: %w", ErrLocationUnavailable, err)
	}

	if result.Status != "success" {
		return Location{}, fmt.Errorf("%w: geolocation failed: %s", ErrLocationUnavailable, result.Message)
	}

	loc := Location{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		City:      result.City,
		Country:   result.Country,
		Timezone:  result.Timezone,
	}
	p.log.Debug().
		Float64("lat", loc.Latitude).
		Float64("lon", loc.Longitude).
		Str("city", loc.City).
		Msg("detected location from ip")
	return loc, nil
}
