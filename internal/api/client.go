package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.aladhan.com/v1"

	requestsPerSecond = 4
	requestBurst      = 4
)

// ErrFetchFailure is matched (errors.Is) by every error the client returns
// for a failed fetch: transport errors, non-200 HTTP statuses, bodies that
// do not decode, and envelopes whose code is not 200.
var ErrFetchFailure = errors.New("failed to fetch prayer times")

// FetchError describes a failed fetch.
type FetchError struct {
	URL        string
	StatusCode int    // HTTP status, 0 for transport errors
	Code       int    // envelope code, 0 if the body was never decoded
	Status     string // envelope status or response body excerpt
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", ErrFetchFailure, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("%v: API error code=%d status=%s", ErrFetchFailure, e.Code, e.Status)
	default:
		return fmt.Sprintf("%v: API returned status %d: %s", ErrFetchFailure, e.StatusCode, e.Status)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailure }

// Query selects the location and calculation parameters of a request.
// A City with a Country switches the request to the *ByCity endpoints.
// Method and School use -1 for "let the API decide".
type Query struct {
	Latitude  float64
	Longitude float64
	City      string
	Country   string
	Method    int
	School    int
}

// ByCity reports whether the query addresses a city rather than coordinates.
func (q Query) ByCity() bool {
	return q.City != "" && q.Country != ""
}

func (q Query) values() url.Values {
	params := url.Values{}
	if q.ByCity() {
		params.Set("city", q.City)
		params.Set("country", q.Country)
	} else {
		params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', 6, 64))
		params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', 6, 64))
	}
	if q.Method >= 0 {
		params.Set("method", strconv.Itoa(q.Method))
	}
	if q.School >= 0 {
		params.Set("school", strconv.Itoa(q.School))
	}
	return params
}

// Client talks to the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
	// BaseURL defaults to the public API; tests point it at httptest.
	BaseURL string
}

// NewClient creates a client with a 10s timeout. Requests are paced to
// requestsPerSecond with a small burst.
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		log:        log,
		BaseURL:    defaultBaseURL,
	}
}

// FetchByTimestamp fetches the timings of the day containing ts, addressed
// by unix timestamp.
func (c *Client) FetchByTimestamp(ctx context.Context, ts time.Time, q Query) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%d", c.BaseURL, ts.Unix())
	if q.ByCity() {
		endpoint = fmt.Sprintf("%s/timingsByCity/%d", c.BaseURL, ts.Unix())
	}

	var resp Response
	if err := c.get(ctx, endpoint, q.values(), &resp, func() (int, string) { return resp.Code, resp.Status }); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchDay fetches the timings for a calendar date (DD-MM-YYYY path form).
func (c *Client) FetchDay(ctx context.Context, date time.Time, q Query) (*Response, error) {
	path := "timings"
	if q.ByCity() {
		path = "timingsByCity"
	}
	endpoint := fmt.Sprintf("%s/%s/%s", c.BaseURL, path, date.Format("02-01-2006"))

	var resp Response
	if err := c.get(ctx, endpoint, q.values(), &resp, func() (int, string) { return resp.Code, resp.Status }); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchCalendar fetches a whole month of timings.
func (c *Client) FetchCalendar(ctx context.Context, year, month int, q Query) (*CalendarResponse, error) {
	path := "calendar"
	if q.ByCity() {
		path = "calendarByCity"
	}
	endpoint := fmt.Sprintf("%s/%s/%d/%d", c.BaseURL, path, year, month)

	var resp CalendarResponse
	if err := c.get(ctx, endpoint, q.values(), &resp, func() (int, string) { return resp.Code, resp.Status }); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any, envelope func() (int, string)) error {
	reqURL := endpoint + "?" + params.Encode()

	if err := c.limiter.Wait(ctx); err != nil {
		return &FetchError{URL: reqURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &FetchError{URL: reqURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", reqURL).Msg("api request failed")
		return &FetchError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("url", reqURL).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api request")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &FetchError{URL: reqURL, StatusCode: resp.StatusCode, Status: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{URL: reqURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	code, status := envelope()
	switch {
	case code == 0:
		return &FetchError{URL: reqURL, StatusCode: resp.StatusCode, Err: errors.New("response has no envelope code")}
	case code != http.StatusOK:
		return &FetchError{URL: reqURL, StatusCode: resp.StatusCode, Code: code, Status: status}
	}

	return nil
}
