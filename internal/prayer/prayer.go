package prayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/clock"
)

const minutesPerDay = 24 * 60

var (
	// ErrInvalidTimingFormat reports a time that is not HH:MM in 24h form.
	ErrInvalidTimingFormat = errors.New("invalid timing format")
	// ErrNotCanonical reports a timing set that is not exactly
	// Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha in that order.
	ErrNotCanonical = errors.New("timings are not the canonical daily set")
	// ErrOutOfOrder reports a timing earlier than the one before it.
	ErrOutOfOrder = errors.New("timings are not in chronological order")
)

// Canonical is the ordered daily set the countdown tracks.
var Canonical = []string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

// AllPrayerNames lists every event the API can return.
var AllPrayerNames = []string{
	"Fajr", "Sunrise", "Dhuhr", "Asr", "Sunset", "Maghrib", "Isha",
	"Imsak", "Midnight", "Firstthird", "Lastthird",
}

// Timing is one named HH:MM time of the day.
type Timing struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// Result is the next upcoming timing and the time left until it.
type Result struct {
	Name      string `json:"name"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"` // H:MM
	Minutes   int    `json:"minutes"`
	// Wrapped is set when every timing of the day has passed and the
	// result is the first timing of the next day.
	Wrapped bool `json:"wrapped"`
}

// FromAPI picks the canonical set out of an API record.
func FromAPI(t api.Timings) []Timing {
	out := make([]Timing, 0, len(Canonical))
	for _, name := range Canonical {
		raw, _ := t.Get(name)
		out = append(out, Timing{Name: name, Time: raw})
	}
	return out
}

// Resolve selects the first timing strictly after now, wrapping to the
// first timing of the next day once the last one has passed. A timing
// equal to the current minute counts as passed. Seconds are ignored.
func Resolve(timings []Timing, now clock.Reading) (Result, error) {
	mins, err := Validate(timings)
	if err != nil {
		return Result{}, err
	}

	current := now.Minutes()
	for i, m := range mins {
		if m > current {
			return newResult(timings[i].Name, m, m-current, false), nil
		}
	}

	return newResult(timings[0].Name, mins[0], minutesPerDay-current+mins[0], true), nil
}

func newResult(name string, at, remaining int, wrapped bool) Result {
	return Result{
		Name:      name,
		Time:      fmt.Sprintf("%02d:%02d", at/60, at%60),
		Remaining: FormatRemaining(remaining),
		Minutes:   remaining,
		Wrapped:   wrapped,
	}
}

// Validate checks that timings is the canonical set in order and returns
// each entry as minutes since midnight.
func Validate(timings []Timing) ([]int, error) {
	if len(timings) != len(Canonical) {
		return nil, fmt.Errorf("%w: got %d entries, want %d", ErrNotCanonical, len(timings), len(Canonical))
	}

	mins := make([]int, len(timings))
	for i, t := range timings {
		if t.Name != Canonical[i] {
			return nil, fmt.Errorf("%w: entry %d is %q, want %q", ErrNotCanonical, i, t.Name, Canonical[i])
		}
		h, m, err := ParseClock(t.Time)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name, err)
		}
		mins[i] = h*60 + m
		if i > 0 && mins[i] < mins[i-1] {
			return nil, fmt.Errorf("%w: %s %s is before %s %s", ErrOutOfOrder, t.Name, t.Time, timings[i-1].Name, timings[i-1].Time)
		}
	}
	return mins, nil
}

// Current returns the latest timing at or before now. ok is false before
// the first timing of the day.
func Current(timings []Timing, now clock.Reading) (t Timing, ok bool, err error) {
	mins, err := Validate(timings)
	if err != nil {
		return Timing{}, false, err
	}
	current := now.Minutes()
	for i := len(mins) - 1; i >= 0; i-- {
		if mins[i] <= current {
			return timings[i], true, nil
		}
	}
	return Timing{}, false, nil
}

// FormatRemaining renders minutes as H:MM (hours unpadded).
func FormatRemaining(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// ParseClock parses "HH:MM", dropping a zone suffix such as " (+03)".
func ParseClock(raw string) (hour, minute int, err error) {
	s := strings.TrimSpace(raw)
	if idx := strings.IndexByte(s, ' '); idx != -1 {
		s = s[:idx]
	}

	hh, mm, found := strings.Cut(s, ":")
	if !found || !digits(hh) || !digits(mm) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTimingFormat, raw)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 || len(hh) > 2 {
		return 0, 0, fmt.Errorf("%w: bad hour in %q", ErrInvalidTimingFormat, raw)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("%w: bad minute in %q", ErrInvalidTimingFormat, raw)
	}
	return hour, minute, nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders an HH:MM timing with a Go layout ("15:04", "3:04 PM").
// Unparseable input is returned as is.
func FormatClock(hhmm, layout string) string {
	h, m, err := ParseClock(hhmm)
	if err != nil {
		return hhmm
	}
	return time.Date(2000, 1, 1, h, m, 0, 0, time.UTC).Format(layout)
}

// Prayer is a timing anchored to a concrete date, used by the multi-day views.
type Prayer struct {
	Name string
	Time time.Time
}

// ParseTimings anchors the selected events of an API record to date in loc.
func ParseTimings(timings api.Timings, date time.Time, loc *time.Location, selected []string) ([]Prayer, error) {
	prayers := make([]Prayer, 0, len(selected))
	for _, name := range selected {
		raw, ok := timings.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}

		h, m, err := ParseClock(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s: %w", name, err)
		}

		prayers = append(prayers, Prayer{
			Name: name,
			Time: time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, loc),
		})
	}
	return prayers, nil
}

// NormalizeName matches name case-insensitively against AllPrayerNames.
func NormalizeName(name string) (string, bool) {
	for _, n := range AllPrayerNames {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}
