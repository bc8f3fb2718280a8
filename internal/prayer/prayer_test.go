package prayer

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/clock"
)

// riyadhDay is the fixture day used across the resolver tests.
func riyadhDay() []Timing {
	return []Timing{
		{"Fajr", "05:00"},
		{"Sunrise", "06:15"},
		{"Dhuhr", "12:10"},
		{"Asr", "15:30"},
		{"Maghrib", "18:05"},
		{"Isha", "19:35"},
	}
}

func at(hour, minute, second int) clock.Reading {
	return clock.Reading{Hour: hour, Minute: minute, Second: second}
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		now  clock.Reading
		want Result
	}{
		{"afternoon before Asr", at(13, 0, 0), Result{Name: "Asr", Time: "15:30", Remaining: "2:30", Minutes: 150}},
		{"after Isha wraps", at(20, 0, 0), Result{Name: "Fajr", Time: "05:00", Remaining: "9:00", Minutes: 540, Wrapped: true}},
		{"last minute of day", at(23, 59, 59), Result{Name: "Fajr", Time: "05:00", Remaining: "5:01", Minutes: 301, Wrapped: true}},
		{"one minute before Fajr", at(4, 59, 0), Result{Name: "Fajr", Time: "05:00", Remaining: "0:01", Minutes: 1}},
		{"midnight", at(0, 0, 0), Result{Name: "Fajr", Time: "05:00", Remaining: "5:00", Minutes: 300}},
		{"exactly Fajr counts as passed", at(5, 0, 0), Result{Name: "Sunrise", Time: "06:15", Remaining: "1:15", Minutes: 75}},
		{"exactly Isha wraps", at(19, 35, 30), Result{Name: "Fajr", Time: "05:00", Remaining: "9:25", Minutes: 565, Wrapped: true}},
		{"seconds ignored", at(15, 29, 59), Result{Name: "Asr", Time: "15:30", Remaining: "0:01", Minutes: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(riyadhDay(), tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// referenceDay is the six-timing set the scenarios below are stated for.
func referenceDay() []Timing {
	return []Timing{
		{"Fajr", "05:00"},
		{"Sunrise", "06:20"},
		{"Dhuhr", "12:00"},
		{"Asr", "15:30"},
		{"Maghrib", "18:45"},
		{"Isha", "20:00"},
	}
}

func TestResolve_ReferenceScenarios(t *testing.T) {
	tests := []struct {
		now       clock.Reading
		name      string
		time      string
		remaining string
	}{
		{at(13, 0, 0), "Asr", "15:30", "2:30"},
		{at(20, 0, 0), "Fajr", "05:00", "9:00"},
		{at(23, 59, 0), "Fajr", "05:00", "5:01"},
		{at(4, 59, 0), "Fajr", "05:00", "0:01"},
	}

	for _, tt := range tests {
		got, err := Resolve(referenceDay(), tt.now)
		if err != nil {
			t.Fatalf("%02d:%02d: unexpected error: %v", tt.now.Hour, tt.now.Minute, err)
		}
		if got.Name != tt.name || got.Time != tt.time || got.Remaining != tt.remaining {
			t.Errorf("Resolve(%02d:%02d) = {%s %s %s}, want {%s %s %s}",
				tt.now.Hour, tt.now.Minute, got.Name, got.Time, got.Remaining, tt.name, tt.time, tt.remaining)
		}
	}
}

// TestResolve_EveryMinute checks each minute of the day against a plain
// linear scan: the first timing strictly later wins, otherwise Fajr of the
// next day, and a timing is never its own next prayer.
func TestResolve_EveryMinute(t *testing.T) {
	day := referenceDay()
	mins := make([]int, len(day))
	for i, p := range day {
		h, m, err := ParseClock(p.Time)
		if err != nil {
			t.Fatal(err)
		}
		mins[i] = h*60 + m
	}

	for cur := 0; cur < 24*60; cur++ {
		got, err := Resolve(day, at(cur/60, cur%60, 0))
		if err != nil {
			t.Fatalf("minute %d: %v", cur, err)
		}

		wantIdx, wantMin, wrapped := 0, 24*60-cur+mins[0], true
		for i, m := range mins {
			if m > cur {
				wantIdx, wantMin, wrapped = i, m-cur, false
				break
			}
		}

		if got.Name != day[wantIdx].Name || got.Minutes != wantMin || got.Wrapped != wrapped {
			t.Fatalf("minute %d: got {%s %d %v}, want {%s %d %v}",
				cur, got.Name, got.Minutes, got.Wrapped, day[wantIdx].Name, wantMin, wrapped)
		}
		if got.Remaining != FormatRemaining(wantMin) {
			t.Fatalf("minute %d: remaining %q, want %q", cur, got.Remaining, FormatRemaining(wantMin))
		}
		for i, m := range mins {
			if m == cur && got.Name == day[i].Name && !got.Wrapped {
				t.Fatalf("minute %d: %s selected at its own time", cur, day[i].Name)
			}
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	now := at(13, 0, 0)
	first, err := Resolve(riyadhDay(), now)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, err := Resolve(riyadhDay(), now)
		if err != nil {
			t.Fatal(err)
		}
		if first != again {
			t.Fatalf("call %d: %+v != %+v", i, again, first)
		}
	}
}

func TestResolve_NormalizesZoneSuffix(t *testing.T) {
	timings := riyadhDay()
	timings[3].Time = "15:30 (+03)"

	got, err := Resolve(timings, at(13, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Time != "15:30" {
		t.Errorf("Time = %q, want 15:30", got.Time)
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Timing) []Timing
		wantErr error
	}{
		{"empty", func([]Timing) []Timing { return nil }, ErrNotCanonical},
		{"missing entry", func(ts []Timing) []Timing { return ts[:5] }, ErrNotCanonical},
		{"wrong name", func(ts []Timing) []Timing { ts[2].Name = "Zuhr"; return ts }, ErrNotCanonical},
		{"swapped names", func(ts []Timing) []Timing { ts[0], ts[1] = ts[1], ts[0]; return ts }, ErrNotCanonical},
		{"bad time", func(ts []Timing) []Timing { ts[1].Time = "6.15"; return ts }, ErrInvalidTimingFormat},
		{"hour out of range", func(ts []Timing) []Timing { ts[5].Time = "24:10"; return ts }, ErrInvalidTimingFormat},
		{"one digit minute", func(ts []Timing) []Timing { ts[4].Time = "18:5"; return ts }, ErrInvalidTimingFormat},
		{"signed hour", func(ts []Timing) []Timing { ts[0].Time = "+5:00"; return ts }, ErrInvalidTimingFormat},
		{"out of order", func(ts []Timing) []Timing { ts[3].Time = "11:00"; return ts }, ErrOutOfOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.mutate(riyadhDay()), at(13, 0, 0))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Current
// ---------------------------------------------------------------------------

func TestCurrent(t *testing.T) {
	tests := []struct {
		now    clock.Reading
		want   string
		wantOK bool
	}{
		{at(4, 0, 0), "", false},
		{at(5, 0, 0), "Fajr", true},
		{at(13, 0, 0), "Dhuhr", true},
		{at(23, 0, 0), "Isha", true},
	}

	for _, tt := range tests {
		got, ok, err := Current(riyadhDay(), tt.now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok != tt.wantOK || got.Name != tt.want {
			t.Errorf("Current(%02d:%02d) = %q,%v want %q,%v", tt.now.Hour, tt.now.Minute, got.Name, ok, tt.want, tt.wantOK)
		}
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0:00"},
		{1, "0:01"},
		{59, "0:59"},
		{60, "1:00"},
		{150, "2:30"},
		{1439, "23:59"},
		{-5, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.minutes); got != tt.want {
			t.Errorf("FormatRemaining(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantH   int
		wantM   int
		wantErr bool
	}{
		{"simple HH:MM", "15:02", 15, 2, false},
		{"midnight", "00:00", 0, 0, false},
		{"single digit hour", "5:07", 5, 7, false},
		{"with timezone suffix", "15:02 (BST)", 15, 2, false},
		{"with spaces and suffix", "  05:17  (EET) ", 5, 17, false},
		{"invalid format", "bad", 0, 0, true},
		{"empty string", "", 0, 0, true},
		{"missing minute", "15:", 0, 0, true},
		{"non-numeric", "ab:cd", 0, 0, true},
		{"minute out of range", "10:60", 0, 0, true},
		{"three digit hour", "010:00", 0, 0, true},
		{"plus sign", "+5:00", 0, 0, true},
		{"negative hour", "-0:30", 0, 0, true},
		{"signed minute", "05:+3", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m, err := ParseClock(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimingFormat) {
					t.Fatalf("ParseClock(%q) error = %v, want ErrInvalidTimingFormat", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.raw, err)
			}
			if h != tt.wantH || m != tt.wantM {
				t.Errorf("ParseClock(%q) = %02d:%02d, want %02d:%02d", tt.raw, h, m, tt.wantH, tt.wantM)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock("15:30", "3:04 PM"); got != "3:30 PM" {
		t.Errorf("12h = %q", got)
	}
	if got := FormatClock("05:00", "15:04"); got != "05:00" {
		t.Errorf("24h = %q", got)
	}
	if got := FormatClock("garbage", "15:04"); got != "garbage" {
		t.Errorf("passthrough = %q", got)
	}
}

func TestFromAPI(t *testing.T) {
	got := FromAPI(api.Timings{
		Fajr: "04:32", Sunrise: "05:52", Dhuhr: "11:51", Asr: "15:13",
		Sunset: "17:50", Maghrib: "17:50", Isha: "19:20", Imsak: "04:22",
	})
	want := []Timing{
		{"Fajr", "04:32"}, {"Sunrise", "05:52"}, {"Dhuhr", "11:51"},
		{"Asr", "15:13"}, {"Maghrib", "17:50"}, {"Isha", "19:20"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromAPI mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// ParseTimings
// ---------------------------------------------------------------------------

func TestParseTimings(t *testing.T) {
	timings := api.Timings{
		Fajr: "04:32 (+03)", Sunrise: "05:52", Dhuhr: "11:51",
		Asr: "15:13", Maghrib: "17:50", Isha: "19:20",
	}
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	loc := time.FixedZone("AST", 3*3600)

	got, err := ParseTimings(timings, date, loc, []string{"Fajr", "Isha"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Prayer{
		{Name: "Fajr", Time: time.Date(2026, 10, 19, 4, 32, 0, 0, loc)},
		{Name: "Isha", Time: time.Date(2026, 10, 19, 19, 20, 0, 0, loc)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseTimings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTimings_Errors(t *testing.T) {
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	if _, err := ParseTimings(api.Timings{Fajr: "05:00"}, date, time.UTC, []string{"Tahajjud"}); err == nil {
		t.Error("expected error for unknown name")
	}
	if _, err := ParseTimings(api.Timings{Fajr: "bad"}, date, time.UTC, []string{"Fajr"}); !errors.Is(err, ErrInvalidTimingFormat) {
		t.Errorf("expected ErrInvalidTimingFormat, got %v", err)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"fajr", "Fajr", true},
		{"ISHA", "Isha", true},
		{"lastThird", "Lastthird", true},
		{"tahajjud", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeName(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizeName(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("Asr", LangArabic); got != "العصر" {
		t.Errorf("Label(Asr, ar) = %q", got)
	}
	if got := Label("Asr", LangEnglish); got != "Asr" {
		t.Errorf("Label(Asr, en) = %q", got)
	}
	if got := Label("Unknown", LangArabic); got != "Unknown" {
		t.Errorf("Label(Unknown, ar) = %q", got)
	}
	for _, name := range Canonical {
		if _, ok := Icons[name]; !ok {
			t.Errorf("no icon for %s", name)
		}
	}
}
