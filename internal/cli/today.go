package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/clock"
	"github.com/smokyabdulrahman/salah-clock/internal/display"
	"github.com/smokyabdulrahman/salah-clock/internal/logging"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

// today is everything the schedule views print.
type today struct {
	Target   target
	Zone     string
	Now      clock.Reading
	Day      api.Data
	Selected []prayer.Timing
	Current  string
	Next     prayer.Result
}

func runToday(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, logging.CLILevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	t, err := e.resolveTarget(ctx)
	if err != nil {
		return err
	}

	now := timeNow()
	resp, err := e.fetchNow(ctx, now, t)
	if err != nil {
		return err
	}

	d, err := buildToday(t, resp.Data, now, selectedPrayers(e.cfg.Prayers))
	if err != nil {
		return err
	}

	lang := language(e.cfg, prayer.LangEnglish)
	layout := timeLayout(e.cfg.TimeFormat)
	if FlagJSON {
		return printTodayJSON(e.out, d, layout)
	}
	printTodayRich(e.out, d, lang, layout)
	return nil
}

// buildToday resolves the current and next prayer of data at now. The
// countdown always runs over the canonical daily set; selected only
// narrows what is listed.
func buildToday(t target, data api.Data, now time.Time, selected []string) (*today, error) {
	zone, err := zoneFor(t, data.Meta)
	if err != nil {
		return nil, err
	}
	r := clock.ReadingAt(now.In(zone))

	daily := prayer.FromAPI(data.Timings)
	next, err := prayer.Resolve(daily, r)
	if err != nil {
		return nil, err
	}
	current, ok, err := prayer.Current(daily, r)
	if err != nil {
		return nil, err
	}

	d := &today{Target: t, Zone: zone.String(), Now: r, Day: data, Next: next}
	if ok {
		d.Current = current.Name
	}
	for _, name := range selected {
		raw, ok := data.Timings.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown prayer name: %s", name)
		}
		d.Selected = append(d.Selected, prayer.Timing{Name: name, Time: raw})
	}
	return d, nil
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func printTodayRich(w io.Writer, d *today, lang, layout string) {
	txt := display.TextFor(lang)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(txt.Title))
	fmt.Fprintln(w)

	place := d.Target.Place()
	if d.Target.Fallback {
		place += display.Dim(" (default)")
	}
	fmt.Fprintf(w, "  %s\n", place)
	fmt.Fprintf(w, "  %s\n", display.Gray(d.Zone))
	fmt.Fprintf(w, "  %s\n", display.FormatDate(d.Now.At, lang))
	if h := hijriFor(d.Day.Date.Hijri, lang); h != "" {
		fmt.Fprintf(w, "  %s\n", h)
	}
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"", "", ""})
	tbl.HideHeader()
	for i, p := range d.Selected {
		row := []string{prayer.Icons[p.Name], prayer.Label(p.Name, lang), prayer.FormatClock(p.Time, layout)}
		switch p.Name {
		case d.Next.Name:
			row[2] += "  <- " + txt.In + " " + d.Next.Remaining
			tbl.SetHighlightRow(i)
		case d.Current:
			row[1] = display.Dim(row[1])
		}
		tbl.AddRow(row)
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location locationJSON      `json:"location"`
	Date     dateJSON          `json:"date"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current"`
	Next     nextJSON          `json:"next"`
}

type locationJSON struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Fallback  bool    `json:"fallback,omitempty"`
}

type dateJSON struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri"`
}

type nextJSON struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Minutes   int    `json:"minutes"`
	Tomorrow  bool   `json:"tomorrow,omitempty"`
}

func newLocationJSON(t target, zone string, meta api.Meta) locationJSON {
	loc := locationJSON{
		City:      t.Location.City,
		Country:   t.Location.Country,
		Timezone:  zone,
		Latitude:  meta.Latitude,
		Longitude: meta.Longitude,
		Fallback:  t.Fallback,
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		loc.Latitude, loc.Longitude = t.Location.Latitude, t.Location.Longitude
	}
	return loc
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, d *today, layout string) error {
	timings := make(map[string]string, len(d.Selected))
	for _, p := range d.Selected {
		timings[strings.ToLower(p.Name)] = prayer.FormatClock(p.Time, layout)
	}

	out := todayJSON{
		Location: newLocationJSON(d.Target, d.Zone, d.Day.Meta),
		Date: dateJSON{
			Gregorian: d.Now.At.Format("02 Jan 2006"),
			Hijri:     d.Day.Date.Hijri.Format(),
		},
		Timings: timings,
		Current: strings.ToLower(d.Current),
		Next: nextJSON{
			Prayer:    strings.ToLower(d.Next.Name),
			Time:      prayer.FormatClock(d.Next.Time, layout),
			Remaining: d.Next.Remaining,
			Minutes:   d.Next.Minutes,
			Tomorrow:  d.Next.Wrapped,
		},
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
