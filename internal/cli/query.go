package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-clock/internal/display"
	"github.com/smokyabdulrahman/salah-clock/internal/logging"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long: "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: " +
			strings.Join(prayer.AllPrayerNames, ", "),
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

// queryDays parses --days.
func queryDays(v string) (int, error) {
	switch v {
	case "":
		return 1, nil
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := parseDays(v)
	if err != nil {
		return 0, fmt.Errorf("invalid --days value %q: must be a positive integer, 'week', or 'month'", v)
	}
	return n, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, ok := prayer.NormalizeName(args[0])
	if !ok {
		return fmt.Errorf("unknown prayer %q; valid names: %s", args[0], strings.Join(prayer.AllPrayerNames, ", "))
	}

	days, err := queryDays(flagQueryDays)
	if err != nil {
		return err
	}

	e, err := newEnv(cmd, logging.CLILevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	t, err := e.resolveTarget(ctx)
	if err != nil {
		return err
	}

	layout := timeLayout(e.cfg.TimeFormat)
	lang := language(e.cfg, prayer.LangEnglish)
	now := timeNow()

	// Single day: use the daily endpoint.
	if days == 1 {
		resp, err := e.fetchNow(ctx, now, t)
		if err != nil {
			return err
		}
		zone, err := zoneFor(t, resp.Data.Meta)
		if err != nil {
			return err
		}
		raw, _ := resp.Data.Timings.Get(name)
		timeStr := prayer.FormatClock(raw, layout)

		if FlagJSON {
			return writeJSON(e.out, queryJSONSingle{
				Prayer: strings.ToLower(name),
				Time:   timeStr,
				Date:   now.In(zone).Format("02 Jan 2006"),
				Hijri:  resp.Data.Date.Hijri.Format(),
			})
		}
		fmt.Fprintf(e.out, "%s %s\n", prayer.Label(name, lang), timeStr)
		return nil
	}

	// Multi-day: use the calendar endpoint.
	daysList, err := e.fetchCalendarDays(ctx, now, days, t)
	if err != nil {
		return err
	}
	zone, err := zoneFor(t, daysList[0].Meta)
	if err != nil {
		return err
	}
	todayStr := now.In(zone).Format(time.DateOnly)

	if FlagJSON {
		out := queryJSONMulti{
			Location: newLocationJSON(t, zone.String(), daysList[0].Meta),
			Prayer:   strings.ToLower(name),
		}
		for _, dd := range daysList {
			raw, _ := dd.Timings.Get(name)
			out.Days = append(out.Days, queryJSONDay{
				Date:  dd.Date.In(zone).Format("02 Jan 2006"),
				Hijri: dd.Data.Date.Hijri.Format(),
				Time:  prayer.FormatClock(raw, layout),
			})
		}
		return writeJSON(e.out, out)
	}

	label := prayer.Label(name, lang)
	fmt.Fprintln(e.out)
	fmt.Fprintf(e.out, "  %s\n", display.Boldf("%s: %d", label, days))
	fmt.Fprintln(e.out)
	fmt.Fprintf(e.out, "  %s\n", t.Place())
	fmt.Fprintln(e.out)

	tbl := display.NewTable([]string{"Date", label})
	for i, dd := range daysList {
		date := dd.Date.In(zone)
		raw, _ := dd.Timings.Get(name)
		tbl.AddRow([]string{date.Format("Mon 02 Jan"), prayer.FormatClock(raw, layout)})
		if date.Format(time.DateOnly) == todayStr {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(e.out, tbl.Render())
	fmt.Fprintln(e.out)
	return nil
}

type queryJSONSingle struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Date   string `json:"date"`
	Hijri  string `json:"hijri"`
}

type queryJSONMulti struct {
	Location locationJSON   `json:"location"`
	Prayer   string         `json:"prayer"`
	Days     []queryJSONDay `json:"days"`
}

type queryJSONDay struct {
	Date  string `json:"date"`
	Hijri string `json:"hijri"`
	Time  string `json:"time"`
}
