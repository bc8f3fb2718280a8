package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-clock/internal/display"
	"github.com/smokyabdulrahman/salah-clock/internal/logging"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 30)
		},
	}
}

// parseDays reads a day count argument.
func parseDays(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of days: %q (must be a positive integer)", arg)
	}
	return n, nil
}

// runList is the handler for the list subcommand.
func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := parseDays(args[0])
		if err != nil {
			return err
		}
		days = n
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

	now := timeNow()
	daysList, err := e.fetchCalendarDays(ctx, now, days, t)
	if err != nil {
		return err
	}

	zone, err := zoneFor(t, daysList[0].Meta)
	if err != nil {
		return err
	}
	todayStr := now.In(zone).Format(time.DateOnly)

	selected := selectedPrayers(e.cfg.Prayers)
	layout := timeLayout(e.cfg.TimeFormat)
	lang := language(e.cfg, prayer.LangEnglish)

	if FlagJSON {
		return printListJSON(e.out, t, zone, daysList, selected, layout)
	}

	fmt.Fprintln(e.out)
	fmt.Fprintf(e.out, "  %s\n", display.Boldf("%s: %d", display.TextFor(lang).Title, days))
	fmt.Fprintln(e.out)
	fmt.Fprintf(e.out, "  %s\n", t.Place())
	fmt.Fprintln(e.out)

	headers := []string{"Date"}
	for _, name := range selected {
		headers = append(headers, prayer.Label(name, lang))
	}
	tbl := display.NewTable(headers)

	for i, dd := range daysList {
		date := dd.Date.In(zone)
		row := []string{date.Format("Mon 02 Jan")}
		for _, name := range selected {
			raw, ok := dd.Timings.Get(name)
			if !ok {
				return fmt.Errorf("unknown prayer name: %s", name)
			}
			row = append(row, prayer.FormatClock(raw, layout))
		}
		tbl.AddRow(row)

		if date.Format(time.DateOnly) == todayStr {
			tbl.SetHighlightRow(i)
		}
	}

	fmt.Fprint(e.out, tbl.Render())
	fmt.Fprintln(e.out)
	return nil
}

type listJSONOutput struct {
	Location locationJSON  `json:"location"`
	Days     []listJSONDay `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Timings map[string]string `json:"timings"`
}

func printListJSON(w io.Writer, t target, zone *time.Location, daysList []dayData, selected []string, layout string) error {
	out := listJSONOutput{Location: newLocationJSON(t, zone.String(), daysList[0].Meta)}

	for _, dd := range daysList {
		parsed, err := prayer.ParseTimings(dd.Timings, dd.Date.In(zone), zone, selected)
		if err != nil {
			return err
		}

		timings := make(map[string]string, len(parsed))
		for _, p := range parsed {
			timings[strings.ToLower(p.Name)] = p.Time.Format(layout)
		}

		out.Days = append(out.Days, listJSONDay{
			Date:    dd.Date.In(zone).Format("02 Jan 2006"),
			Hijri:   dd.Data.Date.Hijri.Format(),
			Timings: timings,
		})
	}

	return writeJSON(w, out)
}
