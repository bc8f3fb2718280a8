package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/clock"
	"github.com/smokyabdulrahman/salah-clock/internal/display"
	"github.com/smokyabdulrahman/salah-clock/internal/logging"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
	"github.com/smokyabdulrahman/salah-clock/internal/watch"
)

var flagNoClear bool

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live countdown to the next prayer",
		Long:  "Redraw the clock, the next prayer and the day's timings every second until interrupted.",
		RunE:  runWatch,
	}

	cmd.Flags().BoolVar(&flagNoClear, "no-clear", false, "Append frames instead of clearing the screen")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, logging.CLILevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	base := display.Frame{
		Lang:       language(e.cfg, prayer.LangEnglish),
		TimeLayout: timeLayout(e.cfg.TimeFormat),
	}
	display.NewLiveView(e.out, base, !flagNoClear).Loading()

	t, err := e.resolveTarget(ctx)
	if err != nil {
		return err
	}
	resp, err := e.fetchNow(ctx, timeNow(), t)
	if err != nil {
		return err
	}
	zone, err := zoneFor(t, resp.Data.Meta)
	if err != nil {
		return err
	}

	base.Place = t.Place()
	base.Hijri = hijriFor(resp.Data.Date.Hijri, base.Lang)
	view := display.NewLiveView(e.out, base, !flagNoClear)

	sess := watch.NewSession(prayer.FromAPI(resp.Data.Timings),
		&clock.Ticker{Clock: clock.Real{}, Interval: clock.DefaultInterval, Location: zone},
		watch.WithLogger(e.log),
		watch.WithRefresh(e.refresher(t, nil)),
	)
	sess.AddSink(view)
	return sess.Run(ctx)
}

// refresher fetches the set for a new day. onDay, if set, sees every
// fetched response.
func (e *env) refresher(t target, onDay func(*api.Response)) watch.RefreshFunc {
	return func(ctx context.Context, day time.Time) ([]prayer.Timing, error) {
		resp, err := e.fetchDate(ctx, day, t)
		if err != nil {
			return nil, err
		}
		if onDay != nil {
			onDay(resp)
		}
		return prayer.FromAPI(resp.Data.Timings), nil
	}
}
