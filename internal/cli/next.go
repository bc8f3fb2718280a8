package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salah-clock/internal/logging"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

var flagFormat string

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long: "Print the next prayer and the time left until it on one line, for status bars.\n" +
			"After Isha the countdown runs to the next day's Fajr.",
		RunE: runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, or a custom Go template")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
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

	d, err := buildToday(t, resp.Data, now, nil)
	if err != nil {
		return err
	}

	if FlagJSON {
		return writeJSON(e.out, d.Next)
	}

	lang := language(e.cfg, prayer.LangEnglish)
	fmt.Fprint(e.out, prayer.FormatOutput(d.Next, flagFormat, timeLayout(e.cfg.TimeFormat), lang))
	return nil
}
