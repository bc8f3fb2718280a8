package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/clock"
	"github.com/smokyabdulrahman/salah-clock/internal/logging"
	"github.com/smokyabdulrahman/salah-clock/internal/notify"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
	"github.com/smokyabdulrahman/salah-clock/internal/watch"
	"github.com/smokyabdulrahman/salah-clock/internal/web"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prayer times page and live countdown over HTTP",
		Long: "Serve the prayer times page (Arabic by default), a JSON API and a server-sent\n" +
			"event stream of the countdown. With an MQTT broker configured, every change of\n" +
			"the next prayer or remaining minutes is also published as a retained message.",
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (default :8080)")
	cmd.Flags().String("mqtt-broker", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	cmd.Flags().String("mqtt-topic", "", "MQTT topic (default salah-clock/next)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, logging.ServerLevel)
	if err != nil {
		return err
	}

	srv := web.NewServer(web.Options{
		Lang:       language(e.cfg, prayer.LangArabic),
		TimeLayout: timeLayout(e.cfg.TimeFormat),
		Log:        e.log,
	})

	var sinks []watch.Sink
	if e.cfg.MQTTBroker != "" {
		client, err := notify.NewClient(e.cfg.MQTTBroker, mqttClientID(), e.log)
		if err != nil {
			e.log.Warn().Err(err).Msg("mqtt disabled")
		} else {
			pub := notify.NewPublisher(client, e.cfg.MQTTTopic, language(e.cfg, prayer.LangEnglish), e.log)
			defer pub.Close()
			sinks = append(sinks, watch.OnChange(pub))
		}
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return srv.Run(ctx, e.cfg.ListenAddr)
	})
	g.Go(func() error {
		return e.feed(ctx, srv, sinks)
	})
	return g.Wait()
}

// feed loads the day into srv and runs the countdown session. A failed
// fetch leaves the page in its error state and the server running.
func (e *env) feed(ctx context.Context, srv *web.Server, sinks []watch.Sink) error {
	t, err := e.resolveTarget(ctx)
	if err != nil {
		srv.SetError(err)
		return err
	}

	resp, err := e.fetchNow(ctx, timeNow(), t)
	if err != nil {
		e.log.Error().Err(err).Msg("initial fetch failed")
		srv.SetError(err)
		return nil
	}
	zone, err := zoneFor(t, resp.Data.Meta)
	if err != nil {
		srv.SetError(err)
		return err
	}

	setDay := func(resp *api.Response) {
		srv.SetDay(web.Day{
			Timings:  prayer.FromAPI(resp.Data.Timings),
			Date:     resp.Data.Date,
			Location: t.Location,
			Fallback: t.Fallback,
		})
	}
	setDay(resp)

	sess := watch.NewSession(prayer.FromAPI(resp.Data.Timings),
		&clock.Ticker{Clock: clock.Real{}, Interval: clock.DefaultInterval, Location: zone},
		watch.WithLogger(e.log),
		watch.WithRefresh(e.refresher(t, setDay)),
	)
	sess.AddSink(srv)
	for _, s := range sinks {
		sess.AddSink(s)
	}

	e.log.Info().
		Str("place", t.Place()).
		Str("timezone", zone.String()).
		Int("method", t.Query.Method).
		Msg("countdown started")

	// A resolver error is shown on the page; the server keeps running.
	if err := sess.Run(ctx); err != nil {
		e.log.Error().Err(err).Msg("countdown stopped")
	}
	return nil
}

// mqttClientID is unique per process so two instances on one host do not
// kick each other off the broker.
func mqttClientID() string {
	return "salah-clock-" + uuid.NewString()
}
