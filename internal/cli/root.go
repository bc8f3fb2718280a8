package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/config"
)

// FlagJSON selects JSON output on the commands that support it.
var FlagJSON bool

// flagKeys maps each flag that overrides a config key to that key.
var flagKeys = map[string]string{
	"city":        "city",
	"country":     "country",
	"latitude":    "latitude",
	"longitude":   "longitude",
	"method":      "method",
	"school":      "school",
	"cache-dir":   "cache_dir",
	"time-format": "time_format",
	"lang":        "language",
	"log-level":   "log_level",
	"redis-addr":  "redis_addr",
	"listen":      "listen_addr",
	"mqtt-broker": "mqtt_broker",
	"mqtt-topic":  "mqtt_topic",
}

// loadedConfig holds the config loaded during PersistentPreRunE, with
// environment overrides applied. Available to all subcommand handlers.
var loadedConfig *config.Config

// dotEnvFiles are loaded into the environment before the config is read.
var dotEnvFiles = []string{".env"}

// NewRootCmd creates the root command for the salah-clock CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "salah-clock",
		Short:   "Prayer times and a live countdown to the next prayer",
		Long:    "Shows the day's prayer times and counts down to the next prayer, in the terminal,\nas a web page or over MQTT. Timings come from the Al Adhan API.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(dotEnvFiles...); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
				return fmt.Errorf("invalid environment: %w", err)
			}
			loadedConfig = cfg
			return nil
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.String("city", "", "Override city (takes precedence over config)")
	pf.String("country", "", "Override country")
	pf.Float64("latitude", 0, "Override latitude")
	pf.Float64("longitude", 0, "Override longitude")
	pf.Int("method", api.DefaultMethod, "Calculation method (see 'methods')")
	pf.Int("school", 0, "School for Asr (0=Shafi, 1=Hanafi)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.String("cache-dir", "", "Cache directory (default: ~/.cache/salah-clock/)")
	pf.String("time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.String("lang", "", "Label language: en or ar")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("redis-addr", "", "Cache in Redis at host:port instead of files")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// effectiveConfig merges the loaded config with the flags the user set,
// giving the priority: CLI flags > environment > config file > defaults.
// Flag values go through config.Set and get the same validation.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}

	var err error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		if setErr := cfg.Set(key, f.Value.String()); setErr != nil {
			err = fmt.Errorf("--%s: %w", f.Name, setErr)
		}
	})
	if err != nil {
		return nil, err
	}

	// Language stays empty when unset so each command picks its own
	// default (the web page defaults to Arabic).
	defaults := config.Defaults()
	if cfg.Method == nil {
		cfg.Method = defaults.Method
	}
	if cfg.School == nil {
		cfg.School = defaults.School
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaults.ListenAddr
	}
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = defaults.MQTTTopic
	}
	return &cfg, nil
}

// timeLayout maps the time_format setting to a Go layout.
func timeLayout(format string) string {
	if format == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// language returns cfg's language, or def when none was configured.
func language(cfg *config.Config, def string) string {
	if cfg.Language != "" {
		return cfg.Language
	}
	return def
}
