// Package config provides persistent configuration for salah-clock.
//
// Configuration is stored as JSON at ~/.config/salah-clock/config.json
// (XDG-compliant). SALAH_CLOCK_* environment variables, optionally loaded
// from a .env file, override the file. The merge priority is:
// CLI flags > environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salah-clock/internal/api"
	"github.com/smokyabdulrahman/salah-clock/internal/prayer"
)

const (
	configDirName  = "salah-clock"
	configFileName = "config.json"

	// EnvPrefix prefixes the upper-cased key of every environment override,
	// e.g. SALAH_CLOCK_METHOD.
	EnvPrefix = "SALAH_CLOCK_"
)

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	City       string  `json:"city,omitempty"`
	Country    string  `json:"country,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
	Method     *int    `json:"method,omitempty"` // nil is unset, 0 is Jafari
	School     *int    `json:"school,omitempty"`
	TimeFormat string  `json:"time_format,omitempty"` // "12h" or "24h"
	Prayers    string  `json:"prayers,omitempty"`     // comma-separated
	CacheDir   string  `json:"cache_dir,omitempty"`
	Language   string  `json:"language,omitempty"` // "en" or "ar"
	ListenAddr string  `json:"listen_addr,omitempty"`
	RedisAddr  string  `json:"redis_addr,omitempty"`
	MQTTBroker string  `json:"mqtt_broker,omitempty"`
	MQTTTopic  string  `json:"mqtt_topic,omitempty"`
	LogLevel   string  `json:"log_level,omitempty"`
}

// field binds a config key to its parser and printer.
type field struct {
	set func(c *Config, value string) error
	get func(c *Config) string
}

// ValidKeys lists every key accepted by Set, Get and the environment,
// in display order.
var ValidKeys = []string{
	"city", "country",
	"latitude", "longitude",
	"method", "school",
	"time_format",
	"prayers",
	"cache_dir",
	"language",
	"listen_addr",
	"redis_addr",
	"mqtt_broker", "mqtt_topic",
	"log_level",
}

var fields = map[string]field{
	"city":    stringField(func(c *Config) *string { return &c.City }, nil),
	"country": stringField(func(c *Config) *string { return &c.Country }, nil),
	"latitude": coordField("latitude", 90,
		func(c *Config) *float64 { return &c.Latitude }),
	"longitude": coordField("longitude", 180,
		func(c *Config) *float64 { return &c.Longitude }),
	"method": intField(func(c *Config) **int { return &c.Method }, func(v int) error {
		if v < 0 || v > 23 {
			return errors.New("must be between 0 and 23")
		}
		return nil
	}),
	"school": intField(func(c *Config) **int { return &c.School }, func(v int) error {
		if v != 0 && v != 1 {
			return errors.New("must be 0 (Shafi) or 1 (Hanafi)")
		}
		return nil
	}),
	"time_format": stringField(func(c *Config) *string { return &c.TimeFormat }, func(v string) error {
		if v != "12h" && v != "24h" {
			return errors.New(`must be "12h" or "24h"`)
		}
		return nil
	}),
	"prayers": stringField(func(c *Config) *string { return &c.Prayers }, func(v string) error {
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); !slices.Contains(prayer.AllPrayerNames, n) {
				return fmt.Errorf("unknown prayer %q", n)
			}
		}
		return nil
	}),
	"cache_dir": stringField(func(c *Config) *string { return &c.CacheDir }, nil),
	"language": stringField(func(c *Config) *string { return &c.Language }, func(v string) error {
		if !prayer.ValidLanguage(v) {
			return fmt.Errorf("must be %q or %q", prayer.LangEnglish, prayer.LangArabic)
		}
		return nil
	}),
	"listen_addr": stringField(func(c *Config) *string { return &c.ListenAddr }, func(v string) error {
		if !strings.Contains(v, ":") {
			return errors.New("must be host:port or :port")
		}
		return nil
	}),
	"redis_addr": stringField(func(c *Config) *string { return &c.RedisAddr }, nil),
	"mqtt_broker": stringField(func(c *Config) *string { return &c.MQTTBroker }, func(v string) error {
		if !strings.Contains(v, "://") {
			return errors.New("must be a URL such as tcp://host:1883")
		}
		return nil
	}),
	"mqtt_topic": stringField(func(c *Config) *string { return &c.MQTTTopic }, func(v string) error {
		if v == "" || strings.ContainsAny(v, "#+") {
			return errors.New("must not be empty or contain wildcards")
		}
		return nil
	}),
	"log_level": stringField(func(c *Config) *string { return &c.LogLevel }, func(v string) error {
		_, err := zerolog.ParseLevel(v)
		return err
	}),
}

func stringField(ptr func(*Config) *string, check func(string) error) field {
	return field{
		set: func(c *Config, v string) error {
			if check != nil {
				if err := check(v); err != nil {
					return err
				}
			}
			*ptr(c) = v
			return nil
		},
		get: func(c *Config) string { return *ptr(c) },
	}
}

func intField(ptr func(*Config) **int, check func(int) error) field {
	return field{
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.New("must be an integer")
			}
			if err := check(n); err != nil {
				return err
			}
			*ptr(c) = &n
			return nil
		},
		get: func(c *Config) string {
			if p := *ptr(c); p != nil {
				return strconv.Itoa(*p)
			}
			return ""
		},
	}
}

func coordField(name string, limit float64, ptr func(*Config) *float64) field {
	return field{
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.New("must be a number")
			}
			if f < -limit || f > limit {
				return fmt.Errorf("%s must be between %g and %g", name, -limit, limit)
			}
			*ptr(c) = f
			return nil
		},
		get: func(c *Config) string {
			if f := *ptr(c); f != 0 {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
			return ""
		},
	}
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	method := api.DefaultMethod
	school := -1
	return Config{
		Method:     &method,
		School:     &school,
		TimeFormat: "24h",
		Language:   prayer.LangEnglish,
		ListenAddr: ":8080",
		MQTTTopic:  "salah-clock/next",
	}
}

// Dir returns the config directory: $XDG_CONFIG_HOME/salah-clock, or
// ~/.config/salah-clock.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file. A missing file yields an empty Config.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &Config{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to Path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return ResetAt(path)
}

// ResetAt deletes the config file at path. A missing file is not an error.
func ResetAt(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// LoadDotEnv loads KEY=value pairs from files into the process
// environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides every key for which lookup finds SALAH_CLOCK_<KEY>.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, key := range ValidKeys {
		name := EnvPrefix + strings.ToUpper(key)
		value, ok := lookup(name)
		if !ok || value == "" {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Set parses value into key.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return nil
}

// Get returns the string form of key, "" when unset.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(c), nil
}

// MethodOrDefault returns the method, or def when unset.
func (c *Config) MethodOrDefault(def int) int {
	if c.Method != nil {
		return *c.Method
	}
	return def
}

// SchoolOrDefault returns the school, or def when unset.
func (c *Config) SchoolOrDefault(def int) int {
	if c.School != nil {
		return *c.School
	}
	return def
}

// HasCoordinates reports whether coordinates were configured.
func (c *Config) HasCoordinates() bool {
	return c.Latitude != 0 || c.Longitude != 0
}
