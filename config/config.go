package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lixenwraith/narrator/constants"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// EnvPath names the environment variable holding the config file path
const EnvPath = "NARRATOR_CONFIG"

// Config is the root configuration
type Config struct {
	Narration NarrationConfig `toml:"narration"`
	Combat    CombatConfig    `toml:"combat"`
	Health    HealthConfig    `toml:"health"`
	Session   SessionConfig   `toml:"session"`
	Speech    SpeechConfig    `toml:"speech"`
	Tracing   TracingConfig   `toml:"tracing"`
	Log       LogConfig       `toml:"log"`
}

// NarrationConfig holds coordinator and sink windows
type NarrationConfig struct {
	Debounce    Duration `toml:"debounce"`
	Throttle    Duration `toml:"throttle"`
	DedupWindow Duration `toml:"dedup_window"`
}

// CombatConfig holds wave aggregation settings
type CombatConfig struct {
	WaveTimeout Duration `toml:"wave_timeout"`
	Individual  bool     `toml:"individual"` // Speak each effect instead of wave summaries
}

// HealthConfig holds alert thresholds as ratios of max health
type HealthConfig struct {
	Low      float64 `toml:"low"`
	Critical float64 `toml:"critical"`
}

// SessionConfig holds session loop settings
type SessionConfig struct {
	UpdateInterval Duration   `toml:"update_interval"`
	SettleDelays   []Duration `toml:"settle_delays"`
}

// SpeechConfig selects speech output
type SpeechConfig struct {
	Transcript string `toml:"transcript"` // File receiving spoken lines, empty keeps them on screen only
	Earcons    bool   `toml:"earcons"`    // Play a tone before urgent alerts
}

// TracingConfig configures OTLP/HTTP span export
type TracingConfig struct {
	Enabled     bool              `toml:"enabled"`
	Endpoint    string            `toml:"endpoint"`
	Headers     map[string]string `toml:"headers"`
	Insecure    bool              `toml:"insecure"`
	Environment string            `toml:"environment"`
}

// LogConfig configures the host log file
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the stock configuration
func DefaultConfig() *Config {
	settle := make([]Duration, len(constants.ReplaySettleDelays))
	for i, d := range constants.ReplaySettleDelays {
		settle[i] = Duration{d}
	}

	return &Config{
		Narration: NarrationConfig{
			Debounce:    Duration{constants.DebounceDelay},
			Throttle:    Duration{constants.ThrottleInterval},
			DedupWindow: Duration{constants.SinkDedupWindow},
		},
		Combat: CombatConfig{
			WaveTimeout: Duration{constants.WaveTimeout},
		},
		Health: HealthConfig{
			Low:      constants.LowHealthRatio,
			Critical: constants.CriticalHealthRatio,
		},
		Session: SessionConfig{
			UpdateInterval: Duration{constants.SessionUpdateInterval},
			SettleDelays:   settle,
		},
		Speech: SpeechConfig{
			Earcons: true,
		},
		Tracing: TracingConfig{
			Environment: "development",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file named by NARRATOR_CONFIG, or returns defaults when unset
func Load() (*Config, error) {
	if p := os.Getenv(EnvPath); p != "" {
		return LoadFromFile(p)
	}
	return DefaultConfig(), nil
}

// LoadFromFile reads configuration from path, a missing file yields defaults
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes TOML over the defaults and validates the result
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q: %w", undecoded[0].String(), ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	if c.Narration.Debounce.Duration <= 0 {
		return fmt.Errorf("narration.debounce must be positive: %w", ErrInvalid)
	}
	if c.Combat.WaveTimeout.Duration <= 0 {
		return fmt.Errorf("combat.wave_timeout must be positive: %w", ErrInvalid)
	}
	if c.Health.Critical <= 0 || c.Health.Low >= 1 || c.Health.Critical > c.Health.Low {
		return fmt.Errorf("health thresholds need 0 < critical <= low < 1, got %v/%v: %w",
			c.Health.Critical, c.Health.Low, ErrInvalid)
	}
	if c.Session.UpdateInterval.Duration <= 0 {
		return fmt.Errorf("session.update_interval must be positive: %w", ErrInvalid)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint required when tracing is enabled: %w", ErrInvalid)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: %w", c.Log.Level, ErrInvalid)
	}
	return nil
}

// SettleDelays returns the replay settle chain as plain durations
func (c *Config) SettleDelays() []time.Duration {
	out := make([]time.Duration, len(c.Session.SettleDelays))
	for i, d := range c.Session.SettleDelays {
		out[i] = d.Duration
	}
	return out
}
