package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Engines accepted by ExpandConfig.Engine and the import command.
const (
	EngineNative     = "native"
	EngineGolangICal = "golang-ical"
	EngineGoICal     = "go-ical"
)

// Output formats for occurrence listings.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

const (
	defaultLogLevel     = "info"
	defaultTimezone     = "UTC"
	defaultMaxInstances = 2048
	defaultWindowDays   = 30
	defaultProdID       = "-//icalkit//icalkit 1.0//EN"
)

// ExpandConfig groups the recurrence expansion settings.
type ExpandConfig struct {
	// MaxInstances caps how many instances one object may expand into.
	MaxInstances int `yaml:"max_instances" json:"max_instances"`

	// WindowDays is the span used by `expand` when --to is not given.
	WindowDays int `yaml:"window_days" json:"window_days"`

	// Engine selects the parser used to read input files. Supported values:
	//   - "native" (default)
	//   - "golang-ical"
	//   - "go-ical"
	Engine string `yaml:"engine" json:"engine"`
}

// Config is the top-level application configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Timezone is the IANA timezone occurrences are displayed in (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	Expand ExpandConfig `yaml:"expand" json:"expand"`

	// Output is the listing format, "yaml" or "json".
	Output string `yaml:"output" json:"output"`

	// ProdID is written into calendars this tool creates.
	ProdID string `yaml:"prodid" json:"prodid"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: defaultLogLevel,
		Timezone: defaultTimezone,
		Expand: ExpandConfig{
			MaxInstances: defaultMaxInstances,
			WindowDays:   defaultWindowDays,
			Engine:       EngineNative,
		},
		Output: OutputYAML,
		ProdID: defaultProdID,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Expand.MaxInstances <= 0 {
		c.Expand.MaxInstances = defaultMaxInstances
	}
	if c.Expand.WindowDays <= 0 {
		c.Expand.WindowDays = defaultWindowDays
	}

	switch c.Expand.Engine {
	case EngineNative, EngineGolangICal, EngineGoICal:
		// ok
	default:
		// Unknown value; fall back to the native parser.
		c.Expand.Engine = EngineNative
	}

	switch c.Output {
	case OutputYAML, OutputJSON:
		// ok
	default:
		c.Output = OutputYAML
	}

	if c.ProdID == "" {
		c.ProdID = defaultProdID
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icalkit-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
