package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	DBBackendGoLevelDB = "goleveldb"
	DBBackendMemDB     = "memdb"
	DBBackendPebble    = "pebble"
)

// NOTE: Most of the structs & relevant comments + the
// default configuration options were used to manually
// generate the config.toml. Please reflect any changes
// made here in the defaultConfigTemplate constant in
// config/toml.go
var (
	DefaultSpotxDir  = ".spotx"
	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName  = "config.toml"
	defaultGenesisFileName = "genesis.toml"

	defaultConfigFilePath  = filepath.Join(defaultConfigDir, defaultConfigFileName)
	defaultGenesisFilePath = filepath.Join(defaultConfigDir, defaultGenesisFileName)
)

// Config defines the top level configuration of a spotx node.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
	Events          *EventsConfig          `mapstructure:"events"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
		Events:          DefaultEventsConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing.
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Instrumentation: TestInstrumentationConfig(),
		Events:          TestEventsConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	if err := cfg.Events.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [events] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration of a spotx node.
type BaseConfig struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Database backend: goleveldb | memdb | pebble
	DBBackend string `mapstructure:"db-backend"`

	// Database directory
	DBPath string `mapstructure:"db-dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log-format"`

	// Path to the TOML file holding the pairs, balances and match fee the
	// chain starts with
	Genesis string `mapstructure:"genesis-file"`
}

// DefaultBaseConfig returns a default base configuration.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		Genesis:   defaultGenesisFilePath,
		LogLevel:  "info",
		LogFormat: LogFormatPlain,
		DBBackend: DBBackendGoLevelDB,
		DBPath:    defaultDataDir,
	}
}

// TestBaseConfig returns a base configuration for testing.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.DBBackend = DBBackendMemDB
	cfg.LogLevel = "debug"
	return cfg
}

// GenesisFile returns the full path to the genesis file
func (cfg BaseConfig) GenesisFile() string {
	return rootify(cfg.Genesis, cfg.RootDir)
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.New("unknown log-format (must be 'plain' or 'json')")
	}
	switch cfg.DBBackend {
	case DBBackendGoLevelDB, DBBackendMemDB, DBBackendPebble:
	default:
		return fmt.Errorf("unknown db-backend %q (must be 'goleveldb', 'memdb' or 'pebble')", cfg.DBBackend)
	}
	return nil
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	Prometheus bool `mapstructure:"prometheus"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `mapstructure:"prometheus-listen-addr"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		Namespace:            "spotx",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting in tests.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Prometheus && cfg.PrometheusListenAddr == "" {
		return errors.New("prometheus-listen-addr can't be empty when prometheus is enabled")
	}
	if cfg.Namespace == "" {
		return errors.New("namespace can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// EventsConfig

// EventsConfig defines where the events of committed blocks are published.
type EventsConfig struct {
	// Event sink: null | log | kafka
	Sink string `mapstructure:"sink"`

	// Kafka bootstrap brokers, used by the kafka sink.
	KafkaBrokers []string `mapstructure:"kafka-brokers"`

	// Kafka topic events are produced to.
	KafkaTopic string `mapstructure:"kafka-topic"`
}

// DefaultEventsConfig returns a default configuration for the event sink.
func DefaultEventsConfig() *EventsConfig {
	return &EventsConfig{
		Sink:         "log",
		KafkaBrokers: []string{},
		KafkaTopic:   "spotx-events",
	}
}

// TestEventsConfig returns an event sink configuration for tests.
func TestEventsConfig() *EventsConfig {
	cfg := DefaultEventsConfig()
	cfg.Sink = "null"
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *EventsConfig) ValidateBasic() error {
	switch strings.ToLower(cfg.Sink) {
	case "", "null", "none", "log":
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return errors.New("kafka-brokers can't be empty for the kafka sink")
		}
		if cfg.KafkaTopic == "" {
			return errors.New("kafka-topic can't be empty for the kafka sink")
		}
	default:
		return fmt.Errorf("unknown sink %q (must be 'null', 'log' or 'kafka')", cfg.Sink)
	}
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
