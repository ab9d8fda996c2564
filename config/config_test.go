package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg.Instrumentation)
	require.NotNil(t, cfg.Events)

	// check the root dir stuff...
	cfg.SetRoot("/foo")
	cfg.Genesis = "bar"
	cfg.DBPath = "/opt/data"

	assert.Equal(t, "/foo/bar", cfg.GenesisFile())
	assert.Equal(t, "/opt/data", cfg.DBDir())
}

func TestConfigValidateBasic(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.ValidateBasic())

	cfg.Events.Sink = "kafka"
	assert.Error(t, cfg.ValidateBasic())
}

func TestBaseConfigValidateBasic(t *testing.T) {
	testCases := map[string]struct {
		modify  func(*BaseConfig)
		wantErr bool
	}{
		"default":    {modify: func(*BaseConfig) {}},
		"json":       {modify: func(c *BaseConfig) { c.LogFormat = LogFormatJSON }},
		"pebble":     {modify: func(c *BaseConfig) { c.DBBackend = DBBackendPebble }},
		"log format": {modify: func(c *BaseConfig) { c.LogFormat = "xml" }, wantErr: true},
		"db backend": {modify: func(c *BaseConfig) { c.DBBackend = "cleveldb" }, wantErr: true},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			cfg := TestBaseConfig()
			tc.modify(&cfg)
			if tc.wantErr {
				assert.Error(t, cfg.ValidateBasic())
			} else {
				assert.NoError(t, cfg.ValidateBasic())
			}
		})
	}
}

func TestInstrumentationConfigValidateBasic(t *testing.T) {
	cfg := TestInstrumentationConfig()
	assert.NoError(t, cfg.ValidateBasic())

	cfg.Prometheus = true
	cfg.PrometheusListenAddr = ""
	assert.Error(t, cfg.ValidateBasic())

	cfg = TestInstrumentationConfig()
	cfg.Namespace = ""
	assert.Error(t, cfg.ValidateBasic())
}

func TestEventsConfigValidateBasic(t *testing.T) {
	testCases := map[string]struct {
		cfg     EventsConfig
		wantErr bool
	}{
		"null":          {cfg: EventsConfig{Sink: "null"}},
		"empty":         {cfg: EventsConfig{}},
		"log":           {cfg: EventsConfig{Sink: "log"}},
		"kafka":         {cfg: EventsConfig{Sink: "kafka", KafkaBrokers: []string{"b:9092"}, KafkaTopic: "t"}},
		"kafka brokers": {cfg: EventsConfig{Sink: "kafka", KafkaTopic: "t"}, wantErr: true},
		"kafka topic":   {cfg: EventsConfig{Sink: "kafka", KafkaBrokers: []string{"b:9092"}}, wantErr: true},
		"unknown":       {cfg: EventsConfig{Sink: "psql"}, wantErr: true},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.ValidateBasic()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
