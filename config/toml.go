package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	spos "github.com/chainx-org/ChainX-sub003/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't
// exist, and writes the default config file if there is none.
func EnsureRoot(rootDir string) error {
	for _, dir := range []string{
		rootDir,
		filepath.Join(rootDir, defaultConfigDir),
		filepath.Join(rootDir, defaultDataDir),
	} {
		if err := spos.EnsureDir(dir, defaultDirPerm); err != nil {
			return err
		}
	}
	return writeDefaultConfigFileIfNone(rootDir)
}

// WriteConfigFile renders config using the template and writes it to
// the config file under rootDir.
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(filepath.Join(rootDir, defaultConfigFilePath))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	return spos.WriteFile(path, buffer.Bytes(), 0644)
}

func writeDefaultConfigFileIfNone(rootDir string) error {
	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)
	if !spos.FileExists(configFilePath) {
		return WriteConfigFile(rootDir, DefaultConfig())
	}
	return nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/spotx/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.spotx" by default, but could be changed via $SPOTX_HOME env variable
# or --home cmd flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Database backend: goleveldb | memdb | pebble
# * goleveldb (github.com/syndtr/goleveldb - most popular implementation)
#   - pure go
#   - stable
# * memdb
#   - in memory, nothing survives a restart
# * pebble (github.com/cockroachdb/pebble)
#   - pure go
#   - LSM tree tuned for write heavy workloads
db-backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db-dir = "{{ js .BaseConfig.DBPath }}"

# Output level for logging, including package level options
log-level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .BaseConfig.LogFormat }}"

# Path to the TOML file holding the pairs, balances and match fee the
# chain starts with
genesis-file = "{{ js .BaseConfig.Genesis }}"

#######################################################################
###                 Instrumentation Config Options                  ###
#######################################################################
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus-listen-addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"

#######################################################################
###                      Event Sink Options                         ###
#######################################################################
[events]

# Where the events of committed blocks are published: null | log | kafka
# * null
#   - events are dropped
# * log
#   - every event is written to the node log at info level
# * kafka
#   - one message per event, keyed by event type, produced to kafka-topic
sink = "{{ .Events.Sink }}"

# Comma separated list of kafka brokers, e.g. ["localhost:9092"]
kafka-brokers = [{{ range $i, $b := .Events.KafkaBrokers }}{{ if $i }}, {{ end }}"{{ $b }}"{{ end }}]

# Kafka topic the events are produced to
kafka-topic = "{{ .Events.KafkaTopic }}"
`

/****** these are for test settings ***********/

// ResetTestRoot creates a fresh root under dir holding a test config and
// a test genesis file.
func ResetTestRoot(dir, testName string) (*Config, error) {
	rootDir, err := os.MkdirTemp(dir, fmt.Sprintf("%s-", testName))
	if err != nil {
		return nil, err
	}
	if err := EnsureRoot(rootDir); err != nil {
		return nil, err
	}

	conf := TestConfig().SetRoot(rootDir)
	if err := WriteConfigFile(rootDir, conf); err != nil {
		return nil, err
	}
	if err := spos.WriteFile(conf.GenesisFile(), []byte(testGenesis), 0644); err != nil {
		return nil, err
	}
	return conf, nil
}

const testGenesis = `match-fee = 0

[[pairs]]
pair = "BTC/USDT"
precision = 2
online = true

[[balances]]
account = "alice"
token = "USDT"
amount = 1000000

[[balances]]
account = "bob"
token = "BTC"
amount = 1000
`
