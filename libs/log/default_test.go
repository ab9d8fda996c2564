package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chainx-org/ChainX-sub003/libs/log"
)

func TestNewDefaultLogger(t *testing.T) {
	testCases := map[string]struct {
		format    string
		level     string
		expectErr bool
	}{
		"invalid format": {
			format:    "foo",
			level:     log.LogLevelInfo,
			expectErr: true,
		},
		"invalid level": {
			format:    log.LogFormatJSON,
			level:     "foo",
			expectErr: true,
		},
		"valid format and level": {
			format:    log.LogFormatJSON,
			level:     log.LogLevelInfo,
			expectErr: false,
		},
		"plain format": {
			format:    log.LogFormatPlain,
			level:     log.LogLevelDebug,
			expectErr: false,
		},
		"module levels": {
			format:    log.LogFormatJSON,
			level:     "matchorder:debug,*:error",
			expectErr: false,
		},
		"invalid module level": {
			format:    log.LogFormatJSON,
			level:     "matchorder:loud",
			expectErr: true,
		},
		"missing module": {
			format:    log.LogFormatJSON,
			level:     ":debug",
			expectErr: true,
		},
	}

	for name, tc := range testCases {
		tc := tc

		t.Run(name, func(t *testing.T) {
			_, err := log.NewDefaultLogger(tc.format, tc.level)
			if tc.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer

	logger, err := log.NewLogger(&buf, log.LogFormatJSON, log.LogLevelInfo)
	require.NoError(t, err)

	logger.With("module", "matchorder").Info("added bid", "bid", 7)
	logger.Debug("filtered out", "bid", 8)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	require.Equal(t, "added bid", line["message"])
	require.Equal(t, "matchorder", line["module"])
	require.EqualValues(t, 7, line["bid"])
	require.Equal(t, "info", line["level"])
}

func TestModuleLevels(t *testing.T) {
	var buf bytes.Buffer

	logger, err := log.NewLogger(&buf, log.LogFormatJSON, "matchorder:debug,*:error")
	require.NoError(t, err)

	logger.With("module", "matchorder").Debug("filled", "amount", 3)
	logger.With("module", "chain").Info("committed block", "height", 1)
	logger.With("module", "chain").Error("failed to publish block events", "height", 1)
	logger.Info("dropped")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	require.Equal(t, "filled", first["message"])
	require.Equal(t, "debug", first["level"])
	require.Equal(t, "failed to publish block events", second["message"])
}

func TestOverrideWithNewLogger(t *testing.T) {
	logger := log.NewNopLogger()
	require.NoError(t, log.OverrideWithNewLogger(logger, log.LogFormatJSON, "chain:debug"))
	require.Error(t, log.OverrideWithNewLogger(logger, "xml", log.LogLevelInfo))
}
