package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var _ Logger = (*defaultLogger)(nil)

type defaultLogger struct {
	zerolog.Logger

	// nil unless the level string named modules
	levels *moduleLevels
}

// NewDefaultLogger returns a Logger writing to stderr backed by zerolog.
//
// format is "plain" (or "text") for console output, or "json". level is
// either a single level ("info") or a comma separated list of
// module:level pairs where "*" sets the level of every other module, e.g.
// "matchorder:debug,*:info". A module is the value of the "module" key
// passed to With.
func NewDefaultLogger(format, level string) (Logger, error) {
	return NewLogger(os.Stderr, format, level)
}

// NewLogger is NewDefaultLogger writing to w.
func NewLogger(w io.Writer, format, level string) (Logger, error) {
	var logWriter io.Writer
	switch strings.ToLower(format) {
	case LogFormatPlain, LogFormatText:
		logWriter = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: time.RFC3339,
			FormatLevel: func(i interface{}) string {
				if ll, ok := i.(string); ok {
					return strings.ToUpper(ll)
				}
				return "????"
			},
		}

	case LogFormatJSON:
		logWriter = w

	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	levels, err := parseLevels(level)
	if err != nil {
		return nil, err
	}

	zl := zerolog.New(NewSyncWriter(logWriter)).With().Timestamp().Logger()
	if levels.modules == nil {
		return &defaultLogger{Logger: zl.Level(levels.fallback)}, nil
	}
	return &defaultLogger{Logger: zl.Level(levels.fallback), levels: levels}, nil
}

// NewNopLogger returns a Logger that drops everything.
func NewNopLogger() Logger {
	return &defaultLogger{Logger: zerolog.Nop()}
}

func (l defaultLogger) Info(msg string, keyVals ...interface{}) {
	l.Logger.Info().Fields(getLogFields(keyVals...)).Msg(msg)
}

func (l defaultLogger) Error(msg string, keyVals ...interface{}) {
	l.Logger.Error().Fields(getLogFields(keyVals...)).Msg(msg)
}

func (l defaultLogger) Debug(msg string, keyVals ...interface{}) {
	l.Logger.Debug().Fields(getLogFields(keyVals...)).Msg(msg)
}

func (l defaultLogger) With(keyVals ...interface{}) Logger {
	zl := l.Logger.With().Fields(getLogFields(keyVals...)).Logger()
	if l.levels != nil {
		for i := 0; i+1 < len(keyVals); i += 2 {
			if fmt.Sprint(keyVals[i]) == "module" {
				zl = zl.Level(l.levels.of(fmt.Sprint(keyVals[i+1])))
			}
		}
	}
	return &defaultLogger{Logger: zl, levels: l.levels}
}

// OverrideWithNewLogger replaces an existing logger's internal with
// a new logger, and makes it possible to reconfigure an existing
// logger that has already been propagated to callers.
func OverrideWithNewLogger(logger Logger, format, level string) error {
	ol, ok := logger.(*defaultLogger)
	if !ok {
		return fmt.Errorf("logger %T cannot be overridden", logger)
	}

	newLogger, err := NewDefaultLogger(format, level)
	if err != nil {
		return err
	}
	nl, ok := newLogger.(*defaultLogger)
	if !ok {
		return fmt.Errorf("logger %T cannot be overridden by %T", logger, newLogger)
	}

	*ol = *nl
	return nil
}

type moduleLevels struct {
	fallback zerolog.Level
	modules  map[string]zerolog.Level
}

func (ml *moduleLevels) of(module string) zerolog.Level {
	if lvl, ok := ml.modules[module]; ok {
		return lvl
	}
	return ml.fallback
}

// parseLevels parses "info" or "matchorder:debug,*:error". Without a "*"
// entry, unnamed modules log at info.
func parseLevels(level string) (*moduleLevels, error) {
	if !strings.Contains(level, ":") {
		lvl, err := zerolog.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level (%s): %w", level, err)
		}
		return &moduleLevels{fallback: lvl}, nil
	}

	ml := &moduleLevels{fallback: zerolog.InfoLevel, modules: make(map[string]zerolog.Level)}
	for _, item := range strings.Split(level, ",") {
		kv := strings.SplitN(strings.TrimSpace(item), ":", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("expected module:level in log level %q, got %q", level, item)
		}
		lvl, err := zerolog.ParseLevel(kv[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level of %s (%s): %w", kv[0], kv[1], err)
		}
		if kv[0] == "*" {
			ml.fallback = lvl
		} else {
			ml.modules[kv[0]] = lvl
		}
	}
	return ml, nil
}

func getLogFields(keyVals ...interface{}) map[string]interface{} {
	if len(keyVals)%2 != 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(keyVals))
	for i := 0; i < len(keyVals); i += 2 {
		fields[fmt.Sprint(keyVals[i])] = keyVals[i+1]
	}

	return fields
}
