package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
	slogmulti "github.com/samber/slog-multi"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for log output
type Logger struct {
	level  string
	format string
	output string
	file   string
}

// Flags returns CLI flags for logger configuration
func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Category:    "Logging",
			Sources:     cli.EnvVars("MEDASSIST_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json)",
			Value:       "console",
			Category:    "Logging",
			Sources:     cli.EnvVars("MEDASSIST_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log destination (stdout, stderr or a file path)",
			Value:       "stderr",
			Category:    "Logging",
			Sources:     cli.EnvVars("MEDASSIST_LOG_OUTPUT"),
			Destination: &l.output,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "Additional JSON log file",
			Category:    "Logging",
			Sources:     cli.EnvVars("MEDASSIST_LOG_FILE"),
			Destination: &l.file,
		},
	}
}

func (l Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
		slog.String("file", l.file),
	)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, goerr.Wrap(ErrInvalidConfig, "invalid log level", goerr.V(OptionKey, "log-level"), goerr.V("level", s))
	}
}

// redactor hides values of fields tagged masq:"secret" and of attributes named like credentials
func redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithTag("secret"),
		masq.WithFieldName("APIKey"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("dsn"),
	)
}

// NewHandler builds the slog handler described by the flags. The returned
// closer releases any file opened for logging.
func (l *Logger) NewHandler() (slog.Handler, func(), error) {
	level, err := parseLogLevel(l.level)
	if err != nil {
		return nil, nil, err
	}

	var files []*os.File
	closer := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	var w io.Writer
	switch l.output {
	case "stdout":
		w = os.Stdout
	case "stderr", "":
		w = os.Stderr
	default:
		// #nosec G304 - path is provided by CLI argument
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to open log output", goerr.V("path", l.output))
		}
		files = append(files, f)
		w = f
	}

	filter := redactor()
	var handlers []slog.Handler
	switch l.format {
	case "console", "":
		handlers = append(handlers, clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithReplaceAttr(filter),
		))
	case "json":
		handlers = append(handlers, slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		}))
	default:
		closer()
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "invalid log format", goerr.V(OptionKey, "log-format"), goerr.V("format", l.format))
	}

	if l.file != "" {
		// #nosec G304 - path is provided by CLI argument
		f, err := os.OpenFile(l.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			closer()
			return nil, nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", l.file))
		}
		files = append(files, f)
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: filter,
		}))
	}

	if len(handlers) == 1 {
		return handlers[0], closer, nil
	}
	return slogmulti.Fanout(handlers...), closer, nil
}

// Configure installs the logger as the process default
func (l *Logger) Configure() (func(), error) {
	handler, closer, err := l.NewHandler()
	if err != nil {
		return nil, err
	}
	logging.SetDefault(slog.New(handler))
	return closer, nil
}
