package cli

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clustermap/pkg/config"
)

// newLogger creates a text logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// configureLogger applies the [log] settings. verbose forces debug level.
// Validated config means ParseLevel only fails on an empty level.
func configureLogger(l *log.Logger, cfg config.Log, verbose bool) {
	if lvl, err := log.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
		l.SetLevel(lvl)
	}
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	switch cfg.Format {
	case config.LogJSON:
		l.SetFormatter(log.JSONFormatter)
		l.SetTimeFormat(time.RFC3339)
	case config.LogLogfmt:
		l.SetFormatter(log.LogfmtFormatter)
		l.SetTimeFormat(time.RFC3339)
	default:
		l.SetFormatter(log.TextFormatter)
	}
}

// progress logs the end of an operation with its elapsed time.
// It is not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "analysed clusters=12 elapsed=1.234s".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}
