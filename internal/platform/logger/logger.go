package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

type Options struct {
	Level  string // debug|info|warn|error (default info)
	Format string // json|console (default json)
	App    string
}

// New builds the service logger. JSON to stdout by default; console output
// is for local development only.
func New(opts Options) zerolog.Logger {
	out := os.Stdout

	ctx := zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp()
	if app := strings.TrimSpace(opts.App); app != "" {
		ctx = ctx.Str("app", app)
	}
	l := ctx.Logger()

	if strings.EqualFold(strings.TrimSpace(opts.Format), "console") {
		l = l.Output(zerolog.ConsoleWriter{Out: out})
	}
	return l
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
