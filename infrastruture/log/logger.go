// Package log provides the prefixed, coloured component loggers used across the service.
package log

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/beka-birhanu/vinom-zkmaze/service/i"
	"github.com/rs/zerolog"
)

var ErrNilWriter = errors.New("logger needs a writer")

var _ i.Logger = &Logger{}

// Logger writes leveled lines tagged with a component prefix.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger writing to w. Lines carry prefix in color; an empty color
// disables colouring.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    color == "",
		TimeFormat: time.RFC3339,
		FormatMessage: func(msg any) string {
			tag := fmt.Sprintf("[%s]", prefix)
			if color != "" {
				tag = color + tag + colorReset
			}
			return fmt.Sprintf("%s %v", tag, msg)
		},
	}

	return &Logger{
		zl: zerolog.New(console).With().Timestamp().Str("component", strings.ToLower(prefix)).Logger(),
	}, nil
}

const colorReset = "\033[0m"

func (l *Logger) Debug(msg string)   { l.zl.Debug().Msg(msg) }
func (l *Logger) Info(msg string)    { l.zl.Info().Msg(msg) }
func (l *Logger) Warning(msg string) { l.zl.Warn().Msg(msg) }
func (l *Logger) Error(msg string)   { l.zl.Error().Msg(msg) }

// SetLevel sets the minimum level of every logger. An empty level means info.
func SetLevel(level string) error {
	if level == "" {
		level = zerolog.LevelInfoValue
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)
	return nil
}
