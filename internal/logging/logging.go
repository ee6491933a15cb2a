// Package logging builds the structured loggers used by the prism CLI.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "prism"

// ParseLevel maps a level name (debug, info, warn, error, fatal) to a log
// level. An empty name means info.
func ParseLevel(name string) (log.Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return log.InfoLevel, nil
	}
	if name == "warning" {
		name = "warn"
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return level, nil
}

// New returns a logger writing to w at the named level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          Prefix,
		Level:           lvl,
	})
	return l, nil
}
