// Package logging provides the system-log event stream: structured, leveled
// records with an entity category, optional entity id, and a message.
// Built on zerolog, the ecosystem's standard structured-logging library.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Category classifies a system-log event by the entity family it concerns.
type Category string

const (
	CategoryConnection Category = "connection"
	CategoryTask        Category = "task"
	CategoryJob         Category = "job"
	CategoryWorker      Category = "worker"
	CategorySystem      Category = "system"
)

var base zerolog.Logger

func init() {
	base = newLogger(os.Stderr, false)
}

func newLogger(w io.Writer, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// Configure rewires the base logger, raising the level when verbose is set.
// Called once at process startup from cmd/root.go.
func Configure(verbose bool, pretty bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	base = newLogger(os.Stderr, pretty).Level(level)
}

// Event is one entry in the system-log stream.
type Event struct {
	Category   Category
	EntityType string
	EntityID   string
	Message    string
}

func logWithLevel(ev *zerolog.Event, e Event) {
	ev = ev.Str("category", string(e.Category))
	if e.EntityType != "" {
		ev = ev.Str("entity_type", e.EntityType)
	}
	if e.EntityID != "" {
		ev = ev.Str("entity_id", e.EntityID)
	}
	ev.Msg(e.Message)
}

func Debug(e Event) { logWithLevel(base.Debug(), e) }
func Info(e Event)  { logWithLevel(base.Info(), e) }
func Warn(e Event)  { logWithLevel(base.Warn(), e) }
func Error(e Event) { logWithLevel(base.Error(), e) }

// InvariantViolation logs an InternalInvariantViolation at error level under
// the system category. The process does not exit — only the offending job
// terminates.
func InvariantViolation(message string) {
	Error(Event{Category: CategorySystem, Message: message})
}
