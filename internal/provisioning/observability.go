package provisioning

import (
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Observer receives structured events and free-form log lines while the
// pipeline runs.
type Observer interface {
	// Event emits a structured event.
	Event(event Event)

	// Infof logs an informational message.
	Infof(format string, args ...any)

	// Warnf logs a non-fatal condition.
	Warnf(format string, args ...any)
}

// Event represents a structured provisioning event.
type Event struct {
	Type      EventType // Type of event
	Step      string    // Step name, when the event belongs to one
	Message   string    // Human-readable message
	Timestamp time.Time // When the event occurred
}

// EventType represents the type of provisioning event.
type EventType string

const (
	// EventStepStarted indicates a step has started.
	EventStepStarted EventType = "step.started"
	// EventStepCompleted indicates a step completed successfully.
	EventStepCompleted EventType = "step.completed"
	// EventStepFailed indicates a step failed.
	EventStepFailed EventType = "step.failed"
	// EventStepSkipped indicates a step found its work already done.
	EventStepSkipped EventType = "step.skipped"
	// EventDryRun indicates an action was suppressed by dry-run mode.
	EventDryRun EventType = "dry-run"
	// EventWarning indicates a non-fatal condition.
	EventWarning EventType = "warning"
)

// ConsoleObserver renders events to stderr through a logr.Logger.
type ConsoleObserver struct {
	log logr.Logger
}

// NewConsoleObserver creates an observer writing to stderr. With verbose
// set, dry-run and diagnostic lines are included.
func NewConsoleObserver(verbose bool) *ConsoleObserver {
	verbosity := 0
	if verbose {
		verbosity = 1
	}
	log := funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
	return &ConsoleObserver{log: log}
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	log := o.log
	if event.Type == EventDryRun {
		log = o.log.V(1)
	}

	if event.Step != "" {
		log.Info(event.Message, "type", string(event.Type), "step", event.Step)
		return
	}
	log.Info(event.Message, "type", string(event.Type))
}

// Infof implements Observer.
func (o *ConsoleObserver) Infof(format string, args ...any) {
	o.log.Info(fmt.Sprintf(format, args...))
}

// Warnf implements Observer.
func (o *ConsoleObserver) Warnf(format string, args ...any) {
	o.log.Info(fmt.Sprintf(format, args...), "type", string(EventWarning))
}
