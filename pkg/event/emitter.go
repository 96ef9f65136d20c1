package event

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Emitter stamps events with a run ID and the current phase before passing
// them to a Sink. It is not safe for concurrent use; a run owns its emitter.
type Emitter struct {
	RunID string
	Sink  Sink
	Phase Phase

	now func() time.Time
}

// NewEmitter creates an emitter for one run. A nil sink discards events.
func NewEmitter(runID string, sink Sink) *Emitter {
	if sink == nil {
		sink = Discard
	}
	return &Emitter{RunID: runID, Sink: sink, Phase: PhaseStart, now: time.Now}
}

// Enter switches the phase stamped on subsequent events.
func (e *Emitter) Enter(p Phase) { e.Phase = p }

// Emit sends a message at the given severity with optional fields.
func (e *Emitter) Emit(sev Severity, fields map[string]any, format string, args ...any) {
	e.Sink.Emit(Event{
		RunID:    e.RunID,
		Phase:    e.Phase,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Fields:   fields,
		Time:     e.now(),
	})
}

func (e *Emitter) Debugf(format string, args ...any) { e.Emit(SeverityDebug, nil, format, args...) }
func (e *Emitter) Infof(format string, args ...any)  { e.Emit(SeverityInfo, nil, format, args...) }
func (e *Emitter) Warnf(format string, args ...any)  { e.Emit(SeverityWarn, nil, format, args...) }
func (e *Emitter) Errorf(format string, args ...any) { e.Emit(SeverityError, nil, format, args...) }

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
