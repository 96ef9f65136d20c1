package event

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Phase identifies the pipeline step that produced an event.
type Phase string

// Pipeline phases, in execution order.
const (
	PhaseStart Phase = "start"
	PhaseRoot  Phase = "root"
	PhaseGraph Phase = "graph"
	PhaseSort  Phase = "sort"
	PhaseWrite Phase = "write"
	PhaseDone  Phase = "done"
)

// Severity ranks an event.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

var severityNames = [...]string{"debug", "info", "warn", "error"}

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s < SeverityDebug || s > SeverityError {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for i, n := range severityNames {
		if n == name {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", string(b))
}

// Event is one progress record.
type Event struct {
	RunID    string         `json:"run_id"`
	Phase    Phase          `json:"phase"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Fields   map[string]any `json:"fields,omitempty"`
	Time     time.Time      `json:"time"`
}

// Sink receives events.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans an event out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(e Event) {
		for _, s := range live {
			s.Emit(e)
		}
	})
}

// Collector records events in memory. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends e.
func (c *Collector) Emit(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

// Events returns a copy of everything recorded so far.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Filter returns the recorded events at or above min.
func (c *Collector) Filter(min Severity) []Event {
	var out []Event
	for _, e := range c.Events() {
		if e.Severity >= min {
			out = append(out, e)
		}
	}
	return out
}

// ChannelSink hands events to another goroutine in emission order.
// Emit blocks while the buffer is full, so no event is dropped.
type ChannelSink struct {
	ch     chan Event
	mu     sync.Mutex
	closed bool
}

// NewChannelSink creates a sink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, buffer)}
}

// Emit sends e. Events emitted after Close are dropped.
func (s *ChannelSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- e
}

// C returns the receive side.
func (s *ChannelSink) C() <-chan Event { return s.ch }

// Close closes the channel. It is safe to call more than once.
func (s *ChannelSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// LogSink writes events to a charm logger, mapping severities onto log
// levels and fields onto key/value pairs.
func LogSink(l *log.Logger) Sink {
	if l == nil {
		l = log.Default()
	}
	return SinkFunc(func(e Event) {
		kv := []any{"phase", string(e.Phase)}
		for _, k := range sortedKeys(e.Fields) {
			kv = append(kv, k, e.Fields[k])
		}
		switch e.Severity {
		case SeverityDebug:
			l.Debug(e.Message, kv...)
		case SeverityWarn:
			l.Warn(e.Message, kv...)
		case SeverityError:
			l.Error(e.Message, kv...)
		default:
			l.Info(e.Message, kv...)
		}
	})
}
