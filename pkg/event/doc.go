// Package event defines the structured progress stream emitted by a
// bundling run.
//
// Every [Event] carries the run identifier, the [Phase] that produced it, a
// [Severity] and a human-readable message. Front-ends subscribe through a
// [Sink] and format events however they like: the CLI styles them with
// lipgloss, the TUI receives them over a [ChannelSink], the HTTP server
// collects them with a [Collector] and returns them as JSON.
//
// Sinks are called synchronously from the goroutine running the pipeline.
// Implementations that hand events to another goroutine must do their own
// synchronization; the ones provided here do.
package event
