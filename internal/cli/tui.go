package cli

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/event"
	"github.com/matzehuels/pybundle/pkg/pipeline"
	"github.com/matzehuels/pybundle/pkg/project"
)

// eventBuffer is the ChannelSink capacity; the runner blocks while it is
// full until the view catches up.
const eventBuffer = 64

var (
	phaseDoneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	phaseActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	phasePendingStyle = lipgloss.NewStyle().Foreground(colorDim)
	logBoxStyle       = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// tuiPhases are the phases shown in the progress header.
var tuiPhases = []event.Phase{event.PhaseRoot, event.PhaseGraph, event.PhaseSort, event.PhaseWrite}

// =============================================================================
// Messages
// =============================================================================

// eventMsg delivers one pipeline event to the model.
type eventMsg event.Event

// eventsClosedMsg reports that the run will emit no more events.
type eventsClosedMsg struct{}

// runDoneMsg carries the outcome of the run.
type runDoneMsg struct {
	res *pipeline.Result
	err error
}

// runOutcome is filled by the runner goroutine; done is closed afterwards
// so any number of readers can wait on it.
type runOutcome struct {
	done chan struct{}
	res  *pipeline.Result
	err  error
}

func newRunOutcome() *runOutcome {
	return &runOutcome{done: make(chan struct{})}
}

func (o *runOutcome) finish(res *pipeline.Result, err error) {
	o.res, o.err = res, err
	close(o.done)
}

// waitForEvent returns a command that blocks on the next event.
func waitForEvent(ch <-chan event.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

func waitForResult(o *runOutcome) tea.Cmd {
	return func() tea.Msg {
		<-o.done
		return runDoneMsg{res: o.res, err: o.err}
	}
}

// =============================================================================
// RunModel - Live bundling progress
// =============================================================================

// RunModel is the bubbletea model for a bundling run in progress. Events
// arrive from the runner goroutine through a ChannelSink.
type RunModel struct {
	Entry  string
	Events []event.Event
	Phase  event.Phase
	Result *pipeline.Result
	Err    error
	Done   bool
	Height int

	events <-chan event.Event
	result *runOutcome
}

// NewRunModel creates a model that reads from events until it is closed and
// then waits for the run's outcome.
func NewRunModel(entry string, events <-chan event.Event, result *runOutcome) RunModel {
	return RunModel{
		Entry:  entry,
		Phase:  event.PhaseStart,
		Height: 12,
		events: events,
		result: result,
	}
}

func (m RunModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "esc", "enter":
			if m.Done {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 3)
	case eventMsg:
		m.Events = append(m.Events, event.Event(msg))
		m.Phase = msg.Phase
		return m, waitForEvent(m.events)
	case eventsClosedMsg:
		return m, waitForResult(m.result)
	case runDoneMsg:
		m.Result, m.Err, m.Done = msg.res, msg.err, true
	}
	return m, nil
}

func (m RunModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("pybundle"))
	b.WriteString(" ")
	b.WriteString(StyleValue.Render(m.Entry))
	b.WriteString("\n\n")
	b.WriteString(m.phaseLine())
	b.WriteString("\n")

	lines := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		if e.Severity == event.SeverityDebug {
			continue
		}
		lines = append(lines, formatEventLine(e))
	}
	if len(lines) > m.Height {
		lines = lines[len(lines)-m.Height:]
	}
	if len(lines) > 0 {
		b.WriteString(logBoxStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case !m.Done:
		b.WriteString(StyleDim.Render("bundling...  ctrl+c quit"))
	case m.Err != nil:
		b.WriteString(StyleError.Render(iconError + " Bundling failed"))
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("q quit"))
	default:
		b.WriteString(m.summary())
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

// phaseLine renders "root → graph → sort → write" with the current phase
// highlighted.
func (m RunModel) phaseLine() string {
	current := slices.Index(tuiPhases, m.Phase)
	if m.Done && m.Err == nil {
		current = len(tuiPhases)
	}
	parts := make([]string, len(tuiPhases))
	for i, p := range tuiPhases {
		switch {
		case m.Phase == event.PhaseDone || i < current:
			parts[i] = phaseDoneStyle.Render(iconSuccess + " " + string(p))
		case i == current:
			parts[i] = phaseActiveStyle.Render(string(p))
		default:
			parts[i] = phasePendingStyle.Render(string(p))
		}
	}
	return strings.Join(parts, StyleDim.Render(" "+iconArrow+" "))
}

func (m RunModel) summary() string {
	res := m.Result
	if res == nil {
		return ""
	}
	target := res.Output
	if target == "" {
		target = "dry run"
	}
	line := fmt.Sprintf("%s %d files bundled %s %s", iconSuccess, len(res.Order), iconArrow, target)
	if n := len(res.Cycles); n > 0 {
		line += StyleWarning.Render(fmt.Sprintf("  (%d cycles)", n))
	}
	return StyleSuccess.Render(line)
}

func formatEventLine(e event.Event) string {
	switch e.Severity {
	case event.SeverityWarn:
		return styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(e.Message)
	case event.SeverityError:
		return styleIconError.Render(iconError) + " " + StyleError.Render(e.Message)
	default:
		return styleIconInfo.Render(iconInfo) + " " + e.Message
	}
}

// =============================================================================
// Command
// =============================================================================

// tuiCommand creates the tui command: a bundle run with a live view.
func (c *CLI) tuiCommand() *cobra.Command {
	var opts bundleOpts

	cmd := &cobra.Command{
		Use:   "tui <entry.py> [output]",
		Short: "Bundle with an interactive progress view",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), args[0], outputArg(args, opts.output), &opts)
		},
	}

	opts.register(cmd)

	return cmd
}

func (c *CLI) runTUI(ctx context.Context, entry, output string, opts *bundleOpts) error {
	cfg, err := opts.settings.config(os.Getenv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The view owns the terminal; keep the runner's log lines out of it.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.FatalLevel)
	defer c.Logger.SetLevel(level)

	sink := event.NewChannelSink(eventBuffer)
	outcome := newRunOutcome()
	go func() {
		res, err := c.newRunner().Run(ctx, pipeline.Options{
			Entry:  entry,
			Output: output,
			Root:   opts.root,
			DryRun: opts.dryRun,
			Config: cfg,
			Sink:   sink,
		})
		sink.Close()
		outcome.finish(res, err)
	}()

	final, err := tea.NewProgram(NewRunModel(entry, sink.C(), outcome), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return err
	}

	if m, ok := final.(RunModel); ok && m.Done {
		return m.Err
	}

	// Quit before the run finished: stop at the next phase boundary and
	// drain the sink so the runner never blocks.
	cancel()
	for range sink.C() {
	}
	<-outcome.done
	if outcome.err == nil && outcome.res.Output != "" {
		printInfo("Bundle written to %s", project.Rel(outcome.res.Root.Dir, outcome.res.Output))
	}
	return outcome.err
}
