package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/buildinfo"
	"github.com/matzehuels/pybundle/pkg/config"
	"github.com/matzehuels/pybundle/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "pybundle"

	// defaultAddr is the listen address of the HTTP front-end.
	defaultAddr = ":8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "pybundle concatenates a Python program into one dependency-ordered file",
		Long:         `pybundle follows the local imports of a Python entry file, orders the discovered files so every dependency comes before its dependents, and writes them into a single annotated text bundle.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.bundleCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.rootsCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// =============================================================================
// Settings Flags
// =============================================================================

// settingsFlags are the flags shared by every command that runs the pipeline.
type settingsFlags struct {
	configFile    string
	markers       []string
	searchPaths   []string
	noSystemPaths bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configFile, "config", "", "TOML settings file")
	cmd.Flags().StringSliceVar(&f.markers, "marker", nil, "project root marker (repeatable, replaces defaults)")
	cmd.Flags().StringSliceVar(&f.searchPaths, "search-path", nil, "extra module search directory (repeatable)")
	cmd.Flags().BoolVar(&f.noSystemPaths, "no-system-paths", false, "do not scan the interpreter's standard directories")
}

// config returns only the explicitly provided settings: the --config file,
// then the environment, then flags. Defaults and the project's
// [tool.pybundle] table are applied by the pipeline underneath.
func (f *settingsFlags) config(getenv func(string) string) (config.Config, error) {
	var c config.Config
	if f.configFile != "" {
		fc, err := config.LoadFile(f.configFile)
		if err != nil {
			return config.Config{}, err
		}
		c = fc
	}
	c = c.Merge(config.FromEnv(getenv))
	return c.Merge(config.Config{
		Markers:       f.markers,
		SearchPaths:   f.searchPaths,
		NoSystemPaths: f.noSystemPaths,
	}), nil
}

// outputArg picks the bundle path from the optional second argument or the
// -o flag. The flag wins when both are given.
func outputArg(args []string, flag string) string {
	if flag != "" {
		return flag
	}
	if len(args) > 1 {
		return args[1]
	}
	return ""
}
