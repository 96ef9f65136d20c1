package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/pipeline"
	"github.com/matzehuels/pybundle/pkg/project"
)

// bundleOpts holds the command-line flags for the bundle command.
type bundleOpts struct {
	output   string
	root     string
	dryRun   bool
	settings settingsFlags
}

// bundleCommand creates the bundle command, the main entry point: it runs
// the full pipeline and writes the bundle.
func (c *CLI) bundleCommand() *cobra.Command {
	var opts bundleOpts

	cmd := &cobra.Command{
		Use:   "bundle <entry.py> [output]",
		Short: "Concatenate an entry file and its local imports into one file",
		Long: `Bundle follows the local imports of an entry file, orders all discovered
files dependencies-first and writes them into a single text file with the
entry file last.

Imports of the standard library and of installed third-party packages are
left out. Import cycles and files with syntax errors are reported but do
not stop the bundle from being written.`,
		Example: `  pybundle bundle app/main.py
  pybundle bundle app/main.py dist/app.txt
  pybundle bundle app/main.py --root . --search-path vendor --dry-run`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBundle(cmd.Context(), args[0], outputArg(args, opts.output), &opts)
		},
	}

	opts.register(cmd)

	return cmd
}

func (o *bundleOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "bundle path (default: combined_output.txt)")
	cmd.Flags().StringVar(&o.root, "root", "", "project root (default: detected from markers)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "compute the order without writing the bundle")
	o.settings.register(cmd)
}

func (c *CLI) runBundle(ctx context.Context, entry, output string, opts *bundleOpts) error {
	cfg, err := opts.settings.config(os.Getenv)
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)

	res, err := c.newRunner().Run(ctx, pipeline.Options{
		Entry:  entry,
		Output: output,
		Root:   opts.root,
		DryRun: opts.dryRun,
		Config: cfg,
		Sink:   statusSink{logger: logger},
	})
	if err != nil {
		return err
	}

	printNewline()
	if opts.dryRun {
		printSuccess("Ordered %d files", len(res.Order))
		for _, f := range res.Order {
			printFile(project.Rel(res.Root.Dir, f))
		}
	} else {
		printSuccess("Bundle written")
		printFile(res.Output)
	}
	printStats(res.Stats.FileCount, res.Stats.EdgeCount, res.Stats.CycleCount)
	if res.Digest != "" {
		printDetail("sha256 %s", res.Digest[:12])
	}
	printNewline()
	printNextStep("Inspect the import graph", "pybundle graph "+entry+" -f svg -o imports.svg")
	return nil
}
