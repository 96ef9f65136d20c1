package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/event"
	graphio "github.com/matzehuels/pybundle/pkg/io"
	"github.com/matzehuels/pybundle/pkg/pipeline"
	"github.com/matzehuels/pybundle/pkg/project"
	"github.com/matzehuels/pybundle/pkg/render/nodelink"
)

const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

var graphFormats = []string{formatJSON, formatDOT, formatSVG}

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string
	format   string
	root     string
	detailed bool
	settings settingsFlags
}

// graphCommand creates the graph command, which exports the import graph
// of an entry file without writing a bundle.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatJSON}

	cmd := &cobra.Command{
		Use:   "graph <entry.py>",
		Short: "Export the import graph of an entry file",
		Long: `Graph discovers the same files as bundle and exports the import graph
instead of the bundle. Edges point from the importing file to the imported
file; import cycles are marked.

Formats:
  json  nodes, edges, bundle order and cycles
  dot   Graphviz source (cycle edges dashed red)
  svg   rendered diagram`,
		Example: `  pybundle graph app/main.py
  pybundle graph app/main.py -f svg -o imports.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(graphFormats, opts.format) {
				return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want json, dot or svg)", opts.format)
			}
			return c.runGraph(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: json, dot, svg")
	cmd.Flags().StringVar(&opts.root, "root", "", "project root (default: detected from markers)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include file metadata in DOT/SVG labels")
	opts.settings.register(cmd)

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, entry string, opts *graphOpts) error {
	cfg, err := opts.settings.config(os.Getenv)
	if err != nil {
		return err
	}
	logger := loggerFromContext(ctx)

	res, err := c.newRunner().Run(ctx, pipeline.Options{
		Entry:  entry,
		Root:   opts.root,
		DryRun: true,
		Config: cfg,
		Sink:   event.LogSink(logger),
	})
	if err != nil {
		return err
	}

	switch {
	case opts.output == "":
		return encodeGraph(ctx, stdout, res, opts)
	case opts.format == formatJSON:
		if err := graphio.ExportJSON(res.Graph, opts.output, jsonOptions(res)); err != nil {
			return errors.Wrap(errors.ErrCodeOutputIO, err, "write %s", opts.output)
		}
	default:
		var buf bytes.Buffer
		if err := encodeGraph(ctx, &buf, res, opts); err != nil {
			return err
		}
		if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeOutputIO, err, "write %s", opts.output)
		}
	}

	printSuccess("Graph written")
	printFile(opts.output)
	printStats(res.Graph.NodeCount(), res.Graph.EdgeCount(), len(res.Cycles))
	printDetail("%d leaf files", len(res.Graph.Sinks()))
	printCycles(res.Cycles, func(p string) string { return project.Rel(res.Root.Dir, p) })
	return nil
}

func encodeGraph(ctx context.Context, w io.Writer, res *pipeline.Result, opts *graphOpts) error {
	switch opts.format {
	case formatJSON:
		return graphio.WriteJSON(res.Graph, w, jsonOptions(res))
	case formatDOT, formatSVG:
		dot := nodelink.ToDOT(res.Graph, nodelink.Options{
			Entry:    res.Entry,
			Cycles:   res.Cycles,
			Order:    res.Order,
			Detailed: opts.detailed,
		})
		if opts.format == formatDOT {
			_, err := io.WriteString(w, dot)
			return err
		}
		return renderSVG(ctx, w, dot)
	}
	return fmt.Errorf("unsupported format %q", opts.format)
}

func jsonOptions(res *pipeline.Result) graphio.Options {
	return graphio.Options{
		Root:   res.Root.Dir,
		Entry:  res.Entry,
		Order:  res.Order,
		Cycles: res.Cycles,
	}
}

func renderSVG(ctx context.Context, w io.Writer, dot string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	spin := newSpinner(ctx, "Rendering graph...")
	spin.Start()
	svg, err := nodelink.RenderSVG(ctx, dot)
	spin.Stop()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	prog.done("Rendered graph")
	_, err = w.Write(svg)
	return err
}
