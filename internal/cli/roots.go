package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pybundle/pkg/config"
	"github.com/matzehuels/pybundle/pkg/errors"
	"github.com/matzehuels/pybundle/pkg/project"
)

// rootsCommand creates the roots command, which shows how a file's
// project root is detected.
func (c *CLI) rootsCommand() *cobra.Command {
	var settings settingsFlags

	cmd := &cobra.Command{
		Use:   "roots <file>",
		Short: "Show the project root detected for a file",
		Long: `Roots walks up from a file's directory and reports the first directory
containing a project root marker, which marker matched, and any
[tool.pybundle] settings found there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit, err := settings.config(os.Getenv)
			if err != nil {
				return err
			}
			return runRoots(args[0], config.Default().Merge(explicit))
		},
	}

	settings.register(cmd)
	return cmd
}

func runRoots(file string, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := os.Stat(file); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", file)
	}
	root, err := project.Locate(file, cfg.Markers)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "locate root for %s", file)
	}

	printKeyValue("Root", root.Dir)
	if root.Fallback() {
		printKeyValue("Marker", "none")
		printWarning("No marker found (%s); using the file's directory", strings.Join(cfg.Markers, ", "))
	} else {
		printKeyValue("Marker", root.Marker)
	}
	if name := config.ProjectName(root.Dir); name != "" {
		printKeyValue("Project", name)
	}

	pc, ok, err := config.LoadPyproject(root.Dir)
	switch {
	case err != nil:
		printWarning("%s", errors.Detail(err))
	case ok:
		printKeyValue("Settings", "pyproject.toml [tool.pybundle]")
		if pc.Output != "" {
			printDetail("output = %s", pc.Output)
		}
		if len(pc.Markers) > 0 {
			printDetail("markers = %s", strings.Join(pc.Markers, ", "))
		}
		if len(pc.SearchPaths) > 0 {
			printDetail("search-paths = %s", strings.Join(pc.SearchPaths, ", "))
		}
	}
	return nil
}
