// Package cli implements the crossflow command-line interface.
//
// The CLI renders tabular files as two-column flow diagrams, explores them
// interactively in the terminal and keeps rendered outputs in sync with an
// input file. It is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: Generate SVG, JSON, DOT or node-link SVG outputs
//   - columns: Inspect a table and the default column selection
//   - explore: Reorder nodes and look up rows in an interactive view
//   - watch: Re-render whenever the input file changes
//   - cache: Manage the render cache
//   - version: Print build information
//
// # Configuration
//
// Every pipeline option can be set in a TOML file (crossflow.toml in the
// working directory, or --config). Flags override file values.
package cli

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crossflow/pkg/buildinfo"
	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "crossflow"

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
		Short:        "Crossflow draws the connections between two columns of a table",
		Long:         `Crossflow reads a CSV, TSV, JSON or YAML table, aggregates the rows that connect a source column to a target column, and draws the result as a two-column flow diagram with as few crossing links as possible.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.columnsCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			return nil
		},
	}
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(cmd *cobra.Command, opts pipeline.Options) (*pipeline.Runner, error) {
	store, keyer, err := pipeline.OpenCache(cmd.Context(), opts.Cache)
	if err != nil {
		if opts.Cache.Backend == pipeline.CacheRedis {
			return nil, err
		}
		c.Logger.Warn("cache disabled", "error", err)
		return pipeline.NewRunner(nil, nil, c.Logger), nil
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// =============================================================================
// Errors
// =============================================================================

// FormatError renders err for the terminal: the message of a coded error,
// followed by its cause when there is one.
func FormatError(err error) string {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return styleIconError.Render(iconError) + " " + err.Error()
	}
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return styleIconError.Render(iconError) + " " + msg + " " + StyleDim.Render("["+string(e.Code)+"]")
}
