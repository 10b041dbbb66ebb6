package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crossflow/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a table as a flow diagram",
		Long: `Render reads a table, connects the source column to the target column and
writes one file per requested format next to the input (or under --output).

Formats:
  svg       the flow diagram
  json      the computed layout (nodes, link paths, column orders)
  dot       the same graph as Graphviz DOT
  nodelink  the DOT graph rendered to SVG by Graphviz`,
		Example: `  crossflow render films.csv -s director -t year
  crossflow render films.csv -f svg,json -o out/films
  crossflow render films.csv --highlight 3 --title "Films by year"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			opts.Logger = c.Logger
			runner, err := c.newRunner(cmd, opts)
			if err != nil {
				return err
			}
			defer runner.Close()
			return c.renderOnce(cmd, runner, opts, output)
		},
	}

	flags.register(cmd)
	flags.registerRender(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input path without extension)")

	return cmd
}

// renderOnce executes the pipeline once and writes every artifact.
func (c *CLI) renderOnce(cmd *cobra.Command, runner *pipeline.Runner, opts pipeline.Options, output string) error {
	w := cmd.OutOrStdout()
	prog := newProgress(c.Logger)
	spin := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering "+filepath.Base(opts.Input))
	spin.Start()
	res, err := runner.Execute(cmd.Context(), opts)
	spin.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(res.Artifacts, basePath(output, opts.Input))
	if err != nil {
		return err
	}
	prog.done("rendered", "input", filepath.Base(opts.Input), "formats", len(paths))

	sel := res.Graph.Selection()
	printSuccess(w, "%s %s %s", StyleHighlight.Render(sel.Source), iconArrow, StyleHighlight.Render(sel.Target))
	for _, p := range paths {
		printFile(w, p)
	}
	printStats(w, res.Stats.NodeCount, res.Stats.LinkCount, res.Stats.Excluded, res.Stats.Crossings, res.CacheInfo.RenderHit)
	if res.Placeholder != "" {
		printWarning(w, "%s", res.Placeholder)
		return nil
	}
	printNextStep(w, "Explore interactively", fmt.Sprintf("%s explore %s -s %s -t %s", appName, opts.Input, quoteArg(sel.Source), quoteArg(sel.Target)))
	return nil
}

// writeArtifacts writes each artifact to base plus the format's extension
// and returns the written paths in a stable order.
func writeArtifacts(artifacts map[string][]byte, base string) ([]string, error) {
	var paths []string
	for _, format := range []string{pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatNodelink} {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + pipeline.FileExtension(format)
		if err := writeFile(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

// openOutput creates path, making parent directories as needed.
func openOutput(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output carries an artifact extension, that extension is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	for _, format := range []string{pipeline.FormatNodelink, pipeline.FormatSVG, pipeline.FormatJSON, pipeline.FormatDOT} {
		if ext := pipeline.FileExtension(format); strings.HasSuffix(output, ext) {
			return strings.TrimSuffix(output, ext)
		}
	}
	return output
}

// quoteArg quotes s for a shell when it contains anything but plain characters.
func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"'$`\\|&;<>()*?") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
