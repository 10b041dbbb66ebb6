package cli

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/pipeline"
	"github.com/matzehuels/crossflow/pkg/view"
)

// defaultWatchDelay is the quiet period after the last file event before
// outputs are re-rendered. Editors often write a file in several steps.
const defaultWatchDelay = 300 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags  pipelineFlags
		output string
		delay  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render outputs whenever the input changes",
		Args:  cobra.ExactArgs(1),
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
			// watchFiles returns only after a running render finishes
			defer runner.Close()

			var mu sync.Mutex
			render := func() {
				mu.Lock()
				defer mu.Unlock()
				// reloading keeps config edits live; flags still win
				current, err := flags.resolve(cmd, args[0])
				if err != nil {
					c.Logger.Error("reload config", "error", err)
					return
				}
				current.Logger = c.Logger
				if err := c.renderOnce(cmd, runner, current, output); err != nil {
					c.Logger.Error("render failed", "error", errors.UserMessage(err))
				}
			}
			render()

			paths := []string{args[0]}
			switch {
			case flags.config != "":
				paths = append(paths, flags.config)
			case fileExists(pipeline.DefaultConfigFile):
				paths = append(paths, pipeline.DefaultConfigFile)
			}
			printInfo(cmd.OutOrStdout(), "Watching %s (ctrl+c to stop)", args[0])
			return watchFiles(cmd.Context(), paths, delay, c.Logger, render)
		},
	}

	flags.register(cmd)
	flags.registerRender(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().DurationVar(&delay, "delay", defaultWatchDelay, "quiet period before re-rendering")

	return cmd
}

// watchFiles calls onChange once per burst of changes to any of paths until
// ctx is done. Parent directories are watched rather than the files, so
// editors that replace a file on save keep being followed.
func watchFiles(ctx context.Context, paths []string, delay time.Duration, logger *log.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	targets := make(map[string]bool, len(paths))
	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}

	debounce := view.NewDebouncer(delay, onChange)
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevantEvent(ev, targets) {
				logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
				debounce.Trigger()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// relevantEvent reports whether ev changes the content of one of targets.
// Removals are ignored: a replacing editor follows them with a Create.
func relevantEvent(ev fsnotify.Event, targets map[string]bool) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err == nil && targets[abs]
}
