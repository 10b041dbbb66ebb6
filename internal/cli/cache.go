package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crossflow/pkg/cache"
	"github.com/matzehuels/crossflow/pkg/pipeline"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheFlags selects the backend the cache subcommands act on. It shares
// the config file with the pipeline commands.
type cacheFlags struct {
	config string
	opts   pipeline.CacheOptions
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML config file")
	cmd.Flags().StringVar(&f.opts.Backend, "cache", pipeline.DefaultCacheBackend, "cache backend: file, redis")
	cmd.Flags().StringVar(&f.opts.Dir, "cache-dir", "", "file cache directory (default: user cache dir)")
	cmd.Flags().StringVar(&f.opts.RedisAddr, "redis-addr", "", "redis address for --cache redis")
}

func (f *cacheFlags) resolve(cmd *cobra.Command) (pipeline.CacheOptions, error) {
	var opts pipeline.Options
	if f.config != "" {
		if err := pipeline.LoadConfig(f.config, &opts); err != nil {
			return opts.Cache, err
		}
	} else if _, err := pipeline.LoadDefaultConfig(&opts); err != nil {
		return opts.Cache, err
	}
	if cmd.Flags().Changed("cache") || opts.Cache.Backend == "" {
		opts.Cache.Backend = f.opts.Backend
	}
	if cmd.Flags().Changed("cache-dir") {
		opts.Cache.Dir = f.opts.Dir
	}
	if cmd.Flags().Changed("redis-addr") {
		opts.Cache.RedisAddr = f.opts.RedisAddr
	}
	return opts.Cache, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var flags cacheFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			store, _, err := pipeline.OpenCache(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("cache backend %q cannot be cleared", opts.Backend)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "Cleared %s cache", opts.Backend)
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail(w, "Directory: %s", fc.Dir())
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				d, err := cache.DefaultDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				dir = d
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "cache-dir", "", "file cache directory")
	return cmd
}
