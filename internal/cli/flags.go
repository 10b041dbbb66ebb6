package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/crossflow/pkg/pipeline"
	"github.com/matzehuels/crossflow/pkg/sankey"
)

// pipelineFlags binds the pipeline options shared by render, explore and
// watch. Values start from the config file; only flags the user actually
// set override it.
type pipelineFlags struct {
	config  string
	noCache bool
	margin  []float64
	opts    pipeline.Options
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	o := &f.opts

	fs.StringVarP(&f.config, "config", "c", "", "TOML config file (default: ./"+pipeline.DefaultConfigFile+" when present)")

	fs.StringVarP(&o.Source, "source", "s", "", "source column (left side)")
	fs.StringVarP(&o.Target, "target", "t", "", "target column (right side)")
	fs.StringVar(&o.Columns, "columns", pipeline.DefaultColumns, "default column strategy: first-two, keywords")

	fs.Float64Var(&o.Width, "width", sankey.DefaultWidth, "surface width")
	fs.Float64Var(&o.Height, "height", sankey.DefaultHeight, "surface height")
	fs.Float64SliceVar(&f.margin, "margin", nil, "margins as top,right,bottom,left")
	fs.Float64Var(&o.NodeWidth, "node-width", sankey.DefaultNodeWidth, "node rectangle width")
	fs.Float64Var(&o.NodePadding, "node-padding", sankey.DefaultNodePadding, "vertical gap between nodes")
	fs.Float64Var(&o.FlowScale, "scale", sankey.DefaultFlowScale, "pixels per unit of flow")
	fs.IntVar(&o.Iterations, "iterations", sankey.DefaultIterations, "barycenter passes")
	fs.StringVar(&o.Ordering, "ordering", pipeline.DefaultOrdering, "ordering algorithm: barycentric, identity")

	fs.BoolVar(&f.noCache, "no-cache", false, "disable the render cache")
	fs.StringVar(&o.Cache.Backend, "cache", pipeline.DefaultCacheBackend, "cache backend: file, redis, none")
	fs.StringVar(&o.Cache.Dir, "cache-dir", "", "file cache directory (default: user cache dir)")
	fs.StringVar(&o.Cache.RedisAddr, "redis-addr", "", "redis address for --cache redis")
}

// registerRender adds the flags that only affect rendered outputs.
func (f *pipelineFlags) registerRender(cmd *cobra.Command) {
	fs := cmd.Flags()
	o := &f.opts
	fs.StringSliceVarP(&o.Formats, "format", "f", []string{pipeline.FormatSVG}, "output format(s): svg, json, dot, nodelink")
	fs.BoolVar(&o.NoLabels, "no-labels", false, "omit node labels")
	fs.BoolVar(&o.Detailed, "detailed", false, "show flow totals in node-link labels")
	fs.StringVar(&o.Title, "title", "", "document title")
	fs.IntSliceVar(&o.Highlight, "highlight", nil, "row references whose links are emphasized")
	fs.BoolVar(&o.Refresh, "refresh", false, "ignore cached outputs")
}

// resolve loads the config file, applies changed flags on top and sets
// input when given.
func (f *pipelineFlags) resolve(cmd *cobra.Command, input string) (pipeline.Options, error) {
	var opts pipeline.Options
	if f.config != "" {
		if err := pipeline.LoadConfig(f.config, &opts); err != nil {
			return opts, err
		}
	} else if _, err := pipeline.LoadDefaultConfig(&opts); err != nil {
		return opts, err
	}

	src := f.opts
	overrides := map[string]func(){
		"source":       func() { opts.Source = src.Source },
		"target":       func() { opts.Target = src.Target },
		"columns":      func() { opts.Columns = src.Columns },
		"width":        func() { opts.Width = src.Width },
		"height":       func() { opts.Height = src.Height },
		"node-width":   func() { opts.NodeWidth = src.NodeWidth },
		"node-padding": func() { opts.NodePadding = src.NodePadding },
		"scale":        func() { opts.FlowScale = src.FlowScale },
		"iterations":   func() { opts.Iterations = src.Iterations },
		"ordering":     func() { opts.Ordering = src.Ordering },
		"cache":        func() { opts.Cache.Backend = src.Cache.Backend },
		"cache-dir":    func() { opts.Cache.Dir = src.Cache.Dir },
		"redis-addr":   func() { opts.Cache.RedisAddr = src.Cache.RedisAddr },
		"format":       func() { opts.Formats = src.Formats },
		"no-labels":    func() { opts.NoLabels = src.NoLabels },
		"detailed":     func() { opts.Detailed = src.Detailed },
		"title":        func() { opts.Title = src.Title },
		"highlight":    func() { opts.Highlight = src.Highlight },
		"refresh":      func() { opts.Refresh = src.Refresh },
	}
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}

	if cmd.Flags().Changed("margin") {
		if len(f.margin) != 4 {
			return opts, fmt.Errorf("--margin takes 4 values (top,right,bottom,left), got %d", len(f.margin))
		}
		opts.Margin = sankey.Margin{Top: f.margin[0], Right: f.margin[1], Bottom: f.margin[2], Left: f.margin[3]}
	}
	if f.noCache {
		opts.Cache.Backend = pipeline.CacheNone
	}
	if input != "" {
		opts.Input = input
	}
	return opts, nil
}
