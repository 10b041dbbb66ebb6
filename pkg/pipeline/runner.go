package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crossflow/pkg/cache"
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/observability"
	"github.com/matzehuels/crossflow/pkg/sankey"
	"github.com/matzehuels/crossflow/pkg/view"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete read → build → layout → render pipeline.
// Layout is always recomputed because it is cheap; rendered artifacts are
// cached under the input hash and every option that affects them.
// A context cancelled during layout yields ctx.Err() and caches nothing.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	result := &Result{}

	// Stage 1: Read
	readStart := time.Now()
	t, dataHash, err := Read(opts.Input)
	if err != nil {
		return nil, err
	}
	sel, err := ResolveSelection(t, opts)
	if err != nil {
		return nil, err
	}
	result.Table = t
	result.DataHash = dataHash
	result.Stats.ReadTime = time.Since(readStart)
	opts.Source, opts.Target = sel.Source, sel.Target

	r.Logger.Debug("read table",
		"input", opts.Input,
		"rows", t.Len(),
		"columns", len(t.Columns),
		"duration", result.Stats.ReadTime)

	// Stage 2: Build
	hooks.OnBuildStart(ctx, sel.Source, sel.Target, t.Len())
	buildStart := time.Now()
	g := Build(t, sel)
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	stats := g.Stats()
	result.Stats.Rows = stats.Rows
	result.Stats.Excluded = stats.Excluded
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.LinkCount = g.LinkCount()
	hooks.OnBuildComplete(ctx, g.NodeCount(), g.LinkCount(), result.Stats.BuildTime)

	r.Logger.Info("built graph",
		"source", sel.Source,
		"target", sel.Target,
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
		"excluded", stats.Excluded,
		"duration", result.Stats.BuildTime)

	switch {
	case !sel.Complete():
		result.Placeholder = view.PlaceholderSelectionIncomplete.Message()
	case g.IsEmpty():
		result.Placeholder = view.PlaceholderNoConnections.Message()
	}
	if result.Placeholder != "" {
		r.Logger.Warn(result.Placeholder)
	}

	// Stage 3: Layout
	hooks.OnLayoutStart(ctx, g.NodeCount())
	layoutStart := time.Now()
	l := ComputeLayout(ctx, g, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	// a cancelled orderer returns its best order so far, which must not be
	// rendered or cached as the final diagram
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.Crossings = flow.CountCrossings(g, l.Column(flow.Left), l.Column(flow.Right))
	hooks.OnLayoutComplete(ctx, result.Stats.Crossings, result.Stats.LayoutTime)

	r.Logger.Info("computed layout",
		"crossings", result.Stats.Crossings,
		"height", l.Bottom-l.Top,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, dataHash, opts, result.Placeholder)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// RenderWithCacheInfo renders l with caching and reports whether every
// artifact came from the cache. dataHash identifies the input the layout
// was computed from.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *sankey.Layout, dataHash string, opts Options, placeholder string) (map[string][]byte, bool, error) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	r.applyLogger(&opts)
	hooks := observability.Cache()

	layoutKey := r.Keyer.LayoutKey(dataHash, opts.LayoutKeyOpts())
	keys := make(map[string]string, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = r.Keyer.ArtifactKey(layoutKey, opts.ArtifactKeyOpts(format))
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(keys))
		for format, key := range keys {
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil {
				r.Logger.Warn("cache read failed", "format", format, "error", err)
			}
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, key)
				break
			}
			hooks.OnCacheHit(ctx, key)
			artifacts[format] = data
		}
		if len(artifacts) == len(keys) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, l, opts, placeholder)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		if err := r.Cache.Set(ctx, keys[format], data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, keys[format], len(data))
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// OpenCache opens the cache backend described by opts. The returned keyer
// scopes keys to opts.Namespace when one is set.
func OpenCache(ctx context.Context, opts CacheOptions) (cache.Cache, cache.Keyer, error) {
	var keyer cache.Keyer = cache.NewDefaultKeyer()
	if opts.Namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, opts.Namespace+":")
	}

	switch opts.Backend {
	case CacheNone:
		return cache.NewNullCache(), keyer, nil
	case CacheRedis:
		c, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, keyer, nil
	case CacheFile, "":
		dir := opts.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return nil, nil, err
			}
			dir = d
		}
		c, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return c, keyer, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
