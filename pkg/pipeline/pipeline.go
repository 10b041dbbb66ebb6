// Package pipeline provides the batch visualization pipeline for crossflow.
//
// This package implements the complete read → build → layout → render
// pipeline used by the render and watch commands. Centralizing it keeps
// every entry point on the same defaults and cache keys.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Read: Decode a CSV, TSV, JSON or YAML table and resolve the column selection
//  2. Build: Aggregate the selected columns into a bipartite flow graph
//  3. Layout: Order and pack both columns and route the links
//  4. Render: Generate output in various formats (SVG, JSON, DOT, node-link SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   "films.csv",
//	    Source:  "director",
//	    Target:  "year",
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/crossflow/pkg/cache"
	"github.com/matzehuels/crossflow/pkg/errors"
	"github.com/matzehuels/crossflow/pkg/flow"
	"github.com/matzehuels/crossflow/pkg/ordering"
	"github.com/matzehuels/crossflow/pkg/sankey"
	"github.com/matzehuels/crossflow/pkg/table"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and config files
// =============================================================================

const (
	// DefaultOrdering is the default column ordering algorithm.
	DefaultOrdering = OrderingBarycentric

	// DefaultColumns is the default column strategy used when no explicit
	// source or target is given.
	DefaultColumns = ColumnsFirstTwo

	// DefaultCacheBackend is the default cache backend.
	DefaultCacheBackend = CacheFile
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatNodelink = "nodelink"
)

// Ordering algorithms.
const (
	OrderingBarycentric = "barycentric"
	OrderingIdentity    = "identity"
)

// Column strategies.
const (
	ColumnsFirstTwo = "first-two"
	ColumnsKeywords = "keywords"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodelink: true,
}

// FileExtension returns the file suffix used when writing an artifact.
func FileExtension(format string) string {
	switch format {
	case FormatNodelink:
		return ".nodelink.svg"
	case FormatDOT:
		return ".dot"
	case FormatJSON:
		return ".json"
	}
	return ".svg"
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline. It is loadable from
// TOML (see [LoadConfig]) and overridable from CLI flags.
type Options struct {
	// Read options
	Input   string `json:"input,omitempty" toml:"input"`
	Source  string `json:"source,omitempty" toml:"source"`
	Target  string `json:"target,omitempty" toml:"target"`
	Columns string `json:"columns,omitempty" toml:"columns"`

	// Layout options
	Width         float64       `json:"width,omitempty" toml:"width"`
	Height        float64       `json:"height,omitempty" toml:"height"`
	Margin        sankey.Margin `json:"margin" toml:"margin"`
	NodeWidth     float64       `json:"node_width,omitempty" toml:"node_width"`
	NodePadding   float64       `json:"node_padding,omitempty" toml:"node_padding"`
	FlowScale     float64       `json:"flow_scale,omitempty" toml:"flow_scale"`
	MinNodeHeight float64       `json:"min_node_height,omitempty" toml:"min_node_height"`
	MinLinkWidth  float64       `json:"min_link_width,omitempty" toml:"min_link_width"`
	Iterations    int           `json:"iterations,omitempty" toml:"iterations"`
	Ordering      string        `json:"ordering,omitempty" toml:"ordering"`

	// Render options
	Formats   []string `json:"formats,omitempty" toml:"formats"`
	NoLabels  bool     `json:"no_labels,omitempty" toml:"no_labels"`
	Detailed  bool     `json:"detailed,omitempty" toml:"detailed"`
	Title     string   `json:"title,omitempty" toml:"title"`
	Highlight []int    `json:"highlight,omitempty" toml:"highlight"`
	Refresh   bool     `json:"refresh,omitempty" toml:"refresh"`

	Cache CacheOptions `json:"cache" toml:"cache"`

	// Runtime options (not serialized)
	Logger  *log.Logger      `json:"-" toml:"-"`
	Orderer ordering.Orderer `json:"-" toml:"-"`
}

// CacheOptions selects and configures the cache backend.
type CacheOptions struct {
	Backend       string `json:"backend,omitempty" toml:"backend"`
	Dir           string `json:"dir,omitempty" toml:"dir"`
	RedisAddr     string `json:"redis_addr,omitempty" toml:"redis_addr"`
	RedisPassword string `json:"-" toml:"redis_password"`
	RedisDB       int    `json:"redis_db,omitempty" toml:"redis_db"`
	Namespace     string `json:"namespace,omitempty" toml:"namespace"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Table is the decoded input.
	Table *table.Table

	// Graph is the built flow graph.
	Graph *flow.Graph

	// DataHash is the content hash of the input file.
	DataHash string

	// Layout is the computed geometry.
	Layout *sankey.Layout

	// Placeholder is non-empty when there is nothing to draw.
	Placeholder string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Excluded   int
	NodeCount  int
	LinkCount  int
	Crossings  int
	ReadTime   time.Duration
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	cfg := o.SankeyConfig()
	o.Width = cfg.Width
	o.Height = cfg.Height
	o.Margin = cfg.Margin
	o.NodeWidth = cfg.NodeWidth
	o.NodePadding = cfg.NodePadding
	o.FlowScale = cfg.FlowScale
	o.MinNodeHeight = cfg.MinNodeHeight
	o.MinLinkWidth = cfg.MinLinkWidth
	o.Iterations = cfg.Iterations
	if o.Ordering == "" {
		o.Ordering = DefaultOrdering
	}
	if o.Columns == "" {
		o.Columns = DefaultColumns
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Cache.Backend == "" {
		o.Cache.Backend = DefaultCacheBackend
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Geometry fields are not checked here:
// SetLayoutDefaults already replaced invalid values with defaults.
func (o *Options) Validate() error {
	err := validation.ValidateStruct(o,
		validation.Field(&o.Input, validation.Required),
		validation.Field(&o.Columns, validation.In(ColumnsFirstTwo, ColumnsKeywords)),
		validation.Field(&o.Ordering, validation.In(OrderingBarycentric, OrderingIdentity)),
		validation.Field(&o.Iterations, validation.Min(0)),
		validation.Field(&o.Formats, validation.Each(validation.In(FormatSVG, FormatJSON, FormatDOT, FormatNodelink))),
		validation.Field(&o.Highlight, validation.Each(validation.Min(0))),
		validation.Field(&o.Cache),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	return nil
}

// Validate implements validation.Validatable.
func (c CacheOptions) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.In(CacheFile, CacheRedis, CacheNone)),
		validation.Field(&c.RedisAddr, validation.When(c.Backend == CacheRedis, validation.Required)),
		validation.Field(&c.RedisDB, validation.Min(0)),
	)
}

// ValidateAndSetDefaults applies all defaults and validates the result.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return o.Validate()
}

// SankeyConfig returns the layout configuration described by the options.
func (o *Options) SankeyConfig() sankey.Config {
	return sankey.Config{
		Width:         o.Width,
		Height:        o.Height,
		Margin:        o.Margin,
		NodeWidth:     o.NodeWidth,
		NodePadding:   o.NodePadding,
		FlowScale:     o.FlowScale,
		MinNodeHeight: o.MinNodeHeight,
		MinLinkWidth:  o.MinLinkWidth,
		Iterations:    o.Iterations,
	}.Normalize()
}

// ColumnStrategy returns the strategy named by o.Columns.
func (o *Options) ColumnStrategy() table.ColumnStrategy {
	if o.Columns == ColumnsKeywords {
		return table.FlowKeywords
	}
	return table.FirstTwo{}
}

// NewOrderer returns the configured orderer. An explicit Orderer wins over
// the Ordering name.
func (o *Options) NewOrderer() ordering.Orderer {
	if o.Orderer != nil {
		return o.Orderer
	}
	if o.Ordering == OrderingIdentity {
		return ordering.Identity{}
	}
	return ordering.Barycentric{Passes: o.SankeyConfig().Iterations}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg := o.SankeyConfig()
	return cache.LayoutKeyOpts{
		Source:        o.Source,
		Target:        o.Target,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Margin:        [4]float64{cfg.Margin.Top, cfg.Margin.Right, cfg.Margin.Bottom, cfg.Margin.Left},
		NodeWidth:     cfg.NodeWidth,
		NodePadding:   cfg.NodePadding,
		FlowScale:     cfg.FlowScale,
		MinNodeHeight: cfg.MinNodeHeight,
		MinLinkWidth:  cfg.MinLinkWidth,
		Iterations:    cfg.Iterations,
		Orderer:       o.Ordering,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:    format,
		Labels:    !o.NoLabels,
		Detailed:  o.Detailed,
		Title:     o.Title,
		Highlight: o.Highlight,
	}
}
