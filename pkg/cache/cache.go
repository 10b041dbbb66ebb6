// Package cache stores derived artifacts (layouts, SVG, DOT) keyed by the
// dataset and the options that produced them.
//
// Only recomputable outputs are cached. Manual arrangements made in the
// explorer are never written here.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: a shared Redis instance, useful across machines
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] derives keys from the dataset hash and the layout and render
// options, so changing any option misses the cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// =============================================================================
// Keyer
// =============================================================================

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	Source        string     `json:"source"`
	Target        string     `json:"target"`
	Width         float64    `json:"width"`
	Height        float64    `json:"height"`
	Margin        [4]float64 `json:"margin"`
	NodeWidth     float64    `json:"node_width"`
	NodePadding   float64    `json:"node_padding"`
	FlowScale     float64    `json:"flow_scale"`
	MinNodeHeight float64    `json:"min_node_height"`
	MinLinkWidth  float64    `json:"min_link_width"`
	Iterations    int        `json:"iterations"`
	Orderer       string     `json:"orderer"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Labels    bool   `json:"labels"`
	Detailed  bool   `json:"detailed"`
	Title     string `json:"title,omitempty"`
	Highlight []int  `json:"highlight,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey keys a layout computed from the dataset with hash dataHash.
	LayoutKey(dataHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact of the layout with hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(dataHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", dataHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
