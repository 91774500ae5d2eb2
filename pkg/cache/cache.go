// Package cache stores layout results, rendered artifacts and mode sessions.
//
// # Backends
//
//   - [NullCache]: stores nothing (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared state for several server instances
//
// All backends implement [Cache]. Keys come from a [Keyer] so that every
// component agrees on the key layout:
//
//	c, _ := cache.NewFileCache(dir)
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(itemsJSON), cache.LayoutKeyOpts{Width: 800})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"fmt"
	"time"
)

// Default time-to-live values.
const (
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
	SessionTTL  = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the layout settings that change a layout result.
type LayoutKeyOpts struct {
	Width            float64 `json:"width"`
	RowHeight        float64 `json:"row_height"`
	RowGap           float64 `json:"row_gap"`
	MinIntervalWidth float64 `json:"min_interval_width"`
	BaseRadius       float64 `json:"base_radius"`
	LabelPadding     float64 `json:"label_padding"`
	MeasureLabels    bool    `json:"measure_labels"`
	Relax            bool    `json:"relax"`
	Strict           bool    `json:"strict"`
	AutoExpand       bool    `json:"auto_expand"`
	ExpandedWidth    float64 `json:"expanded_width"`
	ExpandedHeight   float64 `json:"expanded_height"`
	SwarmWidth       float64 `json:"swarm_width"`
	SwarmHeight      float64 `json:"swarm_height"`
	ModesHash        string  `json:"modes_hash,omitempty"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Scale       float64 `json:"scale"`
	Labels      bool    `json:"labels"`
	Interaction bool    `json:"interaction"`
	Session     string  `json:"session,omitempty"`
}

// Keyer builds cache keys.
type Keyer interface {
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
	SessionKey(id string) string
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns layout:<sha256(itemsHash, opts)>.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey returns artifact:<format>:<sha256(layoutHash, opts)>.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), layoutHash, opts)
}

// SessionKey returns session:<id>. Session ids are already unique.
func (DefaultKeyer) SessionKey(id string) string {
	return "session:" + id
}
