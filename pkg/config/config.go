// Package config loads layout defaults from a TOML or YAML file.
//
// A defaults file supplies attributes that graphs do not set themselves:
//
//	# stratum.toml
//	[graph]
//	rankdir = "lr"
//	nodesep = 30
//
//	[node]
//	width = 80
//	height = 30
//
//	[edge]
//	labelpos = "c"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
// The same keys work in YAML. Values are merged under a graph's own
// attributes by [Config.Apply]: whatever the graph already sets wins.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/graph"
)

// Config holds the defaults read from one file.
type Config struct {
	Graph map[string]any `toml:"graph" yaml:"graph"`
	Node  map[string]any `toml:"node" yaml:"node"`
	Edge  map[string]any `toml:"edge" yaml:"edge"`
	Cache CacheConfig    `toml:"cache" yaml:"cache"`

	path   string
	digest string
}

// CacheConfig selects the layout cache backend.
type CacheConfig struct {
	// Dir overrides the file cache directory.
	Dir string `toml:"dir" yaml:"dir"`
	// RedisURL switches to the Redis backend.
	RedisURL string `toml:"redis_url" yaml:"redis_url"`
	// Disabled turns caching off.
	Disabled bool `toml:"disabled" yaml:"disabled"`
}

// Load reads the defaults file at path. The format follows the extension:
// .toml, or .yaml / .yml. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if err := errors.ValidateConfigFile(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes a defaults file body. ext is ".toml", ".yaml" or ".yml".
func Parse(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}

	sum := sha256.Sum256(data)
	cfg.digest = hex.EncodeToString(sum[:])
	return &cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// Digest identifies the file content. Layouts computed with different
// defaults files never share a cache entry.
func (c *Config) Digest() string {
	if c == nil {
		return ""
	}
	return c.digest
}

// Apply merges the defaults into g. An attribute is only added when the
// graph, node or edge does not already set it under any spelling.
func (c *Config) Apply(g *graph.Graph) {
	if c == nil {
		return
	}
	if g.Attrs == nil {
		g.Attrs = graph.Attrs{}
	}
	fill(g.Attrs, c.Graph)
	if len(c.Node) > 0 {
		for _, n := range g.Nodes() {
			fill(n.Attrs, c.Node)
		}
	}
	if len(c.Edge) > 0 {
		for _, e := range g.Edges() {
			fill(e.Attrs, c.Edge)
		}
	}
}

func fill(dst graph.Attrs, defaults map[string]any) {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if _, ok := dst.Get(k); !ok {
			dst.Set(k, defaults[k])
		}
	}
}
