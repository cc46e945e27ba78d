// Package config loads the map's geometry and styling constants from a
// TOML or YAML file.
//
// Every key is optional; missing keys keep their defaults and unknown keys
// are rejected so typos do not silently fall back to a default.
//
//	margin = 50
//
//	[zoom]
//	min = 0.5
//	max = 10
//
//	[nodes]
//	radius = 4
//	active_radius = 8
//	opacity = 0.7
//	match_opacity = 1.0
//	dim_opacity = 0.3
//	accent = "#ea4335"
//	base = "#4285f4"
//
//	[tooltip]
//	width = 300
//	height = 200
//	offset = 15
//
//	[viewport]
//	width = 1200
//	height = 800
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/papermap/pkg/errors"
	"github.com/matzehuels/papermap/pkg/papermap"
	"github.com/matzehuels/papermap/pkg/styles"
	"github.com/matzehuels/papermap/pkg/tooltip"
	"github.com/matzehuels/papermap/pkg/viewport"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// Config is the file representation of the renderer settings.
type Config struct {
	Margin   float64     `toml:"margin" yaml:"margin"`
	Zoom     zoom.Extent `toml:"zoom" yaml:"zoom"`
	Nodes    Nodes       `toml:"nodes" yaml:"nodes"`
	Tooltip  Tooltip     `toml:"tooltip" yaml:"tooltip"`
	Viewport Viewport    `toml:"viewport" yaml:"viewport"`
}

// Nodes configures node styling.
type Nodes struct {
	Radius       float64 `toml:"radius" yaml:"radius"`
	ActiveRadius float64 `toml:"active_radius" yaml:"active_radius"`
	Opacity      float64 `toml:"opacity" yaml:"opacity"`
	MatchOpacity float64 `toml:"match_opacity" yaml:"match_opacity"`
	DimOpacity   float64 `toml:"dim_opacity" yaml:"dim_opacity"`
	Accent       string  `toml:"accent" yaml:"accent"`
	Base         string  `toml:"base" yaml:"base"`
}

// Tooltip configures the info panel geometry.
type Tooltip struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
	Offset float64 `toml:"offset" yaml:"offset"`
}

// Viewport is the default output frame.
type Viewport struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Default returns the built-in settings.
func Default() Config {
	res := styles.DefaultResolver()
	pl := tooltip.DefaultPlacer()
	return Config{
		Margin: viewport.DefaultMargin,
		Zoom:   zoom.DefaultExtent,
		Nodes: Nodes{
			Radius:       res.BaseRadius,
			ActiveRadius: res.ActiveRadius,
			Opacity:      res.DefaultOpacity,
			MatchOpacity: res.MatchOpacity,
			DimOpacity:   res.DimOpacity,
			Accent:       res.Palette.Accent,
			Base:         res.Palette.Base,
		},
		Tooltip:  Tooltip{Width: pl.Width, Height: pl.Height, Offset: pl.Offset},
		Viewport: Viewport{Width: 1200, Height: 800},
	}
}

// Load reads path, choosing the format by extension (.toml, .yaml, .yml).
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		cfg, err = DecodeTOML(data)
	case ".yaml", ".yml":
		cfg, err = DecodeYAML(data)
	default:
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// DecodeTOML parses TOML on top of the defaults.
func DecodeTOML(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// DecodeYAML parses YAML on top of the defaults.
func DecodeYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks ranges and colors.
func (c Config) Validate() error {
	switch {
	case c.Margin < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "margin must not be negative")
	case !c.Zoom.Valid():
		return errors.New(errors.ErrCodeInvalidConfig, "zoom extent [%g, %g] is empty or not positive", c.Zoom.Min, c.Zoom.Max)
	case c.Nodes.Radius <= 0 || c.Nodes.ActiveRadius <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "node radii must be positive")
	case !unit(c.Nodes.Opacity) || !unit(c.Nodes.MatchOpacity) || !unit(c.Nodes.DimOpacity):
		return errors.New(errors.ErrCodeInvalidConfig, "opacities must be within [0, 1]")
	case !hexColor.MatchString(c.Nodes.Accent) || !hexColor.MatchString(c.Nodes.Base):
		return errors.New(errors.ErrCodeInvalidConfig, "colors must be #rrggbb")
	case c.Tooltip.Width <= 0 || c.Tooltip.Height <= 0 || c.Tooltip.Offset < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "tooltip size must be positive")
	case c.Viewport.Width <= 2*c.Margin || c.Viewport.Height <= 2*c.Margin:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport %gx%g leaves no room inside margin %g",
			c.Viewport.Width, c.Viewport.Height, c.Margin)
	}
	return nil
}

func unit(f float64) bool { return f >= 0 && f <= 1 }

// Map converts the settings to a map configuration.
func (c Config) Map() papermap.Config {
	return papermap.Config{
		Margin: c.Margin,
		Extent: c.Zoom,
		Resolver: styles.Resolver{
			Palette:        styles.Palette{Accent: c.Nodes.Accent, Base: c.Nodes.Base},
			BaseRadius:     c.Nodes.Radius,
			ActiveRadius:   c.Nodes.ActiveRadius,
			DefaultOpacity: c.Nodes.Opacity,
			MatchOpacity:   c.Nodes.MatchOpacity,
			DimOpacity:     c.Nodes.DimOpacity,
		},
		Placer: tooltip.Placer{Width: c.Tooltip.Width, Height: c.Tooltip.Height, Offset: c.Tooltip.Offset},
	}
}

// Size returns the default output frame.
func (c Config) Size() viewport.Size {
	return viewport.Size{Width: c.Viewport.Width, Height: c.Viewport.Height}
}
