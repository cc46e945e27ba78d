package papermap

import (
	"github.com/matzehuels/papermap/pkg/styles"
	"github.com/matzehuels/papermap/pkg/tooltip"
	"github.com/matzehuels/papermap/pkg/viewport"
	"github.com/matzehuels/papermap/pkg/zoom"
)

// Config holds the geometry and styling constants of a map.
type Config struct {
	Margin   float64
	Extent   zoom.Extent
	Resolver styles.Resolver
	Placer   tooltip.Placer
}

// DefaultConfig returns the standard map configuration.
func DefaultConfig() Config {
	return Config{
		Margin:   viewport.DefaultMargin,
		Extent:   zoom.DefaultExtent,
		Resolver: styles.DefaultResolver(),
		Placer:   tooltip.DefaultPlacer(),
	}
}
