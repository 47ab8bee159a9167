package bake

import "github.com/arl/gogeo/f32/d3"

// Config holds every parameter the baker's pipeline takes as input (spec
// §4.1). It is YAML-serializable (gopkg.in/yaml.v2, following the
// teacher's cmd/recast/cmd/config.go "save a prefilled settings file"
// convention) so a build can be driven from a checked-in config file
// rather than code.
type Config struct {
	// BoundsMin/BoundsMax define the volume's local-space AABB.
	BoundsMin d3.Vec3 `yaml:"boundsMin"`
	BoundsMax d3.Vec3 `yaml:"boundsMax"`

	VoxelSize      float32 `yaml:"voxelSize"`
	MaxAgentRadius float32 `yaml:"maxAgentRadius"`

	BlockingLayerMask LayerMask `yaml:"blockingLayerMask"`
	StaticOnly        bool      `yaml:"staticOnly"`
	EnableMultiQuery  bool      `yaml:"enableMultiQuery"`

	UseStartLocations bool        `yaml:"useStartLocations"`
	StartLocations    []d3.Vec3   `yaml:"startLocations"`

	UseMultithreading bool `yaml:"useMultithreading"`

	// SharpEdgeCosThreshold is the |dot| threshold below which an edge
	// between two triangles' face normals is considered "sharp" (spec
	// §4.1 step 6). Default 0.95.
	SharpEdgeCosThreshold float32 `yaml:"sharpEdgeCosThreshold"`

	// MaxExternalLinkDistance is loaded and saved with the rest of the
	// config only: Bake builds no external links, and no code in this
	// module reads this field.
	MaxExternalLinkDistance float32 `yaml:"maxExternalLinkDistance"`
}

// DefaultConfig returns a Config prefilled with the values this package
// was validated against, in the spirit of sample/solomesh.NewSettings.
func DefaultConfig() Config {
	return Config{
		VoxelSize:               0.3,
		MaxAgentRadius:          0.4,
		BlockingLayerMask:       ^LayerMask(0),
		StaticOnly:              false,
		EnableMultiQuery:        false,
		UseMultithreading:       true,
		SharpEdgeCosThreshold:   0.95,
		MaxExternalLinkDistance: 2.0,
	}
}

// Extents returns BoundsMax - BoundsMin.
func (c Config) Extents() d3.Vec3 {
	return c.BoundsMax.Sub(c.BoundsMin)
}
