package common

const (
	// TileSize is the default edge length of a collision tile in pixels.
	TileSize = 16

	// Gravity is the default world gravity in pixels/s².
	Gravity = 240.0

	// MaxTick caps a single simulation step in seconds.
	MaxTick = 0.1

	// MinBounceVelocity is the smallest velocity that still produces a bounce.
	MinBounceVelocity = 10.0

	// DefaultMaxGroundNormal is cos(46°).
	DefaultMaxGroundNormal = 0.69

	// DefaultMinSlideNormal is cos(0°).
	DefaultMinSlideNormal = 1.0
)
