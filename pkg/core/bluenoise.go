package core

// blueNoiseTileSize is the edge length of the procedural stand-in blue-noise
// tile. No blue-noise texture asset ships with this repository;
// NewBlueNoiseTile builds the tile by hashing each cell (there is no
// relaxation pass). Nothing in the renderer reads the tile: framebuffer
// seeding always goes through the PCG hash, whatever UseBlueNoise is set to.
const blueNoiseTileSize = 64

// BlueNoiseTile holds a precomputed tile of decorrelated per-pixel seeds.
type BlueNoiseTile struct {
	values [blueNoiseTileSize * blueNoiseTileSize]uint32
}

// NewBlueNoiseTile builds a tile deterministically from a single seed, using
// repeated hashing passes so neighboring cells land far apart in hash-space
// (an approximation of a true void-and-cluster blue-noise construction).
func NewBlueNoiseTile(seed uint32) *BlueNoiseTile {
	tile := &BlueNoiseTile{}
	for y := 0; y < blueNoiseTileSize; y++ {
		for x := 0; x < blueNoiseTileSize; x++ {
			idx := y*blueNoiseTileSize + x
			cell := uint32(x)*1973 + uint32(y)*9277 + seed*26699
			tile.values[idx] = pcgHash(pcgHash(cell) ^ uint32(idx))
		}
	}
	return tile
}

// Seed returns the tile's precomputed seed for pixel (x, y), wrapping at the
// tile boundary.
func (t *BlueNoiseTile) Seed(x, y int) uint32 {
	wx := ((x % blueNoiseTileSize) + blueNoiseTileSize) % blueNoiseTileSize
	wy := ((y % blueNoiseTileSize) + blueNoiseTileSize) % blueNoiseTileSize
	return t.values[wy*blueNoiseTileSize+wx]
}
