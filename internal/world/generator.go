package world

import (
	"math"

	"cubecraft/internal/voxel"
)

// Generator builds terrain from a value-noise heightmap. Output depends only
// on the seed and the chunk coordinate.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
	seaLevel    int
	maxHeight   int
}

// NewGenerator returns a generator for a world maxHeight voxels tall.
func NewGenerator(seed int64, seaLevel, maxHeight int) *Generator {
	return &Generator{
		seed:        seed,
		scale:       1.0 / 48.0,
		baseHeight:  seaLevel - 6,
		amp:         24,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
		seaLevel:    seaLevel,
		maxHeight:   maxHeight,
	}
}

// HeightAt is the surface Y at world column (x, z).
func (g *Generator) HeightAt(worldX, worldZ int) int {
	n := octaveNoise2D(float64(worldX)*g.scale, float64(worldZ)*g.scale, g.seed, g.octaves, g.persistence, g.lacunarity)
	h := int(math.Floor(float64(g.baseHeight) + n*g.amp))
	// leave room for a billboard above the surface
	return min(max(h, 0), g.maxHeight-2)
}

// decoration picks what grows on a grass column.
func (g *Generator) decoration(worldX, worldZ int) voxel.Voxel {
	h := hash2(int64(worldX), int64(worldZ), g.seed+7919)
	switch r := h % 1000; {
	case r < 90:
		return voxel.Of(voxel.Grass1)
	case r < 150:
		return voxel.Of(voxel.Grass2)
	case r < 170:
		return voxel.Of(voxel.Flower)
	case r < 172:
		return voxel.Make(voxel.Pumpkin, voxel.Facing((h>>16)&3))
	}
	return voxel.Of(voxel.Air)
}

// column returns the cell at world height y of column (x, z) whose surface
// is at height h.
func (g *Generator) column(worldX, y, worldZ, h int) voxel.Voxel {
	switch {
	case y < h-3:
		return voxel.Of(voxel.Stone)
	case y < h:
		return voxel.Of(voxel.Dirt)
	case y == h:
		if h <= g.seaLevel+1 {
			return voxel.Of(voxel.Sand)
		}
		return voxel.Of(voxel.GrassBlock)
	case y == h+1 && h > g.seaLevel+1:
		return g.decoration(worldX, worldZ)
	}
	return voxel.Of(voxel.Air)
}

// Populate fills a whole grid for chunk c.
func (g *Generator) Populate(c voxel.Coord) *voxel.Grid {
	var grid voxel.Grid
	ox, oy, oz := c.Origin()
	for lx := range voxel.Size {
		for lz := range voxel.Size {
			wx, wz := ox+lx, oz+lz
			h := g.HeightAt(wx, wz)
			if h+1 < oy {
				continue
			}
			for ly := range voxel.Size {
				grid[lx][ly][lz] = g.column(wx, oy+ly, wz, h)
			}
		}
	}
	return &grid
}
