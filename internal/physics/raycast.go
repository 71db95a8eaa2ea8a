// Package physics answers ray queries against the voxel world.
package physics

import (
	"math"

	"cubecraft/internal/profiling"
	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 64.0
)

// Volume is anything that can answer cell lookups in world voxel coordinates.
type Volume interface {
	VoxelAt(x, y, z int) voxel.Voxel
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// cellOf returns the cell containing p. Cell centers sit on integer
// multiples of the cube size.
func cellOf(p mgl32.Vec3) [3]int {
	var c [3]int
	for i := range 3 {
		c[i] = int(math.Floor(float64(p[i]/voxel.CubeSize) + 0.5))
	}
	return c
}

// Raycast marches from start along direction and returns the first
// non-empty cell between minDist and maxDist.
func Raycast(start mgl32.Vec3, direction mgl32.Vec3, minDist, maxDist float32, vol Volume) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() < 1e-6 {
		return RaycastResult{}
	}
	direction = direction.Normalize()
	stepSize := float32(0.02) * voxel.CubeSize
	steps := int(maxDist / stepSize)

	lastEmptyPos := cellOf(start)
	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		blockPos := cellOf(start.Add(direction.Mul(dist)))
		if !vol.VoxelAt(blockPos[0], blockPos[1], blockPos[2]).IsEmpty() {
			return RaycastResult{
				HitPosition:      blockPos,
				AdjacentPosition: lastEmptyPos,
				Distance:         dist,
				Hit:              true,
			}
		}
		lastEmptyPos = blockPos
	}

	return RaycastResult{}
}
