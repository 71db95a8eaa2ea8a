package meshing

import "cubecraft/internal/voxel"

// NeighborGrids is a frozen copy of the six face-adjacent chunks. A nil entry
// means the neighbor is not loaded.
type NeighborGrids [CubeFaces]*voxel.Grid

// VoxelAt resolves a cell one step outside the chunk along a single axis.
func (n *NeighborGrids) VoxelAt(x, y, z int) (voxel.Voxel, bool) {
	if n == nil {
		return 0, false
	}
	var (
		f   Face
		hit int
	)
	switch {
	case x >= voxel.Size:
		f, x, hit = FaceEast, x-voxel.Size, hit+1
	case x < 0:
		f, x, hit = FaceWest, x+voxel.Size, hit+1
	}
	switch {
	case y >= voxel.Size:
		f, y, hit = FaceTop, y-voxel.Size, hit+1
	case y < 0:
		f, y, hit = FaceBottom, y+voxel.Size, hit+1
	}
	switch {
	case z >= voxel.Size:
		f, z, hit = FaceNorth, z-voxel.Size, hit+1
	case z < 0:
		f, z, hit = FaceSouth, z+voxel.Size, hit+1
	}
	if hit != 1 || n[f] == nil || !voxel.InBounds(x, y, z) {
		return 0, false
	}
	return n[f][x][y][z], true
}
