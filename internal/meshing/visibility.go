package meshing

import (
	"cubecraft/internal/atlas"
	"cubecraft/internal/voxel"
)

// Face identifies one side of a cube cell.
type Face int

const (
	FaceNorth  Face = iota // +Z
	FaceSouth              // -Z
	FaceEast               // +X
	FaceWest               // -X
	FaceTop                // +Y
	FaceBottom             // -Y

	CubeFaces = 6
	// CrossPlanes is the number of quads of a billboard cell.
	CrossPlanes = 2
)

var faceNormals = [CubeFaces][3]int{
	FaceNorth:  {0, 0, 1},
	FaceSouth:  {0, 0, -1},
	FaceEast:   {1, 0, 0},
	FaceWest:   {-1, 0, 0},
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
}

// Normal returns the integer offset to the neighbor behind the face.
func (f Face) Normal() (int, int, int) {
	n := faceNormals[f]
	return n[0], n[1], n[2]
}

func (f Face) String() string {
	switch f {
	case FaceNorth:
		return "north"
	case FaceSouth:
		return "south"
	case FaceEast:
		return "east"
	case FaceWest:
		return "west"
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	}
	return "face?"
}

var facingFaces = [4]Face{
	voxel.FacingNorth: FaceNorth,
	voxel.FacingEast:  FaceEast,
	voxel.FacingSouth: FaceSouth,
	voxel.FacingWest:  FaceWest,
}

// group returns the atlas group a cube face samples for a cell.
func (f Face) group(v voxel.Voxel) int {
	switch f {
	case FaceTop:
		return atlas.GroupTop
	case FaceBottom:
		return atlas.GroupBottom
	}
	if facingFaces[v.Facing()] == f {
		return atlas.GroupFront
	}
	return atlas.GroupSide
}

// Neighbors resolves cells outside a chunk, in that chunk's local coordinates.
// ok is false when nothing is loaded there.
type Neighbors interface {
	VoxelAt(x, y, z int) (v voxel.Voxel, ok bool)
}

// FaceVisible decides whether face f of cell (x, y, z) must be emitted.
// Cross cells always emit both planes. Cube faces are culled only by an
// opaque neighbor; cells past the grid edge count as absent unless nb
// resolves them.
func FaceVisible(g *voxel.Grid, nb Neighbors, x, y, z int, f Face) bool {
	if !voxel.InBounds(x, y, z) {
		return false
	}
	v := g[x][y][z]
	switch v.Type().Shape() {
	case voxel.ShapeNone:
		return false
	case voxel.ShapeCross:
		return true
	}

	dx, dy, dz := f.Normal()
	nx, ny, nz := x+dx, y+dy, z+dz
	if voxel.InBounds(nx, ny, nz) {
		return g[nx][ny][nz].Type().IsTransparent()
	}
	if nb == nil {
		return true
	}
	n, ok := nb.VoxelAt(nx, ny, nz)
	return !ok || n.Type().IsTransparent()
}
