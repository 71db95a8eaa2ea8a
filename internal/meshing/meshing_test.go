package meshing

import (
	"testing"

	"cubecraft/internal/atlas"
	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAtlas gives stone three tiles that never touch in UV space, so no two
// faces of one cube share a (position, uv) corner.
func testAtlas(t *testing.T) *atlas.Table {
	t.Helper()
	tbl, err := atlas.New(16, 256)
	require.NoError(t, err)
	require.NoError(t, tbl.SetCube(voxel.Stone, atlas.Tile{Col: 0}, atlas.Tile{Col: 2}, atlas.Tile{Col: 4}, nil))
	require.NoError(t, tbl.SetAll(voxel.Dirt, atlas.Tile{Col: 6}))
	require.NoError(t, tbl.SetCross(voxel.Grass1, atlas.Tile{Col: 8}, atlas.Tile{Col: 10}))
	return tbl
}

func batch(t *testing.T, b *Batcher, g *voxel.Grid, nb Neighbors, layer Layer) *Scratch {
	t.Helper()
	s := NewScratch(layer.Capacity())
	n, err := b.Batch(g, nb, layer, s)
	require.NoError(t, err)
	require.Equal(t, n, s.Len())
	return s
}

func buildMeshes(t *testing.T, b *Batcher, g *voxel.Grid, nb Neighbors) ChunkMeshes {
	t.Helper()
	m, err := BuildChunkMeshes(b, g, nb, NewScratch(0), NewIndexer())
	require.NoError(t, err)
	return m
}

func TestEmptyGrid(t *testing.T) {
	var g voxel.Grid
	m := buildMeshes(t, NewBatcher(testAtlas(t)), &g, nil)
	for _, layer := range []Layer{LayerOpaque, LayerFoliage} {
		mesh := m.Layer(layer)
		require.NotNil(t, mesh)
		assert.Zero(t, mesh.VertexCount())
		assert.Empty(t, mesh.Indices)
		assert.True(t, mesh.IsEmpty())
	}
}

func TestSingleVoxel(t *testing.T) {
	var g voxel.Grid
	g.Set(5, 6, 7, voxel.Of(voxel.Stone))
	b := NewBatcher(testAtlas(t))

	s := batch(t, b, &g, nil, LayerOpaque)
	assert.Equal(t, 6*VerticesPerFace, s.Len())

	m, err := Index(s.Positions, s.UVs)
	require.NoError(t, err)
	assert.Equal(t, 24, m.VertexCount())
	assert.Len(t, m.Indices, 36)
	assert.Equal(t, 12, m.TriangleCount())
	require.NoError(t, m.Validate())
}

// With the built-in sheet a side face reuses its top or bottom tile, so side
// corners on the top rim land on the same (position, uv) as top face corners
// and merge. The mesh is unchanged, only the vertex buffer shrinks.
func TestSingleVoxelDefaultAtlas(t *testing.T) {
	cases := []struct {
		typ  voxel.Type
		want int
	}{
		{voxel.Dirt, 20},
		{voxel.Stone, 20},
		{voxel.Sand, 20},
		{voxel.Leaves, 20},
		{voxel.Glass, 20},
		{voxel.GrassBlock, 23},
		{voxel.Wood, 22},
		{voxel.Pumpkin, 22},
	}
	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			var g voxel.Grid
			g.Set(5, 5, 5, voxel.Of(tc.typ))
			s := batch(t, NewBatcher(nil), &g, nil, LayerOpaque)
			require.Equal(t, 6*VerticesPerFace, s.Len())

			m, err := Index(s.Positions, s.UVs)
			require.NoError(t, err)
			assert.Equal(t, tc.want, m.VertexCount())
			assert.Len(t, m.Indices, 36)
			require.NoError(t, m.Validate())
			for i, idx := range m.Indices {
				assert.Equal(t, s.Positions[i], m.Positions[idx], "vertex %d", i)
				assert.Equal(t, s.UVs[i], m.UVs[idx], "vertex %d", i)
			}
		})
	}
}

func TestSingleVoxelPositions(t *testing.T) {
	var g voxel.Grid
	g.Set(2, 3, 4, voxel.Of(voxel.Stone))
	s := batch(t, NewBatcher(testAtlas(t)), &g, nil, LayerOpaque)

	center := mgl32.Vec3{2, 3, 4}
	for _, p := range s.Positions {
		d := p.Sub(center)
		for i := range 3 {
			assert.Equal(t, float32(0.5), abs(d[i]), "corner %v of cube centered at %v", p, center)
		}
	}
}

func TestTrianglesFaceOutward(t *testing.T) {
	var g voxel.Grid
	g.Set(8, 8, 8, voxel.Of(voxel.Stone))
	s := batch(t, NewBatcher(testAtlas(t)), &g, nil, LayerOpaque)

	center := mgl32.Vec3{8, 8, 8}
	for i := 0; i < s.Len(); i += 3 {
		a, b, c := s.Positions[i], s.Positions[i+1], s.Positions[i+2]
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Mul(1.0 / 3.0)
		assert.Greater(t, n.Dot(centroid.Sub(center)), float32(0), "triangle %d winds inward", i/3)
	}
}

func TestUVCornersWithinTile(t *testing.T) {
	tbl := testAtlas(t)
	var g voxel.Grid
	g.Set(0, 0, 0, voxel.Of(voxel.Stone))
	s := batch(t, NewBatcher(tbl), &g, nil, LayerOpaque)

	step := tbl.Step()
	for f := range Face(CubeFaces) {
		origin := tbl.Origin(voxel.Stone, f.group(voxel.Of(voxel.Stone)))
		for _, uv := range s.UVs[int(f)*VerticesPerFace : (int(f)+1)*VerticesPerFace] {
			du, dv := uv[0]-origin[0], uv[1]-origin[1]
			assert.Contains(t, []float32{0, step}, du, "face %s", f)
			assert.Contains(t, []float32{0, step}, dv, "face %s", f)
		}
	}
}

func TestSeamCulling(t *testing.T) {
	var g voxel.Grid
	g.Set(3, 3, 3, voxel.Of(voxel.Stone))
	g.Set(4, 3, 3, voxel.Of(voxel.Stone))
	s := batch(t, NewBatcher(testAtlas(t)), &g, nil, LayerOpaque)

	// 12 faces minus the two touching ones
	assert.Equal(t, 10*VerticesPerFace, s.Len())
	assert.False(t, FaceVisible(&g, nil, 3, 3, 3, FaceEast))
	assert.False(t, FaceVisible(&g, nil, 4, 3, 3, FaceWest))
	assert.True(t, FaceVisible(&g, nil, 3, 3, 3, FaceWest))
}

func TestTransparentNeighborKeepsFace(t *testing.T) {
	var g voxel.Grid
	g.Set(3, 3, 3, voxel.Of(voxel.Stone))
	g.Set(4, 3, 3, voxel.Of(voxel.Glass))
	assert.True(t, FaceVisible(&g, nil, 3, 3, 3, FaceEast))
	assert.False(t, FaceVisible(&g, nil, 4, 3, 3, FaceWest))

	g.Set(4, 3, 3, voxel.Of(voxel.Grass1))
	assert.True(t, FaceVisible(&g, nil, 3, 3, 3, FaceEast))
}

func TestBoundaryVoxel(t *testing.T) {
	var g voxel.Grid
	g.Set(0, 0, 0, voxel.Of(voxel.Stone))
	b := NewBatcher(testAtlas(t))

	for f := range Face(CubeFaces) {
		assert.True(t, FaceVisible(&g, nil, 0, 0, 0, f), "face %s", f)
	}
	s := batch(t, b, &g, nil, LayerOpaque)
	assert.Equal(t, 6*VerticesPerFace, s.Len())

	// a loaded opaque neighbor across the seam hides the west face
	var west voxel.Grid
	west.Set(voxel.Size-1, 0, 0, voxel.Of(voxel.Dirt))
	nb := &NeighborGrids{FaceWest: &west}
	assert.False(t, FaceVisible(&g, nb, 0, 0, 0, FaceWest))
	assert.True(t, FaceVisible(&g, nb, 0, 0, 0, FaceBottom))

	s = batch(t, b, &g, nb, LayerOpaque)
	assert.Equal(t, 5*VerticesPerFace, s.Len())
}

func TestFarCorner(t *testing.T) {
	var g voxel.Grid
	g.Set(voxel.Size-1, voxel.Size-1, voxel.Size-1, voxel.Of(voxel.Stone))
	var east voxel.Grid
	east.Set(0, voxel.Size-1, voxel.Size-1, voxel.Of(voxel.Stone))
	nb := &NeighborGrids{FaceEast: &east}

	s := batch(t, NewBatcher(testAtlas(t)), &g, nb, LayerOpaque)
	assert.Equal(t, 5*VerticesPerFace, s.Len())
}

func TestNeighborGridsRejectsDiagonal(t *testing.T) {
	var full voxel.Grid
	full.Fill(voxel.Of(voxel.Stone))
	nb := &NeighborGrids{FaceEast: &full, FaceTop: &full}

	_, ok := nb.VoxelAt(voxel.Size, voxel.Size, 0)
	assert.False(t, ok)
	v, ok := nb.VoxelAt(voxel.Size, 0, 0)
	assert.True(t, ok)
	assert.Equal(t, voxel.Stone, v.Type())
	_, ok = nb.VoxelAt(-1, 0, 0)
	assert.False(t, ok, "west neighbor not loaded")

	var missing *NeighborGrids
	_, ok = missing.VoxelAt(-1, 0, 0)
	assert.False(t, ok)
}

func TestBillboardIgnoresNeighbors(t *testing.T) {
	var g voxel.Grid
	g.Fill(voxel.Of(voxel.Stone))
	g.Set(7, 7, 7, voxel.Of(voxel.Grass1))
	b := NewBatcher(testAtlas(t))

	assert.True(t, FaceVisible(&g, nil, 7, 7, 7, FaceNorth))
	s := batch(t, b, &g, nil, LayerFoliage)
	assert.Equal(t, CrossPlanes*VerticesPerFace, s.Len())

	m, err := Index(s.Positions, s.UVs)
	require.NoError(t, err)
	assert.Equal(t, 8, m.VertexCount())
	assert.Len(t, m.Indices, 12)

	// faces of the surrounding stone toward the billboard stay visible
	assert.True(t, FaceVisible(&g, nil, 6, 7, 7, FaceEast))
}

func TestLayersAreSeparate(t *testing.T) {
	var g voxel.Grid
	g.Set(1, 1, 1, voxel.Of(voxel.Stone))
	g.Set(1, 2, 1, voxel.Of(voxel.Grass1))
	m := buildMeshes(t, NewBatcher(testAtlas(t)), &g, nil)

	assert.Equal(t, 36, len(m.Opaque.Indices))
	assert.Equal(t, 12, len(m.Foliage.Indices))
}

func TestCapacityViolationAborts(t *testing.T) {
	var g voxel.Grid
	g.Set(1, 1, 1, voxel.Of(voxel.Stone))
	g.Set(9, 9, 9, voxel.Of(voxel.Stone))
	b := NewBatcher(testAtlas(t))

	s := NewScratch(6 * VerticesPerFace)
	n, err := b.Batch(&g, nil, LayerOpaque, s)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Zero(t, n)
	assert.Zero(t, s.Len(), "no partial output on overflow")

	s.Reserve(LayerOpaque.Capacity())
	n, err = b.Batch(&g, nil, LayerOpaque, s)
	require.NoError(t, err)
	assert.Equal(t, 12*VerticesPerFace, n)
}

func TestDeterminism(t *testing.T) {
	g := checkerGrid()
	b := NewBatcher(testAtlas(t))

	s1 := batch(t, b, g, nil, LayerOpaque)
	s2 := batch(t, b, g, nil, LayerOpaque)
	assert.Equal(t, s1.Positions, s2.Positions)
	assert.Equal(t, s1.UVs, s2.UVs)

	m1 := buildMeshes(t, b, g, nil)
	m2 := buildMeshes(t, b, g, nil)
	assert.Equal(t, m1, m2)
}

func TestFullChunkShell(t *testing.T) {
	var g voxel.Grid
	g.Fill(voxel.Of(voxel.Stone))
	s := batch(t, NewBatcher(testAtlas(t)), &g, nil, LayerOpaque)

	assert.Equal(t, 6*voxel.Size*voxel.Size*VerticesPerFace, s.Len())
}

func TestWorstCaseFitsCapacity(t *testing.T) {
	g := checkerGrid()
	s := batch(t, NewBatcher(testAtlas(t)), g, nil, LayerOpaque)
	assert.Equal(t, voxel.Volume/2*CubeFaces*VerticesPerFace, s.Len())
	assert.LessOrEqual(t, s.Len(), CubeCapacity)

	var all voxel.Grid
	all.Fill(voxel.Of(voxel.Grass1))
	s = batch(t, NewBatcher(testAtlas(t)), &all, nil, LayerFoliage)
	assert.Equal(t, CrossCapacity, s.Len())
}

func TestFrontFaceUsesFrontTile(t *testing.T) {
	tbl, err := atlas.New(16, 256)
	require.NoError(t, err)
	front := atlas.Tile{Col: 9, Row: 9}
	require.NoError(t, tbl.SetCube(voxel.Pumpkin, atlas.Tile{}, atlas.Tile{Col: 3}, atlas.Tile{}, &front))

	var g voxel.Grid
	g.Set(0, 0, 0, voxel.Make(voxel.Pumpkin, voxel.FacingEast))
	s := batch(t, NewBatcher(tbl), &g, nil, LayerOpaque)

	want := tbl.Origin(voxel.Pumpkin, atlas.GroupFront)
	east := s.UVs[int(FaceEast)*VerticesPerFace]
	north := s.UVs[int(FaceNorth)*VerticesPerFace]
	assert.Equal(t, want, east)
	assert.NotEqual(t, want, north)
}

func checkerGrid() *voxel.Grid {
	var g voxel.Grid
	for x := range voxel.Size {
		for y := range voxel.Size {
			for z := range voxel.Size {
				if (x+y+z)%2 == 0 {
					g[x][y][z] = voxel.Of(voxel.Stone)
				}
			}
		}
	}
	return &g
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
