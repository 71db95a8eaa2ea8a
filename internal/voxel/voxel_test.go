package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFacing(t *testing.T) {
	for _, typ := range Types() {
		for f := FacingNorth; f <= FacingWest; f++ {
			v := Make(typ, f)
			assert.Equal(t, typ, v.Type())
			assert.Equal(t, f, v.Facing())
		}
	}
}

func TestAirNeverEmits(t *testing.T) {
	assert.True(t, Of(Air).IsEmpty())
	assert.Equal(t, ShapeNone, Air.Shape())
	assert.True(t, Type(60).IsTransparent())
	assert.Equal(t, ShapeNone, Type(60).Shape())
}

func TestShapes(t *testing.T) {
	assert.Equal(t, ShapeCube, Stone.Shape())
	assert.False(t, Stone.IsTransparent())
	assert.Equal(t, ShapeCube, Glass.Shape())
	assert.True(t, Glass.IsTransparent())
	assert.Equal(t, ShapeCross, Grass1.Shape())
	assert.True(t, Grass1.IsTransparent())
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("grass_block")
	require.NoError(t, err)
	assert.Equal(t, GrassBlock, typ)

	_, err = ParseType("bedrock")
	assert.Error(t, err)
}

func TestGridBounds(t *testing.T) {
	var g Grid
	assert.False(t, g.Set(-1, 0, 0, Of(Stone)))
	assert.False(t, g.Set(0, Size, 0, Of(Stone)))
	assert.Equal(t, Of(Air), g.At(Size, 0, 0))
	assert.True(t, g.IsEmpty())

	require.True(t, g.Set(Size-1, Size-1, Size-1, Of(Stone)))
	assert.Equal(t, Stone, g.At(Size-1, Size-1, Size-1).Type())
	assert.False(t, g.IsEmpty())
	assert.Equal(t, 1, g.Count(func(v Voxel) bool { return !v.IsEmpty() }))
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewChunk(Coord{1, 0, 2})
	require.True(t, c.Set(1, 2, 3, Of(Dirt)))

	snap, v := c.Snapshot()
	require.True(t, c.Set(1, 2, 3, Of(Stone)))

	assert.Equal(t, Dirt, snap.At(1, 2, 3).Type())
	assert.Equal(t, Stone, c.At(1, 2, 3).Type())
	assert.Greater(t, c.Version(), v)
}

func TestSetCleanIgnoresStaleVersion(t *testing.T) {
	c := NewChunk(Coord{})
	c.Set(0, 0, 0, Of(Stone))
	_, v := c.Snapshot()
	c.Set(0, 0, 1, Of(Stone))

	c.SetClean(v)
	assert.True(t, c.IsDirty(), "edit after snapshot must keep the chunk dirty")

	c.SetClean(c.Version())
	assert.False(t, c.IsDirty())

	assert.False(t, c.Set(0, 0, 1, Of(Stone)), "writing the same value is not a change")
}

func TestCoordOrigin(t *testing.T) {
	x, y, z := Coord{-1, 2, 3}.Origin()
	assert.Equal(t, []int{-Size, 2 * Size, 3 * Size}, []int{x, y, z})
}

func TestGridBytes(t *testing.T) {
	var g Grid
	g.Set(1, 2, 3, Make(Pumpkin, FacingWest))
	g.Set(15, 0, 15, Of(Flower))

	b := g.Bytes()
	require.Len(t, b, Volume)
	back, err := GridFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, g, *back)

	_, err = GridFromBytes(b[:10])
	assert.Error(t, err)
}

func TestMarkDirtyBumpsVersion(t *testing.T) {
	c := NewChunk(Coord{})
	v := c.Version()
	c.SetClean(v)
	c.MarkDirty()
	assert.True(t, c.IsDirty())
	assert.Greater(t, c.Version(), v)
}
