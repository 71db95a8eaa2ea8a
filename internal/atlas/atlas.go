// Package atlas maps voxel types to tile origins inside the shared block texture sheet.
package atlas

import (
	"errors"
	"fmt"

	"cubecraft/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Face groups of a table entry. Cube faces use Top/Side/Bottom/Front,
// cross planes n use group n.
const (
	GroupTop = iota
	GroupSide
	GroupBottom
	GroupFront

	Groups
)

var ErrInvalidLayout = errors.New("atlas: invalid layout")

// Tile is a column/row position in the atlas grid.
type Tile struct {
	Col, Row uint8
}

// Table is the read-only type -> tile lookup used while meshing.
// Construct it once; concurrent readers need no locking.
type Table struct {
	tiles [voxel.MaxTypes][Groups]Tile
	step  float32
	cols  int
}

// New creates a table for an atlas with the given tile and sheet size in pixels.
func New(tileSize, atlasSize int) (*Table, error) {
	if tileSize <= 0 || atlasSize <= 0 || atlasSize%tileSize != 0 {
		return nil, fmt.Errorf("%w: tile %d px in %d px sheet", ErrInvalidLayout, tileSize, atlasSize)
	}
	cols := atlasSize / tileSize
	if cols > 256 {
		return nil, fmt.Errorf("%w: %d columns", ErrInvalidLayout, cols)
	}
	return &Table{
		step: float32(tileSize) / float32(atlasSize),
		cols: cols,
	}, nil
}

// Step is the UV extent of one tile.
func (t *Table) Step() float32 { return t.step }

// Columns is the number of tiles along one edge of the sheet.
func (t *Table) Columns() int { return t.cols }

// Origin returns the UV origin of the tile used by group for a type.
func (t *Table) Origin(typ voxel.Type, group int) mgl32.Vec2 {
	tile := t.tiles[uint8(typ)%voxel.MaxTypes][group%Groups]
	return mgl32.Vec2{float32(tile.Col) * t.step, float32(tile.Row) * t.step}
}

// Tile returns the raw tile assignment.
func (t *Table) Tile(typ voxel.Type, group int) Tile {
	return t.tiles[uint8(typ)%voxel.MaxTypes][group%Groups]
}

// SetCube assigns the cube tiles of a type. Front falls back to side.
func (t *Table) SetCube(typ voxel.Type, top, side, bottom Tile, front *Tile) error {
	f := side
	if front != nil {
		f = *front
	}
	return t.set(typ, [Groups]Tile{top, side, bottom, f})
}

// SetCross assigns the two billboard plane tiles of a type.
func (t *Table) SetCross(typ voxel.Type, plane0, plane1 Tile) error {
	return t.set(typ, [Groups]Tile{plane0, plane1, plane0, plane1})
}

// SetAll uses one tile for every group.
func (t *Table) SetAll(typ voxel.Type, tile Tile) error {
	return t.set(typ, [Groups]Tile{tile, tile, tile, tile})
}

func (t *Table) set(typ voxel.Type, tiles [Groups]Tile) error {
	for _, tile := range tiles {
		if int(tile.Col) >= t.cols || int(tile.Row) >= t.cols {
			return fmt.Errorf("%w: tile %d,%d for %s outside %dx%d sheet",
				ErrInvalidLayout, tile.Col, tile.Row, typ, t.cols, t.cols)
		}
	}
	t.tiles[uint8(typ)%voxel.MaxTypes] = tiles
	return nil
}

// Default returns the built-in layout of the 256 px block sheet with 16 px tiles.
func Default() *Table {
	t, err := New(16, 256)
	if err != nil {
		panic(err)
	}
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	pumpkinFront := Tile{7, 1}
	must(t.SetAll(voxel.Dirt, Tile{2, 0}))
	must(t.SetCube(voxel.GrassBlock, Tile{0, 0}, Tile{3, 0}, Tile{2, 0}, nil))
	must(t.SetAll(voxel.Stone, Tile{1, 0}))
	must(t.SetAll(voxel.Sand, Tile{2, 1}))
	must(t.SetCube(voxel.Wood, Tile{5, 1}, Tile{4, 1}, Tile{5, 1}, nil))
	must(t.SetAll(voxel.Leaves, Tile{4, 3}))
	must(t.SetAll(voxel.Glass, Tile{1, 3}))
	must(t.SetCube(voxel.Pumpkin, Tile{6, 0}, Tile{6, 1}, Tile{6, 0}, &pumpkinFront))
	must(t.SetCross(voxel.Grass1, Tile{7, 2}, Tile{7, 2}))
	must(t.SetCross(voxel.Grass2, Tile{8, 2}, Tile{8, 2}))
	must(t.SetCross(voxel.Flower, Tile{12, 0}, Tile{12, 0}))
	return t
}
