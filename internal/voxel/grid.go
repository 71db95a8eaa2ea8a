package voxel

import "fmt"

const (
	// Size is the edge length of a chunk in cells.
	Size = 16
	// Volume is the number of cells in a chunk.
	Volume = Size * Size * Size
	// CubeSize is the world-space edge length of one cell.
	CubeSize float32 = 1.0
)

// Grid is the dense cell array of one chunk, indexed [x][y][z].
// It is a plain value: assigning it copies every cell.
type Grid [Size][Size][Size]Voxel

// InBounds reports whether (x, y, z) addresses a cell of the grid.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// At returns the cell at local coordinates; out of range reads are air.
func (g *Grid) At(x, y, z int) Voxel {
	if !InBounds(x, y, z) {
		return Of(Air)
	}
	return g[x][y][z]
}

// Set writes a cell and reports whether the coordinates were in range.
func (g *Grid) Set(x, y, z int, v Voxel) bool {
	if !InBounds(x, y, z) {
		return false
	}
	g[x][y][z] = v
	return true
}

// Fill sets every cell to v.
func (g *Grid) Fill(v Voxel) {
	for x := range Size {
		for y := range Size {
			for z := range Size {
				g[x][y][z] = v
			}
		}
	}
}

// Count returns how many cells satisfy pred.
func (g *Grid) Count(pred func(Voxel) bool) int {
	n := 0
	for x := range Size {
		for y := range Size {
			for z := range Size {
				if pred(g[x][y][z]) {
					n++
				}
			}
		}
	}
	return n
}

// IsEmpty reports whether no cell emits geometry.
func (g *Grid) IsEmpty() bool {
	for x := range Size {
		for y := range Size {
			for z := range Size {
				if !g[x][y][z].IsEmpty() {
					return false
				}
			}
		}
	}
	return true
}

// Bytes packs the grid in x, y, z order.
func (g *Grid) Bytes() []byte {
	out := make([]byte, 0, Volume)
	for x := range Size {
		for y := range Size {
			for z := range Size {
				out = append(out, byte(g[x][y][z]))
			}
		}
	}
	return out
}

// GridFromBytes is the inverse of Bytes.
func GridFromBytes(b []byte) (*Grid, error) {
	if len(b) != Volume {
		return nil, fmt.Errorf("voxel: grid needs %d bytes, got %d", Volume, len(b))
	}
	g := &Grid{}
	i := 0
	for x := range Size {
		for y := range Size {
			for z := range Size {
				g[x][y][z] = Voxel(b[i])
				i++
			}
		}
	}
	return g, nil
}
