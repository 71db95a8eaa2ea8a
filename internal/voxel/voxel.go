package voxel

import "fmt"

// Type identifies what a cell is made of. It fits in the low 6 bits of a Voxel.
type Type uint8

const (
	Air Type = iota
	Dirt
	GrassBlock
	Stone
	Sand
	Wood
	Leaves
	Glass
	Pumpkin
	Grass1
	Grass2
	Flower

	numTypes
)

// MaxTypes is the number of distinct type values a Voxel can carry.
const MaxTypes = 1 << typeBits

const (
	typeBits   = 6
	typeMask   = MaxTypes - 1
	facingBits = 8 - typeBits
)

// Shape tells the mesher which geometry a type produces.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeCube
	ShapeCross
)

// Facing is the horizontal orientation stored in the top bits of a Voxel.
type Facing uint8

const (
	FacingNorth Facing = iota
	FacingEast
	FacingSouth
	FacingWest
)

type typeInfo struct {
	name        string
	shape       Shape
	transparent bool
}

var types = [numTypes]typeInfo{
	Air:        {"air", ShapeNone, true},
	Dirt:       {"dirt", ShapeCube, false},
	GrassBlock: {"grass_block", ShapeCube, false},
	Stone:      {"stone", ShapeCube, false},
	Sand:       {"sand", ShapeCube, false},
	Wood:       {"wood", ShapeCube, false},
	Leaves:     {"leaves", ShapeCube, true},
	Glass:      {"glass", ShapeCube, true},
	Pumpkin:    {"pumpkin", ShapeCube, false},
	Grass1:     {"grass1", ShapeCross, true},
	Grass2:     {"grass2", ShapeCross, true},
	Flower:     {"flower", ShapeCross, true},
}

func (t Type) info() typeInfo {
	if t >= numTypes {
		return typeInfo{name: fmt.Sprintf("type(%d)", uint8(t)), shape: ShapeNone, transparent: true}
	}
	return types[t]
}

// Shape returns the geometry kind of the type. Unknown types produce none.
func (t Type) Shape() Shape { return t.info().shape }

// IsTransparent reports whether neighbors can be seen through this type.
func (t Type) IsTransparent() bool { return t.info().transparent }

func (t Type) String() string { return t.info().name }

// ParseType resolves a type by its config name.
func ParseType(name string) (Type, error) {
	for i, ti := range types {
		if ti.name == name {
			return Type(i), nil
		}
	}
	return Air, fmt.Errorf("unknown voxel type %q", name)
}

// Types returns every known type in declaration order.
func Types() []Type {
	out := make([]Type, 0, numTypes)
	for i := range numTypes {
		out = append(out, Type(i))
	}
	return out
}

// Voxel is one packed grid cell: type in the low bits, facing in the high bits.
type Voxel uint8

// Make packs a type with an orientation.
func Make(t Type, f Facing) Voxel {
	return Voxel(uint8(t)&typeMask | uint8(f&(1<<facingBits-1))<<typeBits)
}

// Of packs a type facing north.
func Of(t Type) Voxel { return Make(t, FacingNorth) }

func (v Voxel) Type() Type { return Type(uint8(v) & typeMask) }

func (v Voxel) Facing() Facing { return Facing(uint8(v) >> typeBits) }

// IsEmpty reports whether the cell emits no geometry.
func (v Voxel) IsEmpty() bool { return v.Type().Shape() == ShapeNone }
