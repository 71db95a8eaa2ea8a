package meshing

import "github.com/go-gl/mathgl/mgl32"

// VerticesPerFace is two triangles with no sharing.
const VerticesPerFace = 6

// quad corners viewed from outside, counter-clockwise: BL, BR, TR, TL.
type quad [4]mgl32.Vec3

// Unit-cube face templates, scaled by half the cube edge at emit time.
var cubeQuads = [CubeFaces]quad{
	FaceNorth:  {{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},
	FaceSouth:  {{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}},
	FaceEast:   {{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}},
	FaceWest:   {{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}},
	FaceTop:    {{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}},
	FaceBottom: {{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}},
}

// Crossed diagonal planes of a billboard cell.
var crossQuads = [CrossPlanes]quad{
	{{-1, -1, -1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, -1}},
	{{-1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, 1}},
}

// Triangle order over quad corners: BL,BR,TR then TR,TL,BL.
var quadOrder = [VerticesPerFace]int{0, 1, 2, 2, 3, 0}

// UV corner offsets in steps, matching quad corner order.
var quadUV = [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
