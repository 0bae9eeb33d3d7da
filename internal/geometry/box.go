package geometry

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Box is an oriented box.
type Box struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated, unit length)
}

// NewBox creates a box from center, full size and euler rotation (degrees, applied X then Y then Z).
func NewBox(center, size, rotation rl.Vector3) Box {
	rotX := rl.MatrixRotateX(rotation.X * math.Pi / 180)
	rotY := rl.MatrixRotateY(rotation.Y * math.Pi / 180)
	rotZ := rl.MatrixRotateZ(rotation.Z * math.Pi / 180)
	rot := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)

	return Box{
		Center:   center,
		HalfSize: rl.Vector3Scale(size, 0.5),
		Axes: [3]rl.Vector3{
			rl.Vector3Normalize(rl.Vector3{X: rot.M0, Y: rot.M1, Z: rot.M2}),
			rl.Vector3Normalize(rl.Vector3{X: rot.M4, Y: rot.M5, Z: rot.M6}),
			rl.Vector3Normalize(rl.Vector3{X: rot.M8, Y: rot.M9, Z: rot.M10}),
		},
	}
}

// NewAxisAlignedBox creates an unrotated box from center and half-extents.
func NewAxisAlignedBox(center, halfSize rl.Vector3) Box {
	return Box{
		Center:   center,
		HalfSize: halfSize,
		Axes: [3]rl.Vector3{
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
	}
}

// BoxFromTransform builds a box from a rigid transform whose first three columns are the
// box axes and whose fourth column is its center.
func BoxFromTransform(m rl.Matrix, halfSize rl.Vector3) Box {
	return Box{
		Center:   rl.Vector3{X: m.M12, Y: m.M13, Z: m.M14},
		HalfSize: halfSize,
		Axes: [3]rl.Vector3{
			{X: m.M0, Y: m.M1, Z: m.M2},
			{X: m.M4, Y: m.M5, Z: m.M6},
			{X: m.M8, Y: m.M9, Z: m.M10},
		},
	}
}

// ProjectedRadius is the half-length of the box's shadow on axis.
func (b Box) ProjectedRadius(axis rl.Vector3) float32 {
	return b.HalfSize.X*absf(rl.Vector3DotProduct(b.Axes[0], axis)) +
		b.HalfSize.Y*absf(rl.Vector3DotProduct(b.Axes[1], axis)) +
		b.HalfSize.Z*absf(rl.Vector3DotProduct(b.Axes[2], axis))
}

// ToLocal expresses a world point in the box's frame (origin at Center).
func (b Box) ToLocal(p rl.Vector3) rl.Vector3 {
	d := rl.Vector3Subtract(p, b.Center)
	return rl.Vector3{
		X: rl.Vector3DotProduct(d, b.Axes[0]),
		Y: rl.Vector3DotProduct(d, b.Axes[1]),
		Z: rl.Vector3DotProduct(d, b.Axes[2]),
	}
}

// ToWorld maps a point in the box's frame back to world space.
func (b Box) ToWorld(local rl.Vector3) rl.Vector3 {
	result := b.Center
	result = rl.Vector3Add(result, rl.Vector3Scale(b.Axes[0], local.X))
	result = rl.Vector3Add(result, rl.Vector3Scale(b.Axes[1], local.Y))
	result = rl.Vector3Add(result, rl.Vector3Scale(b.Axes[2], local.Z))
	return result
}

// ClosestPoint returns the point of the box (surface or interior) nearest to point.
func (b Box) ClosestPoint(point rl.Vector3) rl.Vector3 {
	local := b.ToLocal(point)
	return b.ToWorld(rl.Vector3{
		X: clampf(local.X, -b.HalfSize.X, b.HalfSize.X),
		Y: clampf(local.Y, -b.HalfSize.Y, b.HalfSize.Y),
		Z: clampf(local.Z, -b.HalfSize.Z, b.HalfSize.Z),
	})
}

// Vertices returns the eight corners in world space, ordered by sign pattern of (x, y, z).
func (b Box) Vertices() [8]rl.Vector3 {
	var out [8]rl.Vector3
	for i := 0; i < 8; i++ {
		sx, sy, sz := float32(1), float32(1), float32(1)
		if i&1 != 0 {
			sx = -1
		}
		if i&2 != 0 {
			sy = -1
		}
		if i&4 != 0 {
			sz = -1
		}
		out[i] = b.ToWorld(rl.Vector3{X: sx * b.HalfSize.X, Y: sy * b.HalfSize.Y, Z: sz * b.HalfSize.Z})
	}
	return out
}
