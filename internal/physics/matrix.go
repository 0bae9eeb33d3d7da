package physics

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// raylib has no 3x3 type, so tensors and contact bases use mgl32.Mat3 (column-major).

func toVec3(v rl.Vector3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

func fromVec3(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// transformVector multiplies m by v.
func transformVector(m mgl32.Mat3, v rl.Vector3) rl.Vector3 {
	return fromVec3(m.Mul3x1(toVec3(v)))
}

// transformTranspose multiplies the transpose of m by v, i.e. world to contact space for a basis.
func transformTranspose(m mgl32.Mat3, v rl.Vector3) rl.Vector3 {
	return fromVec3(m.Transpose().Mul3x1(toVec3(v)))
}

// skewSymmetric returns the matrix S with S*w = v × w.
func skewSymmetric(v rl.Vector3) mgl32.Mat3 {
	return mgl32.Mat3{
		0, v.Z, -v.Y,
		-v.Z, 0, v.X,
		v.Y, -v.X, 0,
	}
}

// rotationOf extracts the upper-left 3x3 of a raylib transform.
func rotationOf(m rl.Matrix) mgl32.Mat3 {
	return mgl32.Mat3FromCols(
		mgl32.Vec3{m.M0, m.M1, m.M2},
		mgl32.Vec3{m.M4, m.M5, m.M6},
		mgl32.Vec3{m.M8, m.M9, m.M10},
	)
}

// contactBasis builds an orthonormal basis whose first column is normal. The second column
// is chosen perpendicular to whichever world axis the normal is furthest from.
func contactBasis(n rl.Vector3) mgl32.Mat3 {
	var t0 rl.Vector3
	if absf(n.X) > absf(n.Y) {
		s := 1 / sqrtf(n.Z*n.Z+n.X*n.X)
		t0 = rl.Vector3{X: n.Z * s, Y: 0, Z: -n.X * s}
	} else {
		s := 1 / sqrtf(n.Z*n.Z+n.Y*n.Y)
		t0 = rl.Vector3{X: 0, Y: -n.Z * s, Z: n.Y * s}
	}
	t1 := rl.Vector3CrossProduct(n, t0)
	return mgl32.Mat3FromCols(toVec3(n), toVec3(t0), toVec3(t1))
}

// SphereInertia returns the inertia tensor of a solid sphere.
func SphereInertia(mass, radius float32) mgl32.Mat3 {
	i := 0.4 * mass * radius * radius
	return mgl32.Diag3(mgl32.Vec3{i, i, i})
}

// BoxInertia returns the inertia tensor of a solid box with the given half extents.
func BoxInertia(mass float32, halfSize rl.Vector3) mgl32.Mat3 {
	x2 := halfSize.X * halfSize.X
	y2 := halfSize.Y * halfSize.Y
	z2 := halfSize.Z * halfSize.Z
	k := mass / 3
	return mgl32.Diag3(mgl32.Vec3{k * (y2 + z2), k * (x2 + z2), k * (x2 + y2)})
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func powf(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}
