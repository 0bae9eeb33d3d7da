// Package geometry holds the shape value types used by the collision core and the
// stateless intersection tests between them. Nothing here creates contacts.
package geometry

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Epsilon is the threshold below which denominators are treated as zero.
const Epsilon = 1e-6

// Component returns the i-th coordinate of v (0 = X, 1 = Y, 2 = Z).
func Component(v rl.Vector3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func sqrtf(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func minf(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

func maxf(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func lengthSq(v rl.Vector3) float32 {
	return rl.Vector3DotProduct(v, v)
}
