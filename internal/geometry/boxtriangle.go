package geometry

import rl "github.com/gen2brain/raylib-go/raylib"

// BoxAndTriangle tests an oriented box against a triangle (Akenine-Möller). The triangle is
// moved into the box frame, then 13 axes are tried: the nine edge × box-axis cross products,
// the three box face normals and the triangle normal.
func BoxAndTriangle(b Box, t Triangle) bool {
	v0 := b.ToLocal(t.Points[0])
	v1 := b.ToLocal(t.Points[1])
	v2 := b.ToLocal(t.Points[2])
	h := b.HalfSize

	e0 := rl.Vector3Subtract(v1, v0)
	e1 := rl.Vector3Subtract(v2, v1)
	e2 := rl.Vector3Subtract(v0, v2)

	bt := boxTri{v0: v0, v1: v1, v2: v2, h: h}

	fex, fey, fez := absf(e0.X), absf(e0.Y), absf(e0.Z)
	if bt.axisTestX01(e0.Z, e0.Y, fez, fey) ||
		bt.axisTestY02(e0.Z, e0.X, fez, fex) ||
		bt.axisTestZ12(e0.Y, e0.X, fey, fex) {
		return false
	}

	fex, fey, fez = absf(e1.X), absf(e1.Y), absf(e1.Z)
	if bt.axisTestX01(e1.Z, e1.Y, fez, fey) ||
		bt.axisTestY02(e1.Z, e1.X, fez, fex) ||
		bt.axisTestZ0(e1.Y, e1.X, fey, fex) {
		return false
	}

	fex, fey, fez = absf(e2.X), absf(e2.Y), absf(e2.Z)
	if bt.axisTestX2(e2.Z, e2.Y, fez, fey) ||
		bt.axisTestY1(e2.Z, e2.X, fez, fex) ||
		bt.axisTestZ12(e2.Y, e2.X, fey, fex) {
		return false
	}

	// Box face normals: the triangle's bounds against the half sizes
	if minf(v0.X, v1.X, v2.X) > h.X || maxf(v0.X, v1.X, v2.X) < -h.X {
		return false
	}
	if minf(v0.Y, v1.Y, v2.Y) > h.Y || maxf(v0.Y, v1.Y, v2.Y) < -h.Y {
		return false
	}
	if minf(v0.Z, v1.Z, v2.Z) > h.Z || maxf(v0.Z, v1.Z, v2.Z) < -h.Z {
		return false
	}

	normal := rl.Vector3CrossProduct(e0, e1)
	return planeBoxOverlap(normal, v0, h)
}

// boxTri carries the box-local triangle through the axis tests. Each test returns true
// when the axis separates the shapes.
type boxTri struct {
	v0, v1, v2 rl.Vector3
	h          rl.Vector3
}

func separated(p0, p1, rad float32) bool {
	min, max := p0, p1
	if p1 < p0 {
		min, max = p1, p0
	}
	return min > rad || max < -rad
}

func (bt boxTri) axisTestX01(a, b, fa, fb float32) bool {
	p0 := a*bt.v0.Y - b*bt.v0.Z
	p2 := a*bt.v2.Y - b*bt.v2.Z
	return separated(p0, p2, fa*bt.h.Y+fb*bt.h.Z)
}

func (bt boxTri) axisTestX2(a, b, fa, fb float32) bool {
	p0 := a*bt.v0.Y - b*bt.v0.Z
	p1 := a*bt.v1.Y - b*bt.v1.Z
	return separated(p0, p1, fa*bt.h.Y+fb*bt.h.Z)
}

func (bt boxTri) axisTestY02(a, b, fa, fb float32) bool {
	p0 := -a*bt.v0.X + b*bt.v0.Z
	p2 := -a*bt.v2.X + b*bt.v2.Z
	return separated(p0, p2, fa*bt.h.X+fb*bt.h.Z)
}

func (bt boxTri) axisTestY1(a, b, fa, fb float32) bool {
	p0 := -a*bt.v0.X + b*bt.v0.Z
	p1 := -a*bt.v1.X + b*bt.v1.Z
	return separated(p0, p1, fa*bt.h.X+fb*bt.h.Z)
}

func (bt boxTri) axisTestZ12(a, b, fa, fb float32) bool {
	p1 := a*bt.v1.X - b*bt.v1.Y
	p2 := a*bt.v2.X - b*bt.v2.Y
	return separated(p1, p2, fa*bt.h.X+fb*bt.h.Y)
}

func (bt boxTri) axisTestZ0(a, b, fa, fb float32) bool {
	p0 := a*bt.v0.X - b*bt.v0.Y
	p1 := a*bt.v1.X - b*bt.v1.Y
	return separated(p0, p1, fa*bt.h.X+fb*bt.h.Y)
}

// planeBoxOverlap tests the plane through vert with the given normal against a box centred
// at the origin.
func planeBoxOverlap(normal, vert, h rl.Vector3) bool {
	var vmin, vmax rl.Vector3
	for q := 0; q < 3; q++ {
		v := Component(vert, q)
		hq := Component(h, q)
		lo, hi := -hq-v, hq-v
		if Component(normal, q) <= 0 {
			lo, hi = hi, lo
		}
		setComponent(&vmin, q, lo)
		setComponent(&vmax, q, hi)
	}
	if rl.Vector3DotProduct(normal, vmin) > 0 {
		return false
	}
	return rl.Vector3DotProduct(normal, vmax) >= 0
}

func setComponent(v *rl.Vector3, i int, value float32) {
	switch i {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
}
