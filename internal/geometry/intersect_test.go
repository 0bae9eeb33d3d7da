package geometry

import (
	"math/rand"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var groundPlane = Plane{Normal: rl.Vector3{X: 0, Y: 1, Z: 0}, Offset: 0}

func TestSphereAndHalfSpace(t *testing.T) {
	if !SphereAndHalfSpace(Sphere{Center: rl.Vector3{Y: 0.5}, Radius: 1}, groundPlane) {
		t.Error("Sphere dipping below the plane should intersect")
	}
	if !SphereAndHalfSpace(Sphere{Center: rl.Vector3{Y: 1}, Radius: 1}, groundPlane) {
		t.Error("Touching sphere should intersect")
	}
	if SphereAndHalfSpace(Sphere{Center: rl.Vector3{Y: 1.5}, Radius: 1}, groundPlane) {
		t.Error("Sphere above the plane should not intersect")
	}
	if !SphereAndHalfSpace(Sphere{Center: rl.Vector3{Y: -10}, Radius: 1}, groundPlane) {
		t.Error("Sphere fully behind a half-space should intersect")
	}
}

func TestSphereAndPlaneIsTwoSided(t *testing.T) {
	if SphereAndPlane(Sphere{Center: rl.Vector3{Y: -10}, Radius: 1}, groundPlane) {
		t.Error("Sphere far behind a true plane should not intersect")
	}
	if !SphereAndPlane(Sphere{Center: rl.Vector3{Y: -0.5}, Radius: 1}, groundPlane) {
		t.Error("Sphere straddling the plane from behind should intersect")
	}
}

func TestSphereAndSphere(t *testing.T) {
	a := Sphere{Center: rl.Vector3{}, Radius: 1}
	tests := []struct {
		name string
		b    Sphere
		want bool
	}{
		{"overlapping", Sphere{Center: rl.Vector3{X: 1.5}, Radius: 1}, true},
		{"touching", Sphere{Center: rl.Vector3{X: 2}, Radius: 1}, true},
		{"apart", Sphere{Center: rl.Vector3{X: 2.5}, Radius: 1}, false},
	}
	for _, tt := range tests {
		if got := SphereAndSphere(a, tt.b); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestSphereAndTriangle(t *testing.T) {
	tri := NewTriangle(rl.Vector3{X: 0, Y: 0, Z: 0}, rl.Vector3{X: 4, Y: 0, Z: 0}, rl.Vector3{X: 0, Y: 4, Z: 0})

	tests := []struct {
		name string
		s    Sphere
		want bool
	}{
		{"over the face", Sphere{Center: rl.Vector3{X: 1, Y: 1, Z: 0.5}, Radius: 1}, true},
		{"touching the face", Sphere{Center: rl.Vector3{X: 1, Y: 1, Z: 0.5}, Radius: 0.5}, true},
		{"above the face", Sphere{Center: rl.Vector3{X: 1, Y: 1, Z: 2}, Radius: 1}, false},
		{"near an edge", Sphere{Center: rl.Vector3{X: 2, Y: -0.5, Z: 0.1}, Radius: 0.6}, true},
		{"short of an edge", Sphere{Center: rl.Vector3{X: 2, Y: -0.5, Z: 0.1}, Radius: 0.4}, false},
		{"near a vertex", Sphere{Center: rl.Vector3{X: -0.3, Y: -0.3, Z: 0}, Radius: 0.5}, true},
		{"in plane but outside", Sphere{Center: rl.Vector3{X: 4, Y: 4, Z: 0}, Radius: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SphereAndTriangle(tt.s, tri); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestSphereAndBox(t *testing.T) {
	box := NewBox(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2}, rl.Vector3{Y: 45})
	if !SphereAndBox(Sphere{Center: rl.Vector3{X: 1.5}, Radius: 0.2}, box) {
		t.Error("Rotated box corner should reach a sphere at x=1.5")
	}
	if SphereAndBox(Sphere{Center: rl.Vector3{Y: 1.5}, Radius: 0.2}, box) {
		t.Error("Sphere above the top face should not intersect")
	}
}

func TestBoxAndHalfSpace(t *testing.T) {
	half := rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}
	if !BoxAndHalfSpace(NewAxisAlignedBox(rl.Vector3{Y: 0.4}, half), groundPlane) {
		t.Error("Box dipping below ground should intersect")
	}
	if BoxAndHalfSpace(NewAxisAlignedBox(rl.Vector3{Y: 0.6}, half), groundPlane) {
		t.Error("Box resting above ground should not intersect")
	}

	// A unit cube turned 45° about Z reaches sqrt(2)/2 below its center
	tilted := NewBox(rl.Vector3{Y: 0.65}, rl.Vector3{X: 1, Y: 1, Z: 1}, rl.Vector3{Z: 45})
	if !BoxAndHalfSpace(tilted, groundPlane) {
		t.Error("Tilted box edge should reach the ground")
	}
}

func TestBoxAndBox(t *testing.T) {
	half := rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}
	a := NewAxisAlignedBox(rl.Vector3{}, half)

	tests := []struct {
		name string
		b    Box
		want bool
	}{
		{"overlapping", NewAxisAlignedBox(rl.Vector3{X: 0.9}, half), true},
		{"touching faces", NewAxisAlignedBox(rl.Vector3{X: 1}, half), true},
		{"apart", NewAxisAlignedBox(rl.Vector3{X: 1.1}, half), false},
		{"rotated corner reaching in", NewBox(rl.Vector3{X: 1.1, Y: 0}, rl.Vector3{X: 1, Y: 1, Z: 1}, rl.Vector3{Z: 45}), true},
		{"rotated corner short", NewBox(rl.Vector3{X: 1.3, Y: 0}, rl.Vector3{X: 1, Y: 1, Z: 1}, rl.Vector3{Z: 45}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoxAndBox(a, tt.b); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestBoxAndBoxSymmetry(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randBox := func() Box {
		return NewBox(
			rl.Vector3{X: rng.Float32()*4 - 2, Y: rng.Float32()*4 - 2, Z: rng.Float32()*4 - 2},
			rl.Vector3{X: 0.2 + rng.Float32()*2, Y: 0.2 + rng.Float32()*2, Z: 0.2 + rng.Float32()*2},
			rl.Vector3{X: rng.Float32() * 360, Y: rng.Float32() * 360, Z: rng.Float32() * 360},
		)
	}

	hits := 0
	for i := 0; i < 1000; i++ {
		a, b := randBox(), randBox()
		ab := BoxAndBox(a, b)
		if ab != BoxAndBox(b, a) {
			t.Fatalf("Case %d: BoxAndBox is not symmetric", i)
		}
		if ab {
			hits++
		}
	}
	if hits == 0 || hits == 1000 {
		t.Errorf("Expected a mix of overlapping and separated pairs, got %d hits", hits)
	}
}

func TestBoxAndTriangle(t *testing.T) {
	box := NewAxisAlignedBox(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	tests := []struct {
		name string
		tri  Triangle
		want bool
	}{
		{
			name: "slicing through",
			tri:  NewTriangle(rl.Vector3{X: -5, Y: -5, Z: 0.5}, rl.Vector3{X: 5, Y: -5, Z: 0.5}, rl.Vector3{X: 0, Y: 5, Z: 0.5}),
			want: true,
		},
		{
			name: "above",
			tri:  NewTriangle(rl.Vector3{X: -5, Y: -5, Z: 2}, rl.Vector3{X: 5, Y: -5, Z: 2}, rl.Vector3{X: 0, Y: 5, Z: 2}),
			want: false,
		},
		{
			name: "beside a face",
			tri:  NewTriangle(rl.Vector3{X: 1.5, Y: 1.5, Z: 0}, rl.Vector3{X: 3, Y: 1.5, Z: 0}, rl.Vector3{X: 1.5, Y: 3, Z: 0}),
			want: false,
		},
		{
			name: "plane misses a corner",
			tri:  NewTriangle(rl.Vector3{X: 2.1, Y: 0, Z: -5}, rl.Vector3{X: 0, Y: 2.1, Z: -5}, rl.Vector3{X: 0, Y: 2.1, Z: 5}),
			want: false,
		},
		{
			name: "plane clips a corner",
			tri:  NewTriangle(rl.Vector3{X: 1.9, Y: 0, Z: -5}, rl.Vector3{X: 0, Y: 1.9, Z: -5}, rl.Vector3{X: 0, Y: 1.9, Z: 5}),
			want: true,
		},
		{
			name: "small triangle inside",
			tri:  NewTriangle(rl.Vector3{X: -0.1, Y: 0, Z: 0}, rl.Vector3{X: 0.1, Y: 0, Z: 0}, rl.Vector3{X: 0, Y: 0.1, Z: 0}),
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoxAndTriangle(box, tt.tri); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRayTriangleSegmentBoundary(t *testing.T) {
	tri := NewTriangle(rl.Vector3{X: -1, Y: -1, Z: 0}, rl.Vector3{X: 1, Y: -1, Z: 0}, rl.Vector3{X: 0, Y: 1, Z: 0})

	const length = 2
	const eps = 0.1
	r := Ray{
		Origin:    rl.Vector3{X: 0, Y: 0, Z: length + eps},
		Direction: rl.Vector3{X: 0, Y: 0, Z: -length},
	}

	if _, _, ok := RayTriangle(r, tri, true); ok {
		t.Error("Segment ending before the triangle should miss")
	}

	point, dist, ok := RayTriangle(r, tri, false)
	if !ok {
		t.Fatal("Infinite ray should hit")
	}
	if !vecNear(point, rl.Vector3{}) {
		t.Errorf("Expected hit at origin, got %v", point)
	}
	if !near(dist, length+eps) {
		t.Errorf("Expected distance %f, got %f", length+eps, dist)
	}

	// Segment just long enough
	r.Direction = rl.Vector3{Z: -(length + 2*eps)}
	if _, _, ok := RayTriangle(r, tri, true); !ok {
		t.Error("Segment reaching past the triangle should hit")
	}
}

func TestRayTriangleMisses(t *testing.T) {
	tri := NewTriangle(rl.Vector3{X: -1, Y: -1, Z: 0}, rl.Vector3{X: 1, Y: -1, Z: 0}, rl.Vector3{X: 0, Y: 1, Z: 0})

	parallel := Ray{Origin: rl.Vector3{Z: 1}, Direction: rl.Vector3{X: 1}}
	if _, _, ok := RayTriangle(parallel, tri, false); ok {
		t.Error("Parallel ray should miss")
	}

	away := Ray{Origin: rl.Vector3{Z: 1}, Direction: rl.Vector3{Z: 1}}
	if _, _, ok := RayTriangle(away, tri, false); ok {
		t.Error("Ray pointing away should miss")
	}

	beside := Ray{Origin: rl.Vector3{X: 3, Z: 1}, Direction: rl.Vector3{Z: -1}}
	if _, _, ok := RayTriangle(beside, tri, false); ok {
		t.Error("Ray crossing the plane outside the triangle should miss")
	}
}

func TestRaySphere(t *testing.T) {
	r := Ray{Origin: rl.Vector3{Z: -5}, Direction: rl.Vector3{Z: 2}}
	hit, ok := RaySphere(r, Sphere{Radius: 1}, 100)
	if !ok {
		t.Fatal("Expected hit")
	}
	if !near(hit.Distance, 4) {
		t.Errorf("Expected distance 4, got %f", hit.Distance)
	}
	if !vecNear(hit.Normal, rl.Vector3{Z: -1}) {
		t.Errorf("Expected normal (0,0,-1), got %v", hit.Normal)
	}

	if _, ok := RaySphere(r, Sphere{Radius: 1}, 3); ok {
		t.Error("Hit beyond maxDistance should be rejected")
	}
}

func TestRayBox(t *testing.T) {
	box := NewAxisAlignedBox(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	hit, ok := RayBox(Ray{Origin: rl.Vector3{Z: -5}, Direction: rl.Vector3{Z: 1}}, box, 100)
	if !ok {
		t.Fatal("Expected hit from outside")
	}
	if !near(hit.Distance, 4) || !vecNear(hit.Normal, rl.Vector3{Z: -1}) {
		t.Errorf("Expected distance 4 normal (0,0,-1), got %f %v", hit.Distance, hit.Normal)
	}

	hit, ok = RayBox(Ray{Origin: rl.Vector3{}, Direction: rl.Vector3{Z: 1}}, box, 100)
	if !ok {
		t.Fatal("Expected hit from inside")
	}
	if !near(hit.Distance, 1) || !vecNear(hit.Normal, rl.Vector3{Z: 1}) {
		t.Errorf("Expected exit distance 1 normal (0,0,1), got %f %v", hit.Distance, hit.Normal)
	}

	if _, ok := RayBox(Ray{Origin: rl.Vector3{X: 3, Z: -5}, Direction: rl.Vector3{Z: 1}}, box, 100); ok {
		t.Error("Ray passing beside the box should miss")
	}
}
