package camera

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OrbitCamera circles a target point. Yaw and Pitch are in degrees.
type OrbitCamera struct {
	Target    rl.Vector3
	Distance  float32
	Yaw       float32
	Pitch     float32
	LookSpeed float32
	ZoomSpeed float32

	MinDistance float32
	MaxDistance float32
}

func New(target rl.Vector3, distance float32) *OrbitCamera {
	return &OrbitCamera{
		Target:      target,
		Distance:    distance,
		Yaw:         45.0,
		Pitch:       35.0,
		LookSpeed:   0.3,
		ZoomSpeed:   1.5, // Units per wheel notch
		MinDistance: 2,
		MaxDistance: 80,
	}
}

// Orbit turns the camera by a mouse delta and zooms by wheel notches.
func (c *OrbitCamera) Orbit(mouseDelta rl.Vector2, wheel float32) {
	c.Yaw += mouseDelta.X * c.LookSpeed
	c.Pitch += mouseDelta.Y * c.LookSpeed

	// Clamp pitch
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}

	c.Distance -= wheel * c.ZoomSpeed
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// Update reads mouse input: right button drags orbit, the wheel always zooms.
func (c *OrbitCamera) Update() {
	var delta rl.Vector2
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta = rl.GetMouseDelta()
	}
	c.Orbit(delta, rl.GetMouseWheelMove())
}

// Position is the eye point on the orbit sphere.
func (c *OrbitCamera) Position() rl.Vector3 {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180

	return rl.Vector3{
		X: c.Target.X + c.Distance*float32(math.Cos(pitchRad)*math.Cos(yawRad)),
		Y: c.Target.Y + c.Distance*float32(math.Sin(pitchRad)),
		Z: c.Target.Z + c.Distance*float32(math.Cos(pitchRad)*math.Sin(yawRad)),
	}
}

func (c *OrbitCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position(),
		Target:     c.Target,
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45,
		Projection: rl.CameraPerspective,
	}
}
