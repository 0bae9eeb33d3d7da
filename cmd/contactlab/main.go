// contactlab is an interactive sandbox for the contact pipeline. Settings are read from a
// YAML file and reloaded whenever it changes on disk.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"contact3d/internal/camera"
	"contact3d/internal/compute"
	"contact3d/internal/config"
	"contact3d/internal/geometry"
	"contact3d/internal/physics"
	"contact3d/internal/sound"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	panelWidth   = 260
	pushImpulse  = 8
)

type lab struct {
	world    *physics.World
	settings config.Settings
	path     string
	camera   *camera.OrbitCamera
	rng      *rand.Rand
	sound    *sound.Player

	showContacts bool
	paused       bool
	status       string
	lastEvent    string
}

func main() {
	path := flag.String("config", config.DefaultPath, "settings file")
	useGPU := flag.Bool("gpu", false, "enable the WebGPU broad-phase")
	mute := flag.Bool("mute", false, "disable impact sounds")
	flag.Parse()

	settings, err := config.Load(*path)
	if err != nil {
		log.Printf("Config: %v, using defaults", err)
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		log.Printf("Config: %v, using defaults", err)
		settings = config.Default()
	}

	if *useGPU {
		settings.World.UseGPU = true
		if info, err := compute.Open(); err != nil {
			log.Printf("Compute: %v", err)
		} else {
			log.Printf("Compute: %s (%s, %s)", info.Name, info.Vendor, info.Backend)
			defer compute.Shared().Close()
		}
	}

	var player *sound.Player
	if !*mute {
		if player, err = sound.Open(); err != nil {
			log.Printf("Sound: %v", err)
		} else {
			defer player.Close()
		}
	}

	l := newLab(settings, *path, player)
	defer l.world.Release()

	watcher, err := config.NewWatcher(*path)
	if err != nil {
		log.Printf("Config: hot reload disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(screenWidth, screenHeight, "contactlab")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		if watcher != nil {
			l.pollWatcher(watcher)
		}
		l.update()
		l.draw()
	}
}

func newLab(settings config.Settings, path string, player *sound.Player) *lab {
	l := &lab{
		settings:     settings,
		path:         path,
		sound:        player,
		rng:          rand.New(rand.NewSource(1)),
		showContacts: true,
		camera:       camera.New(rl.Vector3{Y: 1}, 22),
	}
	l.reset()
	return l
}

// reset rebuilds the scene: a floor, a ramp and a small stack of boxes.
func (l *lab) reset() {
	if l.world != nil {
		l.world.Release()
	}
	w := physics.NewWorld()
	l.settings.ApplyWorld(w)
	if l.settings.World.UseGPU {
		w.InitGPU()
	}
	l.world = w

	w.AddPrimitive(physics.NewCollisionPlane(rl.Vector3{Y: 1}, 0))

	ramp := physics.NewStaticBody(rl.Vector3{X: -6})
	a := rl.Vector3{X: -3, Y: 3, Z: -3}
	b := rl.Vector3{X: 3, Y: 0, Z: -3}
	c := rl.Vector3{X: 3, Y: 0, Z: 3}
	d := rl.Vector3{X: -3, Y: 3, Z: 3}
	w.AddPrimitive(physics.NewCollisionTriangleSoup(ramp, []geometry.Triangle{
		geometry.NewTriangle(a, c, b),
		geometry.NewTriangle(a, d, c),
	}))

	for i := 0; i < 4; i++ {
		l.addBox(rl.Vector3{X: 3, Y: 0.5 + float32(i)*1.01}, rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
	}
	l.addSphere(rl.Vector3{X: -7, Y: 6}, 0.5)
	l.status = fmt.Sprintf("Scene reset (%d bodies)", len(w.Bodies))
}

func (l *lab) addSphere(position rl.Vector3, radius float32) {
	body := physics.NewRigidBody(1, position)
	body.SetInertiaTensor(physics.SphereInertia(1, radius))
	body.ContactReactor = l.reactor("sphere", body)
	l.world.AddBody(body)
	l.world.AddPrimitive(physics.NewCollisionSphere(body, radius))
}

func (l *lab) addBox(position, halfSize rl.Vector3) {
	body := physics.NewRigidBody(1, position)
	body.SetInertiaTensor(physics.BoxInertia(1, halfSize))
	body.ContactReactor = l.reactor("box", body)
	l.world.AddBody(body)
	l.world.AddPrimitive(physics.NewCollisionBox(body, halfSize))
}

func (l *lab) reactor(name string, body *physics.RigidBody) physics.ContactReactorFuncs {
	return physics.ContactReactorFuncs{
		Enter: func(other physics.Body, kind physics.BodyKind) {
			speed := rl.Vector3Length(body.Velocity())
			if other != nil {
				speed = rl.Vector3Distance(body.Velocity(), other.Velocity())
			}
			l.sound.Impact(speed)
			l.lastEvent = fmt.Sprintf("%s touched %s at %.1f m/s", name, kind, speed)
		},
	}
}

func (l *lab) spawn() {
	position := rl.Vector3{
		X: l.rng.Float32()*6 - 3,
		Y: 8 + l.rng.Float32()*2,
		Z: l.rng.Float32()*6 - 3,
	}
	if l.rng.Intn(2) == 0 {
		l.addSphere(position, 0.3+l.rng.Float32()*0.4)
		return
	}
	half := rl.Vector3{X: 0.3 + l.rng.Float32()*0.4, Y: 0.3 + l.rng.Float32()*0.4, Z: 0.3 + l.rng.Float32()*0.4}
	l.addBox(position, half)
	body := l.world.Bodies[len(l.world.Bodies)-1]
	body.SetOrientation(rl.QuaternionFromEuler(l.rng.Float32()*3, l.rng.Float32()*3, l.rng.Float32()*3))
	body.CalculateDerivedData()
}

func (l *lab) pollWatcher(w *config.Watcher) {
	select {
	case name, ok := <-w.Events:
		if !ok {
			return
		}
		s, err := config.Load(name)
		if err == nil {
			err = s.Validate()
		}
		if err != nil {
			log.Printf("Config: reload failed: %v", err)
			l.status = "Reload failed, see log"
			return
		}
		l.settings = s
		s.ApplyWorld(l.world)
		log.Printf("Config: reloaded %s", name)
		l.status = "Settings reloaded"
	case err, ok := <-w.Errors:
		if ok {
			log.Printf("Config: watch error: %v", err)
		}
	default:
	}
}

func (l *lab) update() {
	mouse := rl.GetMousePosition()
	overPanel := mouse.X < panelWidth

	if !overPanel {
		l.camera.Update()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		l.paused = !l.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		l.reset()
	}
	if rl.IsKeyPressed(rl.KeyN) {
		l.spawn()
	}

	if !overPanel && rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		l.push(mouse)
	}

	dt := rl.GetFrameTime()
	if l.paused {
		if rl.IsKeyPressed(rl.KeyPeriod) {
			l.world.Step(1.0 / 60)
		}
		return
	}
	// Long frames (window drag, breakpoints) would tunnel through thin geometry
	l.world.Step(min(dt, 1.0/30))
}

// push applies an impulse to the body under the cursor.
func (l *lab) push(mouse rl.Vector2) {
	ray := rl.GetScreenToWorldRay(mouse, l.camera.GetRaylibCamera())
	hit, ok := l.world.Raycast(ray.Position, ray.Direction, 100)
	if !ok {
		return
	}
	body, isRigid := hit.Body.(*physics.RigidBody)
	if !isRigid || !body.HasFiniteMass() {
		l.status = fmt.Sprintf("Hit %s at %.1f", hit.Primitive.Shape(), hit.Distance)
		return
	}
	impulse := rl.Vector3Scale(rl.Vector3Normalize(ray.Direction), pushImpulse)
	body.AddForceAtPoint(rl.Vector3Scale(impulse, 60), hit.Point)
	l.status = fmt.Sprintf("Pushed %s at %.1f", hit.Primitive.Shape(), hit.Distance)
}

func (l *lab) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(24, 24, 32, 255))

	rl.BeginMode3D(l.camera.GetRaylibCamera())
	rl.DrawGrid(40, 1)
	for _, p := range l.world.Primitives {
		drawPrimitive(p)
	}
	if l.showContacts {
		drawContacts(l.world.Contacts())
	}
	rl.EndMode3D()

	l.drawPanel()
	rl.EndDrawing()
}

func drawPrimitive(p physics.Primitive) {
	color := rl.SkyBlue
	if body, ok := p.Owner().(*physics.RigidBody); ok && !body.IsAwake() && body.HasFiniteMass() {
		color = rl.Gray
	}

	switch s := p.(type) {
	case *physics.CollisionSphere:
		sphere := s.Sphere()
		rl.DrawSphere(sphere.Center, sphere.Radius, color)
		rl.DrawSphereWires(sphere.Center, sphere.Radius, 8, 8, rl.DarkBlue)
	case *physics.CollisionBox:
		drawBox(s.Box(), color)
	case *physics.CollisionTriangleSoup:
		for _, tri := range s.WorldTriangles() {
			p := tri.Points
			// Both windings so the ramp shows from either side
			rl.DrawTriangle3D(p[0], p[1], p[2], rl.Beige)
			rl.DrawTriangle3D(p[0], p[2], p[1], rl.Beige)
			rl.DrawLine3D(p[0], p[1], rl.Brown)
			rl.DrawLine3D(p[1], p[2], rl.Brown)
			rl.DrawLine3D(p[2], p[0], rl.Brown)
		}
	case *physics.CollisionPlane:
		center := rl.Vector3Scale(s.Normal, s.Offset)
		if s.Normal.Y > 0.99 {
			rl.DrawPlane(center, rl.Vector2{X: 40, Y: 40}, rl.NewColor(40, 44, 52, 255))
		}
	}
}

// drawBox draws an oriented box as triangles plus its twelve edges. Corner i has bit 0
// set for -X, bit 1 for -Y and bit 2 for -Z.
func drawBox(b geometry.Box, color rl.Color) {
	v := b.Vertices()
	faces := [6][4]int{
		{0, 2, 6, 4},
		{1, 5, 7, 3},
		{0, 4, 5, 1},
		{2, 3, 7, 6},
		{0, 1, 3, 2},
		{4, 6, 7, 5},
	}
	for _, f := range faces {
		// Wind counter-clockwise seen from outside
		normal := rl.Vector3CrossProduct(rl.Vector3Subtract(v[f[1]], v[f[0]]), rl.Vector3Subtract(v[f[2]], v[f[0]]))
		if rl.Vector3DotProduct(normal, rl.Vector3Subtract(v[f[0]], b.Center)) < 0 {
			f[1], f[3] = f[3], f[1]
		}
		rl.DrawTriangle3D(v[f[0]], v[f[1]], v[f[2]], color)
		rl.DrawTriangle3D(v[f[0]], v[f[2]], v[f[3]], color)
	}
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				rl.DrawLine3D(v[i], v[i|bit], rl.DarkBlue)
			}
		}
	}
}

func drawContacts(contacts []physics.Contact) {
	for i := range contacts {
		c := &contacts[i]
		rl.DrawSphere(c.ContactPoint, 0.06, rl.Red)
		end := rl.Vector3Add(c.ContactPoint, rl.Vector3Scale(c.ContactNormal, 0.5))
		rl.DrawLine3D(c.ContactPoint, end, rl.Yellow)
	}
}

func (l *lab) drawPanel() {
	rl.DrawRectangle(0, 0, panelWidth, screenHeight, rl.Fade(rl.Black, 0.6))

	y := float32(12)
	row := func(h float32) rl.Rectangle {
		r := rl.Rectangle{X: 12, Y: y, Width: panelWidth - 24, Height: h}
		y += h + 8
		return r
	}

	gui.Label(row(20), fmt.Sprintf("FPS %d | bodies %d | contacts %d",
		rl.GetFPS(), len(l.world.Bodies), l.world.ContactCount()))
	gui.Label(row(20), fmt.Sprintf("Iterations pos %d vel %d",
		l.world.Resolver.PositionIterationsUsed(), l.world.Resolver.VelocityIterationsUsed()))
	broadPhase := "grid"
	if l.world.UsingGPU() {
		broadPhase = "gpu"
	}
	gui.Label(row(20), "Broad-phase: "+broadPhase)

	s := &l.settings
	changed := false

	gui.Label(row(16), "Friction")
	if v := gui.Slider(row(16), "", fmt.Sprintf("%.2f", s.Contacts.Friction), s.Contacts.Friction, 0, 2); v != s.Contacts.Friction {
		s.Contacts.Friction, changed = v, true
	}
	gui.Label(row(16), "Restitution")
	if v := gui.Slider(row(16), "", fmt.Sprintf("%.2f", s.Contacts.Restitution), s.Contacts.Restitution, 0, 1); v != s.Contacts.Restitution {
		s.Contacts.Restitution, changed = v, true
	}
	gui.Label(row(16), "Iterations")
	iterations := float32(s.Resolver.VelocityIterations)
	if v := gui.Slider(row(16), "", fmt.Sprintf("%d", s.Resolver.VelocityIterations), iterations, 1, 4096); int(v) != s.Resolver.VelocityIterations {
		s.Resolver.VelocityIterations = max(int(v), 1)
		s.Resolver.PositionIterations = s.Resolver.VelocityIterations
		changed = true
	}
	gui.Label(row(16), "Epsilon")
	if v := gui.Slider(row(16), "", fmt.Sprintf("%.3f", s.Resolver.VelocityEpsilon), s.Resolver.VelocityEpsilon, 0.001, 0.1); v != s.Resolver.VelocityEpsilon {
		s.Resolver.VelocityEpsilon, s.Resolver.PositionEpsilon = v, v
		changed = true
	}
	if changed {
		s.ApplyResolver(l.world.Resolver)
		l.world.Buffer.Friction = s.Contacts.Friction
		l.world.Buffer.Restitution = s.Contacts.Restitution
	}

	l.showContacts = gui.CheckBox(row(16), "Show contacts", l.showContacts)
	l.paused = gui.CheckBox(row(16), "Paused (. steps)", l.paused)

	if gui.Button(row(28), "Spawn (N)") {
		l.spawn()
	}
	if gui.Button(row(28), "Reset (R)") {
		l.reset()
	}
	if gui.Button(row(28), "Save settings") {
		if err := config.Save(l.path, l.settings); err != nil {
			log.Printf("Config: save failed: %v", err)
			l.status = "Save failed, see log"
		} else {
			l.status = "Saved " + l.path
		}
	}

	gui.Label(row(20), l.status)
	gui.Label(row(20), l.lastEvent)
	rl.DrawText("RMB orbit | wheel zoom | LMB push", 12, screenHeight-24, 14, rl.LightGray)
}
