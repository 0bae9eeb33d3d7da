// Stress test: drops piles of spheres and boxes into a walled pit and times each phase of
// the contact pipeline, optionally with the GPU broad-phase.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"contact3d/internal/compute"
	"contact3d/internal/config"
	"contact3d/internal/geometry"
	"contact3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func main() {
	useGPU := flag.Bool("gpu", false, "use the WebGPU broad-phase above the configured threshold")
	counts := flag.String("counts", "100,500,1000,2000", "comma separated body counts")
	steps := flag.Int("steps", 240, "steps to simulate per count")
	configPath := flag.String("config", "", "settings file (defaults are used when empty)")
	flag.Parse()

	settings := config.Default()
	if *configPath != "" {
		s, err := config.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		settings = s
	}
	if err := settings.Validate(); err != nil {
		log.Printf("Config: %v", err)
	}

	if *useGPU {
		info, err := compute.Open()
		if err != nil {
			log.Fatalf("Compute: %v", err)
		}
		fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)
		defer compute.Shared().Close()
	}

	for _, field := range strings.Split(*counts, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n <= 0 {
			log.Fatalf("bad count %q", field)
		}
		run(n, *steps, settings, *useGPU)
	}

	if *useGPU {
		compareBroadPhase()
	}
}

func run(count, steps int, settings config.Settings, useGPU bool) {
	w := physics.NewWorld()
	settings.ApplyWorld(w)
	// Enough room for a resting pile: four contacts per box plus neighbours
	w.Buffer.Reset(max(settings.Contacts.Capacity, count*8))
	if useGPU {
		w.UseGPU = true
		w.InitGPU()
		defer w.Release()
	}

	buildPit(w, float32(count))
	spawnBodies(w, count)

	var total, slowest time.Duration
	var contacts, positionIterations, velocityIterations int
	for i := 0; i < steps; i++ {
		start := time.Now()
		w.Step(1.0 / 60)
		elapsed := time.Since(start)

		total += elapsed
		slowest = max(slowest, elapsed)
		contacts += w.ContactCount()
		positionIterations += w.Resolver.PositionIterationsUsed()
		velocityIterations += w.Resolver.VelocityIterationsUsed()
	}

	asleep := 0
	for _, b := range w.Bodies {
		if !b.IsAwake() {
			asleep++
		}
	}

	mode := "CPU"
	if w.UsingGPU() {
		mode = "GPU"
	}
	fmt.Printf("%5d bodies [%s]: avg %8v max %8v | %5d contacts/step | iters pos %5d vel %5d | %d asleep\n",
		count, mode,
		(total / time.Duration(steps)).Round(time.Microsecond), slowest.Round(time.Microsecond),
		contacts/steps, positionIterations/steps, velocityIterations/steps, asleep)
}

// buildPit adds a floor, four walls and a triangle ramp sized for count bodies.
func buildPit(w *physics.World, count float32) {
	half := 10 + count/100

	w.AddPrimitive(physics.NewCollisionPlane(rl.Vector3{Y: 1}, 0))
	w.AddPrimitive(physics.NewCollisionPlane(rl.Vector3{X: 1}, -half))
	w.AddPrimitive(physics.NewCollisionPlane(rl.Vector3{X: -1}, -half))
	w.AddPrimitive(physics.NewCollisionPlane(rl.Vector3{Z: 1}, -half))
	w.AddPrimitive(physics.NewCollisionPlane(rl.Vector3{Z: -1}, -half))

	ramp := physics.NewStaticBody(rl.Vector3{})
	a := rl.Vector3{X: -half, Y: 4, Z: -half}
	b := rl.Vector3{X: 0, Y: 0, Z: -half}
	c := rl.Vector3{X: 0, Y: 0, Z: half}
	d := rl.Vector3{X: -half, Y: 4, Z: half}
	w.AddPrimitive(physics.NewCollisionTriangleSoup(ramp, []geometry.Triangle{
		geometry.NewTriangle(a, b, c),
		geometry.NewTriangle(a, c, d),
	}))
}

func spawnBodies(w *physics.World, count int) {
	rng := rand.New(rand.NewSource(42))
	spread := 8 + float32(count)/100

	for i := 0; i < count; i++ {
		position := rl.Vector3{
			X: rng.Float32()*spread*2 - spread,
			Y: 2 + float32(i)*0.05,
			Z: rng.Float32()*spread*2 - spread,
		}
		body := physics.NewRigidBody(1, position)
		w.AddBody(body)

		if i%2 == 0 {
			radius := 0.3 + rng.Float32()*0.3
			body.SetInertiaTensor(physics.SphereInertia(1, radius))
			w.AddPrimitive(physics.NewCollisionSphere(body, radius))
		} else {
			half := rl.Vector3{X: 0.3 + rng.Float32()*0.2, Y: 0.3, Z: 0.3 + rng.Float32()*0.2}
			body.SetInertiaTensor(physics.BoxInertia(1, half))
			body.SetOrientation(rl.QuaternionFromEuler(rng.Float32(), rng.Float32(), rng.Float32()))
			w.AddPrimitive(physics.NewCollisionBox(body, half))
		}
		body.CalculateDerivedData()
	}
}

// compareBroadPhase times the GPU pass against the CPU grid on the same bounds and checks
// they agree.
func compareBroadPhase() {
	fmt.Println()
	for _, count := range []int{1000, 5000, 20000} {
		rng := rand.New(rand.NewSource(42))
		spawnSize := float32(50) + float32(count)/100

		bounds := make([]geometry.Sphere, count)
		gpuBounds := make([]compute.Bound, count)
		for i := range bounds {
			s := geometry.Sphere{
				Center: rl.Vector3{
					X: rng.Float32()*spawnSize - spawnSize/2,
					Y: rng.Float32()*spawnSize - spawnSize/2,
					Z: rng.Float32()*spawnSize - spawnSize/2,
				},
				Radius: 0.5 + rng.Float32()*0.5,
			}
			bounds[i] = s
			gpuBounds[i] = compute.Bound{X: s.Center.X, Y: s.Center.Y, Z: s.Center.Z, Radius: s.Radius}
		}

		bp, err := compute.NewBroadPhase(uint32(count), uint32(count*20))
		if err != nil || bp == nil {
			fmt.Printf("%5d bounds: GPU unavailable: %v\n", count, err)
			return
		}

		// Warm up
		bp.DetectPairs(gpuBounds)

		const iterations = 10
		start := time.Now()
		var gpuPairs []compute.Pair
		for i := 0; i < iterations; i++ {
			gpuPairs, err = bp.DetectPairs(gpuBounds)
		}
		gpuTime := time.Since(start) / iterations
		bp.Release()
		if err != nil {
			fmt.Printf("%5d bounds: GPU error: %v\n", count, err)
			continue
		}

		grid := physics.NewSpatialGrid(physics.DefaultCellSize)
		start = time.Now()
		var cpuPairs []physics.CandidatePair
		for i := 0; i < iterations; i++ {
			cpuPairs = grid.Pairs(bounds)
		}
		cpuTime := time.Since(start) / iterations

		status := "match"
		if len(gpuPairs) != len(cpuPairs) {
			status = "MISMATCH"
		}
		fmt.Printf("%5d bounds: GPU %8v (%5d pairs) | grid %8v (%5d pairs) | %s\n",
			count, gpuTime.Round(time.Microsecond), len(gpuPairs),
			cpuTime.Round(time.Microsecond), len(cpuPairs), status)
	}
}
