// Package config loads the contact engine settings from YAML and pushes them into the
// physics world.
package config

import (
	"errors"
	"fmt"
	"os"

	"contact3d/internal/physics"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file the tools look for when no -config flag is given.
const DefaultPath = "contact3d.yaml"

type ResolverSettings struct {
	PositionIterations int     `yaml:"position_iterations"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionEpsilon    float32 `yaml:"position_epsilon"`
	VelocityEpsilon    float32 `yaml:"velocity_epsilon"`
}

type ContactSettings struct {
	Capacity    int     `yaml:"capacity"`
	Friction    float32 `yaml:"friction"`
	Restitution float32 `yaml:"restitution"`
	Tolerance   float32 `yaml:"tolerance"`
}

type WorldSettings struct {
	Gravity      [3]float32 `yaml:"gravity"`
	CellSize     float32    `yaml:"cell_size"`
	GPUThreshold int        `yaml:"gpu_threshold"`
	UseGPU       bool       `yaml:"use_gpu"`
}

type Settings struct {
	Resolver ResolverSettings `yaml:"resolver"`
	Contacts ContactSettings  `yaml:"contacts"`
	World    WorldSettings    `yaml:"world"`
}

// Default returns the settings the physics package uses when nothing is configured.
func Default() Settings {
	return Settings{
		Resolver: ResolverSettings{
			PositionIterations: physics.DefaultIterations,
			VelocityIterations: physics.DefaultIterations,
			PositionEpsilon:    physics.DefaultEpsilon,
			VelocityEpsilon:    physics.DefaultEpsilon,
		},
		Contacts: ContactSettings{
			Capacity:    physics.DefaultContactCapacity,
			Friction:    physics.DefaultFriction,
			Restitution: physics.DefaultRestitution,
			Tolerance:   physics.DefaultTolerance,
		},
		World: WorldSettings{
			Gravity:      [3]float32{0, -9.81, 0},
			CellSize:     physics.DefaultCellSize,
			GPUThreshold: physics.GPUBroadPhaseThreshold,
		},
	}
}

// Load reads settings from path. Keys missing from the file keep their defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML on top of the defaults.
func Parse(data []byte) (Settings, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save writes the settings to path.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate reports every out-of-range field. The resolver tolerates bad values by doing
// nothing, so this is for catching typos early.
func (s Settings) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	r := s.Resolver
	check(r.PositionIterations > 0, "resolver.position_iterations must be positive, got %d", r.PositionIterations)
	check(r.VelocityIterations > 0, "resolver.velocity_iterations must be positive, got %d", r.VelocityIterations)
	check(r.PositionEpsilon >= 0, "resolver.position_epsilon must not be negative, got %g", r.PositionEpsilon)
	check(r.VelocityEpsilon >= 0, "resolver.velocity_epsilon must not be negative, got %g", r.VelocityEpsilon)

	c := s.Contacts
	check(c.Capacity > 0, "contacts.capacity must be positive, got %d", c.Capacity)
	check(c.Friction >= 0, "contacts.friction must not be negative, got %g", c.Friction)
	check(c.Restitution >= 0 && c.Restitution <= 1, "contacts.restitution must be in [0, 1], got %g", c.Restitution)
	check(c.Tolerance >= 0, "contacts.tolerance must not be negative, got %g", c.Tolerance)

	w := s.World
	check(w.CellSize > 0, "world.cell_size must be positive, got %g", w.CellSize)
	check(w.GPUThreshold >= 0, "world.gpu_threshold must not be negative, got %d", w.GPUThreshold)

	return errors.Join(errs...)
}

// ApplyResolver copies the resolver limits.
func (s Settings) ApplyResolver(r *physics.ContactResolver) {
	r.SetIterations(s.Resolver.VelocityIterations, s.Resolver.PositionIterations)
	r.SetEpsilon(s.Resolver.VelocityEpsilon, s.Resolver.PositionEpsilon)
}

// ApplyBuffer copies the surface parameters and resizes the buffer. Existing contacts are
// dropped, so call it between steps.
func (s Settings) ApplyBuffer(b *physics.ContactBuffer) {
	b.Friction = s.Contacts.Friction
	b.Restitution = s.Contacts.Restitution
	b.Tolerance = s.Contacts.Tolerance
	b.Reset(s.Contacts.Capacity)
}

// ApplyWorld pushes every section into w.
func (s Settings) ApplyWorld(w *physics.World) {
	g := s.World.Gravity
	w.Gravity = rl.Vector3{X: g[0], Y: g[1], Z: g[2]}
	w.Grid.CellSize = s.World.CellSize
	w.GPUThreshold = s.World.GPUThreshold
	w.UseGPU = s.World.UseGPU

	s.ApplyResolver(w.Resolver)
	s.ApplyBuffer(w.Buffer)
}
