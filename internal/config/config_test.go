package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contact3d/internal/physics"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contact3d.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
resolver:
  position_iterations: 64
contacts:
  friction: 0.4
world:
  gravity: [0, -20, 0]
  use_gpu: true
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Resolver.PositionIterations != 64 {
		t.Errorf("Expected position iterations 64, got %d", s.Resolver.PositionIterations)
	}
	if s.Resolver.VelocityIterations != physics.DefaultIterations {
		t.Errorf("Expected default velocity iterations, got %d", s.Resolver.VelocityIterations)
	}
	if s.Contacts.Friction != 0.4 {
		t.Errorf("Expected friction 0.4, got %g", s.Contacts.Friction)
	}
	if s.Contacts.Capacity != physics.DefaultContactCapacity {
		t.Errorf("Expected default capacity, got %d", s.Contacts.Capacity)
	}
	if s.World.Gravity != [3]float32{0, -20, 0} {
		t.Errorf("Expected gravity (0,-20,0), got %v", s.World.Gravity)
	}
	if !s.World.UseGPU {
		t.Error("Expected use_gpu true")
	}
	if s.World.CellSize != physics.DefaultCellSize {
		t.Errorf("Expected default cell size, got %g", s.World.CellSize)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeFile(t, "resolver: [not, a, map]\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("Expected wrapped parse error, got %v", err)
	}
}

func TestValidateListsEveryProblem(t *testing.T) {
	s := Default()
	s.Resolver.PositionIterations = 0
	s.Resolver.VelocityEpsilon = -1
	s.Contacts.Restitution = 1.5
	s.World.CellSize = 0

	err := s.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	for _, field := range []string{
		"resolver.position_iterations",
		"resolver.velocity_epsilon",
		"contacts.restitution",
		"world.cell_size",
	} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("Expected %s in %q", field, err.Error())
		}
	}
	if strings.Contains(err.Error(), "contacts.friction") {
		t.Errorf("Did not expect friction to be reported: %q", err.Error())
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	want := Default()
	want.Resolver.VelocityIterations = 12
	want.Contacts.Tolerance = 0.25
	want.World.GPUThreshold = 100

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestApplyWorld(t *testing.T) {
	s := Default()
	s.Resolver.PositionIterations = 8
	s.Resolver.VelocityIterations = 16
	s.Resolver.PositionEpsilon = 0.05
	s.Contacts.Capacity = 32
	s.Contacts.Restitution = 0.5
	s.World.Gravity = [3]float32{1, 2, 3}
	s.World.CellSize = 2
	s.World.UseGPU = true

	w := physics.NewWorld()
	s.ApplyWorld(w)

	if w.Resolver.PositionIterations != 8 || w.Resolver.VelocityIterations != 16 {
		t.Errorf("Unexpected iterations %d/%d", w.Resolver.PositionIterations, w.Resolver.VelocityIterations)
	}
	if w.Resolver.PositionEpsilon != 0.05 {
		t.Errorf("Expected position epsilon 0.05, got %g", w.Resolver.PositionEpsilon)
	}
	if w.Buffer.Capacity() != 32 || w.Buffer.Restitution != 0.5 {
		t.Errorf("Unexpected buffer capacity %d restitution %g", w.Buffer.Capacity(), w.Buffer.Restitution)
	}
	if w.Gravity.X != 1 || w.Gravity.Y != 2 || w.Gravity.Z != 3 {
		t.Errorf("Unexpected gravity %v", w.Gravity)
	}
	if w.Grid.CellSize != 2 || !w.UseGPU {
		t.Errorf("Unexpected world settings cell %g gpu %v", w.Grid.CellSize, w.UseGPU)
	}
}

func TestSampleFileIsValid(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", DefaultPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Expected sample settings to validate, got %v", err)
	}
}
