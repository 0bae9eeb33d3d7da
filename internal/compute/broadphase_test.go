package compute

import (
	"testing"
	"unsafe"
)

func TestBoundLayoutMatchesShader(t *testing.T) {
	// vec3<f32> + f32 packs to 16 bytes, u32 pairs to 8
	if size := unsafe.Sizeof(Bound{}); size != 16 {
		t.Errorf("Expected Bound size 16, got %d", size)
	}
	if size := unsafe.Sizeof(Pair{}); size != 8 {
		t.Errorf("Expected Pair size 8, got %d", size)
	}
}

func TestWorkgroups(t *testing.T) {
	tests := []struct {
		n, want uint32
	}{
		{0, 0},
		{1, 1},
		{256, 1},
		{257, 2},
		{1000, 4},
	}
	for _, tt := range tests {
		if got := workgroups(tt.n); got != tt.want {
			t.Errorf("workgroups(%d): expected %d, got %d", tt.n, tt.want, got)
		}
	}
}

func TestNewBroadPhaseWithoutDevice(t *testing.T) {
	if Shared() != nil {
		t.Skip("compute device already open")
	}
	bp, err := NewBroadPhase(16, 64)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if bp != nil {
		t.Error("Expected nil broad-phase without a device")
	}
}

func TestToBytesRoundTrip(t *testing.T) {
	in := []Bound{{X: 1, Y: 2, Z: 3, Radius: 4}, {X: -1, Y: 0, Z: 5, Radius: 0.5}}
	raw := ToBytes(in)
	if len(raw) != 32 {
		t.Fatalf("Expected 32 bytes, got %d", len(raw))
	}
	out := FromBytes[Bound](raw)
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Errorf("Expected %v, got %v", in, out)
	}
}
