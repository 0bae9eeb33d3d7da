package compute

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrPairOverflow is returned when more overlapping pairs exist than the pair buffer holds.
// The pairs that did fit are returned alongside it.
var ErrPairOverflow = errors.New("compute: broad-phase pair buffer overflow")

const workgroupSize = 256

// Bound is a bounding sphere packed as a vec4: xyz centre, w radius.
type Bound struct {
	X, Y, Z float32
	Radius  float32
}

// Pair holds the indices of two overlapping bounds, A < B.
type Pair struct {
	A, B uint32
}

const overlapShader = `
struct Bound {
    center: vec3<f32>,
    radius: f32,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> bounds: array<Bound>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> boundCount: u32;

// One invocation per bound, testing it against every later bound.
@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i >= boundCount) {
        return;
    }
    let a = bounds[i];

    for (var j = i + 1u; j < boundCount; j = j + 1u) {
        let b = bounds[j];
        let d = a.center - b.center;
        let r = a.radius + b.radius;

        // Touching counts as overlapping
        if (dot(d, d) <= r * r) {
            let slot = atomicAdd(&pairCount, 1u);
            if (slot < arrayLength(&pairs)) {
                pairs[slot] = Pair(i, j);
            }
        }
    }
}
`

// BroadPhase finds overlapping bounding spheres on the GPU.
type BroadPhase struct {
	device *Device
	kernel *Kernel

	bounds  *Buffer
	pairs   *Buffer
	count   *Buffer
	uniform *Buffer

	maxBounds uint32
	maxPairs  uint32
}

// NewBroadPhase allocates buffers for up to maxBounds spheres and maxPairs results. It
// returns (nil, nil) when no compute device is open.
func NewBroadPhase(maxBounds, maxPairs uint32) (*BroadPhase, error) {
	d := Shared()
	if d == nil {
		return nil, nil
	}

	kernel, err := d.Kernel("broadphase", overlapShader, "main",
		[]BindingKind{ReadOnlyStorage, Storage, Storage, Uniform})
	if err != nil {
		return nil, err
	}

	bp := &BroadPhase{device: d, kernel: kernel, maxBounds: maxBounds, maxPairs: maxPairs}

	if bp.bounds, err = d.NewBuffer("bounds", uint64(maxBounds)*16,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst); err != nil {
		bp.Release()
		return nil, err
	}
	if bp.pairs, err = d.NewBuffer("pairs", uint64(maxPairs)*8,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc); err != nil {
		bp.Release()
		return nil, err
	}
	if bp.count, err = d.NewBuffer("pairCount", 4,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst); err != nil {
		bp.Release()
		return nil, err
	}
	// Uniform buffers need 16-byte sizing
	if bp.uniform, err = d.NewBuffer("boundCount", 16,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		bp.Release()
		return nil, err
	}
	return bp, nil
}

// MaxBounds is the largest input DetectPairs accepts; extra bounds are ignored.
func (bp *BroadPhase) MaxBounds() int {
	return int(bp.maxBounds)
}

// DetectPairs returns every overlapping pair of bounds, in no particular order.
func (bp *BroadPhase) DetectPairs(bounds []Bound) ([]Pair, error) {
	if len(bounds) < 2 {
		return nil, nil
	}
	if uint32(len(bounds)) > bp.maxBounds {
		bounds = bounds[:bp.maxBounds]
	}
	n := uint32(len(bounds))

	bp.device.Write(bp.bounds, 0, ToBytes(bounds))
	bp.device.Write(bp.count, 0, ToBytes([]uint32{0}))
	bp.device.Write(bp.uniform, 0, ToBytes([]uint32{n, 0, 0, 0}))

	buffers := []*Buffer{bp.bounds, bp.pairs, bp.count, bp.uniform}
	if err := bp.device.Run(bp.kernel, buffers, workgroups(n)); err != nil {
		return nil, err
	}

	raw, err := bp.device.Read(bp.count, 4)
	if err != nil {
		return nil, err
	}
	found := FromBytes[uint32](raw)[0]
	if found == 0 {
		return nil, nil
	}

	kept := found
	if kept > bp.maxPairs {
		kept = bp.maxPairs
	}
	raw, err = bp.device.Read(bp.pairs, uint64(kept)*8)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, kept)
	copy(pairs, FromBytes[Pair](raw))

	if found > bp.maxPairs {
		return pairs, ErrPairOverflow
	}
	return pairs, nil
}

// Release frees the broad-phase buffers. The kernel stays cached on the device.
func (bp *BroadPhase) Release() {
	for _, b := range []*Buffer{bp.bounds, bp.pairs, bp.count, bp.uniform} {
		if b != nil {
			b.Release()
		}
	}
}

// workgroups is the number of workgroups needed to give every bound an invocation.
func workgroups(n uint32) uint32 {
	return (n + workgroupSize - 1) / workgroupSize
}
