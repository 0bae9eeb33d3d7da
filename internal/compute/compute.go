// Package compute runs WebGPU compute shaders for the collision broad-phase. It is
// independent of raylib's OpenGL renderer and optional: when no adapter is available the
// physics world stays on the CPU grid.
package compute

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Device owns the WebGPU device and the compute kernels compiled on it.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu      sync.Mutex
	kernels map[string]*Kernel
}

// Kernel is a compiled compute pipeline with an explicit bind group layout.
type Kernel struct {
	module   *wgpu.ShaderModule
	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.ComputePipeline
}

// Buffer wraps a GPU buffer.
type Buffer struct {
	buffer *wgpu.Buffer
	size   uint64
}

// AdapterInfo describes the GPU picked by Open.
type AdapterInfo struct {
	Name       string
	Vendor     string
	Backend    string
	DeviceType string
	Driver     string
}

var (
	shared   *Device
	openOnce sync.Once
	openErr  error
)

// Open sets up the shared device. Safe to call more than once; later calls return the
// first result.
func Open() (AdapterInfo, error) {
	openOnce.Do(func() {
		shared, openErr = newDevice()
	})
	if openErr != nil {
		return AdapterInfo{}, openErr
	}
	info := shared.adapter.GetInfo()
	return AdapterInfo{
		Name:       info.Name,
		Vendor:     info.VendorName,
		Backend:    info.BackendType.String(),
		DeviceType: info.AdapterType.String(),
		Driver:     info.DriverDescription,
	}, nil
}

// Shared returns the device created by Open, or nil if Open was never called or failed.
func Shared() *Device {
	return shared
}

func newDevice() (*Device, error) {
	instance := wgpu.CreateInstance(nil)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("compute: request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("compute: request device: %w", err)
	}

	return &Device{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
		kernels:  make(map[string]*Kernel),
	}, nil
}

// BindingKind is the role of one buffer binding in a kernel.
type BindingKind int

const (
	ReadOnlyStorage BindingKind = iota
	Storage
	Uniform
)

func (k BindingKind) layoutType() wgpu.BufferBindingType {
	switch k {
	case Storage:
		return wgpu.BufferBindingTypeStorage
	case Uniform:
		return wgpu.BufferBindingTypeUniform
	default:
		return wgpu.BufferBindingTypeReadOnlyStorage
	}
}

// Kernel compiles code with an explicit layout of bindings (binding i has kind bindings[i])
// and caches it under name.
func (d *Device) Kernel(name, code, entryPoint string, bindings []BindingKind) (*Kernel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if k, ok := d.kernels[name]; ok {
		return k, nil
	}

	entries := make([]wgpu.BindGroupLayoutEntry, len(bindings))
	for i, kind := range bindings {
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     wgpu.BufferBindingLayout{Type: kind.layoutType()},
		}
	}
	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   name + "_layout",
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("compute: %s layout: %w", name, err)
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            name + "_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("compute: %s pipeline layout: %w", name, err)
	}
	defer pipelineLayout.Release()

	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
	})
	if err != nil {
		layout.Release()
		return nil, fmt.Errorf("compute: %s shader: %w", name, err)
	}

	pipeline, err := d.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  name,
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: entryPoint,
		},
	})
	if err != nil {
		module.Release()
		layout.Release()
		return nil, fmt.Errorf("compute: %s pipeline: %w", name, err)
	}

	k := &Kernel{module: module, layout: layout, pipeline: pipeline}
	d.kernels[name] = k
	return k, nil
}

// NewBuffer allocates an uninitialised buffer.
func (d *Device) NewBuffer(label string, size uint64, usage wgpu.BufferUsage) (*Buffer, error) {
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("compute: buffer %s: %w", label, err)
	}
	return &Buffer{buffer: buf, size: size}, nil
}

// Write uploads data at offset.
func (d *Device) Write(buf *Buffer, offset uint64, data []byte) {
	d.queue.WriteBuffer(buf.buffer, offset, data)
}

// Run binds buffers in binding order and dispatches groups workgroups along X.
func (d *Device) Run(k *Kernel, buffers []*Buffer, groups uint32) error {
	entries := make([]wgpu.BindGroupEntry, len(buffers))
	for i, buf := range buffers {
		entries[i] = wgpu.BindGroupEntry{Binding: uint32(i), Buffer: buf.buffer, Size: buf.size}
	}

	bindGroup, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  k.layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("compute: bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("compute: command encoder: %w", err)
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(groups, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("compute: finish: %w", err)
	}
	defer commands.Release()

	d.queue.Submit(commands)
	return nil
}

// Read copies size bytes from the start of buf back to the CPU, blocking until the GPU is
// done. buf must have been created with BufferUsageCopySrc.
func (d *Device) Read(buf *Buffer, size uint64) ([]byte, error) {
	if size == 0 || size > buf.size {
		size = buf.size
	}
	// Copies must be 4-byte aligned
	size = (size + 3) &^ 3

	staging, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "staging_read",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compute: staging buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("compute: command encoder: %w", err)
	}
	encoder.CopyBufferToBuffer(buf.buffer, 0, staging, 0, size)
	commands, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("compute: finish: %w", err)
	}
	d.queue.Submit(commands)
	commands.Release()

	done := make(chan error, 1)
	err = staging.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		if status != wgpu.BufferMapAsyncStatusSuccess {
			done <- fmt.Errorf("compute: map buffer: %v", status)
			return
		}
		done <- nil
	})
	if err != nil {
		return nil, err
	}

	d.device.Poll(true, nil)
	if err := <-done; err != nil {
		return nil, err
	}

	mapped := staging.GetMappedRange(0, uint(size))
	result := make([]byte, len(mapped))
	copy(result, mapped)
	staging.Unmap()
	return result, nil
}

// Close frees the kernels and the device.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, k := range d.kernels {
		k.pipeline.Release()
		k.layout.Release()
		k.module.Release()
	}
	d.kernels = nil

	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
}

// Release frees the buffer's GPU memory.
func (b *Buffer) Release() {
	b.buffer.Release()
}

// Size returns the buffer size in bytes.
func (b *Buffer) Size() uint64 {
	return b.size
}

// ToBytes reinterprets a slice of plain values for upload.
func ToBytes[T any](data []T) []byte {
	return wgpu.ToBytes(data)
}

// FromBytes reinterprets downloaded bytes as a slice of T.
func FromBytes[T any](data []byte) []T {
	return wgpu.FromBytes[T](data)
}
