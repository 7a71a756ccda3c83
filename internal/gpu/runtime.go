// Package gpu hosts the compute-kernel runtime: a wgpu/hal device with
// the reduction pipeline used to find an image's content bounds.
package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

//go:embed shaders/bounds.wgsl
var boundsShaderSource string

// ErrNoDevice is returned when no usable GPU backend or adapter is
// present on this machine.
var ErrNoDevice = errors.New("gpu: no usable device")

// Runtime owns a GPU device, queue, and the compiled bounds-reduction
// pipeline. A zero Runtime is valid; Open initializes it. All methods
// are safe for concurrent use.
type Runtime struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	boundsShader     hal.ShaderModule
	boundsBindLayout hal.BindGroupLayout
	boundsPipeLayout hal.PipelineLayout
	boundsPipeline   hal.ComputePipeline

	ready bool
}

// Open initializes the GPU device and builds the reduction pipeline.
// Calling Open on an already-open runtime is a no-op. On failure every
// partially created resource is released before returning, so Open may
// be retried.
func (r *Runtime) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}

	if err := r.initDevice(); err != nil {
		r.destroyPartialInit()
		return fmt.Errorf("gpu: device stage: %w", err)
	}
	if err := r.createPipeline(); err != nil {
		r.destroyPartialInit()
		return fmt.Errorf("gpu: kernel stage: %w", err)
	}

	r.ready = true
	return nil
}

// Ready reports whether a device is open and the pipeline is built.
func (r *Runtime) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ready
}

// Close releases the pipeline and device. The runtime may be reopened.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyPartialInit()
	r.ready = false
}

func (r *Runtime) initDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available: %w", ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	r.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found: %w", ErrNoDevice)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	r.device = openDev.Device
	r.queue = openDev.Queue

	slogger().Info("gpu: device opened", "adapter", selected.Info.Name)
	return nil
}

// createPipeline compiles the reduction kernel and wires its layouts.
// The kernel is first compiled ahead of time to SPIR-V through naga;
// if that fails the WGSL source is handed to the driver directly.
func (r *Runtime) createPipeline() error {
	shader, err := r.compileShader("bounds", boundsShaderSource)
	if err != nil {
		return fmt.Errorf("compile bounds shader: %w", err)
	}
	r.boundsShader = shader

	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "bounds_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	r.boundsBindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "bounds_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{r.boundsBindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.boundsPipeLayout = pipeLayout

	pipeline, err := r.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "bounds_pipeline", Layout: r.boundsPipeLayout,
		Compute: hal.ComputeState{Module: r.boundsShader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	r.boundsPipeline = pipeline

	return nil
}

// compileShader prefers a precompiled SPIR-V module and falls back to
// raw WGSL when ahead-of-time compilation is unavailable.
func (r *Runtime) compileShader(label, wgsl string) (hal.ShaderModule, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err == nil {
		// SPIR-V is little-endian 32-bit words.
		code := make([]uint32, len(spirvBytes)/4)
		for i := range code {
			code[i] = uint32(spirvBytes[i*4]) |
				uint32(spirvBytes[i*4+1])<<8 |
				uint32(spirvBytes[i*4+2])<<16 |
				uint32(spirvBytes[i*4+3])<<24
		}
		mod, merr := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  label,
			Source: hal.ShaderSource{SPIRV: code},
		})
		if merr == nil {
			return mod, nil
		}
		slogger().Warn("gpu: SPIR-V module rejected, retrying with source", "shader", label, "error", merr)
	} else {
		slogger().Warn("gpu: ahead-of-time shader compile failed, using source", "shader", label, "error", err)
	}

	mod, merr := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: wgsl},
	})
	if merr != nil {
		return nil, fmt.Errorf("shader %s: %w", label, merr)
	}
	return mod, nil
}

func (r *Runtime) destroyPartialInit() {
	if r.device != nil {
		if r.boundsPipeline != nil {
			r.device.DestroyComputePipeline(r.boundsPipeline)
			r.boundsPipeline = nil
		}
		if r.boundsPipeLayout != nil {
			r.device.DestroyPipelineLayout(r.boundsPipeLayout)
			r.boundsPipeLayout = nil
		}
		if r.boundsBindLayout != nil {
			r.device.DestroyBindGroupLayout(r.boundsBindLayout)
			r.boundsBindLayout = nil
		}
		if r.boundsShader != nil {
			r.device.DestroyShaderModule(r.boundsShader)
			r.boundsShader = nil
		}
		r.device.Destroy()
		r.device = nil
	}
	r.queue = nil
	if r.instance != nil {
		r.instance.Destroy()
		r.instance = nil
	}
}
