// Package gpu dispatches RadianceCascades3D's propagation compute shader
// (spec.md §4.4), grounded on voxelrt/rt/gpu/manager.go's buffer/texture
// management and manager_hiz.go's compute-dispatch-then-readback shape.
package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/voxelcore/radiance/shaders"
)

// Device is the GPU device the pipeline dispatches against.
type Device = *wgpu.Device

// LevelView is the subset of a CascadeLevel the GPU pipeline needs,
// decoupled from the radiance package to avoid an import cycle (this
// package is imported BY radiance).
type LevelView struct {
	Resolution int
	Spacing    float32
	Origin     mgl32.Vec3
	Current    []mgl32.Vec4 // read back into this slice after dispatch
	History    []mgl32.Vec4 // uploaded read-only
}

// OcclusionView mirrors radiance.OcclusionProvider.
type OcclusionView interface {
	Dimensions() (int, int, int)
	TileSizeXY() float32
	TileSizeZ() float32
	IsBlocked(x, y, z int) bool
}

// LightView mirrors radiance.Light's GPU-relevant fields.
type LightView struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Radius    float32
}

// DispatchConfig carries the per-call ray-marching parameters.
type DispatchConfig struct {
	RaysPerProbe  int
	TemporalBlend float32
}

// Pipeline owns the compiled compute shader and the per-level GPU
// resources it dispatches against. One Pipeline serves every cascade
// level; level-sized resources are allocated lazily and resized if a
// level's resolution changes underneath it (spec.md §4.4, "setConfig").
type Pipeline struct {
	device  Device
	module  *wgpu.ShaderModule
	compute *wgpu.ComputePipeline

	byLevel map[int]*levelResources
}

type levelResources struct {
	resolution int

	currentTex  *wgpu.Texture
	currentView *wgpu.TextureView
	historyTex  *wgpu.Texture
	historyView *wgpu.TextureView

	occDims     [3]int
	occTex      *wgpu.Texture
	occView     *wgpu.TextureView

	levelParamsBuf *wgpu.Buffer
	rayParamsBuf   *wgpu.Buffer
	lightsBuf      *wgpu.Buffer

	readback *wgpu.Buffer
}

// NewPipeline compiles the cascade compute shader against device. Returns
// an error (never panics) so callers can fall back to the CPU path
// (spec.md §4.4, "Failure").
func NewPipeline(device Device) (*Pipeline, error) {
	if device == nil {
		return nil, fmt.Errorf("radiance/gpu: nil device")
	}
	mod, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "RadianceCascade CS",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.CascadeWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("radiance/gpu: shader module: %w", err)
	}
	pipe, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   "RadianceCascade Pipeline",
		Compute: wgpu.ProgrammableStageDescriptor{Module: mod, EntryPoint: "main"},
	})
	if err != nil {
		mod.Release()
		return nil, fmt.Errorf("radiance/gpu: compute pipeline: %w", err)
	}
	return &Pipeline{
		device:  device,
		module:  mod,
		compute: pipe,
		byLevel: make(map[int]*levelResources),
	}, nil
}

// Release frees every GPU resource the pipeline owns.
func (p *Pipeline) Release() {
	for _, lr := range p.byLevel {
		lr.release()
	}
	p.byLevel = nil
	if p.compute != nil {
		p.compute.Release()
	}
	if p.module != nil {
		p.module.Release()
	}
}

func (lr *levelResources) release() {
	if lr.currentTex != nil {
		lr.currentTex.Release()
	}
	if lr.historyTex != nil {
		lr.historyTex.Release()
	}
	if lr.occTex != nil {
		lr.occTex.Release()
	}
	if lr.levelParamsBuf != nil {
		lr.levelParamsBuf.Release()
	}
	if lr.rayParamsBuf != nil {
		lr.rayParamsBuf.Release()
	}
	if lr.lightsBuf != nil {
		lr.lightsBuf.Release()
	}
	if lr.readback != nil {
		lr.readback.Release()
	}
}

// Dispatch runs one level's relight pass: uploads history/occlusion/light
// data, dispatches the compute shader in 4^3 workgroups, and reads the
// resulting current-radiance texture back into view.Current.
func (p *Pipeline) Dispatch(levelIndex int, view LevelView, finer *LevelView, lights []LightView, occ OcclusionView, cfg DispatchConfig, frame uint64) error {
	lr, err := p.ensureLevel(levelIndex, view, occ)
	if err != nil {
		return err
	}

	p.uploadHistory(lr, view)
	p.uploadOcclusion(lr, occ)
	p.uploadLevelParams(lr, view, occ, finer != nil)
	p.uploadRayParams(lr, cfg, view.Spacing, frame)
	p.uploadLights(lr, lights)

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("radiance/gpu: command encoder: %w", err)
	}

	bg0, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.compute.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: lr.levelParamsBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: lr.rayParamsBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: lr.lightsBuf, Size: wgpu.WholeSize},
			{Binding: 3, TextureView: lr.occView},
		},
	})
	if err != nil {
		return fmt.Errorf("radiance/gpu: bind group 0: %w", err)
	}

	finerView := lr.historyView // dummy self-reference when no finer level exists
	bg1, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.compute.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: lr.currentView},
			{Binding: 1, TextureView: lr.historyView},
			{Binding: 2, TextureView: finerView},
		},
	})
	if err != nil {
		return fmt.Errorf("radiance/gpu: bind group 1: %w", err)
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p.compute)
	pass.SetBindGroup(0, bg0, nil)
	pass.SetBindGroup(1, bg1, nil)
	groups := uint32((view.Resolution + 3) / 4)
	pass.DispatchWorkgroups(groups, groups, groups)
	pass.End()

	res := view.Resolution
	bytesPerRow := alignUp(uint32(res)*8, 256) // rgba16float = 8 bytes/texel
	if lr.readback == nil || lr.readback.GetSize() < uint64(bytesPerRow)*uint64(res)*uint64(res) {
		if lr.readback != nil {
			lr.readback.Release()
		}
		var err error
		lr.readback, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "RadianceCascade Readback",
			Size:  uint64(bytesPerRow) * uint64(res) * uint64(res),
			Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
		})
		if err != nil {
			return fmt.Errorf("radiance/gpu: readback buffer: %w", err)
		}
	}

	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{Texture: lr.currentTex},
		&wgpu.ImageCopyBuffer{
			Buffer: lr.readback,
			Layout: wgpu.TextureDataLayout{BytesPerRow: bytesPerRow, RowsPerImage: uint32(res)},
		},
		&wgpu.Extent3D{Width: uint32(res), Height: uint32(res), DepthOrArrayLayers: uint32(res)},
	)

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("radiance/gpu: encoder finish: %w", err)
	}
	p.device.GetQueue().Submit(cmd)

	return p.readback(lr, view, bytesPerRow)
}

func (p *Pipeline) readback(lr *levelResources, view LevelView, bytesPerRow uint32) error {
	mapped := false
	var mapErr error
	lr.readback.MapAsync(wgpu.MapModeRead, 0, lr.readback.GetSize(), func(status wgpu.BufferMapAsyncStatus) {
		if status == wgpu.BufferMapAsyncStatusSuccess {
			mapped = true
		} else {
			mapErr = fmt.Errorf("radiance/gpu: readback map status %d", status)
		}
	})
	p.device.Poll(true, nil)
	if mapErr != nil {
		return mapErr
	}
	if !mapped {
		return fmt.Errorf("radiance/gpu: readback never mapped")
	}
	defer lr.readback.Unmap()

	data := lr.readback.GetMappedRange(0, uint(lr.readback.GetSize()))
	res := view.Resolution
	for z := 0; z < res; z++ {
		plane := data[uint32(z)*bytesPerRow*uint32(res):]
		for y := 0; y < res; y++ {
			row := plane[uint32(y)*bytesPerRow:]
			for x := 0; x < res; x++ {
				off := x * 8
				r := float16To32(binary.LittleEndian.Uint16(row[off:]))
				g := float16To32(binary.LittleEndian.Uint16(row[off+2:]))
				b := float16To32(binary.LittleEndian.Uint16(row[off+4:]))
				a := float16To32(binary.LittleEndian.Uint16(row[off+6:]))
				view.Current[x+y*res+z*res*res] = mgl32.Vec4{r, g, b, a}
			}
		}
	}
	return nil
}

func (p *Pipeline) ensureLevel(levelIndex int, view LevelView, occ OcclusionView) (*levelResources, error) {
	lr, ok := p.byLevel[levelIndex]
	w, h, d := 1, 1, 1
	if occ != nil {
		w, h, d = occ.Dimensions()
	}
	if ok && lr.resolution == view.Resolution && lr.occDims == [3]int{w, h, d} {
		return lr, nil
	}
	if ok {
		lr.release()
	}
	lr = &levelResources{resolution: view.Resolution, occDims: [3]int{w, h, d}}

	var err error
	size3D := wgpu.Extent3D{Width: uint32(view.Resolution), Height: uint32(view.Resolution), DepthOrArrayLayers: uint32(view.Resolution)}

	lr.currentTex, err = p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Cascade Current",
		Size:          size3D,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatRGBA16Float,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("radiance/gpu: current texture: %w", err)
	}
	lr.currentView, err = lr.currentTex.CreateView(nil)
	if err != nil {
		return nil, err
	}

	lr.historyTex, err = p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Cascade History",
		Size:          size3D,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatRGBA16Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("radiance/gpu: history texture: %w", err)
	}
	lr.historyView, err = lr.historyTex.CreateView(nil)
	if err != nil {
		return nil, err
	}

	lr.occTex, err = p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Cascade Occlusion",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: uint32(d)},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatR8Uint,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("radiance/gpu: occlusion texture: %w", err)
	}
	lr.occView, err = lr.occTex.CreateView(nil)
	if err != nil {
		return nil, err
	}

	lr.levelParamsBuf, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LevelParams", Size: 48, Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	lr.rayParamsBuf, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "RayParams", Size: 16, Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	lr.lightsBuf, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Lights", Size: 1024, Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	p.byLevel[levelIndex] = lr
	return lr, nil
}

func (p *Pipeline) uploadHistory(lr *levelResources, view LevelView) {
	res := view.Resolution
	bytesPerRow := alignUp(uint32(res)*8, 256)
	buf := make([]byte, int(bytesPerRow)*res*res)
	for z := 0; z < res; z++ {
		for y := 0; y < res; y++ {
			row := buf[(uint32(z)*uint32(res)+uint32(y))*bytesPerRow:]
			for x := 0; x < res; x++ {
				c := view.History[x+y*res+z*res*res]
				off := x * 8
				binary.LittleEndian.PutUint16(row[off:], float32To16(c.X()))
				binary.LittleEndian.PutUint16(row[off+2:], float32To16(c.Y()))
				binary.LittleEndian.PutUint16(row[off+4:], float32To16(c.Z()))
				binary.LittleEndian.PutUint16(row[off+6:], float32To16(c.W()))
			}
		}
	}
	p.device.GetQueue().WriteTexture(
		&wgpu.ImageCopyTexture{Texture: lr.historyTex},
		buf,
		&wgpu.TextureDataLayout{BytesPerRow: bytesPerRow, RowsPerImage: uint32(res)},
		&wgpu.Extent3D{Width: uint32(res), Height: uint32(res), DepthOrArrayLayers: uint32(res)},
	)
}

func (p *Pipeline) uploadOcclusion(lr *levelResources, occ OcclusionView) {
	if occ == nil {
		return
	}
	w, h, d := occ.Dimensions()
	bytesPerRow := alignUp(uint32(w), 256)
	buf := make([]byte, int(bytesPerRow)*h*d)
	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			row := buf[(uint32(z)*uint32(h)+uint32(y))*bytesPerRow:]
			for x := 0; x < w; x++ {
				if occ.IsBlocked(x, y, z) {
					row[x] = 1
				}
			}
		}
	}
	p.device.GetQueue().WriteTexture(
		&wgpu.ImageCopyTexture{Texture: lr.occTex},
		buf,
		&wgpu.TextureDataLayout{BytesPerRow: bytesPerRow, RowsPerImage: uint32(h)},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: uint32(d)},
	)
}

func (p *Pipeline) uploadLevelParams(lr *levelResources, view LevelView, occ OcclusionView, hasFiner bool) {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(view.Origin.X()))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(view.Origin.Y()))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(view.Origin.Z()))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(view.Spacing))
	binary.LittleEndian.PutUint32(buf[16:], uint32(view.Resolution))
	if hasFiner {
		binary.LittleEndian.PutUint32(buf[20:], 1)
	}
	w, h, d := 1, 1, 1
	xy, z := float32(1), float32(1)
	if occ != nil {
		w, h, d = occ.Dimensions()
		xy, z = occ.TileSizeXY(), occ.TileSizeZ()
	}
	binary.LittleEndian.PutUint32(buf[24:], uint32(w))
	binary.LittleEndian.PutUint32(buf[28:], uint32(h))
	binary.LittleEndian.PutUint32(buf[32:], uint32(d))
	binary.LittleEndian.PutUint32(buf[36:], math.Float32bits(xy))
	binary.LittleEndian.PutUint32(buf[40:], math.Float32bits(z))
	p.device.GetQueue().WriteBuffer(lr.levelParamsBuf, 0, buf)
}

func (p *Pipeline) uploadRayParams(lr *levelResources, cfg DispatchConfig, spacing float32, frame uint64) {
	buf := make([]byte, 16)
	rays := cfg.RaysPerProbe
	if rays < 1 {
		rays = 1
	}
	binary.LittleEndian.PutUint32(buf[0:], uint32(rays))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(spacing*4)) // maxDistance = spacing*4, same as the CPU path
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(cfg.TemporalBlend))
	binary.LittleEndian.PutUint32(buf[12:], uint32(frame))
	p.device.GetQueue().WriteBuffer(lr.rayParamsBuf, 0, buf)
}

func (p *Pipeline) uploadLights(lr *levelResources, lights []LightView) {
	buf := make([]byte, 0, len(lights)*32)
	for _, l := range lights {
		entry := make([]byte, 32)
		binary.LittleEndian.PutUint32(entry[0:], math.Float32bits(l.Position.X()))
		binary.LittleEndian.PutUint32(entry[4:], math.Float32bits(l.Position.Y()))
		binary.LittleEndian.PutUint32(entry[8:], math.Float32bits(l.Position.Z()))
		binary.LittleEndian.PutUint32(entry[12:], math.Float32bits(l.Intensity))
		binary.LittleEndian.PutUint32(entry[16:], math.Float32bits(l.Color.X()))
		binary.LittleEndian.PutUint32(entry[20:], math.Float32bits(l.Color.Y()))
		binary.LittleEndian.PutUint32(entry[24:], math.Float32bits(l.Color.Z()))
		binary.LittleEndian.PutUint32(entry[28:], math.Float32bits(l.Radius))
		buf = append(buf, entry...)
	}
	if len(buf) == 0 {
		buf = make([]byte, 32)
	}
	p.device.GetQueue().WriteBuffer(lr.lightsBuf, 0, buf)
}

func alignUp(v, align uint32) uint32 {
	if v%align == 0 {
		return v
	}
	return v + (align - v%align)
}
