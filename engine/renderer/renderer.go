// Package renderer ties the forward pass to a GPU context: it owns the uniform layouts, the camera
// uniform and the forward pass for the current surface, turns scenes into snapshots, and records
// one forward pass per frame.
package renderer

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-forward/common"
	"github.com/Carmen-Shannon/oxy-forward/engine/gpu"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/forward"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/mesh"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/snapshot"
	"github.com/Carmen-Shannon/oxy-forward/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-forward/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// Snapshot is the GPU-resource-backed copy of a scene returned by CreateScene.
type Snapshot = snapshot.Snapshot

// encodeQueueSize bounds the number of pending mesh encode tasks.
const encodeQueueSize = 256

// Renderer draws snapshots with a single forward pass. It is not safe for concurrent use;
// all methods must be called from the goroutine that owns the GPU context.
type Renderer struct {
	ctx    gpu.Context
	logger *slog.Logger
	config gpu.SurfaceConfig

	camera          uniform.Camera
	cameraLayout    *wgpu.BindGroupLayout
	transformLayout *wgpu.BindGroupLayout
	materialLayout  *wgpu.BindGroupLayout
	cameraBindGroup *bind_group_provider.BindGroupProvider

	forwardPass *forward.ForwardPass
	pipelines   *pipeline.Cache

	pool    worker.DynamicWorkerPool
	workers int

	defaultAlbedo     common.Color
	resizeProjection  bool
	pipelineCacheSize int

	released bool
}

// New creates a renderer for config: the camera, transform and material layouts, the camera
// uniform with a perspective projection for the surface aspect, and the forward pass.
//
// Parameters:
//   - ctx: the GPU context every resource is allocated from
//   - config: the output surface configuration
//   - options: functional options
//
// Returns:
//   - *Renderer: the renderer
//   - error: ErrInvalidSurface, or an allocation error; nothing is leaked on failure
func New(ctx gpu.Context, config gpu.SurfaceConfig, options ...RendererBuilderOption) (_ *Renderer, err error) {
	if !config.Valid() {
		return nil, fmt.Errorf("%dx%d: %w", config.Width, config.Height, ErrInvalidSurface)
	}

	r := &Renderer{
		ctx:               ctx,
		logger:            slog.Default(),
		config:            config,
		workers:           runtime.NumCPU(),
		defaultAlbedo:     uniform.DefaultAlbedo,
		pipelineCacheSize: pipeline.DefaultCacheSize,
	}
	for _, opt := range options {
		opt(r)
	}
	defer func() {
		if err != nil {
			r.Release()
		}
	}()

	r.camera = uniform.NewCamera(config.Aspect())
	if r.cameraLayout, err = r.camera.Layout(ctx); err != nil {
		return nil, err
	}
	if r.transformLayout, err = (&uniform.Transform{}).Layout(ctx); err != nil {
		return nil, err
	}
	if r.materialLayout, err = (&uniform.Material{}).Layout(ctx); err != nil {
		return nil, err
	}
	if r.cameraBindGroup, err = r.camera.CreateBindGroup(ctx, r.cameraLayout); err != nil {
		return nil, err
	}
	if r.pipelines, err = pipeline.NewCache(r.pipelineCacheSize); err != nil {
		return nil, err
	}
	if r.forwardPass, err = r.newForwardPass(config); err != nil {
		return nil, err
	}

	if r.workers > 1 {
		r.pool = worker.NewDynamicWorkerPool(r.workers, encodeQueueSize, time.Second)
	}

	r.logger.Info("renderer created",
		slog.Int("width", int(config.Width)),
		slog.Int("height", int(config.Height)),
		slog.Any("format", config.Format),
		slog.Int("workers", r.workers),
	)
	return r, nil
}

func (r *Renderer) newForwardPass(config gpu.SurfaceConfig) (*forward.ForwardPass, error) {
	return forward.New(r.ctx, config, r.cameraLayout, r.transformLayout, r.materialLayout,
		forward.WithPipelineCache(r.pipelines))
}

// Config returns the surface configuration the renderer currently targets.
func (r *Renderer) Config() gpu.SurfaceConfig {
	return r.config
}

// Camera returns a copy of the camera uniform's CPU-side state.
func (r *Renderer) Camera() uniform.Camera {
	return r.camera
}

// CameraBindGroup returns the provider of the camera uniform bound at group 0.
func (r *Renderer) CameraBindGroup() *bind_group_provider.BindGroupProvider {
	return r.cameraBindGroup
}

// ForwardPass returns the forward pass for the current configuration.
func (r *Renderer) ForwardPass() *forward.ForwardPass {
	return r.forwardPass
}

// Resize rebuilds the forward pass for config. Unless the renderer was built with
// WithResizeProjection(true) the projection matrix is left as it was at New.
//
// Parameters:
//   - config: the new surface configuration
//
// Returns:
//   - error: ErrInvalidSurface, or an allocation error; the previous pass stays usable on failure
func (r *Renderer) Resize(config gpu.SurfaceConfig) error {
	if r.released {
		return ErrReleased
	}
	if !config.Valid() {
		return fmt.Errorf("%dx%d: %w", config.Width, config.Height, ErrInvalidSurface)
	}

	fp, err := r.newForwardPass(config)
	if err != nil {
		return fmt.Errorf("failed to rebuild forward pass: %w", err)
	}
	r.forwardPass.Release()
	r.forwardPass = fp
	r.config = config

	if r.resizeProjection {
		camera := r.camera
		camera.SetAspect(config.Aspect())
		if err := camera.ProjWrite(r.cameraBindGroup).Apply(r.ctx.Queue()); err != nil {
			return fmt.Errorf("failed to write projection: %w", err)
		}
		r.camera.Proj = camera.Proj
	}

	r.logger.Debug("renderer resized",
		slog.Int("width", int(config.Width)),
		slog.Int("height", int(config.Height)),
		slog.Any("format", config.Format),
	)
	return nil
}

// CreateScene uploads s into a new snapshot: a vertex and index buffer per mesh, a material
// uniform per mesh, and a transform uniform per object. Objects with fewer materials than meshes
// are padded with the default albedo, as are nil materials. Mesh encoding runs on the worker pool;
// every GPU allocation happens on the calling goroutine.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - *Snapshot: the snapshot, owned by the caller
//   - error: ErrMaterialCountMismatch naming the object, a mesh error, or an allocation error;
//     nothing is leaked on failure
func (r *Renderer) CreateScene(s *scene.Scene) (_ *Snapshot, err error) {
	if r.released {
		return nil, ErrReleased
	}
	if s == nil {
		return nil, ErrNilScene
	}
	for i, obj := range s.Objects {
		if len(obj.Materials) > len(obj.Meshes) {
			return nil, fmt.Errorf("object %d has %d materials for %d meshes: %w",
				i, len(obj.Materials), len(obj.Meshes), ErrMaterialCountMismatch)
		}
	}

	encoded, err := r.encodeMeshes(s)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{View: s.View, Objects: make([]snapshot.Object, 0, len(s.Objects))}
	defer func() {
		if err != nil {
			snap.Release()
		}
	}()

	for i, obj := range s.Objects {
		snap.Objects = append(snap.Objects, snapshot.Object{})
		so := &snap.Objects[len(snap.Objects)-1]

		for j := range obj.Meshes {
			b, err := encoded[i][j].CreateBuffers(r.ctx, fmt.Sprintf("Object %d Mesh %d", i, j))
			if err != nil {
				return nil, fmt.Errorf("object %d mesh %d: %w", i, j, err)
			}
			so.Meshes = append(so.Meshes, b)

			mat := uniform.Material{Albedo: r.albedo(obj.Materials, j)}
			mp, err := mat.CreateBindGroup(r.ctx, r.materialLayout)
			if err != nil {
				return nil, fmt.Errorf("object %d material %d: %w", i, j, err)
			}
			so.Materials = append(so.Materials, mp)
		}

		tr := uniform.Transform{Model: obj.Transform}
		if so.Transform, err = tr.CreateBindGroup(r.ctx, r.transformLayout); err != nil {
			return nil, fmt.Errorf("object %d transform: %w", i, err)
		}
	}

	r.logger.Debug("scene uploaded",
		slog.Int("objects", len(snap.Objects)),
		slog.Int("meshes", snap.MeshCount()),
	)
	return snap, nil
}

func (r *Renderer) albedo(materials []*scene.Material, i int) common.Color {
	if i < len(materials) && materials[i] != nil {
		return materials[i].Albedo
	}
	return r.defaultAlbedo
}

// encodeMeshes encodes every mesh of s, indexed [object][mesh].
func (r *Renderer) encodeMeshes(s *scene.Scene) ([][]mesh.Encoded, error) {
	encoded := make([][]mesh.Encoded, len(s.Objects))
	errs := make([][]error, len(s.Objects))
	for i, obj := range s.Objects {
		encoded[i] = make([]mesh.Encoded, len(obj.Meshes))
		errs[i] = make([]error, len(obj.Meshes))
	}

	if r.pool == nil || s.MeshCount() < 2 {
		for i, obj := range s.Objects {
			for j, m := range obj.Meshes {
				encoded[i][j], errs[i][j] = m.Encode()
			}
		}
	} else {
		var wg sync.WaitGroup
		id := 0
		for i, obj := range s.Objects {
			for j, m := range obj.Meshes {
				wg.Add(1)
				r.pool.SubmitTask(worker.Task{
					ID: id,
					Do: func() (any, error) {
						defer wg.Done()
						encoded[i][j], errs[i][j] = m.Encode()
						return nil, nil
					},
				})
				id++
			}
		}
		wg.Wait()
	}

	for i := range errs {
		for j, err := range errs[i] {
			if err != nil {
				return nil, fmt.Errorf("object %d mesh %d: %w", i, j, err)
			}
		}
	}
	return encoded, nil
}

// Render writes the snapshot's view matrix into the camera uniform and records one forward pass
// drawing snap into target. The caller finishes and submits the encoder.
//
// Parameters:
//   - encoder: the frame's command encoder
//   - target: the color target; must match Config()
//   - snap: the snapshot to draw
//
// Returns:
//   - error: ErrStaleForwardPass after an unhandled resize, a snapshot validation error, or a
//     queue write error; nothing is written or recorded when validation fails
func (r *Renderer) Render(encoder gpu.Encoder, target gpu.Target, snap *Snapshot) error {
	if r.released {
		return ErrReleased
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	if target.Config() != r.forwardPass.Config() {
		return fmt.Errorf("target %dx%d, renderer %dx%d: %w",
			target.Width, target.Height, r.config.Width, r.config.Height, ErrStaleForwardPass)
	}

	if err := r.camera.ViewWrite(r.cameraBindGroup, snap.View).Apply(r.ctx.Queue()); err != nil {
		return fmt.Errorf("failed to write view: %w", err)
	}
	r.camera.View = snap.View
	return r.forwardPass.Execute(encoder, target, r.cameraBindGroup.BindGroup(), snap)
}

// Release releases every resource the renderer owns. Snapshots are owned by the caller and are
// not released. Calling it again is a no-op.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true

	if r.forwardPass != nil {
		r.forwardPass.Release()
	}
	if r.pipelines != nil {
		r.pipelines.Purge()
	}
	if r.cameraBindGroup != nil {
		r.cameraBindGroup.Release()
	}
	r.ctx.Release(r.cameraLayout, r.transformLayout, r.materialLayout)
	if r.pool != nil {
		r.pool.Stop()
	}
	r.logger.Debug("renderer released")
}
