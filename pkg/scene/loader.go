// Package scene implements the boundary between an on-disk scene
// description and the in-memory types the integrator traces: a small JSON
// format covering a triangle mesh, its materials, a camera, and a sky, plus
// a file watcher that flags a reload when the source changes on disk.
package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/h2non/filetype"

	"github.com/brindlefx/lumentrace/pkg/bvh"
	"github.com/brindlefx/lumentrace/pkg/core"
	"github.com/brindlefx/lumentrace/pkg/integrator"
	"github.com/brindlefx/lumentrace/pkg/lights"
	"github.com/brindlefx/lumentrace/pkg/material"
	"github.com/brindlefx/lumentrace/pkg/skybox"
)

// LoadError wraps a failure to parse or build a scene file with the path
// that caused it, so callers can log a useful message without string
// matching the error text.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("scene: load %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// document is the on-disk JSON shape. It deliberately mirrors the in-memory
// types field-for-field rather than introducing an intermediate DTO layer,
// since the scene format has no versioning concerns yet.
type document struct {
	Camera struct {
		Position [3]float64 `json:"position"`
		Rotation [3]float64 `json:"rotation"`
	} `json:"camera"`

	Sky struct {
		Color [3]float64 `json:"color"`
	} `json:"sky"`

	Materials []struct {
		BaseColor [3]float64 `json:"base_color"`
		Roughness float64    `json:"roughness"`
		Metallic  float64    `json:"metallic"`
		Emissive  [3]float64 `json:"emissive"`
		IsGlass   bool        `json:"is_glass"`
		IOR       float64     `json:"ior"`
	} `json:"materials"`

	Mesh struct {
		Vertices []([3]float64) `json:"vertices"`
		Normals  []([3]float64) `json:"normals"`
		UVs      []([2]float64) `json:"uvs"`
		// Triangles holds, per triangle, the three vertex indices followed
		// by the material index: [i0, i1, i2, materialIndex].
		Triangles [][4]uint32 `json:"triangles"`
	} `json:"mesh"`
}

// Loaded bundles everything a caller needs to hand a Scene to the render
// driver: the traceable scene itself plus the camera it was authored with.
type Loaded struct {
	Scene  integrator.Scene
	Camera integrator.Camera
}

// SceneLoader is the scene-loading boundary: it turns a file path into a
// Loaded scene, so callers need not know about JSON or the filesystem.
// JSONLoader is the only implementation here.
type SceneLoader interface {
	Load(path string) (Loaded, error)
}

// JSONLoader implements SceneLoader for the JSON scene document above.
type JSONLoader struct {
	// SpecularWeightClampMin/Max apply to every material the loader reads,
	// matching the spec's single global firefly clamp rather than a
	// per-material override the document format doesn't expose.
	SpecularWeightClampMin float64
	SpecularWeightClampMax float64
}

// Load reads, sniffs, and parses the scene file at path into a Loaded scene.
func (l JSONLoader) Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, &LoadError{Path: path, Err: err}
	}

	if err := verifyJSONPayload(data); err != nil {
		return Loaded{}, &LoadError{Path: path, Err: err}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Loaded{}, &LoadError{Path: path, Err: err}
	}

	mesh, surfaces, err := l.buildMesh(doc)
	if err != nil {
		return Loaded{}, &LoadError{Path: path, Err: err}
	}

	tree := bvh.Build(mesh)
	surfaceAt := func(i uint32) material.Surface { return surfaces[mesh.MaterialIndex[i]] }
	table := lights.Build(mesh, surfaceAt)

	sc := integrator.Scene{
		Tree:       tree,
		SurfaceAt:  surfaceAt,
		LightTable: table,
		Sky:        skybox.ConstantSky{Color: vec3From(doc.Sky.Color)},
	}

	cam := integrator.Camera{
		Position: vec3From(doc.Camera.Position),
		Rotation: vec3From(doc.Camera.Rotation),
	}

	return Loaded{Scene: sc, Camera: cam}, nil
}

// verifyJSONPayload uses filetype's content sniffing to reject anything
// that isn't actually text/JSON before json.Unmarshal gets a chance to
// produce a confusing syntax error on, say, an accidentally-dropped binary
// glTF file.
func verifyJSONPayload(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty scene file")
	}
	kind, err := filetype.Match(data)
	if err != nil {
		return fmt.Errorf("sniff payload type: %w", err)
	}
	if kind != filetype.Unknown {
		return fmt.Errorf("scene file looks like %s, not JSON", kind.Extension)
	}
	return nil
}

func (l JSONLoader) buildMesh(doc document) (*bvh.Mesh, []material.Surface, error) {
	mesh := &bvh.Mesh{}
	for _, v := range doc.Mesh.Vertices {
		mesh.Vertices = append(mesh.Vertices, vec3From(v))
	}
	for _, n := range doc.Mesh.Normals {
		mesh.Normals = append(mesh.Normals, vec3From(n))
	}
	for _, uv := range doc.Mesh.UVs {
		mesh.UVs = append(mesh.UVs, core.NewVec2(uv[0], uv[1]))
	}

	for _, tri := range doc.Mesh.Triangles {
		if int(tri[3]) >= len(doc.Materials) {
			return nil, nil, fmt.Errorf("triangle references material %d, but only %d are defined", tri[3], len(doc.Materials))
		}
		mesh.Indices = append(mesh.Indices, [3]uint32{tri[0], tri[1], tri[2]})
		mesh.MaterialIndex = append(mesh.MaterialIndex, tri[3])
	}

	surfaces := make([]material.Surface, len(doc.Materials))
	for i, m := range doc.Materials {
		surfaces[i] = material.Surface{
			BaseColor:              vec3From(m.BaseColor),
			Roughness:              m.Roughness,
			Metallic:               m.Metallic,
			Emissive:               vec3From(m.Emissive),
			IsGlass:                m.IsGlass,
			IOR:                    m.IOR,
			SpecularWeightClampMin: l.SpecularWeightClampMin,
			SpecularWeightClampMax: l.SpecularWeightClampMax,
		}
	}
	return mesh, surfaces, nil
}

func vec3From(v [3]float64) core.Vec3 { return core.NewVec3(v[0], v[1], v[2]) }

// Watcher observes a scene file for changes and signals on its Changed
// channel after write events, letting a caller decide when to reload and
// flush.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Changed chan struct{}
}

// Watch starts watching path for writes. The caller must call Close when
// done to release the underlying OS watch.
func Watch(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scene: create watcher: %w", err)
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("scene: watch %s: %w", path, err)
	}

	w := &Watcher{fsw: fsw, Changed: make(chan struct{}, 1)}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				select {
				case w.Changed <- struct{}{}:
				default:
				}
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
