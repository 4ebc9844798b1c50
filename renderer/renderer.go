package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"landscape-engine/internal/opengl"
	"landscape-engine/scene"
)

// RenderEngine is the high-level renderer that drives the OpenGL backend.
// It satisfies scene.Releaser so the editor can hand back GPU resources of
// removed objects and handles.
type RenderEngine struct {
	gl  *opengl.Renderer
	log *zap.Logger

	// Per-frame stats (populated during Render)
	lastObjects   int
	lastVertices  int
	lastTriangles int
}

// NewRenderEngine creates the backend for the current GL context and sizes
// the viewport.
func NewRenderEngine(width, height int, log *zap.Logger) (*RenderEngine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	glRenderer.SetViewport(width, height)

	log = log.Named("renderer")
	log.Info("render engine initialized", zap.String("gl_version", glRenderer.Version()))
	return &RenderEngine{gl: glRenderer, log: log}, nil
}

// Render clears to the scene background, lights the frame with the first
// directional light and draws every visible mesh, overlay included.
func (re *RenderEngine) Render(s *scene.Scene, camera *scene.Camera) error {
	if s == nil || camera == nil {
		return fmt.Errorf("no scene or camera")
	}

	var sun *scene.Light
	for _, l := range s.Lights() {
		if l.Type == scene.LightTypeDirectional {
			sun = l
			break
		}
	}
	re.gl.BeginFrame(s.Background, sun, s.Ambient)

	vp := camera.GetViewProjectionMatrix()
	objects, vertices, triangles := 0, 0, 0
	for _, node := range s.GetVisibleNodes() {
		if node.Mesh == nil {
			continue
		}
		model := node.GetWorldMatrix()
		re.gl.DrawMesh(node.Mesh, model.Mul(vp), model)

		objects++
		vertices += len(node.Mesh.Vertices)
		if node.Mesh.DrawMode == scene.DrawTriangles {
			triangles += len(node.Mesh.Indices) / 3
		}
	}

	re.lastObjects = objects
	re.lastVertices = vertices
	re.lastTriangles = triangles
	return nil
}

func (re *RenderEngine) Resize(width, height int) {
	re.gl.SetViewport(width, height)
}

// ReleaseMesh frees the GPU buffers of mesh.
func (re *RenderEngine) ReleaseMesh(mesh *scene.Mesh) {
	re.gl.ReleaseMesh(mesh)
}

// ReleaseTexture frees the GPU copy of tex.
func (re *RenderEngine) ReleaseTexture(tex *scene.Texture) {
	re.gl.ReleaseTexture(tex)
}

func (re *RenderEngine) Destroy() {
	meshes, textures := re.gl.Stats()
	re.log.Debug("destroying renderer", zap.Int("meshes", meshes), zap.Int("textures", textures))
	re.gl.Destroy()
}

// DrawStats returns stats from the most recent Render call.
func (re *RenderEngine) DrawStats() (objects, vertices, triangles int) {
	return re.lastObjects, re.lastVertices, re.lastTriangles
}
