package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"landscape-engine/scene"
)

// bindTexture binds tex to unit 0, uploading it first if it has no GPU copy.
// It reports false when tex cannot be sampled.
func (r *Renderer) bindTexture(tex *scene.Texture) bool {
	if tex == nil {
		return false
	}
	if tex.GLID == 0 {
		if err := r.uploadTexture(tex); err != nil {
			return false
		}
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
	return true
}

// uploadTexture creates a mipmapped RGBA8 texture object and records it so
// Destroy can free it.
func (r *Renderer) uploadTexture(tex *scene.Texture) error {
	if tex.Width <= 0 || tex.Height <= 0 || len(tex.Pixels) < tex.Width*tex.Height*4 {
		return fmt.Errorf("texture %q: %dx%d with %d bytes", tex.Name, tex.Width, tex.Height, len(tex.Pixels))
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&tex.Pixels[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	r.textures[tex] = struct{}{}
	return nil
}

// ReleaseTexture frees the GPU copy of tex. Textures this renderer did not
// upload are ignored.
func (r *Renderer) ReleaseTexture(tex *scene.Texture) {
	if _, ok := r.textures[tex]; !ok {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
	delete(r.textures, tex)
}
