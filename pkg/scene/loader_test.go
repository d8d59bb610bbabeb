package scene

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScene = `{
	"camera": {"position": [0, 0, -3], "rotation": [0, 0, 0]},
	"sky": {"color": [0.1, 0.1, 0.2]},
	"materials": [
		{"base_color": [0.8, 0.8, 0.8], "roughness": 1.0}
	],
	"mesh": {
		"vertices": [[-1, -1, 0], [1, -1, 0], [1, 1, 0], [-1, 1, 0]],
		"normals": [[0, 0, -1], [0, 0, -1], [0, 0, -1], [0, 0, -1]],
		"uvs": [[0, 0], [1, 0], [1, 1], [0, 1]],
		"triangles": [[0, 1, 2, 0], [0, 2, 3, 0]]
	}
}`

func writeScene(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestJSONLoader_Load_ParsesMeshCameraAndSky(t *testing.T) {
	path := writeScene(t, minimalScene)
	loader := JSONLoader{SpecularWeightClampMin: 0.1, SpecularWeightClampMax: 0.9}

	loaded, err := loader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.Scene.Tree.Mesh.TriangleCount())
	assert.Equal(t, -3.0, loaded.Camera.Position.Z)
	assert.NotNil(t, loaded.Scene.LightTable)
}

func TestJSONLoader_Load_RejectsUnknownMaterialIndex(t *testing.T) {
	broken := `{
		"camera": {"position": [0,0,0], "rotation": [0,0,0]},
		"sky": {"color": [0,0,0]},
		"materials": [],
		"mesh": {
			"vertices": [[0,0,0],[1,0,0],[0,1,0]],
			"normals": [[0,0,1],[0,0,1],[0,0,1]],
			"uvs": [[0,0],[1,0],[0,1]],
			"triangles": [[0,1,2,0]]
		}
	}`
	path := writeScene(t, broken)
	loader := JSONLoader{}

	_, err := loader.Load(path)
	require.Error(t, err)
}

func TestJSONLoader_Load_RejectsNonJSONPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	// A PNG signature is one of the payload types filetype.Match recognizes,
	// so this must be rejected before json.Unmarshal ever runs.
	pngSignature := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	require.NoError(t, os.WriteFile(path, pngSignature, 0o644))

	loader := JSONLoader{}
	_, err := loader.Load(path)
	require.Error(t, err)
}

func TestWatch_SignalsOnWrite(t *testing.T) {
	path := writeScene(t, minimalScene)

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(minimalScene), 0o644))

	select {
	case <-w.Changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification after writing the watched file")
	}
}
