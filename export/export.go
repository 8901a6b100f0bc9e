package export

import (
	"bytes"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/primfit"
	"github.com/unixpickle/model3d/fileformats"
)

const (
	specularLevel    = 0.1
	specularExponent = 20
)

// Options control how a mesh is exported.
type Options struct {
	// Name is the base name of the geometry, material and material file.
	Name string

	BaseColor Color

	// TextureName is a file name prefix to look up in TextureDir. If empty,
	// the material is color-only.
	TextureName string
	TextureDir  string

	// Rand picks between multiple matching textures. If nil, the first match
	// is used.
	Rand *rand.Rand
}

// An Artifact is an exported asset held in memory.
type Artifact struct {
	Name string

	OBJ []byte
	MTL []byte

	// TexturePath is the source path of the texture image, or "" if the
	// material has no texture.
	TexturePath string
}

// Export creates OBJ and MTL files for a mesh.
//
// If a texture was requested but cannot be found, the problem is logged and
// a color-only material is produced.
func Export(m *primfit.Mesh, opts *Options) (*Artifact, error) {
	if opts.Name == "" {
		return nil, errors.New("export: empty name")
	}
	if len(m.Faces) == 0 {
		return nil, errors.New("export: mesh has no faces")
	}
	res := &Artifact{Name: opts.Name}
	if opts.TextureName != "" {
		path, err := findTexture(opts)
		if err != nil {
			log.Printf("warning: using color-only material for %s: %v", opts.Name, err)
		} else {
			res.TexturePath = path
		}
	}

	material := &fileformats.MTLFileMaterial{
		Name: opts.Name,
		Diffuse: [3]float32{
			float32(opts.BaseColor[0]),
			float32(opts.BaseColor[1]),
			float32(opts.BaseColor[2]),
		},
		Specular:         [3]float32{specularLevel, specularLevel, specularLevel},
		SpecularExponent: specularExponent,
	}
	if res.TexturePath != "" {
		material.DiffuseMap = &fileformats.MTLFileTextureMap{
			Filename: filepath.Base(res.TexturePath),
		}
	}
	var mtl bytes.Buffer
	mtlFile := &fileformats.MTLFile{Materials: []*fileformats.MTLFileMaterial{material}}
	if err := mtlFile.Write(&mtl); err != nil {
		return nil, errors.Wrap(err, "export")
	}
	res.MTL = mtl.Bytes()

	var obj bytes.Buffer
	if err := MeshToOBJ(m, opts.Name).Write(&obj); err != nil {
		return nil, errors.Wrap(err, "export")
	}
	res.OBJ = obj.Bytes()
	return res, nil
}

// MeshToOBJ converts a mesh with per-vertex normals and per-corner UVs,
// using a single material called name from the library name.mtl.
func MeshToOBJ(m *primfit.Mesh, name string) *fileformats.OBJFile {
	res := &fileformats.OBJFile{
		MaterialFiles: []string{name + ".mtl"},
		Vertices:      make([][3]float64, len(m.Vertices)),
		Normals:       make([][3]float64, len(m.Normals)),
	}
	for i, v := range m.Vertices {
		res.Vertices[i] = v.Array()
	}
	for i, n := range m.Normals {
		res.Normals[i] = n.Array()
	}
	group := &fileformats.OBJFileFaceGroup{Material: name}
	for i, uvs := range FaceUVs(m) {
		var face [3][3]int
		for j, idx := range m.Faces[i] {
			res.UVs = append(res.UVs, uvs[j].Array())
			// Indices are one-based.
			face[j] = [3]int{idx + 1, len(res.UVs), idx + 1}
		}
		group.Faces = append(group.Faces, face)
	}
	res.FaceGroups = []*fileformats.OBJFileFaceGroup{group}
	return res
}

func findTexture(opts *Options) (string, error) {
	if opts.Rand != nil {
		return FindTexture(opts.Rand, opts.TextureDir, opts.TextureName)
	}
	matches, err := FindTextures(opts.TextureDir, opts.TextureName)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", errors.Wrapf(ErrTextureNotFound, "no match for %q in %s", opts.TextureName,
			opts.TextureDir)
	}
	return matches[0], nil
}

// SavedPaths lists the files written by Artifact.Save.
type SavedPaths struct {
	Geometry string
	Material string

	// Textures holds the staged copies of texture images.
	Textures []string
}

// Save writes the artifact into dir as <name>.obj and <name>.mtl, and copies
// the texture image next to them.
func (a *Artifact) Save(dir string) (*SavedPaths, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "save artifact")
	}
	res := &SavedPaths{
		Geometry: filepath.Join(dir, a.Name+".obj"),
		Material: filepath.Join(dir, a.Name+".mtl"),
	}
	if err := os.WriteFile(res.Geometry, a.OBJ, 0644); err != nil {
		return nil, errors.Wrap(err, "save artifact")
	}
	if err := os.WriteFile(res.Material, a.MTL, 0644); err != nil {
		return nil, errors.Wrap(err, "save artifact")
	}
	if a.TexturePath != "" {
		dst := filepath.Join(dir, filepath.Base(a.TexturePath))
		if err := copyFile(a.TexturePath, dst); err != nil {
			return nil, errors.Wrap(err, "save artifact")
		}
		res.Textures = append(res.Textures, dst)
	}
	return res, nil
}

func copyFile(src, dst string) error {
	r, err := os.Open(src)
	if err != nil {
		return err
	}
	defer r.Close()
	w, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
