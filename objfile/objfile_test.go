package objfile

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/unixpickle/model3d/fileformats"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

func TestOBJRoundTrip(t *testing.T) {
	file := &fileformats.OBJFile{
		MaterialFiles: []string{"box.mtl"},
		Vertices:      [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0.5}},
		UVs:           [][2]float64{{0, 0}, {1, 0}, {0, 1}},
		Normals:       [][3]float64{{0, 0, 1}},
		FaceGroups: []*fileformats.OBJFileFaceGroup{
			{
				Material: "box_material",
				Faces:    [][3][3]int{{{1, 1, 1}, {2, 2, 1}, {3, 3, 1}}},
			},
		},
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatal(err)
	}

	decoded, err := ParseOBJ(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded.Vertices) != 3 || len(decoded.UVs) != 3 || len(decoded.Normals) != 1 {
		t.Fatalf("unexpected attribute counts")
	}
	if decoded.Vertices[2].Dist(model3d.XYZ(0, 1, 0.5)) > 1e-6 {
		t.Errorf("unexpected vertex %v", decoded.Vertices[2])
	}
	if decoded.UVs[1].Dist(model2d.XY(1, 0)) > 1e-6 {
		t.Errorf("unexpected uv %v", decoded.UVs[1])
	}
	if decoded.NumFaces() != 1 || decoded.Groups[0].Material != "box_material" {
		t.Fatalf("unexpected groups")
	}
	expected := [3]Corner{{0, 0, 0}, {1, 1, 0}, {2, 2, 0}}
	if decoded.Groups[0].Faces[0] != expected {
		t.Errorf("unexpected face %v", decoded.Groups[0].Faces[0])
	}
	if len(decoded.MaterialLibs) != 1 || decoded.MaterialLibs[0] != "box.mtl" {
		t.Errorf("unexpected mtllib %v", decoded.MaterialLibs)
	}
}

func TestParseOBJPolygons(t *testing.T) {
	data := `# quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
f -4//  -2 -1
`
	obj, err := ParseOBJ(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if obj.NumFaces() != 3 {
		t.Fatalf("expected 3 faces but got %d", obj.NumFaces())
	}
	faces := obj.Groups[0].Faces
	if faces[1][0].Vertex != 0 || faces[1][1].Vertex != 2 || faces[1][2].Vertex != 3 {
		t.Errorf("unexpected fan triangle %v", faces[1])
	}
	if faces[2][0].Vertex != 0 || faces[2][1].Vertex != 2 || faces[2][0].UV != -1 {
		t.Errorf("unexpected negative-index triangle %v", faces[2])
	}
	if len(obj.Triangles()) != 3 {
		t.Error("unexpected triangle count")
	}

	for _, bad := range []string{"v 1 2\n", "v 0 0 0\nf 1 2 3\n", "v 0 0 0\nf 1 1\n"} {
		if _, err := ParseOBJ(strings.NewReader(bad)); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestMTLRoundTrip(t *testing.T) {
	file := &fileformats.MTLFile{
		Materials: []*fileformats.MTLFileMaterial{
			{
				Name:             "sphere_material",
				Diffuse:          [3]float32{1, 0, 0},
				Specular:         [3]float32{0.1, 0.1, 0.1},
				SpecularExponent: 20,
				DiffuseMap:       &fileformats.MTLFileTextureMap{Filename: "wood.png"},
			},
			{Name: "plain", Diffuse: [3]float32{0.25, 0.5, 0.75}},
		},
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		t.Fatal(err)
	}

	decoded, err := ParseMTL(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 materials but got %d", len(decoded))
	}
	for i, expected := range file.Materials {
		actual := decoded[i]
		if actual.Name != expected.Name {
			t.Errorf("material %d: expected name %s but got %s", i, expected.Name, actual.Name)
		}
		for j := 0; j < 3; j++ {
			if math.Abs(actual.Diffuse[j]-float64(expected.Diffuse[j])) > 1e-4 ||
				math.Abs(actual.Specular[j]-float64(expected.Specular[j])) > 1e-4 {
				t.Errorf("material %d: unexpected colors %+v", i, actual)
			}
		}
	}
	if decoded[0].SpecularExponent != 20 || decoded[0].DiffuseMap != "wood.png" {
		t.Errorf("unexpected material %+v", decoded[0])
	}
	if decoded[1].DiffuseMap != "" {
		t.Errorf("unexpected diffuse map %q", decoded[1].DiffuseMap)
	}

	if _, err := ParseMTL(strings.NewReader("Kd 1 1 1\n")); err == nil {
		t.Error("expected error for statement before newmtl")
	}
}
