package catalog

import (
	"bytes"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/shapeforge/primgan/export"
	"github.com/shapeforge/primgan/primfit"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model3d"
)

func openTestCatalog(t *testing.T) *Catalog {
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func meshOBJ(t *testing.T, m *primfit.Mesh) []byte {
	var buf bytes.Buffer
	if err := export.MeshToOBJ(m, "asset").Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSeedAndTaxonomy(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.SeedShapes(shapes.DefaultNames()); err != nil {
		t.Fatal(err)
	}
	// Seeding twice must not create duplicates.
	if err := c.SeedShapes([]string{"sphere"}); err != nil {
		t.Fatal(err)
	}
	if err := c.SeedShapes([]string{"dodecahedron"}); err == nil {
		t.Error("expected error for unknown shape")
	}
	taxonomy, err := c.Taxonomy()
	if err != nil {
		t.Fatal(err)
	}
	names := taxonomy.Names()
	expected := shapes.DefaultNames()
	if len(names) != len(expected) {
		t.Fatalf("expected %v but got %v", expected, names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Fatalf("expected %v but got %v", expected, names)
		}
	}

	if err := c.SeedTextures([]string{"wood", "metal"}); err != nil {
		t.Fatal(err)
	}
	textures, err := c.Textures()
	if err != nil {
		t.Fatal(err)
	}
	if len(textures) != 2 || textures[0].Name != "wood" {
		t.Errorf("unexpected textures %v", textures)
	}
	if _, err := c.TextureByName("metal"); err != nil {
		t.Error(err)
	}
}

func TestLoadCorpus(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.SeedShapes([]string{"cube", "sphere"}); err != nil {
		t.Fatal(err)
	}
	cube, err := c.ShapeByName("cube")
	if err != nil {
		t.Fatal(err)
	}
	sphere, err := c.ShapeByName("sphere")
	if err != nil {
		t.Fatal(err)
	}
	objects := []*Object{
		{ShapeID: sphere.ID, OBJData: meshOBJ(t, primfit.NewUVSphereMesh(model3d.X(3), 2, 12))},
		{ShapeID: cube.ID, OBJData: meshOBJ(t, primfit.NewBoxMesh(model3d.Origin, 1))},
		{ShapeID: cube.ID, OBJData: []byte("v 1 2\n")},
	}
	for _, o := range objects {
		if err := c.AddObject(o); err != nil {
			t.Fatal(err)
		}
	}

	corpus, taxonomy, err := c.LoadCorpus(rand.New(rand.NewSource(0)), 128, 0)
	if err != nil {
		t.Fatal(err)
	}
	if taxonomy.Len() != 2 {
		t.Errorf("unexpected taxonomy %v", taxonomy.Names())
	}
	if corpus.Len() != 2 {
		t.Fatalf("expected 2 examples but got %d", corpus.Len())
	}
	if corpus[0].Label != 1 || corpus[1].Label != 0 {
		t.Errorf("unexpected labels %d %d", corpus[0].Label, corpus[1].Label)
	}
	for _, ex := range corpus {
		if len(ex.Points) != 128 {
			t.Errorf("expected 128 points but got %d", len(ex.Points))
		}
		if math.Abs(ex.Points.MaxNorm()-1) > 1e-8 || ex.Points.Centroid().Norm() > 1e-8 {
			t.Error("corpus clouds should be normalized")
		}
	}

	limited, _, err := c.LoadCorpus(rand.New(rand.NewSource(0)), 16, 1)
	if err != nil {
		t.Fatal(err)
	}
	if limited.Len() != 1 {
		t.Errorf("expected 1 example but got %d", limited.Len())
	}
}

func TestAddArtifact(t *testing.T) {
	c := openTestCatalog(t)
	if err := c.SeedShapes([]string{"cone"}); err != nil {
		t.Fatal(err)
	}
	if err := c.SeedTextures([]string{"stone"}); err != nil {
		t.Fatal(err)
	}
	mesh, err := primfit.CanonicalMesh(shapes.Cone, 1)
	if err != nil {
		t.Fatal(err)
	}
	artifact, err := export.Export(mesh, &export.Options{Name: "cone_red_stone", BaseColor: export.Color{1, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	obj, err := c.AddArtifact("cone", "red", "stone", artifact)
	if err != nil {
		t.Fatal(err)
	}
	if obj.ID == 0 || obj.TextureID == nil {
		t.Errorf("unexpected object %+v", obj)
	}
	if obj.Description != "cone, red, without texture" {
		t.Errorf("unexpected description %q", obj.Description)
	}
	if _, err := c.AddArtifact("cube", "red", "", artifact); err == nil {
		t.Error("expected error for unknown shape")
	}
	objects, err := c.Objects()
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 1 || !bytes.Equal(objects[0].OBJData, artifact.OBJ) {
		t.Error("stored geometry does not match")
	}
}
