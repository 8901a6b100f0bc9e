package primgen

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestExtractAttributes(t *testing.T) {
	textures := []string{"wood", "metal", "stone"}
	cases := map[string]Attributes{
		"A big red cube made of wood":  {Shape: "cube", Color: "red", Texture: "wood"},
		"two Tori, please; stone, blue": {Color: "blue", Texture: "stone"},
		"spheres in green":              {Shape: "sphere", Color: "green"},
		"nothing here":                  {},
		"CONE metal":                    {Shape: "cone", Texture: "metal"},
	}
	for text, expected := range cases {
		actual := ExtractAttributes(text, textures)
		if *actual != expected {
			t.Errorf("%q: expected %+v but got %+v", text, expected, *actual)
		}
	}
}

func TestAssetZip(t *testing.T) {
	dir := t.TempDir()
	paths := &AssetPaths{
		Geometry: filepath.Join(dir, "cube.obj"),
		Material: filepath.Join(dir, "cube.mtl"),
		Textures: []string{filepath.Join(dir, "wood1.png")},
	}
	for _, p := range paths.Files() {
		if err := os.WriteFile(p, []byte("data "+filepath.Base(p)), 0644); err != nil {
			t.Fatal(err)
		}
	}
	zipPath, err := paths.Zip("bundle")
	if err != nil {
		t.Fatal(err)
	}
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	expected := []string{"cube.mtl", "cube.obj", "wood1.png"}
	if len(names) != len(expected) {
		t.Fatalf("expected %v but got %v", expected, names)
	}
	for i, x := range expected {
		if names[i] != x {
			t.Fatalf("expected %v but got %v", expected, names)
		}
	}
}
