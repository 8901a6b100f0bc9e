package pointcloud

import (
	"bytes"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/fileformats"
	"github.com/unixpickle/model3d/model3d"
)

func TestNormalize(t *testing.T) {
	p := PointCloud{
		model3d.XYZ(1, 1, 1),
		model3d.XYZ(3, 1, 1),
		model3d.XYZ(2, 5, 1),
	}
	n := p.Normalize()
	if c := n.Centroid(); c.Norm() > 1e-8 {
		t.Errorf("unexpected centroid %v", c)
	}
	if m := n.MaxNorm(); math.Abs(m-1) > 1e-8 {
		t.Errorf("unexpected max norm %f", m)
	}
	if p[0] != model3d.XYZ(1, 1, 1) {
		t.Error("normalize modified its receiver")
	}

	same := PointCloud{model3d.XYZ(2, 2, 2), model3d.XYZ(2, 2, 2)}.Normalize()
	if same.MaxNorm() != 0 {
		t.Errorf("coincident points should collapse to origin, got %v", same)
	}
}

func TestValidate(t *testing.T) {
	if err := (PointCloud{}).Validate(); err == nil {
		t.Error("expected error for empty cloud")
	}
	bad := PointCloud{model3d.XYZ(0, math.NaN(), 0)}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for NaN")
	}
	if err := (PointCloud{model3d.XYZ(1, 2, 3)}).Validate(); err != nil {
		t.Error(err)
	}
}

func TestSampleSurface(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	mesh := model3d.NewMeshIcosphere(model3d.Origin, 2, 3)
	points, err := SampleSurface(r, mesh.TriangleSlice(), 500)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 500 {
		t.Fatalf("expected 500 points but got %d", len(points))
	}
	for _, p := range points {
		if math.Abs(p.Norm()-2) > 0.2 {
			t.Fatalf("point %v is not near the surface", p)
		}
	}

	flat := &model3d.Triangle{model3d.X(1), model3d.X(1), model3d.X(1)}
	if _, err := SampleSurface(r, []*model3d.Triangle{flat}, 10); err == nil {
		t.Error("expected error for zero-area mesh")
	}
}

func TestBatcher(t *testing.T) {
	var corpus MemoryCorpus
	for i := 0; i < 10; i++ {
		corpus = append(corpus, &Example{
			Points: PointCloud{model3d.XYZ(float64(i), 0, 0)},
			Label:  i,
		})
	}
	b := &Batcher{Corpus: corpus, BatchSize: 4, Rand: rand.New(rand.NewSource(1))}
	batches, err := b.Epoch()
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches but got %d", len(batches))
	}
	seen := map[int]bool{}
	for _, batch := range batches {
		if batch.Len() != 4 {
			t.Errorf("unexpected batch size %d", batch.Len())
		}
		for i, label := range batch.Labels {
			if seen[label] {
				t.Errorf("label %d repeated", label)
			}
			seen[label] = true
			if int(batch.Clouds[i][0].X) != label {
				t.Error("clouds and labels out of sync")
			}
		}
	}

	small := &Batcher{Corpus: corpus[:3], BatchSize: 8, Rand: rand.New(rand.NewSource(1))}
	batches, err = small.Epoch()
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 || batches[0].Len() != 3 {
		t.Errorf("small corpus should yield one batch of 3")
	}

	empty := &Batcher{Corpus: MemoryCorpus{}, BatchSize: 8, Rand: rand.New(rand.NewSource(1))}
	if _, err := empty.Epoch(); errors.Cause(err) != ErrCorpusEmpty {
		t.Errorf("expected ErrCorpusEmpty but got %v", err)
	}
}

func TestPLY(t *testing.T) {
	p := PointCloud{
		model3d.XYZ(1, 2, 3),
		model3d.XYZ(-0.5, 0.25, 1e-3),
	}
	for _, format := range []fileformats.PLYFormat{
		fileformats.PLYFormatASCII,
		fileformats.PLYFormatBinaryLittle,
		fileformats.PLYFormatBinaryBig,
	} {
		var buf bytes.Buffer
		if err := WritePLYFormat(&buf, p, format); err != nil {
			t.Fatal(err)
		}
		decoded, err := ReadPLY(&buf)
		if err != nil {
			t.Fatalf("format %d: %v", format, err)
		}
		if len(decoded) != len(p) {
			t.Fatalf("format %d: expected %d points but got %d", format, len(p), len(decoded))
		}
		for i, c := range p {
			if c.Dist(decoded[i]) > 1e-6 {
				t.Errorf("format %d: point %d: expected %v but got %v", format, i, c, decoded[i])
			}
		}
	}

	// Properties are matched by name and extra elements are skipped.
	mesh := "ply\nformat ascii 1.0\nelement vertex 2\nproperty uchar red\nproperty double z\n" +
		"property double y\nproperty double x\nelement face 1\n" +
		"property list uchar int vertex_index\nend_header\n" +
		"7 3 2 1\n9 0.5 0.25 -1\n3 0 1 0\n"
	decoded, err := ReadPLY(bytes.NewReader([]byte(mesh)))
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded[0] != model3d.XYZ(1, 2, 3) ||
		decoded[1] != model3d.XYZ(-1, 0.25, 0.5) {
		t.Errorf("unexpected points %v", decoded)
	}

	if _, err := ReadPLY(bytes.NewReader([]byte("not a ply\n"))); err == nil {
		t.Error("expected error for missing magic")
	}
	truncated := "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\n" +
		"property float z\nend_header\n1 2 3\n"
	if _, err := ReadPLY(bytes.NewReader([]byte(truncated))); err == nil {
		t.Error("expected error for truncated body")
	}
	noZ := "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nproperty float y\n" +
		"end_header\n1 2\n"
	if _, err := ReadPLY(bytes.NewReader([]byte(noZ))); err == nil {
		t.Error("expected error for missing z property")
	}
	if err := WritePLY(&bytes.Buffer{}, nil); err == nil {
		t.Error("expected error for empty cloud")
	}
}

func TestSavePLY(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloud.ply")
	p := SampleUnitSphere(rand.New(rand.NewSource(0)), 32)
	if err := SavePLY(path, p); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPLY(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(p) {
		t.Fatalf("expected %d points but got %d", len(p), len(loaded))
	}
	if err := SavePLY(filepath.Join(path, "nested.ply"), p); err == nil {
		t.Error("expected error for invalid path")
	}
}
