// Package primgen generates textured primitive assets from a trained point
// cloud generator.
package primgen

import (
	"log"
	"math/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/export"
	"github.com/shapeforge/primgan/pcgan"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/primfit"
	"github.com/shapeforge/primgan/shapes"
)

const DefaultMaxAttempts = 3

// Config describes where an Engine finds its inputs and writes its outputs.
type Config struct {
	CheckpointPath string
	TextureDir     string
	OutputDir      string

	// MaxAttempts bounds the number of latents tried when fitting fails on
	// degenerate points. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// Seed initializes the latent generator. Zero means a time-based seed.
	Seed int64
}

// AssetPaths lists the files of a generated asset.
type AssetPaths struct {
	ID       string
	Geometry string
	Material string
	Textures []string
}

// An Engine runs generation, fitting and export with a frozen generator.
//
// An Engine is safe for concurrent use.
type Engine struct {
	config    Config
	generator *pcgan.Generator
	taxonomy  *shapes.Taxonomy

	lock sync.Mutex
	rand *rand.Rand
}

// Open loads the generator from the checkpoint in c.
//
// Returns pcgan.ErrMissingModel if the checkpoint does not exist.
func Open(c Config) (*Engine, error) {
	generator, taxonomy, err := pcgan.LoadGenerator(c.CheckpointPath)
	if err != nil {
		return nil, err
	}
	return NewEngine(c, generator, taxonomy), nil
}

// NewEngine wraps an already loaded generator, which is frozen.
func NewEngine(c Config, generator *pcgan.Generator, taxonomy *shapes.Taxonomy) *Engine {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	generator.Freeze()
	return &Engine{
		config:    c,
		generator: generator,
		taxonomy:  taxonomy,
		rand:      rand.New(rand.NewSource(c.Seed)),
	}
}

func (e *Engine) Taxonomy() *shapes.Taxonomy {
	return e.taxonomy
}

// GeneratePoints produces a point cloud for a shape name from a fresh latent.
func (e *Engine) GeneratePoints(shape string) (pointcloud.PointCloud, error) {
	label, err := e.taxonomy.Label(shape)
	if err != nil {
		return nil, err
	}
	return e.generator.Generate(e.sampleLatent(), label)
}

// GenerateMesh generates points for a shape and fits its primitive. Fits on
// degenerate points are retried with fresh latents.
func (e *Engine) GenerateMesh(shape string) (*primfit.Mesh, error) {
	label, err := e.taxonomy.Label(shape)
	if err != nil {
		return nil, err
	}
	class, err := e.taxonomy.Class(label)
	if err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		points, err := e.generator.Generate(e.sampleLatent(), label)
		if err != nil {
			return nil, err
		}
		mesh, err := primfit.Fit(points, class)
		if err == nil {
			return mesh, nil
		}
		if !errors.Is(err, primfit.ErrDegenerateInput) || attempt >= e.config.MaxAttempts {
			return nil, errors.Wrapf(err, "fit %s after %d attempts", shape, attempt)
		}
		log.Printf("retrying %s after degenerate fit: %v", shape, err)
	}
}

// GenerateAsset creates a textured mesh for a shape. The color is parsed
// with export.ParseColor, and texture is a texture name prefix or "".
//
// Every call writes to a new directory under the output directory.
func (e *Engine) GenerateAsset(shape, color, texture string) (*AssetPaths, error) {
	c, err := export.ParseColor(color)
	if err != nil {
		return nil, err
	}
	return e.GenerateAssetRGB(shape, c, texture)
}

// GenerateAssetRGB is like GenerateAsset with a parsed color.
func (e *Engine) GenerateAssetRGB(shape string, color export.Color,
	texture string) (*AssetPaths, error) {
	mesh, err := e.GenerateMesh(shape)
	if err != nil {
		return nil, err
	}
	class, err := shapes.ParseShapeClass(shape)
	if err != nil {
		return nil, err
	}

	e.lock.Lock()
	textureRand := rand.New(rand.NewSource(e.rand.Int63()))
	e.lock.Unlock()

	artifact, err := export.Export(mesh, &export.Options{
		Name:        class.String(),
		BaseColor:   color,
		TextureName: texture,
		TextureDir:  e.config.TextureDir,
		Rand:        textureRand,
	})
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	saved, err := artifact.Save(filepath.Join(e.config.OutputDir, id))
	if err != nil {
		return nil, err
	}
	return &AssetPaths{
		ID:       id,
		Geometry: saved.Geometry,
		Material: saved.Material,
		Textures: saved.Textures,
	}, nil
}

func (e *Engine) sampleLatent() []float32 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.generator.SampleLatent(e.rand)
}
