// Package pcgan implements a class-conditioned point cloud GAN trained with
// the Wasserstein loss and a gradient penalty.
package pcgan

import (
	"os"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/pointcloud"
	"gopkg.in/yaml.v3"
)

// ModelConfig describes the architecture of a generator and critic pair.
type ModelConfig struct {
	NumClasses int `yaml:"num_classes"`
	NumPoints  int `yaml:"num_points"`
	LatentDim  int `yaml:"latent_dim"`
	CondDim    int `yaml:"cond_dim"`
	HiddenDim  int `yaml:"hidden_dim"`

	// CriticWidths are the output sizes of the per-point layers.
	CriticWidths []int `yaml:"critic_widths"`

	// CriticHead are the hidden sizes of the layers after pooling.
	CriticHead []int `yaml:"critic_head"`
}

// DefaultModelConfig creates the standard architecture for a taxonomy with
// numClasses classes.
func DefaultModelConfig(numClasses int) *ModelConfig {
	return &ModelConfig{
		NumClasses:   numClasses,
		NumPoints:    pointcloud.DefaultNumPoints,
		LatentDim:    128,
		CondDim:      64,
		HiddenDim:    512,
		CriticWidths: []int{64, 128, 256, 512},
		CriticHead:   []int{256, 64},
	}
}

// Validate checks that every dimension is positive.
func (m *ModelConfig) Validate() error {
	dims := map[string]int{
		"num_classes": m.NumClasses,
		"num_points":  m.NumPoints,
		"latent_dim":  m.LatentDim,
		"cond_dim":    m.CondDim,
		"hidden_dim":  m.HiddenDim,
	}
	for name, value := range dims {
		if value <= 0 {
			return errors.Errorf("model config: %s must be positive, got %d", name, value)
		}
	}
	if len(m.CriticWidths) == 0 {
		return errors.New("model config: critic needs at least one per-point layer")
	}
	for _, w := range append(append([]int{}, m.CriticWidths...), m.CriticHead...) {
		if w <= 0 {
			return errors.Errorf("model config: invalid critic width %d", w)
		}
	}
	return nil
}

// TrainConfig holds the hyperparameters of a training run.
type TrainConfig struct {
	Model ModelConfig `yaml:"model"`

	BatchSize   int     `yaml:"batch_size"`
	Epochs      int     `yaml:"epochs"`
	CriticIters int     `yaml:"critic_iters"`
	GPWeight    float32 `yaml:"gp_weight"`

	GeneratorLR float32 `yaml:"generator_lr"`
	CriticLR    float32 `yaml:"critic_lr"`
	Beta1       float32 `yaml:"beta1"`
	Beta2       float32 `yaml:"beta2"`
	ClipNorm    float32 `yaml:"clip_norm"`

	RadiusWeight  float32 `yaml:"radius_weight"`
	HeightWeight  float32 `yaml:"height_weight"`
	ChamferWeight float32 `yaml:"chamfer_weight"`

	// MaxRadiusItems limits the examples used to compute class radii.
	// Zero means every example.
	MaxRadiusItems int `yaml:"max_radius_items"`

	SnapshotInterval int    `yaml:"snapshot_interval"`
	OutputDir        string `yaml:"output_dir"`
	RenderSnapshots  bool   `yaml:"render_snapshots"`

	Seed    int64 `yaml:"seed"`
	Verbose bool  `yaml:"verbose"`
}

// DefaultTrainConfig creates the standard hyperparameters.
func DefaultTrainConfig(numClasses int) *TrainConfig {
	return &TrainConfig{
		Model:            *DefaultModelConfig(numClasses),
		BatchSize:        8,
		Epochs:           100,
		CriticIters:      5,
		GPWeight:         10,
		GeneratorLR:      1e-4,
		CriticLR:         1e-4,
		Beta1:            0,
		Beta2:            0.9,
		ClipNorm:         1,
		RadiusWeight:     1,
		HeightWeight:     0.5,
		ChamferWeight:    0.1,
		MaxRadiusItems:   200,
		SnapshotInterval: 10,
		OutputDir:        "pcgan_output",
		RenderSnapshots:  true,
	}
}

// LoadYAML overlays the YAML file at path onto c. Fields missing from
// the file keep their current values.
func (c *TrainConfig) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "load train config")
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrap(err, "load train config")
	}
	return nil
}

// Validate checks the hyperparameters and the model architecture.
func (c *TrainConfig) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("train config: invalid batch size %d", c.BatchSize)
	}
	if c.CriticIters <= 0 {
		return errors.Errorf("train config: invalid critic iterations %d", c.CriticIters)
	}
	if c.Epochs < 0 {
		return errors.Errorf("train config: invalid epoch count %d", c.Epochs)
	}
	if c.SnapshotInterval < 0 {
		return errors.Errorf("train config: invalid snapshot interval %d", c.SnapshotInterval)
	}
	return nil
}
