package pcgan

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/autodiff"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/model3d/render3d"
	"golang.org/x/exp/slices"
)

const (
	FinalCheckpointName = "model_final.bin"

	snapshotPointRadius = 0.01
	snapshotImageSize   = 200
)

// IterationStats summarizes one training iteration.
type IterationStats struct {
	Iteration int

	// Critic statistics are from the last critic step.
	CriticLoss float64
	GP         float64

	GeneratorLoss float64
	Adversarial   float64
	Radius        float64
	Height        float64
	Chamfer       float64
}

func (s *IterationStats) String() string {
	return fmt.Sprintf("iter=%d critic=%f gp=%f gen=%f adv=%f radius=%f height=%f "+
		"chamfer=%f", s.Iteration, s.CriticLoss, s.GP, s.GeneratorLoss, s.Adversarial,
		s.Radius, s.Height, s.Chamfer)
}

// A Trainer alternates critic and generator updates over a corpus.
type Trainer struct {
	Config    *TrainConfig
	Taxonomy  *shapes.Taxonomy
	Generator *Generator
	Critic    *Critic
	Radii     ClassRadii

	Iteration int
	Epoch     int

	rand         *rand.Rand
	batcher      *pointcloud.Batcher
	genParams    []*autodiff.Var
	criticParams []*autodiff.Var
	genOpt       *Adam
	criticOpt    *Adam
}

// NewTrainer creates randomly initialized networks and computes the class
// radius table from the corpus.
//
// Returns pointcloud.ErrCorpusEmpty if the corpus has no examples.
func NewTrainer(config *TrainConfig, taxonomy *shapes.Taxonomy,
	corpus pointcloud.Corpus) (*Trainer, error) {
	if corpus.Len() == 0 {
		return nil, pointcloud.ErrCorpusEmpty
	}
	if config.Model.NumClasses != taxonomy.Len() {
		return nil, errors.Errorf("model has %d classes but taxonomy has %d",
			config.Model.NumClasses, taxonomy.Len())
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	r := rand.New(rand.NewSource(config.Seed))
	t := &Trainer{
		Config:    config,
		Taxonomy:  taxonomy,
		Generator: NewGenerator(r, &config.Model),
		Critic:    NewCritic(r, &config.Model),
		Radii:     ComputeClassRadii(corpus, taxonomy.Len(), config.MaxRadiusItems),
		rand:      r,
		batcher: &pointcloud.Batcher{
			Corpus:    corpus,
			BatchSize: config.BatchSize,
			Rand:      r,
		},
	}
	t.genParams = t.Generator.Params().Vars()
	t.criticParams = t.Critic.Params().Vars()
	t.genOpt = NewAdam(t.genParams, config.GeneratorLR, config.Beta1, config.Beta2)
	t.criticOpt = NewAdam(t.criticParams, config.CriticLR, config.Beta1, config.Beta2)
	return t, nil
}

// Restore copies weights and counters from a checkpoint that includes a
// critic. Optimizer state starts fresh.
func (t *Trainer) Restore(c *Checkpoint) error {
	if c.Critic == nil {
		return errors.New("restore: checkpoint has no critic")
	}
	if !slices.Equal(c.Taxonomy.Names(), t.Taxonomy.Names()) {
		return errors.New("restore: taxonomy mismatch")
	}
	if err := t.Generator.Params().CopyFrom(c.Generator.Params()); err != nil {
		return errors.Wrap(err, "restore generator")
	}
	if err := t.Critic.Params().CopyFrom(c.Critic.Params()); err != nil {
		return errors.Wrap(err, "restore critic")
	}
	t.Iteration = c.Iteration
	t.Epoch = c.Epoch
	return nil
}

// Checkpoint captures the current state. The networks are shared, not
// copied.
func (t *Trainer) Checkpoint() *Checkpoint {
	return &Checkpoint{
		Iteration: t.Iteration,
		Epoch:     t.Epoch,
		Taxonomy:  t.Taxonomy,
		Generator: t.Generator,
		Critic:    t.Critic,
	}
}

// Step runs one iteration on a real batch: CriticIters critic updates
// followed by one generator update.
//
// If a non-finite value appears, ErrNonFinite is returned and the failing
// phase applies no update. Critic updates from earlier steps are kept.
func (t *Trainer) Step(batch *pointcloud.Batch) (*IterationStats, error) {
	labels := batch.Labels
	for _, label := range labels {
		if err := t.Taxonomy.CheckLabel(label); err != nil {
			return nil, err
		}
	}
	real := CloudsToTensor(batch.Clouds)
	if real.Rows != len(labels)*t.Config.Model.NumPoints {
		return nil, errors.Errorf("batch has %d points, expected %d clouds of %d", real.Rows,
			len(labels), t.Config.Model.NumPoints)
	}
	stats := &IterationStats{Iteration: t.Iteration}

	for i := 0; i < t.Config.CriticIters; i++ {
		if err := t.criticStep(real, labels, stats); err != nil {
			return nil, err
		}
	}
	if err := t.generatorStep(real, labels, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (t *Trainer) criticStep(real *autodiff.Tensor, labels []int,
	stats *IterationStats) error {
	z := t.Generator.SampleLatents(t.rand, len(labels))
	fake := t.Generator.Forward(z, labels).Value
	if !fake.Finite() {
		return errors.Wrap(ErrNonFinite, "critic step: generated points")
	}

	realScore := autodiff.Mean(t.Critic.Forward(autodiff.NewConstant(real), labels))
	fakeScore := autodiff.Mean(t.Critic.Forward(autodiff.NewConstant(fake), labels))
	gp := GradientPenalty(t.rand, t.Critic, real, fake, labels)
	loss := autodiff.Add(
		autodiff.Sub(fakeScore, realScore),
		autodiff.Scale(gp, t.Config.GPWeight),
	)
	stats.CriticLoss = float64(loss.Scalar())
	stats.GP = float64(gp.Scalar())
	if !loss.Value.Finite() {
		return errors.Wrap(ErrNonFinite, "critic step: loss")
	}

	grads := autodiff.GradTensors(loss, t.criticParams...)
	if !allFinite(grads) {
		return errors.Wrap(ErrNonFinite, "critic step: gradient")
	}
	ClipGradNorm(grads, t.Config.ClipNorm)
	t.criticOpt.Step(grads)
	return nil
}

func (t *Trainer) generatorStep(real *autodiff.Tensor, labels []int,
	stats *IterationStats) error {
	batch := len(labels)
	z := t.Generator.SampleLatents(t.rand, batch)
	fake := t.Generator.Forward(z, labels)
	if !fake.Value.Finite() {
		return errors.Wrap(ErrNonFinite, "generator step: generated points")
	}

	adv := autodiff.Scale(autodiff.Mean(t.Critic.Forward(fake, labels)), -1)
	radius := RadiusLoss(fake, labels, t.Radii)
	height := HeightLoss(fake, real, batch)
	chamfer := ChamferLoss(fake, real, batch)
	loss := autodiff.Add(
		autodiff.Add(adv, autodiff.Scale(radius, t.Config.RadiusWeight)),
		autodiff.Add(
			autodiff.Scale(height, t.Config.HeightWeight),
			autodiff.Scale(chamfer, t.Config.ChamferWeight),
		),
	)
	stats.GeneratorLoss = float64(loss.Scalar())
	stats.Adversarial = float64(adv.Scalar())
	stats.Radius = float64(radius.Scalar())
	stats.Height = float64(height.Scalar())
	stats.Chamfer = float64(chamfer.Scalar())
	if !loss.Value.Finite() {
		return errors.Wrap(ErrNonFinite, "generator step: loss")
	}

	grads := autodiff.GradTensors(loss, t.genParams...)
	if !allFinite(grads) {
		return errors.Wrap(ErrNonFinite, "generator step: gradient")
	}
	ClipGradNorm(grads, t.Config.ClipNorm)
	t.genOpt.Step(grads)
	return nil
}

// Train runs the remaining epochs of the configured budget.
//
// Iterations with non-finite values are logged and skipped. The context is
// checked between iterations. A snapshot is written every SnapshotInterval
// iterations, and a final checkpoint once all epochs are done.
func (t *Trainer) Train(ctx context.Context) error {
	if err := os.MkdirAll(t.Config.OutputDir, 0755); err != nil {
		return errors.Wrap(err, "train")
	}
	for t.Epoch < t.Config.Epochs {
		batches, err := t.batcher.Epoch()
		if err != nil {
			return errors.Wrap(err, "train")
		}
		for _, batch := range batches {
			if err := ctx.Err(); err != nil {
				return err
			}
			t.Iteration++
			stats, err := t.Step(batch)
			if errors.Is(err, ErrNonFinite) {
				log.Printf("iteration %d skipped: %v", t.Iteration, err)
				continue
			} else if err != nil {
				return errors.Wrapf(err, "train iteration %d", t.Iteration)
			}
			if t.Config.Verbose {
				log.Println(stats)
			}
			if t.Config.SnapshotInterval > 0 && t.Iteration%t.Config.SnapshotInterval == 0 {
				if err := t.Snapshot(); err != nil {
					return err
				}
				log.Printf("[iter %d] saved samples and checkpoint", t.Iteration)
			}
		}
		t.Epoch++
		log.Printf("epoch %d completed", t.Epoch)
	}
	path := filepath.Join(t.Config.OutputDir, FinalCheckpointName)
	return SaveCheckpoint(path, t.Checkpoint())
}

// Snapshot writes one sample per class to the output directory along with a
// checkpoint of the current state.
func (t *Trainer) Snapshot() error {
	for label, name := range t.Taxonomy.Names() {
		cloud, err := t.Generator.Generate(t.Generator.SampleLatent(t.rand), label)
		if err != nil {
			return errors.Wrap(err, "snapshot")
		}
		prefix := filepath.Join(t.Config.OutputDir, fmt.Sprintf("iter%d_%s", t.Iteration, name))
		if err := pointcloud.SavePLY(prefix+".ply", cloud); err != nil {
			return errors.Wrap(err, "snapshot")
		}
		if t.Config.RenderSnapshots {
			if err := RenderCloud(prefix+".png", cloud); err != nil {
				return errors.Wrap(err, "snapshot")
			}
		}
	}
	path := filepath.Join(t.Config.OutputDir, fmt.Sprintf("ckpt_iter%d.bin", t.Iteration))
	return SaveCheckpoint(path, t.Checkpoint())
}

// RenderCloud saves a grid of views of a point cloud, drawing every point as
// a small sphere.
func RenderCloud(path string, cloud pointcloud.PointCloud) error {
	var tris []*model3d.Triangle
	for _, p := range cloud {
		tris = append(tris, model3d.NewMeshIcosphere(p, snapshotPointRadius, 1).TriangleSlice()...)
	}
	mesh := model3d.NewMeshTriangles(tris)
	object := render3d.Objectify(model3d.MeshToCollider(mesh), nil)
	return render3d.SaveRandomGrid(path, object, 2, 2, snapshotImageSize, nil)
}
