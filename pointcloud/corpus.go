package pointcloud

import (
	"math/rand"

	"github.com/pkg/errors"
)

// ErrCorpusEmpty is returned when training is attempted without any real
// examples.
var ErrCorpusEmpty = errors.New("training corpus is empty")

// An Example is one real point cloud with its class label.
type Example struct {
	Points PointCloud
	Label  int
}

// A Corpus provides random access to labeled examples.
type Corpus interface {
	Len() int
	Example(i int) (*Example, error)
}

// A MemoryCorpus is a Corpus stored entirely in memory.
type MemoryCorpus []*Example

func (m MemoryCorpus) Len() int {
	return len(m)
}

func (m MemoryCorpus) Example(i int) (*Example, error) {
	if i < 0 || i >= len(m) {
		return nil, errors.Errorf("example %d out of range [0, %d)", i, len(m))
	}
	return m[i], nil
}

// A Batch is a group of examples processed together.
type Batch struct {
	Clouds []PointCloud
	Labels []int
}

func (b *Batch) Len() int {
	return len(b.Labels)
}

// A Batcher shuffles a corpus and splits it into fixed-size batches,
// dropping the last incomplete batch.
type Batcher struct {
	Corpus    Corpus
	BatchSize int
	Rand      *rand.Rand
}

// EffectiveBatchSize is BatchSize, reduced to the corpus size for corpora
// smaller than one batch.
func (b *Batcher) EffectiveBatchSize() int {
	if n := b.Corpus.Len(); n < b.BatchSize {
		return n
	}
	return b.BatchSize
}

// Epoch produces one shuffled pass over the corpus.
func (b *Batcher) Epoch() ([]*Batch, error) {
	if b.Corpus.Len() == 0 {
		return nil, ErrCorpusEmpty
	}
	if b.BatchSize <= 0 {
		return nil, errors.Errorf("invalid batch size: %d", b.BatchSize)
	}
	batchSize := b.EffectiveBatchSize()
	perm := b.Rand.Perm(b.Corpus.Len())
	var res []*Batch
	for start := 0; start+batchSize <= len(perm); start += batchSize {
		batch := &Batch{}
		for _, idx := range perm[start : start+batchSize] {
			ex, err := b.Corpus.Example(idx)
			if err != nil {
				return nil, errors.Wrap(err, "create batch")
			}
			batch.Clouds = append(batch.Clouds, ex.Points)
			batch.Labels = append(batch.Labels, ex.Label)
		}
		res = append(res, batch)
	}
	return res, nil
}
