package pcgan

import (
	"bufio"
	"encoding/binary"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/shapes"
)

const (
	checkpointMagic   = "PGAN"
	checkpointVersion = 1

	maxNameLength = 1 << 12
)

var (
	// ErrMissingModel is returned when a checkpoint cannot be found.
	ErrMissingModel = errors.New("model checkpoint not found")

	// ErrNonFinite is returned when an iteration produces NaN or Inf.
	ErrNonFinite = errors.New("non-finite value during training")
)

// A Checkpoint is the persisted state of a training run.
type Checkpoint struct {
	Iteration int
	Epoch     int
	Taxonomy  *shapes.Taxonomy
	Generator *Generator

	// Critic may be nil for inference-only checkpoints.
	Critic *Critic
}

// WriteCheckpoint serializes c in a 32-bit precision binary format.
func WriteCheckpoint(w io.Writer, c *Checkpoint) error {
	if err := writeCheckpoint(w, c); err != nil {
		return errors.Wrap(err, "write checkpoint")
	}
	return nil
}

func writeCheckpoint(w io.Writer, c *Checkpoint) error {
	config := &c.Generator.Config
	if c.Taxonomy.Len() != config.NumClasses {
		return errors.Errorf("taxonomy has %d classes but model has %d", c.Taxonomy.Len(),
			config.NumClasses)
	}
	if _, err := io.WriteString(w, checkpointMagic); err != nil {
		return err
	}
	header := []int64{checkpointVersion, int64(c.Iteration), int64(c.Epoch)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := writeModelConfig(w, config); err != nil {
		return err
	}
	names := c.Taxonomy.Names()
	if err := writeInts(w, len(names)); err != nil {
		return err
	}
	for _, name := range names {
		if err := writeString(w, name); err != nil {
			return err
		}
	}
	if err := writeParams(w, c.Generator.Params()); err != nil {
		return err
	}
	var hasCritic uint8
	if c.Critic != nil {
		hasCritic = 1
	}
	if err := binary.Write(w, binary.LittleEndian, hasCritic); err != nil {
		return err
	}
	if c.Critic != nil {
		return writeParams(w, c.Critic.Params())
	}
	return nil
}

// ReadCheckpoint reads the output written by WriteCheckpoint.
func ReadCheckpoint(r io.Reader) (*Checkpoint, error) {
	res, err := readCheckpoint(r)
	if err != nil {
		return nil, errors.Wrap(err, "read checkpoint")
	}
	return res, nil
}

func readCheckpoint(r io.Reader) (*Checkpoint, error) {
	magic := make([]byte, len(checkpointMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	if string(magic) != checkpointMagic {
		return nil, errors.New("bad magic number")
	}
	var header [3]int64
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header[0] != checkpointVersion {
		return nil, errors.Errorf("unsupported version %d", header[0])
	}
	config, err := readModelConfig(r)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	numNames, err := readInt(r)
	if err != nil {
		return nil, err
	} else if numNames > maxNameLength {
		return nil, errors.Errorf("invalid class count %d", numNames)
	}
	names := make([]string, numNames)
	for i := range names {
		if names[i], err = readString(r); err != nil {
			return nil, err
		}
	}
	taxonomy, err := shapes.NewTaxonomy(names)
	if err != nil {
		return nil, err
	}
	if taxonomy.Len() != config.NumClasses {
		return nil, errors.Errorf("taxonomy has %d classes but model has %d", taxonomy.Len(),
			config.NumClasses)
	}

	// Initial weights are overwritten below.
	gen := rand.New(rand.NewSource(0))
	res := &Checkpoint{
		Iteration: int(header[1]),
		Epoch:     int(header[2]),
		Taxonomy:  taxonomy,
		Generator: NewGenerator(gen, config),
	}
	if err := readParams(r, res.Generator.Params()); err != nil {
		return nil, errors.Wrap(err, "generator")
	}
	var hasCritic uint8
	if err := binary.Read(r, binary.LittleEndian, &hasCritic); err != nil {
		return nil, err
	}
	if hasCritic != 0 {
		res.Critic = NewCritic(gen, config)
		if err := readParams(r, res.Critic.Params()); err != nil {
			return nil, errors.Wrap(err, "critic")
		}
	}
	return res, nil
}

// SaveCheckpoint writes c to a file, replacing it atomically.
func SaveCheckpoint(path string, c *Checkpoint) error {
	tmpPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "save checkpoint")
	}
	w := bufio.NewWriter(f)
	err = WriteCheckpoint(w, c)
	if err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "save checkpoint")
	}
	return errors.Wrap(os.Rename(tmpPath, path), "save checkpoint")
}

// LoadCheckpoint reads a checkpoint from a file.
//
// Returns ErrMissingModel if the file does not exist.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrMissingModel, path)
	} else if err != nil {
		return nil, errors.Wrap(err, "load checkpoint")
	}
	defer f.Close()
	return ReadCheckpoint(bufio.NewReader(f))
}

// LoadGenerator reads the generator and taxonomy from a checkpoint and
// freezes the generator for inference.
func LoadGenerator(path string) (*Generator, *shapes.Taxonomy, error) {
	ckpt, err := LoadCheckpoint(path)
	if err != nil {
		return nil, nil, err
	}
	ckpt.Generator.Freeze()
	return ckpt.Generator, ckpt.Taxonomy, nil
}

func writeModelConfig(w io.Writer, m *ModelConfig) error {
	err := writeInts(w, m.NumClasses, m.NumPoints, m.LatentDim, m.CondDim, m.HiddenDim,
		len(m.CriticWidths))
	if err != nil {
		return err
	}
	if err := writeInts(w, m.CriticWidths...); err != nil {
		return err
	}
	if err := writeInts(w, len(m.CriticHead)); err != nil {
		return err
	}
	return writeInts(w, m.CriticHead...)
}

func readModelConfig(r io.Reader) (*ModelConfig, error) {
	var dims [6]int32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, err
	}
	res := &ModelConfig{
		NumClasses: int(dims[0]),
		NumPoints:  int(dims[1]),
		LatentDim:  int(dims[2]),
		CondDim:    int(dims[3]),
		HiddenDim:  int(dims[4]),
	}
	var err error
	if res.CriticWidths, err = readIntList(r, int(dims[5])); err != nil {
		return nil, err
	}
	numHead, err := readInt(r)
	if err != nil {
		return nil, err
	}
	if res.CriticHead, err = readIntList(r, numHead); err != nil {
		return nil, err
	}
	return res, nil
}

func writeParams(w io.Writer, p *ParamSet) error {
	names := p.Names()
	if err := writeInts(w, len(names)); err != nil {
		return err
	}
	for _, name := range names {
		v := p.Get(name)
		if err := writeString(w, name); err != nil {
			return err
		}
		if err := writeInts(w, v.Rows(), v.Cols()); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, v.Value.Data); err != nil {
			return err
		}
	}
	return nil
}

// readParams fills the values of p, which must list exactly the stored
// names with the stored shapes.
func readParams(r io.Reader, p *ParamSet) error {
	count, err := readInt(r)
	if err != nil {
		return err
	}
	if count != len(p.Names()) {
		return errors.Errorf("expected %d parameters but found %d", len(p.Names()), count)
	}
	for i := 0; i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return err
		}
		v := p.Get(name)
		if v == nil {
			return errors.Errorf("unexpected parameter: %s", name)
		}
		shape, err := readIntList(r, 2)
		if err != nil {
			return err
		}
		if shape[0] != v.Rows() || shape[1] != v.Cols() {
			return errors.Errorf("parameter %s has shape %dx%d, expected %dx%d", name,
				shape[0], shape[1], v.Rows(), v.Cols())
		}
		if err := binary.Read(r, binary.LittleEndian, v.Value.Data); err != nil {
			return err
		}
	}
	return nil
}

func writeInts(w io.Writer, values ...int) error {
	data := make([]int32, len(values))
	for i, x := range values {
		data[i] = int32(x)
	}
	return binary.Write(w, binary.LittleEndian, data)
}

func readInt(r io.Reader) (int, error) {
	var x int32
	if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
		return 0, err
	}
	if x < 0 {
		return 0, errors.Errorf("negative count %d", x)
	}
	return int(x), nil
}

func readIntList(r io.Reader, n int) ([]int, error) {
	if n < 0 || n > maxNameLength {
		return nil, errors.Errorf("invalid list length %d", n)
	}
	data := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	res := make([]int, n)
	for i, x := range data {
		res[i] = int(x)
	}
	return res, nil
}

func writeString(w io.Writer, s string) error {
	if err := writeInts(w, len(s)); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readInt(r)
	if err != nil {
		return "", err
	}
	if n > maxNameLength {
		return "", errors.Errorf("string too long: %d", n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}
