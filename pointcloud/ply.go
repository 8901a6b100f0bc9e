package pointcloud

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/fileformats"
	"github.com/unixpickle/model3d/model3d"
)

// WritePLY encodes the cloud as an ASCII PLY file with one vertex element.
func WritePLY(w io.Writer, p PointCloud) error {
	return WritePLYFormat(w, p, fileformats.PLYFormatASCII)
}

// WritePLYFormat is like WritePLY, but with an explicit ASCII or binary
// encoding.
func WritePLYFormat(w io.Writer, p PointCloud, format fileformats.PLYFormat) error {
	if len(p) == 0 {
		return errors.New("write ply: empty point cloud")
	}
	header := &fileformats.PLYHeader{
		Format: format,
		Elements: []*fileformats.PLYElement{
			{
				Name:  "vertex",
				Count: int64(len(p)),
				Properties: []*fileformats.PLYProperty{
					{Name: "x", ElemType: fileformats.PLYPropertyTypeFloat},
					{Name: "y", ElemType: fileformats.PLYPropertyTypeFloat},
					{Name: "z", ElemType: fileformats.PLYPropertyTypeFloat},
				},
			},
		},
	}
	pw, err := fileformats.NewPLYWriter(w, header)
	if err != nil {
		return errors.Wrap(err, "write ply")
	}
	for _, c := range p {
		err := pw.Write([]fileformats.PLYValue{
			fileformats.PLYValueFloat32{Value: float32(c.X)},
			fileformats.PLYValueFloat32{Value: float32(c.Y)},
			fileformats.PLYValueFloat32{Value: float32(c.Z)},
		})
		if err != nil {
			return errors.Wrap(err, "write ply")
		}
	}
	return nil
}

// ReadPLY decodes the vertices of an ASCII or binary PLY file. The x, y and
// z vertex properties are looked up by name, and other elements and
// properties are ignored.
func ReadPLY(r io.Reader) (PointCloud, error) {
	pr, err := fileformats.NewPLYReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "read ply")
	}
	var res PointCloud
	var indices []int
	for {
		values, elem, err := pr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrap(err, "read ply")
		}
		if elem.Name != "vertex" {
			continue
		}
		if indices == nil {
			indices, err = coordIndices(elem)
			if err != nil {
				return nil, err
			}
		}
		var coords [3]float64
		for i, idx := range indices {
			x, err := plyFloat(values[idx])
			if err != nil {
				return nil, errors.Wrap(err, "read ply")
			}
			coords[i] = x
		}
		res = append(res, model3d.NewCoord3DArray(coords))
	}
	if len(res) == 0 {
		return nil, errors.New("read ply: no vertices")
	}
	return res, nil
}

func coordIndices(elem *fileformats.PLYElement) ([]int, error) {
	var res []int
	for _, name := range []string{"x", "y", "z"} {
		idx := -1
		for i, prop := range elem.Properties {
			if prop.Name == name && prop.LenType == fileformats.PLYPropertyTypeNone {
				idx = i
				break
			}
		}
		if idx == -1 {
			return nil, errors.Errorf("read ply: vertex element has no %s property", name)
		}
		res = append(res, idx)
	}
	return res, nil
}

func plyFloat(v fileformats.PLYValue) (float64, error) {
	switch v := v.(type) {
	case fileformats.PLYValueFloat32:
		return float64(v.Value), nil
	case fileformats.PLYValueFloat64:
		return v.Value, nil
	case fileformats.PLYValueInt8:
		return float64(v.Value), nil
	case fileformats.PLYValueUint8:
		return float64(v.Value), nil
	case fileformats.PLYValueInt16:
		return float64(v.Value), nil
	case fileformats.PLYValueUint16:
		return float64(v.Value), nil
	case fileformats.PLYValueInt32:
		return float64(v.Value), nil
	case fileformats.PLYValueUint32:
		return float64(v.Value), nil
	case fileformats.PLYValueInt64:
		return float64(v.Value), nil
	case fileformats.PLYValueUint64:
		return float64(v.Value), nil
	}
	return 0, errors.Errorf("unexpected coordinate value %T", v)
}

// SavePLY writes the cloud to a file.
func SavePLY(path string, p PointCloud) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "save ply")
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "save ply")
		}
	}()
	return WritePLY(f, p)
}

// LoadPLY reads a cloud from a file.
func LoadPLY(path string) (PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "load ply")
	}
	defer f.Close()
	return ReadPLY(f)
}
