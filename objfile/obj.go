// Package objfile reads Wavefront OBJ geometry and MTL material files.
//
// Files are written with the OBJFile and MTLFile types of
// github.com/unixpickle/model3d/fileformats, which has no reader.
package objfile

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
)

// A Corner references the attributes of one face corner. Indices are
// zero-based, and -1 means the attribute is absent.
type Corner struct {
	Vertex int
	UV     int
	Normal int
}

// A FaceGroup is a run of triangles sharing one material.
type FaceGroup struct {
	Material string
	Faces    [][3]Corner
}

// An OBJ is the content of a Wavefront OBJ file restricted to triangles.
type OBJ struct {
	MaterialLibs []string
	Vertices     []model3d.Coord3D
	UVs          []model2d.Coord
	Normals      []model3d.Coord3D
	Groups       []*FaceGroup
}

// NumFaces counts the triangles in every group.
func (o *OBJ) NumFaces() int {
	var res int
	for _, g := range o.Groups {
		res += len(g.Faces)
	}
	return res
}

// Triangles creates a triangle soup from the faces of every group.
func (o *OBJ) Triangles() []*model3d.Triangle {
	var res []*model3d.Triangle
	for _, g := range o.Groups {
		for _, f := range g.Faces {
			res = append(res, &model3d.Triangle{
				o.Vertices[f[0].Vertex],
				o.Vertices[f[1].Vertex],
				o.Vertices[f[2].Vertex],
			})
		}
	}
	return res
}

// ParseOBJ decodes an OBJ file. Polygons with more than three corners are
// split into triangle fans, and negative indices are resolved relative to
// the end of the current attribute lists. Unsupported statements are
// ignored.
func ParseOBJ(r io.Reader) (*OBJ, error) {
	res := &OBJ{}
	var group *FaceGroup
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "mtllib":
			res.MaterialLibs = append(res.MaterialLibs, strings.Join(fields[1:], " "))
		case "v":
			var c []float64
			if c, err = parseFloats(fields[1:], 3); err == nil {
				res.Vertices = append(res.Vertices, model3d.XYZ(c[0], c[1], c[2]))
			}
		case "vt":
			var c []float64
			if c, err = parseFloats(fields[1:], 2); err == nil {
				res.UVs = append(res.UVs, model2d.XY(c[0], c[1]))
			}
		case "vn":
			var c []float64
			if c, err = parseFloats(fields[1:], 3); err == nil {
				res.Normals = append(res.Normals, model3d.XYZ(c[0], c[1], c[2]))
			}
		case "usemtl":
			group = &FaceGroup{Material: strings.Join(fields[1:], " ")}
			res.Groups = append(res.Groups, group)
		case "f":
			if len(fields) < 4 {
				err = errors.New("face has fewer than three corners")
				break
			}
			corners := make([]Corner, len(fields)-1)
			for i, field := range fields[1:] {
				if corners[i], err = res.parseCorner(field); err != nil {
					break
				}
			}
			if err != nil {
				break
			}
			if group == nil {
				group = &FaceGroup{}
				res.Groups = append(res.Groups, group)
			}
			for i := 2; i < len(corners); i++ {
				group.Faces = append(group.Faces, [3]Corner{corners[0], corners[i-1], corners[i]})
			}
		}
		if err != nil {
			return nil, errors.Wrapf(err, "parse obj: line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "parse obj")
	}
	return res, nil
}

func (o *OBJ) parseCorner(field string) (Corner, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return Corner{}, errors.Errorf("invalid face corner %q", field)
	}
	res := Corner{Vertex: -1, UV: -1, Normal: -1}
	counts := []int{len(o.Vertices), len(o.UVs), len(o.Normals)}
	targets := []*int{&res.Vertex, &res.UV, &res.Normal}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return Corner{}, errors.Errorf("missing vertex in corner %q", field)
			}
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return Corner{}, err
		}
		if idx < 0 {
			idx += counts[i]
		} else {
			idx--
		}
		if idx < 0 || idx >= counts[i] {
			return Corner{}, errors.Errorf("index out of range in corner %q", field)
		}
		*targets[i] = idx
	}
	return res, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, errors.Errorf("expected %d values but got %d", n, len(fields))
	}
	res := make([]float64, n)
	for i := range res {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		res[i] = x
	}
	return res, nil
}
