package objfile

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// A Material is one newmtl block of an MTL file.
type Material struct {
	Name string

	Ambient  [3]float64
	Diffuse  [3]float64
	Specular [3]float64

	// SpecularExponent is the Ns value.
	SpecularExponent float64

	// DiffuseMap is the file name of the diffuse texture, if any.
	DiffuseMap string
}

// ParseMTL decodes the materials of an MTL file, ignoring unsupported
// statements.
func ParseMTL(r io.Reader) ([]*Material, error) {
	var res []*Material
	var cur *Material
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
		if fields[0] == "newmtl" {
			cur = &Material{Name: strings.Join(fields[1:], " ")}
			res = append(res, cur)
			continue
		}
		if cur == nil {
			return nil, errors.Errorf("parse mtl: line %d: statement before newmtl", lineNum)
		}
		var err error
		switch fields[0] {
		case "Kd":
			cur.Diffuse, err = parseColor(fields[1:])
		case "Ka":
			cur.Ambient, err = parseColor(fields[1:])
		case "Ks":
			cur.Specular, err = parseColor(fields[1:])
		case "Ns":
			var values []float64
			if values, err = parseFloats(fields[1:], 1); err == nil {
				cur.SpecularExponent = values[0]
			}
		case "map_Kd":
			// Options before the file name are not supported.
			cur.DiffuseMap = fields[len(fields)-1]
		}
		if err != nil {
			return nil, errors.Wrapf(err, "parse mtl: line %d", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "parse mtl")
	}
	return res, nil
}

func parseColor(fields []string) ([3]float64, error) {
	values, err := parseFloats(fields, 3)
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{values[0], values[1], values[2]}, nil
}
