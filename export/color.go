// Package export turns fitted primitive meshes into textured OBJ/MTL assets.
package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned for colors that cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// A Color is an RGB triple with components in [0, 1].
type Color [3]float64

// DefaultColor is used when no color is requested.
var DefaultColor = Color{0.8, 0.8, 0.8}

// ParseColor accepts "#RRGGBB", "#RGB", CSS color names such as "red", and
// comma-separated triples such as "1,0.5,0".
//
// Errors wrap ErrInvalidColor.
func ParseColor(s string) (Color, error) {
	c, err := parseColor(s)
	if err != nil {
		return Color{}, errors.Wrap(ErrInvalidColor, err.Error())
	}
	return c, nil
}

func parseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultColor, nil
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 3 {
			return Color{}, errors.Errorf("parse color %q: expected three components", s)
		}
		var values []float64
		for _, p := range parts {
			x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Color{}, errors.Wrapf(err, "parse color %q", s)
			}
			values = append(values, x)
		}
		return NewColor(values[0], values[1], values[2])
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}, nil
	}
	return Color{}, errors.Errorf("parse color %q: unknown format", s)
}

// NewColor validates an RGB triple.
func NewColor(r, g, b float64) (Color, error) {
	c := Color{r, g, b}
	for _, x := range c {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return Color{}, errors.Errorf("color component %f outside of [0, 1]", x)
		}
	}
	return c, nil
}

func parseHex(s string) (Color, error) {
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return Color{}, errors.Errorf("parse color #%s: expected 3 or 6 hex digits", s)
	}
	var res Color
	for i := range res {
		x, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, errors.Wrapf(err, "parse color #%s", s)
		}
		res[i] = float64(x) / 255
	}
	return res, nil
}
