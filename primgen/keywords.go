package primgen

import (
	"strings"
	"unicode"

	"github.com/shapeforge/primgan/shapes"
	"golang.org/x/image/colornames"
)

// Attributes are the generation options named in a free-form request.
// Empty fields were not mentioned.
type Attributes struct {
	Shape   string `json:"shape,omitempty"`
	Color   string `json:"color,omitempty"`
	Texture string `json:"texture,omitempty"`
}

// ExtractAttributes scans text for the first word naming a shape, a color
// and one of the given textures.
func ExtractAttributes(text string, textures []string) *Attributes {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	textureSet := map[string]bool{}
	for _, t := range textures {
		textureSet[strings.ToLower(t)] = true
	}

	res := &Attributes{}
	for _, word := range words {
		if res.Shape == "" {
			if class, err := shapes.ParseShapeClass(singular(word)); err == nil {
				res.Shape = class.String()
				continue
			}
		}
		if res.Color == "" {
			if _, ok := colornames.Map[word]; ok {
				res.Color = word
				continue
			}
		}
		if res.Texture == "" && textureSet[word] {
			res.Texture = word
		}
	}
	return res
}

func singular(word string) string {
	if strings.HasSuffix(word, "es") {
		if _, err := shapes.ParseShapeClass(word[:len(word)-2]); err == nil {
			return word[:len(word)-2]
		}
	}
	return strings.TrimSuffix(word, "s")
}
