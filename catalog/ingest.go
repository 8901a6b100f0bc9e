package catalog

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/export"
)

// AddArtifact stores an exported asset as an object of the named shape. If
// texture is not empty it must already be in the catalog.
func (c *Catalog) AddArtifact(shape, color, texture string, a *export.Artifact) (*Object, error) {
	s, err := c.ShapeByName(shape)
	if err != nil {
		return nil, errors.Wrap(err, "add artifact")
	}
	obj := &Object{
		ShapeID:     s.ID,
		Color:       color,
		FileName:    a.Name + ".obj",
		OBJData:     a.OBJ,
		MTLData:     a.MTL,
		Description: Describe(shape, color, texture, a.TexturePath != ""),
	}
	if texture != "" {
		t, err := c.TextureByName(texture)
		if err != nil {
			return nil, errors.Wrap(err, "add artifact")
		}
		obj.TextureID = &t.ID
	}
	if err := c.AddObject(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Describe creates the free-form description stored with an object.
func Describe(shape, color, texture string, textured bool) string {
	if texture == "" || !textured {
		return fmt.Sprintf("%s, %s, without texture", shape, color)
	}
	return fmt.Sprintf("%s, %s, with %s texture", shape, color, texture)
}
