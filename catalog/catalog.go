// Package catalog stores primitive shapes, textures and example objects in a
// SQLite database.
package catalog

import (
	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/shapes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Shape struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (Shape) TableName() string {
	return "shapes"
}

type Texture struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

func (Texture) TableName() string {
	return "textures"
}

// An Object is a stored mesh asset of a known shape.
type Object struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ShapeID     uint   `gorm:"index;not null" json:"shape_id"`
	Color       string `json:"color"`
	TextureID   *uint  `json:"texture_id"`
	FileName    string `json:"file_name"`
	OBJData     []byte `gorm:"column:obj_data;type:BLOB" json:"-"`
	MTLData     []byte `gorm:"column:mtl_data;type:BLOB" json:"-"`
	Description string `json:"description"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
}

func (Object) TableName() string {
	return "objects"
}

// A Catalog is an open database.
type Catalog struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates its tables.
func Open(path string) (*Catalog, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	if err := db.AutoMigrate(&Shape{}, &Texture{}, &Object{}); err != nil {
		return nil, errors.Wrap(err, "migrate catalog")
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return errors.Wrap(err, "close catalog")
	}
	return errors.Wrap(sqlDB.Close(), "close catalog")
}

// SeedShapes inserts the named shapes that are missing, in order.
func (c *Catalog) SeedShapes(names []string) error {
	for _, name := range names {
		if _, err := shapes.ParseShapeClass(name); err != nil {
			return err
		}
		if err := c.db.Where(Shape{Name: name}).FirstOrCreate(&Shape{}).Error; err != nil {
			return errors.Wrap(err, "seed shapes")
		}
	}
	return nil
}

// SeedTextures inserts the named textures that are missing, in order.
func (c *Catalog) SeedTextures(names []string) error {
	for _, name := range names {
		if err := c.db.Where(Texture{Name: name}).FirstOrCreate(&Texture{}).Error; err != nil {
			return errors.Wrap(err, "seed textures")
		}
	}
	return nil
}

// Shapes lists the shapes ordered by ID.
func (c *Catalog) Shapes() ([]Shape, error) {
	var res []Shape
	if err := c.db.Order("id").Find(&res).Error; err != nil {
		return nil, errors.Wrap(err, "list shapes")
	}
	return res, nil
}

// Taxonomy labels the shapes in ID order.
func (c *Catalog) Taxonomy() (*shapes.Taxonomy, error) {
	list, err := c.Shapes()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list))
	for i, s := range list {
		names[i] = s.Name
	}
	return shapes.NewTaxonomy(names)
}

// Textures lists the textures ordered by ID.
func (c *Catalog) Textures() ([]Texture, error) {
	var res []Texture
	if err := c.db.Order("id").Find(&res).Error; err != nil {
		return nil, errors.Wrap(err, "list textures")
	}
	return res, nil
}

// ShapeByName looks up a shape.
func (c *Catalog) ShapeByName(name string) (*Shape, error) {
	var res Shape
	if err := c.db.Where("name = ?", name).First(&res).Error; err != nil {
		return nil, errors.Wrapf(err, "find shape %q", name)
	}
	return &res, nil
}

// TextureByName looks up a texture.
func (c *Catalog) TextureByName(name string) (*Texture, error) {
	var res Texture
	if err := c.db.Where("name = ?", name).First(&res).Error; err != nil {
		return nil, errors.Wrapf(err, "find texture %q", name)
	}
	return &res, nil
}

// AddObject stores an object and sets its ID.
func (c *Catalog) AddObject(o *Object) error {
	return errors.Wrap(c.db.Create(o).Error, "add object")
}

// Objects lists the objects that have geometry, ordered by ID.
func (c *Catalog) Objects() ([]Object, error) {
	var res []Object
	if err := c.db.Where("obj_data IS NOT NULL").Order("id").Find(&res).Error; err != nil {
		return nil, errors.Wrap(err, "list objects")
	}
	return res, nil
}
