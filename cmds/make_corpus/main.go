package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/shapeforge/primgan/catalog"
	"github.com/shapeforge/primgan/export"
	"github.com/shapeforge/primgan/primfit"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/essentials"
)

func main() {
	var dbPath string
	var textureDir string
	var textureNames flagStrings = []string{"wood", "stone", "metallic"}
	var colorNames flagStrings = []string{
		"red", "blue", "green", "yellow", "purple", "orange", "pink", "white", "black", "cyan",
	}
	var perShape int
	var scaleJitter float64
	var seed int64
	flag.StringVar(&dbPath, "db", "catalog.db", "path to catalog database")
	flag.StringVar(&textureDir, "textures", "textures", "directory of texture images")
	flag.Var(&textureNames, "texture-names", "comma-separated texture names to seed")
	flag.Var(&colorNames, "colors", "comma-separated color names to sample from")
	flag.IntVar(&perShape, "per-shape", 1, "number of objects to create for each shape")
	flag.Float64Var(&scaleJitter, "scale-jitter", 0, "maximum relative change of object scale")
	flag.Int64Var(&seed, "seed", 0, "random seed (0 for time-based)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: make_corpus [flags]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) != 0 {
		flag.Usage()
		os.Exit(1)
	}
	if scaleJitter < 0 || scaleJitter >= 1 {
		essentials.Die("-scale-jitter must be in [0, 1)")
	}

	r := rand.New(rand.NewSource(seed))
	if seed == 0 {
		r = rand.New(rand.NewSource(rand.Int63()))
	}

	log.Println("Opening catalog...")
	db, err := catalog.Open(dbPath)
	essentials.Must(err)
	defer db.Close()

	log.Println("Seeding shapes and textures...")
	essentials.Must(db.SeedShapes(shapes.DefaultNames()))
	essentials.Must(db.SeedTextures(textureNames))

	log.Println("Creating primitives...")
	for _, class := range shapes.AllShapeClasses() {
		for i := 0; i < perShape; i++ {
			colorName := colorNames[r.Intn(len(colorNames))]
			color, err := export.ParseColor(colorName)
			essentials.Must(err)
			texture := textureNames[r.Intn(len(textureNames))]
			scale := 1 + scaleJitter*(2*r.Float64()-1)

			mesh, err := primfit.CanonicalMesh(class, scale)
			essentials.Must(err)
			artifact, err := export.Export(mesh, &export.Options{
				Name:        fmt.Sprintf("%s_%s_%s_%d", class, colorName, texture, i),
				BaseColor:   color,
				TextureName: texture,
				TextureDir:  textureDir,
				Rand:        r,
			})
			essentials.Must(err)
			obj, err := db.AddArtifact(class.String(), colorName, texture, artifact)
			essentials.Must(err)
			log.Printf(" - object %d: %s", obj.ID, obj.Description)
		}
	}
}

type flagStrings []string

func (f *flagStrings) String() string {
	return strings.Join(*f, ",")
}

func (f *flagStrings) Set(value string) error {
	var res []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return fmt.Errorf("empty entry in %q", value)
		}
		res = append(res, part)
	}
	*f = res
	return nil
}
