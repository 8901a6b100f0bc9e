package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shapeforge/primgan/export"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/shapeforge/primgan/primfit"
	"github.com/shapeforge/primgan/shapes"
	"github.com/unixpickle/essentials"
)

func main() {
	var color string
	var texture string
	var textureDir string
	var normalize bool
	flag.StringVar(&color, "color", "", "base color for OBJ outputs")
	flag.StringVar(&texture, "texture", "", "texture name prefix for OBJ outputs")
	flag.StringVar(&textureDir, "textures", "textures", "directory of texture images")
	flag.BoolVar(&normalize, "normalize", false, "center and scale the points before fitting")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: fit_points [flags] <shape> <input.ply> <output.obj|output.stl>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 3 {
		flag.Usage()
		os.Exit(1)
	}
	shapeName, inputPath, outputPath := args[0], args[1], args[2]
	class, err := shapes.ParseShapeClass(shapeName)
	essentials.Must(err)

	log.Println("Loading points...")
	points, err := pointcloud.LoadPLY(inputPath)
	essentials.Must(err)
	if normalize {
		points = points.Normalize()
	}

	log.Printf("Fitting %s to %d points...", class, len(points))
	mesh, err := primfit.Fit(points, class)
	essentials.Must(err)
	log.Printf(" - %d vertices, %d faces", len(mesh.Vertices), len(mesh.Faces))

	switch strings.ToLower(filepath.Ext(outputPath)) {
	case ".stl":
		essentials.Must(mesh.ToModel3D().SaveGroupedSTL(outputPath))
	case ".obj":
		baseColor, err := export.ParseColor(color)
		essentials.Must(err)
		name := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
		artifact, err := export.Export(mesh, &export.Options{
			Name:        name,
			BaseColor:   baseColor,
			TextureName: texture,
			TextureDir:  textureDir,
		})
		essentials.Must(err)
		saved, err := artifact.Save(filepath.Dir(outputPath))
		essentials.Must(err)
		log.Printf("Saved %s and %s", saved.Geometry, saved.Material)
	default:
		essentials.Die("unsupported output extension:", filepath.Ext(outputPath))
	}
}
