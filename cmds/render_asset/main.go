package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/shapeforge/primgan/objfile"
	"github.com/shapeforge/primgan/pointcloud"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/model3d/model3d"
	"github.com/unixpickle/model3d/render3d"
)

func main() {
	var gridSize int
	var imageSize int
	var fps float64
	var frames int
	var pointRadius float64
	flag.IntVar(&gridSize, "grid-size", 3, "grid size (used for rows and columns)")
	flag.IntVar(&imageSize, "image-size", 300, "size of each image in the grid")
	flag.Float64Var(&fps, "fps", 10.0, "FPS for GIF outputs")
	flag.IntVar(&frames, "frames", 20, "total number of frames for GIF outputs")
	flag.Float64Var(&pointRadius, "point-radius", 0.01, "radius of rendered points for PLY inputs")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: render_asset [flags] <input.obj|input.ply> <output.png|output.gif>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath, outputPath := args[0], args[1]

	log.Println("Loading input...")
	var mesh *model3d.Mesh
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".ply":
		cloud, err := pointcloud.LoadPLY(inputPath)
		essentials.Must(err)
		mesh = model3d.NewMesh()
		for _, p := range cloud {
			mesh.AddMesh(model3d.NewMeshIcosphere(p, pointRadius, 1))
		}
	case ".obj":
		f, err := os.Open(inputPath)
		essentials.Must(err)
		obj, err := objfile.ParseOBJ(f)
		f.Close()
		essentials.Must(err)
		mesh = model3d.NewMeshTriangles(obj.Triangles())
	default:
		essentials.Die("unsupported input extension:", filepath.Ext(inputPath))
	}

	log.Println("Creating renderable object...")
	object := render3d.Objectify(model3d.MeshToCollider(mesh), nil)

	log.Println("Rendering...")
	if strings.ToLower(filepath.Ext(outputPath)) == ".gif" {
		essentials.Must(
			render3d.SaveRotatingGIF(
				outputPath,
				object,
				model3d.Z(1),
				model3d.YZ(-1, 0.1).Normalize(),
				imageSize,
				frames,
				fps,
				nil,
			),
		)
	} else {
		essentials.Must(
			render3d.SaveRandomGrid(outputPath, object, gridSize, gridSize, imageSize, nil),
		)
	}
}
