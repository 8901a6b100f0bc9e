package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shapeforge/primgan/primgen"
	"github.com/unixpickle/essentials"
)

func main() {
	var config primgen.Config
	var color string
	var texture string
	var count int
	var zipName string
	flag.StringVar(&config.CheckpointPath, "model", "pcgan_output/model_final.bin",
		"path to trained checkpoint")
	flag.StringVar(&config.TextureDir, "textures", "textures", "directory of texture images")
	flag.StringVar(&config.OutputDir, "output-dir", "generated", "directory for generated assets")
	flag.IntVar(&config.MaxAttempts, "max-attempts", primgen.DefaultMaxAttempts,
		"latents to try before giving up on a degenerate fit")
	flag.Int64Var(&config.Seed, "seed", 0, "random seed (0 for time-based)")
	flag.StringVar(&color, "color", "", "base color as #RRGGBB, a color name or r,g,b")
	flag.StringVar(&texture, "texture", "", "texture name prefix (empty for none)")
	flag.IntVar(&count, "count", 1, "number of assets to generate")
	flag.StringVar(&zipName, "zip", "", "if set, also package each asset as <zip>.zip")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: generate_asset [flags] <shape>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}
	shape := args[0]

	log.Println("Loading model...")
	engine, err := primgen.Open(config)
	essentials.Must(err)

	for i := 0; i < count; i++ {
		log.Printf("Generating %s (%d/%d)...", shape, i+1, count)
		paths, err := engine.GenerateAsset(shape, color, texture)
		essentials.Must(err)
		fmt.Println(paths.Geometry)
		fmt.Println(paths.Material)
		for _, t := range paths.Textures {
			fmt.Println(t)
		}
		if zipName != "" {
			zipPath, err := paths.Zip(zipName)
			essentials.Must(err)
			fmt.Println(zipPath)
		}
	}
}
