package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shapeforge/primgan/catalog"
	"github.com/shapeforge/primgan/primgen"
	"github.com/unixpickle/essentials"
)

func main() {
	var config primgen.Config
	var addr string
	var dbPath string
	var frontendDir string
	flag.StringVar(&config.CheckpointPath, "model", "pcgan_output/model_final.bin",
		"path to trained checkpoint")
	flag.StringVar(&config.TextureDir, "textures", "textures", "directory of texture images")
	flag.StringVar(&config.OutputDir, "output-dir", "generated", "directory for generated assets")
	flag.Int64Var(&config.Seed, "seed", 0, "random seed (0 for time-based)")
	flag.StringVar(&addr, "addr", ":8000", "address to listen on")
	flag.StringVar(&dbPath, "db", "", "optional catalog database for the offered options")
	flag.StringVar(&frontendDir, "frontend", "", "optional directory of static frontend files")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: serve [flags]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()

	log.Println("Loading model...")
	engine, err := primgen.Open(config)
	essentials.Must(err)
	essentials.Must(os.MkdirAll(config.OutputDir, 0755))

	server := &primgen.Server{
		Engine:      engine,
		FrontendDir: frontendDir,
	}
	if dbPath != "" {
		db, err := catalog.Open(dbPath)
		if err != nil {
			log.Printf("catalog unavailable, using default options: %v", err)
		} else {
			defer db.Close()
			if textures, err := db.Textures(); err == nil {
				for _, t := range textures {
					server.Textures = append(server.Textures, t.Name)
				}
			}
			server.Options = func() ([]string, []string, error) {
				taxonomy, err := db.Taxonomy()
				if err != nil {
					return nil, nil, err
				}
				textures, err := db.Textures()
				if err != nil {
					return nil, nil, err
				}
				var names []string
				for _, t := range textures {
					names = append(names, t.Name)
				}
				return taxonomy.Names(), names, nil
			}
		}
	}

	log.Printf("Listening on %s...", addr)
	essentials.Must(server.Router().Run(addr))
}
