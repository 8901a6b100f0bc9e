package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/shapeforge/primgan/catalog"
	"github.com/shapeforge/primgan/pcgan"
	"github.com/unixpickle/essentials"
)

func main() {
	var dbPath string
	var configPath string
	var resumePath string
	var outputDir string
	var maxItems int
	var epochs int
	var seed int64
	var render bool
	var verbose bool
	flag.StringVar(&dbPath, "db", "catalog.db", "path to catalog database")
	flag.StringVar(&configPath, "config", "", "optional YAML file of training hyperparameters")
	flag.StringVar(&resumePath, "resume", "", "checkpoint (with critic) to resume from")
	flag.StringVar(&outputDir, "output-dir", "", "override the output directory")
	flag.IntVar(&maxItems, "max-items", 0, "maximum number of catalog objects to load (0 for all)")
	flag.IntVar(&epochs, "epochs", 0, "override the number of epochs")
	flag.Int64Var(&seed, "seed", 0, "override the random seed")
	flag.BoolVar(&render, "render", true, "render snapshot point clouds to PNG")
	flag.BoolVar(&verbose, "verbose", false, "print losses for every iteration")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: train_gan [flags]")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) != 0 {
		flag.Usage()
		os.Exit(1)
	}

	log.Println("Opening catalog...")
	db, err := catalog.Open(dbPath)
	essentials.Must(err)
	defer db.Close()
	taxonomy, err := db.Taxonomy()
	essentials.Must(err)

	config := pcgan.DefaultTrainConfig(taxonomy.Len())
	if configPath != "" {
		essentials.Must(config.LoadYAML(configPath))
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output-dir":
			config.OutputDir = outputDir
		case "epochs":
			config.Epochs = epochs
		case "seed":
			config.Seed = seed
		case "render":
			config.RenderSnapshots = render
		case "verbose":
			config.Verbose = verbose
		}
	})
	config.Model.NumClasses = taxonomy.Len()
	essentials.Must(config.Validate())

	log.Println("Sampling corpus...")
	corpus, _, err := db.LoadCorpus(rand.New(rand.NewSource(config.Seed)),
		config.Model.NumPoints, maxItems)
	essentials.Must(err)
	log.Printf(" - loaded %d examples for shapes %v", corpus.Len(), taxonomy.Names())

	trainer, err := pcgan.NewTrainer(config, taxonomy, corpus)
	essentials.Must(err)
	log.Printf("Generator has %d parameters, critic has %d",
		trainer.Generator.Params().NumParams(), trainer.Critic.Params().NumParams())
	if resumePath != "" {
		log.Println("Restoring checkpoint...")
		ckpt, err := pcgan.LoadCheckpoint(resumePath)
		essentials.Must(err)
		essentials.Must(trainer.Restore(ckpt))
		log.Printf(" - resuming at epoch %d, iteration %d", trainer.Epoch, trainer.Iteration)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Println("Training...")
	err = trainer.Train(ctx)
	if errors.Is(err, context.Canceled) {
		path := filepath.Join(config.OutputDir, "ckpt_interrupted.bin")
		log.Printf("Interrupted, saving %s...", path)
		essentials.Must(pcgan.SaveCheckpoint(path, trainer.Checkpoint()))
		return
	}
	essentials.Must(err)
	log.Printf("Saved %s", filepath.Join(config.OutputDir, pcgan.FinalCheckpointName))
}
