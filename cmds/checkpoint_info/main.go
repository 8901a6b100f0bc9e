package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shapeforge/primgan/pcgan"
	"github.com/unixpickle/essentials"
)

func main() {
	var listParams bool
	flag.BoolVar(&listParams, "params", false, "list every parameter tensor")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: checkpoint_info [flags] <input.bin>")
		fmt.Fprintln(os.Stderr)
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath := args[0]

	log.Println("Loading checkpoint...")
	ckpt, err := pcgan.LoadCheckpoint(inputPath)
	essentials.Must(err)

	config := ckpt.Generator.Config
	fmt.Println("Iteration:", ckpt.Iteration)
	fmt.Println("Epoch:", ckpt.Epoch)
	fmt.Println("Shapes:", ckpt.Taxonomy.Names())
	fmt.Println("Points per cloud:", config.NumPoints)
	fmt.Println("Latent size:", config.LatentDim)
	fmt.Println("Condition size:", config.CondDim)
	fmt.Println("Generator hidden size:", config.HiddenDim)
	fmt.Println("Generator parameters:", ckpt.Generator.Params().NumParams())
	if ckpt.Critic != nil {
		fmt.Println("Critic widths:", config.CriticWidths, "head:", config.CriticHead)
		fmt.Println("Critic parameters:", ckpt.Critic.Params().NumParams())
	} else {
		fmt.Println("Critic: not included")
	}
	if listParams {
		printParams("generator", ckpt.Generator.Params())
		if ckpt.Critic != nil {
			printParams("critic", ckpt.Critic.Params())
		}
	}
}

func printParams(prefix string, p *pcgan.ParamSet) {
	for _, name := range p.Names() {
		v := p.Get(name)
		fmt.Printf("%s.%s: %dx%d\n", prefix, name, v.Rows(), v.Cols())
	}
}
