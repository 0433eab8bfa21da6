package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	options "github.com/richinsley/gothermal/options"
	renderer "github.com/richinsley/gothermal/renderer"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("Thermal Effect Viewer/Recorder")
		fmt.Println("Parameters:", options.Names())
		flag.PrintDefaults()
		return
	}

	if *opts.MaskFile == "" {
		fmt.Fprintln(os.Stderr, "a mask image is required (-mask)")
		flag.PrintDefaults()
		os.Exit(2)
	}

	params := options.DefaultParams()
	if *opts.ParamsFile != "" {
		p, err := options.LoadParams(*opts.ParamsFile)
		if err != nil {
			log.Fatalf("Error loading parameters: %v", err)
		}
		params = p
		log.Printf("Loaded parameters from %s", *opts.ParamsFile)
	}

	switch *opts.Mode {
	case "record":
		if err := renderer.RecordFromOptions(opts, params); err != nil {
			log.Fatalf("Offscreen rendering failed: %v", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
	case "interactive":
		if err := renderer.RunInteractive(opts, params); err != nil {
			log.Fatalf("Interactive rendering failed: %v", err)
		}
	default:
		log.Fatalf("Unknown mode %q", *opts.Mode)
	}
}
