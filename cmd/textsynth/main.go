package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pixelforge/textsynth/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "--version", "-v", "version":
		fmt.Printf("textsynth %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		printUsage()
		return
	}

	// Progress goes to stderr; stdout stays clean for tool output.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var opts pipeline.GenerateOptions
	var bgSize string
	fs.StringVar(&opts.FontPath, "font", "", "path to a TTF/OTF font file (required)")
	fs.IntVar(&opts.FontSize, "font-size", 32, "initial font size in pixels")
	fs.StringVar(&opts.TextColor, "color", "#000000", "text color as #RRGGBB")
	fs.StringVar(&opts.BackgroundDir, "backgrounds", "", "directory of background images")
	fs.StringVar(&opts.BackgroundMode, "bg-mode", "solid", "synthetic background mode: solid or noise")
	fs.StringVar(&bgSize, "bg-size", "200x200", "synthetic background size as WxH")
	fs.StringVar(&opts.BackgroundColor, "bg-color", "#FFFFFF", "solid background color as #RRGGBB")
	fs.StringVar(&opts.OutputDir, "out", "output", "output directory")
	fs.IntVar(&opts.Count, "count", 50, "number of samples to generate")
	fs.StringVar(&opts.TextsFile, "texts", "", "file with one text per line")
	fs.Int64Var(&opts.Seed, "seed", 0, "random seed; 0 seeds from the current time")
	fs.BoolVar(&opts.Stats, "stats", false, "log throughput and memory stats after the run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.FontPath == "" {
		fs.Usage()
		return errors.New("-font is required")
	}
	w, h, err := parseSize(bgSize)
	if err != nil {
		return err
	}
	opts.BackgroundWidth, opts.BackgroundHeight = w, h

	return pipeline.Generate(opts)
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var opts pipeline.ExportOptions
	fs.StringVar(&opts.InputDir, "in", "", "generation output directory (required)")
	fs.StringVar(&opts.OutputDir, "out", "dataset", "export output directory")
	fs.StringVar(&opts.Format, "format", "", "dataset format: coco, yolo or createml (required)")
	fs.BoolVar(&opts.Split, "split", false, "split into train/val/test subsets")
	fs.Float64Var(&opts.TrainRatio, "train", 0.7, "train subset ratio")
	fs.Float64Var(&opts.ValRatio, "val", 0.2, "val subset ratio")
	fs.Float64Var(&opts.TestRatio, "test", 0.1, "test subset ratio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.InputDir == "" || opts.Format == "" {
		fs.Usage()
		return errors.New("-in and -format are required")
	}

	return pipeline.Export(opts)
}

// parseSize parses a WxH dimension string like "200x200".
func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q, dimensions must be positive", s)
	}
	return w, h, nil
}

func printUsage() {
	fmt.Println("textsynth - synthetic text detection dataset generator")
	fmt.Println()
	fmt.Println("Usage: textsynth <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  generate   Render labeled text samples over backgrounds")
	fmt.Println("  export     Convert generated samples to COCO, YOLO or CreateML")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Run 'textsynth <command> -h' for command options.")
}
