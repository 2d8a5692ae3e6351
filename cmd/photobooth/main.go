// Command photobooth runs a full session without a window: timed capture,
// layout, optional scripted edits and a PNG export.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"photobooth/internal/app"
	"photobooth/internal/config"
	"photobooth/internal/script"
	"photobooth/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	configPath := flag.String("config", "", "Config file (default: user config dir)")
	count := flag.Int("count", 0, "Photos to take: 3 or 4")
	layout := flag.String("layout", "", "Layout: vertical or grid")
	camera := flag.String("camera", "", "Camera device index, or dir:<path> to replay stills")
	scriptPath := flag.String("script", "", "YAML edit script applied before export")
	out := flag.String("out", "", "Output directory")
	prefix := flag.String("prefix", "", "Output file name prefix")
	scale := flag.Float64("scale", 0, "Export pixel scale")
	label := flag.String("label", "", "Studio label printed under the date")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("photobooth"))
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the file and environment only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "count":
			cfg.PhotoCount = *count
		case "layout":
			cfg.Layout = *layout
		case "camera":
			cfg.Camera = *camera
		case "out":
			cfg.OutputDir = *out
		case "prefix":
			cfg.FilePrefix = *prefix
		case "scale":
			cfg.ExportScale = *scale
		case "label":
			cfg.Label = *label
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	var sc *script.Script
	if *scriptPath != "" {
		if sc, err = script.Load(*scriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	cam, closer, err := app.OpenCamera(cfg.Camera)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open camera: %v\n", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("Starting %s", version.String("photobooth"))
	path, err := app.New(cfg, cam, nil).Run(ctx, sc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Photobooth failed: %v\n", err)
		if closer != nil {
			closer.Close()
		}
		os.Exit(1)
	}
	fmt.Println(path)
}
