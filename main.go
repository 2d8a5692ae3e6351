// Package main provides the entry point for the photobooth: it captures from
// the configured webcam and exports the decorated frame.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"photobooth/internal/app"
	"photobooth/internal/capture"
	"photobooth/internal/config"
	"photobooth/internal/script"
	"photobooth/internal/version"
)

const appTitle = "Photobooth"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s", version.String(appTitle))

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// An optional argument names an edit script.
	var sc *script.Script
	if len(os.Args) > 1 {
		if sc, err = script.Load(os.Args[1]); err != nil {
			log.Fatalf("Failed to load script %s: %v", os.Args[1], err)
		}
	}

	cam, closer, err := app.OpenCamera(cfg.Camera)
	if err != nil {
		log.Fatalf("Failed to open camera: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	booth := app.New(cfg, cam, nil)
	booth.Sequencer.OnChange(func(st capture.Status) {
		if st.State == capture.StateCountdown {
			log.Printf("%d...", st.Remaining)
		}
	})

	path, err := booth.Run(ctx, sc)
	if err != nil {
		log.Printf("Photobooth failed: %v", err)
		return
	}
	log.Printf("Saved %s", path)
}
