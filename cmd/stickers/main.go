// Command stickers renders the sticker catalog to PNG files for inspection.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"photobooth/internal/overlay"
)

func main() {
	outDir := flag.String("out", ".", "Output directory")
	size := flag.Int("size", overlay.StickerBaseSize*2, "Edge length in pixels")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, entry := range overlay.Catalog() {
		path := filepath.Join(*outDir, string(entry.Ref)+".png")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", path, err)
			os.Exit(1)
		}
		err = png.Encode(f, entry.Image(*size))
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", entry.Name, err)
			os.Exit(1)
		}
		fmt.Printf("%-8s %s\n", entry.Name, path)
	}
}
