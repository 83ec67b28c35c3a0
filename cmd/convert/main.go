package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photorelief/internal/batch"
	"photorelief/internal/config"
	"photorelief/internal/depth"
	"photorelief/internal/export"
	"photorelief/internal/session"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tga":  true,
	".webp": true,
}

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	maxSize := flag.Int("size", 0, "Longest side of the working buffer (default: 512)")
	segments := flag.Int("segments", 0, "Base mesh resolution (default: 100)")
	height := flag.Float64("height", 0, "Relief height scale (default: 0.5)")
	heat := flag.Bool("heat", false, "Also write a heat-map depth PNG")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	supersample := flag.Int("supersample", 0, "Snapshot supersampling factor (default: 1)")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: convert [flags] <image-or-directory>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		MaxSize:     *maxSize,
		Segments:    *segments,
		HeightScale: *height,
		Supersample: *supersample,
		Workers:     *workers,
	})

	info, err := os.Stat(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if info.IsDir() {
		convertDir(cfg, input, *heat)
		return
	}
	convertFile(cfg, input, *heat)
}

func convertDir(cfg config.Config, dir string, heat bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", dir, err)
		os.Exit(1)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		fmt.Println("No images to convert.")
		os.Exit(0)
	}

	// Print summary
	fmt.Println("Photo Relief Converter")
	fmt.Printf("Images: %d, Workers: %d\n", len(paths), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{Pipeline: cfg, DepthMaps: heat}, paths)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var failures []Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			failures = append(failures, r)
		}
	}

	fmt.Printf("Converted: %d/%d\n", success, len(paths))

	if len(failures) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(failures) < limit {
			limit = len(failures)
		}
		for _, f := range failures[:limit] {
			fmt.Printf("  %s: %s\n", f.Source, f.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func convertFile(cfg config.Config, path string, heat bool) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sess := session.New(cfg, logger)
	defer sess.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := sess.Load(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if _, err := sess.Convert(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	glb, err := sess.ExportGLB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	glbPath := filepath.Join(cfg.OutputDir, export.GLBFilename)
	if err := os.WriteFile(glbPath, glb, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Model: %s\n", glbPath)

	snap, err := sess.ExportSnapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	snapPath := filepath.Join(cfg.OutputDir, export.SnapshotFilename)
	if err := os.WriteFile(snapPath, snap, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Snapshot: %s\n", snapPath)

	if heat {
		heatPath := filepath.Join(cfg.OutputDir, "depth.png")
		f, err := os.Create(heatPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		field := depth.FromLuminance(sess.Buffer())
		if err := png.Encode(f, field.HeatMap()); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		f.Close()
		fmt.Printf("Depth map: %s\n", heatPath)
	}
}

type Result = batch.Result
