package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"photorelief/internal/config"
	"photorelief/internal/depth"
	"photorelief/internal/imaging"
	"photorelief/internal/relief"
	"photorelief/internal/render"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	frames := flag.Int("frames", 60, "Number of frames over one revolution")
	tilt := flag.Float64("tilt", 15, "Camera tilt in degrees")
	outputDir := flag.String("output", "", "Output directory (default: current directory)")
	maxSize := flag.Int("size", 0, "Longest side of the working buffer (default: 512)")
	segments := flag.Int("segments", 0, "Base mesh resolution (default: 100)")
	height := flag.Float64("height", 0, "Relief height scale (default: 0.5)")
	supersample := flag.Int("supersample", 0, "Supersampling factor (default: 1)")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: turntable [flags] <image>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)
	if *frames < 1 {
		fmt.Fprintln(os.Stderr, "Error: -frames must be at least 1")
		os.Exit(1)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		MaxSize:     *maxSize,
		Segments:    *segments,
		HeightScale: *height,
		Supersample: *supersample,
	})

	img, err := imaging.DecodeFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	buffer := imaging.Downscale(img, cfg.MaxImageSize, cfg.Interpolation)
	field := depth.FromLuminance(buffer)
	mesh := relief.Build(buffer, field, relief.Options{
		BaseSegments: cfg.BaseSegments,
		HeightScale:  cfg.HeightScale,
		MirrorBack:   true,
	})

	r, err := render.New(mesh, render.Config{
		Width:       cfg.ViewportWidth,
		Height:      cfg.ViewportHeight,
		Supersample: cfg.Supersample,
		FOVDegrees:  cfg.FOVDegrees,
		NearPlane:   cfg.NearPlane,
		FarPlane:    cfg.FarPlane,
		Distance:    cfg.CameraDistance,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	pitch := *tilt * math.Pi / 180
	start := time.Now()

	for i := 0; i < *frames; i++ {
		yaw := 2 * math.Pi * float64(i) / float64(*frames)
		r.SetOrbit(yaw, pitch)
		if err := r.RenderFrame(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := writeFrame(cfg.OutputDir, i, r); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	elapsed := time.Since(start)
	fmt.Printf("Done: %d frames in %.1fs -> %s\n", *frames, elapsed.Seconds(), cfg.OutputDir)
}

func writeFrame(dir string, i int, r *render.Renderer) error {
	frame := r.Frame()
	if frame == nil {
		return fmt.Errorf("frame %d: nothing rendered", i)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame_%03d.webp", i))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := nativewebp.Encode(f, frame, nil); err != nil {
		return fmt.Errorf("webp encode %s: %w", path, err)
	}
	return nil
}
