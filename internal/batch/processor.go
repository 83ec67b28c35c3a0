// Package batch converts whole directories of images into relief artifacts
// with a worker pool.
package batch

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"photorelief/internal/config"
	"photorelief/internal/depth"
	"photorelief/internal/export"
	"photorelief/internal/imaging"
	"photorelief/internal/relief"
	"photorelief/internal/render"
)

// Config holds all shared settings for a batch run.
type Config struct {
	Pipeline  config.Config // resolved settings, incl. OutputDir and Workers
	DepthMaps bool          // also write <stem>_depth.png heat maps
}

// Result holds the outcome of converting one image.
type Result struct {
	Source   string
	Model    string // .glb file name, relative to OutputDir
	Snapshot string // .png file name
	DepthMap string // heat map file name, if requested
	Width    int    // working buffer dimensions
	Height   int
	Success  bool
	Error    string
}

// Run converts all images using a worker pool. Results come back in input
// order regardless of completion order.
func Run(cfg Config, paths []string) []Result {
	total := len(paths)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f images/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	imageChan := make(chan int, cfg.Pipeline.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Pipeline.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range imageChan {
				results[idx] = processImage(cfg, paths[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range paths {
		imageChan <- i
	}
	close(imageChan)

	wg.Wait()
	close(done)

	return results
}

func processImage(cfg Config, path string) Result {
	res := Result{Source: path}
	fail := func(err error) Result {
		res.Error = err.Error()
		return res
	}

	img, err := imaging.DecodeFile(path)
	if err != nil {
		return fail(err)
	}
	buffer := imaging.Downscale(img, cfg.Pipeline.MaxImageSize, cfg.Pipeline.Interpolation)
	res.Width = buffer.Rect.Dx()
	res.Height = buffer.Rect.Dy()

	field := depth.FromLuminance(buffer)
	mesh := relief.Build(buffer, field, relief.Options{
		BaseSegments: cfg.Pipeline.BaseSegments,
		HeightScale:  cfg.Pipeline.HeightScale,
		MirrorBack:   cfg.Pipeline.MirrorBack,
	})

	glb, err := export.GLB(mesh)
	if err != nil {
		return fail(err)
	}

	r, err := render.New(mesh, render.Config{
		Width:       cfg.Pipeline.ViewportWidth,
		Height:      cfg.Pipeline.ViewportHeight,
		Supersample: cfg.Pipeline.Supersample,
		FOVDegrees:  cfg.Pipeline.FOVDegrees,
		NearPlane:   cfg.Pipeline.NearPlane,
		FarPlane:    cfg.Pipeline.FarPlane,
		Distance:    cfg.Pipeline.CameraDistance,
	})
	if err != nil {
		return fail(err)
	}
	defer r.Close()

	if err := r.RenderFrame(); err != nil {
		return fail(err)
	}
	snap, err := export.Snapshot(r)
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(cfg.Pipeline.OutputDir, 0755); err != nil {
		return fail(err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res.Model = stem + ".glb"
	res.Snapshot = stem + ".png"

	if err := os.WriteFile(filepath.Join(cfg.Pipeline.OutputDir, res.Model), glb, 0644); err != nil {
		return fail(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Pipeline.OutputDir, res.Snapshot), snap, 0644); err != nil {
		return fail(err)
	}

	if cfg.DepthMaps {
		name := stem + "_depth.png"
		f, err := os.Create(filepath.Join(cfg.Pipeline.OutputDir, name))
		if err != nil {
			return fail(err)
		}
		defer f.Close()
		if err := png.Encode(f, field.HeatMap()); err != nil {
			return fail(err)
		}
		res.DepthMap = name
	}

	res.Success = true
	return res
}
