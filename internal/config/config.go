package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// Config holds all configurable pipeline and viewer settings.
type Config struct {
	// Input sampling
	MaxImageSize  int    `json:"max_image_size"` // longest side of the working buffer
	Interpolation string `json:"interpolation"`  // catmullrom | bilinear | bicubic | nearest

	// Mesh construction
	BaseSegments int     `json:"base_segments"`
	HeightScale  float64 `json:"height_scale"`
	MirrorBack   bool    `json:"mirror_back"`

	// Camera and viewer
	FOVDegrees      float64 `json:"fov_degrees"`
	NearPlane       float64 `json:"near_plane"`
	FarPlane        float64 `json:"far_plane"`
	CameraDistance  float64 `json:"camera_distance"`
	DragSensitivity float64 `json:"drag_sensitivity"` // radians per pixel of drag
	ViewportWidth   int     `json:"viewport_width"`
	ViewportHeight  int     `json:"viewport_height"`
	Supersample     int     `json:"supersample"`
	FrameRate       int     `json:"frame_rate"`

	// Depth editing
	BrushRadius int `json:"brush_radius"`

	// Output
	OutputDir   string `json:"output_dir"`
	WebPQuality int    `json:"webp_quality"`
	Workers     int    `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.MaxSize > 0 {
		c.MaxImageSize = flags.MaxSize
	}
	if flags.Segments > 0 {
		c.BaseSegments = flags.Segments
	}
	if flags.HeightScale > 0 {
		c.HeightScale = flags.HeightScale
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Quality > 0 {
		c.WebPQuality = flags.Quality
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	// Defaults for sampling
	if c.MaxImageSize <= 0 {
		c.MaxImageSize = 512
	}
	if c.Interpolation == "" {
		c.Interpolation = "catmullrom"
	}

	// Defaults for mesh construction
	if c.BaseSegments <= 0 {
		c.BaseSegments = 100
	}
	if c.HeightScale <= 0 {
		c.HeightScale = 0.5
	}

	// Defaults for camera and viewer
	if c.FOVDegrees <= 0 {
		c.FOVDegrees = 45
	}
	if c.NearPlane <= 0 {
		c.NearPlane = 0.1
	}
	if c.FarPlane <= 0 {
		c.FarPlane = 1000
	}
	if c.CameraDistance <= 0 {
		c.CameraDistance = 3
	}
	if c.DragSensitivity <= 0 {
		c.DragSensitivity = 0.005
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 960
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 640
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 60
	}

	// Defaults for editing and output
	if c.BrushRadius <= 0 {
		c.BrushRadius = 12
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.WebPQuality <= 0 {
		c.WebPQuality = 90
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir   string
	MaxSize     int
	Segments    int
	HeightScale float64
	Supersample int
	Quality     int
	Workers     int
}

// Default returns a fully resolved Config with no file or flag input.
func Default() Config {
	var c Config
	c.Resolve(Flags{})
	return c
}
