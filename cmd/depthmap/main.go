package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"photorelief/internal/depth"
	"photorelief/internal/imaging"
)

func main() {
	heat := flag.Bool("heat", false, "Write a color heat map instead of grayscale")
	size := flag.Int("size", 0, "Downscale longest side to this before extraction (0 keeps native)")
	out := flag.String("o", "", "Output path (default: <input>_depth.png)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: depthmap [flags] <image>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	input := flag.Arg(0)

	img, err := imaging.DecodeFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}
	if *size > 0 {
		img = imaging.Downscale(img, *size, "catmullrom")
	}

	field := depth.FromLuminance(img)
	var result image.Image
	if *heat {
		result = field.HeatMap()
	} else {
		result = &image.Gray{
			Pix:    field.Pix,
			Stride: field.W,
			Rect:   image.Rect(0, 0, field.W, field.H),
		}
	}

	dst := *out
	if dst == "" {
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		dst = filepath.Join(filepath.Dir(input), stem+"_depth.png")
	}

	f, err := os.Create(dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := png.Encode(f, result); err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OK  %s -> %s  (%dx%d)\n", input, dst, field.W, field.H)
}
