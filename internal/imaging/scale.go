package imaging

import (
	"image"

	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Downscale shrinks src so its longest side is at most maxSize, keeping the
// aspect ratio. Images already within the limit are returned unchanged;
// Downscale never enlarges.
func Downscale(src *image.NRGBA, maxSize int, filter string) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return src
	}

	ratio := float64(maxSize) / float64(w)
	if r := float64(maxSize) / float64(h); r < ratio {
		ratio = r
	}
	dw := int(float64(w) * ratio)
	dh := int(float64(h) * ratio)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	if filter == "bicubic" {
		return ToNRGBA(resize.Resize(uint(dw), uint(dh), src, resize.Bicubic))
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	scaler(filter).Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst
}

// scaler maps a filter name to an x/image scaler. Unknown names fall back
// to Catmull-Rom.
func scaler(name string) draw.Scaler {
	switch name {
	case "nearest":
		return draw.NearestNeighbor
	case "bilinear":
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}

// DecodeAndFit decodes an image file and returns both the native decode and
// a copy downscaled to fit maxSize.
func DecodeAndFit(path string, maxSize int, filter string) (native, fitted *image.NRGBA, err error) {
	native, err = DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	return native, Downscale(native, maxSize, filter), nil
}
