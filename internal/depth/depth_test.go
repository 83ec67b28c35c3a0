package depth

import (
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFromLuminanceWeights(t *testing.T) {
	cases := []struct {
		name string
		c    color.NRGBA
		want uint8
	}{
		{"black", color.NRGBA{0, 0, 0, 255}, 0},
		{"white", color.NRGBA{255, 255, 255, 255}, 255},
		{"red", color.NRGBA{255, 0, 0, 255}, 76},
		{"green", color.NRGBA{0, 255, 0, 255}, 150},
		{"blue", color.NRGBA{0, 0, 255, 255}, 29},
	}
	for _, tc := range cases {
		f := FromLuminance(solid(2, 2, tc.c))
		if got := f.Pix[0]; got != tc.want {
			t.Errorf("%s: luminance = %d; want %d", tc.name, got, tc.want)
		}
	}
}

func TestAtNormalized(t *testing.T) {
	f := NewField(2, 2)
	f.Set(1, 0, 0)
	f.Set(0, 1, 128)

	if got := f.At(1, 0); got != 0 {
		t.Errorf("At(1,0) = %v; want 0", got)
	}
	if got := f.At(0, 1); got != 128.0/255 {
		t.Errorf("At(0,1) = %v; want %v", got, 128.0/255)
	}
	if got := f.At(0, 0); got != 1 {
		t.Errorf("At(0,0) = %v; want 1 (far)", got)
	}
}

func TestAtClampsCoordinates(t *testing.T) {
	f := NewField(3, 3)
	f.Set(0, 0, 10)
	f.Set(2, 2, 20)

	if got := f.At(-5, -5); got != 10.0/255 {
		t.Errorf("At(-5,-5) = %v; want clamp to (0,0)", got)
	}
	if got := f.At(99, 99); got != 20.0/255 {
		t.Errorf("At(99,99) = %v; want clamp to (2,2)", got)
	}
}

func TestSampleSameResolution(t *testing.T) {
	f := NewField(4, 4)
	f.Set(2, 1, 51)
	if got := f.Sample(2, 1, 4, 4); got != 0.2 {
		t.Errorf("Sample(2,1) = %v; want 0.2", got)
	}
}

func TestSampleRescales(t *testing.T) {
	// Field authored at 4x4, sampled through an 8x8 buffer: buffer pixel
	// (6,2) must land on field pixel (3,1).
	f := NewField(4, 4)
	f.Set(3, 1, 0)
	if got := f.Sample(6, 2, 8, 8); got != 0 {
		t.Errorf("Sample(6,2,8,8) = %v; want 0", got)
	}
	// And the upscale direction: 2x2 buffer over a 4x4 field.
	f2 := NewField(4, 4)
	f2.Set(2, 2, 0)
	if got := f2.Sample(1, 1, 2, 2); got != 0 {
		t.Errorf("Sample(1,1,2,2) = %v; want 0", got)
	}
}

func TestCloneIndependent(t *testing.T) {
	f := NewField(2, 2)
	f.Authored = true
	c := f.Clone()
	c.Set(0, 0, 7)

	if f.Pix[0] == 7 {
		t.Error("mutating clone changed the original")
	}
	if !c.Authored {
		t.Error("clone dropped the authored flag")
	}
}

func TestEditorLifecycle(t *testing.T) {
	e := NewEditor()
	if e.Active() {
		t.Fatal("new editor reports active")
	}
	if _, err := e.Commit(); err != ErrNoEdit {
		t.Fatalf("Commit without Begin = %v; want ErrNoEdit", err)
	}

	seed := NewField(8, 8)
	if err := e.Begin(seed); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if !e.Active() {
		t.Fatal("editor not active after Begin")
	}
	if err := e.Begin(seed); err != ErrActive {
		t.Fatalf("second Begin = %v; want ErrActive", err)
	}

	out, err := e.Commit()
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !out.Authored {
		t.Error("committed field not marked authored")
	}
	if e.Active() {
		t.Error("editor still active after Commit")
	}
}

func TestEditorSeedNotAliased(t *testing.T) {
	e := NewEditor()
	seed := NewField(8, 8)
	if err := e.Begin(seed); err != nil {
		t.Fatal(err)
	}
	e.Paint(4, 4, 2, 0)
	if seed.Pix[4*8+4] != 255 {
		t.Error("painting the working copy modified the seed")
	}
}

func TestEditorPaintCircle(t *testing.T) {
	e := NewEditor()
	if err := e.Begin(NewField(16, 16)); err != nil {
		t.Fatal(err)
	}
	e.Paint(8, 8, 3, 0)
	out, err := e.Commit()
	if err != nil {
		t.Fatal(err)
	}

	if out.Pix[8*16+8] != 0 {
		t.Error("circle center not painted")
	}
	if out.Pix[8*16+11] != 0 {
		t.Error("point on radius not painted")
	}
	if out.Pix[8*16+12] != 255 {
		t.Error("point outside radius was painted")
	}
	// Corner of the bounding square lies outside the circle.
	if out.Pix[11*16+11] != 255 {
		t.Error("bounding-box corner was painted")
	}
}

func TestEditorPaintClipsAtEdges(t *testing.T) {
	e := NewEditor()
	if err := e.Begin(NewField(8, 8)); err != nil {
		t.Fatal(err)
	}
	// Must not panic and must paint the in-bounds part.
	e.Paint(0, 0, 4, 0)
	out, _ := e.Commit()
	if out.Pix[0] != 0 {
		t.Error("corner pixel not painted")
	}
}

func TestEditorStrokeInterpolates(t *testing.T) {
	e := NewEditor()
	if err := e.Begin(NewField(32, 8)); err != nil {
		t.Fatal(err)
	}
	e.SetTool(Tool{Value: Raise, Radius: 1})
	e.StartStroke(2, 4)
	e.MoveTo(28, 4)
	e.EndStroke()
	out, _ := e.Commit()

	for x := 2; x <= 28; x++ {
		if out.Pix[4*32+x] != Raise {
			t.Fatalf("gap in stroke at x=%d", x)
		}
	}
}

func TestEditorMoveWithoutStroke(t *testing.T) {
	e := NewEditor()
	if err := e.Begin(NewField(8, 8)); err != nil {
		t.Fatal(err)
	}
	e.MoveTo(4, 4) // no StartStroke; must be ignored
	out, _ := e.Commit()
	for i, v := range out.Pix {
		if v != 255 {
			t.Fatalf("pixel %d painted without an active stroke", i)
		}
	}
}

func TestEditorDiscard(t *testing.T) {
	e := NewEditor()
	if err := e.Begin(NewField(4, 4)); err != nil {
		t.Fatal(err)
	}
	e.Discard()
	if e.Active() {
		t.Error("editor active after Discard")
	}
	if _, err := e.Commit(); err != ErrNoEdit {
		t.Errorf("Commit after Discard = %v; want ErrNoEdit", err)
	}
}

func TestHeatMapExtremes(t *testing.T) {
	f := NewField(2, 1)
	f.Set(0, 0, 0)   // near -> red
	f.Set(1, 0, 255) // far -> blue

	img := f.HeatMap()
	if c := img.NRGBAAt(0, 0); c.R != 255 || c.G != 0 || c.B != 0 {
		t.Errorf("near pixel = %v; want red", c)
	}
	if c := img.NRGBAAt(1, 0); c.R != 0 || c.G != 0 || c.B != 255 {
		t.Errorf("far pixel = %v; want blue", c)
	}
}
