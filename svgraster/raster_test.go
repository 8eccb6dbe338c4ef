package svgraster

import (
	"image"
	"image/color"
	"testing"

	"github.com/benoitkugler/svg2png/svgerr"
	"github.com/benoitkugler/svg2png/svgicon"
)

func parseDoc(t *testing.T, src string) *svgicon.Document {
	doc, err := svgicon.Parse(src, svgicon.IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func assertPixel(t *testing.T, img *image.RGBA, x, y int, want color.RGBA) {
	t.Helper()
	if got := img.RGBAAt(x, y); got != want {
		t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
	}
}

// rasterizeTo stretches the document over a new width x height image.
func rasterizeTo(t *testing.T, doc *svgicon.Document, width, height int) *image.RGBA {
	t.Helper()
	img, err := NewImage(width, height, DefaultLimits)
	if err != nil {
		t.Fatal(err)
	}
	w, h := doc.Size()
	if err := NewRenderer(img).Draw(doc, Scale(float64(width)/w, float64(height)/h)); err != nil {
		t.Fatal(err)
	}
	return img
}

var (
	red         = color.RGBA{R: 0xff, A: 0xff}
	blue        = color.RGBA{B: 0xff, A: 0xff}
	transparent = color.RGBA{}
)

func TestRenderScaled(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10">
	<rect x="0" y="0" width="5" height="10" fill="red"/>
</svg>`)
	img := rasterizeTo(t, doc, 40, 20)
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("unexpected bounds %v", b)
	}
	assertPixel(t, img, 1, 1, red)
	assertPixel(t, img, 18, 18, red)
	assertPixel(t, img, 22, 10, transparent)
	assertPixel(t, img, 39, 19, transparent)
}

func TestRenderViewBox(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20" viewBox="10 10 10 10">
	<rect x="10" y="10" width="5" height="10" fill="#0000ff"/>
</svg>`)
	img, err := NewImage(20, 20, DefaultLimits)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewRenderer(img).Draw(doc, Uniform(1)); err != nil {
		t.Fatal(err)
	}
	assertPixel(t, img, 4, 10, blue)
	assertPixel(t, img, 15, 10, transparent)
}

func TestRenderPreserveAspectRatio(t *testing.T) {
	// the 10x10 viewBox is centered in the 20x10 viewport
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg" width="20" height="10" viewBox="0 0 10 10">
	<rect width="10" height="10" fill="red"/>
</svg>`)
	img := rasterizeTo(t, doc, 20, 10)
	assertPixel(t, img, 2, 5, transparent)
	assertPixel(t, img, 10, 5, red)
	assertPixel(t, img, 17, 5, transparent)
}

func TestFill(t *testing.T) {
	img, err := NewImage(3, 2, DefaultLimits)
	if err != nil {
		t.Fatal(err)
	}
	Fill(img, color.White)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assertPixel(t, img, x, y, color.RGBA{0xff, 0xff, 0xff, 0xff})
		}
	}
}

func TestNewImageLimits(t *testing.T) {
	small := Limits{MaxWidth: 100, MaxHeight: 50, MaxPixels: 2000}
	for _, tt := range []struct {
		w, h int
		ok   bool
	}{
		{1, 1, true},
		{100, 20, true},
		{0, 10, false},
		{10, -1, false},
		{101, 1, false},
		{1, 51, false},
		{50, 50, false},
	} {
		img, err := NewImage(tt.w, tt.h, small)
		if tt.ok {
			if err != nil {
				t.Errorf("NewImage(%d, %d): %v", tt.w, tt.h, err)
			} else if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("NewImage(%d, %d) bounds = %v", tt.w, tt.h, b)
			}
			continue
		}
		if !svgerr.Is(err, svgerr.CodeAllocation) {
			t.Errorf("NewImage(%d, %d) error = %v, want allocation error", tt.w, tt.h, err)
		}
	}

	if err := (Limits{}).Check(40000, 40000); err != nil {
		t.Errorf("zero limits should disable the checks, got %v", err)
	}
}

func TestDefaultLimits(t *testing.T) {
	if err := DefaultLimits.Check(8192, 8192); err != nil {
		t.Errorf("8192x8192 should fit: %v", err)
	}
	if err := DefaultLimits.Check(32768, 32768); !svgerr.Is(err, svgerr.CodeAllocation) {
		t.Errorf("32768x32768 should exceed the pixel limit, got %v", err)
	}
}

func TestDrawRecovers(t *testing.T) {
	img, _ := NewImage(4, 4, DefaultLimits)
	var doc *svgicon.Document // drawing a nil document panics inside the renderer
	err := NewRenderer(img).Draw(doc, Uniform(1))
	if !svgerr.Is(err, svgerr.CodeRender) {
		t.Fatalf("got %v, want render error", err)
	}
}

func TestTransformMatrix(t *testing.T) {
	m := Scale(2, 3).Matrix()
	if m.A != 2 || m.D != 3 || m.B != 0 || m.C != 0 || m.E != 0 || m.F != 0 {
		t.Errorf("unexpected matrix %+v", m)
	}
	if got := Uniform(1.5).String(); got != "scale(1.5, 1.5)" {
		t.Errorf("String() = %q", got)
	}
}
