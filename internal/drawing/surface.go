package drawing

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/scythe504/drawguess-server/internal"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 500
	MaxDimension  = 2048

	capSegments = 8
)

var Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Surface is a raster canvas that canvas instructions are applied to.
type Surface struct {
	img *image.RGBA
}

func NewSurface(width, height int) *Surface {
	s := &Surface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	s.Clear()
	return s
}

// surfaceFrom adopts pix as the backing buffer without copying.
func surfaceFrom(pix []byte, width, height int) *Surface {
	return &Surface{img: &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}}
}

func (s *Surface) Width() int  { return s.img.Rect.Dx() }
func (s *Surface) Height() int { return s.img.Rect.Dy() }

// Pix exposes the backing buffer. Callers that hand it to another goroutine
// must not touch the surface until they get it back.
func (s *Surface) Pix() []byte { return s.img.Pix }

func (s *Surface) Image() *image.RGBA { return s.img }

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	c := image.NewRGBA(s.img.Rect)
	copy(c.Pix, s.img.Pix)
	return &Surface{img: c}
}

func (s *Surface) Clear() {
	draw.Draw(s.img, s.img.Rect, image.NewUniform(Background), image.Point{}, draw.Src)
}

// Stroke rasterizes a round-capped segment.
func (s *Surface) Stroke(d internal.DrawInstruction) error {
	col, err := ParseColor(d.StrokeStyle)
	if err != nil {
		return err
	}

	x0, y0, x1, y1, r := s.strokeGeometry(d)
	box := strokeBounds(x0, y0, x1, y1, r).Intersect(s.img.Rect)
	if box.Empty() {
		return nil
	}

	// The rasterizer only covers the stroke's box; its origin is box.Min.
	ox, oy := float64(box.Min.X), float64(box.Min.Y)
	z := vector.NewRasterizer(box.Dx(), box.Dy())
	capsule(z, x0-ox, y0-oy, x1-ox, y1-oy, r)
	z.Draw(s.img, box, image.NewUniform(col), image.Point{})
	return nil
}

// strokeGeometry converts a normalized instruction to pixel space.
func (s *Surface) strokeGeometry(d internal.DrawInstruction) (x0, y0, x1, y1, r float64) {
	w, h := float64(s.Width()), float64(s.Height())
	return d.MoveToX * w, d.MoveToY * h, d.LineToX * w, d.LineToY * h, math.Max(d.LineWidth*w/2, 0.5)
}

// strokeBounds is the pixel rectangle a capsule of radius r can touch.
func strokeBounds(x0, y0, x1, y1, r float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(math.Min(x0, x1)-r))-1,
		int(math.Floor(math.Min(y0, y1)-r))-1,
		int(math.Ceil(math.Max(x0, x1)+r))+1,
		int(math.Ceil(math.Max(y0, y1)+r))+1,
	)
}

// Fill runs the flood fill synchronously on the surface.
func (s *Surface) Fill(f internal.FillInstruction) (int, error) {
	col, err := ParseColor(f.Color)
	if err != nil {
		return 0, err
	}
	x := internal.ToPixel(f.StartingX, s.Width())
	y := internal.ToPixel(f.StartingY, s.Height())
	return FloodFill(s.img.Pix, s.Width(), s.Height(), x, y, col), nil
}

func (s *Surface) EncodePNG(w io.Writer) error {
	return png.Encode(w, s.img)
}

func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// capsule adds the outline of a thick segment with round ends to z.
func capsule(z *vector.Rasterizer, x0, y0, x1, y1, r float64) {
	dx, dy := x1-x0, y1-y0
	angle := math.Atan2(dy, dx)
	if dx == 0 && dy == 0 {
		angle = 0
	}

	// Walk around the end cap at (x1, y1), then back around (x0, y0).
	first := true
	arc := func(cx, cy, from float64) {
		for i := 0; i <= capSegments; i++ {
			a := from + math.Pi*float64(i)/capSegments
			px, py := float32(cx+r*math.Cos(a)), float32(cy+r*math.Sin(a))
			if first {
				z.MoveTo(px, py)
				first = false
				continue
			}
			z.LineTo(px, py)
		}
	}
	arc(x1, y1, angle-math.Pi/2)
	arc(x0, y0, angle+math.Pi/2)
	z.ClosePath()
}
