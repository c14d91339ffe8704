package drawing

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/drawguess-server/internal"
)

func TestStrokeOnlyTouchesItsBox(t *testing.T) {
	s := NewSurface(MaxDimension, MaxDimension)
	d := internal.DrawInstruction{
		StrokeStyle: "#000000",
		LineWidth:   4.0 / MaxDimension,
		MoveToX:     0.5, MoveToY: 0.5,
		LineToX: 0.5 + 8.0/MaxDimension, LineToY: 0.5,
	}

	box := strokeBounds(s.strokeGeometry(d))
	assert.LessOrEqual(t, box.Dx(), 16, "a short stroke rasterizes a small area")
	assert.LessOrEqual(t, box.Dy(), 16)

	require.NoError(t, s.Stroke(d))

	black := 0
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if s.Image().RGBAAt(x, y) == Background {
				continue
			}
			require.True(t, image.Pt(x, y).In(box), "pixel %d,%d painted outside %v", x, y, box)
			black++
		}
	}
	assert.Positive(t, black)
}

func TestStrokeClipsAtEdges(t *testing.T) {
	s := NewSurface(40, 40)
	require.NoError(t, s.Stroke(internal.DrawInstruction{
		StrokeStyle: "red", LineWidth: 0.2, MoveToX: -0.5, MoveToY: 0.5, LineToX: 0.1, LineToY: 0.5,
	}))
	assert.NotEqual(t, Background, s.Image().RGBAAt(0, 20))
	assert.Equal(t, Background, s.Image().RGBAAt(39, 20))

	before := append([]byte(nil), s.Pix()...)
	require.NoError(t, s.Stroke(internal.DrawInstruction{
		StrokeStyle: "red", LineWidth: 0.01, MoveToX: 2, MoveToY: 2, LineToX: 3, LineToY: 3,
	}))
	assert.Equal(t, before, s.Pix(), "a stroke entirely off the canvas is a no-op")
}

func BenchmarkShortStroke(b *testing.B) {
	s := NewSurface(MaxDimension, MaxDimension)
	d := internal.DrawInstruction{
		StrokeStyle: "#000000", LineWidth: 4.0 / MaxDimension,
		MoveToX: 0.5, MoveToY: 0.5, LineToX: 0.5 + 8.0/MaxDimension, LineToY: 0.5,
	}
	b.ResetTimer()
	for range b.N {
		_ = s.Stroke(d)
	}
}
