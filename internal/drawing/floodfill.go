package drawing

import (
	"encoding/binary"
	"image/color"
)

// PackRGBA returns the 32-bit word a pixel with colour c has when an RGBA
// buffer is read as little-endian words.
func PackRGBA(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.B)<<16 | uint32(c.G)<<8 | uint32(c.R)
}

// FloodFill paints the 4-connected region around (x, y) whose pixels equal
// the start pixel with fill. pix is a tightly packed RGBA buffer of
// width*height pixels. It returns the number of pixels written; a start
// outside the buffer writes nothing.
func FloodFill(pix []byte, width, height, x, y int, fill color.RGBA) int {
	if width <= 0 || height <= 0 || len(pix) < width*height*4 {
		return 0
	}
	if x < 0 || y < 0 || x >= width || y >= height {
		return 0
	}

	word := func(i int) uint32 { return binary.LittleEndian.Uint32(pix[i*4:]) }
	fillWord := PackRGBA(fill)

	start := y*width + x
	target := word(start)

	seen := make([]bool, width*height)
	queue := make([]int32, 0, 1024)
	queue = append(queue, int32(start))
	seen[start] = true

	push := func(i int) {
		if !seen[i] {
			seen[i] = true
			queue = append(queue, int32(i))
		}
	}

	filled := 0
	for head := 0; head < len(queue); head++ {
		i := int(queue[head])
		if word(i) != target {
			continue
		}
		binary.LittleEndian.PutUint32(pix[i*4:], fillWord)
		filled++

		px, py := i%width, i/width
		if px > 0 {
			push(i - 1)
		}
		if px < width-1 {
			push(i + 1)
		}
		if py > 0 {
			push(i - width)
		}
		if py < height-1 {
			push(i + width)
		}
	}
	return filled
}
