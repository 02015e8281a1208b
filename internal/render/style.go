package render

import (
	"image"
	"math"
)

// Vignette is a precomputed radial falloff mask for one frame size. The mask
// darkens corners down to 0.65 with a 1.7 exponent, leaving the center
// untouched; it is computed once per render and shared read-only across
// frame workers.
type Vignette struct {
	width  int
	height int
	mask   []float64
}

func NewVignette(width, height int) *Vignette {
	mask := make([]float64, width*height)
	cx := float64(width) / 2.0
	cy := float64(height) / 2.0

	for y := 0; y < height; y++ {
		dy := (float64(y) - cy) / cy
		for x := 0; x < width; x++ {
			dx := (float64(x) - cx) / cx
			dist := math.Sqrt(dx*dx + dy*dy)
			mask[y*width+x] = clamp(1.0-math.Pow(dist, 1.7)*0.35, 0.65, 1.0)
		}
	}

	return &Vignette{width: width, height: height, mask: mask}
}

// Apply multiplies the mask into the frame in place.
func (v *Vignette) Apply(frame *image.RGBA) {
	b := frame.Bounds()
	if b.Dx() != v.width || b.Dy() != v.height {
		return
	}
	for y := 0; y < v.height; y++ {
		row := frame.Pix[y*frame.Stride:]
		for x := 0; x < v.width; x++ {
			m := v.mask[y*v.width+x]
			i := x * 4
			row[i] = clampByte(float64(row[i]) * m)
			row[i+1] = clampByte(float64(row[i+1]) * m)
			row[i+2] = clampByte(float64(row[i+2]) * m)
		}
	}
}

// ApplyLetterbox paints black bars over the top and bottom of the frame.
// The bar height is ratio×height each; a non-positive ratio is a no-op.
func ApplyLetterbox(frame *image.RGBA, ratio float64) {
	if ratio <= 0 {
		return
	}
	b := frame.Bounds()
	barHeight := int(float64(b.Dy()) * ratio)
	if barHeight <= 0 {
		return
	}

	fillRows(frame, 0, barHeight)
	fillRows(frame, b.Dy()-barHeight, b.Dy())
}

func fillRows(frame *image.RGBA, from, to int) {
	width := frame.Bounds().Dx()
	for y := from; y < to; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+width*4]
		for i := 0; i < len(row); i += 4 {
			row[i] = 0
			row[i+1] = 0
			row[i+2] = 0
			row[i+3] = 255
		}
	}
}
