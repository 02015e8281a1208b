package audio

import "math"

// Resample converts the buffer to the target rate using linear
// interpolation. The input is returned unchanged when already at the target
// rate.
func Resample(buf *Buffer, rate int) *Buffer {
	if buf.Rate == rate || len(buf.Samples) == 0 {
		return &Buffer{Samples: buf.Samples, Rate: rate}
	}

	ratio := float64(rate) / float64(buf.Rate)
	outLen := int(math.Round(float64(len(buf.Samples)) * ratio))
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	last := len(buf.Samples) - 1
	for i := range out {
		pos := float64(i) / ratio
		lo := int(pos)
		if lo >= last {
			out[i] = buf.Samples[last]
			continue
		}
		frac := pos - float64(lo)
		out[i] = buf.Samples[lo]*(1-frac) + buf.Samples[lo+1]*frac
	}
	return &Buffer{Samples: out, Rate: rate}
}
