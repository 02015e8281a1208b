package beats

import (
	"math"

	"github.com/tanmayb/cinerender/internal/audio"
)

const (
	onsetFrameSeconds = 0.05
	onsetRatio        = 1.4
	onsetRefractory   = 0.25
)

// EnergyDetector finds beats as energy onsets: short-frame energy rising
// well above the running average, with a refractory window so a single hit
// is not counted twice.
type EnergyDetector struct{}

func (EnergyDetector) Detect(buf *audio.Buffer) ([]float64, error) {
	if buf == nil || len(buf.Samples) == 0 || buf.Rate <= 0 {
		return nil, nil
	}

	frame := int(float64(buf.Rate) * onsetFrameSeconds)
	if frame < 1 {
		frame = 1
	}

	frames := len(buf.Samples) / frame
	if frames < 2 {
		return nil, nil
	}

	energy := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for _, s := range buf.Samples[i*frame : (i+1)*frame] {
			sum += s * s
		}
		energy[i] = sum / float64(frame)
	}

	mean := 0.0
	for _, e := range energy {
		mean += e
	}
	mean /= float64(frames)
	if mean <= 0 {
		return nil, nil
	}

	var times []float64
	lastBeat := math.Inf(-1)
	for i := 1; i < frames; i++ {
		t := float64(i*frame) / float64(buf.Rate)
		rising := energy[i] > energy[i-1]*onsetRatio
		loud := energy[i] > mean*onsetRatio
		if rising && loud && t-lastBeat >= onsetRefractory {
			times = append(times, t)
			lastBeat = t
		}
	}
	return times, nil
}
