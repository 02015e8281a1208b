package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/tanmayb/cinerender/internal/models"
)

// MixRate is the working sample rate of the mixer. Loaded tracks are
// resampled to it before any processing.
const MixRate = 22050

const (
	// envelopeRate is how many ducking gain steps are computed per second
	// of timeline.
	envelopeRate = 25

	// duckAnalysisRate is the rate narration is resampled to for loudness
	// analysis. One envelope step spans duckAnalysisRate/envelopeRate
	// analysis samples.
	duckAnalysisRate = 2000

	duckGain         = 0.45
	duckFloor        = 0.35
	duckCeiling      = 1.0
	duckPercentile   = 60.0
	normalizeTarget  = 0.92
	normalizeMaxGain = 2.0
)

// ErrNoTracks reports a mix request with neither narration nor music.
var ErrNoTracks = errors.New("audio mix requires at least one track")

// TrackLoader resolves a track path to a decoded waveform. The pipeline
// supplies one backed by the WAV codec with an ffmpeg fallback for other
// containers.
type TrackLoader func(path string) (*Buffer, error)

// Mix builds the final soundtrack for a timeline: narration padded or
// truncated to the timeline, music looped under it with optional ducking,
// then fades and peak normalization. The result is mono at MixRate.
func Mix(timelineSeconds float64, cfg models.AudioConfig, load TrackLoader) (*Buffer, error) {
	if cfg.Narration == nil && cfg.Music == nil {
		return nil, ErrNoTracks
	}

	n := int(math.Round(timelineSeconds * MixRate))
	if n < 1 {
		n = 1
	}

	var narration *Buffer
	if cfg.Narration != nil {
		buf, err := load(cfg.Narration.Path)
		if err != nil {
			return nil, fmt.Errorf("load narration: %w", err)
		}
		narration = Resample(buf, MixRate)
		narration.Samples = fitLength(narration.Samples, n)
		applyGain(narration.Samples, cfg.Narration.Volume)
	}

	var music *Buffer
	if cfg.Music != nil {
		buf, err := load(cfg.Music.Path)
		if err != nil {
			return nil, fmt.Errorf("load music: %w", err)
		}
		music = Resample(buf, MixRate)
		music.Samples = loopLength(music.Samples, n)
		applyGain(music.Samples, cfg.Music.Volume)

		if cfg.Mix.DuckMusicUnderNarration && narration != nil {
			env := duckingEnvelope(narration, timelineSeconds)
			applyEnvelope(music.Samples, env)
		}
	}

	mixed := make([]float64, n)
	if narration != nil {
		for i, s := range narration.Samples {
			mixed[i] += s
		}
	}
	if music != nil {
		for i, s := range music.Samples {
			mixed[i] += s
		}
	}

	applyFadeIn(mixed, cfg.Mix.FadeInSeconds)
	applyFadeOut(mixed, cfg.Mix.FadeOutSeconds)
	normalizePeak(mixed)

	return &Buffer{Samples: mixed, Rate: MixRate}, nil
}

// duckingEnvelope computes per-step music gains from narration loudness.
// Narration is analyzed at a reduced rate with a windowed RMS; steps whose
// level reaches the 60th percentile of the track duck the music.
func duckingEnvelope(narration *Buffer, timelineSeconds float64) []float64 {
	steps := int(math.Round(timelineSeconds * envelopeRate))
	if steps < 1 {
		steps = 1
	}

	analysis := Resample(narration, duckAnalysisRate)
	window := duckAnalysisRate / envelopeRate
	levels := windowedRMS(analysis.Samples, window)
	if len(levels) == 0 {
		levels = []float64{0}
	}

	threshold := percentile(levels, duckPercentile)
	if threshold < 0.01 {
		threshold = 0.01
	}

	env := make([]float64, steps)
	for i := range env {
		idx := i * window
		if idx > len(levels)-1 {
			idx = len(levels) - 1
		}
		gain := duckCeiling
		if levels[idx] >= threshold {
			gain = duckGain
		}
		if gain < duckFloor {
			gain = duckFloor
		}
		if gain > duckCeiling {
			gain = duckCeiling
		}
		env[i] = gain
	}
	return env
}

// windowedRMS is a centered moving-average RMS with zero padding at the
// edges, computed with prefix sums so long tracks stay cheap.
func windowedRMS(samples []float64, window int) []float64 {
	if len(samples) == 0 || window < 1 {
		return nil
	}

	prefix := make([]float64, len(samples)+1)
	for i, s := range samples {
		prefix[i+1] = prefix[i] + s*s
	}

	half := window / 2
	out := make([]float64, len(samples))
	for i := range samples {
		lo := i - half
		hi := lo + window
		if lo < 0 {
			lo = 0
		}
		if hi > len(samples) {
			hi = len(samples)
		}
		out[i] = math.Sqrt((prefix[hi] - prefix[lo]) / float64(window))
	}
	return out
}

// percentile is the linearly interpolated q-th percentile of values.
func percentile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q / 100 * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// applyEnvelope scales samples by the envelope step covering their time.
func applyEnvelope(samples, env []float64) {
	if len(env) == 0 {
		return
	}
	for i := range samples {
		t := float64(i) / MixRate
		step := int(t * envelopeRate)
		if step > len(env)-1 {
			step = len(env) - 1
		}
		samples[i] *= env[step]
	}
}

func fitLength(samples []float64, n int) []float64 {
	if len(samples) >= n {
		return samples[:n]
	}
	out := make([]float64, n)
	copy(out, samples)
	return out
}

func loopLength(samples []float64, n int) []float64 {
	if len(samples) == 0 {
		return make([]float64, n)
	}
	if len(samples) >= n {
		return samples[:n]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = samples[i%len(samples)]
	}
	return out
}

func applyGain(samples []float64, gain float64) {
	if gain == 1.0 {
		return
	}
	for i := range samples {
		samples[i] *= gain
	}
}

func applyFadeIn(samples []float64, seconds float64) {
	n := int(seconds * MixRate)
	if n <= 0 {
		return
	}
	if n > len(samples) {
		n = len(samples)
	}
	for i := 0; i < n; i++ {
		samples[i] *= float64(i) / float64(n)
	}
}

func applyFadeOut(samples []float64, seconds float64) {
	n := int(seconds * MixRate)
	if n <= 0 {
		return
	}
	if n > len(samples) {
		n = len(samples)
	}
	total := len(samples)
	for i := 0; i < n; i++ {
		samples[total-1-i] *= float64(i) / float64(n)
	}
}

// normalizePeak scales the mix so its peak hits the target level, capped so
// near-silent mixes are not blown up by more than the maximum gain.
func normalizePeak(samples []float64) {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak <= 0 {
		return
	}
	gain := normalizeTarget / peak
	if gain > normalizeMaxGain {
		gain = normalizeMaxGain
	}
	for i := range samples {
		samples[i] *= gain
	}
}
