package assets

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/tanmayb/cinerender/internal/audio"
)

const (
	narrationFreq    = 170.0 // low hum standing in for a voice
	musicSeconds     = 24.0
	musicLoopName    = "royalty_free_bg.wav"
	placeholderLevel = 0.4
)

// C major triad for the placeholder music bed.
var chordFreqs = []float64{261.63, 329.63, 392.0}

// WriteNarrationTrack synthesizes a placeholder narration: a low hum with a
// slow amplitude wobble so the ducking envelope has something to react to.
func WriteNarrationTrack(dir string, seconds float64) (string, error) {
	n := int(seconds * audio.MixRate)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / audio.MixRate
		wobble := 0.7 + 0.3*math.Sin(2*math.Pi*0.4*t)
		samples[i] = placeholderLevel * wobble * math.Sin(2*math.Pi*narrationFreq*t)
	}

	path := filepath.Join(dir, "narration.wav")
	if err := audio.WriteWAV(path, &audio.Buffer{Samples: samples, Rate: audio.MixRate}); err != nil {
		return "", fmt.Errorf("write narration track: %w", err)
	}
	return path, nil
}

// EnsureMusicTrack writes the shared background chord bed once and reuses it
// for every later request.
func EnsureMusicTrack(dir string) (string, error) {
	path := filepath.Join(dir, musicLoopName)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return path, nil
	}

	n := int(musicSeconds * audio.MixRate)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / audio.MixRate
		v := 0.0
		for _, freq := range chordFreqs {
			v += math.Sin(2 * math.Pi * freq * t)
		}
		// Pulse the chord gently every second so beat detection has onsets.
		pulse := 0.55 + 0.45*math.Pow(math.Sin(math.Pi*t), 8)
		samples[i] = placeholderLevel / float64(len(chordFreqs)) * pulse * v
	}

	if err := audio.WriteWAV(path, &audio.Buffer{Samples: samples, Rate: audio.MixRate}); err != nil {
		return "", fmt.Errorf("write music track: %w", err)
	}
	return path, nil
}
