package render

import (
	"testing"

	"github.com/tanmayb/cinerender/internal/models"
)

func grainOn(strength float64) models.FilmGrainConfig {
	return models.FilmGrainConfig{Enabled: true, Strength: strength}
}

func TestGrainSeedStride(t *testing.T) {
	base := int64(4242)
	if GrainSeed(base, 0) != base {
		t.Fatalf("frame 0 grain seed = %d, want base seed %d", GrainSeed(base, 0), base)
	}
	if GrainSeed(base, 1)-GrainSeed(base, 0) != grainSeedStride {
		t.Fatalf("frame stride = %d, want %d", GrainSeed(base, 1)-GrainSeed(base, 0), grainSeedStride)
	}
}

func TestFrameIndex(t *testing.T) {
	cases := []struct {
		t    float64
		fps  int
		want int
	}{
		{0, 30, 0},
		{1.0, 30, 30},
		{0.5, 30, 15},
		{0.0333, 30, 1},
		{-1, 30, 0},
	}
	for _, c := range cases {
		if got := FrameIndex(c.t, c.fps); got != c.want {
			t.Fatalf("FrameIndex(%f, %d) = %d, want %d", c.t, c.fps, got, c.want)
		}
	}
}

func TestGrainDeterministicPerFrame(t *testing.T) {
	a := solidFrame(16, 16, 128, 128, 128)
	b := solidFrame(16, 16, 128, 128, 128)
	ApplyGrain(a, 0.1, 30, 77, grainOn(0.25))
	ApplyGrain(b, 0.1, 30, 77, grainOn(0.25))
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("grain not deterministic at byte %d", i)
		}
	}
}

func TestGrainVariesByFrameIndex(t *testing.T) {
	a := solidFrame(16, 16, 128, 128, 128)
	b := solidFrame(16, 16, 128, 128, 128)
	// Adjacent frame times map to different frame indices.
	ApplyGrain(a, 0.1, 30, 77, grainOn(0.25))
	ApplyGrain(b, 0.1333, 30, 77, grainOn(0.25))

	same := true
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("adjacent frames produced identical grain")
	}
}

func TestGrainDisabledNoop(t *testing.T) {
	frame := solidFrame(8, 8, 100, 150, 200)
	want := make([]uint8, len(frame.Pix))
	copy(want, frame.Pix)

	ApplyGrain(frame, 0.1, 30, 77, models.FilmGrainConfig{Enabled: false, Strength: 0.25})
	for i := range frame.Pix {
		if frame.Pix[i] != want[i] {
			t.Fatal("disabled grain modified the frame")
		}
	}

	ApplyGrain(frame, 0.1, 30, 77, grainOn(0))
	for i := range frame.Pix {
		if frame.Pix[i] != want[i] {
			t.Fatal("zero-strength grain modified the frame")
		}
	}
}

func TestGrainPreservesAlpha(t *testing.T) {
	frame := solidFrame(8, 8, 128, 128, 128)
	ApplyGrain(frame, 0.1, 30, 77, grainOn(1.0))
	for i := 3; i < len(frame.Pix); i += 4 {
		if frame.Pix[i] != 255 {
			t.Fatalf("alpha modified at byte %d", i)
		}
	}
}
