package render

import (
	"image"

	"github.com/tanmayb/cinerender/internal/models"
)

// Channel multipliers for the devotional_glow profile: highlights are pushed
// warm, shadows slightly cool.
var (
	glowWarmth       = [3]float64{1.06, 1.02, 0.94}
	glowCooledShadow = [3]float64{0.97, 0.99, 1.03}
)

// ApplyGrade applies the configured color curve to the frame in place.
// Profile "none" or a non-positive intensity is a pass-through.
func ApplyGrade(frame *image.RGBA, cfg models.ColorGradeConfig) {
	if cfg.Profile != models.GradeDevotionalGlow || cfg.Intensity <= 0 {
		return
	}
	devotionalGlow(frame, cfg.Intensity)
}

// devotionalGlow lifts contrast around the 128 midpoint, blends warm/cool
// channel multipliers weighted by normalized brightness (highlights warm,
// shadows cool), then adds a bloom term for values above 180.
func devotionalGlow(frame *image.RGBA, intensity float64) {
	contrast := 1.0 + 0.08*intensity
	bloomGain := 14.0 * intensity
	pix := frame.Pix

	for i := 0; i < len(pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(pix[i+c])
			lifted := (v-128.0)*contrast + 128.0

			highlight := clamp(lifted/255.0, 0, 1)
			graded := lifted * (glowWarmth[c]*highlight + glowCooledShadow[c]*(1.0-highlight))

			bloom := clamp((graded-180.0)/75.0, 0, 1)
			pix[i+c] = clampByte(graded + bloom*bloomGain)
		}
	}
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
