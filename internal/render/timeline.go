package render

import (
	"errors"
	"image"

	"github.com/tanmayb/cinerender/internal/models"
)

// ErrNoClips is returned when composition is attempted with an empty scene
// list.
var ErrNoClips = errors.New("no clips supplied for composition")

// crossfadeCap limits a fade to 80% of the incoming clip so a transition can
// never consume the whole scene.
const crossfadeCap = 0.8

// Placement is a clip positioned on the absolute timeline. FadeIn > 0 marks
// a crossfade region: the clip ramps its opacity over the first FadeIn
// seconds while the previous clip is still on screen underneath.
type Placement struct {
	Clip   *SceneClip
	Start  float64
	FadeIn float64
}

// Timeline is the fully-placed sequence of scene clips. Start times are
// non-decreasing; the only overlap between placements is the intentional
// crossfade region.
type Timeline struct {
	Placements []Placement
	Duration   float64
}

// ComposeTimeline places clips on an absolute timeline. Each clip starts
// where the previous one ended, except that a crossfade on the following
// clip pulls its start back by the capped fade amount, creating the overlap.
// Total duration is the furthest clip end.
func ComposeTimeline(clips []*SceneClip, scenes []models.SceneConfig) (*Timeline, error) {
	if len(clips) == 0 {
		return nil, ErrNoClips
	}

	timeline := &Timeline{Placements: make([]Placement, 0, len(clips))}
	currentStart := 0.0

	for i, clip := range clips {
		placement := Placement{Clip: clip, Start: currentStart}
		if i > 0 {
			if fade := crossfadeSeconds(scenes[i].Transition, clip.Duration); fade > 0 {
				placement.FadeIn = fade
			}
		}
		timeline.Placements = append(timeline.Placements, placement)

		currentStart += clip.Duration
		if i < len(clips)-1 {
			// The next clip's crossfade is measured against this clip's
			// duration cap, matching how far back the overlap may reach.
			currentStart -= crossfadeSeconds(scenes[i+1].Transition, clip.Duration)
		}
	}

	for _, placement := range timeline.Placements {
		if end := placement.Start + placement.Clip.Duration; end > timeline.Duration {
			timeline.Duration = end
		}
	}
	return timeline, nil
}

func crossfadeSeconds(transition models.TransitionConfig, clipDuration float64) float64 {
	if transition.Type != models.TransitionCrossfade || transition.Duration <= 0 {
		return 0
	}
	fade := transition.Duration
	if cap := clipDuration * crossfadeCap; fade > cap {
		fade = cap
	}
	return fade
}

// Sample renders the composited frame at absolute time t. Active placements
// are drawn in order over a black canvas; a placement inside its fade-in
// window contributes with ramped opacity, which is what produces the
// crossfade against the still-active previous clip underneath.
func (tl *Timeline) Sample(t float64, width, height int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRows(canvas, 0, height)

	for _, placement := range tl.Placements {
		local := t - placement.Start
		if local < 0 || local >= placement.Clip.Duration {
			continue
		}
		frame := placement.Clip.FrameAt(local, width, height)

		opacity := 1.0
		if placement.FadeIn > 0 && local < placement.FadeIn {
			opacity = local / placement.FadeIn
		}
		blendOver(canvas, frame, opacity)
	}
	return canvas
}

// blendOver composites src over dst with an extra global opacity multiplier.
func blendOver(dst, src *image.RGBA, opacity float64) {
	if opacity >= 1 {
		opacity = 1
	}
	for i := 0; i < len(dst.Pix); i += 4 {
		a := float64(src.Pix[i+3]) / 255.0 * opacity
		if a <= 0 {
			continue
		}
		inv := 1.0 - a
		dst.Pix[i] = clampByte(float64(src.Pix[i])*a + float64(dst.Pix[i])*inv)
		dst.Pix[i+1] = clampByte(float64(src.Pix[i+1])*a + float64(dst.Pix[i+1])*inv)
		dst.Pix[i+2] = clampByte(float64(src.Pix[i+2])*a + float64(dst.Pix[i+2])*inv)
		dst.Pix[i+3] = 255
	}
}
