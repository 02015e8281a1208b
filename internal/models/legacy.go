package models

import (
	"encoding/json"
)

// The first iteration of the service accepted a flat request shape with
// top-level dimensions, a single transition duration, bare caption strings
// and top-level narration/music tracks. That contract is still accepted at
// the boundary and upgraded one-way into the nested RenderRequest once,
// during decode. It is not a parallel code path: everything downstream sees
// only the canonical contract.

type legacyScene struct {
	ImagePath       string   `json:"image_path"`
	DurationSeconds *float64 `json:"duration_seconds"`
	Caption         string   `json:"caption"`
}

type legacyRenderRequest struct {
	RequestID         string            `json:"request_id"`
	Seed              int64             `json:"seed"`
	Width             *int              `json:"width"`
	Height            *int              `json:"height"`
	FPS               *int              `json:"fps"`
	TransitionSeconds *float64          `json:"transition_seconds"`
	LetterboxRatio    *float64          `json:"letterbox_ratio"`
	ApplyFilmGrain    bool              `json:"apply_film_grain"`
	Scenes            []legacyScene     `json:"scenes"`
	Narration         *AudioTrackConfig `json:"narration"`
	Music             *AudioTrackConfig `json:"music"`
	AlignToBeats      bool              `json:"align_to_beats"`
}

// renderRequestAlias avoids recursing into UnmarshalJSON.
type renderRequestAlias RenderRequest

func (r *RenderRequest) UnmarshalJSON(data []byte) error {
	var probe struct {
		Video json.RawMessage `json:"video"`
		Audio json.RawMessage `json:"audio"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	// Canonical shape: both nested blocks present.
	if probe.Video != nil && probe.Audio != nil {
		var out renderRequestAlias
		if err := json.Unmarshal(data, &out); err != nil {
			return err
		}
		*r = RenderRequest(out)
		return nil
	}

	var legacy legacyRenderRequest
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	*r = upgradeLegacy(legacy)
	return nil
}

func upgradeLegacy(legacy legacyRenderRequest) RenderRequest {
	grainStrength := 0.0
	if legacy.ApplyFilmGrain {
		grainStrength = 0.25
	}

	upgraded := RenderRequest{
		RequestID: legacy.RequestID,
		Seed:      legacy.Seed,
		Video: VideoConfig{
			Width:          intOr(legacy.Width, 1920),
			Height:         intOr(legacy.Height, 1080),
			FPS:            intOr(legacy.FPS, 30),
			LetterboxRatio: floatOr(legacy.LetterboxRatio, 0.12),
			ColorGrade: ColorGradeConfig{
				Profile:   GradeDevotionalGlow,
				Intensity: 0.6,
			},
			FilmGrain: FilmGrainConfig{
				Enabled:  legacy.ApplyFilmGrain,
				Strength: grainStrength,
			},
		},
		Audio: AudioConfig{
			Narration: legacy.Narration,
			Music:     legacy.Music,
			Mix: AudioMixConfig{
				DuckMusicUnderNarration: true,
				FadeInSeconds:           2.0,
				FadeOutSeconds:          3.0,
			},
		},
		AlignToBeats: legacy.AlignToBeats,
	}

	transition := floatOr(legacy.TransitionSeconds, 0.5)
	for _, scene := range legacy.Scenes {
		upgradedScene := SceneConfig{
			ImagePath:       scene.ImagePath,
			DurationSeconds: floatOr(scene.DurationSeconds, 6.0),
			Camera: CameraConfig{
				Type:      CameraKenBurns,
				Intensity: 0.45,
			},
			Transition: TransitionConfig{
				Type:     TransitionCrossfade,
				Duration: transition,
			},
		}
		if scene.Caption != "" {
			upgradedScene.Caption = &CaptionConfig{Text: scene.Caption, Style: "cinematic_serif"}
		}
		upgraded.Scenes = append(upgraded.Scenes, upgradedScene)
	}

	return upgraded
}

func intOr(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}

func floatOr(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
