package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tanmayb/cinerender/internal/models"
)

const generatedSceneSeconds = 6.0

// SceneLineSource supplies per-scene caption lines for a topic.
// ScriptService is the production implementation.
type SceneLineSource interface {
	GenerateSceneLines(ctx context.Context, topic string) []string
}

// Builder assembles a complete render request from a bare topic: scene
// lines, gradient images, synthesized narration and the shared music bed.
type Builder struct {
	script   SceneLineSource
	assetDir string
}

func NewBuilder(script SceneLineSource, assetDir string) *Builder {
	return &Builder{script: script, assetDir: assetDir}
}

// Build writes every asset a render needs into the asset directory and
// returns the request referencing them.
func (b *Builder) Build(ctx context.Context, payload models.GeneratePayload) (*models.RenderRequest, error) {
	payload.Normalize()

	width, height := 1920, 1080
	if payload.Resolution == "720p" {
		width, height = 1280, 720
	}

	lines := b.script.GenerateSceneLines(ctx, payload.Topic)

	requestID := fmt.Sprintf("gen-%s-%s", time.Now().UTC().Format("20060102"), uuid.New().String()[:8])
	sceneDir := b.assetDir

	cameraType := models.CameraStatic
	cameraIntensity := 0.0
	if payload.KenBurns {
		cameraType = models.CameraKenBurns
		cameraIntensity = 0.45
	}
	grainStrength := 0.0
	if payload.FilmGrain {
		grainStrength = 0.25
	}

	scenes := make([]models.SceneConfig, 0, len(lines))
	for i, line := range lines {
		imagePath, err := WriteSceneImage(sceneDir, i, width, height)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, models.SceneConfig{
			ImagePath:       imagePath,
			DurationSeconds: generatedSceneSeconds,
			Camera: models.CameraConfig{
				Type:      cameraType,
				Intensity: cameraIntensity,
			},
			Transition: models.TransitionConfig{
				Type:     models.TransitionCrossfade,
				Duration: 0.5,
			},
			Caption: &models.CaptionConfig{Text: line, Style: "cinematic_serif"},
		})
	}

	narrationPath, err := WriteNarrationTrack(sceneDir, generatedSceneSeconds*float64(len(scenes)))
	if err != nil {
		return nil, err
	}
	musicPath, err := EnsureMusicTrack(sceneDir)
	if err != nil {
		return nil, err
	}

	seed := int64(uuid.New().ID() % 2147483647)

	return &models.RenderRequest{
		RequestID: requestID,
		Seed:      seed,
		Video: models.VideoConfig{
			Width:          width,
			Height:         height,
			FPS:            30,
			LetterboxRatio: 0.12,
			ColorGrade: models.ColorGradeConfig{
				Profile:   models.GradeDevotionalGlow,
				Intensity: 0.6,
			},
			FilmGrain: models.FilmGrainConfig{
				Enabled:  payload.FilmGrain,
				Strength: grainStrength,
			},
		},
		Scenes: scenes,
		Audio: models.AudioConfig{
			Narration: &models.AudioTrackConfig{Path: narrationPath, Volume: 1.0},
			Music:     &models.AudioTrackConfig{Path: musicPath, Volume: 0.4},
			Mix: models.AudioMixConfig{
				DuckMusicUnderNarration: true,
				FadeInSeconds:           2.0,
				FadeOutSeconds:          3.0,
			},
		},
	}, nil
}
