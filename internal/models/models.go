package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Enums
type RenderStatus string

const (
	RenderStatusQueued    RenderStatus = "queued"
	RenderStatusRunning   RenderStatus = "running"
	RenderStatusSucceeded RenderStatus = "succeeded"
	RenderStatusFailed    RenderStatus = "failed"
)

type CameraType string

const (
	CameraStatic   CameraType = "static"
	CameraKenBurns CameraType = "kenburns"
)

type TransitionType string

const (
	TransitionNone      TransitionType = "none"
	TransitionCrossfade TransitionType = "crossfade"
)

type GradeProfile string

const (
	GradeNone           GradeProfile = "none"
	GradeDevotionalGlow GradeProfile = "devotional_glow"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Render contract

type ColorGradeConfig struct {
	Profile   GradeProfile `json:"profile"`
	Intensity float64      `json:"intensity"`
}

type FilmGrainConfig struct {
	Enabled  bool    `json:"enabled"`
	Strength float64 `json:"strength"`
}

type VideoConfig struct {
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	FPS            int              `json:"fps"`
	LetterboxRatio float64          `json:"letterbox_ratio"`
	ColorGrade     ColorGradeConfig `json:"color_grade"`
	FilmGrain      FilmGrainConfig  `json:"film_grain"`
}

type CameraConfig struct {
	Type      CameraType `json:"type"`
	Intensity float64    `json:"intensity"`
}

type TransitionConfig struct {
	Type     TransitionType `json:"type"`
	Duration float64        `json:"duration"`
}

type CaptionConfig struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

type SceneConfig struct {
	ImagePath       string           `json:"image_path"`
	DurationSeconds float64          `json:"duration_seconds"`
	Camera          CameraConfig     `json:"camera"`
	Transition      TransitionConfig `json:"transition"`
	Caption         *CaptionConfig   `json:"caption,omitempty"`
}

type AudioTrackConfig struct {
	Path   string  `json:"path"`
	Volume float64 `json:"volume"`
}

type AudioMixConfig struct {
	DuckMusicUnderNarration bool    `json:"duck_music_under_narration"`
	FadeInSeconds           float64 `json:"fade_in_seconds"`
	FadeOutSeconds          float64 `json:"fade_out_seconds"`
}

type AudioConfig struct {
	Narration *AudioTrackConfig `json:"narration,omitempty"`
	Music     *AudioTrackConfig `json:"music,omitempty"`
	Mix       AudioMixConfig    `json:"mix"`
}

// RenderRequest is the canonical render contract. The flat legacy contract
// (top-level width/height/narration/music, bare caption strings) is upgraded
// into this shape during JSON decoding — see legacy.go.
type RenderRequest struct {
	RequestID    string        `json:"request_id"`
	Seed         int64         `json:"seed"`
	Video        VideoConfig   `json:"video"`
	Scenes       []SceneConfig `json:"scenes"`
	Audio        AudioConfig   `json:"audio"`
	AlignToBeats bool          `json:"align_to_beats,omitempty"`
}

// Normalize fills unset fields with the contract defaults. Zero values that
// are out of range for a field are treated as "not provided"; in-range zeros
// (letterbox_ratio, intensities, fade durations) are kept as given.
func (r *RenderRequest) Normalize() {
	if r.Video.Width == 0 {
		r.Video.Width = 1920
	}
	if r.Video.Height == 0 {
		r.Video.Height = 1080
	}
	if r.Video.FPS == 0 {
		r.Video.FPS = 30
	}
	for i := range r.Scenes {
		scene := &r.Scenes[i]
		if scene.DurationSeconds == 0 {
			scene.DurationSeconds = 6.0
		}
		if scene.Camera.Type == "" {
			scene.Camera.Type = CameraKenBurns
		}
		if scene.Transition.Type == "" {
			scene.Transition.Type = TransitionCrossfade
		}
	}
	if r.Audio.Narration != nil && r.Audio.Narration.Volume == 0 {
		r.Audio.Narration.Volume = 1.0
	}
	if r.Audio.Music != nil && r.Audio.Music.Volume == 0 {
		r.Audio.Music.Volume = 1.0
	}
}

// Validate enforces the field constraints of the wire contract. It does not
// touch the filesystem; path existence is checked by the pipeline's
// validation step so schema errors surface before any I/O.
func (r *RenderRequest) Validate() error {
	if len(r.RequestID) < 3 || len(r.RequestID) > 128 {
		return fmt.Errorf("request_id must be 3-128 characters")
	}
	if r.Seed < 0 || r.Seed > 2147483647 {
		return fmt.Errorf("seed must be in [0, 2147483647]")
	}
	if r.Video.Width < 320 || r.Video.Width > 3840 {
		return fmt.Errorf("video width must be in [320, 3840]")
	}
	if r.Video.Height < 240 || r.Video.Height > 2160 {
		return fmt.Errorf("video height must be in [240, 2160]")
	}
	if r.Video.FPS < 12 || r.Video.FPS > 60 {
		return fmt.Errorf("fps must be in [12, 60]")
	}
	if r.Video.LetterboxRatio < 0 || r.Video.LetterboxRatio > 0.3 {
		return fmt.Errorf("letterbox_ratio must be in [0, 0.3]")
	}
	if r.Video.ColorGrade.Intensity < 0 || r.Video.ColorGrade.Intensity > 1 {
		return fmt.Errorf("color_grade intensity must be in [0, 1]")
	}
	switch r.Video.ColorGrade.Profile {
	case "", GradeNone, GradeDevotionalGlow:
	default:
		return fmt.Errorf("unknown color grade profile: %s", r.Video.ColorGrade.Profile)
	}
	if r.Video.FilmGrain.Strength < 0 || r.Video.FilmGrain.Strength > 1 {
		return fmt.Errorf("film_grain strength must be in [0, 1]")
	}
	if len(r.Scenes) == 0 {
		return fmt.Errorf("at least one scene is required")
	}
	for i, scene := range r.Scenes {
		if scene.ImagePath == "" {
			return fmt.Errorf("scene %d: image_path is required", i)
		}
		if scene.DurationSeconds <= 0.25 || scene.DurationSeconds > 60 {
			return fmt.Errorf("scene %d: duration_seconds must be in (0.25, 60]", i)
		}
		switch scene.Camera.Type {
		case CameraStatic, CameraKenBurns:
		default:
			return fmt.Errorf("scene %d: unknown camera type: %s", i, scene.Camera.Type)
		}
		if scene.Camera.Intensity < 0 || scene.Camera.Intensity > 1 {
			return fmt.Errorf("scene %d: camera intensity must be in [0, 1]", i)
		}
		switch scene.Transition.Type {
		case TransitionNone, TransitionCrossfade:
		default:
			return fmt.Errorf("scene %d: unknown transition type: %s", i, scene.Transition.Type)
		}
		if scene.Transition.Duration < 0 || scene.Transition.Duration > 3 {
			return fmt.Errorf("scene %d: transition duration must be in [0, 3]", i)
		}
		if scene.Caption != nil {
			if scene.Caption.Text == "" || len(scene.Caption.Text) > 240 {
				return fmt.Errorf("scene %d: caption text must be 1-240 characters", i)
			}
		}
	}
	if err := validateTrack("narration", r.Audio.Narration); err != nil {
		return err
	}
	if err := validateTrack("music", r.Audio.Music); err != nil {
		return err
	}
	if r.Audio.Narration == nil && r.Audio.Music == nil {
		return fmt.Errorf("at least one audio track (narration or music) must be provided")
	}
	if r.Audio.Mix.FadeInSeconds < 0 || r.Audio.Mix.FadeInSeconds > 15 {
		return fmt.Errorf("fade_in_seconds must be in [0, 15]")
	}
	if r.Audio.Mix.FadeOutSeconds < 0 || r.Audio.Mix.FadeOutSeconds > 15 {
		return fmt.Errorf("fade_out_seconds must be in [0, 15]")
	}
	return nil
}

func validateTrack(name string, track *AudioTrackConfig) error {
	if track == nil {
		return nil
	}
	if track.Path == "" {
		return fmt.Errorf("%s track path is required", name)
	}
	if track.Volume <= 0 || track.Volume > 2 {
		return fmt.Errorf("%s track volume must be in (0, 2]", name)
	}
	return nil
}

// TotalSceneSeconds sums the raw scene durations (before crossfade overlap).
func (r *RenderRequest) TotalSceneSeconds() float64 {
	total := 0.0
	for _, scene := range r.Scenes {
		total += scene.DurationSeconds
	}
	return total
}

type RenderMetrics struct {
	RenderSeconds   float64 `json:"render_seconds"`
	TimelineSeconds float64 `json:"timeline_seconds"`
	SceneCount      int     `json:"scene_count"`
	BeatCount       int     `json:"beat_count,omitempty"`
}

type RenderResponse struct {
	RequestID       string         `json:"request_id"`
	Status          string         `json:"status"`
	OutputVideoPath string         `json:"output_video_path,omitempty"`
	Seed            int64          `json:"seed"`
	RenderedAt      time.Time      `json:"rendered_at"`
	Metrics         *RenderMetrics `json:"metrics,omitempty"`
	Message         string         `json:"message,omitempty"`
}

// Job bookkeeping

type RenderJob struct {
	ID           uuid.UUID    `json:"id"`
	RequestID    string       `json:"request_id"`
	Type         string       `json:"type"` // "render" or "generate"
	Status       RenderStatus `json:"status"`
	Attempts     int          `json:"attempts"`
	Response     JSONB        `json:"response,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// DTOs for API responses

type CreateRenderResponse struct {
	JobID     uuid.UUID    `json:"job_id"`
	RequestID string       `json:"request_id"`
	Status    RenderStatus `json:"status"`
}

// GeneratePayload drives the placeholder-asset generation path: scene lines,
// narration and music are synthesized locally, then rendered like any other
// request.
type GeneratePayload struct {
	Topic      string `json:"topic"`
	Style      string `json:"style"`
	Resolution string `json:"resolution"` // "1080p" or "720p"
	FilmGrain  bool   `json:"film_grain"`
	KenBurns   bool   `json:"ken_burns"`
}

func (p *GeneratePayload) Normalize() {
	if p.Topic == "" {
		p.Topic = "Cinematic devotional video"
	}
	if p.Style == "" {
		p.Style = "Devotional"
	}
	if p.Resolution == "" {
		p.Resolution = "1080p"
	}
}
