package render

import (
	"image"
	"math"
	"testing"

	"github.com/tanmayb/cinerender/internal/models"
)

func testScene(duration, fade float64) models.SceneConfig {
	scene := models.SceneConfig{
		ImagePath:       "unused.png",
		DurationSeconds: duration,
		Camera:          models.CameraConfig{Type: models.CameraStatic},
	}
	if fade > 0 {
		scene.Transition = models.TransitionConfig{Type: models.TransitionCrossfade, Duration: fade}
	}
	return scene
}

func testClips(t *testing.T, scenes []models.SceneConfig, r, g, b uint8) []*SceneClip {
	t.Helper()
	clips := make([]*SceneClip, len(scenes))
	for i, scene := range scenes {
		clip, err := NewSceneClip(solidFrame(64, 36, r, g, b), scene, 42, i, 64, 36)
		if err != nil {
			t.Fatalf("NewSceneClip %d: %v", i, err)
		}
		clips[i] = clip
	}
	return clips
}

func TestComposeTimelineEmpty(t *testing.T) {
	if _, err := ComposeTimeline(nil, nil); err != ErrNoClips {
		t.Fatalf("err = %v, want ErrNoClips", err)
	}
}

func TestComposeTimelineDuration(t *testing.T) {
	// Three 6s scenes with a 0.6s crossfade between each pair: each of the
	// two overlaps removes 0.6s, so 18 - 1.2 = 16.8s total.
	scenes := []models.SceneConfig{
		testScene(6, 0),
		testScene(6, 0.6),
		testScene(6, 0.6),
	}
	tl, err := ComposeTimeline(testClips(t, scenes, 200, 100, 50), scenes)
	if err != nil {
		t.Fatalf("ComposeTimeline: %v", err)
	}
	if math.Abs(tl.Duration-16.8) > 1e-9 {
		t.Fatalf("duration = %f, want 16.8", tl.Duration)
	}
}

func TestComposeTimelineNoTransitions(t *testing.T) {
	scenes := []models.SceneConfig{testScene(4, 0), testScene(5, 0), testScene(3, 0)}
	tl, err := ComposeTimeline(testClips(t, scenes, 10, 10, 10), scenes)
	if err != nil {
		t.Fatalf("ComposeTimeline: %v", err)
	}
	if tl.Duration != 12 {
		t.Fatalf("duration = %f, want 12", tl.Duration)
	}
	wantStarts := []float64{0, 4, 9}
	for i, p := range tl.Placements {
		if p.Start != wantStarts[i] {
			t.Fatalf("placement %d starts at %f, want %f", i, p.Start, wantStarts[i])
		}
		if p.FadeIn != 0 {
			t.Fatalf("placement %d has unexpected fade %f", i, p.FadeIn)
		}
	}
}

func TestComposeTimelineFadeCap(t *testing.T) {
	// A 3s crossfade into a 1s clip is clamped to 80% of the clip.
	scenes := []models.SceneConfig{testScene(1, 0), testScene(1, 3)}
	tl, err := ComposeTimeline(testClips(t, scenes, 10, 10, 10), scenes)
	if err != nil {
		t.Fatalf("ComposeTimeline: %v", err)
	}
	if math.Abs(tl.Placements[1].FadeIn-0.8) > 1e-9 {
		t.Fatalf("fade = %f, want capped 0.8", tl.Placements[1].FadeIn)
	}
	if math.Abs(tl.Duration-1.2) > 1e-9 {
		t.Fatalf("duration = %f, want 1.2", tl.Duration)
	}
}

func TestSampleCrossfadeBlends(t *testing.T) {
	scenes := []models.SceneConfig{testScene(2, 0), testScene(2, 1)}
	darkClip, err := NewSceneClip(solidFrame(64, 36, 0, 0, 0), scenes[0], 42, 0, 64, 36)
	if err != nil {
		t.Fatalf("NewSceneClip: %v", err)
	}
	brightClip, err := NewSceneClip(solidFrame(64, 36, 200, 200, 200), scenes[1], 42, 1, 64, 36)
	if err != nil {
		t.Fatalf("NewSceneClip: %v", err)
	}
	clips := []*SceneClip{darkClip, brightClip}

	tl, err := ComposeTimeline(clips, scenes)
	if err != nil {
		t.Fatalf("ComposeTimeline: %v", err)
	}

	// Midway through the overlap the bright clip is at half opacity.
	frame := tl.Sample(1.5, 64, 36)
	v := frame.RGBAAt(32, 18)
	if v.R < 80 || v.R > 120 {
		t.Fatalf("mid-fade luminance = %d, want around 100", v.R)
	}

	// Past the fade window only the second clip shows.
	frame = tl.Sample(2.5, 64, 36)
	v = frame.RGBAAt(32, 18)
	if v.R < 195 {
		t.Fatalf("post-fade luminance = %d, want full brightness", v.R)
	}
}

func TestSampleOutsideTimelineIsBlack(t *testing.T) {
	scenes := []models.SceneConfig{testScene(2, 0)}
	tl, err := ComposeTimeline(testClips(t, scenes, 255, 255, 255), scenes)
	if err != nil {
		t.Fatalf("ComposeTimeline: %v", err)
	}
	frame := tl.Sample(5.0, 64, 36)
	v := frame.RGBAAt(10, 10)
	if v.R != 0 || v.G != 0 || v.B != 0 || v.A != 255 {
		t.Fatalf("out-of-range sample = %v, want opaque black", v)
	}
}

func TestClipFrameCoversCanvas(t *testing.T) {
	scene := testScene(4, 0)
	clip, err := NewSceneClip(solidFrame(64, 36, 90, 90, 90), scene, 42, 0, 64, 36)
	if err != nil {
		t.Fatalf("NewSceneClip: %v", err)
	}
	frame := clip.FrameAt(2.0, 64, 36)
	b := frame.Bounds()
	if b != image.Rect(0, 0, 64, 36) {
		t.Fatalf("frame bounds = %v", b)
	}
	center := frame.RGBAAt(32, 18)
	if center.R < 85 || center.R > 95 {
		t.Fatalf("center pixel = %v, want near source gray", center)
	}
}
