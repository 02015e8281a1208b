package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/tanmayb/cinerender/internal/audio"
	"github.com/tanmayb/cinerender/internal/models"
	"github.com/tanmayb/cinerender/internal/storage"
)

func writeScenePNG(t *testing.T, dir, name string, tint uint8) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 180))
	for y := 0; y < 180; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), tint, uint8(y % 256), 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	return path
}

func writeToneWAV(t *testing.T, dir, name string, freq, seconds float64) string {
	t.Helper()
	n := int(seconds * audio.MixRate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.6 * math.Sin(2*math.Pi*freq*float64(i)/audio.MixRate)
	}
	path := filepath.Join(dir, name)
	if err := audio.WriteWAV(path, &audio.Buffer{Samples: samples, Rate: audio.MixRate}); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testRequest(t *testing.T, assetDir string) *models.RenderRequest {
	t.Helper()
	return &models.RenderRequest{
		RequestID: "pipeline-test",
		Seed:      1234,
		Video: models.VideoConfig{
			Width:  320,
			Height: 240,
			FPS:    12,
			ColorGrade: models.ColorGradeConfig{
				Profile:   models.GradeDevotionalGlow,
				Intensity: 0.6,
			},
			FilmGrain: models.FilmGrainConfig{Enabled: true, Strength: 0.25},
		},
		Scenes: []models.SceneConfig{
			{
				ImagePath:       writeScenePNG(t, assetDir, "a.png", 40),
				DurationSeconds: 1,
				Camera:          models.CameraConfig{Type: models.CameraKenBurns, Intensity: 0.45},
			},
			{
				ImagePath:       writeScenePNG(t, assetDir, "b.png", 200),
				DurationSeconds: 1,
				Camera:          models.CameraConfig{Type: models.CameraKenBurns, Intensity: 0.45},
				Transition:      models.TransitionConfig{Type: models.TransitionCrossfade, Duration: 0.3},
				Caption:         &models.CaptionConfig{Text: "Be still and know"},
			},
		},
		Audio: models.AudioConfig{
			Narration: &models.AudioTrackConfig{
				Path:   writeToneWAV(t, assetDir, "narration.wav", 170, 2.5),
				Volume: 1.0,
			},
			Music: &models.AudioTrackConfig{
				Path:   writeToneWAV(t, assetDir, "music.wav", 261.63, 1.0),
				Volume: 0.4,
			},
			Mix: models.AudioMixConfig{DuckMusicUnderNarration: true},
		},
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	limits := Limits{MaxScenes: 24, MaxTotalDuration: 900}
	return New(limits, store, &Exporter{}, 2), store
}

func TestRenderEndToEnd(t *testing.T) {
	p, store := newTestPipeline(t)
	req := testRequest(t, t.TempDir())

	resp, err := p.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("status = %s", resp.Status)
	}
	if resp.Seed != 1234 {
		t.Fatalf("seed = %d", resp.Seed)
	}
	if resp.Metrics == nil || resp.Metrics.SceneCount != 2 {
		t.Fatalf("metrics = %+v", resp.Metrics)
	}
	if math.Abs(resp.Metrics.TimelineSeconds-1.7) > 1e-9 {
		t.Fatalf("timeline = %f, want 1.7", resp.Metrics.TimelineSeconds)
	}

	info, err := os.Stat(resp.OutputVideoPath)
	if err != nil || info.Size() == 0 {
		t.Fatalf("published output missing: %v", err)
	}
	if filepath.Dir(resp.OutputVideoPath) != store.OutputRoot() {
		t.Fatalf("output %s not under output root", resp.OutputVideoPath)
	}

	// The scratch space is gone after a successful render.
	entries, err := os.ReadDir(filepath.Join(filepath.Dir(store.OutputRoot()), "tmp"))
	if err != nil {
		t.Fatalf("read tmp root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("workdir leaked: %v", entries)
	}
}

func TestRenderDeterministic(t *testing.T) {
	assetDir := t.TempDir()

	p1, _ := newTestPipeline(t)
	resp1, err := p1.Render(context.Background(), testRequest(t, assetDir))
	if err != nil {
		t.Fatalf("first render: %v", err)
	}

	// Fresh pipeline and storage: nothing carries over but the request.
	p2, _ := newTestPipeline(t)
	resp2, err := p2.Render(context.Background(), testRequest(t, assetDir))
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	a, err := os.ReadFile(resp1.OutputVideoPath)
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}
	b, err := os.ReadFile(resp2.OutputVideoPath)
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("two renders of the same request differ byte-for-byte")
	}
}

func TestRenderRejectsMissingImage(t *testing.T) {
	p, _ := newTestPipeline(t)
	req := testRequest(t, t.TempDir())
	req.Scenes[0].ImagePath = "/nonexistent/scene.png"

	_, err := p.Render(context.Background(), req)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("/nonexistent/scene.png")) {
		t.Fatalf("error %q does not name the missing path", err)
	}
}

func TestRenderRejectsTooManyScenes(t *testing.T) {
	p, _ := newTestPipeline(t)
	assetDir := t.TempDir()
	req := testRequest(t, assetDir)

	scene := req.Scenes[0]
	req.Scenes = nil
	for i := 0; i < 25; i++ {
		req.Scenes = append(req.Scenes, scene)
	}

	_, err := p.Render(context.Background(), req)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRenderRejectsMissingAudio(t *testing.T) {
	p, _ := newTestPipeline(t)
	req := testRequest(t, t.TempDir())
	req.Audio.Narration = nil
	req.Audio.Music = nil

	_, err := p.Render(context.Background(), req)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRenderRejectsOverlongTimeline(t *testing.T) {
	p, _ := newTestPipeline(t)
	req := testRequest(t, t.TempDir())
	for i := range req.Scenes {
		req.Scenes[i].DurationSeconds = 50
	}
	p.limits.MaxTotalDuration = 60

	_, err := p.Render(context.Background(), req)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestRenderBeatAlignment(t *testing.T) {
	p, _ := newTestPipeline(t)
	assetDir := t.TempDir()
	req := testRequest(t, assetDir)
	req.AlignToBeats = true

	// Pulsed music every half second so the detector has a grid to find.
	n := int(4.0 * audio.MixRate)
	samples := make([]float64, n)
	for beat := 0.0; beat < 4.0; beat += 0.5 {
		start := int(beat * audio.MixRate)
		for i := 0; i < audio.MixRate/20 && start+i < n; i++ {
			samples[start+i] = 0.9 * math.Sin(2*math.Pi*200*float64(i)/audio.MixRate)
		}
	}
	musicPath := filepath.Join(assetDir, "beats.wav")
	if err := audio.WriteWAV(musicPath, &audio.Buffer{Samples: samples, Rate: audio.MixRate}); err != nil {
		t.Fatalf("write music: %v", err)
	}
	req.Audio.Music.Path = musicPath
	req.Scenes[0].DurationSeconds = 1.2
	req.Scenes[1].DurationSeconds = 1.2

	resp, err := p.Render(context.Background(), req)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if resp.Metrics.BeatCount < 2 {
		t.Fatalf("beat count = %d, want at least 2", resp.Metrics.BeatCount)
	}
	// 1.2s scenes quantized onto a ~0.5s grid land on whole beat multiples.
	for i, scene := range req.Scenes {
		units := scene.DurationSeconds / 0.5
		if math.Abs(units-math.Round(units)) > 0.15 {
			t.Fatalf("scene %d duration %f not on the beat grid", i, scene.DurationSeconds)
		}
	}
}

func TestExporterWavOnlyLoader(t *testing.T) {
	e := &Exporter{}
	if _, err := e.LoadTrack("music.mp3"); err == nil {
		t.Fatal("expected non-WAV load to fail without ffmpeg")
	}
}
