// Package pipeline runs a render end to end: validate, compose the visual
// timeline, mix the soundtrack, encode and publish the artifact, clean up
// the scratch space. One call, one request, one output file.
package pipeline

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/tanmayb/cinerender/internal/audio"
	"github.com/tanmayb/cinerender/internal/beats"
	"github.com/tanmayb/cinerender/internal/models"
	"github.com/tanmayb/cinerender/internal/render"
	"github.com/tanmayb/cinerender/internal/storage"
)

// Limits are the request-independent caps enforced during validation.
type Limits struct {
	MaxScenes        int
	MaxTotalDuration float64
}

type Pipeline struct {
	limits   Limits
	store    *storage.Store
	exporter *Exporter
	decode   render.ImageDecoder
	load     audio.TrackLoader
	detector beats.Detector
	workers  int
}

// New builds a pipeline around a storage layout and an exporter. The image
// decoder and track loader default to the exporter's file-backed versions.
func New(limits Limits, store *storage.Store, exporter *Exporter, workers int) *Pipeline {
	return &Pipeline{
		limits:   limits,
		store:    store,
		exporter: exporter,
		decode:   render.DecodeImageFile,
		load:     exporter.LoadTrack,
		detector: beats.EnergyDetector{},
		workers:  workers,
	}
}

// Render is the single synchronous entry point. The request is normalized
// and validated first; no rendering work starts on bad input. The scratch
// workdir is removed on every exit path once created.
func (p *Pipeline) Render(ctx context.Context, req *models.RenderRequest) (*models.RenderResponse, error) {
	started := time.Now()

	req.Normalize()
	if err := p.validate(req); err != nil {
		return nil, err
	}

	beatCount := 0
	if req.AlignToBeats && req.Audio.Music != nil {
		n, err := p.alignScenes(req)
		if err != nil {
			return nil, err
		}
		beatCount = n
	}

	if total := req.TotalSceneSeconds(); total > p.limits.MaxTotalDuration {
		return nil, invalidInput("total duration %.1fs exceeds the %.0fs limit", total, p.limits.MaxTotalDuration)
	}

	comp, err := render.NewCompositor(req, p.decode)
	if err != nil {
		return nil, compositionErr(err)
	}

	mix, err := audio.Mix(comp.Duration(), req.Audio, p.load)
	if err != nil {
		return nil, mixErr(err)
	}

	workdir, err := p.store.CreateWorkdir(req.RequestID)
	if err != nil {
		return nil, exportErr(err)
	}
	defer func() {
		if err := p.store.RemoveWorkdir(workdir); err != nil {
			log.Printf("[Pipeline] Failed to clean up workdir %s: %v", workdir, err)
		}
	}()

	outputPath, err := p.exporter.Export(ctx, ExportJob{
		RequestID:  req.RequestID,
		Video:      req.Video,
		Compositor: comp,
		Mix:        mix,
		Workdir:    workdir,
		Workers:    p.workers,
	}, p.store)
	if err != nil {
		return nil, exportErr(err)
	}

	log.Printf("[Pipeline] Rendered %s in %.1fs (%d scenes, %.1fs timeline)",
		req.RequestID, time.Since(started).Seconds(), len(req.Scenes), comp.Duration())

	return &models.RenderResponse{
		RequestID:       req.RequestID,
		Status:          "completed",
		OutputVideoPath: outputPath,
		Seed:            req.Seed,
		RenderedAt:      time.Now().UTC(),
		Metrics: &models.RenderMetrics{
			RenderSeconds:   time.Since(started).Seconds(),
			TimelineSeconds: comp.Duration(),
			SceneCount:      len(req.Scenes),
			BeatCount:       beatCount,
		},
	}, nil
}

// validate runs the schema checks plus the filesystem and limit checks that
// need pipeline configuration. All failures are input errors; nothing here
// touches the scratch space.
func (p *Pipeline) validate(req *models.RenderRequest) error {
	if err := req.Validate(); err != nil {
		return invalidInput("%v", err)
	}
	if len(req.Scenes) > p.limits.MaxScenes {
		return invalidInput("scene count %d exceeds the %d scene limit", len(req.Scenes), p.limits.MaxScenes)
	}
	for i, scene := range req.Scenes {
		if err := checkRegularFile(scene.ImagePath); err != nil {
			return invalidInput("scene %d image %s: %v", i, scene.ImagePath, err)
		}
	}
	for _, track := range []*models.AudioTrackConfig{req.Audio.Narration, req.Audio.Music} {
		if track == nil {
			continue
		}
		if err := checkRegularFile(track.Path); err != nil {
			return invalidInput("audio track %s: %v", track.Path, err)
		}
	}
	return nil
}

func checkRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return os.ErrInvalid
	}
	return nil
}

// alignScenes quantizes scene durations to the music's beat grid and
// returns the number of beats detected. Detection failures are input
// errors: the request explicitly asked for an analysis this track cannot
// support.
func (p *Pipeline) alignScenes(req *models.RenderRequest) (int, error) {
	music, err := p.load(req.Audio.Music.Path)
	if err != nil {
		return 0, invalidInput("load music for beat alignment: %v", err)
	}
	beatTimes, err := p.detector.Detect(music)
	if err != nil {
		return 0, invalidInput("beat detection: %v", err)
	}

	durations := make([]float64, len(req.Scenes))
	for i, scene := range req.Scenes {
		durations[i] = scene.DurationSeconds
	}
	aligned := beats.AlignDurations(durations, beatTimes)
	for i := range req.Scenes {
		req.Scenes[i].DurationSeconds = aligned[i]
	}
	return len(beatTimes), nil
}
