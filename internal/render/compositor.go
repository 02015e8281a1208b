package render

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tanmayb/cinerender/internal/models"
)

// ImageDecoder turns a scene image path into pixels. The default uses the
// registered stdlib decoders (PNG, JPEG); tests and callers can substitute
// their own.
type ImageDecoder func(path string) (image.Image, error)

// DecodeImageFile is the default ImageDecoder.
func DecodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode scene image %s: %w", path, err)
	}
	return img, nil
}

// Compositor holds the fully-resolved visual plan for one render: placed
// timeline, grading config and precomputed vignette. Sampling a frame is a
// pure function of time, so frames can be rendered on any number of workers
// in any order.
type Compositor struct {
	video    models.VideoConfig
	seed     int64
	timeline *Timeline
	vignette *Vignette
}

// NewCompositor decodes every scene image, builds the per-scene clips and
// places them on the timeline.
func NewCompositor(req *models.RenderRequest, decode ImageDecoder) (*Compositor, error) {
	if decode == nil {
		decode = DecodeImageFile
	}
	width := req.Video.Width
	height := req.Video.Height

	clips := make([]*SceneClip, 0, len(req.Scenes))
	for i, scene := range req.Scenes {
		src, err := decode(scene.ImagePath)
		if err != nil {
			return nil, err
		}
		clip, err := NewSceneClip(src, scene, req.Seed, i, width, height)
		if err != nil {
			return nil, err
		}
		clips = append(clips, clip)
	}

	timeline, err := ComposeTimeline(clips, req.Scenes)
	if err != nil {
		return nil, err
	}

	c := &Compositor{
		video:    req.Video,
		seed:     req.Seed,
		timeline: timeline,
	}
	if styled(req.Video.ColorGrade) {
		c.vignette = NewVignette(width, height)
	}
	return c, nil
}

func styled(grade models.ColorGradeConfig) bool {
	return grade.Profile == models.GradeDevotionalGlow && grade.Intensity > 0
}

// Duration is the total timeline length in seconds.
func (c *Compositor) Duration() float64 {
	return c.timeline.Duration
}

// FrameCount is the number of frames the timeline spans at the configured
// frame rate.
func (c *Compositor) FrameCount() int {
	n := int(math.Round(c.timeline.Duration * float64(c.video.FPS)))
	if n < 1 {
		n = 1
	}
	return n
}

// FrameAt samples the styled frame at absolute time t: timeline composite,
// then color grade, vignette, film grain and letterbox bars.
func (c *Compositor) FrameAt(t float64) *image.RGBA {
	frame := c.timeline.Sample(t, c.video.Width, c.video.Height)
	ApplyGrade(frame, c.video.ColorGrade)
	if c.vignette != nil {
		c.vignette.Apply(frame)
	}
	ApplyGrain(frame, t, c.video.FPS, c.seed, c.video.FilmGrain)
	ApplyLetterbox(frame, c.video.LetterboxRatio)
	return frame
}

// RenderFrames produces every timeline frame in presentation order, calling
// emit sequentially from a single goroutine. Frames are computed in parallel
// batches — each frame is independent of every other — while emit sees them
// strictly ordered, which is what a container writer needs.
func (c *Compositor) RenderFrames(ctx context.Context, parallelism int, emit func(index int, frame *image.RGBA) error) error {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	total := c.FrameCount()
	fps := float64(c.video.FPS)
	batch := parallelism * 4

	for start := 0; start < total; start += batch {
		end := start + batch
		if end > total {
			end = total
		}

		frames := make([]*image.RGBA, end-start)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(parallelism)

		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				frames[i-start] = c.FrameAt(float64(i) / fps)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, frame := range frames {
			if err := emit(start+i, frame); err != nil {
				return err
			}
		}
	}
	return nil
}
