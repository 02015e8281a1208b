package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/icza/mjpeg"

	"github.com/tanmayb/cinerender/internal/audio"
	"github.com/tanmayb/cinerender/internal/models"
	"github.com/tanmayb/cinerender/internal/render"
	"github.com/tanmayb/cinerender/internal/storage"
)

const jpegQuality = 90

// Exporter encodes a composed render into its published artifact. The pure
// Go path writes an MJPEG AVI plus a WAV soundtrack; when an ffmpeg binary
// is configured the two are muxed into a single MP4 instead, and non-WAV
// audio sources become loadable.
type Exporter struct {
	FFmpegBinary string
}

// ExportJob is everything Export needs for one render.
type ExportJob struct {
	RequestID  string
	Video      models.VideoConfig
	Compositor *render.Compositor
	Mix        *audio.Buffer
	Workdir    string
	Workers    int
}

// Export writes the video (and soundtrack) into the workdir, then publishes
// the finished artifact atomically through the store. It returns the
// published video path.
func (e *Exporter) Export(ctx context.Context, job ExportJob, store *storage.Store) (string, error) {
	aviPath := filepath.Join(job.Workdir, "video.avi")
	if err := e.writeVideo(ctx, job, aviPath); err != nil {
		return "", err
	}

	wavPath := filepath.Join(job.Workdir, "audio.wav")
	if err := audio.WriteWAV(wavPath, job.Mix); err != nil {
		return "", err
	}

	if e.FFmpegBinary != "" {
		mp4Path := filepath.Join(job.Workdir, "muxed.mp4")
		if err := e.mux(ctx, aviPath, wavPath, mp4Path); err != nil {
			return "", err
		}
		return store.Publish(mp4Path, job.RequestID+".mp4")
	}

	// No muxer available: publish the soundtrack as a sidecar next to the
	// video.
	if _, err := store.Publish(wavPath, job.RequestID+".wav"); err != nil {
		return "", err
	}
	return store.Publish(aviPath, job.RequestID+".avi")
}

func (e *Exporter) writeVideo(ctx context.Context, job ExportJob, path string) error {
	writer, err := mjpeg.New(path, int32(job.Video.Width), int32(job.Video.Height), int32(job.Video.FPS))
	if err != nil {
		return fmt.Errorf("create video container: %w", err)
	}

	var buf bytes.Buffer
	err = job.Compositor.RenderFrames(ctx, job.Workers, func(index int, frame *image.RGBA) error {
		buf.Reset()
		if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("encode frame %d: %w", index, err)
		}
		if err := writer.AddFrame(buf.Bytes()); err != nil {
			return fmt.Errorf("write frame %d: %w", index, err)
		}
		return nil
	})
	if err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize video container: %w", err)
	}
	return nil
}

func (e *Exporter) mux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	args := []string{
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, e.FFmpegBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w: %s", err, tail(stderr.String(), 400))
	}
	return nil
}

// LoadTrack reads an audio track from disk. WAV is decoded natively; any
// other container is converted through ffmpeg when a binary is configured.
func (e *Exporter) LoadTrack(path string) (*audio.Buffer, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return audio.ReadWAV(path)
	}
	if e.FFmpegBinary == "" {
		return nil, fmt.Errorf("track %s: only WAV is supported without ffmpeg", path)
	}

	tmp, err := os.CreateTemp("", "cinerender-track-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp track: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{
		"-i", path,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", audio.MixRate),
		"-c:a", "pcm_s16le",
		"-y",
		tmpPath,
	}
	cmd := exec.Command(e.FFmpegBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s failed: %w: %s", path, err, tail(stderr.String(), 400))
	}
	return audio.ReadWAV(tmpPath)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
