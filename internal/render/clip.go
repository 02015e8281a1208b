package render

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/tanmayb/cinerender/internal/models"
)

// SceneClip is one scene's renderable unit: decoded source pixels, fixed
// duration, resolved camera path, and an optional prerendered caption
// overlay. All fields are immutable after construction so clips can be
// sampled concurrently.
type SceneClip struct {
	Source   *image.RGBA
	Duration float64
	Camera   CameraPath
	Caption  *image.RGBA
}

// NewSceneClip decodes a scene into its renderable form. The camera path is
// seeded from the "scene-{index}" namespace so changing one scene's caption
// or ordering-independent fields never perturbs another scene's motion.
func NewSceneClip(src image.Image, scene models.SceneConfig, seed int64, index, width, height int) (*SceneClip, error) {
	clip := &SceneClip{
		Source:   toRGBA(src),
		Duration: scene.DurationSeconds,
		Camera:   NewCameraPath(seed, fmt.Sprintf("scene-%d", index), scene.Camera),
	}

	if scene.Caption != nil {
		overlay, err := BuildCaptionOverlay(scene.Caption.Text, width, height)
		if err != nil {
			return nil, fmt.Errorf("scene %d caption: %w", index, err)
		}
		clip.Caption = overlay
	}
	return clip, nil
}

// FrameAt renders the clip's frame at local time t into a width×height
// buffer: the source is scaled to the frame height times the instantaneous
// zoom, centered, then shifted by the pan offset, with the caption overlay
// composited on top.
func (c *SceneClip) FrameAt(t float64, width, height int) *image.RGBA {
	zoom, dx, dy := c.Camera.At(t, c.Duration, width, height)

	srcBounds := c.Source.Bounds()
	scaledH := int(math.Round(float64(height) * zoom))
	scaledW := int(math.Round(float64(srcBounds.Dx()) * float64(scaledH) / float64(srcBounds.Dy())))
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	x0 := (width-scaledW)/2 + int(math.Round(dx))
	y0 := (height-scaledH)/2 + int(math.Round(dy))

	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(
		frame,
		image.Rect(x0, y0, x0+scaledW, y0+scaledH),
		c.Source,
		srcBounds,
		xdraw.Over,
		nil,
	)

	if c.Caption != nil {
		draw.Draw(frame, frame.Bounds(), c.Caption, image.Point{}, draw.Over)
	}
	return frame
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	bounds := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	return rgba
}
