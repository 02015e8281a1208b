package render

import (
	"github.com/tanmayb/cinerender/internal/models"
)

// CameraPath is the fully-resolved motion plan for one scene: zoom endpoints
// and pan offsets drawn once from the scene's derived RNG stream. Sampling a
// path at time t is a pure function, safe to call from any worker.
type CameraPath struct {
	ZoomStart float64
	ZoomEnd   float64
	PanX      float64 // fraction of frame width at full progress
	PanY      float64 // fraction of frame height at full progress
	static    bool
}

// NewCameraPath draws the four motion parameters for a scene. The draw order
// (zoom start, zoom end, pan x, pan y) is part of the determinism contract.
func NewCameraPath(seed int64, namespace string, camera models.CameraConfig) CameraPath {
	if camera.Type != models.CameraKenBurns || camera.Intensity <= 0 {
		return CameraPath{ZoomStart: 1, ZoomEnd: 1, static: true}
	}

	rng := RNGFor(seed, namespace)
	intensity := camera.Intensity

	zoomStart := 1.0 + uniform(rng, 0.00, 0.03)*intensity
	zoomEnd := zoomStart + uniform(rng, 0.05, 0.16)*intensity
	panX := uniform(rng, -0.07, 0.07) * intensity
	panY := uniform(rng, -0.05, 0.05) * intensity

	return CameraPath{
		ZoomStart: zoomStart,
		ZoomEnd:   zoomEnd,
		PanX:      panX,
		PanY:      panY,
	}
}

// Static reports whether the path is an identity transform.
func (p CameraPath) Static() bool {
	return p.static
}

// At returns the instantaneous zoom and pixel offsets at time t within a
// scene of the given duration and frame size. A degenerate duration pins
// progress at 0 rather than dividing by zero.
func (p CameraPath) At(t, duration float64, width, height int) (zoom, dx, dy float64) {
	if p.static {
		return 1, 0, 0
	}
	progress := 0.0
	if duration > 0 {
		progress = clamp(t/duration, 0, 1)
	}
	zoom = lerp(p.ZoomStart, p.ZoomEnd, progress)
	dx = float64(width) * p.PanX * progress
	dy = float64(height) * p.PanY * progress
	return zoom, dx, dy
}

func uniform(rng interface{ Float64() float64 }, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
