package assets

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

// scenePalettes are the gradient endpoints cycled across scenes: dusk blues
// into warm golds, matching the devotional grade downstream.
var scenePalettes = [][2]color.RGBA{
	{{R: 26, G: 27, B: 64, A: 255}, {R: 224, G: 164, B: 90, A: 255}},
	{{R: 36, G: 56, B: 84, A: 255}, {R: 236, G: 200, B: 140, A: 255}},
	{{R: 52, G: 34, B: 70, A: 255}, {R: 212, G: 140, B: 96, A: 255}},
	{{R: 24, G: 44, B: 52, A: 255}, {R: 200, G: 176, B: 120, A: 255}},
}

// WriteSceneImage renders a vertical gradient placeholder for one scene and
// saves it as PNG. The palette is chosen by scene index so a generated
// request is visually stable across runs.
func WriteSceneImage(dir string, index, width, height int) (string, error) {
	palette := scenePalettes[index%len(scenePalettes)]
	img := gradientImage(width, height, palette[0], palette[1])

	path := filepath.Join(dir, fmt.Sprintf("scene-%02d.png", index))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create scene image: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode scene image: %w", err)
	}
	return path, nil
}

func gradientImage(width, height int, top, bottom color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height-1)
		row := color.RGBA{
			R: lerpByte(top.R, bottom.R, t),
			G: lerpByte(top.G, bottom.G, t),
			B: lerpByte(top.B, bottom.B, t),
			A: 255,
		}
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, row)
		}
	}
	return img
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
