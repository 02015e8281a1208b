package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	captionLineSpacing = 8
	captionMaxWidthPct = 0.85
	captionAnchorPct   = 0.78
)

var (
	captionInk    = color.RGBA{R: 245, G: 238, B: 216, A: 240}
	captionShadow = color.RGBA{R: 0, G: 0, B: 0, A: 180}
)

var captionFontState struct {
	once sync.Once
	font *opentype.Font
	err  error
}

func captionFace(size float64) (font.Face, error) {
	captionFontState.once.Do(func() {
		captionFontState.font, captionFontState.err = opentype.Parse(goregular.TTF)
	})
	if captionFontState.err != nil {
		return nil, fmt.Errorf("parse caption font: %w", captionFontState.err)
	}
	face, err := opentype.NewFace(captionFontState.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build caption face: %w", err)
	}
	return face, nil
}

// BuildCaptionOverlay renders wrapped caption text onto a transparent RGBA
// overlay the size of the frame. Text is word-wrapped to 85% of the frame
// width using measured line widths, centered per line, with the block's
// bottom anchored near 78% of the frame height. A dark shadow copy offset
// by (+2,+2) is drawn first so the text stays legible over any background.
func BuildCaptionOverlay(text string, width, height int) (*image.RGBA, error) {
	fontSize := float64(height) * 0.045
	if fontSize < 30 {
		fontSize = 30
	}
	face, err := captionFace(fontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lines := wrapCaption(face, text, int(float64(width)*captionMaxWidthPct))
	if len(lines) == 0 {
		return nil, fmt.Errorf("caption has no renderable text")
	}

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + captionLineSpacing
	blockHeight := lineHeight * len(lines)
	top := int(float64(height)*captionAnchorPct) - blockHeight

	overlay := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, line := range lines {
		lineWidth := font.MeasureString(face, line).Ceil()
		x := (width - lineWidth) / 2
		baseline := top + i*lineHeight + metrics.Ascent.Ceil()

		drawCaptionLine(overlay, face, line, x+2, baseline+2, captionShadow)
		drawCaptionLine(overlay, face, line, x, baseline, captionInk)
	}
	return overlay, nil
}

func drawCaptionLine(dst *image.RGBA, face font.Face, line string, x, y int, ink color.RGBA) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(line)
}

// wrapCaption greedily packs words into lines no wider than maxWidth. A word
// wider than the whole line is kept on its own line rather than split.
func wrapCaption(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	var lines []string
	current := ""

	for _, word := range words {
		proposal := word
		if current != "" {
			proposal = current + " " + word
		}
		if font.MeasureString(face, proposal).Ceil() <= maxWidth || current == "" {
			current = proposal
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
