package render

import (
	"strings"
	"testing"
)

func TestBuildCaptionOverlaySize(t *testing.T) {
	overlay, err := BuildCaptionOverlay("Peace be with you", 1280, 720)
	if err != nil {
		t.Fatalf("BuildCaptionOverlay: %v", err)
	}
	b := overlay.Bounds()
	if b.Dx() != 1280 || b.Dy() != 720 {
		t.Fatalf("overlay size = %dx%d, want 1280x720", b.Dx(), b.Dy())
	}
}

func TestBuildCaptionOverlayRejectsEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		if _, err := BuildCaptionOverlay(text, 1280, 720); err == nil {
			t.Fatalf("expected error for caption %q", text)
		}
	}
}

func TestBuildCaptionOverlayHasInkAboveAnchor(t *testing.T) {
	overlay, err := BuildCaptionOverlay("A single line", 1280, 720)
	if err != nil {
		t.Fatalf("BuildCaptionOverlay: %v", err)
	}

	height := 720.0
	anchor := int(height * captionAnchorPct)
	inkAbove, inkBelow := 0, 0
	for y := 0; y < 720; y++ {
		for x := 0; x < 1280; x++ {
			if overlay.RGBAAt(x, y).A == 0 {
				continue
			}
			if y <= anchor+2 { // shadow offset may spill just past the anchor
				inkAbove++
			} else {
				inkBelow++
			}
		}
	}
	if inkAbove == 0 {
		t.Fatal("no caption pixels rendered above the anchor line")
	}
	if inkBelow > 0 {
		t.Fatalf("%d caption pixels below the anchor line", inkBelow)
	}
}

func TestBuildCaptionOverlayTransparentBackground(t *testing.T) {
	overlay, err := BuildCaptionOverlay("Hi", 640, 360)
	if err != nil {
		t.Fatalf("BuildCaptionOverlay: %v", err)
	}
	// Corners far from the caption block stay fully transparent.
	for _, pt := range [][2]int{{0, 0}, {639, 0}, {0, 100}, {639, 100}} {
		if overlay.RGBAAt(pt[0], pt[1]).A != 0 {
			t.Fatalf("background pixel (%d,%d) is not transparent", pt[0], pt[1])
		}
	}
}

func TestWrapCaptionSplitsLongText(t *testing.T) {
	face, err := captionFace(40)
	if err != nil {
		t.Fatalf("captionFace: %v", err)
	}
	text := strings.Repeat("grace and gratitude ", 8)
	lines := wrapCaption(face, text, 400)
	if len(lines) < 2 {
		t.Fatalf("long text wrapped into %d lines, want several", len(lines))
	}
	for _, line := range lines {
		if line == "" {
			t.Fatal("wrap produced an empty line")
		}
	}
}

func TestWrapCaptionKeepsOverlongWord(t *testing.T) {
	face, err := captionFace(40)
	if err != nil {
		t.Fatalf("captionFace: %v", err)
	}
	lines := wrapCaption(face, "supercalifragilisticexpialidocious", 50)
	if len(lines) != 1 {
		t.Fatalf("single overlong word split into %d lines", len(lines))
	}
}
