package media

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Brand gold, #D4AF37.
var brandGold = color.NRGBA{R: 212, G: 175, B: 55, A: 255}

// applyWatermark draws the branding text anchored at the bottom-right corner,
// with a thin rule underneath at half the text opacity. Font size scales with
// image width and never drops below 20px so the mark stays legible on
// thumbnails.
func applyWatermark(dst *image.RGBA, cfg WatermarkConfig) error {
	w := dst.Bounds().Dx()
	h := dst.Bounds().Dy()

	size := math.Max(20, float64(w)/20)

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("build face: %w", err)
	}
	defer face.Close()

	textCol := brandGold
	textCol.A = alphaFor(cfg.Opacity)

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textCol),
		Face: face,
	}

	pad := int(size / 2)
	textWidth := drawer.MeasureString(cfg.Text).Ceil()
	x := w - pad - textWidth
	if x < 0 {
		x = 0
	}
	baseline := h - pad

	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(cfg.Text)

	// Rule under the text, half opacity, spanning the text width.
	ruleCol := brandGold
	ruleCol.A = alphaFor(cfg.Opacity / 2)
	ruleTop := baseline + int(size/6)
	ruleHeight := int(size / 12)
	if ruleHeight < 2 {
		ruleHeight = 2
	}
	rule := image.Rect(x, ruleTop, x+textWidth, ruleTop+ruleHeight).Intersect(dst.Bounds())
	draw.Draw(dst, rule, image.NewUniform(ruleCol), image.Point{}, draw.Over)

	return nil
}

// alphaFor maps a 0..1 opacity to an 8-bit alpha, clamping out-of-range input.
func alphaFor(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity*255 + 0.5)
}
