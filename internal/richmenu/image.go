package richmenu

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/imigo-bot/imigo-linebot-go/internal/catalog"
)

// Background and accent colors for the generated menu images. Each
// language gets a distinct header band so a misassigned menu is visible
// at a glance during manual testing.
var (
	menuBackground = color.RGBA{R: 0xF5, G: 0xF5, B: 0xF5, A: 0xFF}
	gridLineColor  = color.RGBA{R: 0xDD, G: 0xDD, B: 0xDD, A: 0xFF}

	headerColors = map[catalog.Code]color.RGBA{
		catalog.Indonesian: {R: 0xCE, G: 0x11, B: 0x26, A: 0xFF},
		catalog.Chinese:    {R: 0x00, G: 0x4B, B: 0x97, A: 0xFF},
		catalog.English:    {R: 0x2E, G: 0x7D, B: 0x32, A: 0xFF},
		catalog.Vietnamese: {R: 0xDA, G: 0x25, B: 0x1D, A: 0xFF},
	}
)

// MenuImage returns the PNG bytes to upload for a language. When dir
// contains a file named <lang>.png that artwork is used; otherwise a
// placeholder is generated.
func MenuImage(dir string, lang catalog.Code) ([]byte, error) {
	if dir != "" {
		path := filepath.Join(dir, string(lang)+".png")
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read menu image %s: %w", path, err)
		}
	}
	return GenerateImage(lang)
}

// GenerateImage renders the menu image for a language as PNG bytes. The
// image is a flat placeholder: a colored header band over the button
// grid, with thin separators marking the tappable areas. Deployments
// that want branded artwork drop per-language PNGs into the configured
// image directory instead.
func GenerateImage(lang catalog.Code) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, menuWidth, menuHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(menuBackground), image.Point{}, draw.Src)

	header, ok := headerColors[lang]
	if !ok {
		header = headerColors[catalog.English]
	}
	draw.Draw(img, image.Rect(0, 0, menuWidth, 843), image.NewUniform(header), image.Point{}, draw.Src)

	for _, b := range DefinitionFor(lang).Buttons {
		drawBorder(img, image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode menu image: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBorder paints a 2px frame on the inside edge of rect.
func drawBorder(img *image.RGBA, rect image.Rectangle) {
	const thickness = 2
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thickness),
		image.Rect(rect.Min.X, rect.Max.Y-thickness, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y),
		image.Rect(rect.Max.X-thickness, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e, image.NewUniform(gridLineColor), image.Point{}, draw.Src)
	}
}
