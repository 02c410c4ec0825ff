package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tacticsboard/board/internal/geo"
	"github.com/tacticsboard/board/pkg/core"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var _ Surface = (*gg.Context)(nil)

// NewImage creates a raster surface of the given pixel size with the Go
// Regular face loaded for labels.
func NewImage(width, height int) (*gg.Context, error) {
	dc := gg.NewContext(width, height)

	ttfFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    14,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	return dc, nil
}

// ExportPNG renders f through v at the board's logical resolution and
// writes it to path, creating parent directories as needed.
func ExportPNG(path string, f Frame, v geo.View) error {
	dc, err := NewImage(core.FieldWidth, core.FieldHeight)
	if err != nil {
		return err
	}
	Render(dc, f, v)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}
