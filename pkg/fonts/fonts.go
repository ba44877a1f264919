// Package fonts provides the typeface used for labels and the watermark.
//
// The Go Regular font from golang.org/x/image is compiled into the binary, so
// rasterizing text needs no system fonts. The font is parsed once on first use.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family used in vector output.
const FontFamily = "Go"

// FallbackFontFamily lists CSS fallbacks for viewers without the Go font.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

var (
	parsed    *truetype.Font
	parseErr  error
	parseOnce sync.Once
)

// TTF returns the raw TrueType data.
func TTF() []byte {
	return goregular.TTF
}

// Font returns the parsed typeface.
func Font() (*truetype.Font, error) {
	parseOnce.Do(func() {
		parsed, parseErr = truetype.Parse(goregular.TTF)
	})
	return parsed, parseErr
}

// Face returns a face at the given point size (72 DPI, so points equal
// pixels). A face keeps glyph caches and must not be shared between
// goroutines.
func Face(size float64) (font.Face, error) {
	f, err := Font()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

// Measure returns the advance width of s in pixels.
func Measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}
