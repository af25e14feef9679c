package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	// Register the decoders used by image.DecodeConfig. Only intrinsic
	// dimensions are read; the bytes are embedded untouched.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/billforge/invoicegen/internal/domain/document"
)

// LogoView is the fitted, placeable logo handed to the template variants
type LogoView struct {
	// DataURL embeds the original image bytes for the HTML renderer
	DataURL string
	// Width and Height are the fitted dimensions in pixel-equivalent units
	Width  float64
	Height float64
	// Container box the fitted logo is placed in
	ContainerWidth  float64
	ContainerHeight float64
	Alignment       document.Alignment
	VerticalAlign   document.VerticalAlignment
}

// BuildLogoView decodes the logo image, fits it into the config bounds and
// prepares the data URL for embedding. An undecodable image is a
// RenderError with code UNSUPPORTED_IMAGE.
func BuildLogoView(data []byte, cfg document.LogoConfig) (*LogoView, error) {
	if len(data) == 0 {
		return nil, nil
	}

	imgCfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, NewRenderError(ErrCodeUnsupportedImage, "logo image format is not supported", err)
	}

	width, height := document.FitLogo(
		float64(imgCfg.Width), float64(imgCfg.Height),
		cfg.MaxWidth, cfg.MaxHeight)

	view := &LogoView{
		DataURL:         fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data)),
		Width:           width,
		Height:          height,
		ContainerWidth:  cfg.ContainerWidth,
		ContainerHeight: cfg.ContainerHeight,
		Alignment:       cfg.Alignment,
		VerticalAlign:   cfg.VerticalAlignment,
	}
	if view.Alignment == "" {
		view.Alignment = document.AlignRight
	}
	if view.VerticalAlign == "" {
		view.VerticalAlign = document.VAlignTop
	}
	return view, nil
}

// ContainerStyle returns the inline CSS for the logo container box
func (l *LogoView) ContainerStyle() string {
	justify := "flex-end"
	switch l.Alignment {
	case document.AlignLeft:
		justify = "flex-start"
	case document.AlignCenter:
		justify = "center"
	}
	align := "flex-start"
	switch l.VerticalAlign {
	case document.VAlignMiddle:
		align = "center"
	case document.VAlignBottom:
		align = "flex-end"
	}
	style := fmt.Sprintf("display:flex;justify-content:%s;align-items:%s;", justify, align)
	if l.ContainerWidth > 0 {
		style += fmt.Sprintf("width:%.0fpx;", l.ContainerWidth)
	}
	if l.ContainerHeight > 0 {
		style += fmt.Sprintf("height:%.0fpx;", l.ContainerHeight)
	}
	return style
}
