package imagegen

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/rs/zerolog"
)

// Synthetic renders deterministic placeholder images so the full pipeline
// (queueing, storage, asset metadata, eye lock) stays exercisable in local and
// CI environments without a Gemini API key.
type Synthetic struct {
	model string
}

// NewSynthetic constructs the placeholder generator.
func NewSynthetic(model string) *Synthetic {
	if model == "" {
		model = "synthetic"
	}
	return &Synthetic{model: model}
}

func (s *Synthetic) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seed := deterministicSeed(req)
	data := renderPlaceholder(1024, 1280, seed)
	if data == nil {
		return nil, fmt.Errorf("imagegen: render placeholder")
	}
	return &Result{
		Data:  data,
		MIME:  "image/png",
		Text:  "synthetic placeholder render",
		Model: s.model,
	}, nil
}

// NewGenerator selects the real Gemini generator when keys are configured and
// falls back to the synthetic placeholder otherwise.
func NewGenerator(apiKeys []string, model string, logger zerolog.Logger) (Generator, error) {
	if len(apiKeys) == 0 {
		logger.Warn().Str("model", model).Msg("imagegen: no gemini api keys, using synthetic renders")
		return NewSynthetic(model), nil
	}
	return NewGemini(apiKeys, model, logger)
}

func deterministicSeed(req Request) string {
	hasher := sha256.New()
	hasher.Write([]byte(req.Prompt))
	for _, img := range req.Images {
		hasher.Write(img.Data)
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

func renderPlaceholder(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := height / 12
	if stripeHeight < 32 {
		stripeHeight = 32
	}
	for y := 0; y < height; y += stripeHeight * 2 {
		bottom := y + stripeHeight
		if bottom > height {
			bottom = height
		}
		stripe := image.Rect(0, y, width, bottom)
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "4d79a6" + seed
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	r := parseHexByte(segment[0:2])
	g := parseHexByte(segment[2:4])
	b := parseHexByte(segment[4:6])
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

var _ Generator = (*Synthetic)(nil)
