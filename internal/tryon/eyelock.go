package tryon

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// eyeRegion estimates the band containing the subject's eyes. Without a face
// detector the estimate is geometric: uploads are framed portraits, so the
// eyes sit in a horizontal band in the upper third of the frame.
func eyeRegion(bounds image.Rectangle) image.Rectangle {
	w := bounds.Dx()
	h := bounds.Dy()
	return image.Rect(
		bounds.Min.X+w*28/100,
		bounds.Min.Y+h*18/100,
		bounds.Min.X+w*72/100,
		bounds.Min.Y+h*32/100,
	)
}

// LockEyeRegion copies the eye band of the original upload into the rendered
// image, pixel for pixel. The rendered image is rescaled to the original's
// dimensions first so the copied pixels land where the eyes are. Returns the
// corrected image encoded as PNG.
func LockEyeRegion(original, rendered []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("eyelock: decode original: %w", err)
	}
	out, _, err := image.Decode(bytes.NewReader(rendered))
	if err != nil {
		return nil, fmt.Errorf("eyelock: decode rendered: %w", err)
	}

	canvas := image.NewRGBA(src.Bounds())
	if out.Bounds().Dx() == src.Bounds().Dx() && out.Bounds().Dy() == src.Bounds().Dy() {
		draw.Draw(canvas, canvas.Bounds(), out, out.Bounds().Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(canvas, canvas.Bounds(), out, out.Bounds(), xdraw.Src, nil)
	}

	region := eyeRegion(src.Bounds())
	draw.Draw(canvas, region, src, region.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("eyelock: encode: %w", err)
	}
	return buf.Bytes(), nil
}
