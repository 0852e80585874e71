package tryon

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DridhaTeamHQ/tria-server/internal/providers/imagegen"
)

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pipelineForTest(gen imagegen.Generator, pixelCorrection bool) *Pipeline {
	completer := &stubCompleter{err: errors.New("llm unavailable")}
	logger := zerolog.Nop()
	return NewPipeline(
		NewAnalyzer(completer, logger),
		NewDirector(completer, logger),
		NewRenderer(gen, nil, logger),
		pixelCorrection,
		logger,
	)
}

func stageByName(t *testing.T, d Debug, name string) StageRecord {
	t.Helper()
	for _, s := range d.Stages {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("stage %q not recorded, have %+v", name, d.Stages)
	return StageRecord{}
}

func TestPipelineRunDegradesAnalyzersAndLocksEyes(t *testing.T) {
	t.Parallel()

	person := pngBytes(t, 64, 96, color.RGBA{R: 200, G: 180, B: 160, A: 255})
	rendered := pngBytes(t, 64, 96, color.RGBA{B: 255, A: 255})
	gen := &stubGenerator{results: []*imagegen.Result{{Data: rendered, MIME: "image/png", Model: "stub"}}}
	p := pipelineForTest(gen, true)

	res, err := p.Run(context.Background(), Request{
		PersonImage:  imagegen.InlineImage{MIME: "image/png", Data: person},
		GarmentImage: imagegen.InlineImage{MIME: "image/png", Data: []byte("garment")},
		PresetID:     "studio_minimal",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success")
	}
	if got := stageByName(t, res.Debug, "preset").Status; got != StagePass {
		t.Errorf("preset stage = %q", got)
	}
	for _, name := range []string{"photo_analysis", "garment_analysis", "face_analysis"} {
		if got := stageByName(t, res.Debug, name).Status; got != StageFail {
			t.Errorf("%s stage = %q, want FAIL when the model is down", name, got)
		}
	}
	if got := stageByName(t, res.Debug, "render").Status; got != StagePass {
		t.Errorf("render stage = %q", got)
	}
	if got := stageByName(t, res.Debug, "eye_lock").Status; got != StagePass {
		t.Errorf("eye_lock stage = %q", got)
	}
	if !res.Debug.FaceOverwritten {
		t.Error("eye lock applied but FaceOverwritten not set")
	}
	if res.Image.MIME != "image/png" || bytes.Equal(res.Image.Data, rendered) {
		t.Error("final image should be the eye-corrected composite")
	}
	if len(res.Warnings) == 0 {
		t.Error("degraded analyzers should produce warnings")
	}
	for i, s := range res.Debug.Stages {
		if s.Stage != i+1 {
			t.Errorf("stage %q numbered %d, want %d", s.Name, s.Stage, i+1)
		}
	}
}

func TestPipelineSkipsEyeLockWhenDisabled(t *testing.T) {
	t.Parallel()

	rendered := pngBytes(t, 32, 32, color.RGBA{G: 255, A: 255})
	gen := &stubGenerator{results: []*imagegen.Result{{Data: rendered, MIME: "image/png", Model: "stub"}}}
	p := pipelineForTest(gen, false)

	res, err := p.Run(context.Background(), Request{
		PersonImage:  imagegen.InlineImage{MIME: "image/png", Data: pngBytes(t, 32, 32, color.White)},
		GarmentImage: imagegen.InlineImage{MIME: "image/png", Data: []byte("garment")},
		PresetID:     "loft_daylight",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := stageByName(t, res.Debug, "eye_lock").Status; got != StageSkip {
		t.Errorf("eye_lock stage = %q, want SKIP", got)
	}
	if res.Debug.FaceOverwritten {
		t.Error("FaceOverwritten set without eye lock")
	}
	if !bytes.Equal(res.Image.Data, rendered) {
		t.Error("disabled eye lock must pass the render through untouched")
	}
}

func TestPipelineFailsWhenEyeLockFails(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{results: []*imagegen.Result{{Data: []byte("not an image"), MIME: "image/png", Model: "stub"}}}
	p := pipelineForTest(gen, true)

	res, err := p.Run(context.Background(), Request{
		PersonImage:  imagegen.InlineImage{MIME: "image/png", Data: pngBytes(t, 16, 16, color.White)},
		GarmentImage: imagegen.InlineImage{MIME: "image/png", Data: []byte("garment")},
		PresetID:     "studio_minimal",
	})
	if err == nil {
		t.Fatal("eye-lock failure must fail the job")
	}
	if !strings.Contains(err.Error(), "clear visible eyes") {
		t.Errorf("error %q should carry the user guidance", err)
	}
	if res.Success {
		t.Error("failed run must not report success")
	}
	if res.Debug.FaceOverwritten {
		t.Error("FaceOverwritten must stay false when the lock never applied")
	}
	if got := stageByName(t, res.Debug, "eye_lock").Status; got != StageFail {
		t.Errorf("eye_lock stage = %q, want FAIL", got)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "Eye-region lock failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing eye-lock warning, have %v", res.Warnings)
	}
	if len(res.Image.Data) != 0 {
		t.Error("failed job must not carry an image")
	}
}

func TestPipelineSkipsEyeLockForProQuality(t *testing.T) {
	t.Parallel()

	rendered := pngBytes(t, 32, 32, color.RGBA{G: 255, A: 255})
	gen := &stubGenerator{results: []*imagegen.Result{{Data: rendered, MIME: "image/png", Model: "pro-image-model"}}}
	p := pipelineForTest(gen, true)

	res, err := p.Run(context.Background(), Request{
		PersonImage:  imagegen.InlineImage{MIME: "image/png", Data: pngBytes(t, 32, 32, color.White)},
		GarmentImage: imagegen.InlineImage{MIME: "image/png", Data: []byte("garment")},
		PresetID:     "studio_minimal",
		Quality:      QualityPro,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	stage := stageByName(t, res.Debug, "eye_lock")
	if stage.Status != StageSkip {
		t.Errorf("eye_lock stage = %q, want SKIP", stage.Status)
	}
	reason, _ := stage.Data["reason"].(string)
	if !strings.Contains(reason, "pixel correction disabled for pro-image-model") {
		t.Errorf("skip reason = %q", reason)
	}
	if res.Debug.FaceOverwritten {
		t.Error("FaceOverwritten set on a pro render")
	}
	if !bytes.Equal(res.Image.Data, rendered) {
		t.Error("pro render must pass through untouched")
	}
}

func TestPipelineWarnsWhenScenePassDegrades(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{
		results: []*imagegen.Result{{Data: []byte("dressed"), MIME: "image/png", Model: "stub"}},
		errs:    []error{nil, errors.New("scene pass down")},
	}
	p := pipelineForTest(gen, false)

	res, err := p.Run(context.Background(), Request{
		PersonImage:  imagegen.InlineImage{MIME: "image/png", Data: []byte("person")},
		GarmentImage: imagegen.InlineImage{MIME: "image/png", Data: []byte("garment")},
		PresetID:     "cafe_window",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Passes != 1 {
		t.Errorf("passes = %d, want 1 after the degrade", res.Passes)
	}
	if !bytes.Equal(res.Image.Data, []byte("dressed")) {
		t.Error("degraded render must keep the garment pass output")
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "Scene pass failed") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing scene-pass warning, have %v", res.Warnings)
	}
}

func TestPipelineRejectsUnknownPreset(t *testing.T) {
	t.Parallel()

	p := pipelineForTest(&stubGenerator{}, false)
	res, err := p.Run(context.Background(), Request{PresetID: "submarine_bay"})
	if err == nil {
		t.Fatal("expected error for unknown preset")
	}
	if res.Success {
		t.Error("failed run must not report success")
	}
	if got := stageByName(t, res.Debug, "preset").Status; got != StageFail {
		t.Errorf("preset stage = %q, want FAIL", got)
	}
}

func TestLockEyeRegionCopiesOriginalPixels(t *testing.T) {
	t.Parallel()

	original := pngBytes(t, 100, 100, color.RGBA{R: 255, A: 255})
	rendered := pngBytes(t, 100, 100, color.RGBA{B: 255, A: 255})

	out, err := LockEyeRegion(original, rendered)
	if err != nil {
		t.Fatalf("LockEyeRegion: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	region := eyeRegion(img.Bounds())
	r, _, b, _ := img.At(region.Min.X+1, region.Min.Y+1).RGBA()
	if r == 0 || b != 0 {
		t.Error("eye region not copied from the original image")
	}
	r, _, b, _ = img.At(2, 2).RGBA()
	if b == 0 || r != 0 {
		t.Error("pixels outside the eye region must come from the render")
	}
}

func TestLockEyeRegionRescalesRender(t *testing.T) {
	t.Parallel()

	original := pngBytes(t, 80, 120, color.RGBA{R: 255, A: 255})
	rendered := pngBytes(t, 40, 60, color.RGBA{B: 255, A: 255})

	out, err := LockEyeRegion(original, rendered)
	if err != nil {
		t.Fatalf("LockEyeRegion: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds().Dx() != 80 || img.Bounds().Dy() != 120 {
		t.Errorf("output bounds = %v, want original dimensions", img.Bounds())
	}
}

func TestLockEyeRegionRejectsGarbage(t *testing.T) {
	t.Parallel()

	if _, err := LockEyeRegion([]byte("nope"), []byte("nope")); err == nil {
		t.Fatal("expected decode error")
	}
}
