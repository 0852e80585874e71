package tryon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/DridhaTeamHQ/tria-server/internal/providers/imagegen"
	"github.com/DridhaTeamHQ/tria-server/internal/providers/llm"
)

// Stage status values recorded per pipeline step.
const (
	StagePass = "PASS"
	StageFail = "FAIL"
	StageSkip = "SKIP"
)

// StageRecord is one step of the pipeline trace kept on the job for
// debugging.
type StageRecord struct {
	Stage  int            `json:"stage"`
	Name   string         `json:"name"`
	Status string         `json:"status"`
	TimeMs int64          `json:"time_ms"`
	Data   map[string]any `json:"data,omitempty"`
}

// Debug aggregates the pipeline trace.
type Debug struct {
	Stages          []StageRecord `json:"stages"`
	TotalTimeMs     int64         `json:"total_time_ms"`
	FaceOverwritten bool          `json:"face_overwritten"`
}

// Request is a full try-on job as submitted by the API.
type Request struct {
	PersonImage  imagegen.InlineImage
	GarmentImage imagegen.InlineImage
	PresetID     string
	AnchorZone   AnchorZone
	Pose         Pose
	Quality      Quality
}

// eyeLockFailureWarning is surfaced to the user when the eye region cannot be
// copied back from the upload. The job fails rather than deliver a result
// whose eyes the model invented.
const eyeLockFailureWarning = "Eye-region lock failed. Please use an image with clear visible eyes."

// Result is what the worker persists when the pipeline finishes.
type Result struct {
	Success  bool
	Image    imagegen.InlineImage
	Model    string
	Passes   int
	Warnings []string
	Debug    Debug
}

// Pipeline wires the analyzers, the director and the renderer into the
// staged try-on flow.
type Pipeline struct {
	analyzer        *Analyzer
	director        *Director
	renderer        *Renderer
	pixelCorrection bool
	logger          zerolog.Logger
}

func NewPipeline(analyzer *Analyzer, director *Director, renderer *Renderer, pixelCorrection bool, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		analyzer:        analyzer,
		director:        director,
		renderer:        renderer,
		pixelCorrection: pixelCorrection,
		logger:          logger,
	}
}

// stageClock lets tests pin timings; production uses time.Now.
var stageClock = time.Now

type stageTracker struct {
	records []StageRecord
	next    int
}

func (t *stageTracker) record(name, status string, started time.Time, data map[string]any) {
	t.next++
	t.records = append(t.records, StageRecord{
		Stage:  t.next,
		Name:   name,
		Status: status,
		TimeMs: stageClock().Sub(started).Milliseconds(),
		Data:   data,
	})
}

// Run executes the full try-on pipeline. Analyzer failures degrade to
// defaults and are recorded as FAIL stages without aborting; only preset
// resolution and the render itself are fatal.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	started := stageClock()
	tracker := &stageTracker{}
	var warnings []string

	result := func(r Result) Result {
		r.Warnings = warnings
		r.Debug.Stages = tracker.records
		r.Debug.TotalTimeMs = stageClock().Sub(started).Milliseconds()
		return r
	}

	// Stage: preset lookup.
	t := stageClock()
	preset, err := LookupPreset(req.PresetID)
	if err != nil {
		tracker.record("preset", StageFail, t, map[string]any{"preset_id": req.PresetID})
		return result(Result{}), fmt.Errorf("pipeline: %w", err)
	}
	tracker.record("preset", StagePass, t, map[string]any{
		"preset_id": preset.ID,
		"authority": string(preset.Authority),
	})

	// Stage: photo analysis. Pose from the analyzer drives zone resolution.
	t = stageClock()
	photo, photoOK := p.analyzer.AnalyzePhoto(ctx, llm.ImageAttachment{MIME: req.PersonImage.MIME, Data: req.PersonImage.Data})
	if photoOK {
		tracker.record("photo_analysis", StagePass, t, map[string]any{"pose": photo.Pose, "framing": photo.Framing})
	} else {
		tracker.record("photo_analysis", StageFail, t, nil)
		warnings = append(warnings, "Photo analysis unavailable, using default framing assumptions.")
	}

	pose := req.Pose
	if pose == "" {
		pose = NormalizePose(photo.Pose)
	}

	// Stage: anchor-zone resolution.
	t = stageClock()
	res := ResolveAnchorZone(preset, req.AnchorZone, pose)
	data := map[string]any{"zone": string(res.Zone), "fallback": res.FallbackUsed}
	if res.FallbackUsed {
		data["reason"] = res.Reason
		warnings = append(warnings, res.Reason)
	}
	tracker.record("anchor_zone", StagePass, t, data)

	// Stage: garment analysis.
	t = stageClock()
	garment, garmentOK := p.analyzer.AnalyzeGarment(ctx, llm.ImageAttachment{MIME: req.GarmentImage.MIME, Data: req.GarmentImage.Data})
	if garmentOK {
		tracker.record("garment_analysis", StagePass, t, map[string]any{"category": garment.Category})
	} else {
		tracker.record("garment_analysis", StageFail, t, nil)
		warnings = append(warnings, "Garment analysis unavailable, rendering the garment as pictured.")
	}

	// Stage: face analysis. Purely advisory; the identity lock in the prompt
	// does not depend on it.
	t = stageClock()
	face, faceOK := p.analyzer.AnalyzeFace(ctx, llm.ImageAttachment{MIME: req.PersonImage.MIME, Data: req.PersonImage.Data})
	if faceOK && face.ConfidenceOK {
		tracker.record("face_analysis", StagePass, t, map[string]any{"face_shape": face.FaceShape})
	} else {
		tracker.record("face_analysis", StageFail, t, nil)
	}

	// Stage: photography direction.
	t = stageClock()
	direction := p.director.Direct(ctx, preset, res, garment, photo)
	tracker.record("direction", StagePass, t, map[string]any{"refined": direction.Refined})

	// Stage: render.
	quality := NormalizeQuality(string(req.Quality))
	t = stageClock()
	out, err := p.renderer.Render(ctx, RenderInput{
		PersonImage:  req.PersonImage,
		GarmentImage: req.GarmentImage,
		Preset:       preset,
		Resolution:   res,
		Garment:      garment,
		Photo:        photo,
		Direction:    direction,
		Quality:      quality,
	})
	if err != nil {
		tracker.record("render", StageFail, t, nil)
		return result(Result{}), err
	}
	tracker.record("render", StagePass, t, map[string]any{"model": out.Model, "passes": out.Passes})
	if out.Degraded {
		warnings = append(warnings, "Scene pass failed, result shows the original background.")
	}

	// Stage: eye-region lock. Pro-tier renders are identity-safe on their
	// own, so correction is skipped for them regardless of config.
	finalImage := out.Image
	faceOverwritten := false
	t = stageClock()
	if quality == QualityPro {
		tracker.record("eye_lock", StageSkip, t, map[string]any{"reason": "pixel correction disabled for " + out.Model})
	} else if !p.pixelCorrection {
		tracker.record("eye_lock", StageSkip, t, nil)
	} else if corrected, lockErr := LockEyeRegion(req.PersonImage.Data, out.Image.Data); lockErr != nil {
		p.logger.Error().Err(lockErr).Msg("tryon: eye-region lock failed")
		tracker.record("eye_lock", StageFail, t, map[string]any{"error": "eye-region extraction failed"})
		warnings = append(warnings, eyeLockFailureWarning)
		return result(Result{}), errors.New(eyeLockFailureWarning)
	} else {
		finalImage = imagegen.InlineImage{MIME: "image/png", Data: corrected}
		faceOverwritten = true
		tracker.record("eye_lock", StagePass, t, nil)
	}

	r := result(Result{
		Success: true,
		Image:   finalImage,
		Model:   out.Model,
		Passes:  out.Passes,
	})
	r.Debug.FaceOverwritten = faceOverwritten
	return r, nil
}
