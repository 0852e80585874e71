package tryon

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DridhaTeamHQ/tria-server/internal/providers/llm"
)

const garmentAnalyzerSystem = "You are a fashion product analyst. Respond strictly with valid JSON and nothing else."

const garmentAnalyzerPrompt = `Analyze the garment in the attached image. Respond with JSON matching:
{"category":string,"subtype":string,"sleeve_type":string,"neckline":string,"fit":string,"fabric":string,"colors":string[],"pattern":string,"length":string,"layering":bool,"key_features":string[]}
Be literal: describe only what is visible. "layering" is true when the piece is worn over another garment.`

const photoAnalyzerSystem = "You are a photography analyst. Respond strictly with valid JSON and nothing else."

const photoAnalyzerPrompt = `Analyze the person photo attached. Respond with JSON matching:
{"pose":"standing|sitting|leaning|crouching","framing":"full_body|waist_up|chest_up","camera_angle":"eye_level|high|low","light_direction":string,"background":string,"body_visible":string}`

const faceAnalyzerPrompt = `Describe the identity markers of the person in the attached photo for faithful reproduction. Respond with JSON matching:
{"skin_tone":string,"eye_color":string,"hair_color":string,"hair_style":string,"facial_hair":string,"face_shape":string,"distinctive_features":string[],"eyewear_worn":bool,"apparent_age":string,"confidence_ok":bool}
Set "confidence_ok" to false when the face is too small or obscured to read reliably.`

// Analyzer issues the single-call LLM analyses that precede a render. Each
// analysis degrades to a conservative default instead of failing the job.
type Analyzer struct {
	completer llm.Completer
	logger    zerolog.Logger
}

// NewAnalyzer wires an analyzer over the given completion provider.
func NewAnalyzer(completer llm.Completer, logger zerolog.Logger) *Analyzer {
	return &Analyzer{completer: completer, logger: logger}
}

// AnalyzeGarment classifies the garment image.
func (a *Analyzer) AnalyzeGarment(ctx context.Context, image llm.ImageAttachment) (GarmentAnalysis, bool) {
	out := DefaultGarmentAnalysis()
	if a == nil || a.completer == nil {
		return out, false
	}
	raw, err := a.completer.Complete(ctx, llm.CompletionRequest{
		System:      garmentAnalyzerSystem,
		User:        garmentAnalyzerPrompt,
		Images:      []llm.ImageAttachment{image},
		Temperature: 0.2,
		ForceJSON:   true,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("tryon: garment analysis failed, using defaults")
		return out, false
	}
	parsed := DefaultGarmentAnalysis()
	if !decodeAnalysis(raw, &parsed) {
		a.logger.Warn().Msg("tryon: garment analysis returned malformed JSON, using defaults")
		return out, false
	}
	if parsed.Category == "" {
		parsed.Category = "garment"
	}
	return parsed, true
}

// AnalyzePhoto reads pose and framing from the person photo.
func (a *Analyzer) AnalyzePhoto(ctx context.Context, image llm.ImageAttachment) (PhotoAnalysis, bool) {
	out := DefaultPhotoAnalysis()
	if a == nil || a.completer == nil {
		return out, false
	}
	raw, err := a.completer.Complete(ctx, llm.CompletionRequest{
		System:      photoAnalyzerSystem,
		User:        photoAnalyzerPrompt,
		Images:      []llm.ImageAttachment{image},
		Temperature: 0.2,
		ForceJSON:   true,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("tryon: photo analysis failed, using defaults")
		return out, false
	}
	parsed := DefaultPhotoAnalysis()
	if !decodeAnalysis(raw, &parsed) {
		a.logger.Warn().Msg("tryon: photo analysis returned malformed JSON, using defaults")
		return out, false
	}
	return parsed, true
}

// AnalyzeFace extracts identity markers used by the renderer's identity rules.
func (a *Analyzer) AnalyzeFace(ctx context.Context, image llm.ImageAttachment) (ForensicFaceAnalysis, bool) {
	out := DefaultFaceAnalysis()
	if a == nil || a.completer == nil {
		return out, false
	}
	raw, err := a.completer.Complete(ctx, llm.CompletionRequest{
		System:      photoAnalyzerSystem,
		User:        faceAnalyzerPrompt,
		Images:      []llm.ImageAttachment{image},
		Temperature: 0.1,
		ForceJSON:   true,
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("tryon: face analysis failed, using defaults")
		return out, false
	}
	parsed := DefaultFaceAnalysis()
	if !decodeAnalysis(raw, &parsed) {
		a.logger.Warn().Msg("tryon: face analysis returned malformed JSON, using defaults")
		return out, false
	}
	return parsed, true
}
