package tryon

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/DridhaTeamHQ/tria-server/internal/providers/llm"
)

// Direction is the photography-direction block handed to the renderer.
type Direction struct {
	SceneDirective     string `json:"scene_directive"`
	LightingDirective  string `json:"lighting_directive"`
	CameraDirective    string `json:"camera_directive"`
	PlacementDirective string `json:"placement_directive"`
	AuthorityRule      string `json:"authority_rule"`
	Refined            bool   `json:"refined"`
}

// authorityRule returns the canned instruction governing how far the model may
// go when rewriting the scene around the subject.
func authorityRule(level AuthorityLevel) string {
	switch level {
	case AuthorityLightingOnly:
		return "Keep the original photo's background exactly as captured. You may only adjust lighting, white balance and shadow direction to match the described look. Do not add, remove or move anything behind the subject."
	case AuthorityEnvironmentSoft:
		return "You may replace the background with the described scene, but the subject's scale, perspective, ground contact and lens compression must stay believable for the original camera position. No dramatic relocation of the horizon."
	case AuthorityEnvironmentStrong:
		return "Rebuild the full environment to match the described scene, including foreground elements and atmospherics. The subject's pose, proportions and identity remain untouchable."
	default:
		return "Keep the original photo's background exactly as captured."
	}
}

// BuildDirection assembles the static photography direction from the preset,
// the resolved anchor zone and the photo analysis. This is always computable;
// the LLM refinement in Director is an optional polish on top of it.
func BuildDirection(preset Preset, res Resolution, photo PhotoAnalysis) Direction {
	titler := cases.Title(language.Und)
	placement := ZonePlacement(res.Zone)
	if placement == "" {
		placement = "placed naturally within the scene"
	}
	camera := preset.Camera
	if photo.Framing == "full_body" {
		camera += "; keep the full body including footwear in frame"
	}
	return Direction{
		SceneDirective:     fmt.Sprintf("%s: %s", titler.String(preset.Name), preset.Scene),
		LightingDirective:  preset.Lighting,
		CameraDirective:    camera,
		PlacementDirective: placement,
		AuthorityRule:      authorityRule(preset.Authority),
	}
}

const directorSystem = "You are a fashion photography director. Respond strictly with valid JSON and nothing else."

const directorPromptTemplate = `Refine the photography direction below for a virtual try-on render. Keep every constraint, sharpen the visual language, and do not contradict the authority rule. Respond with JSON matching:
{"scene_directive":string,"lighting_directive":string,"camera_directive":string,"placement_directive":string}

Current direction:
scene: %s
lighting: %s
camera: %s
placement: %s
authority rule: %s

Garment being worn: %s %s, %s fit, %s.
Subject pose: %s, framing: %s.`

// Director optionally refines the static direction with one LLM call. Any
// failure falls back to the static direction; a render never blocks on the
// director.
type Director struct {
	completer llm.Completer
	logger    zerolog.Logger
}

// NewDirector wires a director over the given completion provider. A nil
// completer yields a director that always returns the static direction.
func NewDirector(completer llm.Completer, logger zerolog.Logger) *Director {
	return &Director{completer: completer, logger: logger}
}

// Direct produces the direction block for a render.
func (d *Director) Direct(ctx context.Context, preset Preset, res Resolution, garment GarmentAnalysis, photo PhotoAnalysis) Direction {
	static := BuildDirection(preset, res, photo)
	if d == nil || d.completer == nil {
		return static
	}
	prompt := fmt.Sprintf(directorPromptTemplate,
		static.SceneDirective,
		static.LightingDirective,
		static.CameraDirective,
		static.PlacementDirective,
		static.AuthorityRule,
		strings.Join(garment.Colors, " and "),
		garment.Category,
		garment.Fit,
		garment.Fabric,
		photo.Pose,
		photo.Framing,
	)
	raw, err := d.completer.Complete(ctx, llm.CompletionRequest{
		System:      directorSystem,
		User:        prompt,
		Temperature: 0.6,
		ForceJSON:   true,
	})
	if err != nil {
		d.logger.Warn().Err(err).Msg("tryon: director refinement failed, using static direction")
		return static
	}
	var refined Direction
	if !decodeAnalysis(raw, &refined) {
		d.logger.Warn().Msg("tryon: director returned malformed JSON, using static direction")
		return static
	}
	// Partial responses keep the static text for the missing fields. The
	// authority rule is never delegated to the model.
	if refined.SceneDirective == "" {
		refined.SceneDirective = static.SceneDirective
	}
	if refined.LightingDirective == "" {
		refined.LightingDirective = static.LightingDirective
	}
	if refined.CameraDirective == "" {
		refined.CameraDirective = static.CameraDirective
	}
	if refined.PlacementDirective == "" {
		refined.PlacementDirective = static.PlacementDirective
	}
	refined.AuthorityRule = static.AuthorityRule
	refined.Refined = true
	return refined
}
