package tryon

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/DridhaTeamHQ/tria-server/internal/providers/imagegen"
)

// Quality selects the render model tier. The pro tier is identity-safe at
// the model level, so pixel correction is skipped for it.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityPro      Quality = "pro"
)

// NormalizeQuality maps free-form input onto a supported tier. Anything
// unrecognized renders on the standard tier.
func NormalizeQuality(s string) Quality {
	if Quality(strings.ToLower(strings.TrimSpace(s))) == QualityPro {
		return QualityPro
	}
	return QualityStandard
}

// RenderInput carries everything a render pass needs.
type RenderInput struct {
	PersonImage  imagegen.InlineImage
	GarmentImage imagegen.InlineImage
	Preset       Preset
	Resolution   Resolution
	Garment      GarmentAnalysis
	Photo        PhotoAnalysis
	Direction    Direction
	Quality      Quality
}

// RenderOutput is the result of a render pass. Degraded is set when a layered
// render fell back to its garment-pass output.
type RenderOutput struct {
	Image    imagegen.InlineImage
	Model    string
	Passes   int
	Degraded bool
}

// identityRules are non-negotiable in every prompt. The face, skin, hair and
// body of the person in the first image must survive the edit untouched.
const identityRules = `IDENTITY LOCK (highest priority):
- The person in image 1 is a real customer. Their face, facial features, skin tone, hair, body shape and proportions must be preserved pixel-faithfully.
- Do not beautify, slim, age, de-age or otherwise alter the person.
- Eyes, eyebrows, nose, mouth and jawline must match image 1 exactly.
- If any instruction below conflicts with this lock, the lock wins.`

// garmentRules tell the model how to transfer the garment in image 2 onto the
// person, informed by the garment analysis.
func garmentRules(g GarmentAnalysis) string {
	var b strings.Builder
	b.WriteString("GARMENT REPLACEMENT:\n")
	if len(g.Colors) > 0 {
		fmt.Fprintf(&b, "- Dress the person in the %s from image 2 (%s, %s, %s fit).\n",
			g.Category, strings.Join(g.Colors, " and "), g.Fabric, g.Fit)
	} else {
		fmt.Fprintf(&b, "- Dress the person in the %s from image 2, exactly as pictured.\n", g.Category)
	}
	if g.Pattern != "" && g.Pattern != "solid" && g.Pattern != "as pictured" {
		fmt.Fprintf(&b, "- Reproduce the %s pattern faithfully, including scale and alignment at seams.\n", g.Pattern)
	}
	if len(g.KeyFeatures) > 0 {
		fmt.Fprintf(&b, "- Keep these garment details visible: %s.\n", strings.Join(g.KeyFeatures, ", "))
	}
	b.WriteString("- The garment must drape naturally for the person's pose and body, with believable fabric folds and contact shadows.\n")
	b.WriteString("- Remove the person's original clothing in the covered region; do not blend the two garments.")
	return b.String()
}

// directionBlock renders the photography direction into prompt text.
func directionBlock(d Direction, res Resolution) string {
	var b strings.Builder
	b.WriteString("PHOTOGRAPHY DIRECTION:\n")
	fmt.Fprintf(&b, "- Scene: %s\n", d.SceneDirective)
	fmt.Fprintf(&b, "- Lighting: %s\n", d.LightingDirective)
	fmt.Fprintf(&b, "- Camera: %s\n", d.CameraDirective)
	fmt.Fprintf(&b, "- Subject placement: %s\n", d.PlacementDirective)
	fmt.Fprintf(&b, "- Scene authority: %s", d.AuthorityRule)
	if res.FallbackUsed && res.Reason != "" {
		fmt.Fprintf(&b, "\n- Note: %s", res.Reason)
	}
	return b.String()
}

const negativeConstraints = `NEVER PRODUCE:
- a different person, a composite face, or a retouched face
- extra limbs, warped hands, melted fabric, floating garments
- text, watermarks, logos or borders
- a collage or side-by-side layout; output is one single photograph`

// BuildRenderPrompt assembles the full single-pass prompt.
func BuildRenderPrompt(in RenderInput) string {
	sections := []string{
		"Edit the photograph in image 1 so the person is wearing the garment shown in image 2, then restage the photo per the direction below. Output one photorealistic photograph.",
		identityRules,
		garmentRules(in.Garment),
		directionBlock(in.Direction, in.Resolution),
		negativeConstraints,
	}
	return strings.Join(sections, "\n\n")
}

// BuildGarmentPassPrompt is pass one of the layered workflow: garment transfer
// only, original background untouched.
func BuildGarmentPassPrompt(in RenderInput) string {
	sections := []string{
		"Edit the photograph in image 1 so the person is wearing the garment shown in image 2. Change nothing else: background, framing and lighting stay exactly as in image 1.",
		identityRules,
		garmentRules(in.Garment),
		negativeConstraints,
	}
	return strings.Join(sections, "\n\n")
}

// BuildScenePassPrompt is pass two of the layered workflow: restage the
// already-dressed photo. The garment from pass one must survive unchanged.
func BuildScenePassPrompt(in RenderInput) string {
	sections := []string{
		"Restage the photograph in image 1 per the direction below. The person and the garment they are wearing must carry over exactly as shown; only the environment, lighting and framing change.",
		identityRules,
		"GARMENT LOCK:\n- The garment the person wears in image 1 is final. Do not redesign, recolor or re-drape it beyond what the new lighting requires.",
		directionBlock(in.Direction, in.Resolution),
		negativeConstraints,
	}
	return strings.Join(sections, "\n\n")
}

// Renderer drives the image model through one or two passes. proGen serves
// pro-tier jobs; a nil proGen routes everything through gen.
type Renderer struct {
	gen    imagegen.Generator
	proGen imagegen.Generator
	logger zerolog.Logger
}

func NewRenderer(gen, proGen imagegen.Generator, logger zerolog.Logger) *Renderer {
	return &Renderer{gen: gen, proGen: proGen, logger: logger}
}

func (r *Renderer) generatorFor(q Quality) imagegen.Generator {
	if q == QualityPro && r.proGen != nil {
		return r.proGen
	}
	return r.gen
}

// layeredAuthorities render in two passes so the garment transfer is judged
// against the original background before the scene swap.
func useLayered(level AuthorityLevel) bool {
	return level == AuthorityEnvironmentSoft || level == AuthorityEnvironmentStrong
}

// Render runs the workflow selected by the preset's authority level.
// lighting_only presets render in a single pass; environment presets render
// the garment first, then the scene.
func (r *Renderer) Render(ctx context.Context, in RenderInput) (RenderOutput, error) {
	gen := r.generatorFor(in.Quality)
	if !useLayered(in.Preset.Authority) {
		return r.singlePass(ctx, gen, in)
	}
	return r.layered(ctx, gen, in)
}

func (r *Renderer) singlePass(ctx context.Context, gen imagegen.Generator, in RenderInput) (RenderOutput, error) {
	res, err := gen.Generate(ctx, imagegen.Request{
		Prompt: BuildRenderPrompt(in),
		Images: []imagegen.InlineImage{in.PersonImage, in.GarmentImage},
	})
	if err != nil {
		return RenderOutput{}, fmt.Errorf("render: single pass: %w", err)
	}
	return RenderOutput{
		Image:  imagegen.InlineImage{MIME: res.MIME, Data: res.Data},
		Model:  res.Model,
		Passes: 1,
	}, nil
}

func (r *Renderer) layered(ctx context.Context, gen imagegen.Generator, in RenderInput) (RenderOutput, error) {
	first, err := gen.Generate(ctx, imagegen.Request{
		Prompt: BuildGarmentPassPrompt(in),
		Images: []imagegen.InlineImage{in.PersonImage, in.GarmentImage},
	})
	if err != nil {
		return RenderOutput{}, fmt.Errorf("render: garment pass: %w", err)
	}
	r.logger.Debug().Str("model", first.Model).Msg("tryon: garment pass complete")

	second, err := gen.Generate(ctx, imagegen.Request{
		Prompt: BuildScenePassPrompt(in),
		Images: []imagegen.InlineImage{{MIME: first.MIME, Data: first.Data}},
	})
	if err != nil {
		// The dressed photo is still a usable result when the scene pass
		// fails; Degraded tells the pipeline to surface a warning.
		r.logger.Warn().Err(err).Msg("tryon: scene pass failed, returning garment pass output")
		return RenderOutput{
			Image:    imagegen.InlineImage{MIME: first.MIME, Data: first.Data},
			Model:    first.Model,
			Passes:   1,
			Degraded: true,
		}, nil
	}
	return RenderOutput{
		Image:  imagegen.InlineImage{MIME: second.MIME, Data: second.Data},
		Model:  second.Model,
		Passes: 2,
	}, nil
}
