package tryon

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DridhaTeamHQ/tria-server/internal/providers/llm"
)

type stubCompleter struct {
	reply string
	err   error
	calls int
	last  llm.CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	s.calls++
	s.last = req
	return s.reply, s.err
}

func TestAuthorityRulePerLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level AuthorityLevel
		want  string
	}{
		{AuthorityLightingOnly, "Keep the original photo's background"},
		{AuthorityEnvironmentSoft, "replace the background"},
		{AuthorityEnvironmentStrong, "Rebuild the full environment"},
	}
	for _, tc := range cases {
		if got := authorityRule(tc.level); !strings.Contains(got, tc.want) {
			t.Errorf("authorityRule(%q) = %q, want it to contain %q", tc.level, got, tc.want)
		}
	}
}

func TestBuildDirection(t *testing.T) {
	t.Parallel()

	preset, err := LookupPreset("golden_hour_street")
	if err != nil {
		t.Fatalf("LookupPreset: %v", err)
	}
	res := ResolveAnchorZone(preset, ZoneLeanWall, PoseLeaning)
	photo := DefaultPhotoAnalysis()
	photo.Framing = "full_body"

	d := BuildDirection(preset, res, photo)
	if !strings.Contains(d.SceneDirective, preset.Scene) {
		t.Errorf("scene directive missing preset scene text: %q", d.SceneDirective)
	}
	if d.PlacementDirective != ZonePlacement(ZoneLeanWall) {
		t.Errorf("placement = %q, want zone placement text", d.PlacementDirective)
	}
	if !strings.Contains(d.CameraDirective, "full body") {
		t.Errorf("camera directive not adjusted for full-body framing: %q", d.CameraDirective)
	}
	if d.Refined {
		t.Error("static direction must not be marked refined")
	}
}

func TestDirectorRefinesAndKeepsAuthorityRule(t *testing.T) {
	t.Parallel()

	preset, err := LookupPreset("cafe_window")
	if err != nil {
		t.Fatalf("LookupPreset: %v", err)
	}
	res := ResolveAnchorZone(preset, ZoneBenchSit, PoseSitting)
	stub := &stubCompleter{reply: `{"scene_directive":"refined scene","lighting_directive":"refined light","camera_directive":"","placement_directive":"refined placement","authority_rule":"model tries to override"}`}
	d := NewDirector(stub, zerolog.Nop())

	got := d.Direct(context.Background(), preset, res, DefaultGarmentAnalysis(), DefaultPhotoAnalysis())
	if stub.calls != 1 {
		t.Fatalf("completer called %d times, want 1", stub.calls)
	}
	if !stub.last.ForceJSON {
		t.Error("director request must force JSON")
	}
	if !got.Refined {
		t.Error("refined direction not marked")
	}
	if got.SceneDirective != "refined scene" {
		t.Errorf("scene = %q", got.SceneDirective)
	}
	static := BuildDirection(preset, res, DefaultPhotoAnalysis())
	if got.CameraDirective != static.CameraDirective {
		t.Errorf("empty refined field must keep static camera text, got %q", got.CameraDirective)
	}
	if got.AuthorityRule != static.AuthorityRule {
		t.Errorf("authority rule must never come from the model, got %q", got.AuthorityRule)
	}
}

func TestDirectorFallsBackOnError(t *testing.T) {
	t.Parallel()

	preset, err := LookupPreset("studio_minimal")
	if err != nil {
		t.Fatalf("LookupPreset: %v", err)
	}
	res := ResolveAnchorZone(preset, "", PoseStanding)
	static := BuildDirection(preset, res, DefaultPhotoAnalysis())

	for name, stub := range map[string]*stubCompleter{
		"provider error":  {err: errors.New("upstream down")},
		"malformed reply": {reply: "not json"},
	} {
		d := NewDirector(stub, zerolog.Nop())
		got := d.Direct(context.Background(), preset, res, DefaultGarmentAnalysis(), DefaultPhotoAnalysis())
		if got != static {
			t.Errorf("%s: direction = %+v, want static fallback", name, got)
		}
	}
}

func TestDirectorWithoutCompleterIsStatic(t *testing.T) {
	t.Parallel()

	preset, err := LookupPreset("rooftop_dusk")
	if err != nil {
		t.Fatalf("LookupPreset: %v", err)
	}
	res := ResolveAnchorZone(preset, ZoneLeanRail, PoseLeaning)
	d := NewDirector(nil, zerolog.Nop())
	got := d.Direct(context.Background(), preset, res, DefaultGarmentAnalysis(), DefaultPhotoAnalysis())
	if got != BuildDirection(preset, res, DefaultPhotoAnalysis()) {
		t.Errorf("nil completer must return static direction, got %+v", got)
	}
}
