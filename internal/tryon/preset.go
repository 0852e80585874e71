// Package tryon implements the try-on pipeline: preset and anchor-zone
// resolution, garment/photo analysis, photography direction, prompt assembly
// and the staged render workflow.
package tryon

import (
	"fmt"
	"sort"
	"strings"
)

// AuthorityLevel governs how much the image model may rewrite the scene
// around the subject.
type AuthorityLevel string

const (
	// AuthorityLightingOnly keeps the original background; only relighting is allowed.
	AuthorityLightingOnly AuthorityLevel = "lighting_only"
	// AuthorityEnvironmentSoft allows background replacement that preserves
	// subject scale and perspective.
	AuthorityEnvironmentSoft AuthorityLevel = "environment_soft"
	// AuthorityEnvironmentStrong allows a full scene rewrite.
	AuthorityEnvironmentStrong AuthorityLevel = "environment_strong"
)

// ParseAuthorityLevel validates an authority string.
func ParseAuthorityLevel(s string) (AuthorityLevel, error) {
	switch AuthorityLevel(strings.ToLower(strings.TrimSpace(s))) {
	case AuthorityLightingOnly:
		return AuthorityLightingOnly, nil
	case AuthorityEnvironmentSoft:
		return AuthorityEnvironmentSoft, nil
	case AuthorityEnvironmentStrong:
		return AuthorityEnvironmentStrong, nil
	default:
		return "", fmt.Errorf("tryon: unknown authority level %q", s)
	}
}

// Preset bundles the scene, lighting and camera language for one of the
// user-selectable scenes, plus the zones a subject may be anchored to.
type Preset struct {
	ID          string
	Name        string
	Scene       string
	Lighting    string
	Camera      string
	Authority   AuthorityLevel
	AnchorZones []AnchorZone
	DefaultZone AnchorZone
}

var presetCatalog = map[string]Preset{
	"studio_minimal": {
		ID:        "studio_minimal",
		Name:      "Minimal Studio",
		Scene:     "seamless light-grey studio backdrop, no props, clean floor sweep",
		Lighting:  "large softbox key at 45 degrees camera-left, white bounce fill, gentle falloff",
		Camera:    "85mm portrait lens at f/4, subject distance three meters, eye-level framing",
		Authority: AuthorityLightingOnly,
		AnchorZones: []AnchorZone{
			ZoneStandingCenter, ZoneStandingOffset, ZoneStoolSit,
		},
		DefaultZone: ZoneStandingCenter,
	},
	"loft_daylight": {
		ID:        "loft_daylight",
		Name:      "Daylight Loft",
		Scene:     "industrial loft interior, whitewashed brick, wide factory windows out of focus",
		Lighting:  "soft window daylight from camera-right, natural contrast, no artificial fill",
		Camera:    "50mm lens at f/2.8, slight three-quarter angle, chest-height camera",
		Authority: AuthorityLightingOnly,
		AnchorZones: []AnchorZone{
			ZoneStandingCenter, ZoneWindowLight, ZoneLeanWall,
		},
		DefaultZone: ZoneWindowLight,
	},
	"cafe_window": {
		ID:        "cafe_window",
		Name:      "Café Window",
		Scene:     "corner table of a quiet café, marble tabletop, street visible through glass",
		Lighting:  "diffuse morning light through the window, warm interior spill from pendant lamps",
		Camera:    "35mm environmental portrait at f/2, seated framing, slight downward angle",
		Authority: AuthorityEnvironmentSoft,
		AnchorZones: []AnchorZone{
			ZoneBenchSit, ZoneStoolSit, ZoneWindowLight, ZoneCounterLean,
		},
		DefaultZone: ZoneBenchSit,
	},
	"golden_hour_street": {
		ID:        "golden_hour_street",
		Name:      "Golden Hour Street",
		Scene:     "European side street, warm stone facades, shallow crowd blur in the distance",
		Lighting:  "low golden-hour sun raking from behind camera-left, long soft shadows",
		Camera:    "85mm at f/2 compressing the street, subject sharp against melted background",
		Authority: AuthorityEnvironmentSoft,
		AnchorZones: []AnchorZone{
			ZoneStandingCenter, ZoneStandingOffset, ZoneLeanWall, ZoneDoorwayFrame, ZoneStairStep,
		},
		DefaultZone: ZoneStandingCenter,
	},
	"garden_party": {
		ID:        "garden_party",
		Name:      "Garden Party",
		Scene:     "manicured garden with string lights, hedges and a gravel path, late afternoon",
		Lighting:  "dappled sunlight through foliage, warm practicals beginning to glow",
		Camera:    "50mm at f/2.2, waist-up framing, candid editorial angle",
		Authority: AuthorityEnvironmentSoft,
		AnchorZones: []AnchorZone{
			ZoneStandingCenter, ZoneBenchSit, ZoneGrassSit,
		},
		DefaultZone: ZoneStandingCenter,
	},
	"urban_night_neon": {
		ID:        "urban_night_neon",
		Name:      "Neon Night",
		Scene:     "rain-slicked city street at night, neon signage, reflections on wet asphalt",
		Lighting:  "mixed neon practicals as key, cyan-magenta color contrast, specular highlights",
		Camera:    "35mm at f/1.8, low angle, cinematic night exposure with clean shadows",
		Authority: AuthorityEnvironmentStrong,
		AnchorZones: []AnchorZone{
			ZoneStandingCenter, ZoneStandingOffset, ZoneLeanWall, ZoneDoorwayFrame,
		},
		DefaultZone: ZoneStandingOffset,
	},
	"coastal_boardwalk": {
		ID:        "coastal_boardwalk",
		Name:      "Coastal Boardwalk",
		Scene:     "weathered boardwalk above dunes, sea haze on the horizon, beach grass",
		Lighting:  "bright overcast sky as a giant softbox, even wraparound light",
		Camera:    "wide 35mm full-body framing at f/4, horizon kept level",
		Authority: AuthorityEnvironmentStrong,
		AnchorZones: []AnchorZone{
			ZoneStandingCenter, ZoneLeanRail, ZoneBenchSit, ZoneStairStep,
		},
		DefaultZone: ZoneStandingCenter,
	},
	"rooftop_dusk": {
		ID:        "rooftop_dusk",
		Name:      "Rooftop at Dusk",
		Scene:     "city rooftop terrace at blue hour, skyline bokeh, concrete parapet",
		Lighting:  "fading ambient dusk with warm terrace bulbs as rim light",
		Camera:    "85mm at f/1.8, subject separated against the skyline glow",
		Authority: AuthorityEnvironmentStrong,
		AnchorZones: []AnchorZone{
			ZoneStandingCenter, ZoneLeanRail, ZoneStoolSit, ZoneCounterLean,
		},
		DefaultZone: ZoneLeanRail,
	},
}

// LookupPreset returns the preset for the given ID.
func LookupPreset(id string) (Preset, error) {
	preset, ok := presetCatalog[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Preset{}, fmt.Errorf("tryon: unknown preset %q", id)
	}
	return preset, nil
}

// Presets returns the full catalog ordered by ID.
func Presets() []Preset {
	out := make([]Preset, 0, len(presetCatalog))
	for _, p := range presetCatalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// HasZone reports whether the preset allows the given anchor zone.
func (p Preset) HasZone(zone AnchorZone) bool {
	for _, z := range p.AnchorZones {
		if z == zone {
			return true
		}
	}
	return false
}
