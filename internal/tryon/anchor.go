package tryon

import (
	"fmt"
	"strings"
)

// Pose is the subject's body position detected from the uploaded photo.
type Pose string

const (
	PoseStanding  Pose = "standing"
	PoseSitting   Pose = "sitting"
	PoseLeaning   Pose = "leaning"
	PoseCrouching Pose = "crouching"
)

// NormalizePose maps free-form analyzer output onto a supported pose.
// Unknown input is treated as standing.
func NormalizePose(s string) Pose {
	switch Pose(strings.ToLower(strings.TrimSpace(s))) {
	case PoseSitting:
		return PoseSitting
	case PoseLeaning:
		return PoseLeaning
	case PoseCrouching:
		return PoseCrouching
	default:
		return PoseStanding
	}
}

// AnchorZone labels where the subject may be placed within a preset's scene.
type AnchorZone string

const (
	ZoneStandingCenter AnchorZone = "standing_center"
	ZoneStandingOffset AnchorZone = "standing_offset"
	ZoneLeanWall       AnchorZone = "lean_wall"
	ZoneLeanRail       AnchorZone = "lean_rail"
	ZoneBenchSit       AnchorZone = "bench_sit"
	ZoneStoolSit       AnchorZone = "stool_sit"
	ZoneStairStep      AnchorZone = "stair_step"
	ZoneWindowLight    AnchorZone = "window_light"
	ZoneDoorwayFrame   AnchorZone = "doorway_frame"
	ZoneCounterLean    AnchorZone = "counter_lean"
	ZoneGrassSit       AnchorZone = "grass_sit"
)

type anchorZoneInfo struct {
	poses     []Pose
	placement string
}

var anchorZoneCatalog = map[AnchorZone]anchorZoneInfo{
	ZoneStandingCenter: {
		poses:     []Pose{PoseStanding},
		placement: "standing at frame center, full weight on both feet, square to camera",
	},
	ZoneStandingOffset: {
		poses:     []Pose{PoseStanding},
		placement: "standing off-center on the rule-of-thirds line, body angled slightly away",
	},
	ZoneLeanWall: {
		poses:     []Pose{PoseLeaning, PoseStanding},
		placement: "leaning a shoulder against the wall, ankles crossed, relaxed posture",
	},
	ZoneLeanRail: {
		poses:     []Pose{PoseLeaning, PoseStanding},
		placement: "leaning back against the railing, elbows resting on the top rail",
	},
	ZoneBenchSit: {
		poses:     []Pose{PoseSitting},
		placement: "seated on the bench, weight shifted to one hip, hands relaxed",
	},
	ZoneStoolSit: {
		poses:     []Pose{PoseSitting},
		placement: "perched on a high stool, one foot on the footrest",
	},
	ZoneStairStep: {
		poses:     []Pose{PoseSitting, PoseStanding, PoseCrouching},
		placement: "on the stone steps, one step below the other foot for a natural stagger",
	},
	ZoneWindowLight: {
		poses:     []Pose{PoseStanding, PoseSitting},
		placement: "beside the window in the shaft of natural light, face toward the glass",
	},
	ZoneDoorwayFrame: {
		poses:     []Pose{PoseStanding, PoseLeaning},
		placement: "framed inside the doorway, one hand on the frame",
	},
	ZoneCounterLean: {
		poses:     []Pose{PoseLeaning, PoseStanding},
		placement: "leaning an elbow on the counter, torso open to camera",
	},
	ZoneGrassSit: {
		poses:     []Pose{PoseSitting, PoseCrouching},
		placement: "seated on the grass, legs folded to one side",
	},
}

// ZonePlacement returns the placement direction text for a zone.
func ZonePlacement(zone AnchorZone) string {
	return anchorZoneCatalog[zone].placement
}

// zoneSupportsPose reports whether a zone is compatible with the given pose.
func zoneSupportsPose(zone AnchorZone, pose Pose) bool {
	info, ok := anchorZoneCatalog[zone]
	if !ok {
		return false
	}
	for _, p := range info.poses {
		if p == pose {
			return true
		}
	}
	return false
}

// Resolution is the outcome of validating a requested anchor zone against a
// preset and the subject's detected pose. It lives for one request only.
type Resolution struct {
	Valid        bool
	Zone         AnchorZone
	FallbackUsed bool
	Reason       string
}

// ResolveAnchorZone validates the requested zone for the preset and pose.
//
// An empty request resolves to the first pose-compatible zone of the preset.
// A requested zone that is unknown, foreign to the preset, or incompatible
// with the pose falls back: first pose-compatible zone in the preset's list,
// then the preset's default zone. The resolution is always usable; Valid
// reports whether the caller's request survived untouched.
func ResolveAnchorZone(preset Preset, requested AnchorZone, pose Pose) Resolution {
	if requested == "" {
		if zone, ok := firstCompatibleZone(preset, pose); ok {
			return Resolution{Valid: true, Zone: zone, Reason: "auto-selected for pose"}
		}
		return Resolution{
			Valid:        true,
			Zone:         preset.DefaultZone,
			FallbackUsed: true,
			Reason:       fmt.Sprintf("no zone in %q supports pose %q, using preset default", preset.ID, pose),
		}
	}

	if _, known := anchorZoneCatalog[requested]; !known {
		return fallbackResolution(preset, pose, fmt.Sprintf("unknown anchor zone %q", requested))
	}
	if !preset.HasZone(requested) {
		return fallbackResolution(preset, pose, fmt.Sprintf("zone %q not available in preset %q", requested, preset.ID))
	}
	if !zoneSupportsPose(requested, pose) {
		return fallbackResolution(preset, pose, fmt.Sprintf("zone %q does not support pose %q", requested, pose))
	}
	return Resolution{Valid: true, Zone: requested}
}

func fallbackResolution(preset Preset, pose Pose, reason string) Resolution {
	if zone, ok := firstCompatibleZone(preset, pose); ok {
		return Resolution{
			Zone:         zone,
			FallbackUsed: true,
			Reason:       reason,
		}
	}
	return Resolution{
		Zone:         preset.DefaultZone,
		FallbackUsed: true,
		Reason:       reason + "; no pose-compatible zone, using preset default",
	}
}

func firstCompatibleZone(preset Preset, pose Pose) (AnchorZone, bool) {
	for _, zone := range preset.AnchorZones {
		if zoneSupportsPose(zone, pose) {
			return zone, true
		}
	}
	return "", false
}
