package tryon

import (
	"encoding/json"
	"strings"
)

// GarmentAnalysis describes the uploaded garment. Parsed once from the model's
// JSON and discarded after the prompt is built.
type GarmentAnalysis struct {
	Category    string   `json:"category"`
	Subtype     string   `json:"subtype"`
	SleeveType  string   `json:"sleeve_type"`
	Neckline    string   `json:"neckline"`
	Fit         string   `json:"fit"`
	Fabric      string   `json:"fabric"`
	Colors      []string `json:"colors"`
	Pattern     string   `json:"pattern"`
	Length      string   `json:"length"`
	Layering    bool     `json:"layering"`
	KeyFeatures []string `json:"key_features"`
}

// PhotoAnalysis describes the subject's uploaded photo.
type PhotoAnalysis struct {
	Pose           string `json:"pose"`
	Framing        string `json:"framing"`
	CameraAngle    string `json:"camera_angle"`
	LightDirection string `json:"light_direction"`
	Background     string `json:"background"`
	BodyVisible    string `json:"body_visible"`
}

// ForensicFaceAnalysis captures the identity markers that must survive the
// render untouched.
type ForensicFaceAnalysis struct {
	SkinTone     string   `json:"skin_tone"`
	EyeColor     string   `json:"eye_color"`
	HairColor    string   `json:"hair_color"`
	HairStyle    string   `json:"hair_style"`
	FacialHair   string   `json:"facial_hair"`
	FaceShape    string   `json:"face_shape"`
	Distinctive  []string `json:"distinctive_features"`
	EyewearWorn  bool     `json:"eyewear_worn"`
	ApparentAge  string   `json:"apparent_age"`
	ConfidenceOK bool     `json:"confidence_ok"`
}

// DefaultGarmentAnalysis is the conservative stand-in used when the model's
// JSON cannot be parsed. "Garment as pictured" wording keeps the render prompt
// honest without inventing attributes.
func DefaultGarmentAnalysis() GarmentAnalysis {
	return GarmentAnalysis{
		Category: "garment",
		Fit:      "as pictured",
		Fabric:   "as pictured",
		Pattern:  "as pictured",
	}
}

// DefaultPhotoAnalysis assumes a standing, waist-up, eye-level photo.
func DefaultPhotoAnalysis() PhotoAnalysis {
	return PhotoAnalysis{
		Pose:           string(PoseStanding),
		Framing:        "waist_up",
		CameraAngle:    "eye_level",
		LightDirection: "frontal",
		BodyVisible:    "torso",
	}
}

// DefaultFaceAnalysis reports no usable markers; the renderer then leans
// entirely on the reference pixels.
func DefaultFaceAnalysis() ForensicFaceAnalysis {
	return ForensicFaceAnalysis{ConfidenceOK: false}
}

// decodeAnalysis unmarshals a model payload into dst after stripping code
// fences and surrounding prose. It reports whether the payload was usable.
func decodeAnalysis(raw string, dst any) bool {
	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return false
	}
	return json.Unmarshal([]byte(fragment), dst) == nil
}

// extractJSONFragment trims markdown fences and leading/trailing prose so a
// chatty model response still yields machine-readable JSON.
func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
