package tryon

import "testing"

func TestLookupPreset(t *testing.T) {
	t.Parallel()

	p, err := LookupPreset("  Urban_Night_Neon ")
	if err != nil {
		t.Fatalf("LookupPreset: %v", err)
	}
	if p.Authority != AuthorityEnvironmentStrong {
		t.Errorf("authority = %q, want %q", p.Authority, AuthorityEnvironmentStrong)
	}
	if _, err := LookupPreset("underwater_cave"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseAuthorityLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    AuthorityLevel
		wantErr bool
	}{
		{"lighting_only", AuthorityLightingOnly, false},
		{" Environment_Soft ", AuthorityEnvironmentSoft, false},
		{"ENVIRONMENT_STRONG", AuthorityEnvironmentStrong, false},
		{"total_control", "", true},
	}
	for _, tc := range cases {
		got, err := ParseAuthorityLevel(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseAuthorityLevel(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseAuthorityLevel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPresetCatalogIsCoherent(t *testing.T) {
	t.Parallel()

	presets := Presets()
	if len(presets) != len(presetCatalog) {
		t.Fatalf("Presets() returned %d entries, catalog has %d", len(presets), len(presetCatalog))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1].ID >= presets[i].ID {
			t.Fatalf("Presets() not sorted: %q before %q", presets[i-1].ID, presets[i].ID)
		}
	}
	for _, p := range presets {
		if len(p.AnchorZones) == 0 {
			t.Errorf("preset %q has no anchor zones", p.ID)
		}
		if !p.HasZone(p.DefaultZone) {
			t.Errorf("preset %q default zone %q not in its zone list", p.ID, p.DefaultZone)
		}
		for _, zone := range p.AnchorZones {
			if _, ok := anchorZoneCatalog[zone]; !ok {
				t.Errorf("preset %q references unknown zone %q", p.ID, zone)
			}
		}
		if p.Scene == "" || p.Lighting == "" || p.Camera == "" {
			t.Errorf("preset %q missing direction text", p.ID)
		}
	}
}
