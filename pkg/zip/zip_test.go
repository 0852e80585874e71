package zip

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"testing"
)

func TestArchiveAssetsIncludesManifest(t *testing.T) {
	t.Parallel()

	payload := ArchiveAssets([]Asset{
		{Filename: "result.png", MIME: "image/png", Data: []byte("pixels")},
		{Filename: "person.jpg", MIME: "image/jpeg", Data: []byte("upload")},
	})
	if len(payload) == 0 {
		t.Fatal("empty archive")
	}

	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = data
	}

	if string(files["result.png"]) != "pixels" {
		t.Errorf("result.png = %q", files["result.png"])
	}
	var manifest []struct {
		Filename string `json:"filename"`
		MIME     string `json:"mime"`
		Bytes    int    `json:"bytes"`
	}
	if err := json.Unmarshal(files["manifest.json"], &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(manifest) != 2 || manifest[0].Filename != "result.png" || manifest[0].Bytes != 6 {
		t.Errorf("unexpected manifest: %+v", manifest)
	}
}
