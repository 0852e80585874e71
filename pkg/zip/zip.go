// Package zip builds the downloadable archive for a finished try-on job.
package zip

import (
	"archive/zip"
	"bytes"
	"encoding/json"
)

// Asset is one file to include in the archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets packs the assets into a zip archive together with a
// manifest.json describing them.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	type manifestEntry struct {
		Filename string `json:"filename"`
		MIME     string `json:"mime"`
		Bytes    int    `json:"bytes"`
	}
	manifest := make([]manifestEntry, 0, len(assets))

	for _, asset := range assets {
		w, err := zw.Create(asset.Filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
		manifest = append(manifest, manifestEntry{
			Filename: asset.Filename,
			MIME:     asset.MIME,
			Bytes:    len(asset.Data),
		})
	}

	if w, err := zw.Create("manifest.json"); err == nil {
		if raw, err := json.MarshalIndent(manifest, "", "  "); err == nil {
			_, _ = w.Write(raw)
		}
	}

	_ = zw.Close()
	return buf.Bytes()
}
