// This file materializes a generated corpus as ZIP containers on disk.
package e2e

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
)

// jpegStub is a minimal JPEG header followed by filler. The indexer never
// decodes image bytes, but retrieval tests want recognizable content.
var jpegStub = append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, []byte("miru-e2e-image")...)

// WriteCorpusArchives writes one TS.<location>.zip container per location
// under root, each holding that location's images. Returns the number of
// containers written.
func WriteCorpusArchives(root string, corpus *Corpus) (int, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return 0, err
	}
	byLocation := make(map[string][]E2EImage)
	for _, img := range corpus.Images {
		byLocation[img.Location] = append(byLocation[img.Location], img)
	}
	for loc, images := range byLocation {
		archivePath := filepath.Join(root, fmt.Sprintf("TS.%s.zip", loc))
		if err := writeArchive(archivePath, images); err != nil {
			return 0, fmt.Errorf("write %s: %w", archivePath, err)
		}
	}
	return len(byLocation), nil
}

func writeArchive(path string, images []E2EImage) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, img := range images {
		w, err := zw.Create(img.Filename)
		if err != nil {
			return err
		}
		if _, err := w.Write(jpegStub); err != nil {
			return err
		}
	}
	return zw.Close()
}
