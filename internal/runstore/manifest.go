package runstore

import (
	"path/filepath"

	"taxseq/internal/model"
)

const manifestFileName = "manifest.json"

func ManifestPath(outDir string) string {
	return filepath.Join(outDir, manifestFileName)
}

func LoadManifest(outDir string) (model.Manifest, error) {
	var mf model.Manifest
	if err := ReadJSON(ManifestPath(outDir), &mf); err != nil {
		return model.Manifest{}, err
	}
	return mf, nil
}

func SaveManifest(outDir string, mf model.Manifest) error {
	return WriteJSON(ManifestPath(outDir), mf)
}
