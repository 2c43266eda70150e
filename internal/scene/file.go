package scene

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/models"
)

// snapshotFile is the on-disk format of an exported scene snapshot.
// JSON is accepted too since it is a subset of YAML.
//
//	instances:
//	  - type: Player
//	    container: Hero
type snapshotFile struct {
	Instances []models.Instance `yaml:"instances"`
}

// FileProvider reads a snapshot exported from the editor
type FileProvider struct {
	Path string
}

// NewFileProvider creates a provider for the snapshot at path
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Snapshot reads and decodes the snapshot file
func (p *FileProvider) Snapshot(ctx context.Context) ([]models.Instance, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, errors.SceneError(err, "failed to read scene snapshot")
	}

	instances, err := DecodeSnapshot(data)
	if err != nil {
		return nil, errors.SceneError(err, "failed to decode scene snapshot").WithContext("path", p.Path)
	}
	return instances, nil
}

// DecodeSnapshot parses snapshot file content
func DecodeSnapshot(data []byte) ([]models.Instance, error) {
	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Instances, nil
}
