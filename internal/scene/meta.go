package scene

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// metaFile is the part of an asset's .meta sidecar we need
type metaFile struct {
	GUID string `yaml:"guid"`
}

// ScriptGUIDs maps script asset GUIDs to script (class) names
type ScriptGUIDs map[string]string

// LoadScriptGUIDs reads the .meta sidecar of every script file. A script's
// class name is its file name without extension. Scripts without a
// readable sidecar are skipped.
func LoadScriptGUIDs(scriptPaths []string, logger logrus.FieldLogger) ScriptGUIDs {
	guids := make(ScriptGUIDs, len(scriptPaths))

	for _, path := range scriptPaths {
		data, err := os.ReadFile(path + ".meta")
		if err != nil {
			logger.WithField("path", path).Debug("No .meta file for script")
			continue
		}

		guid, err := ParseMetaGUID(data)
		if err != nil || guid == "" {
			logger.WithField("path", path).Debug("No guid in .meta file")
			continue
		}

		guids[guid] = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return guids
}

// ParseMetaGUID extracts the guid from .meta file content
func ParseMetaGUID(data []byte) (string, error) {
	var meta metaFile
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return strings.TrimSpace(meta.GUID), nil
}
