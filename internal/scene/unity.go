package scene

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/scriptusage/internal/errors"
	"github.com/rohankatakam/scriptusage/internal/models"
)

// Serialized class IDs used in text scenes
const (
	classGameObject     = 1
	classMonoBehaviour  = 114
	classPrefabInstance = 1001
)

// Container names used when the scene does not name the object
const (
	unnamedPrefabObject = "<prefab>"
	unknownObject       = "<unknown>"
)

type fileRef struct {
	FileID int64  `yaml:"fileID"`
	GUID   string `yaml:"guid"`
}

type gameObjectDoc struct {
	GameObject struct {
		Name                      string  `yaml:"m_Name"`
		CorrespondingSourceObject fileRef `yaml:"m_CorrespondingSourceObject"`
		PrefabInstance            fileRef `yaml:"m_PrefabInstance"`
	} `yaml:"GameObject"`
}

type monoBehaviourDoc struct {
	MonoBehaviour struct {
		GameObject fileRef `yaml:"m_GameObject"`
		Script     fileRef `yaml:"m_Script"`
	} `yaml:"MonoBehaviour"`
}

type prefabInstanceDoc struct {
	PrefabInstance struct {
		Modification struct {
			Modifications []struct {
				Target       fileRef `yaml:"target"`
				PropertyPath string  `yaml:"propertyPath"`
				Value        string  `yaml:"value"`
			} `yaml:"m_Modifications"`
		} `yaml:"m_Modification"`
	} `yaml:"PrefabInstance"`
}

// strippedObject is a prefab object that the scene only refers to
type strippedObject struct {
	prefabID int64
	sourceID int64
}

// unityDocument is one "--- !u!<class> &<fileID>" section of a scene
type unityDocument struct {
	ClassID  int
	FileID   int64
	Stripped bool
	Body     []byte
}

// UnityProvider reads component placements from a text-serialized scene.
// Script GUIDs are resolved to class names through the scripts' .meta
// files. Components that live only inside a prefab asset are not part of
// the scene file and are not reported.
type UnityProvider struct {
	ScenePath string
	Scripts   ScriptGUIDs
	Logger    logrus.FieldLogger
}

// NewUnityProvider creates a provider for the scene at path
func NewUnityProvider(path string, scripts ScriptGUIDs, logger logrus.FieldLogger) *UnityProvider {
	return &UnityProvider{
		ScenePath: path,
		Scripts:   scripts,
		Logger:    logger,
	}
}

// Snapshot parses the scene file
func (p *UnityProvider) Snapshot(ctx context.Context) ([]models.Instance, error) {
	data, err := os.ReadFile(p.ScenePath)
	if err != nil {
		return nil, errors.SceneError(err, "failed to read scene")
	}

	instances, err := ParseUnityScene(data, p.Scripts, p.logger())
	if err != nil {
		return nil, errors.SceneError(err, "failed to parse scene").WithContext("path", p.ScenePath)
	}

	p.logger().WithFields(logrus.Fields{
		"scene":      p.ScenePath,
		"components": len(instances),
	}).Debug("Scene snapshot loaded")

	return instances, nil
}

func (p *UnityProvider) logger() logrus.FieldLogger {
	if p.Logger == nil {
		return logrus.StandardLogger()
	}
	return p.Logger
}

// ParseUnityScene returns one instance per MonoBehaviour whose script GUID
// is known, in document order
func ParseUnityScene(data []byte, scripts ScriptGUIDs, logger logrus.FieldLogger) ([]models.Instance, error) {
	docs, err := splitUnityDocuments(data)
	if err != nil {
		return nil, err
	}

	objectNames := make(map[int64]string)
	stripped := make(map[int64]strippedObject)
	// prefab instance -> modified source object -> name
	prefabNames := make(map[int64]map[int64]string)
	var behaviours []monoBehaviourDoc

	for _, doc := range docs {
		switch doc.ClassID {
		case classGameObject:
			var obj gameObjectDoc
			if err := yaml.Unmarshal(doc.Body, &obj); err != nil {
				return nil, fmt.Errorf("GameObject &%d: %w", doc.FileID, err)
			}
			if doc.Stripped {
				stripped[doc.FileID] = strippedObject{
					prefabID: obj.GameObject.PrefabInstance.FileID,
					sourceID: obj.GameObject.CorrespondingSourceObject.FileID,
				}
				continue
			}
			objectNames[doc.FileID] = obj.GameObject.Name

		case classMonoBehaviour:
			if doc.Stripped {
				continue
			}
			var mb monoBehaviourDoc
			if err := yaml.Unmarshal(doc.Body, &mb); err != nil {
				return nil, fmt.Errorf("MonoBehaviour &%d: %w", doc.FileID, err)
			}
			behaviours = append(behaviours, mb)

		case classPrefabInstance:
			var pi prefabInstanceDoc
			if err := yaml.Unmarshal(doc.Body, &pi); err != nil {
				return nil, fmt.Errorf("PrefabInstance &%d: %w", doc.FileID, err)
			}
			names := make(map[int64]string)
			for _, mod := range pi.PrefabInstance.Modification.Modifications {
				if mod.PropertyPath != "m_Name" {
					continue
				}
				if _, seen := names[mod.Target.FileID]; !seen {
					names[mod.Target.FileID] = mod.Value
				}
			}
			prefabNames[doc.FileID] = names
		}
	}

	// Stripped objects take the name their prefab instance gives the same
	// source object. A name kept from the prefab asset is not in the scene.
	for objID, ref := range stripped {
		name, ok := prefabNames[ref.prefabID][ref.sourceID]
		if !ok {
			name = unnamedPrefabObject
		}
		objectNames[objID] = name
	}

	var instances []models.Instance
	for _, mb := range behaviours {
		guid := mb.MonoBehaviour.Script.GUID
		typeName, ok := scripts[guid]
		if !ok {
			// Missing script, or a script outside the corpus
			logger.WithField("guid", guid).Debug("Skipping component with unknown script")
			continue
		}

		container, ok := objectNames[mb.MonoBehaviour.GameObject.FileID]
		if !ok {
			logger.WithFields(logrus.Fields{
				"script":    typeName,
				"object_id": mb.MonoBehaviour.GameObject.FileID,
			}).Debug("Component references an unknown GameObject")
			container = unknownObject
		}

		instances = append(instances, models.Instance{
			TypeName:  typeName,
			Container: container,
		})
	}

	return instances, nil
}

// splitUnityDocuments splits a scene on its document headers. YAML
// directives and the tag shorthand in headers are handled here because
// the serializer's "!u!" tags are not meaningful to a generic decoder.
func splitUnityDocuments(data []byte) ([]unityDocument, error) {
	var (
		docs    []unityDocument
		current *unityDocument
		body    bytes.Buffer
	)

	flush := func() {
		if current != nil {
			current.Body = append([]byte(nil), body.Bytes()...)
			docs = append(docs, *current)
		}
		body.Reset()
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.HasPrefix(line, "%") {
			continue
		}

		if strings.HasPrefix(line, "--- ") {
			flush()
			doc, err := parseDocumentHeader(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = &doc
			continue
		}

		if current != nil {
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return docs, nil
}

// parseDocumentHeader parses "--- !u!114 &1234567 [stripped]"
func parseDocumentHeader(line string) (unityDocument, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || !strings.HasPrefix(fields[1], "!u!") || !strings.HasPrefix(fields[2], "&") {
		return unityDocument{}, fmt.Errorf("malformed document header %q", line)
	}

	classID, err := strconv.Atoi(strings.TrimPrefix(fields[1], "!u!"))
	if err != nil {
		return unityDocument{}, fmt.Errorf("bad class id in %q: %w", line, err)
	}

	fileID, err := strconv.ParseInt(strings.TrimPrefix(fields[2], "&"), 10, 64)
	if err != nil {
		return unityDocument{}, fmt.Errorf("bad file id in %q: %w", line, err)
	}

	return unityDocument{
		ClassID:  classID,
		FileID:   fileID,
		Stripped: len(fields) > 3 && fields[3] == "stripped",
	}, nil
}
