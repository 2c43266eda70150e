package scene

import (
	"context"

	"github.com/rohankatakam/scriptusage/internal/models"
)

//go:generate mockgen -source=provider.go -destination=provider_mock.gen.go -package=scene

// Provider returns the component instances currently placed in a scene
type Provider interface {
	// Snapshot lists every (type, container) pair in the scene
	Snapshot(ctx context.Context) ([]models.Instance, error)
}

// EmptyProvider is a scene with nothing in it
type EmptyProvider struct{}

// Snapshot returns no instances
func (EmptyProvider) Snapshot(ctx context.Context) ([]models.Instance, error) {
	return nil, nil
}

// BuildAttachments groups instances by type name. Container names keep
// their first-seen order and repeated names are collapsed. Instances
// without a type name (missing scripts) are skipped.
func BuildAttachments(instances []models.Instance) models.Attachments {
	attachments := make(models.Attachments)
	seen := make(map[string]map[string]bool)

	for _, inst := range instances {
		if inst.TypeName == "" {
			continue
		}
		if seen[inst.TypeName] == nil {
			seen[inst.TypeName] = make(map[string]bool)
		}
		if seen[inst.TypeName][inst.Container] {
			continue
		}
		seen[inst.TypeName][inst.Container] = true
		attachments[inst.TypeName] = append(attachments[inst.TypeName], inst.Container)
	}

	return attachments
}
