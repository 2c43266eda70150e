package usage

import (
	"github.com/rohankatakam/scriptusage/internal/models"
)

//go:generate mockgen -source=types.go -destination=types_mock.gen.go -package=usage

// LifecycleHooks are the method names whose presence on a Behavior marks
// it as used
var LifecycleHooks = []string{"Start", "Update"}

// TypeInfoProvider answers the type questions the classifier needs
type TypeInfoProvider interface {
	// ResolveType returns the type a source file defines, if any
	ResolveType(path string) (*models.TypeDescriptor, bool)
	// IsSubtypeOf reports whether the type belongs to kind
	IsSubtypeOf(t *models.TypeDescriptor, kind models.Kind) bool
	// DeclaresMethod reports whether the type itself declares an
	// instance method called name, at any visibility
	DeclaresMethod(t *models.TypeDescriptor, name string) bool
}

// KindOf determines the declared kind of t. Behavior wins over
// DataAsset, which wins over PlainType.
func KindOf(types TypeInfoProvider, t *models.TypeDescriptor) models.Kind {
	switch {
	case types.IsSubtypeOf(t, models.KindBehavior):
		return models.KindBehavior
	case types.IsSubtypeOf(t, models.KindDataAsset):
		return models.KindDataAsset
	case types.IsSubtypeOf(t, models.KindPlainType):
		return models.KindPlainType
	default:
		return models.KindUnknown
	}
}

// HasLifecycleHook reports whether a Behavior declares Start or Update.
// Other kinds never count.
func HasLifecycleHook(types TypeInfoProvider, t *models.TypeDescriptor, kind models.Kind) bool {
	if kind != models.KindBehavior {
		return false
	}
	for _, hook := range LifecycleHooks {
		if types.DeclaresMethod(t, hook) {
			return true
		}
	}
	return false
}
