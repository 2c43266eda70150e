package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	// NoAttachments is written in place of an empty container list
	NoAttachments = "none"

	attachmentSeparator = ";"
	referenceSeparator  = " | "
)

// Kind is the declared category of a script type
type Kind int

const (
	KindUnknown Kind = iota
	KindBehavior
	KindDataAsset
	KindPlainType
)

// String returns the name written to logs and reports
func (k Kind) String() string {
	switch k {
	case KindBehavior:
		return "Behavior"
	case KindDataAsset:
		return "DataAsset"
	case KindPlainType:
		return "PlainType"
	default:
		return "Unknown"
	}
}

// MarshalText lets Kind appear by name in JSON output
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind is the inverse of String; unrecognized names map to KindUnknown
func ParseKind(s string) Kind {
	switch s {
	case "Behavior":
		return KindBehavior
	case "DataAsset":
		return KindDataAsset
	case "PlainType":
		return KindPlainType
	default:
		return KindUnknown
	}
}

// Verdict is the derived usage status of an entity
type Verdict int

const (
	VerdictUnused Verdict = iota
	VerdictUsed
)

func (v Verdict) String() string {
	if v == VerdictUsed {
		return "Used"
	}
	return "Unused"
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// TypeDescriptor identifies a type resolved from a source file
type TypeDescriptor struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Keyword   string `json:"keyword"` // "class", "struct", "interface", "enum", "record"
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// FullName returns the namespace-qualified type name
func (t *TypeDescriptor) FullName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// ScriptEntity is a script discovered under the target root.
// Name is the sole identity key.
type ScriptEntity struct {
	Name             string `json:"name"`
	Namespace        string `json:"namespace,omitempty"`
	Kind             Kind   `json:"kind"`
	Path             string `json:"path"`
	HasLifecycleHook bool   `json:"has_lifecycle_hook"`
}

// Instance is one live component instance taken from a scene snapshot
type Instance struct {
	TypeName  string `json:"type" yaml:"type"`
	Container string `json:"container" yaml:"container"`
}

// Attachments maps an entity name to the containers it is attached to
type Attachments map[string][]string

// ReferenceHit is one line in another file that mentions an entity
type ReferenceHit struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// String formats the hit the way it appears in reports
func (h ReferenceHit) String() string {
	return fmt.Sprintf("%s:%d「%s」", h.File, h.Line, h.Text)
}

// SourceFile is a corpus file loaded as lines
type SourceFile struct {
	Path  string
	Lines []string
}

// Usage is the classification of a single entity
type Usage struct {
	Entity     ScriptEntity   `json:"entity"`
	AttachedTo []string       `json:"attached_to"`
	References []ReferenceHit `json:"references"`
	Verdict    Verdict        `json:"status"`
	Collision  bool           `json:"name_collision,omitempty"`
}

// IsAttached reports whether the entity has at least one container
func (u *Usage) IsAttached() bool {
	return len(u.AttachedTo) > 0
}

// IsReferenced reports whether another file mentions the entity
func (u *Usage) IsReferenced() bool {
	return len(u.References) > 0
}

// AttachedToField joins the containers for logs and reports
func (u *Usage) AttachedToField() string {
	if len(u.AttachedTo) == 0 {
		return NoAttachments
	}
	return strings.Join(u.AttachedTo, attachmentSeparator)
}

// ReferencesField joins the formatted hits; empty when there are none
func (u *Usage) ReferencesField() string {
	parts := make([]string, len(u.References))
	for i, h := range u.References {
		parts[i] = h.String()
	}
	return strings.Join(parts, referenceSeparator)
}

// Run is the result of one classifier pass
type Run struct {
	ID         string    `json:"id" db:"id"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	TargetRoot string    `json:"target_root" db:"target_root"`
	Usages     []Usage   `json:"usages"`
	Warnings   []string  `json:"warnings,omitempty"`
	ReportPath string    `json:"report_path,omitempty" db:"report_path"`
}

// Counts returns the number of used and unused entities
func (r *Run) Counts() (used, unused int) {
	for _, u := range r.Usages {
		if u.Verdict == VerdictUsed {
			used++
		} else {
			unused++
		}
	}
	return used, unused
}

// Collisions returns the names shared by more than one entity
func (r *Run) Collisions() []string {
	seen := make(map[string]bool)
	var names []string
	for _, u := range r.Usages {
		if u.Collision && !seen[u.Entity.Name] {
			seen[u.Entity.Name] = true
			names = append(names, u.Entity.Name)
		}
	}
	return names
}
