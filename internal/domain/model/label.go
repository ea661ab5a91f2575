// Package model contains domain models passed between layers.
package model

// Label is the driving-fitness risk classification result.
type Label string

// The five permitted risk labels. A Record never carries free text.
const (
	LabelNormal   Label = "normal"
	LabelModerate Label = "moderate"
	LabelHigh     Label = "high"
	LabelUnknown  Label = "unknown"
	LabelError    Label = "error"
)

// Valid reports whether l is one of the enumerated labels.
func (l Label) Valid() bool {
	switch l {
	case LabelNormal, LabelModerate, LabelHigh, LabelUnknown, LabelError:
		return true
	}
	return false
}

func (l Label) String() string { return string(l) }
