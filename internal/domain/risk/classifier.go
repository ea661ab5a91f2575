// Package risk implements driving-fitness risk classification.
//
// Two classifiers exist behind one interface: a deterministic rule evaluator
// encoding the threshold table directly, and a delegate-backed classifier
// that renders the same rules into a prompt for an external text-generation
// service and parses a single-word label out of the response.
package risk

import (
	"context"

	"github.com/drivefit/riskd/internal/domain/model"
)

// Classifier maps a health sample to a risk label. Implementations never
// fail: a delegate error degrades to model.LabelError so ingestion can still
// persist a record.
type Classifier interface {
	Classify(ctx context.Context, sample model.Sample) model.Label
}
