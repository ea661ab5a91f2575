package risk

import (
	"context"

	"github.com/drivefit/riskd/internal/adapters/textgen"
	"github.com/drivefit/riskd/internal/domain/model"
	"github.com/drivefit/riskd/pkg/logger"
)

// DelegateClassifier renders the rule set into a prompt and lets an external
// text generator make the call. The local code only extracts a single-word
// label from free text.
type DelegateClassifier struct {
	gen textgen.Generator
	log logger.Logger
}

// DelegateOption applies a configuration option to the DelegateClassifier.
type DelegateOption func(*DelegateClassifier)

// WithLogger sets a logger for prompt/response diagnostics.
func WithLogger(log logger.Logger) DelegateOption {
	return func(c *DelegateClassifier) {
		if log != nil {
			c.log = log
		}
	}
}

// NewDelegateClassifier creates a classifier backed by gen.
func NewDelegateClassifier(gen textgen.Generator, opts ...DelegateOption) *DelegateClassifier {
	c := &DelegateClassifier{gen: gen}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify builds the prompt, delegates, and parses the label. A failed
// delegate call degrades to model.LabelError; a response without any label
// word yields model.LabelUnknown. Never raises to the caller.
func (c *DelegateClassifier) Classify(ctx context.Context, sample model.Sample) model.Label {
	prompt := BuildPrompt(sample)
	if c.log != nil {
		c.log.Debug(ctx, "classification prompt", logger.String("prompt", prompt))
	}

	output, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		if c.log != nil {
			c.log.Warn(ctx, "delegate classification failed", logger.Error(err))
		}
		return model.LabelError
	}
	if c.log != nil {
		c.log.Debug(ctx, "delegate response", logger.String("output", output))
	}

	return ExtractLabel(output)
}
