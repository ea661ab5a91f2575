// Package textgen defines the text-generation port used by the delegate
// classifier, plus its hosted implementation.
package textgen

import "context"

// Generator produces free text for a prompt. The delegate classifier treats
// it as a black box that happens to honor the rules encoded in the prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
