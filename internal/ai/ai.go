// Package ai defines the completion capability consumed by the matching
// engine. Concrete providers live in subpackages.
package ai

import "context"

// Generator is the external completion capability: one prompt in, one
// unstructured text response out.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
