// Package generator provides clients for the free-form text generators the
// prediction tiers call.
package generator

import (
	"context"
	"errors"
)

// Generator is a single request/response text generation call. The returned
// payload shape is unconstrained: free text, or decoded JSON containing
// text-bearing fields. Interpreting it is entirely the normalizer's job.
type Generator interface {
	Generate(ctx context.Context, prompt string) (any, error)
	Name() string
}

var (
	// ErrGeneratorUnavailable indicates the generation service is unreachable
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrModelNotFound indicates the configured model is not present on the
	// generation service
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyResponse indicates the generator returned no usable payload
	ErrEmptyResponse = errors.New("empty generator response")
)
