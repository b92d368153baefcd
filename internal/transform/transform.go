package transform

import (
	"fmt"
	"strings"

	"github.com/assurlink/courtage/internal/domain"
)

// QuoteTransform defines the interface for all quote request transformations.
// Transforms are composable operations that derive variants from a base request,
// enabling scenario comparison, target solving and the interactive simulator.
type QuoteTransform interface {
	// Apply returns a modified copy of base. The base request is never mutated.
	Apply(base *domain.QuoteRequest) (*domain.QuoteRequest, error)

	// Name returns a short identifier for this transform (e.g., "set_duration").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks the transform applies to base without applying it
	// (e.g., adding a coverage to a savings request).
	Validate(base *domain.QuoteRequest) error
}

// ApplyTransforms applies a sequence of transforms to a base request.
// Transforms are applied in order, with each transform receiving the output of the previous one.
func ApplyTransforms(base *domain.QuoteRequest, transforms []QuoteTransform) (*domain.QuoteRequest, error) {
	if base == nil {
		return nil, fmt.Errorf("base request cannot be nil")
	}

	if len(transforms) == 0 {
		return base.DeepCopy(), nil
	}

	current := base
	for i, transform := range transforms {
		if transform == nil {
			return nil, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return nil, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}

		current = next
	}

	return current, nil
}

// Describe joins the descriptions of transforms for display
func Describe(transforms []QuoteTransform) string {
	parts := make([]string, 0, len(transforms))
	for _, t := range transforms {
		parts = append(parts, t.Description())
	}
	return strings.Join(parts, " + ")
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
