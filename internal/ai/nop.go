package ai

import (
	"context"

	"github.com/amishk599/folio/internal/model"
)

// NopProvider is used when ai.enabled is false or no API key is set.
// Every call fails with ErrDisabled so callers take their fallback path.
type NopProvider struct{}

// NewNopProvider returns a NopProvider.
func NewNopProvider() *NopProvider {
	return &NopProvider{}
}

// Complete always returns ErrDisabled.
func (n *NopProvider) Complete(_ context.Context, _ []model.Message) (string, error) {
	return "", ErrDisabled
}
