// Package model defines the business-record types shared across the
// pipeline, loaders, and store.
package model

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/geodensity/internal/geo"
)

// CategoryID identifies a business category. The set of valid categories is
// externally defined; the pipeline is agnostic to what categories mean.
type CategoryID string

// Business is a point-located business record produced by the external data
// layer. The pipeline treats it as immutable.
type Business struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Location   geo.Point         `json:"location"`
	Category   CategoryID        `json:"category"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Validate rejects records with missing or out-of-range coordinates. Records
// are expected to be filtered before reaching the pipeline; this is the
// backstop check.
func (b Business) Validate() error {
	if err := b.Location.Validate(); err != nil {
		return eris.Wrapf(err, "business %s", b.ID)
	}
	return nil
}

// ValidateAll validates every record and returns the first failure.
func ValidateAll(businesses []Business) error {
	for _, b := range businesses {
		if err := b.Validate(); err != nil {
			return err
		}
	}
	return nil
}
