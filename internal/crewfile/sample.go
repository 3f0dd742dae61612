package crewfile

import (
	_ "embed"

	"github.com/crewos/crewos/pkg/models"
)

// sampleYAML is the built-in demonstration crew: a researcher and an
// analyst feed a writer that composes the final summary.
//
//go:embed sample_crew.yaml
var sampleYAML []byte

// Sample returns the built-in demonstration crew.
func Sample() (*models.Crew, error) {
	return Parse(sampleYAML)
}

// SampleYAML returns the raw sample declaration, for writing out as a
// starting point.
func SampleYAML() []byte {
	out := make([]byte, len(sampleYAML))
	copy(out, sampleYAML)
	return out
}
