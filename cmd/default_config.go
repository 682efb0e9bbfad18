package cmd

import (
	_ "embed"

	"github.com/tiersim/tiersim/sim"
)

// defaultProfiles is the built-in profile set: the customer segmentation and
// financial transaction scenarios with their datasets.
//
//go:embed defaults.yaml
var defaultProfiles []byte

// loadProfileSet parses the profiles file at path, or the built-in set when path is empty.
// Uses strict field checking: typos in keys are errors.
func loadProfileSet(path string) (*sim.ProfileSet, error) {
	if path == "" {
		return sim.ParseProfiles(defaultProfiles)
	}
	return sim.LoadProfiles(path)
}
