package scheduler

import "github.com/codeready-toolchain/codegen-orchestrator/pkg/models"

// Batch arranges steps into a sequence of batches such that every step in
// batch k depends only on steps in batches before k (spec §4.8). Steps
// within a batch have no ordering relative to each other.
//
// Fails with a *CircularDependencyError naming every step that could never
// be placed if the done set stops growing while steps remain.
func Batch(steps []models.Step) ([][]models.Step, error) {
	byID := make(map[string]models.Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}

	done := make(map[string]bool, len(steps))
	remaining := make([]models.Step, len(steps))
	copy(remaining, steps)

	var batches [][]models.Step

	for len(remaining) > 0 {
		var next []models.Step
		var still []models.Step

		for _, s := range remaining {
			if dependenciesSatisfied(s, done) {
				next = append(next, s)
			} else {
				still = append(still, s)
			}
		}

		if len(next) == 0 {
			ids := make([]string, len(still))
			for i, s := range still {
				ids[i] = s.ID
			}
			return nil, &CircularDependencyError{RemainingIDs: ids}
		}

		for _, s := range next {
			done[s.ID] = true
		}
		batches = append(batches, next)
		remaining = still
	}

	return batches, nil
}

func dependenciesSatisfied(s models.Step, done map[string]bool) bool {
	for _, dep := range s.Dependencies {
		if !done[dep] {
			return false
		}
	}
	return true
}
