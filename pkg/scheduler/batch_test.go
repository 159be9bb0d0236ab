package scheduler

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(id string, deps ...string) models.Step {
	return models.Step{ID: id, Dependencies: deps}
}

func TestBatchOrdersByDependency(t *testing.T) {
	steps := []models.Step{
		step("a"),
		step("b", "a"),
		step("c", "a"),
		step("d", "b", "c"),
	}
	batches, err := Batch(steps)
	require.NoError(t, err)
	require.Len(t, batches, 3)
	assert.Equal(t, []models.Step{step("a")}, batches[0])
	assert.ElementsMatch(t, []string{"b", "c"}, idsOf(batches[1]))
	assert.Equal(t, []string{"d"}, idsOf(batches[2]))
}

func TestBatchIndependentStepsShareOneBatch(t *testing.T) {
	steps := []models.Step{step("a"), step("b"), step("c")}
	batches, err := Batch(steps)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, idsOf(batches[0]))
}

func TestBatchDetectsCircularDependency(t *testing.T) {
	steps := []models.Step{step("a", "b"), step("b", "a")}
	_, err := Batch(steps)
	require.Error(t, err)
	var cde *CircularDependencyError
	require.ErrorAs(t, err, &cde)
	assert.ElementsMatch(t, []string{"a", "b"}, cde.RemainingIDs)
	require.ErrorIs(t, err, ErrCircularDependency)
}

func TestBatchMembershipUnionEqualsInputNoDuplicates(t *testing.T) {
	steps := []models.Step{step("a"), step("b", "a"), step("c", "a")}
	batches, err := Batch(steps)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, b := range batches {
		for _, s := range b {
			require.False(t, seen[s.ID], "duplicate step id across batches: %s", s.ID)
			seen[s.ID] = true
		}
	}
	assert.Len(t, seen, len(steps))
}

func idsOf(steps []models.Step) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	return ids
}
