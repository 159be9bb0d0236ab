package gate

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestMigrationCheckPassesWhenReverseUndoesForward(t *testing.T) {
	b := models.Bundle{Migrations: []models.MigrationEntry{{
		ID:         "m1",
		SQLForward: "CREATE TABLE widgets (id INT);",
		SQLReverse: "DROP TABLE widgets;",
	}}}
	r := (&MigrationReversibilityCheck{}).Run(b)
	assert.True(t, r.Passed)
}

func TestMigrationCheckFailsWhenReverseMissing(t *testing.T) {
	b := models.Bundle{Migrations: []models.MigrationEntry{{
		ID:         "m1",
		SQLForward: "CREATE TABLE widgets (id INT); ADD COLUMN name VARCHAR(255);",
		SQLReverse: "DROP TABLE widgets;",
	}}}
	r := (&MigrationReversibilityCheck{}).Run(b)
	assert.False(t, r.Passed)
}

func TestMigrationCheckMatchesByTargetIdentifier(t *testing.T) {
	b := models.Bundle{Migrations: []models.MigrationEntry{{
		ID:         "m1",
		SQLForward: "CREATE TABLE widgets (id INT); CREATE TABLE gadgets (id INT);",
		SQLReverse: "DROP TABLE widgets;",
	}}}
	r := (&MigrationReversibilityCheck{}).Run(b)
	assert.False(t, r.Passed)
	errs := r.Details["errors"].([]string)
	assert.Len(t, errs, 1)
	assert.Contains(t, errs[0], "gadgets")
}

func TestMigrationCheckPassesWhenNoMigrations(t *testing.T) {
	r := (&MigrationReversibilityCheck{}).Run(models.Bundle{})
	assert.True(t, r.Passed)
}
