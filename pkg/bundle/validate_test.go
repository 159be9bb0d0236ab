package bundle

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestValidatePassesForWellFormedBundle(t *testing.T) {
	b := models.Bundle{
		ID:    "b1",
		Type:  models.BundleFull,
		Files: []models.FileEntry{{Path: "a.js"}},
	}
	r := Validate(b)
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestValidateMissingIDAndTypeAreErrors(t *testing.T) {
	r := Validate(models.Bundle{})
	assert.False(t, r.Valid)
	assert.Contains(t, r.Errors, "bundle id is required")
}

func TestValidateEmptyFileListIsWarningNotError(t *testing.T) {
	b := models.Bundle{ID: "b1", Type: models.BundleFull}
	r := Validate(b)
	assert.True(t, r.Valid)
	assert.NotEmpty(t, r.Warnings)
}

func TestValidateHighRiskMigrationWarns(t *testing.T) {
	b := models.Bundle{
		ID:   "b1",
		Type: models.BundleFull,
		Files: []models.FileEntry{{Path: "a.js"}},
		Migrations: []models.MigrationEntry{{ID: "m1", DataLossRisk: models.DataLossHigh}},
	}
	r := Validate(b)
	assert.True(t, r.Valid)
	assert.NotEmpty(t, r.Warnings)
}
