package bundle

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildComputesChecksumsAndIDs(t *testing.T) {
	b := Build(Input{
		Files: []models.FileEntry{{Path: "src/a.js", Action: models.ActionCreate, Content: "export const x = 1;"}},
	})
	require.NotEmpty(t, b.ID)
	require.Len(t, b.Files, 1)
	assert.NotEmpty(t, b.Files[0].Checksum)
	assert.Equal(t, len("export const x = 1;"), b.Files[0].Size)
}

func TestClassifyTypeCreateOnlyIsFull(t *testing.T) {
	files := []models.FileEntry{
		{Action: models.ActionCreate}, {Action: models.ActionCreate}, {Action: models.ActionCreate},
	}
	assert.Equal(t, models.BundleFull, ClassifyType(files))
}

func TestClassifyTypeAllModifyIsPatch(t *testing.T) {
	files := []models.FileEntry{{Action: models.ActionModify}, {Action: models.ActionModify}}
	assert.Equal(t, models.BundlePatch, ClassifyType(files))
}

func TestClassifyTypeMixedCreateModifyIsFeature(t *testing.T) {
	files := []models.FileEntry{{Action: models.ActionCreate}, {Action: models.ActionModify}}
	assert.Equal(t, models.BundleFeature, ClassifyType(files))
}

func TestClassifyTypeDeleteOnlyIsCleanup(t *testing.T) {
	files := []models.FileEntry{{Action: models.ActionDelete}}
	assert.Equal(t, models.BundleCleanup, ClassifyType(files))
}

func TestDeriveCommandsIncludesDependencyInstall(t *testing.T) {
	b := Build(Input{
		Files: []models.FileEntry{{Path: "package.json", Action: models.ActionModify, Content: "{}"}},
	})
	found := false
	for _, c := range b.Commands {
		if c.Command == "npm install" {
			found = true
			assert.Equal(t, models.CommandPreApply, c.When)
		}
	}
	assert.True(t, found)
}

func TestDeriveCommandsMigrationRiskIsMax(t *testing.T) {
	b := Build(Input{
		Files: []models.FileEntry{{Path: "src/a.js", Action: models.ActionCreate, Content: "x"}},
		Migrations: []models.MigrationEntry{
			{ID: "m1", DataLossRisk: models.DataLossLow, SQLForward: "CREATE TABLE a (id INT);", SQLReverse: "DROP TABLE a;"},
			{ID: "m2", DataLossRisk: models.DataLossHigh, SQLForward: "DROP COLUMN x;", SQLReverse: ""},
		},
	})
	var migrateCmd *models.CommandEntry
	for i := range b.Commands {
		if b.Commands[i].Command == "migrate up" {
			migrateCmd = &b.Commands[i]
		}
	}
	require.NotNil(t, migrateCmd)
	assert.Equal(t, string(models.DataLossHigh), migrateCmd.RiskLevel)
}

func TestDeriveCommandsBuildOnConfigChange(t *testing.T) {
	b := Build(Input{
		Files: []models.FileEntry{{Path: "tsconfig.json", Action: models.ActionModify, Content: "{}"}},
	})
	found := false
	for _, c := range b.Commands {
		if c.Command == "npm run build" {
			found = true
			assert.Equal(t, models.CommandPostApply, c.When)
		}
	}
	assert.True(t, found)
}
