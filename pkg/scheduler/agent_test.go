package scheduler

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestSelectKindTestLayerIsTestGen(t *testing.T) {
	assert.Equal(t, KindTestGen, SelectKind(models.Step{Layer: models.LayerBackend, TargetPath: "src/widget.test.ts"}))
	assert.Equal(t, KindTestGen, SelectKind(models.Step{Layer: models.LayerTest, TargetPath: "src/widget.ts"}))
}

func TestSelectKindMigrationTargetOrDatabaseLayerIsMigration(t *testing.T) {
	assert.Equal(t, KindMigration, SelectKind(models.Step{TargetPath: "db/migrations/0001_init.sql"}))
	assert.Equal(t, KindMigration, SelectKind(models.Step{Layer: models.LayerDatabase, TargetPath: "schema.sql"}))
}

func TestSelectKindDefaultsToCodeGen(t *testing.T) {
	assert.Equal(t, KindCodeGen, SelectKind(models.Step{Layer: models.LayerBackend, TargetPath: "src/widget.ts"}))
}
