package gate

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestDependencyCheckPassesWhenRelativeImportResolves(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "src/index.ts", Action: models.ActionCreate, Content: `import { helper } from "./helper";`},
		{Path: "src/helper.ts", Action: models.ActionCreate, Content: "export const helper = 1;"},
	}}
	r := (&DependencyCheck{}).Run(b)
	assert.True(t, r.Passed)
}

func TestDependencyCheckFailsOnMissingRelativeImport(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "src/index.ts", Action: models.ActionCreate, Content: `import { helper } from "./missing";`},
	}}
	r := (&DependencyCheck{}).Run(b)
	assert.False(t, r.Passed)
}

func TestDependencyCheckResolvesDirectoryIndex(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "src/index.ts", Action: models.ActionCreate, Content: `import { helper } from "./util";`},
		{Path: "src/util/index.ts", Action: models.ActionCreate, Content: "export const helper = 1;"},
	}}
	r := (&DependencyCheck{}).Run(b)
	assert.True(t, r.Passed)
}

func TestDependencyCheckIgnoresNonRelativeImports(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "src/index.ts", Action: models.ActionCreate, Content: `import React from "react";`},
	}}
	r := (&DependencyCheck{}).Run(b)
	assert.True(t, r.Passed)
}

func TestDependencyCheckHandlesRequireAndDynamicImport(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "src/a.js", Action: models.ActionCreate, Content: "const b = require('./b'); import('./c');"},
		{Path: "src/b.js", Action: models.ActionCreate, Content: "module.exports = {};"},
	}}
	r := (&DependencyCheck{}).Run(b)
	assert.False(t, r.Passed)
	assert.Contains(t, r.Details["errors"], "src/a.js: cannot resolve import \"./c\"")
}
