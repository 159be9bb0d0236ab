package gate

import (
	"testing"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestSyntaxCheckPassesWellFormedFiles(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "src/a.ts", Action: models.ActionCreate, Content: "export function f() { return {a: 1}; }"},
		{Path: "a.json", Action: models.ActionCreate, Content: `{"a":1}`},
		{Path: "a.css", Action: models.ActionCreate, Content: ".x { color: red; }"},
	}}
	r := (&SyntaxCheck{}).Run(b)
	assert.True(t, r.Passed)
}

func TestSyntaxCheckCatchesUnbalancedBraces(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "src/a.ts", Action: models.ActionCreate, Content: "export function f() { return 1;"},
	}}
	r := (&SyntaxCheck{}).Run(b)
	assert.False(t, r.Passed)
}

func TestSyntaxCheckCatchesInvalidJSON(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "a.json", Action: models.ActionCreate, Content: `{"a":}`},
	}}
	r := (&SyntaxCheck{}).Run(b)
	assert.False(t, r.Passed)
}

func TestSyntaxCheckIgnoresDeletedFiles(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "a.ts", Action: models.ActionDelete, Content: "not even valid ("},
	}}
	r := (&SyntaxCheck{}).Run(b)
	assert.True(t, r.Passed)
}

func TestSyntaxCheckIgnoresBracesInsideStringsAndComments(t *testing.T) {
	b := models.Bundle{Files: []models.FileEntry{
		{Path: "a.js", Action: models.ActionCreate, Content: "const s = \"{ unbalanced\"; // } also unbalanced\nfunction f() {}"},
	}}
	r := (&SyntaxCheck{}).Run(b)
	assert.True(t, r.Passed)
}
