// Package bundle implements the Bundle Builder: normalizes raw generation
// output into the schema in spec §3 — checksums, bundle type
// classification, and derived pre/post-apply commands — and validates the
// final shape.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
	"github.com/google/uuid"
)

// packageManifests are files whose presence in the bundle triggers a
// pre-apply dependency-install command.
var packageManifests = map[string]bool{
	"package.json":      true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"go.mod":            true,
	"requirements.txt":  true,
}

// buildConfigFiles are files whose presence triggers a post-apply build command.
var buildConfigFiles = map[string]bool{
	"tsconfig.json":    true,
	"webpack.config.js": true,
	"webpack.config.ts": true,
	"vite.config.js":   true,
	"vite.config.ts":   true,
}

// Input is the raw, not-yet-normalized output of the generate phase.
type Input struct {
	Plan       *models.Plan
	AppSpec    string
	Files      []models.FileEntry
	Tests      []models.TestEntry
	Migrations []models.MigrationEntry
	TokensUsed int
	WallClock  time.Duration
}

// Build normalizes raw generation output into a Bundle: assigns an id and
// timestamp, computes checksums, classifies the bundle type, and derives
// commands.
func Build(in Input) models.Bundle {
	files := make([]models.FileEntry, len(in.Files))
	for i, f := range in.Files {
		f.Checksum = checksum(f.Content)
		f.Size = len(f.Content)
		files[i] = f
	}

	tests := make([]models.TestEntry, len(in.Tests))
	for i, tst := range in.Tests {
		tst.Checksum = checksum(tst.Content)
		tests[i] = tst
	}

	migrations := make([]models.MigrationEntry, len(in.Migrations))
	for i, m := range in.Migrations {
		m.ChecksumForward = checksum(m.SQLForward)
		m.ChecksumReverse = checksum(m.SQLReverse)
		migrations[i] = m
	}

	b := models.Bundle{
		ID:         uuid.NewString(),
		Type:       ClassifyType(files),
		CreatedAt:  time.Now().UTC(),
		Plan:       in.Plan,
		AppSpec:    in.AppSpec,
		Files:      files,
		Tests:      tests,
		Migrations: migrations,
		Metadata: models.BundleMetadata{
			TokensUsed:  in.TokensUsed,
			WallClockMs: in.WallClock.Milliseconds(),
			FileCount:   len(files),
			TestCount:   len(tests),
			Generated:   time.Now().UTC(),
		},
	}
	b.Commands = deriveCommands(files, migrations)
	return b
}

// checksum returns the hex-encoded SHA-256 digest of content. Deterministic
// by construction (same bytes always hash identically).
func checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ClassifyType derives a BundleType from the create/modify/delete mix of
// files (spec §4.6c). Rules are evaluated in order; the first match wins.
func ClassifyType(files []models.FileEntry) models.BundleType {
	var creates, modifies, deletes int
	for _, f := range files {
		switch f.Action {
		case models.ActionCreate:
			creates++
		case models.ActionModify:
			modifies++
		case models.ActionDelete:
			deletes++
		}
	}
	total := creates + modifies + deletes
	if total == 0 {
		return models.BundleCleanup
	}

	if float64(creates)/float64(total) > 0.8 {
		return models.BundleFull
	}
	if creates > 0 && modifies > 0 {
		return models.BundleFeature
	}
	if modifies > 0 && creates == 0 && deletes == 0 {
		return models.BundlePatch
	}
	if deletes > 0 && creates == 0 && modifies == 0 {
		return models.BundleCleanup
	}
	return models.BundleFeature
}

var riskRank = map[models.DataLossRisk]int{
	models.DataLossLow:    0,
	models.DataLossMedium: 1,
	models.DataLossHigh:   2,
}

func deriveCommands(files []models.FileEntry, migrations []models.MigrationEntry) []models.CommandEntry {
	var commands []models.CommandEntry

	for _, f := range files {
		if packageManifests[baseName(f.Path)] {
			commands = append(commands, models.CommandEntry{
				Command:     "npm install",
				When:        models.CommandPreApply,
				Description: "install dependencies after manifest change",
			})
			break
		}
	}

	if len(migrations) > 0 {
		maxRisk := models.DataLossLow
		for _, m := range migrations {
			if riskRank[m.DataLossRisk] > riskRank[maxRisk] {
				maxRisk = m.DataLossRisk
			}
		}
		commands = append(commands, models.CommandEntry{
			Command:     "migrate up",
			When:        models.CommandPreApply,
			Description: "apply database migrations",
			RiskLevel:   string(maxRisk),
		})
	}

	for _, f := range files {
		if buildConfigFiles[baseName(f.Path)] {
			commands = append(commands, models.CommandEntry{
				Command:     "npm run build",
				When:        models.CommandPostApply,
				Description: "rebuild after build configuration change",
			})
			break
		}
	}

	return commands
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
