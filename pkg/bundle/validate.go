package bundle

import (
	"strconv"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// ValidationResult is the shared {valid, errors, warnings} shape (spec §4.6).
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var validBundleTypes = map[models.BundleType]bool{
	models.BundleFull:    true,
	models.BundleFeature: true,
	models.BundlePatch:   true,
	models.BundleCleanup: true,
}

// Validate checks a Bundle's final shape: missing ids/types/fields are
// errors, an empty file list is a warning, and high-risk migrations emit a
// warning.
func Validate(b models.Bundle) ValidationResult {
	var errs, warnings []string

	if b.ID == "" {
		errs = append(errs, "bundle id is required")
	}
	if !validBundleTypes[b.Type] {
		errs = append(errs, "bundle type must be one of full, feature, patch, cleanup")
	}
	for i, f := range b.Files {
		if f.Path == "" {
			errs = append(errs, fieldErr(i, "files", "path is required"))
		}
	}
	if len(b.Files) == 0 {
		warnings = append(warnings, "bundle has no file entries")
	}
	for _, m := range b.Migrations {
		if m.DataLossRisk == models.DataLossHigh {
			warnings = append(warnings, "migration "+m.ID+" carries a high data-loss risk")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

func fieldErr(index int, list, msg string) string {
	return list + "[" + strconv.Itoa(index) + "]: " + msg
}
