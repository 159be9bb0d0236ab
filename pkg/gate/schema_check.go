package gate

import (
	"fmt"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

var schemaValidBundleTypes = map[models.BundleType]bool{
	models.BundleFull:    true,
	models.BundleFeature: true,
	models.BundlePatch:   true,
	models.BundleCleanup: true,
}

// SchemaCheck is a blocker: the bundle must carry the required top-level
// fields and every step referenced by its plan must be well-formed.
type SchemaCheck struct{}

func (c *SchemaCheck) Name() string { return "SchemaCheck" }
func (c *SchemaCheck) Level() Level { return LevelBlocker }

func (c *SchemaCheck) Run(b models.Bundle) CheckResult {
	var errs []string

	if b.ID == "" {
		errs = append(errs, "missing required field: id")
	}
	if b.Type == "" {
		errs = append(errs, "missing required field: type")
	} else if !schemaValidBundleTypes[b.Type] {
		errs = append(errs, fmt.Sprintf("bundle_type %q is not one of full, feature, patch, cleanup", b.Type))
	}
	if b.CreatedAt.IsZero() {
		errs = append(errs, "missing required field: created_at")
	}
	if b.Files == nil {
		errs = append(errs, "missing required field: files")
	}

	if b.Plan != nil {
		for i, s := range b.Plan.Steps {
			if s.ID == "" {
				errs = append(errs, fmt.Sprintf("plan.steps[%d]: missing required field: id", i))
			}
			if s.Action == "" {
				errs = append(errs, fmt.Sprintf("plan.steps[%d]: missing required field: action", i))
			}
			if s.TargetPath == "" {
				errs = append(errs, fmt.Sprintf("plan.steps[%d]: missing required field: target", i))
			}
		}
	}

	if len(errs) > 0 {
		return CheckResult{Passed: false, Message: "bundle schema violations found", Details: map[string]any{"errors": errs}}
	}
	return CheckResult{Passed: true, Message: "bundle schema is well-formed"}
}
