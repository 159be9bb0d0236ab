package gate

import (
	"fmt"
	"path"
	"strings"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

var testableExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".py": true, ".go": true,
}

var nonTestableBasenames = map[string]bool{
	"package.json": true, "tsconfig.json": true, "index.json": true,
}

// TestCoverageCheck is a blocker: the fraction of "should be tested" files
// that have a matching test entry must meet Threshold (spec default 80).
type TestCoverageCheck struct {
	Threshold float64
}

func (c *TestCoverageCheck) Name() string { return "TestCoverageCheck" }
func (c *TestCoverageCheck) Level() Level { return LevelBlocker }

func (c *TestCoverageCheck) Run(b models.Bundle) CheckResult {
	testable := 0
	tested := 0

	sourceFiles := make(map[string]bool, len(b.Tests))
	for _, t := range b.Tests {
		if t.SourceFile != "" {
			sourceFiles[t.SourceFile] = true
		}
	}

	for _, f := range b.Files {
		if f.Action == models.ActionDelete || !shouldBeTested(f.Path) {
			continue
		}
		testable++
		if sourceFiles[f.Path] || hasConventionalTest(f.Path, b.Tests) {
			tested++
		}
	}

	if testable == 0 {
		return CheckResult{Passed: true, Message: "no testable files in bundle"}
	}

	coverage := 100 * float64(tested) / float64(testable)
	passed := coverage >= c.Threshold
	msg := fmt.Sprintf("test coverage %.1f%% (threshold %.1f%%)", coverage, c.Threshold)
	return CheckResult{
		Passed:  passed,
		Message: msg,
		Details: map[string]any{"testable": testable, "tested": tested, "coverage": coverage},
	}
}

func shouldBeTested(p string) bool {
	if !testableExtensions[path.Ext(p)] {
		return false
	}
	base := path.Base(p)
	if nonTestableBasenames[base] {
		return false
	}
	if isTestFile(p) {
		return false
	}
	return true
}

func isTestFile(p string) bool {
	base := path.Base(p)
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") ||
		strings.HasSuffix(base, "_test.go") || strings.HasPrefix(base, "test_")
}

func hasConventionalTest(srcPath string, tests []models.TestEntry) bool {
	ext := path.Ext(srcPath)
	stem := strings.TrimSuffix(srcPath, ext)
	candidates := []string{stem + ".test" + ext, stem + ".spec" + ext, stem + "_test.go"}
	for _, t := range tests {
		for _, cand := range candidates {
			if t.Path == cand {
				return true
			}
		}
	}
	return false
}
