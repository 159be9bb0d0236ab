package gate

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// resolveExtensions is the order relative imports are probed in, matching
// the Node.js module resolution algorithm's extension search.
var resolveExtensions = []string{"", ".js", ".jsx", ".ts", ".tsx", ".json"}

var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^\s*import\s+(?:[\w*{}\s,]+\s+from\s+)?['"]([^'"]+)['"]`),
	regexp.MustCompile(`(?m)import\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`(?m)require\(\s*['"]([^'"]+)['"]\s*\)`),
}

// DependencyCheck is a blocker: every relative import in a JS/TS file must
// resolve to another file present in the bundle. Non-relative specifiers
// (package names, bare module ids) are assumed to resolve from
// node_modules and are not checked.
type DependencyCheck struct{}

func (c *DependencyCheck) Name() string { return "DependencyCheck" }
func (c *DependencyCheck) Level() Level { return LevelBlocker }

func (c *DependencyCheck) Run(b models.Bundle) CheckResult {
	present := make(map[string]bool, len(b.Files))
	for _, f := range b.Files {
		if f.Action != models.ActionDelete {
			present[f.Path] = true
		}
	}

	var errs []string
	for _, f := range b.Files {
		if f.Action == models.ActionDelete || !isJSFamily(f.Path) {
			continue
		}
		for _, spec := range extractImports(f.Content) {
			if !strings.HasPrefix(spec, ".") {
				continue
			}
			if !resolveImport(f.Path, spec, present) {
				errs = append(errs, fmt.Sprintf("%s: cannot resolve import %q", f.Path, spec))
			}
		}
	}

	if len(errs) > 0 {
		return CheckResult{Passed: false, Message: "unresolved relative imports", Details: map[string]any{"errors": errs}}
	}
	return CheckResult{Passed: true, Message: "all relative imports resolve"}
}

func isJSFamily(p string) bool {
	ext := path.Ext(p)
	switch ext {
	case ".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs":
		return true
	}
	return false
}

func extractImports(content string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, re := range importPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			if spec := m[1]; !seen[spec] {
				seen[spec] = true
				out = append(out, spec)
			}
		}
	}
	return out
}

func resolveImport(fromPath, spec string, present map[string]bool) bool {
	base := path.Join(path.Dir(fromPath), spec)

	for _, ext := range resolveExtensions {
		if present[base+ext] {
			return true
		}
	}
	for _, ext := range resolveExtensions {
		if ext == "" {
			continue
		}
		if present[path.Join(base, "index"+ext)] {
			return true
		}
	}
	return false
}
