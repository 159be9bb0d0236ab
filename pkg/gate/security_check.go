package gate

import (
	"fmt"
	"regexp"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

// securityPattern is a named, pre-compiled heuristic for one class of
// insecure-by-construction generated code.
type securityPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Description string
}

var securityPatterns = []securityPattern{
	{
		Name:        "hardcoded-api-key",
		Regex:       regexp.MustCompile(`(?i)(api[_-]?key|secret|token)\s*[:=]\s*['"][A-Za-z0-9_\-]{16,}['"]`),
		Description: "hardcoded API key or secret literal",
	},
	{
		Name:        "aws-access-key",
		Regex:       regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		Description: "AWS access key id literal",
	},
	{
		Name:        "credentialed-db-uri",
		Regex:       regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb)://[^:/\s]+:[^@/\s]+@`),
		Description: "database connection URI with an inline password",
	},
	{
		Name:        "eval-usage",
		Regex:       regexp.MustCompile(`\beval\s*\(`),
		Description: "eval() of dynamic input",
	},
	{
		Name:        "dynamic-function-construction",
		Regex:       regexp.MustCompile(`new\s+Function\s*\(`),
		Description: "dynamic Function() construction",
	},
	{
		Name:        "inner-html-assignment",
		Regex:       regexp.MustCompile(`\.innerHTML\s*=`),
		Description: "unsanitized innerHTML assignment",
	},
	{
		Name:        "document-write",
		Regex:       regexp.MustCompile(`document\.write\s*\(`),
		Description: "document.write() usage",
	},
	{
		Name:        "sql-string-concatenation",
		Regex:       regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE)\b[^;'"` + "`" + `]*['"` + "`" + `]\s*\+`),
		Description: "SQL statement built by string concatenation",
	},
}

// SecurityCheck is a warning: it flags likely-insecure constructs in
// generated code but never blocks the gate on its own.
type SecurityCheck struct{}

func (c *SecurityCheck) Name() string { return "SecurityCheck" }
func (c *SecurityCheck) Level() Level { return LevelWarning }

func (c *SecurityCheck) Run(b models.Bundle) CheckResult {
	var findings []string
	for _, f := range b.Files {
		if f.Action == models.ActionDelete {
			continue
		}
		for _, p := range securityPatterns {
			if p.Regex.MatchString(f.Content) {
				findings = append(findings, fmt.Sprintf("%s: %s (%s)", f.Path, p.Description, p.Name))
			}
		}
	}

	if len(findings) > 0 {
		return CheckResult{Passed: false, Message: "potential security issues found", Details: map[string]any{"findings": findings}}
	}
	return CheckResult{Passed: true, Message: "no known insecure constructs detected"}
}
