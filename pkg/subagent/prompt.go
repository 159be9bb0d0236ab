package subagent

import (
	"fmt"

	"github.com/codeready-toolchain/codegen-orchestrator/pkg/llm"
	"github.com/codeready-toolchain/codegen-orchestrator/pkg/models"
)

func buildCodeGenMessages(step models.Step, feedback string) []llm.Message {
	sys := llm.Message{
		Role: llm.RoleSystem,
		Content: "You are a code generation sub-agent. Respond with exactly one fenced " +
			"code block containing the complete, final content of the target file. " +
			"Do not include any prose outside the fence.",
	}
	user := llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(
		"Target file: %s\nLayer: %s\nTask: %s",
		step.TargetPath, step.Layer, step.Description,
	)}
	if feedback == "" {
		return []llm.Message{sys, user}
	}
	return []llm.Message{sys, user, {
		Role: llm.RoleUser,
		Content: "The previous attempt failed to parse: " + feedback +
			"\nRegenerate the file, fixing that error.",
	}}
}

func buildTestGenMessages(step models.Step) []llm.Message {
	sys := llm.Message{
		Role: llm.RoleSystem,
		Content: "You are a test generation sub-agent. Respond with exactly one fenced " +
			"code block containing a complete test file for the described target.",
	}
	user := llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(
		"Target file under test: %s\nTask: %s", step.TargetPath, step.Description,
	)}
	return []llm.Message{sys, user}
}

func buildMigrationMessages(step models.Step) []llm.Message {
	sys := llm.Message{
		Role: llm.RoleSystem,
		Content: "You are a database migration sub-agent. Respond with exactly two fenced " +
			"code blocks labeled ```forward and ```reverse, each containing complete SQL. " +
			"The reverse block must fully undo the forward block.",
	}
	user := llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf(
		"Migration target: %s\nTask: %s", step.TargetPath, step.Description,
	)}
	return []llm.Message{sys, user}
}
