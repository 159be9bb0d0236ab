package subagent

import (
	"fmt"
	"regexp"
)

var codeBlockPattern = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_+-]*\\n)?(.*?)```")

// ExtractNamedBlock pulls a fenced code block whose info string matches
// name exactly (case-insensitive), e.g. ExtractNamedBlock(resp, "forward")
// finds a ```forward ... ``` block. Used by the Migration sub-agent, whose
// prompt asks for two distinct fenced blocks in one response.
func ExtractNamedBlock(text, name string) (string, bool) {
	pattern := fmt.Sprintf("(?is)```%s\\s*\\n(.*?)```", regexp.QuoteMeta(name))
	re := regexp.MustCompile(pattern)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return trimTrailingNewline(m[1]), true
}

// ExtractCodeBlock pulls the first fenced code block out of an LLM
// response (spec §4.8: "parses a single code block out of the response").
// If no fenced block is present, the full trimmed response is returned as
// a fallback — some smaller models omit the fences for short snippets.
func ExtractCodeBlock(text string) string {
	if m := codeBlockPattern.FindStringSubmatch(text); m != nil {
		return trimTrailingNewline(m[1])
	}
	return trimTrailingNewline(text)
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	for len(s) > 0 && (s[0] == '\n' || s[0] == '\r') {
		s = s[1:]
	}
	return s
}
