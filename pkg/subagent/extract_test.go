package subagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCodeBlockPullsFencedContent(t *testing.T) {
	text := "Here is the file:\n```ts\nexport const x = 1;\n```\nDone."
	assert.Equal(t, "export const x = 1;", ExtractCodeBlock(text))
}

func TestExtractCodeBlockFallsBackToFullTextWithoutFence(t *testing.T) {
	assert.Equal(t, "export const x = 1;", ExtractCodeBlock("export const x = 1;"))
}

func TestExtractNamedBlockFindsLabeledBlocks(t *testing.T) {
	text := "```forward\nCREATE TABLE t (id INT);\n```\n```reverse\nDROP TABLE t;\n```"
	forward, ok := ExtractNamedBlock(text, "forward")
	require.True(t, ok)
	assert.Equal(t, "CREATE TABLE t (id INT);", forward)

	reverse, ok := ExtractNamedBlock(text, "reverse")
	require.True(t, ok)
	assert.Equal(t, "DROP TABLE t;", reverse)
}

func TestExtractNamedBlockMissingReturnsFalse(t *testing.T) {
	_, ok := ExtractNamedBlock("no blocks here", "forward")
	assert.False(t, ok)
}
