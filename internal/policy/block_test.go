package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseText(t *testing.T, text string) *Block {
	t.Helper()
	tokens := Tokenize(text)
	require.NotEmpty(t, tokens)
	require.Equal(t, "{", tokens[0])
	b, pos := parseBlock(tokens, 0)
	require.Equal(t, len(tokens), pos)
	return b
}

func TestParseBlockScalars(t *testing.T) {
	b := parseText(t, `{ enabled = false matches file }`)

	assert.Equal(t, "false", b.stringValue("enabled", ""))
	assert.Equal(t, "file", b.stringValue("matches", ""))
	assert.Empty(t, b.Items)
}

func TestParseBlockItems(t *testing.T) {
	// Standalone tokens before a closing brace land in Items.
	b := parseText(t, `{ secrets { SQ34101 SQ34108 } }`)

	sb := b.singleBlock("secrets")
	require.NotNil(t, sb)
	// Adjacent bare words pair up as implicit key/value; only the last
	// unpaired token becomes an item.
	assert.Equal(t, "SQ34108", sb.stringValue("SQ34101", ""))
}

func TestParseBlockLabeled(t *testing.T) {
	b := parseText(t, `{ secrets "*.py" { reason "test data" } }`)

	list := blockList(b.Values["secrets"])
	require.Len(t, list, 1)
	assert.True(t, list[0].Labeled)
	assert.Equal(t, "*.py", list[0].Label)
	assert.Equal(t, "test data", list[0].stringValue("reason", ""))
}

func TestParseBlockLabeledAlwaysList(t *testing.T) {
	// A single labeled block is stored as a one-element list so repeats do
	// not change the shape consumers see.
	single := parseText(t, `{ filter "a" { } }`)
	assert.Len(t, blockList(single.Values["filter"]), 1)
	assert.Nil(t, single.singleBlock("filter"))

	repeated := parseText(t, `{ filter "a" { } filter "b" { } }`)
	list := blockList(repeated.Values["filter"])
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Label)
	assert.Equal(t, "b", list[1].Label)
}

func TestParseBlockRepeatedUnlabeled(t *testing.T) {
	b := parseText(t, `{ filter { x = 1 } filter { x = 2 } }`)

	list := blockList(b.Values["filter"])
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].stringValue("x", ""))
	assert.Equal(t, "2", list[1].stringValue("x", ""))
	// The repeated form is a list, not a single block.
	assert.Nil(t, b.singleBlock("filter"))
}

func TestParseBlockEmptyLabel(t *testing.T) {
	b := parseText(t, `{ secrets "" { } }`)

	list := blockList(b.Values["secrets"])
	require.Len(t, list, 1)
	assert.True(t, list[0].Labeled)
	assert.Equal(t, "", list[0].Label)
}

func TestParseBlockMissingClosingBrace(t *testing.T) {
	tokens := Tokenize(`{ key = value`)
	b, pos := parseBlock(tokens, 0)

	assert.Equal(t, "value", b.stringValue("key", ""))
	assert.Equal(t, len(tokens)+1, pos)
}

func TestParseBlockAnonymousNested(t *testing.T) {
	// An anonymous nested block is consumed but contributes nothing.
	b := parseText(t, `{ { hidden = 1 } key = value }`)

	assert.Equal(t, "value", b.stringValue("key", ""))
	assert.Equal(t, "", b.stringValue("hidden", ""))
}

func TestParseBlockDanglingAssignment(t *testing.T) {
	tokens := Tokenize(`{ key =`)
	b, _ := parseBlock(tokens, 0)

	v, ok := b.Values["key"].(string)
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestStringValueNonScalar(t *testing.T) {
	b := parseText(t, `{ nested { } }`)

	assert.Equal(t, "fallback", b.stringValue("nested", "fallback"))
	assert.Equal(t, "fallback", b.stringValue("absent", "fallback"))
}
