package agents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockresearch/internal/tools"
)

func descriptors(names ...string) []tools.Descriptor {
	out := make([]tools.Descriptor, len(names))
	for i, n := range names {
		out[i] = tools.Descriptor{Name: n}
	}
	return out
}

func TestAugmentPromptNoTools(t *testing.T) {
	got := AugmentPrompt("BASE", nil)

	ruler := strings.Repeat("=", 80)
	want := "BASE\n\n" + ruler + "\n" +
		"⚠️  CRITICAL: NO EXTERNAL TOOLS AVAILABLE\n" + ruler + "\n" +
		"You MUST answer using ONLY your internal knowledge.\n" +
		"DO NOT attempt to call ANY tools or functions.\n" +
		"DO NOT use <function=...> syntax or tool_calls.\n" +
		"Provide direct answers based on your training data.\n" + ruler
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "  1. ")
	assert.NotContains(t, got, "AVAILABLE TOOLS")
}

func TestAugmentPromptListsToolsSorted(t *testing.T) {
	got := AugmentPrompt("BASE", descriptors("search_engine", "scrape_as_markdown", "search_engine", "web_data_nse"))

	ruler := strings.Repeat("=", 80)
	want := "BASE\n\n" + ruler + "\n" +
		"🔧 AVAILABLE TOOLS (STRICTLY LIMITED)\n" + ruler + "\n" +
		"  1. scrape_as_markdown\n" +
		"  2. search_engine\n" +
		"  3. web_data_nse\n\n" +
		"⚠️  CRITICAL TOOL USAGE RULES:\n" +
		"1. Use ONLY the exact tool names listed above\n" +
		"2. DO NOT invent, guess, or modify tool names\n" +
		"3. DO NOT use tools that are not in the list\n" +
		"4. If you need a capability not listed, answer directly WITHOUT tool calls\n" +
		"5. NEVER use <function=...> syntax for unlisted tools\n" +
		"6. When in doubt, provide direct answers instead of attempting tool calls\n\n" +
		"If you attempt to call a non-existent tool, your response will FAIL.\n" + ruler
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "NO EXTERNAL TOOLS")
}

func TestAugmentPromptIgnoresInputOrder(t *testing.T) {
	perms := [][]string{
		{"c", "a", "b"},
		{"b", "b", "a", "c", "a"},
		{"a", "b", "c"},
	}

	first := AugmentPrompt("p", descriptors(perms[0]...))
	for _, p := range perms[1:] {
		assert.Equal(t, first, AugmentPrompt("p", descriptors(p...)))
	}
	assert.Equal(t, 1, strings.Count(first, ". a\n"))
	assert.Less(t, strings.Index(first, "1. a"), strings.Index(first, "2. b"))
	assert.Less(t, strings.Index(first, "2. b"), strings.Index(first, "3. c"))
}

func TestAugmentPromptSkipsBlankToolNames(t *testing.T) {
	got := AugmentPrompt("base", descriptors("", "a", "  "))

	assert.Contains(t, got, "  1. a\n")
	assert.NotContains(t, got, "  2. ")
	assert.NotContains(t, got, "  1. \n")
	assert.Equal(t, AugmentPrompt("base", nil), AugmentPrompt("base", descriptors("", " ")))
}
