package agents

import (
	"fmt"
	"strings"

	"stockresearch/internal/tools"
)

var ruler = strings.Repeat("=", 80)

// AugmentPrompt appends the closed-world tool policy to a base prompt.
// The tool list is deduplicated and sorted so the result depends only on the set of names.
func AugmentPrompt(base string, descriptors []tools.Descriptor) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n")
	b.WriteString(ruler)
	b.WriteString("\n")

	names := tools.Names(descriptors)
	if len(names) == 0 {
		b.WriteString("⚠️  CRITICAL: NO EXTERNAL TOOLS AVAILABLE\n")
		b.WriteString(ruler)
		b.WriteString("\n")
		b.WriteString("You MUST answer using ONLY your internal knowledge.\n")
		b.WriteString("DO NOT attempt to call ANY tools or functions.\n")
		b.WriteString("DO NOT use <function=...> syntax or tool_calls.\n")
		b.WriteString("Provide direct answers based on your training data.\n")
		b.WriteString(ruler)
		return b.String()
	}

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("  %d. %s", i+1, name)
	}

	b.WriteString("🔧 AVAILABLE TOOLS (STRICTLY LIMITED)\n")
	b.WriteString(ruler)
	b.WriteString("\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString("⚠️  CRITICAL TOOL USAGE RULES:\n")
	b.WriteString("1. Use ONLY the exact tool names listed above\n")
	b.WriteString("2. DO NOT invent, guess, or modify tool names\n")
	b.WriteString("3. DO NOT use tools that are not in the list\n")
	b.WriteString("4. If you need a capability not listed, answer directly WITHOUT tool calls\n")
	b.WriteString("5. NEVER use <function=...> syntax for unlisted tools\n")
	b.WriteString("6. When in doubt, provide direct answers instead of attempting tool calls\n\n")
	b.WriteString("If you attempt to call a non-existent tool, your response will FAIL.\n")
	b.WriteString(ruler)
	return b.String()
}
