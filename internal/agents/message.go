package agents

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// Message is one entry of the conversation transcript.
type Message interface {
	// Author is the agent (or "user") that produced the message.
	Author() string
	// TextContent is the human readable text, empty for pure tool traffic and hand-offs.
	TextContent() string
}

// MessageRole mirrors the genai content roles.
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

// ToolCall is a function call requested by an agent.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the response of a tool call.
type ToolResult struct {
	ID       string
	Name     string
	Response map[string]any
}

// ChatMessage is a model, user or tool message of the transcript.
type ChatMessage struct {
	Role        MessageRole
	Agent       string
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// Author implements Message.
func (m *ChatMessage) Author() string { return m.Agent }

// TextContent implements Message.
func (m *ChatMessage) TextContent() string { return m.Text }

// HandoffMessage records control passing between the supervisor and an agent.
type HandoffMessage struct {
	From AgentType
	To   AgentType
}

// Author implements Message.
func (h HandoffMessage) Author() string { return string(h.From) }

// TextContent implements Message. Hand-offs never count as analysis output.
func (h HandoffMessage) TextContent() string { return "" }

func (h HandoffMessage) String() string {
	if h.To == AgentSupervisor {
		return "Transferring back to supervisor"
	}
	return "Transferring to " + string(h.To)
}

// MessageFromContent normalizes a genai content into a transcript message.
// It returns nil for empty content.
func MessageFromContent(author string, c *genai.Content) *ChatMessage {
	if c == nil || len(c.Parts) == 0 {
		return nil
	}

	msg := &ChatMessage{Role: MessageRole(c.Role), Agent: author}
	if msg.Role == "" {
		msg.Role = RoleModel
	}

	var text []string
	for _, part := range c.Parts {
		switch {
		case part == nil:
		case part.FunctionCall != nil:
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		case part.FunctionResponse != nil:
			msg.ToolResults = append(msg.ToolResults, ToolResult{
				ID:       part.FunctionResponse.ID,
				Name:     part.FunctionResponse.Name,
				Response: part.FunctionResponse.Response,
			})
		case part.Text != "" && !part.Thought:
			text = append(text, part.Text)
		}
	}
	msg.Text = strings.Join(text, "\n")

	if msg.Text == "" && len(msg.ToolCalls) == 0 && len(msg.ToolResults) == 0 {
		return nil
	}
	return msg
}

// PrettyPrintMessage renders a message for terminal output, optionally tab-indented.
func PrettyPrintMessage(msg Message, indent bool) string {
	pretty := prettyRepr(msg)
	if !indent {
		return pretty
	}

	lines := strings.Split(pretty, "\n")
	for i, line := range lines {
		lines[i] = "\t" + line
	}
	return strings.Join(lines, "\n")
}

func prettyRepr(msg Message) string {
	switch m := msg.(type) {
	case HandoffMessage:
		return header("Handoff") + "\n\n" + m.String()
	case *HandoffMessage:
		return header("Handoff") + "\n\n" + m.String()
	case *ChatMessage:
		var b strings.Builder
		title := "Ai Message"
		switch {
		case len(m.ToolResults) > 0:
			title = "Tool Message"
		case m.Role == RoleUser:
			title = "Human Message"
		}
		b.WriteString(header(title))
		if m.Agent != "" {
			b.WriteString("\nName: " + m.Agent)
		}
		b.WriteString("\n\n")
		b.WriteString(m.Text)
		if len(m.ToolCalls) > 0 {
			if m.Text != "" {
				b.WriteString("\n")
			}
			b.WriteString("Tool Calls:")
			for _, tc := range m.ToolCalls {
				fmt.Fprintf(&b, "\n  %s (%s)\n Call ID: %s\n  Args:", tc.Name, tc.ID, tc.ID)
				for _, k := range sortedKeys(tc.Args) {
					fmt.Fprintf(&b, "\n    %s: %v", k, tc.Args[k])
				}
			}
		}
		for _, tr := range m.ToolResults {
			raw, err := json.Marshal(tr.Response)
			if err != nil {
				raw = []byte(fmt.Sprint(tr.Response))
			}
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n\n") {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s: %s", tr.Name, raw)
		}
		return b.String()
	case nil:
		return ""
	default:
		return msg.TextContent()
	}
}

func header(title string) string {
	const width = 80
	title = " " + title + " "
	pad := width - len(title)
	if pad < 2 {
		return title
	}
	left := pad / 2
	return strings.Repeat("=", left) + title + strings.Repeat("=", pad-left)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
