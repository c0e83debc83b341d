package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"stockresearch/internal/agents"
)

const ruleWidth = 80

func header(title string) string {
	title = " " + title + " "
	pad := ruleWidth - len(title)
	if pad < 2 {
		return title
	}
	left := pad / 2
	return strings.Repeat("=", left) + title + strings.Repeat("=", pad-left)
}

// renderResult prints the display text followed by the extracted recommendations.
func renderResult(w io.Writer, result *agents.AnalysisResult, currency string) {
	fmt.Fprintln(w, header("Stock Analysis"))
	fmt.Fprintf(w, "Session %s, %s messages in %s chunks, finished %s\n\n",
		result.SessionID,
		humanize.Comma(int64(len(result.Messages))),
		humanize.Comma(int64(len(result.RawOutput))),
		result.Timestamp.Format(time.RFC3339),
	)
	fmt.Fprintln(w, agents.FormatResultsForDisplay(result))

	recs := agents.ExtractRecommendations(result.Messages)
	if len(recs) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, header("Recommendations"))
	for _, rec := range recs {
		action := rec.Action
		if parsed, ok := rec.ParsedAction(); ok {
			action = string(parsed)
		}
		fmt.Fprintf(w, "%-12s %-6s target %-14s current %s\n",
			orDash(rec.Symbol), orDash(action),
			formatPrice(rec.TargetPrice, currency), formatPrice(rec.CurrentPrice, currency))
	}
}

// renderChunks prints every streamed chunk the way the coordinator emitted it.
func renderChunks(w io.Writer, chunks []*agents.Chunk) {
	for _, chunk := range chunks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Update from %s (chunk %d):\n", chunk.Author, chunk.Index)
		for _, msg := range chunk.Messages {
			fmt.Fprintln(w, agents.PrettyPrintMessage(msg, true))
		}
	}
}

type jsonMessage struct {
	Author string `json:"author"`
	Text   string `json:"text,omitempty"`
	Note   string `json:"note,omitempty"`
}

type jsonResult struct {
	SessionID       string                  `json:"session_id"`
	Status          string                  `json:"status"`
	Timestamp       time.Time               `json:"timestamp"`
	Display         string                  `json:"display"`
	Recommendations []agents.Recommendation `json:"recommendations"`
	Messages        []jsonMessage           `json:"messages"`
}

func renderJSON(w io.Writer, result *agents.AnalysisResult) error {
	out := jsonResult{
		SessionID:       result.SessionID,
		Status:          result.Status,
		Timestamp:       result.Timestamp,
		Display:         agents.FormatResultsForDisplay(result),
		Recommendations: agents.ExtractRecommendations(result.Messages),
		Messages:        make([]jsonMessage, 0, len(result.Messages)),
	}
	if out.Recommendations == nil {
		out.Recommendations = []agents.Recommendation{}
	}
	for _, msg := range result.Messages {
		if msg == nil {
			continue
		}
		jm := jsonMessage{Author: msg.Author(), Text: msg.TextContent()}
		if h, ok := msg.(agents.HandoffMessage); ok {
			jm.Note = h.String()
		}
		out.Messages = append(out.Messages, jm)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func formatPrice(p *agents.PriceField, currency string) string {
	if p == nil {
		return "-"
	}
	if v, ok := p.Float(); ok {
		return currency + humanize.FormatFloat("#,###.##", v)
	}
	return p.Raw
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
