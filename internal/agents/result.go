package agents

import "time"

// StatusCompleted is the only status of a returned result; failed runs return an error instead.
const StatusCompleted = "completed"

const (
	noResultsText        = "No analysis results available."
	noRecommendationText = "Analysis completed but no recommendations generated."
)

// Chunk is one unit of streamed coordinator output.
type Chunk struct {
	Index    int       `json:"index"`
	Author   string    `json:"author"`
	Messages []Message `json:"messages"`
	// Transcript is the full conversation up to and including this chunk.
	Transcript []Message `json:"-"`
}

// AnalysisResult is the outcome of one analysis run.
type AnalysisResult struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Messages  []Message `json:"messages"`
	RawOutput []*Chunk  `json:"raw_output"`
}

// FormatResultsForDisplay returns the newest non-empty message text of the result.
// The user's query counts as a message, so a run whose agents wrote no text echoes it.
func FormatResultsForDisplay(result *AnalysisResult) string {
	if result == nil || len(result.Messages) == 0 {
		return noResultsText
	}

	for i := len(result.Messages) - 1; i >= 0; i-- {
		msg := result.Messages[i]
		if msg == nil {
			continue
		}
		if text := msg.TextContent(); text != "" {
			return text
		}
	}

	return noRecommendationText
}
