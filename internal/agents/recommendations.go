package agents

import (
	"encoding/json"
	"strconv"
	"strings"
)

const (
	markerRecommendation = "RECOMMENDATION:"
	markerTargetPrice    = "TARGET PRICE:"
	markerCurrentPrice   = "Current Price:"
	markerStockSymbol    = "STOCK_SYMBOL"
	markerSymbol         = "Symbol:"
)

// PriceField holds a parsed price, or the raw text when it is not a number.
type PriceField struct {
	Value float64
	Raw   string
	Valid bool
}

// ParsePrice strips the rupee glyph and parses the remainder as a float.
func ParsePrice(s string) PriceField {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "₹", ""))
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return PriceField{Raw: raw}
	}
	return PriceField{Value: v, Raw: raw, Valid: true}
}

// Float returns the parsed value when the price is numeric.
func (p PriceField) Float() (float64, bool) { return p.Value, p.Valid }

func (p PriceField) String() string {
	if p.Valid {
		return strconv.FormatFloat(p.Value, 'f', -1, 64)
	}
	return p.Raw
}

// MarshalJSON emits a number for parsed prices and a string otherwise.
func (p PriceField) MarshalJSON() ([]byte, error) {
	if p.Valid {
		return json.Marshal(p.Value)
	}
	return json.Marshal(p.Raw)
}

// Recommendation is a best-effort record lifted from agent text. Any field may be missing.
type Recommendation struct {
	Symbol       string      `json:"symbol,omitempty"`
	Action       string      `json:"action,omitempty"`
	TargetPrice  *PriceField `json:"target_price,omitempty"`
	CurrentPrice *PriceField `json:"current_price,omitempty"`
}

// ParsedAction maps the free-text action onto BUY/SELL/HOLD.
func (r Recommendation) ParsedAction() (StockAction, bool) {
	return ParseStockAction(r.Action)
}

func (r Recommendation) empty() bool {
	return r.Symbol == "" && r.Action == "" && r.TargetPrice == nil && r.CurrentPrice == nil
}

// ExtractRecommendations scans messages carrying both the recommendation and target price
// markers and returns one record per qualifying message, in transcript order.
// Records are not validated; missing fields stay empty.
func ExtractRecommendations(messages []Message) []Recommendation {
	var out []Recommendation
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		content := msg.TextContent()
		if !strings.Contains(content, markerRecommendation) || !strings.Contains(content, markerTargetPrice) {
			continue
		}
		if rec := parseRecommendation(content); !rec.empty() {
			out = append(out, rec)
		}
	}
	return out
}

// parseRecommendation matches each line against the markers in precedence order.
// The first line matching a field wins.
func parseRecommendation(content string) Recommendation {
	var rec Recommendation
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.Contains(line, markerStockSymbol) || strings.Contains(line, markerSymbol):
			if rec.Symbol == "" {
				rec.Symbol = lastField(line)
			}
		case strings.Contains(line, markerRecommendation):
			if rec.Action == "" {
				rec.Action = lastField(line)
			}
		case strings.Contains(line, markerTargetPrice):
			if rec.TargetPrice == nil {
				p := ParsePrice(lastField(line))
				rec.TargetPrice = &p
			}
		case strings.Contains(line, markerCurrentPrice):
			if rec.CurrentPrice == nil {
				p := ParsePrice(lastField(line))
				rec.CurrentPrice = &p
			}
		}
	}
	return rec
}

func lastField(line string) string {
	if i := strings.LastIndex(line, ":"); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}
