package extraction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// rawItem tolerates the loose typing models produce: numbers arriving as
// strings, missing fields, null values.
type rawItem struct {
	Name      interface{} `json:"name"`
	Quantity  interface{} `json:"quantity"`
	Unit      interface{} `json:"unit"`
	Rate      interface{} `json:"rate"`
	IsHeading bool        `json:"isHeading"`
}

// parseItemsJSON parses a model response into candidate items. The response
// is expected to be a JSON object with an "items" array, possibly wrapped in
// markdown code fences or surrounded by stray prose.
func parseItemsJSON(text string) ([]Item, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var envelope struct {
		Items []rawItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	items := make([]Item, 0, len(envelope.Items))
	for _, raw := range envelope.Items {
		items = append(items, Item{
			Name:      strings.TrimSpace(coerceString(raw.Name)),
			Quantity:  coerceNumber(raw.Quantity),
			Unit:      strings.TrimSpace(coerceString(raw.Unit)),
			Rate:      coerceNumber(raw.Rate),
			IsHeading: raw.IsHeading,
		})
	}
	return items, nil
}

// coerceString renders any JSON value as display text; null becomes "".
func coerceString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// coerceNumber converts any JSON value to a float64, treating everything
// unparseable as 0 rather than failing the whole document.
func coerceNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
