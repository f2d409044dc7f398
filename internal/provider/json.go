package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const jsonInstruction = "\n\nIMPORTANT: Respond ONLY with valid JSON. No markdown, no code blocks, no explanation. Just the raw JSON object or array."

// GenerateJSON routes a generation request and decodes the response into v.
// The system instruction is amended to demand raw JSON, and markdown code
// fences are stripped before decoding, since models add them anyway.
func (r *Router) GenerateJSON(ctx context.Context, category string, conv Conversation, v any) error {
	amended := make(Conversation, 0, len(conv)+1)
	hasSystem := false
	for _, m := range conv {
		if m.Role == "system" {
			m.Content += jsonInstruction
			hasSystem = true
		}
		amended = append(amended, m)
	}
	if !hasSystem {
		amended = append(Conversation{{Role: "system", Content: strings.TrimSpace(jsonInstruction)}}, amended...)
	}

	text, err := r.Generate(ctx, category, amended, JSONOptions())
	if err != nil {
		return err
	}

	cleaned := StripFences(text)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("provider returned invalid JSON: %w", err)
	}
	return nil
}

// StripFences removes a surrounding markdown code fence from a model
// response, if present.
func StripFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = cleaned[len("```json"):]
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = cleaned[len("```"):]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
