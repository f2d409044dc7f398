package provider

import (
	"context"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
		{"fence with trailing newline", "```json\n[1,2]\n```\n", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateJSON(t *testing.T) {
	primary := &fakeProvider{name: "primary", text: "```json\n{\"keywords\":[\"a\",\"b\"]}\n```"}
	r := newTestRouter(primary, nil, nil, nil, 0)

	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := r.GenerateJSON(context.Background(), "extraction", NewConversation("sys", "extract"), &out); err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if len(out.Keywords) != 2 || out.Keywords[0] != "a" {
		t.Errorf("decoded = %+v", out)
	}
}

func TestGenerateJSONInvalidPayload(t *testing.T) {
	primary := &fakeProvider{name: "primary", text: "sorry, I cannot produce JSON"}
	r := newTestRouter(primary, nil, nil, nil, 0)

	var out map[string]any
	if err := r.GenerateJSON(context.Background(), "extraction", NewConversation("", "x"), &out); err == nil {
		t.Fatal("expected error for non-JSON payload")
	}
}
