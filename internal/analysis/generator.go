package analysis

import (
	"context"
	"fmt"

	"github.com/researchpilot/researchpilot/internal/pipeline"
	"github.com/researchpilot/researchpilot/internal/provider"
)

// Task categories the provider router dispatches on.
const (
	CategoryExtraction     = "extraction"
	CategorySimplification = "simplification"
	CategoryRelated        = "related-research"
	CategoryReview         = "literature-review"
	CategoryGapAnalysis    = "gap-analysis"
	CategoryCodeGeneration = "code-generation"
)

// Generator is the slice of the provider router the agents consume.
type Generator interface {
	Generate(ctx context.Context, category string, conv provider.Conversation, opts provider.Options) (string, error)
	GenerateJSON(ctx context.Context, category string, conv provider.Conversation, v any) error
}

// stageInput asserts the orchestrator's input type.
func stageInput(input any) (pipeline.StageInput, error) {
	in, ok := input.(pipeline.StageInput)
	if !ok {
		return pipeline.StageInput{}, fmt.Errorf("unexpected input type %T", input)
	}
	return in, nil
}

// upstream returns the typed successful output of an upstream stage.
func upstream[T any](in pipeline.StageInput, stage string) (T, bool) {
	var zero T
	out, ok := in.Output(stage)
	if !ok {
		return zero, false
	}
	typed, ok := out.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// clip bounds a string to n bytes, the same crude truncation the prompts
// were tuned with.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
