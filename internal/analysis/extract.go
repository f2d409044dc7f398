package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/researchpilot/researchpilot/internal/pipeline"
	"github.com/researchpilot/researchpilot/internal/provider"
)

const extractSystemPrompt = `You are a research paper analysis expert. Extract structured knowledge from the given research paper.
You must extract the following fields as a JSON object:
- problem_statement: The core problem the paper addresses
- hypothesis: The main hypothesis (or null if not stated)
- methodology: An object with: approach (string), steps (array of strings), algorithms (array), model_architecture (string or null), training_details (string or null)
- datasets: Array of objects with: name, description, size (or null), source (or null)
- evaluation_metrics: Array of metric names used
- key_results: Array of objects with: metric, value, comparison (or null)
- contributions: Array of key contributions
- limitations: Array of limitations mentioned
- keywords: Array of 5-10 relevant keywords`

// Extract pulls a structured KnowledgeCard out of the parsed document.
type Extract struct {
	gen Generator
}

// NewExtract creates the extraction agent.
func NewExtract(gen Generator) *Extract { return &Extract{gen: gen} }

// Name returns the stage name.
func (a *Extract) Name() string { return pipeline.StageExtract }

// knowledgeWire mirrors the model's JSON contract. Methodology arrives as
// either an object or a bare string depending on the model's mood, so it
// is decoded leniently.
type knowledgeWire struct {
	ProblemStatement  string          `json:"problem_statement"`
	Hypothesis        string          `json:"hypothesis"`
	Methodology       json.RawMessage `json:"methodology"`
	Datasets          []DatasetInfo   `json:"datasets"`
	EvaluationMetrics []string        `json:"evaluation_metrics"`
	KeyResults        []KeyResult     `json:"key_results"`
	Contributions     []string        `json:"contributions"`
	Limitations       []string        `json:"limitations"`
	Keywords          []string        `json:"keywords"`
}

// Run builds the paper context and asks the model for a knowledge card.
func (a *Extract) Run(ctx context.Context, input any) (any, error) {
	in, err := stageInput(input)
	if err != nil {
		return nil, err
	}
	doc, ok := upstream[*Document](in, pipeline.StageIngest)
	if !ok {
		return nil, errors.New("ingested document unavailable")
	}

	var content strings.Builder
	fmt.Fprintf(&content, "Title: %s\n\nAbstract: %s\n\n", doc.Title, doc.Abstract)
	sections := doc.Sections
	if len(sections) > 15 {
		sections = sections[:15]
	}
	for _, s := range sections {
		fmt.Fprintf(&content, "## %s\n%s\n\n", s.Title, clip(s.Content, 2000))
	}

	prompt := fmt.Sprintf(`Analyze this research paper and extract structured knowledge:

%s

Return a JSON object with all the fields described in the system instructions.`, content.String())

	var wire knowledgeWire
	if err := a.gen.GenerateJSON(ctx, CategoryExtraction, provider.NewConversation(extractSystemPrompt, prompt), &wire); err != nil {
		return nil, err
	}

	card := &KnowledgeCard{
		ProblemStatement:  wire.ProblemStatement,
		Hypothesis:        wire.Hypothesis,
		Methodology:       decodeMethodology(wire.Methodology),
		Datasets:          wire.Datasets,
		EvaluationMetrics: wire.EvaluationMetrics,
		KeyResults:        wire.KeyResults,
		Contributions:     wire.Contributions,
		Limitations:       wire.Limitations,
		Keywords:          wire.Keywords,
	}
	return card, nil
}

// Validate rejects cards that identify no problem; a knowledge card
// without one is useless downstream.
func (a *Extract) Validate(_ context.Context, output any) (any, error) {
	card, ok := output.(*KnowledgeCard)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", output)
	}
	if strings.TrimSpace(card.ProblemStatement) == "" {
		return nil, errors.New("extraction produced no problem statement")
	}
	return card, nil
}

func decodeMethodology(raw json.RawMessage) Methodology {
	if len(raw) == 0 {
		return Methodology{}
	}
	var m Methodology
	if err := json.Unmarshal(raw, &m); err == nil {
		return m
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return Methodology{Approach: s}
	}
	return Methodology{}
}
