package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/researchpilot/researchpilot/internal/agent"
	"github.com/researchpilot/researchpilot/internal/pipeline"
	"github.com/researchpilot/researchpilot/internal/provider"
)

const simplifySystemPrompt = `You are an expert science communicator. Generate explanations of this research paper at three levels.
Return a JSON object with:
- eli5_summary: 3-5 sentences explaining the paper as if to a curious 10-year-old. No jargon.
- undergraduate_summary: 1-2 clear paragraphs for a college student. Minimal jargon, explain technical terms.
- expert_summary: A detailed technical summary for domain experts. Use proper terminology.
- key_takeaways: 5-7 bullet points capturing the most important findings.
- visual_analogies: 2-3 creative analogies to help understand the core concepts.`

// Simplify generates multi-level explanations of the paper. It is a
// degrade-policy stage: when extraction failed it still produces what it
// can from the raw document alone.
type Simplify struct {
	agent.PassthroughValidator
	gen Generator
}

// NewSimplify creates the simplification agent.
func NewSimplify(gen Generator) *Simplify { return &Simplify{gen: gen} }

// Name returns the stage name.
func (a *Simplify) Name() string { return pipeline.StageSimplify }

// Run assembles whatever paper context survived upstream and asks for the
// three-level explanation.
func (a *Simplify) Run(ctx context.Context, input any) (any, error) {
	in, err := stageInput(input)
	if err != nil {
		return nil, err
	}

	doc, haveDoc := upstream[*Document](in, pipeline.StageIngest)
	if !haveDoc {
		// Degraded path: fall back to the raw parsed document.
		if raw, ok := in.Document.(*Document); ok {
			doc, haveDoc = raw, true
		}
	}
	card, haveCard := upstream[*KnowledgeCard](in, pipeline.StageExtract)

	if !haveDoc && !haveCard {
		return nil, fmt.Errorf("no paper context available to simplify")
	}

	var b strings.Builder
	if haveDoc {
		fmt.Fprintf(&b, "Paper Title: %s\nAbstract: %s\n", doc.Title, doc.Abstract)
	}
	if haveCard {
		fmt.Fprintf(&b, "Problem: %s\nMethodology: %s\n", card.ProblemStatement, card.Methodology.Approach)
		if len(card.KeyResults) > 0 {
			results := make([]string, 0, len(card.KeyResults))
			for _, r := range card.KeyResults {
				results = append(results, fmt.Sprintf("%s=%s", r.Metric, r.Value))
			}
			fmt.Fprintf(&b, "Key Results: %s\n", strings.Join(results, ", "))
		}
		if len(card.Contributions) > 0 {
			fmt.Fprintf(&b, "Contributions: %s\n", strings.Join(card.Contributions, ", "))
		}
	}

	var out Explanation
	if err := a.gen.GenerateJSON(ctx, CategorySimplification, provider.NewConversation(simplifySystemPrompt, b.String()), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
