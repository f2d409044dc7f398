package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/researchpilot/researchpilot/internal/agent"
	"github.com/researchpilot/researchpilot/internal/pipeline"
	"github.com/researchpilot/researchpilot/internal/provider"
)

const gapsSystemPrompt = `You are a senior research reviewer analyzing a paper and its surrounding literature for research gaps and future directions.`

// AnalyzeGaps identifies research gaps and suggests future work. It sits
// at the end of the review chain and reads the literature review plus the
// knowledge card and related papers.
type AnalyzeGaps struct {
	agent.PassthroughValidator
	gen Generator
}

// NewAnalyzeGaps creates the gap-analysis agent.
func NewAnalyzeGaps(gen Generator) *AnalyzeGaps { return &AnalyzeGaps{gen: gen} }

// Name returns the stage name.
func (a *AnalyzeGaps) Name() string { return pipeline.StageAnalyzeGaps }

// Run analyzes the landscape from reviewer, practitioner and theorist
// perspectives.
func (a *AnalyzeGaps) Run(ctx context.Context, input any) (any, error) {
	in, err := stageInput(input)
	if err != nil {
		return nil, err
	}
	review, ok := upstream[*LiteratureReview](in, pipeline.StageReview)
	if !ok {
		return nil, errors.New("literature review unavailable")
	}
	card, _ := upstream[*KnowledgeCard](in, pipeline.StageExtract)
	if card == nil {
		card = &KnowledgeCard{}
	}
	relatedCount := 0
	if related, ok := upstream[*RelatedPaperSet](in, pipeline.StageFindRelated); ok {
		relatedCount = len(related.Papers)
	}

	results := make([]string, 0, len(card.KeyResults))
	for _, r := range card.KeyResults {
		results = append(results, fmt.Sprintf("%s=%s", r.Metric, r.Value))
	}

	prompt := fmt.Sprintf(`PRIMARY PAPER:
Problem: %s
Methodology: %s
Key Results: %s
Limitations (author-stated): %s
Keywords: %s

LITERATURE REVIEW SUMMARY:
%s
Methodology Evolution: %s

NUMBER OF RELATED PAPERS: %d

Analyze from three perspectives:
1. REVIEWER: What methodological weaknesses exist?
2. PRACTITIONER: What real-world application gaps exist?
3. THEORIST: What theoretical questions remain open?

Return a JSON object with:
- gaps: Array of objects with: description, gap_type (one of "methodological", "dataset", "theoretical", "application"), severity ("critical", "moderate", "minor"), evidence (why this is a gap)
- future_directions: Array of objects with: title, description, feasibility_score (0.0-1.0), estimated_impact ("high", "medium", "low"), required_resources (array of strings)
- open_questions: Array of 3-5 open research questions
- overall_assessment: 2-3 sentence overall assessment of the research landscape`,
		card.ProblemStatement,
		card.Methodology.Approach,
		strings.Join(results, ", "),
		strings.Join(card.Limitations, "; "),
		strings.Join(card.Keywords, ", "),
		review.Conclusion,
		review.MethodologyEvolution,
		relatedCount)

	var out GapAnalysis
	if err := a.gen.GenerateJSON(ctx, CategoryGapAnalysis, provider.NewConversation(gapsSystemPrompt, prompt), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
