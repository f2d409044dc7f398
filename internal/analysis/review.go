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

// SynthesizeReview builds a structured literature review from the primary
// paper's knowledge card and the related papers. It hard-requires the
// find-related stage; with zero surviving papers it returns a stub review
// rather than inventing citations.
type SynthesizeReview struct {
	agent.PassthroughValidator
	gen Generator
}

// NewSynthesizeReview creates the literature review agent.
func NewSynthesizeReview(gen Generator) *SynthesizeReview {
	return &SynthesizeReview{gen: gen}
}

// Name returns the stage name.
func (a *SynthesizeReview) Name() string { return pipeline.StageReview }

// Run synthesizes the review.
func (a *SynthesizeReview) Run(ctx context.Context, input any) (any, error) {
	in, err := stageInput(input)
	if err != nil {
		return nil, err
	}
	related, ok := upstream[*RelatedPaperSet](in, pipeline.StageFindRelated)
	if !ok {
		return nil, errors.New("related paper set unavailable")
	}
	card, _ := upstream[*KnowledgeCard](in, pipeline.StageExtract)
	if card == nil {
		card = &KnowledgeCard{}
	}

	if len(related.Papers) == 0 {
		return &LiteratureReview{
			Introduction: "No related papers found to build a literature review.",
			Conclusion:   "Insufficient data for literature review.",
		}, nil
	}

	var list strings.Builder
	papers := related.Papers
	if len(papers) > 15 {
		papers = papers[:15]
	}
	for _, p := range papers {
		fmt.Fprintf(&list, "- [%s] (%d) [%s]: %s\n", p.Title, p.Year, p.Venue, clip(p.Abstract, 300))
	}

	prompt := fmt.Sprintf(`Based on the primary research paper and related papers below, generate a comprehensive literature review.

PRIMARY PAPER:
Problem: %s
Methodology: %s
Keywords: %s

RELATED PAPERS:
%s

Return a JSON object with:
- introduction: 2-3 paragraphs introducing the research area
- thematic_groups: Array of objects, each with: theme (string), papers (array of paper titles), summary (paragraph)
- chronological_narrative: 2-3 paragraphs describing how the field evolved
- comparison_table: Array of objects with: paper (title), method, dataset, result
- methodology_evolution: Paragraph on how methodologies have evolved
- conclusion: Summary paragraph
- citation_count: total number of papers reviewed`,
		card.ProblemStatement, card.Methodology.Approach, strings.Join(card.Keywords, ", "), list.String())

	var review LiteratureReview
	if err := a.gen.GenerateJSON(ctx, CategoryReview, provider.NewConversation("", prompt), &review); err != nil {
		return nil, err
	}
	if review.CitationCount == 0 {
		review.CitationCount = len(papers)
	}
	return &review, nil
}
