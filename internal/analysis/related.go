package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/researchpilot/researchpilot/internal/agent"
	"github.com/researchpilot/researchpilot/internal/pipeline"
	"github.com/researchpilot/researchpilot/internal/provider"
	"github.com/researchpilot/researchpilot/internal/scholar"
)

// PaperSearcher is the slice of the scholar client this stage consumes.
type PaperSearcher interface {
	SearchPapers(ctx context.Context, query string, limit int) ([]scholar.Paper, error)
}

// RelatedResearch finds papers related to the one under analysis by
// querying Semantic Scholar with terms derived from the knowledge card,
// then scores relevance and classifies each relationship with the model.
type RelatedResearch struct {
	agent.PassthroughValidator
	gen      Generator
	searcher PaperSearcher
}

// NewRelatedResearch creates the related-research agent.
func NewRelatedResearch(gen Generator, searcher PaperSearcher) *RelatedResearch {
	return &RelatedResearch{gen: gen, searcher: searcher}
}

// Name returns the stage name.
func (a *RelatedResearch) Name() string { return pipeline.StageFindRelated }

const (
	maxQueries      = 3
	perQueryLimit   = 8
	maxRelatedPaper = 15
)

// Run derives search queries from the knowledge card, assembles a
// deduplicated related-paper set and enriches it with relevance scores.
// Individual query failures degrade the set; only all queries failing
// fails the stage.
func (a *RelatedResearch) Run(ctx context.Context, input any) (any, error) {
	in, err := stageInput(input)
	if err != nil {
		return nil, err
	}
	card, ok := upstream[*KnowledgeCard](in, pipeline.StageExtract)
	if !ok {
		return nil, errors.New("knowledge card unavailable")
	}

	queries := buildQueries(card)
	if len(queries) == 0 {
		return nil, errors.New("knowledge card yields no search terms")
	}

	var (
		papers     []scholar.Paper
		seenTitles = map[string]bool{}
		candidates int
		lastErr    error
		succeeded  int
	)
	for _, query := range queries {
		results, err := a.searcher.SearchPapers(ctx, query, perQueryLimit)
		if err != nil {
			lastErr = err
			continue
		}
		succeeded++
		candidates += len(results)
		for _, p := range results {
			if p.Title == "" || seenTitles[p.Title] {
				continue
			}
			seenTitles[p.Title] = true
			papers = append(papers, p)
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("all related-paper searches failed: %w", lastErr)
	}

	if len(papers) > maxRelatedPaper {
		papers = papers[:maxRelatedPaper]
	}

	set := &RelatedPaperSet{
		Papers:               make([]RelatedPaper, 0, len(papers)),
		SearchQueriesUsed:    queries,
		TotalCandidatesFound: candidates,
	}
	for _, p := range papers {
		authors := make([]string, 0, len(p.Authors))
		for _, au := range p.Authors {
			if au.Name != "" {
				authors = append(authors, au.Name)
			}
		}
		set.Papers = append(set.Papers, RelatedPaper{
			Title:            p.Title,
			Authors:          authors,
			Year:             p.Year,
			Venue:            p.Venue,
			Abstract:         clip(p.Abstract, 500),
			RelationshipType: "related",
			URL:              p.URL,
		})
	}

	if len(set.Papers) > 0 {
		a.enrich(ctx, card, set.Papers)
		sort.SliceStable(set.Papers, func(i, j int) bool {
			return set.Papers[i].RelevanceScore > set.Papers[j].RelevanceScore
		})
	}
	return set, nil
}

// enrichment is one per-paper scoring entry returned by the model.
type enrichment struct {
	Index            int      `json:"index"`
	RelevanceScore   *float64 `json:"relevance_score"`
	RelationshipType string   `json:"relationship_type"`
	MiniSummary      string   `json:"mini_summary"`
}

// enrich asks the model for a relevance score, relationship type and mini
// summary per paper. Best effort: any failure degrades every paper to a
// neutral 0.5 score and never fails the stage.
func (a *RelatedResearch) enrich(ctx context.Context, card *KnowledgeCard, papers []RelatedPaper) {
	var listing strings.Builder
	for i, p := range papers {
		fmt.Fprintf(&listing, "[%d] %s (%d) - %s\n", i, p.Title, p.Year, clip(p.Abstract, 200))
	}

	prompt := fmt.Sprintf(`Given the primary paper's focus:
Problem: %s
Methodology: %s
Keywords: %s

Analyze these related papers and for each, provide:
- relevance_score (0.0 to 1.0)
- relationship_type: one of "extends", "contradicts", "applies", "precedes", "related"
- mini_summary: 1-2 sentence summary of how it relates

Related papers:
%s
Return a JSON array with objects containing: index, relevance_score, relationship_type, mini_summary`,
		card.ProblemStatement, card.Methodology.Approach, strings.Join(card.Keywords, ", "), listing.String())

	var raw json.RawMessage
	if err := a.gen.GenerateJSON(ctx, CategoryRelated, provider.NewConversation("", prompt), &raw); err != nil {
		neutralScores(papers)
		return
	}

	items, err := decodeEnrichments(raw)
	if err != nil {
		neutralScores(papers)
		return
	}

	for _, item := range items {
		if item.Index < 0 || item.Index >= len(papers) {
			continue
		}
		p := &papers[item.Index]
		p.RelevanceScore = 0.5
		if item.RelevanceScore != nil {
			p.RelevanceScore = *item.RelevanceScore
		}
		if item.RelationshipType != "" {
			p.RelationshipType = item.RelationshipType
		}
		p.MiniSummary = item.MiniSummary
	}
}

// decodeEnrichments accepts either a bare array or a {"papers": [...]}
// wrapper, both of which the models produce.
func decodeEnrichments(raw json.RawMessage) ([]enrichment, error) {
	var items []enrichment
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		Papers []enrichment `json:"papers"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Papers, nil
}

func neutralScores(papers []RelatedPaper) {
	for i := range papers {
		papers[i].RelevanceScore = 0.5
	}
}

// buildQueries derives up to three search queries from a knowledge card.
func buildQueries(card *KnowledgeCard) []string {
	var queries []string
	if len(card.Keywords) > 0 {
		kw := card.Keywords
		if len(kw) > 5 {
			kw = kw[:5]
		}
		queries = append(queries, strings.Join(kw, " "))
	}
	if card.ProblemStatement != "" {
		queries = append(queries, clip(card.ProblemStatement, 100))
	}
	if card.Methodology.Approach != "" {
		queries = append(queries, clip(card.Methodology.Approach, 100))
	}
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}
