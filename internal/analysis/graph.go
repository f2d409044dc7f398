package analysis

import (
	"github.com/researchpilot/researchpilot/internal/pipeline"
)

// Stages assembles the canonical seven-stage analysis graph.
//
// ingest feeds extract; extract fans out to simplify, find-related and
// generate-code, which run concurrently; synthesize-review needs the
// related papers; analyze-gaps needs the review. Simplify is the only
// degrade-policy stage: it can still summarize from the raw document when
// extraction fails. Everything else skips when its dependency dies.
func Stages(gen Generator, searcher PaperSearcher) []pipeline.Stage {
	return []pipeline.Stage{
		{
			Name:   pipeline.StageIngest,
			Runner: NewIngest(),
		},
		{
			Name:      pipeline.StageExtract,
			DependsOn: []string{pipeline.StageIngest},
			Policy:    pipeline.Skip,
			Runner:    NewExtract(gen),
		},
		{
			Name:      pipeline.StageSimplify,
			DependsOn: []string{pipeline.StageExtract},
			Policy:    pipeline.Degrade,
			Runner:    NewSimplify(gen),
		},
		{
			Name:      pipeline.StageFindRelated,
			DependsOn: []string{pipeline.StageExtract},
			Policy:    pipeline.Skip,
			Runner:    NewRelatedResearch(gen, searcher),
		},
		{
			Name:      pipeline.StageGenerateCode,
			DependsOn: []string{pipeline.StageExtract},
			Policy:    pipeline.Skip,
			Runner:    NewGenerateCode(gen),
		},
		{
			Name:      pipeline.StageReview,
			DependsOn: []string{pipeline.StageFindRelated},
			Policy:    pipeline.Skip,
			Runner:    NewSynthesizeReview(gen),
		},
		{
			Name:      pipeline.StageAnalyzeGaps,
			DependsOn: []string{pipeline.StageReview},
			Policy:    pipeline.Skip,
			Runner:    NewAnalyzeGaps(gen),
		},
	}
}

// NewGraph builds the validated analysis graph.
func NewGraph(gen Generator, searcher PaperSearcher) (*pipeline.Graph, error) {
	return pipeline.NewGraph(Stages(gen, searcher)...)
}
