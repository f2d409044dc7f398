package analysis

// Methodology breaks down how the paper's approach works.
type Methodology struct {
	Approach          string   `json:"approach"`
	Steps             []string `json:"steps,omitempty"`
	Algorithms        []string `json:"algorithms,omitempty"`
	ModelArchitecture string   `json:"model_architecture,omitempty"`
	TrainingDetails   string   `json:"training_details,omitempty"`
}

// DatasetInfo describes one dataset used by the paper.
type DatasetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Size        string `json:"size,omitempty"`
	Source      string `json:"source,omitempty"`
}

// KeyResult is one reported experimental result.
type KeyResult struct {
	Metric     string `json:"metric"`
	Value      string `json:"value"`
	Comparison string `json:"comparison,omitempty"`
}

// KnowledgeCard is the structured knowledge extracted from a paper.
type KnowledgeCard struct {
	ProblemStatement  string        `json:"problem_statement"`
	Hypothesis        string        `json:"hypothesis,omitempty"`
	Methodology       Methodology   `json:"methodology"`
	Datasets          []DatasetInfo `json:"datasets,omitempty"`
	EvaluationMetrics []string      `json:"evaluation_metrics,omitempty"`
	KeyResults        []KeyResult   `json:"key_results,omitempty"`
	Contributions     []string      `json:"contributions,omitempty"`
	Limitations       []string      `json:"limitations,omitempty"`
	Keywords          []string      `json:"keywords,omitempty"`
}

// Explanation holds the multi-level summaries of a paper.
type Explanation struct {
	ELI5Summary          string   `json:"eli5_summary"`
	UndergraduateSummary string   `json:"undergraduate_summary"`
	ExpertSummary        string   `json:"expert_summary"`
	KeyTakeaways         []string `json:"key_takeaways,omitempty"`
	VisualAnalogies      []string `json:"visual_analogies,omitempty"`
}

// RelatedPaper is one paper surfaced by the related-research search.
type RelatedPaper struct {
	Title            string   `json:"title"`
	Authors          []string `json:"authors,omitempty"`
	Year             int      `json:"year,omitempty"`
	Venue            string   `json:"venue,omitempty"`
	Abstract         string   `json:"abstract,omitempty"`
	RelevanceScore   float64  `json:"relevance_score"`
	RelationshipType string   `json:"relationship_type"`
	MiniSummary      string   `json:"mini_summary,omitempty"`
	URL              string   `json:"url,omitempty"`
}

// RelatedPaperSet is the full related-research result.
type RelatedPaperSet struct {
	Papers               []RelatedPaper `json:"papers"`
	SearchQueriesUsed    []string       `json:"search_queries_used,omitempty"`
	TotalCandidatesFound int            `json:"total_candidates_found"`
}

// ThematicGroup clusters related papers under one theme.
type ThematicGroup struct {
	Theme   string   `json:"theme"`
	Papers  []string `json:"papers,omitempty"`
	Summary string   `json:"summary,omitempty"`
}

// ComparisonRow is one row of the review's method comparison table.
type ComparisonRow struct {
	Paper   string `json:"paper"`
	Method  string `json:"method,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	Result  string `json:"result,omitempty"`
}

// LiteratureReview is the synthesized review across related papers.
type LiteratureReview struct {
	Introduction           string          `json:"introduction"`
	ThematicGroups         []ThematicGroup `json:"thematic_groups,omitempty"`
	ChronologicalNarrative string          `json:"chronological_narrative,omitempty"`
	ComparisonTable        []ComparisonRow `json:"comparison_table,omitempty"`
	MethodologyEvolution   string          `json:"methodology_evolution,omitempty"`
	Conclusion             string          `json:"conclusion"`
	CitationCount          int             `json:"citation_count"`
}

// ResearchGap is one identified gap in the literature.
type ResearchGap struct {
	Description string `json:"description"`
	GapType     string `json:"gap_type"`  // "methodological", "dataset", "theoretical", "application"
	Severity    string `json:"severity"`  // "critical", "moderate", "minor"
	Evidence    string `json:"evidence,omitempty"`
}

// FutureDirection is one suggested line of future work.
type FutureDirection struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	FeasibilityScore  float64  `json:"feasibility_score"`
	EstimatedImpact   string   `json:"estimated_impact"`
	RequiredResources []string `json:"required_resources,omitempty"`
}

// GapAnalysis is the gap-and-future-directions artifact.
type GapAnalysis struct {
	Gaps              []ResearchGap     `json:"gaps,omitempty"`
	FutureDirections  []FutureDirection `json:"future_directions,omitempty"`
	OpenQuestions     []string          `json:"open_questions,omitempty"`
	OverallAssessment string            `json:"overall_assessment,omitempty"`
}

// CodeFile is one generated source file.
type CodeFile struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
}

// CodePrototype is the generated prototype implementation.
type CodePrototype struct {
	Language                string     `json:"language"`
	Files                   []CodeFile `json:"files"`
	Requirements            []string   `json:"requirements,omitempty"`
	ReadmeContent           string     `json:"readme_content,omitempty"`
	ArchitectureDescription string     `json:"architecture_description,omitempty"`
}
