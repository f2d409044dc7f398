// Package analysis contains the typed artifacts and stage agents of the
// paper-analysis pipeline. Document parsing itself is an external
// collaborator; this package starts from an already-parsed document.
package analysis

// Section is one titled block of a parsed document.
type Section struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Subsections []Section `json:"subsections,omitempty"`
}

// Figure is metadata for a figure extracted by the parser.
type Figure struct {
	ID         string `json:"figure_id"`
	Caption    string `json:"caption"`
	PageNumber int    `json:"page_number"`
}

// Document is the structured form of a parsed research paper, produced by
// an external ingestion collaborator and fed to the pipeline's first stage.
type Document struct {
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	Abstract   string    `json:"abstract"`
	Sections   []Section `json:"sections"`
	References []string  `json:"references,omitempty"`
	Figures    []Figure  `json:"figures,omitempty"`
	SourceType string    `json:"source_type,omitempty"` // "pdf", "url", "arxiv"
	RawText    string    `json:"raw_text,omitempty"`
	PageCount  int       `json:"page_count,omitempty"`
}

// Empty reports whether the document carries no readable content at all.
func (d *Document) Empty() bool {
	return d.Abstract == "" && d.RawText == "" && len(d.Sections) == 0
}
