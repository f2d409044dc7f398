package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/researchpilot/researchpilot/internal/agent"
	"github.com/researchpilot/researchpilot/internal/pipeline"
)

// Ingest normalizes the externally parsed document into the canonical
// Document the rest of the pipeline consumes. Parsing, OCR, and fetching
// live outside the core; this stage only enforces the input contract.
type Ingest struct {
	agent.PassthroughValidator
}

// NewIngest creates the ingest agent.
func NewIngest() *Ingest { return &Ingest{} }

// Name returns the stage name.
func (a *Ingest) Name() string { return pipeline.StageIngest }

// Run validates and normalizes the parsed document.
func (a *Ingest) Run(_ context.Context, input any) (any, error) {
	in, err := stageInput(input)
	if err != nil {
		return nil, err
	}

	var doc Document
	switch v := in.Document.(type) {
	case *Document:
		doc = *v
	case Document:
		doc = v
	default:
		return nil, fmt.Errorf("unsupported document payload %T", in.Document)
	}

	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	doc.Abstract = strings.TrimSpace(doc.Abstract)

	if doc.Empty() {
		return nil, fmt.Errorf("document %q has no readable content", doc.Title)
	}

	return &doc, nil
}
