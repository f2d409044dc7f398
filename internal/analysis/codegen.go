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

const codegenSystemPrompt = `You are a research software engineer. Generate a Python prototype implementation based on this paper's methodology.`

// GenerateCode produces a prototype implementation of the paper's
// methodology.
type GenerateCode struct {
	agent.PassthroughValidator
	gen Generator
}

// NewGenerateCode creates the code-generation agent.
func NewGenerateCode(gen Generator) *GenerateCode { return &GenerateCode{gen: gen} }

// Name returns the stage name.
func (a *GenerateCode) Name() string { return pipeline.StageGenerateCode }

// Run asks the model for a runnable prototype. A response with no files
// is padded with a minimal main.py so downstream consumers always have
// something to show.
func (a *GenerateCode) Run(ctx context.Context, input any) (any, error) {
	in, err := stageInput(input)
	if err != nil {
		return nil, err
	}
	card, ok := upstream[*KnowledgeCard](in, pipeline.StageExtract)
	if !ok {
		return nil, errors.New("knowledge card unavailable")
	}

	arch := card.Methodology.ModelArchitecture
	if arch == "" {
		arch = "Not specified"
	}
	datasets := make([]string, 0, len(card.Datasets))
	for _, d := range card.Datasets {
		datasets = append(datasets, d.Name)
	}

	prompt := fmt.Sprintf(`METHODOLOGY:
Approach: %s
Steps: %s
Algorithms: %s
Model Architecture: %s

Problem: %s
Datasets: %s

Generate a complete, runnable Python prototype. Return a JSON object with:
- language: "python"
- files: Array of objects with: filename, content (the actual Python code), description
  Include at minimum:
  1. main.py - Core implementation of the methodology
  2. model.py - Model/algorithm implementation (if applicable)
  3. utils.py - Helper functions
- requirements: Array of Python package names needed
- readme_content: A README.md explaining how to run the prototype
- architecture_description: Brief description of the code architecture`,
		card.Methodology.Approach,
		strings.Join(card.Methodology.Steps, "; "),
		strings.Join(card.Methodology.Algorithms, ", "),
		arch,
		card.ProblemStatement,
		strings.Join(datasets, ", "))

	var out CodePrototype
	if err := a.gen.GenerateJSON(ctx, CategoryCodeGeneration, provider.NewConversation(codegenSystemPrompt, prompt), &out); err != nil {
		return nil, err
	}

	if out.Language == "" {
		out.Language = "python"
	}
	if len(out.Files) == 0 {
		out.Files = []CodeFile{{
			Filename:    "main.py",
			Content:     "# Prototype implementation\n# Based on the paper's methodology\nprint('Hello, Research!')",
			Description: "Main implementation file",
		}}
	}
	for i := range out.Files {
		if out.Files[i].Filename == "" {
			out.Files[i].Filename = "main.py"
		}
		if out.Files[i].Content == "" {
			out.Files[i].Content = "# No code generated"
		}
	}
	return &out, nil
}
