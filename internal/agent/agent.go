package agent

import "context"

// Agent is the contract every pipeline stage task implements.
// Run produces the stage's output from its input; Validate may reject an
// otherwise-successful output (schema or sanity checks). Both report
// failures as returned errors, never as partial output.
type Agent interface {
	// Name returns the agent's stable identifier (matches its stage name).
	Name() string

	// Run executes the core logic. It must be a pure function of its input:
	// no hidden global state is read or written.
	Run(ctx context.Context, input any) (any, error)

	// Validate inspects a successful output and returns it (possibly
	// normalized), or an error to convert the execution into a failure.
	Validate(ctx context.Context, output any) (any, error)
}

// PassthroughValidator provides the default no-op Validate.
// Embed it in agents that don't need post-execution checks.
type PassthroughValidator struct{}

// Validate returns the output unchanged.
func (PassthroughValidator) Validate(_ context.Context, output any) (any, error) {
	return output, nil
}

// Func adapts a plain function into an Agent with passthrough validation.
// Used heavily in tests and for small glue stages.
type Func struct {
	PassthroughValidator
	AgentName string
	RunFunc   func(ctx context.Context, input any) (any, error)
}

// Name returns the agent's identifier.
func (f Func) Name() string { return f.AgentName }

// Run invokes the wrapped function.
func (f Func) Run(ctx context.Context, input any) (any, error) {
	return f.RunFunc(ctx, input)
}
