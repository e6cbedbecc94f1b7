package classify

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/aidrax/promptctl/pkg/expr"
)

// Policy holds the CEL expressions that mark manifest paths as
// system-critical, explicitly not needed, or prompt content.
//
// Each expression has access to a single variable:
//   - `path` (string): a relative manifest path
//
// Policy CEL expressions must return a boolean value:
//   - pathExt(path) in [".ts", ".js", ".py", ".sh"] - code files are system-critical
//   - path.contains("/__tests__/") || path.endsWith(".snap") - test artifacts are not needed
//   - pathBase(path).contains("prompt") - prompt content for the safe profile
//
// An empty expression never matches.
type Policy struct {
	criticalProgram  cel.Program
	notNeededProgram cel.Program
	promptProgram    cel.Program

	// SystemCritical marks paths that must not be installed blindly.
	SystemCritical string `json:"systemCritical,omitempty" jsonschema:"title=System-Critical Expression"`
	// NotNeeded marks paths that are explicitly known-irrelevant for targets.
	NotNeeded string `json:"notNeeded,omitempty" jsonschema:"title=Not-Needed Expression"`
	// PromptContent marks the minimal prompt-only subset used by the safe profile.
	PromptContent string `json:"promptContent,omitempty" jsonschema:"title=Prompt-Content Expression"`
}

// NewPolicy creates a compiled [Policy].
func NewPolicy(systemCritical, notNeeded, promptContent string) (*Policy, error) {
	p := &Policy{
		SystemCritical: systemCritical,
		NotNeeded:      notNeeded,
		PromptContent:  promptContent,
	}
	if err := p.Compile(); err != nil {
		return nil, err
	}

	return p, nil
}

// MustNewPolicy creates a compiled [Policy] and panics on error.
func MustNewPolicy(systemCritical, notNeeded, promptContent string) *Policy {
	p, err := NewPolicy(systemCritical, notNeeded, promptContent)
	if err != nil {
		panic(err)
	}

	return p
}

// Compile compiles all non-empty policy expressions. Calling it again is a
// no-op.
func (p *Policy) Compile() error {
	env, err := expr.NewEnvironment(
		cel.Variable("path", cel.StringType),
	)
	if err != nil {
		return fmt.Errorf("create policy environment: %w", err)
	}

	if p.SystemCritical != "" && p.criticalProgram == nil {
		p.criticalProgram, err = env.Compile(p.SystemCritical)
		if err != nil {
			return fmt.Errorf("compile systemCritical expression: %w", err)
		}
	}

	if p.NotNeeded != "" && p.notNeededProgram == nil {
		p.notNeededProgram, err = env.Compile(p.NotNeeded)
		if err != nil {
			return fmt.Errorf("compile notNeeded expression: %w", err)
		}
	}

	if p.PromptContent != "" && p.promptProgram == nil {
		p.promptProgram, err = env.Compile(p.PromptContent)
		if err != nil {
			return fmt.Errorf("compile promptContent expression: %w", err)
		}
	}

	return nil
}

// IsSystemCritical reports whether path matches the system-critical policy.
func (p *Policy) IsSystemCritical(path string) bool {
	return evalPath(p.criticalProgram, p.SystemCritical, path)
}

// IsNotNeeded reports whether path matches the not-needed policy.
func (p *Policy) IsNotNeeded(path string) bool {
	return evalPath(p.notNeededProgram, p.NotNeeded, path)
}

// IsPromptContent reports whether path matches the prompt-content policy.
func (p *Policy) IsPromptContent(path string) bool {
	return evalPath(p.promptProgram, p.PromptContent, path)
}

// evalPath evaluates a compiled path expression. Empty expressions,
// evaluation failures, and non-boolean results count as a non-match.
func evalPath(program cel.Program, expression, path string) bool {
	if expression == "" {
		return false
	}
	if program == nil {
		panic(errors.New("policy expression not compiled"))
	}

	result, _, err := program.Eval(map[string]any{
		"path": path,
	})
	if err != nil {
		return false
	}

	if boolVal, ok := result.Value().(bool); ok {
		return boolVal
	}

	return false
}
