package component

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/aidrax/promptctl/pkg/expr"
)

// Component uses CEL matchers to detect a logical project component and to
// claim the manifest entries belonging to it.
//
// Detect expressions have access to variables:
//   - `files` (list<string>): relative file paths found in the target tree
//   - `dirs` (list<string>): relative directory paths found in the target tree
//   - `root` (string): the absolute target root
//
// Detect CEL expressions must return a boolean value:
//   - dirs.exists(d, pathBase(d) == "Roo-Code") - true if a Roo-Code directory exists
//   - dirs.exists(d, d.endsWith("skills/code-agent")) - true if the skill is installed anywhere
//   - files.exists(f, pathBase(f) == ".promptpack") - true if a marker file exists
//   - true - component is always present
//
// Detection is an idempotent union: any one matching signal detects the
// component, and additional matches change nothing.
//
// Owns expressions have access to a single variable:
//   - `path` (string): a relative manifest path
//
// Owns CEL expressions must return a boolean value:
//   - path.startsWith("roo-code/") - claims all files under roo-code/
//   - path.contains("skills/code-agent/") - claims the skill's files
//
// CEL also provides standard functions like `endsWith`, `contains`,
// `startsWith`, `matches`, list functions like `filter`, `exists`, `in`,
// and logical operators like `&&`, `||`, and `!`, plus the path helpers
// `pathBase`, `pathDir`, and `pathExt`.
type Component struct {
	detectProgram cel.Program
	ownsProgram   cel.Program

	// ID uniquely identifies the component.
	ID string `json:"id" jsonschema:"title=Component ID"`
	// Detect is a CEL expression matched against the scanned target tree.
	Detect string `json:"detect" jsonschema:"title=Detect Expression"`
	// Owns is a CEL expression matched against manifest paths.
	Owns string `json:"owns" jsonschema:"title=Owns Expression"`
	// Required forces files of this component into the system-critical
	// category regardless of profile.
	Required bool `json:"required,omitempty" jsonschema:"title=Required"`
}

// New creates a new component with the given id and match expressions.
func New(id, detect, owns string, opts ...Opt) (*Component, error) {
	c := &Component{
		ID:     id,
		Detect: detect,
		Owns:   owns,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.Compile(); err != nil {
		return nil, fmt.Errorf("component %q: %w", id, err)
	}

	return c, nil
}

// MustNew creates a new component and panics if there's an error.
func MustNew(id, detect, owns string, opts ...Opt) *Component {
	c, err := New(id, detect, owns, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// Opt is a functional option for configuring a [Component].
type Opt func(*Component)

// WithRequired marks the component as required.
func WithRequired() Opt {
	return func(c *Component) {
		c.Required = true
	}
}

// Compile compiles the component's match expressions into CEL programs.
// Calling it again is a no-op.
func (c *Component) Compile() error {
	if c.detectProgram == nil {
		env, err := expr.NewEnvironment(
			cel.Variable("files", cel.ListType(cel.StringType)),
			cel.Variable("dirs", cel.ListType(cel.StringType)),
			cel.Variable("root", cel.StringType),
		)
		if err != nil {
			return fmt.Errorf("create detect environment: %w", err)
		}

		program, err := env.Compile(c.Detect)
		if err != nil {
			return fmt.Errorf("compile detect expression: %w", err)
		}

		c.detectProgram = program
	}

	if c.ownsProgram == nil {
		env, err := expr.NewEnvironment(
			cel.Variable("path", cel.StringType),
		)
		if err != nil {
			return fmt.Errorf("create owns environment: %w", err)
		}

		program, err := env.Compile(c.Owns)
		if err != nil {
			return fmt.Errorf("compile owns expression: %w", err)
		}

		c.ownsProgram = program
	}

	return nil
}

// Detected evaluates the detect expression against a scanned target tree.
// Evaluation failures and non-boolean results count as a non-match.
func (c *Component) Detected(root string, files, dirs []string) bool {
	if c.detectProgram == nil {
		panic(errors.New("component missing a detect expression"))
	}

	result, _, err := c.detectProgram.Eval(map[string]any{
		"files": files,
		"dirs":  dirs,
		"root":  root,
	})
	if err != nil {
		return false
	}

	if boolVal, ok := result.Value().(bool); ok {
		return boolVal
	}

	return false
}

// OwnsPath evaluates the owns expression against a manifest path.
// Evaluation failures and non-boolean results count as a non-match.
func (c *Component) OwnsPath(path string) bool {
	if c.ownsProgram == nil {
		panic(errors.New("component missing an owns expression"))
	}

	result, _, err := c.ownsProgram.Eval(map[string]any{
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

func (c *Component) String() string {
	return fmt.Sprintf("%s: %s", c.ID, c.Detect)
}
