package classify

import (
	"os"
	"path/filepath"

	"github.com/aidrax/promptctl/pkg/analysis"
	"github.com/aidrax/promptctl/pkg/component"
	"github.com/aidrax/promptctl/pkg/manifest"
	"github.com/aidrax/promptctl/pkg/profile"
)

// Classifier maps manifest entries to categories using a priority-ordered
// rule list. Rule precedence, highest first:
//
//  1. entry flagged invalid
//  2. source file absent
//  3. required component or system-critical policy
//  4. detected component under auto/full (prompt-only subset under safe)
//  5. not-needed policy
//  6. full-profile catch-all
//  7. optional-unmatched terminal
//
// Invalid entries are checked before file existence so that malformed
// paths are never handed to the filesystem.
type Classifier struct {
	scan       *component.Scan
	policy     *Policy
	fileExists func(rel string) bool
	rules      []rule
	profile    profile.Profile
}

// Opt is a functional option for configuring a [Classifier].
type Opt func(*Classifier)

// WithSourceDir resolves entry existence against files under dir.
func WithSourceDir(dir string) Opt {
	return func(c *Classifier) {
		c.fileExists = func(rel string) bool {
			info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))

			return err == nil && info.Mode().IsRegular()
		}
	}
}

// WithExistsFunc overrides the entry existence check.
func WithExistsFunc(fn func(rel string) bool) Opt {
	return func(c *Classifier) {
		c.fileExists = fn
	}
}

// New creates a [Classifier] for one run.
func New(scan *component.Scan, policy *Policy, prof profile.Profile, opts ...Opt) *Classifier {
	c := &Classifier{
		scan:    scan,
		policy:  policy,
		profile: prof,
		fileExists: func(string) bool {
			return true
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	c.rules = c.buildRules()

	return c
}

// rule is one step of the decision table. It reports whether it claims the
// entry, and if so, with which category and component back-reference.
type rule struct {
	apply func(e manifest.Entry) (analysis.Category, string, bool)
	name  string
}

// Rules returns the rule names in evaluation order.
func (c *Classifier) Rules() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}

	return names
}

func (c *Classifier) buildRules() []rule {
	return []rule{
		{
			name: "invalid-entry",
			apply: func(e manifest.Entry) (analysis.Category, string, bool) {
				if e.Invalid {
					return analysis.CategoryInvalid, "", true
				}

				return "", "", false
			},
		},
		{
			name: "missing-source",
			apply: func(e manifest.Entry) (analysis.Category, string, bool) {
				if !c.fileExists(e.Path) {
					return analysis.CategoryMissing, "", true
				}

				return "", "", false
			},
		},
		{
			name: "system-critical",
			apply: func(e manifest.Entry) (analysis.Category, string, bool) {
				if owner, ok := c.scan.Owner(e.Path); ok && owner.Required {
					return analysis.CategorySystemCritical, owner.ID, true
				}
				if c.policy.IsSystemCritical(e.Path) {
					return analysis.CategorySystemCritical, "", true
				}

				return "", "", false
			},
		},
		{
			name: "recommended-detected",
			apply: func(e manifest.Entry) (analysis.Category, string, bool) {
				if c.policy.IsNotNeeded(e.Path) {
					// Leave policy-excluded entries for the not-needed rule.
					return "", "", false
				}

				if c.profile.PromptOnly() {
					// The safe profile recommends the prompt-content subset
					// irrespective of component detection.
					if c.policy.IsPromptContent(e.Path) {
						if owner, ok := c.scan.Owner(e.Path); ok {
							return analysis.CategoryRecommended, owner.ID, true
						}

						return analysis.CategoryRecommended, "", true
					}

					return "", "", false
				}

				if !c.profile.RecommendsDetected() {
					return "", "", false
				}

				owner, ok := c.scan.Owner(e.Path)
				if ok && c.scan.IsDetected(owner.ID) {
					return analysis.CategoryRecommended, owner.ID, true
				}

				return "", "", false
			},
		},
		{
			name: "not-needed",
			apply: func(e manifest.Entry) (analysis.Category, string, bool) {
				if c.policy.IsNotNeeded(e.Path) {
					return analysis.CategoryNotNeeded, "", true
				}

				return "", "", false
			},
		},
		{
			name: "full-catch-all",
			apply: func(e manifest.Entry) (analysis.Category, string, bool) {
				if c.profile.CatchAll() {
					return analysis.CategoryRecommended, "", true
				}

				return "", "", false
			},
		},
		{
			name: "optional-unmatched",
			apply: func(e manifest.Entry) (analysis.Category, string, bool) {
				if owner, ok := c.scan.Owner(e.Path); ok {
					return analysis.CategoryOptionalUnmatched, owner.ID, true
				}

				return analysis.CategoryOptionalUnmatched, "", true
			},
		},
	}
}

// Classify assigns a category to every entry, in manifest order.
func (c *Classifier) Classify(entries []manifest.Entry) []analysis.Result {
	results := make([]analysis.Result, 0, len(entries))

	for _, e := range entries {
		results = append(results, c.classifyEntry(e))
	}

	return results
}

func (c *Classifier) classifyEntry(e manifest.Entry) analysis.Result {
	for _, r := range c.rules {
		category, componentID, ok := r.apply(e)
		if !ok {
			continue
		}

		return analysis.Result{
			Path:      e.Path,
			Category:  category,
			Component: componentID,
			Reason:    e.Reason,
		}
	}

	// Unreachable: the terminal rule always matches.
	return analysis.Result{
		Path:     e.Path,
		Category: analysis.CategoryOptionalUnmatched,
	}
}
