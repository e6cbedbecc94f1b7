// Package expr provides CEL (Common Expression Language) functionality
// for evaluating expressions against file paths and YAML content.
//
// It creates CEL environments with custom functions for:
//   - File path operations (pathBase, pathDir, pathExt)
//   - YAML content extraction (yamlPath)
//
// Callers declare their own variables (e.g. `files`, `dirs`, `path`) when
// creating an [Environment].
package expr
