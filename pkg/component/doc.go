// Package component models the logical components of a prompt package and
// detects their presence in a target environment, by using CEL (Common
// Expression Language) expressions.
//
// Each component declares two expressions: `detect`, evaluated once against
// a read-only scan of the target tree, and `owns`, evaluated per manifest
// path to associate entries with the component.
package component
