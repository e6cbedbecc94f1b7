// Package precheck runs one full deployment pre-check: load the manifest,
// scan the target environment, classify every entry, write the report
// bundle, and compare the result against the persisted baseline snapshot.
package precheck
