// Package manifest loads and validates candidate-file manifests.
//
// A manifest is a UTF-8 text file with one relative path per line. Blank
// lines and `#` comments are ignored. Entries with absolute paths,
// parent-directory traversal, or duplicate paths are flagged invalid but
// never abort processing of the remaining entries.
package manifest
