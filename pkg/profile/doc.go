// Package profile defines the named recommendation policies that control
// how aggressively manifest entries are recommended for install.
//
// Three profiles exist: safe, auto, and full. The classifier consults the
// active profile when applying its ordered rule list.
package profile
