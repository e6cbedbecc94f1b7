// Package classify assigns exactly one category to every manifest entry.
//
// Classification is a priority-ordered rule list evaluated per entry;
// the first matching rule wins and a terminal catch-all guarantees that
// every entry receives a category. The classifier never returns an error
// for normal inputs.
package classify
