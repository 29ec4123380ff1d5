// Package matching implements the fuzzy title and author policies used to
// evaluate search index candidates.
//
// Policies are small strategy interfaces so stricter matching (edit distance,
// token-set ratio) can be swapped in without touching pipeline control flow.
package matching

import (
	"strings"

	"github.com/desertthunder/shelfsync/internal/shared"
)

// TitleMatcher decides whether a candidate display title satisfies a
// requested title.
type TitleMatcher interface {
	Match(requested, candidate string) bool
}

// AuthorMatcher decides whether a candidate's author mapping (id → name)
// contains the requested author.
type AuthorMatcher interface {
	Match(requested string, authors map[string]string) bool
}

// TokenSubsetMatcher is the default title policy: every whitespace-delimited
// token of the requested title must appear as a substring of the candidate
// display title, case-insensitive and order-independent. English articles in
// the requested title are ignored, so "The Fire Next Time" still matches a
// listing named "Fire Next Time: A Novel (Unabridged)".
//
// Intentionally permissive. Index listings decorate titles with subtitles,
// narrator credits and format tags, so false positives are preferred over
// false negatives.
type TokenSubsetMatcher struct{}

var articles = map[string]bool{"a": true, "an": true, "the": true}

// Match reports whether every significant token of requested occurs within
// candidate.
func (TokenSubsetMatcher) Match(requested, candidate string) bool {
	normalized := strings.ToLower(shared.NormalizeText(candidate))
	tokens := strings.Fields(strings.ToLower(shared.NormalizeText(requested)))
	if len(tokens) == 0 {
		return false
	}

	significant := tokens[:0:0]
	for _, token := range tokens {
		if !articles[token] {
			significant = append(significant, token)
		}
	}
	// A title made entirely of articles is matched on its literal tokens.
	if len(significant) == 0 {
		significant = tokens
	}

	for _, token := range significant {
		if !strings.Contains(normalized, token) {
			return false
		}
	}
	return true
}

// ExactAuthorMatcher is the default author policy: some mapped name must
// equal the requested author after normalization and case folding. No fuzzy
// tolerance, so "J. Baldwin" does not match "James Baldwin".
type ExactAuthorMatcher struct{}

// Match reports whether any name in authors normalizes equal to requested.
// An empty mapping never matches; callers treat absent author metadata as
// "not applicable" rather than a failure.
func (ExactAuthorMatcher) Match(requested string, authors map[string]string) bool {
	want := strings.ToLower(shared.NormalizeText(requested))
	if want == "" {
		return false
	}

	for _, name := range authors {
		if strings.ToLower(shared.NormalizeText(name)) == want {
			return true
		}
	}
	return false
}
