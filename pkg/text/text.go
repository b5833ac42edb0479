// Package text provides the normalization primitives shared by the graph
// builder and the query layer: Unicode folding, key normalization for
// Azerbaijani/Russian news text, sentence splitting and entity containment.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize applies NFKC normalization and collapses all whitespace runs
// into single spaces.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var keyReplacer = strings.NewReplacer(
	"i̇", "i", // lowercased dotted İ leaves a combining dot
	"’", "'",
	"`", "'",
	"“", `"`,
	"”", `"`,
	"«", `"`,
	"»", `"`,
)

// NormalizeKey aggressively folds a string for use as a lookup key:
// Normalize, lowercase, and quote/diacritic cleanup. Keys produced here are
// the only identifiers the alias map and the index operate on.
func NormalizeKey(s string) string {
	s = strings.ToLower(Normalize(s))
	return keyReplacer.Replace(s)
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitSentences splits normalized text after terminal punctuation followed
// by whitespace. Each sentence is truncated to maxLen runes when maxLen > 0.
// The result is finite and never lazy; empty input yields nil.
func SplitSentences(text string, maxLen int) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var out []string
	appendSentence := func(seg []rune) {
		s := strings.TrimSpace(string(seg))
		if s == "" {
			return
		}
		if maxLen > 0 {
			r := []rune(s)
			if len(r) > maxLen {
				s = string(r[:maxLen])
			}
		}
		out = append(out, s)
	}

	start := 0
	for i := 1; i < len(runes); i++ {
		if runes[i] == ' ' && isSentenceEnd(runes[i-1]) {
			appendSentence(runes[start:i])
			start = i + 1
		}
	}
	if start < len(runes) {
		appendSentence(runes[start:])
	}

	return out
}

// ContainsEntity reports whether a sentence textually contains an entity's
// display string, after key normalization on both sides. Entities shorter
// than three runes never match; they are too ambiguous to be evidence.
func ContainsEntity(sentence, entity string) bool {
	e := NormalizeKey(entity)
	if utf8.RuneCountInString(e) < 3 {
		return false
	}
	return strings.Contains(NormalizeKey(sentence), e)
}

// TokenCount returns the number of whitespace-separated tokens after
// normalization.
func TokenCount(s string) int {
	s = Normalize(s)
	if s == "" {
		return 0
	}
	return len(strings.Fields(s))
}

// LastToken returns the final whitespace-separated token after
// normalization, or the empty string.
func LastToken(s string) string {
	fields := strings.Fields(Normalize(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// SimilarityRatio computes the classic sequence-matcher ratio
// 2*M/(len(a)+len(b)) over runes, where M is the total size of the matching
// blocks found by recursive longest-common-substring decomposition.
func SimilarityRatio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchingRunes(ar, br)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
