package graph

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/text"
)

// surfaceForm is one distinct normalized surface string observed in the
// corpus, with the first display text seen and a mention count.
type surfaceForm struct {
	display string
	etype   common.EntityType
	count   int
}

// aliasSet is a union-find structure over surface keys. Every key resolves
// to exactly one root, so alias chains cannot loop and resolution is
// idempotent by construction.
type aliasSet struct {
	parent map[string]string
}

func newAliasSet() *aliasSet {
	return &aliasSet{parent: make(map[string]string)}
}

// find resolves a key to its root with path compression. Keys never seen
// before resolve to themselves.
func (a *aliasSet) find(key string) string {
	root := key
	for {
		next, ok := a.parent[root]
		if !ok || next == root {
			break
		}
		root = next
	}
	for key != root {
		next := a.parent[key]
		a.parent[key] = root
		key = next
	}
	return root
}

// unite merges the set of key into the set of canon, keeping canon's root
// as the representative.
func (a *aliasSet) unite(key, canon string) {
	rk := a.find(key)
	rc := a.find(canon)
	if rk != rc {
		a.parent[rk] = rc
	}
}

// Suffix tables for Azerbaijani morphology, longest alternative first.
var (
	genitiveSuffixes = []string{"nın", "nin", "nun", "nün", "ın", "in", "un", "ün"}
	locativeSuffixes = []string{"dan", "dən", "da", "də"}
	possessiveVowels = map[rune]struct{}{'ı': {}, 'i': {}, 'u': {}, 'ü': {}}
)

func lowerRunes(s string) []rune {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}

func hasSuffix(runes []rune, suffix string) bool {
	suf := []rune(suffix)
	if len(runes) < len(suf) {
		return false
	}
	tail := runes[len(runes)-len(suf):]
	for i, r := range suf {
		if tail[i] != r {
			return false
		}
	}
	return true
}

func stripOneSuffix(display string, suffixes []string) (string, bool) {
	runes := []rune(display)
	lower := lowerRunes(display)
	for _, suf := range suffixes {
		if hasSuffix(lower, suf) {
			return string(runes[:len(runes)-utf8.RuneCountInString(suf)]), true
		}
	}
	return display, false
}

// candidateBases generates base-form candidates for a display string by
// stripping agglutinative suffixes. Candidates equal to the input or empty
// after stripping are dropped.
func candidateBases(display string, etype common.EntityType) []string {
	n := text.Normalize(display)
	if n == "" {
		return nil
	}

	var out []string

	if etype == common.EntityPerson || etype == common.EntityOrganization {
		if base, ok := stripOneSuffix(n, genitiveSuffixes); ok {
			out = append(out, base)
		}

		// Genitive "-nın" forms like "Paşinyanın" keep the stem n, so
		// stripping only the last two runes restores "Paşinyan".
		lower := lowerRunes(n)
		for _, suf := range []string{"nın", "nin", "nun", "nün"} {
			if hasSuffix(lower, suf) && len(lower) > 2 {
				runes := []rune(n)
				out = append(out, string(runes[:len(runes)-2]))
				break
			}
		}

		runes := []rune(n)
		if _, ok := possessiveVowels[unicode.ToLower(runes[len(runes)-1])]; ok {
			out = append(out, string(runes[:len(runes)-1]))
		}
	}

	if etype == common.EntityLocation {
		if base, ok := stripOneSuffix(n, locativeSuffixes); ok {
			out = append(out, base)
		}
	}

	var uniq []string
	seen := make(map[string]struct{})
	for _, candidate := range out {
		candidate = text.Normalize(candidate)
		if candidate == "" || candidate == n {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		uniq = append(uniq, candidate)
	}
	return uniq
}

// keyPrefix buckets person keys by their first four runes to bound pairwise
// comparison cost.
func keyPrefix(key string) string {
	runes := []rune(key)
	if len(runes) > 4 {
		runes = runes[:4]
	}
	return string(runes)
}

// buildAliasMap resolves surface keys onto canonical representatives in two
// passes: exact morphological base matching for persons, organizations and
// locations, then prefix and fuzzy clustering for persons only. The
// canonical representative of a merge is the more frequent key, tie-broken
// by the longer one.
func buildAliasMap(forms map[string]surfaceForm, cfg Config) *aliasSet {
	alias := newAliasSet()

	count := func(key string) int {
		return forms[key].count
	}

	better := func(a, b string) string {
		ca, cb := count(a), count(b)
		if cb > ca {
			return b
		}
		if ca > cb {
			return a
		}
		if utf8.RuneCountInString(b) > utf8.RuneCountInString(a) {
			return b
		}
		return a
	}

	keys := make([]string, 0, len(forms))
	for k := range forms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		form := forms[key]
		for _, base := range candidateBases(form.display, form.etype) {
			baseKey := text.NormalizeKey(base)
			if baseKey == key {
				continue
			}
			if _, ok := forms[baseKey]; ok {
				alias.unite(key, baseKey)
				break
			}
		}
	}

	buckets := make(map[string][]string)
	for _, key := range keys {
		if forms[key].etype != common.EntityPerson {
			continue
		}
		prefix := keyPrefix(key)
		buckets[prefix] = append(buckets[prefix], key)
	}

	for _, bucket := range buckets {
		sort.Slice(bucket, func(i, j int) bool {
			a, b := bucket[i], bucket[j]
			if count(a) != count(b) {
				return count(a) > count(b)
			}
			la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
			if la != lb {
				return la > lb
			}
			return a < b
		})

		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]

				if isPrefix(a, b) || isPrefix(b, a) {
					canon := better(a, b)
					alias.unite(a, canon)
					alias.unite(b, canon)
					continue
				}

				if text.SimilarityRatio(a, b) >= cfg.PersonFuzzySimThreshold {
					canon := better(a, b)
					alias.unite(a, canon)
					alias.unite(b, canon)
				}
			}
		}
	}

	return alias
}

func isPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// choosePersonDisplay prefers the candidate with more tokens; on equal
// token count the longer string wins.
func choosePersonDisplay(existing, candidate string) string {
	if existing == "" {
		return candidate
	}
	ce, cc := text.TokenCount(existing), text.TokenCount(candidate)
	if cc > ce {
		return candidate
	}
	if cc < ce {
		return existing
	}
	if len(candidate) > len(existing) {
		return candidate
	}
	return existing
}
