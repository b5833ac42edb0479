package graph

import (
	"sort"
	"strings"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/text"
)

type shortnamePair struct {
	short string
	full  string
}

// computeShortnameAlias decides which single-token person names fold into a
// multi-token canonical name. A merge happens only when the evidence is
// unambiguous: the best full-name candidate must clear an absolute
// co-occurrence minimum, account for a minimum share of the short name's
// sentence co-occurrences, and beat the second-best candidate by a gap
// factor. A short name that plausibly refers to two people stays unmerged.
func computeShortnameAlias(results []ArticleResult, resolve func(string) string, cfg Config) map[string]string {
	stopPersons := cfg.stopPersonSet()
	shortTotal := make(map[string]int)
	pairCount := make(map[shortnamePair]int)

	for _, res := range results {
		if len(res.Sentences) == 0 {
			continue
		}

		var order []string
		displays := make(map[string]string)
		for _, m := range res.Mentions {
			if m.Type != common.EntityPerson {
				continue
			}
			rawKey := text.NormalizeKey(m.Name)
			if _, stop := stopPersons[rawKey]; stop {
				continue
			}
			key := resolve(rawKey)
			if _, ok := displays[key]; !ok {
				order = append(order, key)
			}
			displays[key] = choosePersonDisplay(displays[key], m.Name)
		}
		if len(order) == 0 {
			continue
		}

		for _, sentence := range res.Sentences {
			type present struct {
				key     string
				display string
			}
			var fulls, shorts []present
			for _, key := range order {
				display := displays[key]
				if !text.ContainsEntity(sentence, display) {
					continue
				}
				tokens := text.TokenCount(display)
				if tokens >= cfg.PersonCanonicalMinTokens {
					fulls = append(fulls, present{key, display})
				} else if tokens == 1 {
					shorts = append(shorts, present{key, display})
				}
			}
			if len(shorts) == 0 || len(fulls) == 0 {
				continue
			}

			for _, s := range shorts {
				shortNorm := text.NormalizeKey(s.display)
				if _, stop := stopPersons[shortNorm]; stop {
					continue
				}
				shortTotal[s.key]++

				for _, f := range fulls {
					if f.key == s.key {
						continue
					}
					fullNorm := strings.ToLower(text.Normalize(f.display))
					if strings.HasPrefix(fullNorm, strings.ToLower(s.display)+" ") ||
						text.NormalizeKey(text.LastToken(f.display)) == shortNorm {
						pairCount[shortnamePair{s.key, f.key}]++
					}
				}
			}
		}
	}

	out := make(map[string]string)
	for short, total := range shortTotal {
		type candidate struct {
			full  string
			count int
		}
		var candidates []candidate
		for pair, count := range pairCount {
			if pair.short == short {
				candidates = append(candidates, candidate{pair.full, count})
			}
		}
		if len(candidates) == 0 {
			continue
		}

		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].count != candidates[j].count {
				return candidates[i].count > candidates[j].count
			}
			return candidates[i].full < candidates[j].full
		})

		best := candidates[0]
		secondCount := 0
		if len(candidates) > 1 {
			secondCount = candidates[1].count
		}

		if best.count < cfg.ShortnameMergeMinCooccur {
			continue
		}
		if total <= 0 {
			continue
		}
		if float64(best.count)/float64(total) < cfg.ShortnameMergeMinRatio {
			continue
		}
		if secondCount > 0 && float64(best.count) < float64(secondCount)*cfg.ShortnameMergeSecondBestGap {
			continue
		}

		out[short] = best.full
	}

	return out
}
