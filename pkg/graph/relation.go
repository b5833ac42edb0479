package graph

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/logger"
	"github.com/volgapavel/parsAZ/pkg/nlp"
	"github.com/volgapavel/parsAZ/pkg/text"
)

// Lexical trigger terms for the relation gate, covering Azerbaijani,
// Russian and English news vocabulary. Matching runs on normalized text so
// partial stems like "встрет" cover all inflections.
var (
	meetTriggers = []string{
		"görüş", "görüşüb", "görüşdü", "görüşəcək", "görüşlər",
		"qəbul edib", "qəbul etdi", "qəbul etmiş",
		"danışıqlar", "müzakirə",
		"встрет", "переговор", "обсуд", "принял", "провел встреч",
		"met", "meeting", "talks", "discussed", "received",
	}

	appointTriggers = []string{
		"təyin", "təyin edildi", "vəzifəsinə təyin", "təyin olun",
		"назнач", "утвержден", "избран",
		"appointed", "named", "elected",
	}

	roleTriggers = []string{
		"директор", "гендир", "глава", "председател", "министр", "президент",
		"ceo", "director", "chairman", "minister", "president", "head",
		"nazir", "prezident", "rəhbər", "direktor", "sədr",
	}
)

const (
	appointNearWindow = 120
	roleNearWindow    = 60
)

func hasAnyTrigger(sentence string, triggers []string) bool {
	s := text.NormalizeKey(sentence)
	for _, t := range triggers {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// runeIndices returns the rune offsets of every occurrence of sub in s.
func runeIndices(s, sub string) []int {
	if sub == "" {
		return nil
	}
	var out []int
	runes := []rune(s)
	subRunes := []rune(sub)
	for i := 0; i+len(subRunes) <= len(runes); i++ {
		match := true
		for j, r := range subRunes {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			out = append(out, i)
		}
	}
	return out
}

// nearInSentence reports whether any occurrence of a lies within window
// runes of any occurrence of b, both matched on normalized text.
func nearInSentence(sentence, a, b string, window int) bool {
	s := text.NormalizeKey(sentence)
	an := text.NormalizeKey(a)
	bn := text.NormalizeKey(b)
	if an == "" || bn == "" {
		return false
	}

	for _, i := range runeIndices(s, an) {
		for _, j := range runeIndices(s, bn) {
			d := i - j
			if d < 0 {
				d = -d
			}
			if d <= window {
				return true
			}
		}
	}
	return false
}

// headHasRoleNearby reports whether a role or title trigger appears within
// window runes of the head mention.
func headHasRoleNearby(sentence, head string, window int) bool {
	s := []rune(text.NormalizeKey(sentence))
	h := []rune(text.NormalizeKey(head))
	if len(h) == 0 {
		return false
	}

	indices := runeIndices(string(s), string(h))
	if len(indices) == 0 {
		return false
	}

	i := indices[0]
	left := i - window
	if left < 0 {
		left = 0
	}
	right := i + len(h) + window
	if right > len(s) {
		right = len(s)
	}
	ctx := string(s[left:right])

	for _, rt := range roleTriggers {
		if strings.Contains(ctx, rt) {
			return true
		}
	}
	return false
}

// candidateLabels applies the lexical gate and returns the relation labels
// worth offering to the classifier for this sentence and pair. An empty
// result means the classifier must not be called at all.
func candidateLabels(sentence, head string, tailType common.EntityType, cfg Config) []string {
	hasMeet := hasAnyTrigger(sentence, meetTriggers)
	hasAppoint := hasAnyTrigger(sentence, appointTriggers)

	var out []string
	for _, label := range cfg.RelationLabels {
		switch label {
		case LabelMetWith:
			if tailType == common.EntityPerson && hasMeet {
				out = append(out, label)
			}

		case LabelAppointedTo:
			if tailType == common.EntityOrganization && hasAppoint {
				if nearInSentence(sentence, head, "təyin", appointNearWindow) ||
					nearInSentence(sentence, head, "назнач", appointNearWindow) ||
					nearInSentence(sentence, head, "appointed", appointNearWindow) {
					out = append(out, label)
				}
			}

		case LabelWorksFor:
			if tailType == common.EntityOrganization && !hasMeet {
				if headHasRoleNearby(sentence, head, roleNearWindow) {
					out = append(out, label)
				}
			}
		}
	}
	return out
}

// ApplyRelationLabels runs the gated zero-shot classifier over every edge
// of the index and writes accepted labels onto the edges. Each goroutine
// mutates only its own edge, so edges label in parallel. Classifier
// failures are logged and skipped; they never abort the batch.
func ApplyRelationLabels(ctx context.Context, index *common.PersonIndex, labeler nlp.RelationLabeler, cfg Config, concurrency int) {
	if labeler == nil || len(cfg.RelationLabels) == 0 {
		return
	}
	if concurrency < 1 {
		concurrency = 1
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for _, person := range index.Persons {
		head := person.Display
		for _, edge := range person.Neighbors {
			if len(edge.Evidence) == 0 {
				continue
			}
			if edge.Type != common.EntityPerson && edge.Type != common.EntityOrganization {
				continue
			}

			sentence := edge.Evidence[0].Sentence
			labels := candidateLabels(sentence, head, edge.Type, cfg)
			if len(labels) == 0 {
				continue
			}

			edge := edge
			group.Go(func() error {
				prediction, err := labeler.Label(groupCtx, nlp.RelationQuery{
					Sentence:        sentence,
					Head:            head,
					Tail:            edge.Display,
					HeadType:        string(common.EntityPerson),
					TailType:        string(edge.Type),
					CandidateLabels: labels,
				})
				if err != nil {
					logger.Warn("[Graph] Relation labeling failed", "head", head, "tail", edge.Display, "error", err)
					return nil
				}
				if prediction != nil && prediction.Score >= cfg.NLIThreshold {
					edge.NLIRelation = &common.Relation{
						Label: prediction.Label,
						Score: prediction.Score,
					}
				}
				return nil
			})
		}
	}

	_ = group.Wait()
}
