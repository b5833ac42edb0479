package graph

import (
	"math"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/text"
)

// cooccurrencePair links a person to an entity present in the same
// sentence, with the sentence kept as evidence. Pairs are consumed by the
// scoring pass and never serialized.
type cooccurrencePair struct {
	personKey       string
	personDisplay   string
	neighborKey     string
	neighborDisplay string
	neighborType    common.EntityType
	evidence        common.Evidence
}

// CorpusAggregator is the reduction phase of the index build. Article
// results are fed in one at a time through Accumulate; Finalize runs alias
// resolution, pair generation, scoring and assembly over the complete
// corpus view. The aggregator is not safe for concurrent use; parallel
// extraction workers must hand their results to a single accumulating
// goroutine.
type CorpusAggregator struct {
	cfg          Config
	includeRisks bool

	results      []ArticleResult
	surfaceForms map[string]surfaceForm
}

// NewCorpusAggregatorParams contains configuration for creating a
// CorpusAggregator.
type NewCorpusAggregatorParams struct {
	Config Config

	// IncludeRisks attaches a risk profile to every person in the index.
	// Leave false when no risk classifier ran during extraction.
	IncludeRisks bool
}

// NewCorpusAggregator creates an aggregator, failing fast on a malformed
// configuration.
func NewCorpusAggregator(params NewCorpusAggregatorParams) (*CorpusAggregator, error) {
	if err := params.Config.Validate(); err != nil {
		return nil, err
	}
	return &CorpusAggregator{
		cfg:          params.Config,
		includeRisks: params.IncludeRisks,
		surfaceForms: make(map[string]surfaceForm),
	}, nil
}

// Accumulate folds one article result into the corpus view. Mentions are
// assumed to be already type- and length-filtered by extraction.
func (a *CorpusAggregator) Accumulate(result ArticleResult) {
	a.results = append(a.results, result)

	for _, m := range result.Mentions {
		key := text.NormalizeKey(m.Name)
		form, ok := a.surfaceForms[key]
		if !ok {
			form = surfaceForm{display: m.Name, etype: m.Type}
		}
		form.count++
		a.surfaceForms[key] = form
	}
}

// Finalize resolves aliases over the whole corpus and assembles the person
// index. The aggregator must not be reused afterwards.
func (a *CorpusAggregator) Finalize() *common.PersonIndex {
	alias := buildAliasMap(a.surfaceForms, a.cfg)

	if a.cfg.EnableShortnameMerge {
		shortMap := computeShortnameAlias(a.results, alias.find, a.cfg)
		for short, full := range shortMap {
			alias.unite(short, full)
		}
	}

	pairs := a.collectPairs(alias)
	index := a.assemble(pairs)

	if a.includeRisks {
		attachRiskProfiles(index, a.results, alias.find, a.cfg)
	}

	return index
}

// collectPairs walks every sentence of every article and emits one pair per
// (present person, present other entity) combination, with the sentence as
// evidence. The set of other entities per sentence is capped to bound
// combinatorial blow-up on enumeration-heavy sentences.
func (a *CorpusAggregator) collectPairs(alias *aliasSet) []cooccurrencePair {
	stopPersons := a.cfg.stopPersonSet()
	var pairs []cooccurrencePair

	for _, res := range a.results {
		if len(res.Sentences) == 0 {
			continue
		}

		type entry struct {
			key     string
			display string
			etype   common.EntityType
		}
		var personOrder, otherOrder []string
		persons := make(map[string]string)
		others := make(map[string]entry)

		for _, m := range res.Mentions {
			rawKey := text.NormalizeKey(m.Name)
			if m.Type == common.EntityPerson {
				if _, stop := stopPersons[rawKey]; stop {
					continue
				}
			}
			key := alias.find(rawKey)

			if m.Type == common.EntityPerson {
				if _, ok := persons[key]; !ok {
					personOrder = append(personOrder, key)
				}
				persons[key] = choosePersonDisplay(persons[key], m.Name)
			}

			if _, ok := others[key]; !ok {
				otherOrder = append(otherOrder, key)
			}
			others[key] = entry{key, m.Name, m.Type}
		}

		if len(personOrder) == 0 {
			continue
		}

		for _, sentence := range res.Sentences {
			var presentPersons []string
			for _, pk := range personOrder {
				if text.ContainsEntity(sentence, persons[pk]) {
					presentPersons = append(presentPersons, pk)
				}
			}
			if len(presentPersons) == 0 {
				continue
			}

			var presentOthers []entry
			for _, ok := range otherOrder {
				if text.ContainsEntity(sentence, others[ok].display) {
					presentOthers = append(presentOthers, others[ok])
				}
			}
			if len(presentOthers) == 0 {
				continue
			}
			if len(presentOthers) > a.cfg.MaxEntitiesPerSentence {
				presentOthers = presentOthers[:a.cfg.MaxEntitiesPerSentence]
			}

			for _, pk := range presentPersons {
				for _, other := range presentOthers {
					if other.key == pk {
						continue
					}
					pairs = append(pairs, cooccurrencePair{
						personKey:       pk,
						personDisplay:   persons[pk],
						neighborKey:     other.key,
						neighborDisplay: other.display,
						neighborType:    other.etype,
						evidence: common.Evidence{
							Sentence:  sentence,
							ArticleID: res.Article.ID,
							Title:     res.Article.Title,
							Link:      res.Article.Link,
						},
					})
				}
			}
		}
	}

	return pairs
}

// assemble folds pairs into the adjacency structure, scores every edge and
// applies the support, stop-list and document-frequency filters.
func (a *CorpusAggregator) assemble(pairs []cooccurrencePair) *common.PersonIndex {
	articleCount := len(a.results)
	if articleCount < 1 {
		articleCount = 1
	}
	totalArticles := float64(articleCount)

	neighborDF := make(map[string]int)
	seenNeighborArticle := make(map[string]map[string]struct{})
	for _, p := range pairs {
		if p.evidence.ArticleID == "" {
			continue
		}
		articles := seenNeighborArticle[p.neighborKey]
		if articles == nil {
			articles = make(map[string]struct{})
			seenNeighborArticle[p.neighborKey] = articles
		}
		if _, ok := articles[p.evidence.ArticleID]; !ok {
			articles[p.evidence.ArticleID] = struct{}{}
			neighborDF[p.neighborKey]++
		}
	}

	idf := func(neighborKey string) float64 {
		df := float64(neighborDF[neighborKey])
		return math.Log((totalArticles+1)/(df+1)) + 1.0
	}
	tooCommon := func(neighborKey string) bool {
		return float64(neighborDF[neighborKey]) > a.cfg.MaxNeighborDFShare*totalArticles
	}

	type neighborAgg struct {
		display         string
		etype           common.EntityType
		supportArticles map[string]struct{}
		supportMentions int
		evidence        []common.Evidence
	}
	type personAgg struct {
		display       string
		neighborOrder []string
		neighbors     map[string]*neighborAgg
	}

	var personOrder []string
	personsAgg := make(map[string]*personAgg)

	for _, p := range pairs {
		person := personsAgg[p.personKey]
		if person == nil {
			person = &personAgg{
				display:   p.personDisplay,
				neighbors: make(map[string]*neighborAgg),
			}
			personsAgg[p.personKey] = person
			personOrder = append(personOrder, p.personKey)
		}

		neighbor := person.neighbors[p.neighborKey]
		if neighbor == nil {
			neighbor = &neighborAgg{supportArticles: make(map[string]struct{})}
			person.neighbors[p.neighborKey] = neighbor
			person.neighborOrder = append(person.neighborOrder, p.neighborKey)
		}

		neighbor.display = p.neighborDisplay
		neighbor.etype = p.neighborType
		if p.evidence.ArticleID != "" {
			neighbor.supportArticles[p.evidence.ArticleID] = struct{}{}
		}
		neighbor.supportMentions++
		if len(neighbor.evidence) < a.cfg.MaxEvidencePerNeighbor {
			neighbor.evidence = append(neighbor.evidence, p.evidence)
		}
	}

	stopNeighbors := a.cfg.stopNeighborSet()
	index := &common.PersonIndex{Persons: make(map[string]*common.PersonNode)}

	for _, pk := range personOrder {
		person := personsAgg[pk]
		neighbors := make(map[string]*common.NeighborEdge)

		for _, nk := range person.neighborOrder {
			neighbor := person.neighbors[nk]

			supportArticles := len(neighbor.supportArticles)
			if supportArticles < a.cfg.MinNeighborSupportArticles {
				continue
			}
			if _, stop := stopNeighbors[text.NormalizeKey(neighbor.display)]; stop {
				continue
			}
			if tooCommon(nk) {
				continue
			}

			neighbors[nk] = &common.NeighborEdge{
				Display:         neighbor.display,
				Type:            neighbor.etype,
				SupportArticles: supportArticles,
				SupportMentions: neighbor.supportMentions,
				Score:           math.Log1p(float64(supportArticles)) * idf(nk),
				Evidence:        neighbor.evidence,
			}
		}

		if len(neighbors) > 0 {
			index.Persons[pk] = &common.PersonNode{
				Display:   person.display,
				Neighbors: neighbors,
			}
		}
	}

	return index
}
