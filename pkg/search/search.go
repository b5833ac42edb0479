package search

import (
	"sort"
	"strings"

	"github.com/volgapavel/parsAZ/pkg/common"
	"github.com/volgapavel/parsAZ/pkg/graph"
	"github.com/volgapavel/parsAZ/pkg/text"
)

const fuzzyMatchThreshold = 0.60

// Match is one person search hit. Score is 1.0 for an exact display match,
// 0.95 for substring containment and the similarity ratio for fuzzy hits.
type Match struct {
	PersonKey string  `json:"person_key"`
	Display   string  `json:"display"`
	Score     float64 `json:"score"`
}

// NeighborView is a flattened neighbor edge for presentation.
type NeighborView struct {
	NeighborKey     string            `json:"neighbor_key"`
	Display         string            `json:"display"`
	Type            string            `json:"type"`
	SupportArticles int               `json:"support_articles"`
	SupportMentions int               `json:"support_mentions"`
	Score           float64           `json:"score"`
	NLILabel        string            `json:"nli_label,omitempty"`
	NLIScore        float64           `json:"nli_score,omitempty"`
	Evidence        []common.Evidence `json:"evidence,omitempty"`
}

// SemanticRelation is a neighbor edge remapped onto a human relation verb.
// Edges without an accepted classifier label fall back to "related_to".
type SemanticRelation struct {
	Relation        string           `json:"relation"`
	TargetDisplay   string           `json:"target_display"`
	TargetType      string           `json:"target_type"`
	SupportArticles int              `json:"support_articles"`
	Score           float64          `json:"score"`
	NLIScore        float64          `json:"nli_score,omitempty"`
	Evidence        *common.Evidence `json:"evidence,omitempty"`
}

// PersonSummary is one row of the corpus-wide person ranking.
type PersonSummary struct {
	PersonKey        string  `json:"person_key"`
	Display          string  `json:"display"`
	NeighborsTotal   int     `json:"neighbors_total"`
	NeighborsPersons int     `json:"neighbors_person"`
	NeighborsOrgs    int     `json:"neighbors_org"`
	NeighborsLocs    int     `json:"neighbors_loc"`
	RiskLevel        string  `json:"risk_level"`
	RiskScore        float64 `json:"risk_score"`
}

// GlobalStats summarizes the whole index.
type GlobalStats struct {
	PersonsTotal    int            `json:"persons_total"`
	NeighborsTotal  int            `json:"neighbors_total"`
	NeighborsByType map[string]int `json:"neighbors_by_type"`
	NLILabels       map[string]int `json:"nli_labels"`
}

// NeighborQuery filters and orders a person's neighbor list.
type NeighborQuery struct {
	SortBy             string // "score", "support_articles" or "support_mentions"
	TopN               int    // 0 means no cap
	Types              []string
	MinSupportArticles int
}

// Search provides read-only queries over a built person index.
type Search struct {
	index         *common.PersonIndex
	displayToKeys map[string][]string
}

// New creates a Search over the given index. The index must not be mutated
// while the search is in use.
func New(index *common.PersonIndex) *Search {
	s := &Search{
		index:         index,
		displayToKeys: make(map[string][]string),
	}
	for key, person := range index.Persons {
		display := text.NormalizeKey(person.Display)
		if display != "" {
			s.displayToKeys[display] = append(s.displayToKeys[display], key)
		}
	}
	for _, keys := range s.displayToKeys {
		sort.Strings(keys)
	}
	return s
}

// FindPerson resolves a free-text query to person keys. Exact display
// matches win over substring matches, which win over fuzzy similarity.
func (s *Search) FindPerson(query string, topK int) []Match {
	q := text.NormalizeKey(query)
	if q == "" {
		return nil
	}
	if topK <= 0 {
		topK = 10
	}

	if keys, ok := s.displayToKeys[q]; ok {
		var out []Match
		for _, key := range keys {
			out = append(out, Match{PersonKey: key, Display: s.index.Persons[key].Display, Score: 1.0})
		}
		return capMatches(out, topK)
	}

	var substring []Match
	for key, person := range s.index.Persons {
		display := text.NormalizeKey(person.Display)
		if display != "" && strings.Contains(display, q) {
			substring = append(substring, Match{PersonKey: key, Display: person.Display, Score: 0.95})
		}
	}
	if len(substring) > 0 {
		sort.Slice(substring, func(i, j int) bool { return substring[i].PersonKey < substring[j].PersonKey })
		return capMatches(substring, topK)
	}

	var fuzzy []Match
	for key, person := range s.index.Persons {
		display := text.NormalizeKey(person.Display)
		if display == "" {
			continue
		}
		if ratio := text.SimilarityRatio(q, display); ratio >= fuzzyMatchThreshold {
			fuzzy = append(fuzzy, Match{PersonKey: key, Display: person.Display, Score: ratio})
		}
	}
	sort.Slice(fuzzy, func(i, j int) bool {
		if fuzzy[i].Score != fuzzy[j].Score {
			return fuzzy[i].Score > fuzzy[j].Score
		}
		return fuzzy[i].PersonKey < fuzzy[j].PersonKey
	})
	return capMatches(fuzzy, topK)
}

func capMatches(matches []Match, topK int) []Match {
	if len(matches) > topK {
		return matches[:topK]
	}
	return matches
}

// Neighbors lists a person's neighbor edges after filtering and sorting.
// An unknown person key yields an empty list.
func (s *Search) Neighbors(personKey string, query NeighborQuery) []NeighborView {
	person, ok := s.index.Persons[personKey]
	if !ok {
		return nil
	}

	var typeFilter map[string]struct{}
	if len(query.Types) > 0 {
		typeFilter = make(map[string]struct{}, len(query.Types))
		for _, t := range query.Types {
			typeFilter[strings.ToLower(t)] = struct{}{}
		}
	}

	var out []NeighborView
	for key, edge := range person.Neighbors {
		etype := strings.ToLower(string(edge.Type))
		if typeFilter != nil {
			if _, ok := typeFilter[etype]; !ok {
				continue
			}
		}
		if edge.SupportArticles < query.MinSupportArticles {
			continue
		}

		view := NeighborView{
			NeighborKey:     key,
			Display:         edge.Display,
			Type:            etype,
			SupportArticles: edge.SupportArticles,
			SupportMentions: edge.SupportMentions,
			Score:           edge.Score,
			Evidence:        edge.Evidence,
		}
		if edge.NLIRelation != nil {
			view.NLILabel = edge.NLIRelation.Label
			view.NLIScore = edge.NLIRelation.Score
		}
		out = append(out, view)
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch query.SortBy {
		case "support_articles":
			if out[i].SupportArticles != out[j].SupportArticles {
				return out[i].SupportArticles > out[j].SupportArticles
			}
		case "support_mentions":
			if out[i].SupportMentions != out[j].SupportMentions {
				return out[i].SupportMentions > out[j].SupportMentions
			}
		default:
			if out[i].Score != out[j].Score {
				return out[i].Score > out[j].Score
			}
		}
		return out[i].NeighborKey < out[j].NeighborKey
	})

	if query.TopN > 0 && len(out) > query.TopN {
		out = out[:query.TopN]
	}
	return out
}

// SemanticRelations remaps each neighbor edge onto a relation verb. Labels
// below minNLI or mismatched with the neighbor type stay "related_to".
func (s *Search) SemanticRelations(personKey string, minNLI float64, topN int) []SemanticRelation {
	neighbors := s.Neighbors(personKey, NeighborQuery{MinSupportArticles: 1})
	if len(neighbors) == 0 {
		return nil
	}

	var out []SemanticRelation
	for _, n := range neighbors {
		relation := "related_to"
		if n.NLILabel != "" && n.NLIScore >= minNLI {
			switch {
			case n.NLILabel == graph.LabelMetWith && n.Type == string(common.EntityPerson):
				relation = "met_with"
			case n.NLILabel == graph.LabelWorksFor && n.Type == string(common.EntityOrganization):
				relation = "works_for"
			case n.NLILabel == graph.LabelAppointedTo && n.Type == string(common.EntityOrganization):
				relation = "appointed_to"
			}
		}

		rel := SemanticRelation{
			Relation:        relation,
			TargetDisplay:   n.Display,
			TargetType:      n.Type,
			SupportArticles: n.SupportArticles,
			Score:           n.Score,
			NLIScore:        n.NLIScore,
		}
		if len(n.Evidence) > 0 {
			evidence := n.Evidence[0]
			rel.Evidence = &evidence
		}
		out = append(out, rel)
	}

	sort.SliceStable(out, func(i, j int) bool {
		li, lj := out[i].Relation != "related_to", out[j].Relation != "related_to"
		if li != lj {
			return li
		}
		if out[i].NLIScore != out[j].NLIScore {
			return out[i].NLIScore > out[j].NLIScore
		}
		return out[i].Score > out[j].Score
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// PersonCard bundles a person's profile with its strongest connections.
type PersonCard struct {
	PersonKey string              `json:"person_key"`
	Display   string              `json:"display"`
	Risks     *common.RiskProfile `json:"risks,omitempty"`
	Neighbors []NeighborView      `json:"neighbors"`
	Relations []SemanticRelation  `json:"relations"`
}

// Card assembles the full profile view for one person. An unknown key
// yields nil.
func (s *Search) Card(personKey string, topN int, minNLI float64) *PersonCard {
	person, ok := s.index.Persons[personKey]
	if !ok {
		return nil
	}
	return &PersonCard{
		PersonKey: personKey,
		Display:   person.Display,
		Risks:     person.Risks,
		Neighbors: s.Neighbors(personKey, NeighborQuery{TopN: topN}),
		Relations: s.SemanticRelations(personKey, minNLI, topN),
	}
}

// TopPersons ranks persons by neighbor count.
func (s *Search) TopPersons(topK int) []PersonSummary {
	var rows []PersonSummary
	for key, person := range s.index.Persons {
		row := PersonSummary{
			PersonKey:      key,
			Display:        person.Display,
			NeighborsTotal: len(person.Neighbors),
			RiskLevel:      common.RiskLevelLow,
		}
		for _, edge := range person.Neighbors {
			switch edge.Type {
			case common.EntityPerson:
				row.NeighborsPersons++
			case common.EntityOrganization:
				row.NeighborsOrgs++
			case common.EntityLocation:
				row.NeighborsLocs++
			}
		}
		if person.Risks != nil {
			row.RiskLevel = person.Risks.RiskLevel
			row.RiskScore = person.Risks.OverallRiskScore
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].NeighborsTotal != rows[j].NeighborsTotal {
			return rows[i].NeighborsTotal > rows[j].NeighborsTotal
		}
		return rows[i].PersonKey < rows[j].PersonKey
	})

	if topK > 0 && len(rows) > topK {
		rows = rows[:topK]
	}
	return rows
}

// Stats computes corpus-wide index statistics.
func (s *Search) Stats() GlobalStats {
	stats := GlobalStats{
		PersonsTotal:    len(s.index.Persons),
		NeighborsByType: map[string]int{"person": 0, "organization": 0, "location": 0},
		NLILabels:       make(map[string]int),
	}
	for _, person := range s.index.Persons {
		stats.NeighborsTotal += len(person.Neighbors)
		for _, edge := range person.Neighbors {
			stats.NeighborsByType[strings.ToLower(string(edge.Type))]++
			if edge.NLIRelation != nil && edge.NLIRelation.Label != "" {
				stats.NLILabels[edge.NLIRelation.Label]++
			}
		}
	}
	return stats
}
