package common

// Article represents a single scraped news article. Articles are the unit of
// work for the batch pipeline: entity extraction and risk classification run
// per article, while alias resolution and scoring run over the whole corpus.
type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pub_date,omitempty"`
	Content string `json:"content"`
}

// EntityType is the closed set of entity categories the graph builder
// understands. External NER labels are mapped through ParseEntityType;
// anything unknown is excluded rather than coerced.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityLocation     EntityType = "location"
)

// ParseEntityType maps an external type string onto the closed EntityType
// set. The second return value is false for unknown types.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(s) {
	case EntityPerson:
		return EntityPerson, true
	case EntityOrganization:
		return EntityOrganization, true
	case EntityLocation:
		return EntityLocation, true
	}
	return "", false
}

// EntityMention is one typed NER hit inside an article. Mentions are
// immutable once produced by the per-article extraction phase.
type EntityMention struct {
	Name       string     `json:"name"`
	Type       EntityType `json:"type"`
	Confidence float64    `json:"confidence"`
	Start      int        `json:"start"`
	End        int        `json:"end"`
}

// Evidence links a statement in the index back to the sentence and article
// it was observed in.
type Evidence struct {
	Sentence  string `json:"sentence"`
	ArticleID string `json:"article_id"`
	Title     string `json:"title,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Relation is an accepted zero-shot relation label on a neighbor edge.
type Relation struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NeighborEdge is one scored edge from a person to a co-occurring entity.
// SupportArticles counts distinct articles, not mentions, so a single
// chatty article cannot dominate the score.
type NeighborEdge struct {
	Display         string     `json:"display"`
	Type            EntityType `json:"type"`
	SupportArticles int        `json:"support_articles"`
	SupportMentions int        `json:"support_mentions"`
	Score           float64    `json:"score"`
	Evidence        []Evidence `json:"evidence"`
	NLIRelation     *Relation  `json:"nli_relation,omitempty"`
}

// RiskTypeStats aggregates classifier hits of one risk type for a person.
type RiskTypeStats struct {
	Hits            int        `json:"hits"`
	Score           float64    `json:"score"`
	SupportArticles int        `json:"support_articles"`
	Evidence        []Evidence `json:"evidence"`
}

// Risk levels, ordered by severity.
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// RiskLevelForScore maps an overall risk score onto a level. The thresholds
// are fixed and shared between the sentence classifier and the per-person
// aggregation.
func RiskLevelForScore(score float64) string {
	switch {
	case score >= 0.75:
		return RiskLevelCritical
	case score >= 0.50:
		return RiskLevelHigh
	case score >= 0.25:
		return RiskLevelMedium
	}
	return RiskLevelLow
}

// RiskProfile is the aggregated risk signal for one person.
type RiskProfile struct {
	OverallRiskScore float64                  `json:"overall_risk_score"`
	RiskLevel        string                   `json:"risk_level"`
	ByType           map[string]RiskTypeStats `json:"by_type"`
}

// PersonNode is one canonical person in the index together with all scored
// neighbor edges and the aggregated risk profile. Nodes are fully
// materialized by the batch build and frozen afterwards.
type PersonNode struct {
	Display   string                   `json:"display"`
	Neighbors map[string]*NeighborEdge `json:"neighbors"`
	Risks     *RiskProfile             `json:"risks,omitempty"`
}

// PersonIndex is the final person-centric relationship index keyed by
// canonical person key. It is the only output of the batch build and is
// consumed read-only by the query layer.
type PersonIndex struct {
	Persons map[string]*PersonNode `json:"persons"`
}
