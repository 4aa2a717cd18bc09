package keyword

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/hyperjump/portalsearch/internal/models"
	"github.com/hyperjump/portalsearch/internal/record"
)

// Per-term contributions, each multiplied by the field boost.
const (
	ContainsScore     = 10.0
	WordBoundaryScore = 15.0
	FuzzyScore        = 5.0
	// MultiTermScore is paid per matched term when more than one distinct term matches a field.
	MultiTermScore = 5.0
)

// ScoredCandidate is a record with its relevance score. It only lives for one scoring pass.
type ScoredCandidate struct {
	Record models.Record
	// Position is the record's index in the scanned collection.
	Position      int
	Score         float64
	MatchedFields []string
}

// Scorer computes additive relevance scores for one query and SearchConfig.
// A Scorer holds no state between records and may be reused across collections.
type Scorer struct {
	config   models.SearchConfig
	terms    []string
	patterns []*regexp.Regexp
}

// NewScorer prepares the distinct query terms and their word-boundary patterns.
func NewScorer(query string, cfg models.SearchConfig) *Scorer {
	var terms []string
	if cfg.CaseSensitive {
		terms = uniqueTerms(strings.Fields(query))
	} else {
		terms = uniqueTerms(Tokenize(query))
	}
	patterns := make([]*regexp.Regexp, len(terms))
	for i, t := range terms {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t))
	}
	return &Scorer{config: cfg, terms: terms, patterns: patterns}
}

// Terms returns the distinct terms the scorer matches against.
func (s *Scorer) Terms() []string {
	return s.terms
}

// Score returns rec's total score and the fields that contributed to it.
func (s *Scorer) Score(rec models.Record) (float64, []string) {
	var (
		total   float64
		matched []string
	)
	for _, field := range s.config.Fields {
		text := record.FieldText(rec, field)
		if text == "" {
			continue
		}
		if !s.config.CaseSensitive {
			text = strings.ToLower(text)
		}
		score, hits := s.scoreField(text, s.config.BoostFor(field))
		total += score
		if hits > 0 && !slices.Contains(matched, field) {
			matched = append(matched, field)
		}
	}
	return total, matched
}

// scoreField scores one field's text and returns the number of distinct terms that hit it.
func (s *Scorer) scoreField(text string, boost float64) (float64, int) {
	var (
		score float64
		hits  int
	)
	for i, term := range s.terms {
		hit := false
		if strings.Contains(text, term) {
			score += ContainsScore * boost
			hit = true
		}
		if s.patterns[i].MatchString(text) {
			score += WordBoundaryScore * boost
			hit = true
		}
		if s.config.Fuzzy && FuzzyMatch(term, text) {
			score += FuzzyScore * boost
			hit = true
		}
		if hit {
			hits++
		}
	}
	if hits > 1 {
		score += float64(hits) * MultiTermScore * boost
	}
	return score, hits
}

// Rank scores every record and returns those with a positive score, best first.
// Equal scores keep collection order.
func (s *Scorer) Rank(records []models.Record) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(records))
	for i, rec := range records {
		score, fields := s.Score(rec)
		if score <= 0 {
			continue
		}
		out = append(out, ScoredCandidate{Record: rec, Position: i, Score: score, MatchedFields: fields})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
