package keyword

// MinFuzzyTermLength is the shortest term (in runes) eligible for fuzzy matching.
const MinFuzzyTermLength = 3

// LevenshteinDistance returns the number of single-rune insertions, deletions
// or substitutions needed to turn a into b.
func LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows of the edit matrix are enough.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// MaxFuzzyDistance is the edit distance tolerated for term: 1 up to five
// runes, 2 for longer terms, and 0 (no fuzzy matching) below MinFuzzyTermLength.
func MaxFuzzyDistance(term string) int {
	n := len([]rune(term))
	switch {
	case n < MinFuzzyTermLength:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

// FuzzyMatch reports whether text is within MaxFuzzyDistance of term.
// The comparison is against the whole text, not its individual words.
func FuzzyMatch(term, text string) bool {
	limit := MaxFuzzyDistance(term)
	if limit == 0 {
		return false
	}
	// Lengths alone can rule the pair out before running the matrix.
	if d := len([]rune(text)) - len([]rune(term)); d > limit || -d > limit {
		return false
	}
	return LevenshteinDistance(term, text) <= limit
}
