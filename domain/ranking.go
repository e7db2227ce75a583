package domain

import "sort"

// Rank orders a batch of results by overall score, highest first,
// keeping submission order among equal scores. The second return value
// is the top score, 0 for an empty batch.
func Rank(results []EvaluationResult) ([]EvaluationResult, int) {
	ranked := make([]EvaluationResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OverallScore > ranked[j].OverallScore
	})

	top := 0
	if len(ranked) > 0 {
		top = ranked[0].OverallScore
	}
	return ranked, top
}
