package hcc

import "sort"

// Rank stable-sorts results by confidence tier in place and returns them.
func Rank(results []ClassifiedResult) []ClassifiedResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence.Rank() < results[j].Confidence.Rank()
	})
	return results
}
