package stats

import (
	"sort"

	"github.com/verte-zerg/kanatype/internal/model"
)

// WeakestChars returns up to top kana with mistakes, lowest accuracy first.
func WeakestChars(aggs []model.CharAggregate, top int) []string {
	candidates := make([]model.CharAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := accuracy(candidates[i])
		aj := accuracy(candidates[j])
		if ai == aj {
			return candidates[i].Char < candidates[j].Char
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for i := 0; i < top; i++ {
		out = append(out, candidates[i].Char)
	}
	return out
}

// TopCharsByFrequency keeps the n most frequent kana. A non-positive n
// keeps everything.
func TopCharsByFrequency(aggs []model.CharAggregate, n int) []model.CharAggregate {
	items := make([]model.CharAggregate, len(aggs))
	copy(items, aggs)
	sort.SliceStable(items, func(i, j int) bool {
		ti := items[i].Correct + items[i].Incorrect
		tj := items[j].Correct + items[j].Incorrect
		if ti == tj {
			return items[i].Char < items[j].Char
		}
		return ti > tj
	})
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}

func accuracy(agg model.CharAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
