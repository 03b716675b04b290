// Package generator picks the problems for a practice run.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/kanatype/internal/problem"
	"github.com/verte-zerg/kanatype/internal/romaji"
)

// Generator selects problems, optionally in random order.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with a fixed seed.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Select returns up to count problems. Without shuffle the file order is
// kept; a non-positive count keeps every problem.
func (g *Generator) Select(problems []problem.Problem, count int, shuffle bool) []problem.Problem {
	out := make([]problem.Problem, len(problems))
	copy(out, problems)
	if shuffle {
		g.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return limit(out, count)
}

// SelectWeighted draws up to count distinct problems with a bias toward
// problems whose reading contains weak kana. weakSet is keyed by folded
// hiragana.
func (g *Generator) SelectWeighted(problems []problem.Problem, count int, weakSet map[string]struct{}, factor float64) []problem.Problem {
	if len(weakSet) == 0 || factor <= 0 {
		return g.Select(problems, count, true)
	}
	if count <= 0 || count > len(problems) {
		count = len(problems)
	}
	pool := make([]problem.Problem, len(problems))
	copy(pool, problems)
	weights := make([]float64, len(pool))
	for i, p := range pool {
		weights[i] = weight(p, weakSet, factor)
	}

	result := make([]problem.Problem, 0, count)
	for len(result) < count {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		r := g.rnd.Float64() * total
		acc := 0.0
		idx := len(weights) - 1
		for j, w := range weights {
			acc += w
			if r <= acc {
				idx = j
				break
			}
		}
		result = append(result, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return result
}

func weight(p problem.Problem, weakSet map[string]struct{}, factor float64) float64 {
	weakCount := 0
	for _, r := range romaji.Fold(p.Reading()) {
		if _, ok := weakSet[string(r)]; ok {
			weakCount++
		}
	}
	return 1.0 + float64(weakCount)*factor
}

func limit(problems []problem.Problem, count int) []problem.Problem {
	if count > 0 && count < len(problems) {
		return problems[:count]
	}
	return problems
}
