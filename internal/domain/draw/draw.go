// Package draw implements weighted sampling of raffle winners without
// replacement. It is a pure computation over an in-memory pool snapshot: no
// persistence, no clock, and all randomness comes from the caller's source,
// which keeps results reproducible under a fixed seed.
package draw

import (
	"errors"
	"math"
	"math/rand"

	mathutil "github.com/pkg/math"
)

// ErrNoEligibleWinners reports a pool in which every candidate carries a
// zero weight. The caller decides whether to reopen or cancel the raffle;
// there is deliberately no silent fallback to uniform selection.
var ErrNoEligibleWinners = errors.New("no candidate carries a positive weight")

type Candidate struct {
	UserID string
	Name   string

	// Weight is the candidate's luck modifier. A zero weight keeps the
	// candidate in the pool but makes them unselectable.
	Weight float64
}

// Draw selects up to numWinners distinct candidates from pool, in draw
// order. Selection probability is proportional to weight, and a drawn
// candidate is removed from the pool before the next round. When numWinners
// exceeds the pool size every selectable candidate wins.
//
// An empty pool yields an empty winner list. A non-empty pool whose total
// weight is zero yields ErrNoEligibleWinners.
func Draw(rnd *rand.Rand, pool []Candidate, numWinners int) ([]Candidate, error) {
	if len(pool) == 0 {
		return nil, nil
	}

	remaining := make([]Candidate, len(pool))
	copy(remaining, pool)

	winners := make([]Candidate, 0, mathutil.Min(numWinners, len(pool)))
	for len(winners) < numWinners && len(remaining) > 0 {
		slots := expandSlots(remaining)
		if len(slots) == 0 {
			if len(winners) == 0 {
				return nil, ErrNoEligibleWinners
			}

			// Only zero-weight candidates are left; they can never win.
			break
		}

		picked := slots[rnd.Intn(len(slots))]
		winners = append(winners, remaining[picked])
		remaining = append(remaining[:picked], remaining[picked+1:]...)
	}

	return winners, nil
}

// expandSlots builds the weighted selection space: each candidate occupies
// round(weight*scale) slots, where the scale guarantees the smallest
// positive weight still gets one slot. Each slot holds the candidate's index
// into the pool.
func expandSlots(pool []Candidate) []int {
	minPositive := math.Inf(1)
	for _, c := range pool {
		if c.Weight > 0 && c.Weight < minPositive {
			minPositive = c.Weight
		}
	}

	if math.IsInf(minPositive, 1) {
		return nil
	}

	scale := 1 / minPositive
	var slots []int
	for i, c := range pool {
		for n := int(math.Round(c.Weight * scale)); n > 0; n-- {
			slots = append(slots, i)
		}
	}

	return slots
}
