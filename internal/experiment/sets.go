package experiment

import (
	"math/rand"
	"sort"
)

// SetGenerator turns the loaded instrument list into the instrument sets an
// experiment runs over. Generators are strategy policy, not core logic; the
// runner only consumes their output contract.
type SetGenerator func(symbols []string) [][]string

// Distributor splits the experiment's total trial budget across instrument
// sets.
type Distributor func(sets [][]string, total int, rng *rand.Rand) []Allocation

// Allocation pairs an instrument set with its share of the trial budget.
type Allocation struct {
	Symbols []string
	Trials  int
}

// SingletonSets returns one set per instrument, in stable sorted order.
func SingletonSets(symbols []string) [][]string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	sets := make([][]string, 0, len(sorted))
	for _, symbol := range sorted {
		sets = append(sets, []string{symbol})
	}

	return sets
}

// RandomSets returns a generator producing count random groupings of
// setSize distinct instruments each. Sets smaller than setSize are not
// produced; with fewer instruments than setSize the generator yields
// nothing.
func RandomSets(setSize int, count int, rng *rand.Rand) SetGenerator {
	return func(symbols []string) [][]string {
		if setSize <= 0 || len(symbols) < setSize {
			return nil
		}

		sorted := make([]string, len(symbols))
		copy(sorted, symbols)
		sort.Strings(sorted)

		sets := make([][]string, 0, count)

		for i := 0; i < count; i++ {
			shuffled := make([]string, len(sorted))
			copy(shuffled, sorted)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})

			set := make([]string, setSize)
			copy(set, shuffled[:setSize])
			sort.Strings(set)
			sets = append(sets, set)
		}

		return sets
	}
}

// DistributeEvenly splits total trials across sets as evenly as possible,
// handing the remainder to the leading sets one trial each.
func DistributeEvenly(sets [][]string, total int, _ *rand.Rand) []Allocation {
	if len(sets) == 0 || total <= 0 {
		return nil
	}

	base := total / len(sets)
	remainder := total % len(sets)

	allocations := make([]Allocation, 0, len(sets))

	for i, set := range sets {
		trials := base
		if i < remainder {
			trials++
		}

		allocations = append(allocations, Allocation{Symbols: set, Trials: trials})
	}

	return allocations
}

// DistributeMultinomial draws each of the total trials onto a uniformly
// random set, a multinomial split of the budget.
func DistributeMultinomial(sets [][]string, total int, rng *rand.Rand) []Allocation {
	if len(sets) == 0 || total <= 0 {
		return nil
	}

	counts := make([]int, len(sets))
	for i := 0; i < total; i++ {
		counts[rng.Intn(len(sets))]++
	}

	allocations := make([]Allocation, 0, len(sets))
	for i, set := range sets {
		allocations = append(allocations, Allocation{Symbols: set, Trials: counts[i]})
	}

	return allocations
}
