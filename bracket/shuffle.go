/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package bracket

import (
	"math/rand/v2"
	"sort"
)

// Shuffle permutes s in place using the Fisher-Yates algorithm.
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// HasDuplicates reports whether any name appears more than once.
func HasDuplicates(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}

	return false
}

// FindDuplicates returns every name that appears more than once, sorted,
// each reported a single time.
func FindDuplicates(names []string) []string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var dupes []string
	for i := 0; i < len(sorted)-1; i++ {
		if sorted[i] != sorted[i+1] {
			continue
		}
		if len(dupes) == 0 || dupes[len(dupes)-1] != sorted[i] {
			dupes = append(dupes, sorted[i])
		}
	}

	return dupes
}

// FindDuplicatePairings returns the pairings that occur more than once in
// pairs, treating (A,B) and (B,A) as the same matchup. Each repeated matchup
// is reported once, in the orientation of its first occurrence.
func FindDuplicatePairings(pairs []Pairing) []Pairing {
	counts := make(map[Pairing]int, len(pairs))
	var order []Pairing
	for _, p := range pairs {
		k := p.key()
		if counts[k] == 0 {
			order = append(order, p)
		}
		counts[k]++
	}

	var dupes []Pairing
	for _, p := range order {
		if counts[p.key()] > 1 {
			dupes = append(dupes, p)
		}
	}

	return dupes
}
