package ranking

// EditDistance returns the optimal string alignment distance between a and b:
// the minimum number of single-rune insertions, deletions, substitutions, or
// adjacent transpositions needed to turn one into the other.
// Transpositions count as one edit so typos like "teh" vs "the" stay close.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	runesA := []rune(a)
	runesB := []rune(b)
	lenA := len(runesA)
	lenB := len(runesB)
	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Three rolling rows: the transposition check looks two rows back.
	prev2 := make([]int, lenB+1)
	prev := make([]int, lenB+1)
	curr := make([]int, lenB+1)
	for j := 0; j <= lenB; j++ {
		prev[j] = j
	}

	for i := 1; i <= lenA; i++ {
		curr[0] = i
		for j := 1; j <= lenB; j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				curr[j] = min(curr[j], prev2[j-2]+cost)
			}
		}
		prev2, prev, curr = prev, curr, prev2
	}

	return prev[lenB]
}

// EditSimilarity maps EditDistance onto [0,1]: 1 for equal strings, 0 when every
// rune of the longer string has to change.
func EditSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	d := EditDistance(a, b)
	return 1 - float64(d)/float64(maxLen)
}
