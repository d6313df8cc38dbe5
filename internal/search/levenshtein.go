package search

// levenshtein computes the edit distance between two rune slices,
// abandoning early once the distance provably exceeds maxDist. Returns
// maxDist+1 when the bound is exceeded.
func levenshtein(a, b []rune, maxDist int) int {
	if maxDist < 0 {
		maxDist = 0
	}

	// Ensure a is the shorter side so the row stays small.
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > maxDist {
		return maxDist + 1
	}
	if len(a) == 0 {
		return len(b)
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		rowMin := curr[0]
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
			if curr[i] < rowMin {
				rowMin = curr[i]
			}
		}
		if rowMin > maxDist {
			return maxDist + 1
		}
		prev, curr = curr, prev
	}

	d := prev[len(a)]
	if d > maxDist {
		return maxDist + 1
	}
	return d
}
