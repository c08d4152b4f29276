package compare

// alignedPair is one accepted match between an old and a new chunk index.
type alignedPair struct {
	oldIdx int
	newIdx int
}

// alignSequences computes an order-preserving alignment over the
// similarity matrix sim[old][new], maximizing total similarity. Only
// pairs whose similarity is at least minSimilarity may be matched. The
// DP table plus a fixed traceback preference (match, then skip-old,
// then skip-new) makes the result deterministic.
func alignSequences(sim [][]float32, minSimilarity float32) []alignedPair {
	n := len(sim)
	if n == 0 {
		return nil
	}
	m := len(sim[0])
	if m == 0 {
		return nil
	}

	// dp[i][j] holds the best total similarity aligning the first i old
	// chunks against the first j new chunks.
	dp := make([][]float64, n+1)
	for i := range dp {
		dp[i] = make([]float64, m+1)
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			best := dp[i-1][j]
			if dp[i][j-1] > best {
				best = dp[i][j-1]
			}
			if s := sim[i-1][j-1]; s >= minSimilarity {
				if candidate := dp[i-1][j-1] + float64(s); candidate > best {
					best = candidate
				}
			}
			dp[i][j] = best
		}
	}

	var reversed []alignedPair
	i, j := n, m
	for i > 0 && j > 0 {
		if s := sim[i-1][j-1]; s >= minSimilarity && dp[i][j] == dp[i-1][j-1]+float64(s) {
			reversed = append(reversed, alignedPair{oldIdx: i - 1, newIdx: j - 1})
			i--
			j--
			continue
		}
		if dp[i][j] == dp[i-1][j] {
			i--
			continue
		}
		j--
	}

	pairs := make([]alignedPair, len(reversed))
	for k, pair := range reversed {
		pairs[len(reversed)-1-k] = pair
	}
	return pairs
}
