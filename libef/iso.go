package libef

// Isomorphic reports whether A and B are isomorphic as simple graphs.
// This is an exact pairwise test (backtracking vertex matching with degree
// pruning), sized for the small graphs the generator traffics in.
func Isomorphic(A, B *SimpleGraph) bool {
	if A.n != B.n || len(A.edges) != len(B.edges) {
		return false
	}

	n := A.n
	degA := make([]int, n)
	degB := make([]int, n)
	degCounts := make(map[int]int, n)
	for v := 0; v < n; v++ {
		degA[v] = A.Degree(v)
		degB[v] = B.Degree(v)
		degCounts[degA[v]]++
		degCounts[degB[v]]--
	}
	for _, c := range degCounts {
		if c != 0 {
			return false
		}
	}

	img := make([]int, n)
	used := make([]bool, n)

	var match func(i int) bool
	match = func(i int) bool {
		if i == n {
			return true
		}
		for w := 0; w < n; w++ {
			if used[w] || degB[w] != degA[i] {
				continue
			}
			ok := true
			for j := 0; j < i; j++ {
				if A.HasEdge(i, j) != B.HasEdge(w, img[j]) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			img[i] = w
			used[w] = true
			if match(i + 1) {
				return true
			}
			used[w] = false
		}
		return false
	}

	return match(0)
}

// WeightsIsomorphic reports whether two edge weightings of the same simple
// graph X are equivalent under some automorphism of X, i.e. whether there is
// a vertex permutation preserving adjacency that recolors w1 into w2.
// Both weight slices are parallel to X.Edges().
func WeightsIsomorphic(X *SimpleGraph, w1, w2 []int64) bool {
	n := X.n

	// Weighted degree ("strength") is automorphism-invariant, so the two
	// weightings must agree on the strength multiset before any search.
	s1 := vertexStrengths(X, w1)
	s2 := vertexStrengths(X, w2)
	strengthCounts := make(map[int64]int, n)
	for v := 0; v < n; v++ {
		strengthCounts[s1[v]]++
		strengthCounts[s2[v]]--
	}
	for _, c := range strengthCounts {
		if c != 0 {
			return false
		}
	}

	eidx := edgeIndex(X)
	img := make([]int, n)
	used := make([]bool, n)

	var match func(i int) bool
	match = func(i int) bool {
		if i == n {
			return true
		}
		deg := X.Degree(i)
		for w := 0; w < n; w++ {
			if used[w] || X.Degree(w) != deg || s2[w] != s1[i] {
				continue
			}
			ok := true
			for j := 0; j < i; j++ {
				if X.HasEdge(i, j) != X.HasEdge(w, img[j]) {
					ok = false
					break
				}
				if X.HasEdge(i, j) && w2[eidx[w][img[j]]] != w1[eidx[i][j]] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			img[i] = w
			used[w] = true
			if match(i + 1) {
				return true
			}
			used[w] = false
		}
		return false
	}

	return match(0)
}

func vertexStrengths(X *SimpleGraph, weights []int64) []int64 {
	strength := make([]int64, X.n)
	for i, edge := range X.edges {
		strength[edge[0]] += weights[i]
		strength[edge[1]] += weights[i]
	}
	return strength
}

func edgeIndex(X *SimpleGraph) [][]int {
	eidx := make([][]int, X.n)
	for v := range eidx {
		eidx[v] = make([]int, X.n)
		for w := range eidx[v] {
			eidx[v][w] = -1
		}
	}
	for i, edge := range X.edges {
		eidx[edge[0]][edge[1]] = i
		eidx[edge[1]][edge[0]] = i
	}
	return eidx
}
