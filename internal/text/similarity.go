package text

// SequenceRatio is the Ratcliff/Obershelp similarity of two strings:
// twice the number of matching characters over the total length, where
// matches are counted by recursively splitting around the longest common
// block. Two empty strings score 1.
func SequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matchedRunes(ra, rb)) / float64(total)
}

func matchedRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}
	return matchedRunes(a[:ai], b[:bi]) + size + matchedRunes(a[ai+size:], b[bi+size:])
}

// longestCommonBlock finds the longest run of runes common to a and b.
// Length ties break to the block starting earliest in a, then earliest
// in b.
func longestCommonBlock(a, b []rune) (ai, bi, size int) {
	row := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			if a[i-1] == b[j-1] {
				row[j] = prevDiag + 1
				if row[j] > size {
					size = row[j]
					ai = i - size
					bi = j - size
				}
			} else {
				row[j] = 0
			}
			prevDiag = cur
		}
	}
	return ai, bi, size
}
