package ranking

// Assigner maps scores, already sorted descending, to display ranks.
type Assigner func(scores []int64) []int

// CompetitionRanks implements standard competition ranking: tied scores share
// a rank and the next distinct score takes its 1-based position, so
// [100, 100, 50] ranks as [1, 1, 3].
func CompetitionRanks(scores []int64) []int {
	ranks := make([]int, len(scores))
	for i, s := range scores {
		switch {
		case i == 0:
			ranks[i] = 1
		case s == scores[i-1]:
			ranks[i] = ranks[i-1]
		default:
			ranks[i] = i + 1
		}
	}
	return ranks
}

// SequentialPositions numbers entries 1..N in the given order and ignores ties.
func SequentialPositions(scores []int64) []int {
	positions := make([]int, len(scores))
	for i := range scores {
		positions[i] = i + 1
	}
	return positions
}
