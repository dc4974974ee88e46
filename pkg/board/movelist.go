package board

// MaxMoves is the move list capacity. No chess position has more than 218 legal
// moves; one slack slot keeps the bound comfortable.
const MaxMoves = 219

// MoveList is a bounded, stack-resident collection of moves. The generator writes
// into it and the search sorts it in place; neither may heap-allocate, so the
// backing array is fixed. The zero value is an empty list.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// Push appends a move. Panics if the list is full, which indicates a generator bug.
func (l *MoveList) Push(m Move) {
	l.moves[l.count] = m
	l.count++
}

// Len returns the number of moves in the list.
func (l *MoveList) Len() int {
	return l.count
}

// At returns the move at the given index.
func (l *MoveList) At(i int) Move {
	return l.moves[i]
}

// Clear empties the list.
func (l *MoveList) Clear() {
	l.count = 0
}

// Sort sorts the moves in place by ascending key. Insertion sort: the list is
// small and the sort must not allocate.
func (l *MoveList) Sort(key func(Move) int) {
	var keys [MaxMoves]int
	for i := 0; i < l.count; i++ {
		keys[i] = key(l.moves[i])
	}

	for i := 1; i < l.count; i++ {
		m, k := l.moves[i], keys[i]
		j := i - 1
		for j >= 0 && keys[j] > k {
			l.moves[j+1], keys[j+1] = l.moves[j], keys[j]
			j--
		}
		l.moves[j+1], keys[j+1] = m, k
	}
}
