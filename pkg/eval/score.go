package eval

import "fmt"

// Score is a signed position or move score in centipawns, relative to the side to
// move under negamax. Scores at or near +/-Inf encode forced mates: a mate being
// delivered in n plies scores Inf-n, so shorter mates compare higher.
type Score int32

const (
	Inf    Score = 1000000
	NegInf Score = -Inf
)

// MateIn returns the score for delivering mate at the given ply.
func MateIn(ply int) Score {
	return Inf - Score(ply)
}

// MateDistance returns the distance in plies to a forced mate, if the score
// encodes one. Negative distance means the side to move is being mated.
func (s Score) MateDistance() (int, bool) {
	switch {
	case s > Inf-mateHorizon:
		return int(Inf - s), true
	case s < NegInf+mateHorizon:
		return -int(s - NegInf), true
	default:
		return 0, false
	}
}

// mateHorizon bounds how far from Inf a score still reads as mate. Searches never
// reach a thousand plies.
const mateHorizon = 1000

func (s Score) String() string {
	if d, ok := s.MateDistance(); ok {
		return fmt.Sprintf("#%v", d)
	}
	return fmt.Sprintf("%+.2f", float64(s)/100)
}
