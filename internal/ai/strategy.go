package ai

import (
	"github.com/benbeisheim/chess-backend/internal/model"
	"golang.org/x/exp/rand"
)

// Random picks uniformly.
type Random struct{}

func (Random) Choose(candidates []Candidate, r *rand.Rand) Candidate {
	return candidates[r.Intn(len(candidates))]
}

// CaptureBiased takes a random capture half of the time when one exists.
type CaptureBiased struct{}

func (CaptureBiased) Choose(candidates []Candidate, r *rand.Rand) Candidate {
	var captures []Candidate
	for _, c := range candidates {
		if c.Captured != nil {
			captures = append(captures, c)
		}
	}
	if len(captures) > 0 && r.Intn(2) == 0 {
		return captures[r.Intn(len(captures))]
	}
	return candidates[r.Intn(len(candidates))]
}

// SinglePly scores the first Limit candidates by material won, closeness of
// the destination to the centre and a small random jitter, and keeps the
// first best. No reply is considered.
type SinglePly struct {
	Limit int
}

var pieceValues = map[model.PieceType]int{
	model.Pawn:   1,
	model.Knight: 3,
	model.Bishop: 3,
	model.Rook:   5,
	model.Queen:  9,
	model.King:   0,
}

func (p SinglePly) Choose(candidates []Candidate, r *rand.Rand) Candidate {
	if p.Limit > 0 && len(candidates) > p.Limit {
		candidates = candidates[:p.Limit]
	}
	best, bestScore := candidates[0], -1
	for _, c := range candidates {
		if score := Score(c) + r.Intn(6); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// Score is the deterministic part of the SinglePly score.
func Score(c Candidate) int {
	score := centralization(c.Move.To)
	if c.Captured != nil {
		score += pieceValues[c.Captured.Type] * 10
	}
	return score
}

// centralization is 6 on the four centre squares and 0 on the rim.
func centralization(sq model.Square) int {
	dr := float64(sq.Row) - 3.5
	if dr < 0 {
		dr = -dr
	}
	dc := float64(sq.Col) - 3.5
	if dc < 0 {
		dc = -dc
	}
	dist := dr
	if dc > dist {
		dist = dc
	}
	return int((3.5 - dist) * 2)
}
