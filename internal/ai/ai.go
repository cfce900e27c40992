// Package ai picks a move for a computer-controlled side. It is a one-ply
// heuristic with three fixed tiers, not a search.
package ai

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/model"
	"golang.org/x/exp/rand"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	case "":
		return Medium, nil
	}
	return "", fmt.Errorf("unknown difficulty %q; valid: easy, medium, hard", s)
}

// Candidate is a legal move together with what it would capture.
type Candidate struct {
	Move     model.SimpleMove
	Captured *model.Piece
}

// Strategy chooses one of a non-empty candidate list.
type Strategy interface {
	Choose(candidates []Candidate, r *rand.Rand) Candidate
}

func ForDifficulty(d Difficulty) Strategy {
	switch d {
	case Easy:
		return Random{}
	case Hard:
		return SinglePly{Limit: 20}
	default:
		return CaptureBiased{}
	}
}

// Candidates enumerates side's legal moves in generation order.
func Candidates(s *model.GameState, side model.PlayerColor) []Candidate {
	moves := s.AllLegalMoves(side)
	out := make([]Candidate, 0, len(moves))
	for _, m := range moves {
		c := Candidate{Move: m}
		if target := s.Board.At(m.To); target != nil {
			captured := *target
			c.Captured = &captured
		} else if mover := s.Board.At(m.From); mover.Type == model.Pawn && m.From.Col != m.To.Col {
			c.Captured = &model.Piece{Type: model.Pawn, Color: side.Opponent()}
		}
		out = append(out, c)
	}
	return out
}

// PickMove chooses side's move at difficulty d. It returns false when side
// has no legal move.
func PickMove(s *model.GameState, side model.PlayerColor, d Difficulty, r *rand.Rand) (model.SimpleMove, bool) {
	candidates := Candidates(s, side)
	if len(candidates) == 0 {
		return model.SimpleMove{}, false
	}
	return ForDifficulty(d).Choose(candidates, r).Move, true
}
