package model

type GameStatus string

const (
	StatusNormal    GameStatus = "normal"
	StatusCheck     GameStatus = "check"
	StatusCheckmate GameStatus = "checkmate"
	StatusStalemate GameStatus = "stalemate"
)

// Over reports whether the status ends the game.
func (g GameStatus) Over() bool {
	return g == StatusCheckmate || g == StatusStalemate
}

// HasAnyLegalMove stops at the first piece of side with a legal move.
func (s *GameState) HasAnyLegalMove(side PlayerColor) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := s.Board[row][col]
			if p != nil && p.Color == side && len(s.legalMovesFor(Square{Row: row, Col: col}, p)) > 0 {
				return true
			}
		}
	}
	return false
}

// AllLegalMoves enumerates every legal move of side, scanning rows then
// columns and keeping each piece's generation order.
func (s *GameState) AllLegalMoves(side PlayerColor) []SimpleMove {
	moves := []SimpleMove{}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := s.Board[row][col]
			if p == nil || p.Color != side {
				continue
			}
			from := Square{Row: row, Col: col}
			for _, to := range s.legalMovesFor(from, p) {
				moves = append(moves, SimpleMove{From: from, To: to})
			}
		}
	}
	return moves
}

func (s *GameState) Status(side PlayerColor) GameStatus {
	inCheck := s.IsInCheck(side)
	hasMove := s.HasAnyLegalMove(side)
	switch {
	case inCheck && !hasMove:
		return StatusCheckmate
	case !hasMove:
		return StatusStalemate
	case inCheck:
		return StatusCheck
	}
	return StatusNormal
}
