package model

// IsSquareAttacked reports whether any piece of side by attacks sq.
func IsSquareAttacked(b *Board, sq Square, by PlayerColor) bool {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b[row][col]
			if p == nil || p.Color != by {
				continue
			}
			for _, target := range attacks(b, Square{Row: row, Col: col}) {
				if target == sq {
					return true
				}
			}
		}
	}
	return false
}

func (s *GameState) IsInCheck(side PlayerColor) bool {
	return IsSquareAttacked(&s.Board, s.kingSquare(side), side.Opponent())
}

// LegalMovesAt returns the legal destinations of the piece on sq. It is
// empty for an empty square and for a piece of the side not to move.
func (s *GameState) LegalMovesAt(sq Square) []Square {
	if !sq.OnBoard() {
		return []Square{}
	}
	piece := s.Board.At(sq)
	if piece == nil || piece.Color != s.ToMove {
		return []Square{}
	}
	return s.legalMovesFor(sq, piece)
}

func (s *GameState) legalMovesFor(from Square, piece *Piece) []Square {
	legal := []Square{}
	for _, to := range PseudoLegalMoves(s, from) {
		if !s.leavesKingInCheck(from, to, piece.Color) {
			legal = append(legal, to)
		}
	}
	return legal
}

// leavesKingInCheck plays the move on a scratch copy of the board and king
// cache and inspects the result. The receiver is not touched.
func (s *GameState) leavesKingInCheck(from, to Square, color PlayerColor) bool {
	scratch := GameState{Board: s.Board, KingPositions: s.KingPositions}
	playOnBoard(&scratch.Board, &scratch.KingPositions, from, to)
	return scratch.IsInCheck(color)
}

func (s *GameState) isLegal(from, to Square) bool {
	for _, sq := range s.LegalMovesAt(from) {
		if sq == to {
			return true
		}
	}
	return false
}
