package model

var (
	rookDirs   = []Square{{Row: 0, Col: 1}, {Row: 0, Col: -1}, {Row: 1, Col: 0}, {Row: -1, Col: 0}}
	bishopDirs = []Square{{Row: 1, Col: 1}, {Row: 1, Col: -1}, {Row: -1, Col: 1}, {Row: -1, Col: -1}}
	queenDirs  = append(append([]Square{}, rookDirs...), bishopDirs...)
	knightDirs = []Square{
		{Row: 2, Col: 1}, {Row: 2, Col: -1}, {Row: -2, Col: 1}, {Row: -2, Col: -1},
		{Row: 1, Col: 2}, {Row: 1, Col: -2}, {Row: -1, Col: 2}, {Row: -1, Col: -2},
	}
	kingDirs = []Square{
		{Row: -1, Col: -1}, {Row: -1, Col: 0}, {Row: -1, Col: 1},
		{Row: 0, Col: -1}, {Row: 0, Col: 1},
		{Row: 1, Col: -1}, {Row: 1, Col: 0}, {Row: 1, Col: 1},
	}
)

// PseudoLegalMoves lists the destinations the piece on sq may reach by its
// movement rules alone. It may include moves that leave the own king in
// check. The state is not modified.
func PseudoLegalMoves(s *GameState, sq Square) []Square {
	piece := s.Board.At(sq)
	if piece == nil {
		return []Square{}
	}
	switch piece.Type {
	case Pawn:
		return pawnMoves(s, sq, piece)
	case Knight:
		return stepMoves(&s.Board, sq, piece, knightDirs)
	case Bishop:
		return slideMoves(&s.Board, sq, piece, bishopDirs)
	case Rook:
		return slideMoves(&s.Board, sq, piece, rookDirs)
	case Queen:
		return slideMoves(&s.Board, sq, piece, queenDirs)
	case King:
		return append(stepMoves(&s.Board, sq, piece, kingDirs), castleMoves(s, sq, piece)...)
	default:
		return []Square{}
	}
}

// attacks lists the squares the piece on sq attacks. Unlike
// PseudoLegalMoves it skips pawn pushes and castling and counts pawn
// diagonals whether or not anything stands there.
func attacks(b *Board, sq Square) []Square {
	piece := b.At(sq)
	if piece == nil {
		return nil
	}
	switch piece.Type {
	case Pawn:
		out := make([]Square, 0, 2)
		for _, dc := range []int{-1, 1} {
			target := Square{Row: sq.Row + piece.Color.forward(), Col: sq.Col + dc}
			if target.OnBoard() {
				out = append(out, target)
			}
		}
		return out
	case Knight:
		return stepMoves(b, sq, piece, knightDirs)
	case Bishop:
		return slideMoves(b, sq, piece, bishopDirs)
	case Rook:
		return slideMoves(b, sq, piece, rookDirs)
	case Queen:
		return slideMoves(b, sq, piece, queenDirs)
	case King:
		return stepMoves(b, sq, piece, kingDirs)
	}
	return nil
}

func pawnMoves(s *GameState, sq Square, piece *Piece) []Square {
	moves := []Square{}
	dir := piece.Color.forward()
	startRow := piece.Color.homeRow() + dir

	one := Square{Row: sq.Row + dir, Col: sq.Col}
	if one.OnBoard() && s.Board.At(one) == nil {
		moves = append(moves, one)
		two := Square{Row: sq.Row + 2*dir, Col: sq.Col}
		if sq.Row == startRow && s.Board.At(two) == nil {
			moves = append(moves, two)
		}
	}
	for _, dc := range []int{-1, 1} {
		target := Square{Row: sq.Row + dir, Col: sq.Col + dc}
		if !target.OnBoard() {
			continue
		}
		if occupant := s.Board.At(target); occupant != nil {
			if occupant.Color != piece.Color {
				moves = append(moves, target)
			}
		} else if s.EnPassantTarget != nil && *s.EnPassantTarget == target {
			moves = append(moves, target)
		}
	}
	return moves
}

func stepMoves(b *Board, sq Square, piece *Piece, dirs []Square) []Square {
	moves := []Square{}
	for _, dir := range dirs {
		target := sq.add(dir)
		if !target.OnBoard() {
			continue
		}
		if occupant := b.At(target); occupant == nil || occupant.Color != piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func slideMoves(b *Board, sq Square, piece *Piece, dirs []Square) []Square {
	moves := []Square{}
	for _, dir := range dirs {
		for target := sq.add(dir); target.OnBoard(); target = target.add(dir) {
			occupant := b.At(target)
			if occupant == nil {
				moves = append(moves, target)
				continue
			}
			if occupant.Color != piece.Color {
				moves = append(moves, target)
			}
			break
		}
	}
	return moves
}

// castleMoves offers the king's two-square hop when the right is held, the
// path to the rook is clear, the own rook is home and the king is not in
// check. Under strict rules the square the king crosses must be safe too.
func castleMoves(s *GameState, sq Square, king *Piece) []Square {
	row := king.Color.homeRow()
	if sq != (Square{Row: row, Col: 4}) {
		return nil
	}
	rights := s.Castling.side(king.Color)
	if !rights.Kingside && !rights.Queenside {
		return nil
	}
	enemy := king.Color.Opponent()
	if IsSquareAttacked(&s.Board, sq, enemy) {
		return nil
	}

	var moves []Square
	if rights.Kingside && s.rookHome(king.Color, 7) && s.emptyBetween(row, 5, 6) {
		if !s.Rules.StrictCastling || !IsSquareAttacked(&s.Board, Square{Row: row, Col: 5}, enemy) {
			moves = append(moves, Square{Row: row, Col: 6})
		}
	}
	if rights.Queenside && s.rookHome(king.Color, 0) && s.emptyBetween(row, 1, 3) {
		if !s.Rules.StrictCastling || !IsSquareAttacked(&s.Board, Square{Row: row, Col: 3}, enemy) {
			moves = append(moves, Square{Row: row, Col: 2})
		}
	}
	return moves
}

func (s *GameState) rookHome(color PlayerColor, col int) bool {
	p := s.Board[color.homeRow()][col]
	return p != nil && p.Type == Rook && p.Color == color
}

func (s *GameState) emptyBetween(row, fromCol, toCol int) bool {
	for col := fromCol; col <= toCol; col++ {
		if s.Board[row][col] != nil {
			return false
		}
	}
	return true
}
