package model

import "fmt"

// boardEffect describes what playOnBoard did beyond relocating the piece.
type boardEffect struct {
	kind          MoveKind
	captured      *Piece
	captureSquare *Square
	rook          *CastleRookMove
}

// playOnBoard moves the piece on from to to on b, keeping kings in sync. It
// removes an en passant victim, hops the rook on castling and promotes a
// pawn reaching the far rank to a queen. It does no legality checking.
func playOnBoard(b *Board, kings *KingPositions, from, to Square) boardEffect {
	piece := b.At(from)
	eff := boardEffect{kind: MoveNormal}

	if target := b.At(to); target != nil {
		sq := to
		eff.captured, eff.captureSquare = target, &sq
	} else if piece.Type == Pawn && from.Col != to.Col {
		sq := Square{Row: from.Row, Col: to.Col}
		eff.kind = MoveEnPassant
		eff.captured, eff.captureSquare = b.At(sq), &sq
		b.set(sq, nil)
	}

	b.set(to, piece)
	b.set(from, nil)

	if piece.Type == King {
		kings.set(piece.Color, to)
		if d := to.Col - from.Col; d == 2 || d == -2 {
			rookFrom, rookTo := Square{Row: from.Row, Col: 7}, Square{Row: from.Row, Col: 5}
			if d < 0 {
				rookFrom, rookTo = Square{Row: from.Row, Col: 0}, Square{Row: from.Row, Col: 3}
			}
			b.set(rookTo, b.At(rookFrom))
			b.set(rookFrom, nil)
			eff.kind = MoveCastle
			eff.rook = &CastleRookMove{From: rookFrom, To: rookTo}
		}
	}

	if piece.Type == Pawn && to.Row == piece.Color.Opponent().homeRow() {
		b.set(to, &Piece{Type: Queen, Color: piece.Color})
		eff.kind = MovePromotion
	}
	return eff
}

// CommitMove plays from-to for the side to move. An illegal request is
// rejected with false and leaves the state exactly as it was.
func (s *GameState) CommitMove(from, to Square) (Move, bool) {
	if !to.OnBoard() || !s.isLegal(from, to) {
		return Move{}, false
	}
	piece := *s.Board.At(from)
	move := Move{
		Piece:         piece,
		From:          from,
		To:            to,
		Notation:      fmt.Sprintf("%s-%s", from, to),
		PrevCastling:  s.Castling,
		PrevEnPassant: s.EnPassantTarget,
	}

	eff := playOnBoard(&s.Board, &s.KingPositions, from, to)
	move.Kind = eff.kind
	move.CastleRookMove = eff.rook
	if eff.captured != nil {
		captured := *eff.captured
		move.CapturedPiece, move.CaptureSquare = &captured, eff.captureSquare
		list := s.CapturedPieces.by(piece.Color)
		*list = append(*list, captured)
	}

	switch piece.Type {
	case King:
		*s.Castling.side(piece.Color) = SideCastling{}
	case Rook:
		s.Castling.revokeCorner(piece.Color, from)
	}
	if move.CapturedPiece != nil && move.CapturedPiece.Type == Rook {
		s.Castling.revokeCorner(move.CapturedPiece.Color, *move.CaptureSquare)
	}

	s.EnPassantTarget = nil
	if piece.Type == Pawn && (to.Row-from.Row == 2 || from.Row-to.Row == 2) {
		s.EnPassantTarget = &Square{Row: (from.Row + to.Row) / 2, Col: to.Col}
	}

	s.MoveHistory = append(s.MoveHistory, move)
	s.ToMove = s.ToMove.Opponent()
	s.clearSelection()
	return move, true
}

// Undo reverts the most recent commit. It returns false when there is
// nothing to revert.
func (s *GameState) Undo() (Move, bool) {
	move, ok := s.LastMove()
	if !ok {
		return Move{}, false
	}

	moved := move.Piece
	s.Board.set(move.To, nil)
	s.Board.set(move.From, &moved)
	if move.CapturedPiece != nil {
		captured := *move.CapturedPiece
		s.Board.set(*move.CaptureSquare, &captured)
		list := s.CapturedPieces.by(moved.Color)
		*list = (*list)[:len(*list)-1]
	}
	if rook := move.CastleRookMove; rook != nil {
		s.Board.set(rook.From, s.Board.At(rook.To))
		s.Board.set(rook.To, nil)
	}
	if moved.Type == King {
		s.KingPositions.set(moved.Color, move.From)
	}

	s.Castling = move.PrevCastling
	s.EnPassantTarget = move.PrevEnPassant
	s.ToMove = moved.Color
	s.MoveHistory = s.MoveHistory[:len(s.MoveHistory)-1]
	s.clearSelection()
	return move, true
}
